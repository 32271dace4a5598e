package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnbridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/learnbridge-backend/internal/delivery"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/services"
	"github.com/yungbote/learnbridge-backend/internal/storage"
)

type stubContentService struct {
	attached *types.LessonContent
}

func (s *stubContentService) Attach(ctx context.Context, principal *ctxutil.RequestData, lessonID string, input services.AttachContentInput) (*types.LessonContent, error) {
	return s.attached, nil
}

func (s *stubContentService) ContentURL(ctx context.Context, principal *ctxutil.RequestData, lessonID string, now time.Time) (*services.SignedContentURL, error) {
	return nil, nil
}

func (s *stubContentService) Verify(principal *ctxutil.RequestData, params delivery.Params, now time.Time) (bool, error) {
	return false, nil
}

func (s *stubContentService) Open(ctx context.Context, params delivery.Params, now time.Time) (io.ReadCloser, *storage.ObjectInfo, error) {
	return nil, nil, nil
}

type stubSubscriptionService struct {
	status *services.SubscriptionStatus
}

func (s *stubSubscriptionService) Status(ctx context.Context, userID uuid.UUID) (*services.SubscriptionStatus, error) {
	return s.status, nil
}

func (s *stubSubscriptionService) SetPlan(ctx context.Context, principal *ctxutil.RequestData, userID uuid.UUID, plan string) (*types.Subscription, error) {
	return nil, nil
}

func TestAttachResponseCarriesSubscriptionAnnotation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	principal := &ctxutil.RequestData{UserID: uuid.New(), Role: types.RoleInstructor}
	content := &stubContentService{attached: &types.LessonContent{LessonID: "l1", Provider: "memory", Key: "objects/l1", Size: 4096}}
	subscriptions := &stubSubscriptionService{status: &services.SubscriptionStatus{
		Plan:              types.PlanFree,
		StorageBytes:      services.LimitStatus{Used: 200 << 20, Limit: 100 << 20, ExceededBy: 100 << 20},
		SoftLimitExceeded: true,
	}}
	handler := NewContentHandler(testutil.Logger(t), content, subscriptions)

	router := gin.New()
	router.PUT("/lms/lessons/:id/content", func(c *gin.Context) {
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), principal))
		handler.Attach(c)
	})

	body := `{"provider":"memory","key":"objects/l1","fileId":"f1","contentType":"video/mp4","size":4096}`
	req := httptest.NewRequest(http.MethodPut, "/lms/lessons/l1/content", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Attach: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Content      json.RawMessage `json:"content"`
		Subscription struct {
			Plan              string `json:"plan"`
			SoftLimitExceeded bool   `json:"softLimitExceeded"`
			SoftLimit         struct {
				StorageBytes services.LimitStatus `json:"storageBytes"`
			} `json:"softLimit"`
		} `json:"subscription"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Content) == 0 {
		t.Fatalf("response missing content record: %s", rec.Body.String())
	}
	if resp.Subscription.Plan != types.PlanFree || !resp.Subscription.SoftLimitExceeded {
		t.Fatalf("annotation: got %+v", resp.Subscription)
	}
	if resp.Subscription.SoftLimit.StorageBytes.ExceededBy != 100<<20 {
		t.Fatalf("storage limit: got %+v", resp.Subscription.SoftLimit.StorageBytes)
	}
}
