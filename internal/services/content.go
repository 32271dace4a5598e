package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	learningrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/learning"
	"github.com/yungbote/learnbridge-backend/internal/delivery"
	types "github.com/yungbote/learnbridge-backend/internal/domain"
	"github.com/yungbote/learnbridge-backend/internal/platform/apierr"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
	"github.com/yungbote/learnbridge-backend/internal/storage"
)

type AttachContentInput struct {
	Provider    string `json:"provider"`
	Key         string `json:"key"`
	FileID      string `json:"fileId"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type SignedContentURL struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresIn"`
}

// DeliveryConfig holds the signed-URL parameters. TTLSeconds is already
// capped by config validation.
type DeliveryConfig struct {
	BaseURL    string
	Secret     []byte
	TTLSeconds int
}

// ContentService attaches storage metadata to lessons and issues or
// redeems capability URLs for it. The bytes themselves live with the
// provider; only Open touches a store, and only after the signature
// checks out.
type ContentService interface {
	Attach(ctx context.Context, principal *ctxutil.RequestData, lessonID string, input AttachContentInput) (*types.LessonContent, error)
	ContentURL(ctx context.Context, principal *ctxutil.RequestData, lessonID string, now time.Time) (*SignedContentURL, error)
	Verify(principal *ctxutil.RequestData, params delivery.Params, now time.Time) (bool, error)
	Open(ctx context.Context, params delivery.Params, now time.Time) (io.ReadCloser, *storage.ObjectInfo, error)
}

type contentService struct {
	log      *logger.Logger
	cfg      DeliveryConfig
	access   AccessService
	learning LearningService
	content  learningrepos.LessonContentRepo
	stores   storage.Registry
}

func NewContentService(
	log *logger.Logger,
	cfg DeliveryConfig,
	access AccessService,
	learning LearningService,
	content learningrepos.LessonContentRepo,
	stores storage.Registry,
) ContentService {
	return &contentService{
		log:      log.With("service", "ContentService"),
		cfg:      cfg,
		access:   access,
		learning: learning,
		content:  content,
		stores:   stores,
	}
}

// Attach records or overwrites the lesson's content metadata. One record
// per lesson; re-attaching replaces it.
func (cs *contentService) Attach(ctx context.Context, principal *ctxutil.RequestData, lessonID string, input AttachContentInput) (*types.LessonContent, error) {
	if err := cs.access.Require(principal, OpContentWrite); err != nil {
		return nil, err
	}
	if input.Provider == "" || input.Key == "" || input.FileID == "" || input.ContentType == "" {
		return nil, apierr.InvalidInput(fmt.Errorf("provider, key, fileId and contentType are required"))
	}
	if input.Size < 0 {
		return nil, apierr.InvalidInput(fmt.Errorf("size must not be negative"))
	}

	_, course, err := cs.learning.CourseForLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	if err := cs.access.RequireCourseOwner(principal, course); err != nil {
		return nil, err
	}

	record := &types.LessonContent{
		LessonID:    lessonID,
		Provider:    input.Provider,
		Key:         input.Key,
		FileID:      input.FileID,
		ContentType: input.ContentType,
		Size:        input.Size,
	}
	if err := cs.content.Upsert(ctx, nil, record); err != nil {
		return nil, fmt.Errorf("attach content: %w", err)
	}
	return record, nil
}

func (cs *contentService) ContentURL(ctx context.Context, principal *ctxutil.RequestData, lessonID string, now time.Time) (*SignedContentURL, error) {
	if err := cs.access.Require(principal, OpContentURLRead); err != nil {
		return nil, err
	}

	_, course, err := cs.learning.CourseForLesson(ctx, lessonID)
	if err != nil {
		return nil, err
	}
	switch principal.Role {
	case types.RoleAdmin:
	case types.RoleInstructor:
		if err := cs.access.RequireCourseOwner(principal, course); err != nil {
			return nil, err
		}
	default:
		enrollment, err := cs.learning.EnrollmentFor(ctx, course.ID, principal.UserID)
		if err != nil {
			return nil, fmt.Errorf("lookup enrollment: %w", err)
		}
		if enrollment == nil {
			return nil, apierr.AccessDenied(fmt.Errorf("not enrolled in course %s", course.ID))
		}
	}

	record, err := cs.content.GetByLessonID(ctx, nil, lessonID)
	if err != nil {
		return nil, fmt.Errorf("lookup content: %w", err)
	}
	if record == nil {
		return nil, apierr.NotFound(fmt.Errorf("lesson %s has no content", lessonID))
	}

	ttl := cs.cfg.TTLSeconds
	if ttl <= 0 || ttl > delivery.MaxTTLSeconds {
		ttl = delivery.MaxTTLSeconds
	}
	url := delivery.Sign(cs.cfg.BaseURL, cs.cfg.Secret, now, delivery.Grant{
		UserID:     principal.UserID.String(),
		LessonID:   lessonID,
		Provider:   record.Provider,
		Key:        record.Key,
		FileID:     record.FileID,
		TTLSeconds: ttl,
	})
	return &SignedContentURL{URL: url, ExpiresIn: ttl}, nil
}

// Verify answers valid/invalid and nothing else; a bad signature is not
// an error.
func (cs *contentService) Verify(principal *ctxutil.RequestData, params delivery.Params, now time.Time) (bool, error) {
	if err := cs.access.Require(principal, OpContentVerify); err != nil {
		return false, err
	}
	return delivery.Verify(cs.cfg.Secret, now, params), nil
}

// Open redeems a capability URL. No access token is involved: the
// signature is the credential.
func (cs *contentService) Open(ctx context.Context, params delivery.Params, now time.Time) (io.ReadCloser, *storage.ObjectInfo, error) {
	if !delivery.Verify(cs.cfg.Secret, now, params) {
		return nil, nil, apierr.AccessDenied(fmt.Errorf("invalid or expired content signature"))
	}
	store, err := cs.stores.Lookup(params.Provider)
	if err != nil {
		return nil, nil, apierr.NotFound(err)
	}
	reader, info, err := store.Get(ctx, params.Key)
	if err != nil {
		return nil, nil, apierr.New(http.StatusBadGateway, apierr.CodeProviderError, fmt.Errorf("provider fetch: %w", err))
	}
	return reader, info, nil
}
