package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"golang.org/x/oauth2"
	"gorm.io/gorm"

	authrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/auth"
	billingrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/billing"
	learningrepos "github.com/yungbote/learnbridge-backend/internal/data/repos/learning"
	"github.com/yungbote/learnbridge-backend/internal/data/repos/testutil"
	"github.com/yungbote/learnbridge-backend/internal/storage"
)

// fakeExchanger satisfies IdentityExchanger without a provider round
// trip.
type fakeExchanger struct {
	profiles map[string]*Profile
	err      error
}

func (fe *fakeExchanger) Exchange(_ context.Context, code string) (*Profile, error) {
	if fe.err != nil {
		return nil, fe.err
	}
	profile, ok := fe.profiles[code]
	if !ok {
		return nil, fmt.Errorf("unknown code %q", code)
	}
	return profile, nil
}

type testStack struct {
	tx *gorm.DB

	users       authrepos.UserRepo
	sessions    authrepos.RefreshSessionRepo
	progress    learningrepos.LessonProgressRepo
	enrollments learningrepos.EnrollmentRepo
	content     learningrepos.LessonContentRepo

	exchanger *fakeExchanger
	memory    *storage.MemoryStore

	access        AccessService
	states        OAuthStateService
	auth          AuthService
	learning      LearningService
	contentSvc    ContentService
	subscriptions SubscriptionService
	dashboard     DashboardService
}

var testAuthConfig = AuthConfig{
	AccessSecret:     []byte("test-access-secret-0123456789abcdef"),
	RefreshSecret:    []byte("test-refresh-secret-0123456789abcdef"),
	Issuer:           "learnbridge-test",
	Audience:         "learnbridge-test-api",
	AccessTTL:        15 * time.Minute,
	RefreshTTL:       7 * 24 * time.Hour,
	AdminEmails:      []string{"admin@example.com"},
	InstructorEmails: []string{"instructor@example.com"},
}

var testDeliveryConfig = DeliveryConfig{
	BaseURL:    "http://localhost:8080",
	Secret:     []byte("test-delivery-secret-0123456789abcd"),
	TTLSeconds: 120,
}

// newTestStack wires the full service graph over a per-test transaction
// so every write rolls back when the test finishes.
func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)

	users := authrepos.NewUserRepo(tx, log)
	sessions := authrepos.NewRefreshSessionRepo(tx, log)
	oauthStates := authrepos.NewOAuthStateRepo(tx, log)
	courses := learningrepos.NewCourseRepo(tx, log)
	modules := learningrepos.NewCourseModuleRepo(tx, log)
	lessons := learningrepos.NewLessonRepo(tx, log)
	enrollments := learningrepos.NewEnrollmentRepo(tx, log)
	progress := learningrepos.NewLessonProgressRepo(tx, log)
	content := learningrepos.NewLessonContentRepo(tx, log)
	subscriptions := billingrepos.NewSubscriptionRepo(tx, log)

	conf := &oauth2.Config{
		ClientID:    "test-client",
		RedirectURL: "http://localhost:8080/auth/google/callback",
		Scopes:      []string{"openid", "email", "profile"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}

	exchanger := &fakeExchanger{profiles: map[string]*Profile{}}
	access := NewAccessService()
	states := NewOAuthStateService(log, oauthStates, conf)
	auth := NewAuthService(log, tx, testAuthConfig, users, sessions, states, exchanger)
	learning := NewLearningService(log, tx, access, users, courses, modules, lessons, enrollments, progress)

	memory := storage.NewMemoryStore()
	contentSvc := NewContentService(log, testDeliveryConfig, access, learning, content, storage.Registry{"memory": memory})

	subscriptionSvc := NewSubscriptionService(log, access, users, subscriptions, courses, enrollments, content)
	dashboard := NewDashboardService(log, access, learning, users, modules, lessons, enrollments, progress, content)

	return &testStack{
		tx:            tx,
		users:         users,
		sessions:      sessions,
		progress:      progress,
		enrollments:   enrollments,
		content:       content,
		exchanger:     exchanger,
		memory:        memory,
		access:        access,
		states:        states,
		auth:          auth,
		learning:      learning,
		contentSvc:    contentSvc,
		subscriptions: subscriptionSvc,
		dashboard:     dashboard,
	}
}
