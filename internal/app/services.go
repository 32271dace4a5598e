package app

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	"github.com/yungbote/learnbridge-backend/internal/platform/gcp"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
	"github.com/yungbote/learnbridge-backend/internal/services"
	"github.com/yungbote/learnbridge-backend/internal/storage"
)

type Services struct {
	Access        services.AccessService
	OAuthStates   services.OAuthStateService
	Auth          services.AuthService
	Learning      services.LearningService
	Content       services.ContentService
	Subscriptions services.SubscriptionService
	Dashboard     services.DashboardService
}

func wireServices(ctx context.Context, db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, error) {
	oauthConf := &oauth2.Config{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURI,
		Scopes:       []string{"openid", "email", "profile"},
		Endpoint:     google.Endpoint,
	}

	access := services.NewAccessService()
	states := services.NewOAuthStateService(log, repos.OAuthStates, oauthConf)
	exchanger := services.NewGoogleExchanger(log, oauthConf)

	auth := services.NewAuthService(log, db, services.AuthConfig{
		AccessSecret:     []byte(cfg.AccessSecret),
		RefreshSecret:    []byte(cfg.RefreshSecret),
		Issuer:           cfg.Issuer,
		Audience:         cfg.Audience,
		AccessTTL:        cfg.AccessTTL,
		RefreshTTL:       cfg.RefreshTTL,
		AdminEmails:      cfg.AdminEmails,
		InstructorEmails: cfg.InstructorEmails,
	}, repos.Users, repos.RefreshSessions, states, exchanger)

	learning := services.NewLearningService(
		log, db, access,
		repos.Users, repos.Courses, repos.Modules,
		repos.Lessons, repos.Enrollments, repos.Progress,
	)

	stores := storage.Registry{"memory": storage.NewMemoryStore()}
	if cfg.GCSBucket != "" {
		bucket, err := gcp.NewBucketStore(ctx, log, cfg.GCSBucket)
		if err != nil {
			return Services{}, fmt.Errorf("init gcs store: %w", err)
		}
		stores["gcs"] = bucket
	}

	content := services.NewContentService(log, services.DeliveryConfig{
		BaseURL:    cfg.DeliveryBaseURL,
		Secret:     []byte(cfg.DeliverySecret),
		TTLSeconds: cfg.DeliveryTTLSeconds,
	}, access, learning, repos.LessonContent, stores)

	subscriptions := services.NewSubscriptionService(
		log, access,
		repos.Users, repos.Subscriptions,
		repos.Courses, repos.Enrollments, repos.LessonContent,
	)

	dashboard := services.NewDashboardService(
		log, access, learning,
		repos.Users, repos.Modules, repos.Lessons,
		repos.Enrollments, repos.Progress, repos.LessonContent,
	)

	return Services{
		Access:        access,
		OAuthStates:   states,
		Auth:          auth,
		Learning:      learning,
		Content:       content,
		Subscriptions: subscriptions,
		Dashboard:     dashboard,
	}, nil
}
