package app

import (
	httpH "github.com/yungbote/learnbridge-backend/internal/http/handlers"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
)

type Handlers struct {
	Auth         *httpH.AuthHandler
	Subscription *httpH.SubscriptionHandler
	Learning     *httpH.LearningHandler
	Content      *httpH.ContentHandler
	Dashboard    *httpH.DashboardHandler
	Health       *httpH.HealthHandler
}

func wireHandlers(log *logger.Logger, svcs Services) Handlers {
	return Handlers{
		Auth:         httpH.NewAuthHandler(log, svcs.Auth, svcs.OAuthStates, svcs.Subscriptions),
		Subscription: httpH.NewSubscriptionHandler(log, svcs.Subscriptions),
		Learning:     httpH.NewLearningHandler(log, svcs.Learning, svcs.Subscriptions),
		Content:      httpH.NewContentHandler(log, svcs.Content, svcs.Subscriptions),
		Dashboard:    httpH.NewDashboardHandler(log, svcs.Dashboard),
		Health:       httpH.NewHealthHandler(),
	}
}
