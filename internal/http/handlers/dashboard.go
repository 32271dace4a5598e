package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnbridge-backend/internal/http/response"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
	"github.com/yungbote/learnbridge-backend/internal/services"
)

type DashboardHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		log:       log.With("handler", "DashboardHandler"),
		dashboard: dashboard,
	}
}

func (h *DashboardHandler) CourseDashboard(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	view, err := h.dashboard.Dashboard(c.Request.Context(), rd, c.Param("courseId"))
	if err != nil {
		h.log.Warn("CourseDashboard failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, view)
}
