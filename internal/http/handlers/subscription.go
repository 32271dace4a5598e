package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnbridge-backend/internal/http/response"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
	"github.com/yungbote/learnbridge-backend/internal/services"
)

type SubscriptionHandler struct {
	log           *logger.Logger
	subscriptions services.SubscriptionService
}

func NewSubscriptionHandler(log *logger.Logger, subscriptions services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{
		log:           log.With("handler", "SubscriptionHandler"),
		subscriptions: subscriptions,
	}
}

func (h *SubscriptionHandler) Me(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	status, err := h.subscriptions.Status(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("subscription status failed", "error", err, "user_id", rd.UserID)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, status)
}

type setPlanRequest struct {
	UserID string `json:"userId"`
	Plan   string `json:"plan"`
}

func (h *SubscriptionHandler) SetPlan(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var req setPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", fmt.Errorf("userId must be a valid id"))
		return
	}
	record, err := h.subscriptions.SetPlan(c.Request.Context(), rd, userID, req.Plan)
	if err != nil {
		h.log.Warn("SetPlan failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"subscription": record})
}
