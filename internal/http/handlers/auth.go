package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/learnbridge-backend/internal/http/response"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
	"github.com/yungbote/learnbridge-backend/internal/services"
)

type AuthHandler struct {
	log           *logger.Logger
	authService   services.AuthService
	stateService  services.OAuthStateService
	subscriptions services.SubscriptionService
}

func NewAuthHandler(
	log *logger.Logger,
	authService services.AuthService,
	stateService services.OAuthStateService,
	subscriptions services.SubscriptionService,
) *AuthHandler {
	return &AuthHandler{
		log:           log.With("handler", "AuthHandler"),
		authService:   authService,
		stateService:  stateService,
		subscriptions: subscriptions,
	}
}

func (h *AuthHandler) StartGoogle(c *gin.Context) {
	start, err := h.stateService.Start(c.Request.Context())
	if err != nil {
		h.log.Error("StartGoogle failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, start)
}

func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	result, err := h.authService.Login(c.Request.Context(), code, state, time.Now())
	if err != nil {
		h.log.Warn("GoogleCallback failed", "error", err)
		response.RespondErr(c, err)
		return
	}

	status, err := h.subscriptions.Status(c.Request.Context(), result.User.ID)
	if err != nil {
		h.log.Error("subscription status failed", "error", err, "user_id", result.User.ID)
		response.RespondErr(c, err)
		return
	}

	response.RespondOK(c, gin.H{
		"accessToken":  result.Tokens.AccessToken,
		"refreshToken": result.Tokens.RefreshToken,
		"expiresIn":    result.Tokens.ExpiresIn,
		"user":         result.User,
		"plan":         status.Plan,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", fmt.Errorf("refreshToken is required"))
		return
	}
	pair, err := h.authService.Rotate(c.Request.Context(), req.RefreshToken, time.Now())
	if err != nil {
		h.log.Warn("Refresh failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, pair)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", fmt.Errorf("refreshToken is required"))
		return
	}
	if err := h.authService.Revoke(c.Request.Context(), req.RefreshToken, time.Now()); err != nil {
		h.log.Warn("Logout failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthenticated", nil)
		return
	}
	user, err := h.authService.GetUser(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	status, err := h.subscriptions.Status(c.Request.Context(), rd.UserID)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user, "plan": status.Plan})
}
