package handlers

import (
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnbridge-backend/internal/delivery"
	"github.com/yungbote/learnbridge-backend/internal/http/response"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
	"github.com/yungbote/learnbridge-backend/internal/services"
)

type ContentHandler struct {
	log           *logger.Logger
	content       services.ContentService
	subscriptions services.SubscriptionService
}

func NewContentHandler(log *logger.Logger, content services.ContentService, subscriptions services.SubscriptionService) *ContentHandler {
	return &ContentHandler{
		log:           log.With("handler", "ContentHandler"),
		content:       content,
		subscriptions: subscriptions,
	}
}

// Attach grows the owner's storage usage, so the response carries the
// same subscription annotation as the other dimension-affecting writes.
func (h *ContentHandler) Attach(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var input services.AttachContentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	record, err := h.content.Attach(c.Request.Context(), rd, c.Param("id"), input)
	if err != nil {
		h.log.Warn("Attach failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"content":      record,
		"subscription": subscriptionAnnotation(c.Request.Context(), h.log, h.subscriptions, rd),
	})
}

func (h *ContentHandler) ContentURL(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	signed, err := h.content.ContentURL(c.Request.Context(), rd, c.Param("id"), time.Now())
	if err != nil {
		h.log.Warn("ContentURL failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, signed)
}

type verifyRequest struct {
	Provider string `json:"provider"`
	Key      string `json:"key"`
	LessonID string `json:"lessonId"`
	UserID   string `json:"userId"`
	Exp      string `json:"exp"`
	Sig      string `json:"sig"`
}

func (h *ContentHandler) Verify(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	valid, err := h.content.Verify(rd, delivery.Params{
		Provider: req.Provider,
		Key:      req.Key,
		LessonID: req.LessonID,
		UserID:   req.UserID,
		Exp:      req.Exp,
		Sig:      req.Sig,
	}, time.Now())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"valid": valid})
}

// Download redeems a signed URL. It sits outside the auth middleware:
// the URL signature is the only credential.
func (h *ContentHandler) Download(c *gin.Context) {
	key := c.Param("key")
	if len(key) > 0 && key[0] == '/' {
		key = key[1:]
	}
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}

	params := delivery.Params{
		Provider: c.Param("provider"),
		Key:      key,
		LessonID: c.Query("lessonId"),
		UserID:   c.Query("uid"),
		Exp:      c.Query("exp"),
		Sig:      c.Query("sig"),
	}
	reader, info, err := h.content.Open(c.Request.Context(), params, time.Now())
	if err != nil {
		h.log.Warn("Download rejected", "error", err, "provider", params.Provider)
		response.RespondErr(c, err)
		return
	}
	defer reader.Close()

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		h.log.Warn("Download stream interrupted", "error", err)
	}
}
