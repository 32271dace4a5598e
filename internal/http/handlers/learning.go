package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/learnbridge-backend/internal/http/response"
	"github.com/yungbote/learnbridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/learnbridge-backend/internal/platform/logger"
	"github.com/yungbote/learnbridge-backend/internal/services"
)

type LearningHandler struct {
	log           *logger.Logger
	learning      services.LearningService
	subscriptions services.SubscriptionService
}

func NewLearningHandler(
	log *logger.Logger,
	learning services.LearningService,
	subscriptions services.SubscriptionService,
) *LearningHandler {
	return &LearningHandler{
		log:           log.With("handler", "LearningHandler"),
		learning:      learning,
		subscriptions: subscriptions,
	}
}

// subscriptionAnnotation builds the quota annotation attached to writes
// that grow a tracked dimension. Limits are soft: the write already
// succeeded by the time this runs.
func subscriptionAnnotation(ctx context.Context, log *logger.Logger, subscriptions services.SubscriptionService, rd *ctxutil.RequestData) gin.H {
	status, err := subscriptions.Status(ctx, rd.UserID)
	if err != nil {
		log.Warn("soft limit annotation failed", "error", err, "user_id", rd.UserID)
		return nil
	}
	return gin.H{
		"plan":              status.Plan,
		"softLimitExceeded": status.SoftLimitExceeded,
		"softLimit": gin.H{
			"createdCourses":    status.CreatedCourses,
			"activeEnrollments": status.ActiveEnrollments,
			"storageBytes":      status.StorageBytes,
		},
	}
}

func (h *LearningHandler) CreateCourse(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var input services.CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	course, err := h.learning.CreateCourse(c.Request.Context(), rd, input)
	if err != nil {
		h.log.Warn("CreateCourse failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"course":       course,
		"subscription": subscriptionAnnotation(c.Request.Context(), h.log, h.subscriptions, rd),
	})
}

func (h *LearningHandler) CreateModule(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var input services.CreateModuleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	module, err := h.learning.CreateModule(c.Request.Context(), rd, input)
	if err != nil {
		h.log.Warn("CreateModule failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"module": module})
}

func (h *LearningHandler) CreateLesson(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var input services.CreateLessonInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	lesson, err := h.learning.CreateLesson(c.Request.Context(), rd, input)
	if err != nil {
		h.log.Warn("CreateLesson failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"lesson": lesson})
}

func (h *LearningHandler) CreateEnrollment(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var input services.CreateEnrollmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	enrollment, err := h.learning.CreateEnrollment(c.Request.Context(), rd, input)
	if err != nil {
		h.log.Warn("CreateEnrollment failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondCreated(c, gin.H{
		"enrollment":   enrollment,
		"subscription": subscriptionAnnotation(c.Request.Context(), h.log, h.subscriptions, rd),
	})
}

func (h *LearningHandler) UpdateProgress(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	var input services.UpdateProgressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_input", err)
		return
	}
	progress, err := h.learning.UpdateProgress(c.Request.Context(), rd, input, time.Now())
	if err != nil {
		h.log.Warn("UpdateProgress failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"progress": progress})
}

func (h *LearningHandler) Completion(c *gin.Context) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	result, err := h.learning.Completion(c.Request.Context(), rd, c.Param("id"))
	if err != nil {
		h.log.Warn("Completion failed", "error", err)
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, result)
}
