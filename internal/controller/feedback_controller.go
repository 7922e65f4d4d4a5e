package controller

import (
	"errors"
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"
	"net/http"

	"github.com/gin-gonic/gin"
)

type FeedbackController struct {
	feedbackService *service.FeedbackService
}

func NewFeedbackController(feedbackService *service.FeedbackService) *FeedbackController {
	return &FeedbackController{feedbackService: feedbackService}
}

// GenerateFeedback godoc
// @Summary Generate feedback for a completed interview session
// @Description Runs the analysis pipeline and persists the report. Returns 409 when feedback already exists; the report is never regenerated.
// @Tags feedback
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "session id"
// @Success 201 {object} util.Response{data=model.Feedback}
// @Failure 400 {object} util.Response
// @Failure 403 {object} util.Response
// @Failure 404 {object} util.Response
// @Failure 409 {object} util.Response
// @Router /feedback/generate/{sessionId} [post]
func (c *FeedbackController) GenerateFeedback(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	feedback, err := c.feedbackService.GenerateFeedback(ctx.Request.Context(), ctx.Param("sessionId"), claims.UserID)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrSessionNotFound):
			util.Error(ctx, http.StatusNotFound, err.Error())
		case errors.Is(err, util.ErrPermissionDenied):
			util.Forbidden(ctx)
		case errors.Is(err, util.ErrSessionNotCompleted), errors.Is(err, util.ErrNoResponses):
			util.BadRequest(ctx, err.Error())
		case errors.Is(err, util.ErrFeedbackExists):
			util.Conflict(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, feedback)
}

// GetFeedbackBySession godoc
// @Summary Get the feedback for an interview session
// @Tags feedback
// @Produce json
// @Security ApiKeyAuth
// @Param sessionId path string true "session id"
// @Success 200 {object} util.Response{data=model.Feedback}
// @Router /feedback/session/{sessionId} [get]
func (c *FeedbackController) GetFeedbackBySession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	feedback, err := c.feedbackService.GetBySession(ctx.Param("sessionId"), claims.UserID)
	if err != nil {
		respondFeedbackError(ctx, err)
		return
	}

	util.Success(ctx, feedback)
}

// GetFeedback godoc
// @Summary Get one feedback report by id
// @Tags feedback
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "feedback id"
// @Success 200 {object} util.Response{data=model.Feedback}
// @Router /feedback/{id} [get]
func (c *FeedbackController) GetFeedback(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	feedback, err := c.feedbackService.GetByID(ctx.Param("id"), claims.UserID)
	if err != nil {
		respondFeedbackError(ctx, err)
		return
	}

	util.Success(ctx, feedback)
}

// ListFeedback godoc
// @Summary List all feedback reports for the current user
// @Tags feedback
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Feedback}
// @Router /feedback [get]
func (c *FeedbackController) ListFeedback(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	feedbacks, err := c.feedbackService.ListByUser(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"count": len(feedbacks),
		"items": feedbacks,
	})
}

func respondFeedbackError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound), errors.Is(err, util.ErrFeedbackNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
