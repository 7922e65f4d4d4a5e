package controller

import (
	"bytes"
	"errors"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/service"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/logger"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Recorded answers are capped at 25MB.
const maxAudioSize = 25 << 20

type InterviewController struct {
	interviewService *service.InterviewService
	questionService  *service.QuestionService
	storageService   *service.StorageService
}

func NewInterviewController(interviewService *service.InterviewService, questionService *service.QuestionService, storageService *service.StorageService) *InterviewController {
	return &InterviewController{
		interviewService: interviewService,
		questionService:  questionService,
		storageService:   storageService,
	}
}

type CreateSessionRequest struct {
	Title     string                  `json:"title"`
	Questions []service.QuestionInput `json:"questions"`
}

type SaveResponseRequest struct {
	QuestionID    string  `json:"questionId" binding:"required"`
	Transcription string  `json:"transcription"`
	Duration      float64 `json:"duration"`
}

type GenerateQuestionsRequest struct {
	Count      int      `json:"count"`
	Difficulty string   `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	Categories []string `json:"categories"`
}

// CreateSession godoc
// @Summary Create a new interview session
// @Description Questions are taken from the request when provided, otherwise generated from the user's documents.
// @Tags interviews
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body CreateSessionRequest true "session payload"
// @Success 201 {object} util.Response{data=model.InterviewSession}
// @Router /interviews/sessions [post]
func (c *InterviewController) CreateSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateSessionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	session, err := c.interviewService.CreateSession(ctx.Request.Context(), claims.UserID, req.Title, req.Questions)
	if err != nil {
		if errors.Is(err, util.ErrNoSourceDocuments) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, session)
}

// GenerateQuestions godoc
// @Summary Generate interview questions from the user's documents
// @Tags interviews
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param body body GenerateQuestionsRequest true "generation options"
// @Success 200 {object} util.Response{data=[]model.Question}
// @Router /interviews/questions/generate [post]
func (c *InterviewController) GenerateQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req GenerateQuestionsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	questions, err := c.questionService.GenerateQuestions(ctx.Request.Context(), claims.UserID, req.Count, req.Difficulty, req.Categories)
	if err != nil {
		if errors.Is(err, util.ErrNoSourceDocuments) {
			util.BadRequest(ctx, err.Error())
			return
		}
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"count": len(questions),
		"items": questions,
	})
}

// ListSessions godoc
// @Summary List the current user's interview sessions
// @Tags interviews
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.InterviewSession}
// @Router /interviews/sessions [get]
func (c *InterviewController) ListSessions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessions, err := c.interviewService.ListSessions(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"count": len(sessions),
		"items": sessions,
	})
}

// GetSession godoc
// @Summary Get one interview session with questions and responses
// @Tags interviews
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "session id"
// @Success 200 {object} util.Response{data=model.InterviewSession}
// @Router /interviews/sessions/{id} [get]
func (c *InterviewController) GetSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.interviewService.GetSession(ctx.Param("id"), claims.UserID)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// SaveResponse godoc
// @Summary Save an answer for a question in a session
// @Description Accepts multipart (with optional audio file) or plain form fields. A resave for the same question replaces the earlier answer.
// @Tags interviews
// @Accept multipart/form-data
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "session id"
// @Param questionId formData string true "question id"
// @Param transcription formData string true "transcribed answer"
// @Param duration formData number false "answer duration in seconds"
// @Param audio formData file false "recorded audio"
// @Success 200 {object} util.Response{data=model.InterviewSession}
// @Router /interviews/sessions/{id}/responses [post]
func (c *InterviewController) SaveResponse(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	sessionID := ctx.Param("id")

	var questionID, transcription string
	var duration float64
	if strings.HasPrefix(ctx.ContentType(), "application/json") {
		var req SaveResponseRequest
		if err := ctx.ShouldBindJSON(&req); err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		questionID = req.QuestionID
		transcription = req.Transcription
		duration = req.Duration
	} else {
		questionID = ctx.PostForm("questionId")
		transcription = ctx.PostForm("transcription")
		duration, _ = strconv.ParseFloat(ctx.DefaultPostForm("duration", "0"), 64)
	}
	if questionID == "" {
		util.BadRequest(ctx, "questionId is required")
		return
	}

	audioURL := ""
	if fileHeader, err := ctx.FormFile("audio"); err == nil {
		url, probed, err := c.storeAudio(ctx, claims.UserID, sessionID, fileHeader)
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		audioURL = url
		if duration == 0 {
			duration = probed
		}
	}

	session, err := c.interviewService.SaveResponse(sessionID, claims.UserID, questionID, transcription, audioURL, duration)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestionNotFound), errors.Is(err, util.ErrSessionCompleted):
			util.BadRequest(ctx, err.Error())
		default:
			respondSessionError(ctx, err)
		}
		return
	}

	util.Success(ctx, session)
}

// EndSession godoc
// @Summary End an interview session
// @Tags interviews
// @Produce json
// @Security ApiKeyAuth
// @Param id path string true "session id"
// @Success 200 {object} util.Response{data=model.InterviewSession}
// @Router /interviews/sessions/{id}/end [put]
func (c *InterviewController) EndSession(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	session, err := c.interviewService.EndSession(ctx.Param("id"), claims.UserID)
	if err != nil {
		respondSessionError(ctx, err)
		return
	}

	util.Success(ctx, session)
}

// storeAudio validates and stores an uploaded recording, returning its URL
// and the probed duration (0 when probing is unavailable).
func (c *InterviewController) storeAudio(ctx *gin.Context, userID uint, sessionID string, fileHeader *multipart.FileHeader) (string, float64, error) {
	if fileHeader.Size > maxAudioSize {
		return "", 0, errors.New("audio file exceeds the 25MB limit")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", 0, err
	}
	defer file.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(file, head)
	head = head[:n]
	// Browsers send recordings without a reliable Content-Type, so sniff.
	mimeType := http.DetectContentType(head)
	if !util.IsAudio(mimeType) && mimeType != util.MimeOctetStream {
		return "", 0, fmt.Errorf("invalid audio type: %s", mimeType)
	}

	filename := fmt.Sprintf("audio/%d/%s/%s%s", userID, sessionID, model.GenerateUUID(), filepath.Ext(fileHeader.Filename))
	reader := io.MultiReader(bytes.NewReader(head), file)
	audioURL, err := c.storageService.Upload(ctx.Request.Context(), filename, reader, fileHeader.Size, mimeType)
	if err != nil {
		return "", 0, err
	}

	// Duration is best effort: only probeable when the file is on local disk.
	duration := 0.0
	if localPath, ok := c.storageService.LocalPath(filename); ok {
		if info, err := util.GetAudioInfo(localPath); err == nil {
			duration = info.Duration
		} else {
			logger.Log.Warn("failed to probe audio duration", zap.String("file", filename), zap.Error(err))
		}
	}

	return audioURL, duration, nil
}

func respondSessionError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, util.ErrSessionNotFound):
		util.NotFound(ctx)
	case errors.Is(err, util.ErrPermissionDenied):
		util.Forbidden(ctx)
	default:
		util.LogInternalError(ctx, err)
	}
}
