package service

import (
	"context"
	"errors"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/repository"
	"interview_prep_backend/internal/util"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type InterviewService struct {
	Interviews *repository.InterviewRepository
	Questions  *QuestionService
	log        *zap.Logger
}

func NewInterviewService(interviews *repository.InterviewRepository, questions *QuestionService, log *zap.Logger) *InterviewService {
	return &InterviewService{
		Interviews: interviews,
		Questions:  questions,
		log:        log,
	}
}

// QuestionInput is a caller-provided question for a new session, used when
// the client picked questions up front instead of generating them.
type QuestionInput struct {
	Text       string `json:"text" binding:"required"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Source     string `json:"source"`
}

// CreateSession starts a new in-progress session. Questions come from the
// request when provided, otherwise they are generated from the user's
// documents.
func (s *InterviewService) CreateSession(ctx context.Context, userID uint, title string, provided []QuestionInput) (*model.InterviewSession, error) {
	var questions []model.Question

	if len(provided) > 0 {
		questions = make([]model.Question, 0, len(provided))
		for _, q := range provided {
			questions = append(questions, model.Question{
				Text:       q.Text,
				Category:   defaultString(q.Category, "general"),
				Difficulty: normalizeDifficulty(q.Difficulty),
				Source:     normalizeSource(q.Source),
			})
		}
	} else {
		generated, err := s.Questions.GenerateQuestions(ctx, userID, defaultQuestionCount, "", nil)
		if err != nil {
			return nil, err
		}
		questions = generated
	}

	for i := range questions {
		questions[i].Position = i
	}

	if title == "" {
		title = fmt.Sprintf("Interview Session - %s", time.Now().Format(util.DateFormat))
	}

	session := &model.InterviewSession{
		UserID:    userID,
		Title:     title,
		Status:    model.SessionInProgress,
		StartTime: time.Now(),
		Questions: questions,
	}

	if err := s.Interviews.Create(session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *InterviewService) ListSessions(userID uint) ([]model.InterviewSession, error) {
	return s.Interviews.ListByUser(userID)
}

func (s *InterviewService) GetSession(id string, userID uint) (*model.InterviewSession, error) {
	session, err := s.Interviews.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}
	return session, nil
}

// SaveResponse records an answer for a question in the session. Resaving
// for the same question replaces the earlier answer.
func (s *InterviewService) SaveResponse(sessionID string, userID uint, questionID, transcription, audioURL string, duration float64) (*model.InterviewSession, error) {
	session, err := s.GetSession(sessionID, userID)
	if err != nil {
		return nil, err
	}

	if session.Status == model.SessionCompleted {
		return nil, util.ErrSessionCompleted
	}

	found := false
	for _, q := range session.Questions {
		if q.ID == questionID {
			found = true
			break
		}
	}
	if !found {
		return nil, util.ErrQuestionNotFound
	}

	resp := &model.Response{
		SessionID:     sessionID,
		QuestionID:    questionID,
		Transcription: transcription,
		AudioURL:      audioURL,
		Duration:      duration,
	}
	if err := s.Interviews.SaveResponse(resp); err != nil {
		return nil, err
	}

	return s.Interviews.FindByID(sessionID)
}

// EndSession moves the session to completed. Ending an already completed
// session is a no-op; the transition happens once and endTime stays fixed.
func (s *InterviewService) EndSession(id string, userID uint) (*model.InterviewSession, error) {
	session, err := s.GetSession(id, userID)
	if err != nil {
		return nil, err
	}

	if session.Status == model.SessionCompleted {
		return session, nil
	}

	now := time.Now()
	session.Status = model.SessionCompleted
	session.EndTime = &now

	if err := s.Interviews.Save(session); err != nil {
		return nil, err
	}
	return session, nil
}
