package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"interview_prep_backend/pkg/monitoring"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionStore and FeedbackStore are the slices of the repository layer the
// feedback pipeline needs; *repository.InterviewRepository and
// *repository.FeedbackRepository satisfy them.
type SessionStore interface {
	FindByID(id string) (*model.InterviewSession, error)
}

type FeedbackStore interface {
	Create(feedback *model.Feedback) error
	FindByInterviewID(interviewID string) (*model.Feedback, error)
	ExistsForInterview(interviewID string) (bool, error)
	FindByID(id string) (*model.Feedback, error)
	ListByUser(userID uint) ([]model.Feedback, error)
}

type FeedbackService struct {
	sessions  SessionStore
	feedbacks FeedbackStore
	llm       Completer
	log       *zap.Logger
}

func NewFeedbackService(sessions SessionStore, feedbacks FeedbackStore, llm Completer, log *zap.Logger) *FeedbackService {
	return &FeedbackService{
		sessions:  sessions,
		feedbacks: feedbacks,
		llm:       llm,
		log:       log,
	}
}

// questionFeedback is the per-question generator output.
type questionFeedback struct {
	Items       []model.FeedbackItem
	Suggestions []model.Suggestion
}

// GenerateFeedback runs the full pipeline for one completed session: one
// LLM analysis per answered question, aggregation into an overall report,
// and a single idempotent create. LLM failures degrade to fallback content;
// only precondition violations and persistence failures surface as errors.
func (s *FeedbackService) GenerateFeedback(ctx context.Context, sessionID string, userID uint) (*model.Feedback, error) {
	start := time.Now()
	defer func() {
		monitoring.FeedbackGenerationDuration.Observe(time.Since(start).Seconds())
	}()

	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	if session.Status != model.SessionCompleted {
		return nil, util.ErrSessionNotCompleted
	}

	exists, err := s.feedbacks.ExistsForInterview(sessionID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, util.ErrFeedbackExists
	}

	if len(session.Responses) == 0 {
		return nil, util.ErrNoResponses
	}

	responsesByQuestion := make(map[string]*model.Response, len(session.Responses))
	for i := range session.Responses {
		responsesByQuestion[session.Responses[i].QuestionID] = &session.Responses[i]
	}

	// One LLM call per answered question. Calls run concurrently; results
	// are collected into a slice indexed by question order so the persisted
	// items keep that order regardless of completion order.
	type analyzed struct {
		question *model.Question
		feedback questionFeedback
	}
	pending := make([]*model.Question, 0, len(session.Questions))
	for i := range session.Questions {
		q := &session.Questions[i]
		if resp, ok := responsesByQuestion[q.ID]; ok && resp.Transcription != "" {
			pending = append(pending, q)
		}
	}

	results := make([]analyzed, len(pending))
	var wg sync.WaitGroup
	for i, q := range pending {
		wg.Add(1)
		go func(i int, q *model.Question) {
			defer wg.Done()
			resp := responsesByQuestion[q.ID]
			results[i] = analyzed{
				question: q,
				feedback: s.generateQuestionFeedback(ctx, q.Text, resp.Transcription),
			}
		}(i, q)
	}
	wg.Wait()

	var items []model.FeedbackItem
	var suggestions []model.Suggestion
	for _, r := range results {
		for _, item := range r.feedback.Items {
			item.QuestionID = r.question.ID
			item.Position = len(items)
			items = append(items, item)
		}
		for _, sg := range r.feedback.Suggestions {
			sg.QuestionID = r.question.ID
			sg.Position = len(suggestions)
			suggestions = append(suggestions, sg)
		}
	}

	overall := s.aggregateOverallFeedback(ctx, session.Questions, session.Responses, items)

	feedback := &model.Feedback{
		InterviewID:  session.ID,
		UserID:       session.UserID,
		OverallScore: overall.OverallScore,
		Summary:      overall.Summary,
		Strengths:    overall.Strengths,
		Weaknesses:   overall.Weaknesses,
		Items:        items,
		Suggestions:  suggestions,
	}

	// Persist before responding. The unique index on interview_id decides
	// the winner when two generations race past the existence check.
	if err := s.feedbacks.Create(feedback); err != nil {
		if errors.Is(err, util.ErrFeedbackExists) {
			return nil, err
		}
		s.log.Error("failed to persist feedback",
			zap.String("sessionId", sessionID),
			zap.Error(err))
		return nil, err
	}

	return feedback, nil
}

// llmQuestionFeedback mirrors the JSON shape the model is asked to return.
type llmQuestionFeedback struct {
	FeedbackItems []struct {
		Category  string `json:"category"`
		Sentiment string `json:"sentiment"`
		Content   string `json:"content"`
	} `json:"feedbackItems"`
	Suggestions []struct {
		Category string `json:"category"`
		Content  string `json:"content"`
	} `json:"suggestions"`
}

// generateQuestionFeedback analyzes one question/response pair. It never
// fails: one failed LLM call (no retry) yields deterministic fallback
// content so the pipeline degrades instead of aborting.
func (s *FeedbackService) generateQuestionFeedback(ctx context.Context, questionText, responseText string) questionFeedback {
	prompt := fmt.Sprintf(`Question: %s

Response: %s

Please analyze this interview response and provide detailed feedback.
Format your response as a JSON object with the following structure:
{
  "feedbackItems": [
    {
      "category": "content|delivery|language|confidence",
      "sentiment": "positive|negative|neutral",
      "content": "Detailed feedback about the response"
    }
  ],
  "suggestions": [
    {
      "category": "content|delivery|language|confidence",
      "content": "Specific suggestion for improvement"
    }
  ]
}`, questionText, responseText)

	content, err := s.llm.Complete(ctx,
		"You are an AI assistant that provides detailed feedback on interview responses.",
		prompt, 1000, 0.7)
	if err != nil {
		s.log.Warn("per-question LLM call failed, using fallback feedback", zap.Error(err))
		monitoring.LLMFallbackCounter.WithLabelValues("question_feedback").Inc()
		return fallbackQuestionFeedback()
	}

	jsonText, err := util.ExtractJSONObject(content)
	if err != nil {
		s.log.Warn("no JSON object in LLM feedback output", zap.Error(err))
		monitoring.LLMFallbackCounter.WithLabelValues("question_feedback").Inc()
		return fallbackQuestionFeedback()
	}

	var parsed llmQuestionFeedback
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		s.log.Warn("failed to decode LLM feedback output", zap.Error(err))
		monitoring.LLMFallbackCounter.WithLabelValues("question_feedback").Inc()
		return fallbackQuestionFeedback()
	}

	var result questionFeedback
	for _, item := range parsed.FeedbackItems {
		if item.Content == "" {
			continue
		}
		result.Items = append(result.Items, model.FeedbackItem{
			Category:  normalizeCategory(item.Category),
			Sentiment: normalizeSentiment(item.Sentiment),
			Content:   item.Content,
		})
	}
	for _, sg := range parsed.Suggestions {
		if sg.Content == "" {
			continue
		}
		result.Suggestions = append(result.Suggestions, model.Suggestion{
			Category: normalizeCategory(sg.Category),
			Content:  sg.Content,
		})
	}

	return result
}

func fallbackQuestionFeedback() questionFeedback {
	return questionFeedback{
		Items: []model.FeedbackItem{{
			Category:  model.CategoryContent,
			Sentiment: model.SentimentNeutral,
			Content:   "We were unable to generate detailed feedback for this response.",
		}},
		Suggestions: []model.Suggestion{{
			Category: model.CategoryContent,
			Content:  "Consider providing more specific examples in your answer.",
		}},
	}
}

func normalizeCategory(category string) model.FeedbackCategory {
	switch model.FeedbackCategory(category) {
	case model.CategoryContent, model.CategoryDelivery, model.CategoryLanguage, model.CategoryConfidence:
		return model.FeedbackCategory(category)
	}
	return model.CategoryContent
}

func normalizeSentiment(sentiment string) model.FeedbackSentiment {
	switch model.FeedbackSentiment(sentiment) {
	case model.SentimentPositive, model.SentimentNegative, model.SentimentNeutral:
		return model.FeedbackSentiment(sentiment)
	}
	return model.SentimentNeutral
}

// overallFeedback holds the aggregated fields of the report.
type overallFeedback struct {
	OverallScore int
	Summary      string
	Strengths    []string
	Weaknesses   []string
}

// aggregateOverallFeedback combines per-question items into a score and
// narrative. Any failure inside this step, including a failed summary LLM
// call, yields a fixed conservative default rather than an error.
func (s *FeedbackService) aggregateOverallFeedback(ctx context.Context, questions []model.Question, responses []model.Response, items []model.FeedbackItem) (result overallFeedback) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("feedback aggregation panicked, using conservative default", zap.Any("panic", r))
			result = conservativeOverallFeedback()
		}
	}()

	responseRate := 0.0
	if len(questions) > 0 {
		responseRate = float64(len(responses)) / float64(len(questions))
	}

	positiveRatio := 0.0
	positive := 0
	for _, item := range items {
		if item.Sentiment == model.SentimentPositive {
			positive++
		}
	}
	if len(items) > 0 {
		positiveRatio = float64(positive) / float64(len(items))
	}

	overallScore := int(math.Round(responseRate*40 + positiveRatio*60))

	var strengths, weaknesses []string
	for _, item := range items {
		switch item.Sentiment {
		case model.SentimentPositive:
			if len(strengths) < 5 {
				strengths = append(strengths, item.Content)
			}
		case model.SentimentNegative:
			if len(weaknesses) < 5 {
				weaknesses = append(weaknesses, item.Content)
			}
		}
	}
	if len(strengths) == 0 {
		strengths = []string{"No specific strengths identified."}
	}
	if len(weaknesses) == 0 {
		weaknesses = []string{"No specific areas for improvement identified."}
	}

	summary := fmt.Sprintf(
		"You completed %d out of %d questions with an overall score of %d/100. Focus on improving the areas highlighted in your feedback.",
		len(responses), len(questions), overallScore)

	// With LLM access the summary is personalized; without it the template
	// above is the result, as a distinct cheaper path rather than a failure.
	if s.llm.Configured() {
		prompt := fmt.Sprintf(`I've analyzed an interview with %d questions and %d responses.
The candidate received positive feedback on: %s
Areas for improvement include: %s
The overall score is %d/100.

Please generate a concise, personalized summary of this interview performance.`,
			len(questions), len(responses),
			strings.Join(strengths, ", "), strings.Join(weaknesses, ", "),
			overallScore)

		content, err := s.llm.Complete(ctx,
			"You are an AI assistant that provides constructive feedback on interview performance.",
			prompt, 200, 0.7)
		if err != nil {
			s.log.Warn("overall summary LLM call failed, using conservative default", zap.Error(err))
			monitoring.LLMFallbackCounter.WithLabelValues("overall_summary").Inc()
			return conservativeOverallFeedback()
		}

		summary = strings.TrimSpace(content)
		if summary == "" {
			summary = "Interview feedback summary not available."
		}
	}

	return overallFeedback{
		OverallScore: overallScore,
		Summary:      summary,
		Strengths:    strengths,
		Weaknesses:   weaknesses,
	}
}

func conservativeOverallFeedback() overallFeedback {
	return overallFeedback{
		OverallScore: 70,
		Summary:      "Thank you for completing the interview practice. We were unable to generate a detailed summary, but you can review individual feedback for each question.",
		Strengths:    []string{"Completed the interview session."},
		Weaknesses:   []string{"Consider providing more detailed responses."},
	}
}

// GetBySession returns the feedback for a session, enforcing ownership via
// the session record.
func (s *FeedbackService) GetBySession(sessionID string, userID uint) (*model.Feedback, error) {
	session, err := s.sessions.FindByID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}

	if session.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	feedback, err := s.feedbacks.FindByInterviewID(sessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrFeedbackNotFound
		}
		return nil, err
	}

	return feedback, nil
}

func (s *FeedbackService) GetByID(id string, userID uint) (*model.Feedback, error) {
	feedback, err := s.feedbacks.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrFeedbackNotFound
		}
		return nil, err
	}

	if feedback.UserID != userID {
		return nil, util.ErrPermissionDenied
	}

	return feedback, nil
}

func (s *FeedbackService) ListByUser(userID uint) ([]model.Feedback, error) {
	return s.feedbacks.ListByUser(userID)
}
