package service

import (
	"context"
	"errors"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubSessionStore struct {
	session *model.InterviewSession
	err     error
}

func (s *stubSessionStore) FindByID(id string) (*model.InterviewSession, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

// stubFeedbackStore enforces one feedback per interview under its own lock,
// the same guarantee the database unique index gives the real repository.
type stubFeedbackStore struct {
	mu       sync.Mutex
	created  []*model.Feedback
	existing bool
}

func (s *stubFeedbackStore) Create(feedback *model.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.created {
		if f.InterviewID == feedback.InterviewID {
			return util.ErrFeedbackExists
		}
	}
	s.created = append(s.created, feedback)
	return nil
}

func (s *stubFeedbackStore) FindByInterviewID(interviewID string) (*model.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.created {
		if f.InterviewID == interviewID {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubFeedbackStore) ExistsForInterview(interviewID string) (bool, error) {
	return s.existing, nil
}

func (s *stubFeedbackStore) FindByID(id string) (*model.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.created {
		if f.ID == id {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubFeedbackStore) ListByUser(userID uint) ([]model.Feedback, error) {
	return nil, nil
}

// stubCompleter routes on maxTokens: per-question analysis uses 1000,
// the overall summary uses 200.
type stubCompleter struct {
	configured bool
	complete   func(userPrompt string, maxTokens int) (string, error)
}

func (c *stubCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	if c.complete == nil {
		return "", errors.New("no completion configured")
	}
	return c.complete(userPrompt, maxTokens)
}

func (c *stubCompleter) Configured() bool {
	return c.configured
}

func questionFeedbackJSON(sentiment string) string {
	return fmt.Sprintf(`{
		"feedbackItems": [{"category": "content", "sentiment": %q, "content": "Feedback with %s sentiment."}],
		"suggestions": [{"category": "delivery", "content": "Slow down."}]
	}`, sentiment, sentiment)
}

func completedSession(userID uint, questionCount, responseCount int) *model.InterviewSession {
	session := &model.InterviewSession{
		UserID: userID,
		Status: model.SessionCompleted,
	}
	session.ID = "session-1"
	for i := 0; i < questionCount; i++ {
		q := model.Question{
			SessionID: session.ID,
			Position:  i,
			Text:      fmt.Sprintf("question %d", i+1),
		}
		q.ID = fmt.Sprintf("q%d", i+1)
		session.Questions = append(session.Questions, q)
	}
	for i := 0; i < responseCount; i++ {
		r := model.Response{
			SessionID:     session.ID,
			QuestionID:    fmt.Sprintf("q%d", i+1),
			Transcription: fmt.Sprintf("answer %d", i+1),
		}
		r.ID = fmt.Sprintf("r%d", i+1)
		session.Responses = append(session.Responses, r)
	}
	return session
}

func TestGenerateFeedbackPreconditions(t *testing.T) {
	inProgress := completedSession(1, 2, 2)
	inProgress.Status = model.SessionInProgress

	tests := []struct {
		name     string
		sessions *stubSessionStore
		existing bool
		userID   uint
		wantErr  error
	}{
		{
			name:     "missing session",
			sessions: &stubSessionStore{err: gorm.ErrRecordNotFound},
			userID:   1,
			wantErr:  util.ErrSessionNotFound,
		},
		{
			name:     "foreign session",
			sessions: &stubSessionStore{session: completedSession(1, 2, 2)},
			userID:   2,
			wantErr:  util.ErrPermissionDenied,
		},
		{
			name:     "session still in progress",
			sessions: &stubSessionStore{session: inProgress},
			userID:   1,
			wantErr:  util.ErrSessionNotCompleted,
		},
		{
			name:     "feedback already exists",
			sessions: &stubSessionStore{session: completedSession(1, 2, 2)},
			existing: true,
			userID:   1,
			wantErr:  util.ErrFeedbackExists,
		},
		{
			name:     "no responses",
			sessions: &stubSessionStore{session: completedSession(1, 2, 0)},
			userID:   1,
			wantErr:  util.ErrNoResponses,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubFeedbackStore{existing: tt.existing}
			svc := NewFeedbackService(tt.sessions, store, &stubCompleter{}, zap.NewNop())

			_, err := svc.GenerateFeedback(context.Background(), "session-1", tt.userID)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if len(store.created) != 0 {
				t.Fatalf("no feedback should be persisted on precondition failure, got %d", len(store.created))
			}
		})
	}
}

func TestGenerateFeedbackScoreAndOrdering(t *testing.T) {
	session := completedSession(1, 4, 4)
	sessions := &stubSessionStore{session: session}
	store := &stubFeedbackStore{}

	// Three positive analyses and one negative: with every question answered
	// the score is 40*1.0 + 60*0.75 = 85.
	llm := &stubCompleter{
		complete: func(userPrompt string, maxTokens int) (string, error) {
			if strings.Contains(userPrompt, "question 4") {
				return questionFeedbackJSON("negative"), nil
			}
			return questionFeedbackJSON("positive"), nil
		},
	}

	svc := NewFeedbackService(sessions, store, llm, zap.NewNop())
	feedback, err := svc.GenerateFeedback(context.Background(), session.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if feedback.OverallScore != 85 {
		t.Fatalf("expected score 85, got %d", feedback.OverallScore)
	}
	if len(feedback.Strengths) != 3 {
		t.Fatalf("expected 3 strengths, got %d", len(feedback.Strengths))
	}
	if len(feedback.Weaknesses) != 1 {
		t.Fatalf("expected 1 weakness, got %d", len(feedback.Weaknesses))
	}
	if !strings.Contains(feedback.Summary, "4 out of 4") || !strings.Contains(feedback.Summary, "85/100") {
		t.Fatalf("summary should use the deterministic template, got %q", feedback.Summary)
	}

	if len(feedback.Items) != 4 {
		t.Fatalf("expected one item per answered question, got %d", len(feedback.Items))
	}
	for i, item := range feedback.Items {
		wantQuestion := fmt.Sprintf("q%d", i+1)
		if item.QuestionID != wantQuestion {
			t.Fatalf("item %d: expected question %s, got %s", i, wantQuestion, item.QuestionID)
		}
		if item.Position != i {
			t.Fatalf("item %d: expected position %d, got %d", i, i, item.Position)
		}
	}

	if len(store.created) != 1 {
		t.Fatalf("expected exactly one persisted feedback, got %d", len(store.created))
	}
}

func TestGenerateFeedbackEmptyQuestionList(t *testing.T) {
	// A completed session holding a response whose question was removed:
	// both ratio denominators are zero and must not divide.
	session := completedSession(1, 0, 1)
	sessions := &stubSessionStore{session: session}
	store := &stubFeedbackStore{}

	svc := NewFeedbackService(sessions, store, &stubCompleter{}, zap.NewNop())
	feedback, err := svc.GenerateFeedback(context.Background(), session.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if feedback.OverallScore != 0 {
		t.Fatalf("expected score 0 with no questions and no items, got %d", feedback.OverallScore)
	}
	if len(feedback.Items) != 0 {
		t.Fatalf("an orphan response must not produce items, got %d", len(feedback.Items))
	}
	if feedback.Strengths[0] != "No specific strengths identified." {
		t.Fatalf("expected strengths placeholder, got %q", feedback.Strengths[0])
	}
	if !strings.Contains(feedback.Summary, "1 out of 0") {
		t.Fatalf("summary should reflect the raw counts, got %q", feedback.Summary)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected exactly one persisted feedback, got %d", len(store.created))
	}
}

func TestGenerateFeedbackAbsorbsLLMFailures(t *testing.T) {
	session := completedSession(1, 2, 2)
	sessions := &stubSessionStore{session: session}
	store := &stubFeedbackStore{}
	llm := &stubCompleter{
		complete: func(userPrompt string, maxTokens int) (string, error) {
			return "", errors.New("upstream unavailable")
		},
	}

	svc := NewFeedbackService(sessions, store, llm, zap.NewNop())
	feedback, err := svc.GenerateFeedback(context.Background(), session.ID, 1)
	if err != nil {
		t.Fatalf("LLM failures must not surface, got %v", err)
	}

	if len(feedback.Items) != 2 {
		t.Fatalf("expected one fallback item per answered question, got %d", len(feedback.Items))
	}
	for _, item := range feedback.Items {
		if item.Sentiment != model.SentimentNeutral {
			t.Fatalf("fallback items must be neutral, got %s", item.Sentiment)
		}
		if item.Content != "We were unable to generate detailed feedback for this response." {
			t.Fatalf("unexpected fallback content: %q", item.Content)
		}
	}
	if len(feedback.Suggestions) != 2 {
		t.Fatalf("expected one fallback suggestion per answered question, got %d", len(feedback.Suggestions))
	}

	// All answered, zero positive items: 40*1.0 + 60*0.
	if feedback.OverallScore != 40 {
		t.Fatalf("expected score 40, got %d", feedback.OverallScore)
	}
	if feedback.Strengths[0] != "No specific strengths identified." {
		t.Fatalf("expected strengths placeholder, got %q", feedback.Strengths[0])
	}
}

func TestGenerateFeedbackMalformedLLMOutput(t *testing.T) {
	session := completedSession(1, 1, 1)
	sessions := &stubSessionStore{session: session}
	store := &stubFeedbackStore{}
	llm := &stubCompleter{
		complete: func(userPrompt string, maxTokens int) (string, error) {
			return "I could not produce structured feedback, sorry.", nil
		},
	}

	svc := NewFeedbackService(sessions, store, llm, zap.NewNop())
	feedback, err := svc.GenerateFeedback(context.Background(), session.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(feedback.Items) != 1 || feedback.Items[0].Sentiment != model.SentimentNeutral {
		t.Fatalf("malformed output should yield the fallback item, got %+v", feedback.Items)
	}
}

func TestGenerateFeedbackSummaryFallsBackConservatively(t *testing.T) {
	session := completedSession(1, 2, 2)
	sessions := &stubSessionStore{session: session}
	store := &stubFeedbackStore{}
	llm := &stubCompleter{
		configured: true,
		complete: func(userPrompt string, maxTokens int) (string, error) {
			if maxTokens == 200 {
				return "", errors.New("summary call failed")
			}
			return questionFeedbackJSON("positive"), nil
		},
	}

	svc := NewFeedbackService(sessions, store, llm, zap.NewNop())
	feedback, err := svc.GenerateFeedback(context.Background(), session.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if feedback.OverallScore != 70 {
		t.Fatalf("expected conservative default score 70, got %d", feedback.OverallScore)
	}
	if feedback.Strengths[0] != "Completed the interview session." {
		t.Fatalf("expected conservative strengths, got %q", feedback.Strengths[0])
	}
}

func TestGenerateFeedbackConcurrentCallsPersistOnce(t *testing.T) {
	session := completedSession(1, 2, 2)
	sessions := &stubSessionStore{session: session}
	store := &stubFeedbackStore{}
	llm := &stubCompleter{
		complete: func(userPrompt string, maxTokens int) (string, error) {
			return questionFeedbackJSON("positive"), nil
		},
	}

	svc := NewFeedbackService(sessions, store, llm, zap.NewNop())

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.GenerateFeedback(context.Background(), session.ID, 1)
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, util.ErrFeedbackExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected one success and one conflict, got %d successes and %d conflicts", successes, conflicts)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected exactly one persisted feedback, got %d", len(store.created))
	}
}

func TestGetBySession(t *testing.T) {
	session := completedSession(1, 1, 1)
	sessions := &stubSessionStore{session: session}
	store := &stubFeedbackStore{}
	store.created = append(store.created, &model.Feedback{InterviewID: session.ID, UserID: 1})

	svc := NewFeedbackService(sessions, store, &stubCompleter{}, zap.NewNop())

	if _, err := svc.GetBySession(session.ID, 2); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for foreign user, got %v", err)
	}

	feedback, err := svc.GetBySession(session.ID, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if feedback.InterviewID != session.ID {
		t.Fatalf("expected feedback for %s, got %s", session.ID, feedback.InterviewID)
	}
}
