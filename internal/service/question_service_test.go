package service

import (
	"context"
	"errors"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"strings"
	"testing"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type stubDocumentStore struct {
	docs map[model.DocumentType]*model.Document
}

func (s *stubDocumentStore) FindByUserAndType(userID uint, docType model.DocumentType) (*model.Document, error) {
	doc, ok := s.docs[docType]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return doc, nil
}

func cvOnlyStore() *stubDocumentStore {
	return &stubDocumentStore{docs: map[model.DocumentType]*model.Document{
		model.DocumentCV: {Type: model.DocumentCV, Content: "Ten years of Go experience."},
	}}
}

func TestGenerateQuestionsRequiresDocuments(t *testing.T) {
	svc := NewQuestionService(&stubDocumentStore{docs: map[model.DocumentType]*model.Document{}}, &stubCompleter{}, zap.NewNop())

	_, err := svc.GenerateQuestions(context.Background(), 1, 5, "", nil)
	if !errors.Is(err, util.ErrNoSourceDocuments) {
		t.Fatalf("expected ErrNoSourceDocuments, got %v", err)
	}
}

func TestGenerateQuestionsFallsBackToDefaults(t *testing.T) {
	tests := []struct {
		name   string
		output string
		err    error
	}{
		{name: "llm error", err: errors.New("upstream unavailable")},
		{name: "no json array", output: "Here are some questions for you."},
		{name: "invalid json", output: `[{"text": broken]`},
		{name: "only empty questions", output: `[{"text": ""}, {"category": "general"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &stubCompleter{
				complete: func(userPrompt string, maxTokens int) (string, error) {
					return tt.output, tt.err
				},
			}
			svc := NewQuestionService(cvOnlyStore(), llm, zap.NewNop())

			questions, err := svc.GenerateQuestions(context.Background(), 1, 10, "", nil)
			if err != nil {
				t.Fatalf("generation failures must not surface, got %v", err)
			}
			if len(questions) != 5 {
				t.Fatalf("expected the 5 default questions, got %d", len(questions))
			}
			if questions[0].Text != "Tell me about yourself and your background." {
				t.Fatalf("unexpected first default question: %q", questions[0].Text)
			}
		})
	}
}

func TestGenerateQuestionsNormalizesFields(t *testing.T) {
	llm := &stubCompleter{
		complete: func(userPrompt string, maxTokens int) (string, error) {
			return `Sure, here you go:
[
  {"text": "What does your CV say about concurrency?", "category": "technical", "difficulty": "hard", "source": "cv"},
  {"text": "Question with bad metadata", "category": "", "difficulty": "impossible", "source": "crystal ball"},
  {"text": ""},
  {"text": "One question too many", "category": "extra"}
]`, nil
		},
	}
	svc := NewQuestionService(cvOnlyStore(), llm, zap.NewNop())

	questions, err := svc.GenerateQuestions(context.Background(), 1, 2, "hard", []string{"technical"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected truncation to the requested count, got %d", len(questions))
	}

	if questions[0].Difficulty != model.DifficultyHard || questions[0].Source != model.SourceCV {
		t.Fatalf("valid metadata should be kept, got %+v", questions[0])
	}
	if questions[1].Category != "general" {
		t.Fatalf("empty category should default to general, got %q", questions[1].Category)
	}
	if questions[1].Difficulty != model.DifficultyMedium {
		t.Fatalf("unknown difficulty should default to medium, got %q", questions[1].Difficulty)
	}
	if questions[1].Source != model.SourceGeneral {
		t.Fatalf("unknown source should default to general, got %q", questions[1].Source)
	}
}

func TestGenerateQuestionsPromptIncludesDocuments(t *testing.T) {
	var captured string
	llm := &stubCompleter{
		complete: func(userPrompt string, maxTokens int) (string, error) {
			captured = userPrompt
			return `[{"text": "ok"}]`, nil
		},
	}
	store := &stubDocumentStore{docs: map[model.DocumentType]*model.Document{
		model.DocumentCV:      {Type: model.DocumentCV, Content: "golang backend work"},
		model.DocumentJobSpec: {Type: model.DocumentJobSpec, Content: "senior engineer role"},
	}}
	svc := NewQuestionService(store, llm, zap.NewNop())

	if _, err := svc.GenerateQuestions(context.Background(), 1, 3, "medium", []string{"technical", "behavioral"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{"golang backend work", "senior engineer role", "3 interview questions", "medium difficulty", "technical, behavioral"} {
		if !strings.Contains(captured, want) {
			t.Fatalf("prompt missing %q:\n%s", want, captured)
		}
	}
}
