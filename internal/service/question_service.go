package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"interview_prep_backend/internal/model"
	"interview_prep_backend/internal/util"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DocumentStore is the slice of the document repository the generator needs.
type DocumentStore interface {
	FindByUserAndType(userID uint, docType model.DocumentType) (*model.Document, error)
}

const defaultQuestionCount = 10

// defaultQuestions is returned when question generation fails for any
// reason other than missing source documents.
var defaultQuestions = []model.Question{
	{Text: "Tell me about yourself and your background.", Category: "general", Difficulty: model.DifficultyEasy, Source: model.SourceGeneral},
	{Text: "What are your greatest strengths and weaknesses?", Category: "personal", Difficulty: model.DifficultyMedium, Source: model.SourceGeneral},
	{Text: "Why are you interested in this position?", Category: "motivation", Difficulty: model.DifficultyMedium, Source: model.SourceGeneral},
	{Text: "Describe a challenging situation you faced and how you handled it.", Category: "behavioral", Difficulty: model.DifficultyMedium, Source: model.SourceGeneral},
	{Text: "Where do you see yourself in five years?", Category: "career", Difficulty: model.DifficultyMedium, Source: model.SourceGeneral},
}

type QuestionService struct {
	documents DocumentStore
	llm       Completer
	log       *zap.Logger
}

func NewQuestionService(documents DocumentStore, llm Completer, log *zap.Logger) *QuestionService {
	return &QuestionService{
		documents: documents,
		llm:       llm,
		log:       log,
	}
}

// llmQuestion mirrors one element of the JSON array the model is asked for.
type llmQuestion struct {
	Text       string `json:"text"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
	Source     string `json:"source"`
}

// GenerateQuestions builds questions from the user's CV and/or job spec.
// Missing documents is a precondition failure; anything after that (LLM
// call, extraction, decoding) degrades to the default question list.
func (s *QuestionService) GenerateQuestions(ctx context.Context, userID uint, count int, difficulty string, categories []string) ([]model.Question, error) {
	if count <= 0 {
		count = defaultQuestionCount
	}

	cv, err := s.documents.FindByUserAndType(userID, model.DocumentCV)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	jobSpec, err := s.documents.FindByUserAndType(userID, model.DocumentJobSpec)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if cv == nil && jobSpec == nil {
		return nil, util.ErrNoSourceDocuments
	}

	var prompt strings.Builder
	prompt.WriteString("Generate interview questions based on the following information:\n\n")
	if cv != nil {
		fmt.Fprintf(&prompt, "CV/Resume: %s\n\n", cv.Content)
	}
	if jobSpec != nil {
		fmt.Fprintf(&prompt, "Job Specification: %s\n\n", jobSpec.Content)
	}
	fmt.Fprintf(&prompt, "Please generate %d interview questions that are relevant to the candidate's experience and the job requirements. ", count)
	if difficulty != "" {
		fmt.Fprintf(&prompt, "The questions should be of %s difficulty. ", difficulty)
	}
	if len(categories) > 0 {
		fmt.Fprintf(&prompt, "Focus on the following categories: %s. ", strings.Join(categories, ", "))
	}
	prompt.WriteString("Format the output as a JSON array of objects with the following properties: text, category, difficulty, source.")

	content, err := s.llm.Complete(ctx,
		"You are an AI assistant that helps generate relevant interview questions based on a candidate's CV and job specifications.",
		prompt.String(), 1500, 0.7)
	if err != nil {
		s.log.Warn("question generation LLM call failed, using default questions", zap.Error(err))
		return defaultQuestionList(), nil
	}

	jsonText, err := util.ExtractJSONArray(content)
	if err != nil {
		s.log.Warn("no JSON array in LLM question output, using default questions", zap.Error(err))
		return defaultQuestionList(), nil
	}

	var parsed []llmQuestion
	if err := json.Unmarshal([]byte(jsonText), &parsed); err != nil {
		s.log.Warn("failed to decode LLM question output, using default questions", zap.Error(err))
		return defaultQuestionList(), nil
	}

	questions := make([]model.Question, 0, len(parsed))
	for _, q := range parsed {
		if q.Text == "" {
			continue
		}
		questions = append(questions, model.Question{
			Text:       q.Text,
			Category:   defaultString(q.Category, "general"),
			Difficulty: normalizeDifficulty(q.Difficulty),
			Source:     normalizeSource(q.Source),
		})
	}

	if len(questions) == 0 {
		s.log.Warn("LLM question output contained no usable questions, using default questions")
		return defaultQuestionList(), nil
	}

	if len(questions) > count {
		questions = questions[:count]
	}

	return questions, nil
}

func defaultQuestionList() []model.Question {
	questions := make([]model.Question, len(defaultQuestions))
	copy(questions, defaultQuestions)
	return questions
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func normalizeDifficulty(difficulty string) model.QuestionDifficulty {
	switch model.QuestionDifficulty(difficulty) {
	case model.DifficultyEasy, model.DifficultyMedium, model.DifficultyHard:
		return model.QuestionDifficulty(difficulty)
	}
	return model.DifficultyMedium
}

func normalizeSource(source string) model.QuestionSource {
	switch model.QuestionSource(source) {
	case model.SourceCV, model.SourceJobSpec, model.SourceGeneral:
		return model.QuestionSource(source)
	}
	return model.SourceGeneral
}
