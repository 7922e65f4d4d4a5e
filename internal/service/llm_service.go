package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"interview_prep_backend/internal/config"
	"io"
	"net/http"
	"sync"
	"time"
)

// Completer is the language-model collaborator: a single text completion
// operation. Components that consume it take the interface so tests can
// substitute a stub.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error)
	Configured() bool
}

// mockCompletion is returned when no API key is configured, so the rest of
// the pipeline keeps working in preview environments.
const mockCompletion = "This is a mock response for preview purposes."

type LLMMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatCompletionRequest struct {
	Model       string       `json:"model"`
	Messages    []LLMMessage `json:"messages"`
	MaxTokens   int          `json:"max_tokens,omitempty"`
	Temperature float64      `json:"temperature,omitempty"`
}

type ChatCompletionResponse struct {
	Choices []struct {
		Message LLMMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// LLMService talks to an OpenAI-compatible chat completions endpoint.
// Config is guarded by a mutex because it can be swapped on hot reload.
type LLMService struct {
	mu     sync.RWMutex
	config config.LLMConfig
	client *http.Client
}

func NewLLMService(cfg config.LLMConfig) *LLMService {
	return &LLMService{
		config: cfg,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

func (s *LLMService) Configured() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config.APIKey != ""
}

// UpdateConfig is invoked by the config watcher callback.
func (s *LLMService) UpdateConfig(cfg config.LLMConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
}

func (s *LLMService) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int, temperature float64) (string, error) {
	s.mu.RLock()
	cfg := s.config
	s.mu.RUnlock()

	if cfg.APIKey == "" {
		return mockCompletion, nil
	}

	reqBody := ChatCompletionRequest{
		Model: cfg.Model,
		Messages: []LLMMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", cfg.BaseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("LLM API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", err
	}

	if result.Error != nil {
		return "", fmt.Errorf("LLM API error: %s", result.Error.Message)
	}

	if len(result.Choices) > 0 {
		return result.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("LLM returned no choices")
}
