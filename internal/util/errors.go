package util

import "errors"

var (
	ErrEmailRegistered     = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrUserNotFound        = errors.New("user not found")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrNoSourceDocuments   = errors.New("no CV or job specification found, please upload at least one document")
	ErrSessionNotFound     = errors.New("interview session not found")
	ErrSessionCompleted    = errors.New("interview session already completed")
	ErrSessionNotCompleted = errors.New("interview session must be completed before generating feedback")
	ErrQuestionNotFound    = errors.New("question does not belong to this session")
	ErrNoResponses         = errors.New("no responses to analyze")
	ErrFeedbackExists      = errors.New("feedback already exists for this interview session")
	ErrFeedbackNotFound    = errors.New("feedback not found")
)
