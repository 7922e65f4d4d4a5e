package util

import (
	"strings"
	"testing"
)

func TestIsAudio(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"audio/mpeg", true},
		{"audio/wav", true},
		{"video/webm", true},
		{"application/ogg", true},
		{"video/mp4", false},
		{"text/plain", false},
		{"application/pdf", false},
	}

	for _, tt := range tests {
		if got := IsAudio(tt.mimeType); got != tt.want {
			t.Fatalf("IsAudio(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}

func TestIsTextLike(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"text/plain; charset=utf-8", true},
		{"text/html", true},
		{"application/json", true},
		{"application/pdf", false},
		{"audio/mpeg", false},
	}

	for _, tt := range tests {
		if got := IsTextLike(tt.mimeType); got != tt.want {
			t.Fatalf("IsTextLike(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}

func TestValidateMimeType(t *testing.T) {
	got, err := ValidateMimeType(strings.NewReader("plain text document body"), AllowedDocumentMimeTypes)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(got, "text/plain") {
		t.Fatalf("expected text/plain sniff, got %q", got)
	}

	// PNG magic bytes are not a permitted document type.
	if _, err := ValidateMimeType(strings.NewReader("\x89PNG\r\n\x1a\n...."), AllowedDocumentMimeTypes); err == nil {
		t.Fatal("expected an error for an image payload")
	}
}
