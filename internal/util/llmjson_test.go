package util

import (
	"errors"
	"testing"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    string
		wantErr bool
	}{
		{
			name: "bare object",
			text: `{"a": 1}`,
			want: `{"a": 1}`,
		},
		{
			name: "object wrapped in prose",
			text: "Here is the feedback you asked for:\n{\"a\": 1}\nLet me know if you need more.",
			want: `{"a": 1}`,
		},
		{
			name: "markdown fence",
			text: "```json\n{\"a\": 1}\n```",
			want: `{"a": 1}`,
		},
		{
			name: "nested objects",
			text: `prefix {"a": {"b": {"c": 2}}} suffix`,
			want: `{"a": {"b": {"c": 2}}}`,
		},
		{
			name: "braces inside strings",
			text: `{"a": "closing } brace and { opening"}`,
			want: `{"a": "closing } brace and { opening"}`,
		},
		{
			name: "escaped quote inside string",
			text: `{"a": "quote \" then } brace"}`,
			want: `{"a": "quote \" then } brace"}`,
		},
		{
			name: "first of two objects",
			text: `{"a": 1} {"b": 2}`,
			want: `{"a": 1}`,
		},
		{
			name:    "no object",
			text:    "no structured output here",
			wantErr: true,
		},
		{
			name:    "unbalanced object",
			text:    `{"a": 1`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONObject(tt.text)
			if tt.wantErr {
				if !errors.Is(err, ErrNoJSONFound) {
					t.Fatalf("expected ErrNoJSONFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	text := "The questions are:\n[{\"text\": \"a [bracketed] aside\"}, {\"text\": \"b\"}]\nEnjoy."
	want := `[{"text": "a [bracketed] aside"}, {"text": "b"}]`

	got, err := ExtractJSONArray(text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}

	if _, err := ExtractJSONArray("{\"not\": \"an array\"}"); !errors.Is(err, ErrNoJSONFound) {
		t.Fatalf("expected ErrNoJSONFound, got %v", err)
	}
}
