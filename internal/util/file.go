package util

import (
	"errors"
	"io"
	"net/http"
	"strings"
)

// ValidateMimeType sniffs the content and checks it against a list of
// allowed MIME prefixes or full types, e.g. "audio/", "text/plain".
func ValidateMimeType(reader io.Reader, allowedTypes []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])

	for _, allowed := range allowedTypes {
		if strings.HasPrefix(mimeType, allowed) || mimeType == allowed {
			return mimeType, nil
		}
	}

	return mimeType, errors.New("invalid file type: " + mimeType)
}

// IsAudio reports whether the MIME type is an audio payload. Browsers record
// into webm/ogg containers which sniff as video/*, so those count too.
func IsAudio(mimeType string) bool {
	return strings.HasPrefix(mimeType, "audio/") ||
		mimeType == "video/webm" ||
		mimeType == "application/ogg"
}

// IsTextLike reports whether document content can be extracted by reading
// the file as plain text.
func IsTextLike(mimeType string) bool {
	return strings.HasPrefix(mimeType, "text/") || mimeType == "application/json"
}
