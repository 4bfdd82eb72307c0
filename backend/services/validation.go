// ABOUTME: Input validation functions for API parameters
// ABOUTME: Rejects malformed QR keys, login URLs, room ids and keywords before they reach the platform

package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"
)

// qrKeyPattern matches passport QR keys (alphanumeric, at most 64 chars)
var qrKeyPattern = regexp.MustCompile(`^[A-Za-z0-9]{1,64}$`)

// MaxKeywordLength bounds the lottery keyword in runes
const MaxKeywordLength = 64

// ValidationError reports caller input that was rejected before any platform call
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

func invalidf(format string, args ...any) error {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

// sanitizeForLog removes control characters from strings to prevent log injection
// when including user input in error messages
func sanitizeForLog(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1 // Remove control characters
		}
		return r
	}, s)
}

// ValidateQRKey validates a QR key before it is placed in a passport query.
func ValidateQRKey(key string) error {
	if !qrKeyPattern.MatchString(key) {
		return invalidf("invalid QR key format: %s", sanitizeForLog(key))
	}
	return nil
}

// ValidateLoginURL checks that a confirmation URL is an absolute http(s) URL.
func ValidateLoginURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, invalidf("login URL cannot be empty")
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, invalidf("invalid login URL: %s", sanitizeForLog(raw))
	}
	return u, nil
}

// ValidateRoomID rejects non-positive room ids.
func ValidateRoomID(id int64) error {
	if id <= 0 {
		return invalidf("room id must be a positive number, got %d", id)
	}
	return nil
}

// ValidateKeyword bounds the keyword length and rejects control characters.
func ValidateKeyword(keyword string) error {
	if utf8.RuneCountInString(keyword) > MaxKeywordLength {
		return invalidf("keyword must be at most %d characters", MaxKeywordLength)
	}
	if sanitizeForLog(keyword) != keyword {
		return invalidf("keyword must not contain control characters")
	}
	return nil
}
