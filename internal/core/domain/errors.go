package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrTokenInvalidOrExpired = errors.New("token invalid or expired")
var ErrNetworkUnavailable = errors.New("upstream unavailable")
var ErrSessionSuperseded = errors.New("session superseded")
var ErrSessionNotFound = errors.New("session not found")
var ErrMalformedAuthReply = errors.New("malformed auth reply")
var ErrForbidden = errors.New("access forbidden")

// Retryable reports whether the error is transient and worth re-issuing the
// same request for. Only this classification drives the retry affordance;
// everything else requires changed input or a fresh login.
func Retryable(err error) bool {
	return errors.Is(err, ErrNetworkUnavailable)
}

// ValidationError carries per-field messages from a rejected form submission.
// Fields are surfaced inline by the caller rather than as a single banner.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Fields))
	for f, msg := range e.Fields {
		parts = append(parts, f+": "+msg)
	}
	sort.Strings(parts)
	return "validation failed: " + strings.Join(parts, "; ")
}

// UpstreamError is a platform API failure that maps to no sentinel above. The
// Detail field is the server-provided message and is surfaced verbatim as the
// fallback error text.
type UpstreamError struct {
	Status int
	Detail string
}

func (e *UpstreamError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("upstream error (status %d)", e.Status)
}
