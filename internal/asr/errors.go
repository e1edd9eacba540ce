package asr

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classifying provider and locator failures. Wrap tags every
// error with one of these so the resolver can decide whether to retry the
// same provider, skip to the next one, or abort the resolution.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrAuth              = errors.New("authentication failure")
	ErrTimeout           = errors.New("timeout")
	ErrQuota             = errors.New("quota exceeded")
	ErrUnknown           = errors.New("unknown failure")
)

// Kind is the stable classification name reported in failure payloads.
type Kind string

const (
	KindUnsupportedFormat Kind = "unsupported_format"
	KindAuthFailure       Kind = "auth_failure"
	KindTimeout           Kind = "timeout"
	KindQuotaExceeded     Kind = "quota_exceeded"
	KindUnknown           Kind = "unknown"
)

// Wrap builds an error message that includes provider context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, provider, operation, message string, err error) error {
	detail := buildDetail(provider, operation, message)
	if marker == nil {
		marker = ErrUnknown
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf maps an error to its classification. Context deadline and
// cancellation errors count as timeouts so budget expiries surface uniformly
// no matter which layer noticed them first.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, ErrAuth):
		return KindAuthFailure
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return KindTimeout
	case errors.Is(err, ErrQuota):
		return KindQuotaExceeded
	default:
		return KindUnknown
	}
}

// Retriable reports whether the chain may retry the same provider once. Only
// transient timeouts qualify; every other kind signals a precondition that a
// retry cannot satisfy.
func Retriable(err error) bool {
	return KindOf(err) == KindTimeout && !errors.Is(err, context.Canceled)
}

func buildDetail(provider, operation, message string) string {
	parts := make([]string, 0, 3)
	if provider = strings.TrimSpace(provider); provider != "" {
		parts = append(parts, provider)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "provider failure"
	}
	return strings.Join(parts, ": ")
}
