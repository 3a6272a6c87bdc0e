package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound marks lookups whose subject is absent from both the cache
	// and durable storage.
	ErrNotFound = errors.New("not found")
	// ErrUnavailable marks collaborators that are not configured or not
	// reachable. Callers degrade to a defined fallback instead of failing.
	ErrUnavailable = errors.New("collaborator unavailable")
	// ErrExternal marks faults raised during a collaborator call. Treated the
	// same as ErrUnavailable at the call site: log and fall back.
	ErrExternal = errors.New("collaborator error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrExternal
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Degradable reports whether an error should be absorbed by a fallback path
// rather than propagated.
func Degradable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(err, ErrExternal)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
