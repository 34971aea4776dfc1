package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"
)

// Category is the closed set of failure classes the engine reasons about.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryValidation
	CategoryNotFound
	CategoryTimeout
	CategoryConnectivity
	CategoryUnavailable
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryValidation:
		return "validation"
	case CategoryNotFound:
		return "not_found"
	case CategoryTimeout:
		return "timeout"
	case CategoryConnectivity:
		return "connectivity"
	case CategoryUnavailable:
		return "unavailable"
	case CategoryInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Infrastructure reports whether the category points at a dependency rather
// than the task's own logic.
func (c Category) Infrastructure() bool {
	return c == CategoryTimeout || c == CategoryConnectivity
}

func (c Category) defaultErrorType() string {
	switch c {
	case CategoryValidation:
		return "ValidationError"
	case CategoryNotFound:
		return "NotFoundError"
	case CategoryTimeout:
		return "TimeoutError"
	case CategoryConnectivity:
		return "ConnectionError"
	case CategoryUnavailable:
		return "ClientNotConnectedError"
	default:
		return "Error"
	}
}

var (
	ErrValidation         = errors.New("validation failed")
	ErrNotFound           = errors.New("not found")
	ErrClientNotConnected = errors.New("client not connected")
)

// TypedError lets an error report the type name used for pattern analysis.
type TypedError interface {
	error
	ErrorType() string
}

// CategorizedError lets an error pick its own category.
type CategorizedError interface {
	error
	ErrorCategory() Category
}

// Classification is the classifier's verdict for one failure.
type Classification struct {
	Category   Category
	ErrorType  string
	Message    string
	Quarantine bool
}

// Classifier maps a failure to a Classification. It must be pure.
type Classifier func(err error) Classification

var quarantineErrorTypes = map[string]struct{}{
	"ClientNotConnectedError": {},
}

// DefaultClassifier recognises sentinel and typed errors first and falls back
// to message heuristics for errors that carry no structure.
func DefaultClassifier(err error) Classification {
	if err == nil {
		return Classification{Category: CategoryUnknown, ErrorType: CategoryUnknown.defaultErrorType()}
	}

	category := categorize(err)
	errorType := errorTypeName(err)
	if errorType == "" {
		errorType = category.defaultErrorType()
	}

	_, denied := quarantineErrorTypes[errorType]

	return Classification{
		Category:   category,
		ErrorType:  errorType,
		Message:    err.Error(),
		Quarantine: denied || category == CategoryUnavailable,
	}
}

func categorize(err error) Category {
	var categorized CategorizedError
	if errors.As(err, &categorized) {
		return categorized.ErrorCategory()
	}

	switch {
	case errors.Is(err, ErrClientNotConnected):
		return CategoryUnavailable
	case errors.Is(err, ErrValidation):
		return CategoryValidation
	case errors.Is(err, ErrNotFound):
		return CategoryNotFound
	case errors.Is(err, ErrExecutionTimeout), errors.Is(err, context.DeadlineExceeded):
		return CategoryTimeout
	case errors.Is(err, syscall.ECONNREFUSED), errors.Is(err, syscall.ECONNRESET), errors.Is(err, net.ErrClosed):
		return CategoryConnectivity
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CategoryTimeout
		}
		return CategoryConnectivity
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "timeout"), strings.Contains(message, "timed out"):
		return CategoryTimeout
	case strings.Contains(message, "connection"):
		return CategoryConnectivity
	}

	return CategoryInternal
}

var opaqueErrorTypes = map[string]struct{}{
	"errorString": {},
	"wrapError":   {},
	"wrapErrors":  {},
	"joinError":   {},
}

func errorTypeName(err error) string {
	var typed TypedError
	if errors.As(err, &typed) {
		return typed.ErrorType()
	}

	innermost := err
	for {
		next := errors.Unwrap(innermost)
		if next == nil {
			break
		}
		innermost = next
	}

	name := fmt.Sprintf("%T", innermost)
	name = strings.TrimLeft(name, "*")
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}
	if _, opaque := opaqueErrorTypes[name]; opaque {
		return ""
	}
	return name
}
