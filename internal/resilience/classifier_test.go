package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type smtpError struct{ code int }

func (e *smtpError) Error() string { return fmt.Sprintf("smtp status %d", e.code) }

type brokerDownError struct{}

func (brokerDownError) Error() string     { return "broker is gone" }
func (brokerDownError) ErrorType() string { return "ClientNotConnectedError" }

type quotaError struct{}

func (quotaError) Error() string           { return "quota exceeded" }
func (quotaError) ErrorCategory() Category { return CategoryValidation }

type ClassifierSuite struct {
	suite.Suite
}

func (s *ClassifierSuite) TestDefaultClassifier_TableDriven() {
	tests := []struct {
		name       string
		err        error
		category   Category
		errorType  string
		quarantine bool
	}{
		{
			name:      "validation sentinel",
			err:       fmt.Errorf("payload: %w", ErrValidation),
			category:  CategoryValidation,
			errorType: "ValidationError",
		},
		{
			name:      "not found sentinel",
			err:       ErrNotFound,
			category:  CategoryNotFound,
			errorType: "NotFoundError",
		},
		{
			name:       "client not connected sentinel is deny-listed",
			err:        fmt.Errorf("publish: %w", ErrClientNotConnected),
			category:   CategoryUnavailable,
			errorType:  "ClientNotConnectedError",
			quarantine: true,
		},
		{
			name:       "typed error on deny list",
			err:        brokerDownError{},
			category:   CategoryInternal,
			errorType:  "ClientNotConnectedError",
			quarantine: true,
		},
		{
			name:      "deadline exceeded",
			err:       fmt.Errorf("call: %w", context.DeadlineExceeded),
			category:  CategoryTimeout,
			errorType: "TimeoutError",
		},
		{
			name:      "execution timeout",
			err:       ErrExecutionTimeout,
			category:  CategoryTimeout,
			errorType: "TimeoutError",
		},
		{
			name:      "connection refused errno",
			err:       &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED},
			category:  CategoryConnectivity,
			errorType: "Errno",
		},
		{
			name:      "message mentions connection",
			err:       errors.New("smtp connection refused"),
			category:  CategoryConnectivity,
			errorType: "ConnectionError",
		},
		{
			name:      "message mentions timeout",
			err:       errors.New("upstream read timeout"),
			category:  CategoryTimeout,
			errorType: "TimeoutError",
		},
		{
			name:      "concrete type name is kept",
			err:       fmt.Errorf("send: %w", &smtpError{code: 550}),
			category:  CategoryInternal,
			errorType: "smtpError",
		},
		{
			name:      "error picks its own category",
			err:       quotaError{},
			category:  CategoryValidation,
			errorType: "quotaError",
		},
		{
			name:      "plain error is internal",
			err:       errors.New("boom"),
			category:  CategoryInternal,
			errorType: "Error",
		},
	}

	for _, tc := range tests {
		s.Run(tc.name, func() {
			got := DefaultClassifier(tc.err)

			assert.Equal(s.T(), tc.category, got.Category)
			assert.Equal(s.T(), tc.errorType, got.ErrorType)
			assert.Equal(s.T(), tc.quarantine, got.Quarantine)
			assert.Equal(s.T(), tc.err.Error(), got.Message)
		})
	}
}

func (s *ClassifierSuite) TestCategoryInfrastructure() {
	assert.True(s.T(), CategoryTimeout.Infrastructure())
	assert.True(s.T(), CategoryConnectivity.Infrastructure())
	assert.False(s.T(), CategoryValidation.Infrastructure())
	assert.False(s.T(), CategoryUnavailable.Infrastructure())
}

func TestClassifierSuite(t *testing.T) {
	suite.Run(t, new(ClassifierSuite))
}
