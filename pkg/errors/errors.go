// Package errors provides the unified error type and factory functions for the
// KeyIP-Renewals service.  Every layer (domain, application, infrastructure,
// interfaces) returns AppError as the single carrier for structured error
// information so that HTTP responses, CLI output and logs stay consistent.
package errors

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// stackDepth is the maximum number of frames captured per error.
const stackDepth = 32

// captureStack returns a formatted call-stack string starting two frames above
// the caller (skipping captureStack itself and New/Wrap).
func captureStack(skip int) string {
	pcs := make([]uintptr, stackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}
	frames := runtime.CallersFrames(pcs[:n])
	var sb strings.Builder
	for {
		f, more := frames.Next()
		// Trim standard-library noise to keep traces readable.
		if !strings.Contains(f.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", f.File, f.Line, f.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

// ─────────────────────────────────────────────────────────────────────────────
// AppError — the canonical error type
// ─────────────────────────────────────────────────────────────────────────────

// AppError is the single structured error type used throughout the service.
// It satisfies the standard error interface and supports errors.Is / errors.As /
// errors.Unwrap across all layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeInvalidInstruction, "instruction \"abc\" is not allowed")
//	return errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to load renewals")
type AppError struct {
	// Code is the typed error code that identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description of the error.
	Message string

	// Detail carries supplementary context (ids, offending values) that aids
	// debugging.
	Detail string

	// Cause is the underlying error that triggered this AppError.
	Cause error

	// Stack contains the call stack captured at creation.  It is not part of
	// Error() output.
	Stack string
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>"
// The detail segment is omitted when Detail is empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code.String(), e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code.String(), e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *AppError carrying the same code.  This lets
// callers compare against sentinel values with the standard errors.Is.
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// It is safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set to err.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// ─────────────────────────────────────────────────────────────────────────────
// Primary factory functions
// ─────────────────────────────────────────────────────────────────────────────

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Stack:   captureStack(1),
	}
}

// Wrap constructs an AppError that wraps an existing error.
// If err is nil, Wrap returns nil so it can be used inline.
//
// When err is already an *AppError and code is CodeUnknown the original code is
// preserved so the domain classification survives cross-layer propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == CodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(1),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Error-chain inspection helpers
// ─────────────────────────────────────────────────────────────────────────────

// IsCode reports whether any error in err's chain is an *AppError with the
// given code.
//
//	if errors.IsCode(err, errors.ErrCodeNoRenewalsFound) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// IsNotFound reports whether err's chain carries a not-found classification.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeNotFound) ||
		IsCode(err, ErrCodeRenewalNotFound) ||
		IsCode(err, ErrCodePortfolioNotFound) ||
		IsCode(err, ErrCodeNoRenewalsFound)
}

// GetCode extracts the ErrorCode from the first *AppError found in err's chain.
// If no *AppError is present, CodeUnknown is returned.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return CodeUnknown
}

// ─────────────────────────────────────────────────────────────────────────────
// Convenience factory functions
// ─────────────────────────────────────────────────────────────────────────────

// NotFound constructs a CodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message, Stack: captureStack(1)}
}

// InvalidParam constructs a CodeInvalidParam AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: CodeInvalidParam, Message: message, Stack: captureStack(1)}
}

// Unauthorized constructs a CodeUnauthorized AppError.
func Unauthorized(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message, Stack: captureStack(1)}
}

// Forbidden constructs a CodeForbidden AppError.
func Forbidden(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message, Stack: captureStack(1)}
}

// Internal constructs a CodeInternal AppError.
// Always log the underlying cause before or after calling Internal.
func Internal(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Stack: captureStack(1)}
}

//Personal.AI order the ending
