// File: api/errors.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Common error types and error handling utilities for hotswap-op.

package api

import "fmt"

// Common errors used across the library.
//
// The loader taxonomy (module/symbol/instantiation) is recoverable: a failed
// load abandons the attempted swap and leaves the previously published
// bundle in force. ErrSlotUninitialized is a transient reader-side condition
// before the first publish and is treated as soft-fail by callers.
var (
	ErrModuleNotFound      = fmt.Errorf("module not found")
	ErrSymbolResolution    = fmt.Errorf("symbol resolution failed")
	ErrInstantiationFailed = fmt.Errorf("operator instantiation failed")
	ErrSlotUninitialized   = fmt.Errorf("slot uninitialized")
	ErrBundleReleased      = fmt.Errorf("bundle already released")
	ErrInvalidArgument     = fmt.Errorf("invalid argument")
	ErrAlreadyRunning      = fmt.Errorf("already running")
	ErrNotRunning          = fmt.Errorf("not running")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeModuleNotFound
	ErrCodeSymbolResolution
	ErrCodeInstantiationFailed
	ErrCodeSlotUninitialized
	ErrCodeInvalidArgument
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Context: make(map[string]any),
	}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
