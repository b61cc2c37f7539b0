package model

import "fmt"

// FormatError represents malformed identifier components: digit-only
// violations, length violations, bad character classes. Always
// detectable before any I/O.
type FormatError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e *FormatError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid %s: %s (value=%v)", e.Field, e.Message, e.Value)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewFormatError creates a new format error
func NewFormatError(field string, value interface{}, message string) *FormatError {
	return &FormatError{
		Field:   field,
		Value:   value,
		Message: message,
	}
}

// ValidationError represents validation failures at document-build time
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// LedgerError represents a serial-ledger storage failure. These are
// recoverable: read failures fall back to an empty history, write
// failures keep the in-memory state and continue.
type LedgerError struct {
	Op      string
	Fiscal  string
	Message string
	Cause   error
}

func (e *LedgerError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("ledger %s failed [%s]: %s (%v)", e.Op, e.Fiscal, e.Message, e.Cause)
	}
	return fmt.Sprintf("ledger %s failed [%s]: %s", e.Op, e.Fiscal, e.Message)
}

func (e *LedgerError) Unwrap() error {
	return e.Cause
}

// NewLedgerError creates a new ledger error
func NewLedgerError(op, fiscal, message string, cause error) *LedgerError {
	return &LedgerError{
		Op:      op,
		Fiscal:  fiscal,
		Message: message,
		Cause:   cause,
	}
}

// OverflowError reports a value that exceeds its fixed hex-digit budget
// in the tax identifier. Truncating would silently corrupt identity
// data, so the operation fails instead.
type OverflowError struct {
	Field string
	Value int64
	Max   int64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s %d exceeds maximum encodable value %d", e.Field, e.Value, e.Max)
}

// NewOverflowError creates a new overflow error
func NewOverflowError(field string, value, max int64) *OverflowError {
	return &OverflowError{
		Field: field,
		Value: value,
		Max:   max,
	}
}
