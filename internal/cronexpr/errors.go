// Package cronexpr compiles six-field cron expressions (and ISO-8601
// one-shot literals) into acceptance sets and advances a reference
// instant to the next match.
package cronexpr

import "fmt"

// ErrorCode identifies the kind of compile-time failure, matching the
// taxonomy in the scheduling specification.
type ErrorCode string

const (
	ErrInvalidField       ErrorCode = "INVALID_FIELD"
	ErrOutOfRange         ErrorCode = "OUT_OF_RANGE"
	ErrInvalidRange       ErrorCode = "INVALID_RANGE"
	ErrInvalidStep        ErrorCode = "INVALID_STEP"
	ErrIllegalCharacter   ErrorCode = "ILLEGAL_CHARACTER"
	ErrWrongFieldCount    ErrorCode = "WRONG_FIELD_COUNT"
	ErrIncompatibleFields ErrorCode = "INCOMPATIBLE_FIELDS"
	ErrUnknownAlias       ErrorCode = "UNKNOWN_ALIAS"
	ErrInvalidIsoLiteral  ErrorCode = "INVALID_ISO_LITERAL"
)

// CompileError is returned for any expression that fails to compile.
// It is always non-recoverable: construction must fail synchronously.
type CompileError struct {
	Code       ErrorCode
	Field      string
	Expression string
	Message    string
}

func (e *CompileError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("cronexpr: %s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("cronexpr: %s (field %s): %s", e.Code, e.Field, e.Message)
}

func newError(code ErrorCode, field, expr, message string) *CompileError {
	return &CompileError{Code: code, Field: field, Expression: expr, Message: message}
}
