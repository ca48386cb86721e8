package diagnostics

import (
	"fmt"

	"github.com/simon-curtis/jitzu/internal/token"
)

type ErrorCode string

const (
	// Lexer
	ErrL001 ErrorCode = "L001" // Illegal character / unterminated literal

	// Parser
	ErrP001 ErrorCode = "P001" // Unexpected token
	ErrP002 ErrorCode = "P002" // No prefix parse function
	ErrP003 ErrorCode = "P003" // Invalid literal
	ErrP004 ErrorCode = "P004" // Malformed declaration or pattern

	// Binding (scope & slot resolution)
	ErrB001 ErrorCode = "B001" // Unresolved identifier
	ErrB002 ErrorCode = "B002" // Ambiguous simple type name
	ErrB003 ErrorCode = "B003" // Invalid binding target (assign to type, duplicate declaration)

	// Typing
	ErrT001 ErrorCode = "T001" // Match arms / return paths disagree
	ErrT002 ErrorCode = "T002" // Type mismatch

	// Calls
	ErrO001 ErrorCode = "O001" // No candidate matches name + argument types

	// Emission
	ErrU001 ErrorCode = "U001" // Construct or operator has no lowering

	// Runtime
	ErrR001 ErrorCode = "R001"
)

// Category groups error codes into the failure classes callers act on.
type Category string

const (
	CategoryLex         Category = "LexError"
	CategoryParse       Category = "ParseError"
	CategoryBinding     Category = "BindingError"
	CategoryUnification Category = "TypeUnificationError"
	CategoryType        Category = "TypeError"
	CategoryOverload    Category = "OverloadResolutionError"
	CategoryUnsupported Category = "UnsupportedConstructError"
	CategoryRuntime     Category = "RuntimeError"
)

var categories = map[ErrorCode]Category{
	ErrL001: CategoryLex,
	ErrP001: CategoryParse,
	ErrP002: CategoryParse,
	ErrP003: CategoryParse,
	ErrP004: CategoryParse,
	ErrB001: CategoryBinding,
	ErrB002: CategoryBinding,
	ErrB003: CategoryBinding,
	ErrT001: CategoryUnification,
	ErrT002: CategoryType,
	ErrO001: CategoryOverload,
	ErrU001: CategoryUnsupported,
	ErrR001: CategoryRuntime,
}

// DiagnosticError is a compile or runtime failure tied to a source position.
type DiagnosticError struct {
	Code    ErrorCode
	Token   token.Token
	File    string
	Message string
}

func NewError(code ErrorCode, tok token.Token, message string) *DiagnosticError {
	return &DiagnosticError{Code: code, Token: tok, File: tok.File, Message: message}
}

// Errorf is NewError with a format string.
func Errorf(code ErrorCode, tok token.Token, format string, args ...interface{}) *DiagnosticError {
	return NewError(code, tok, fmt.Sprintf(format, args...))
}

func (e *DiagnosticError) Error() string {
	loc := fmt.Sprintf("%d:%d", e.Token.Line, e.Token.Column)
	if e.File != "" {
		loc = e.File + ":" + loc
	}
	return fmt.Sprintf("%s: error [%s]: %s", loc, e.Code, e.Message)
}

// Category returns the failure class of the error.
func (e *DiagnosticError) Category() Category {
	if c, ok := categories[e.Code]; ok {
		return c
	}
	return CategoryRuntime
}

// Line and Column expose the source position for renderers.
func (e *DiagnosticError) Line() int   { return e.Token.Line }
func (e *DiagnosticError) Column() int { return e.Token.Column }
