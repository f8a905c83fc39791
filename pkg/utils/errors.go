package utils

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory groups errors shown at the CLI boundary.
type ErrorCategory int

const (
	CategoryNetwork ErrorCategory = iota + 1
	CategoryFileSystem
	CategoryConfiguration
	CategoryValidation
	CategoryExecution
	CategoryUser
)

func (c ErrorCategory) String() string {
	switch c {
	case CategoryNetwork:
		return "network"
	case CategoryFileSystem:
		return "filesystem"
	case CategoryConfiguration:
		return "configuration"
	case CategoryValidation:
		return "validation"
	case CategoryExecution:
		return "execution"
	case CategoryUser:
		return "user"
	}
	return "unknown"
}

// ErrorContext names where a StructuredError happened.
type ErrorContext struct {
	Component string
	Operation string
	Resource  string
}

// StructuredError carries a stable code and category next to the cause.
type StructuredError struct {
	Code      string
	Message   string
	Category  ErrorCategory
	Context   ErrorContext
	RootCause error
}

func (e *StructuredError) Error() string {
	if e.RootCause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.RootCause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *StructuredError) Unwrap() error { return e.RootCause }

// NewNetworkError wraps a failed backend exchange.
func NewNetworkError(operation string, rootCause error) *StructuredError {
	return &StructuredError{
		Code:      "NET_ERROR",
		Message:   "network error during " + operation,
		Category:  CategoryNetwork,
		Context:   ErrorContext{Operation: operation},
		RootCause: rootCause,
	}
}

// NewFileSystemError wraps a failed file operation on path.
func NewFileSystemError(operation, path string, rootCause error) *StructuredError {
	return &StructuredError{
		Code:      "FS_ERROR",
		Message:   "filesystem error during " + operation,
		Category:  CategoryFileSystem,
		Context:   ErrorContext{Operation: operation, Resource: path},
		RootCause: rootCause,
	}
}

// NewConfigError wraps a configuration source that could not be used.
func NewConfigError(source string, rootCause error) *StructuredError {
	return &StructuredError{
		Code:      "CFG_ERROR",
		Message:   "configuration error in " + source,
		Category:  CategoryConfiguration,
		Context:   ErrorContext{Resource: source},
		RootCause: rootCause,
	}
}

// NewValidationError reports an invalid value for field.
func NewValidationError(field, reason string) *StructuredError {
	return &StructuredError{
		Code:     "VAL_ERROR",
		Message:  fmt.Sprintf("invalid %s: %s", field, reason),
		Category: CategoryValidation,
		Context:  ErrorContext{Resource: field},
	}
}

// NewExecutionError wraps a failed step of component.
func NewExecutionError(component, operation string, rootCause error) *StructuredError {
	return &StructuredError{
		Code:      "EXEC_ERROR",
		Message:   fmt.Sprintf("%s failed during %s", component, operation),
		Category:  CategoryExecution,
		Context:   ErrorContext{Component: component, Operation: operation},
		RootCause: rootCause,
	}
}

// NewUserError is an error the user can fix, with message shown as is.
func NewUserError(message string, rootCause error) *StructuredError {
	return &StructuredError{
		Code:      "USER_ERROR",
		Message:   message,
		Category:  CategoryUser,
		RootCause: rootCause,
	}
}

// CategoryOf returns the category of the outermost StructuredError in err.
func CategoryOf(err error) (ErrorCategory, bool) {
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Category, true
	}
	return 0, false
}

// FormatError renders err on one line for the terminal.
func FormatError(err error) string {
	var se *StructuredError
	if !errors.As(err, &se) {
		return err.Error()
	}
	parts := []string{fmt.Sprintf("Error [%s]: %s", se.Code, se.Message)}
	if se.Context.Component != "" {
		parts = append(parts, "Component: "+se.Context.Component)
	}
	if se.Context.Operation != "" {
		parts = append(parts, "Operation: "+se.Context.Operation)
	}
	if se.Context.Resource != "" {
		parts = append(parts, "Resource: "+se.Context.Resource)
	}
	if se.RootCause != nil {
		parts = append(parts, fmt.Sprintf("Root Cause: %v", se.RootCause))
	}
	return strings.Join(parts, " | ")
}
