package annotations

import (
	"fmt"
	"strings"
)

// AnnotationError defines the interface for declaration grammar errors
type AnnotationError interface {
	error
	Location() SourceLocation
	Suggestion() string
	Code() ErrorCode
}

// ErrorCode represents different types of annotation errors
type ErrorCode int

const (
	SyntaxErrorCode ErrorCode = iota
	ValidationErrorCode
	SchemaErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case SyntaxErrorCode:
		return "SyntaxError"
	case ValidationErrorCode:
		return "ValidationError"
	case SchemaErrorCode:
		return "SchemaError"
	default:
		return "UnknownError"
	}
}

// ValidationError represents a parameter validation error
type ValidationError struct {
	Parameter string         // Parameter name that failed validation
	Expected  string         // What was expected
	Actual    string         // What was provided
	Loc       SourceLocation // Where the error occurred
	Hint      string         // Suggested fix
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s:%d:%d: parameter '%s' validation failed: expected %s, got %s. %s",
		e.Loc.File, e.Loc.Line, e.Loc.Column,
		e.Parameter, e.Expected, e.Actual, e.Hint)
}

func (e *ValidationError) Location() SourceLocation { return e.Loc }
func (e *ValidationError) Suggestion() string       { return e.Hint }
func (e *ValidationError) Code() ErrorCode          { return ValidationErrorCode }

// SyntaxError represents a syntax parsing error
type SyntaxError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s:%d:%d: syntax error: %s. %s",
		e.Loc.File, e.Loc.Line, e.Loc.Column, e.Msg, e.Hint)
}

func (e *SyntaxError) Location() SourceLocation { return e.Loc }
func (e *SyntaxError) Suggestion() string       { return e.Hint }
func (e *SyntaxError) Code() ErrorCode          { return SyntaxErrorCode }

// SchemaError represents a schema-related error
type SchemaError struct {
	Msg  string         // Error message
	Loc  SourceLocation // Where the error occurred
	Hint string         // Suggested fix
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s:%d:%d: schema error: %s. %s",
		e.Loc.File, e.Loc.Line, e.Loc.Column, e.Msg, e.Hint)
}

func (e *SchemaError) Location() SourceLocation { return e.Loc }
func (e *SchemaError) Suggestion() string       { return e.Hint }
func (e *SchemaError) Code() ErrorCode          { return SchemaErrorCode }

// MultipleAnnotationErrors represents multiple annotation errors collected together
type MultipleAnnotationErrors struct {
	Errors []AnnotationError
}

func (e *MultipleAnnotationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}

	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}

	return fmt.Sprintf("multiple annotation errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap returns the underlying errors for error inspection
func (e *MultipleAnnotationErrors) Unwrap() []error {
	errors := make([]error, len(e.Errors))
	for i, err := range e.Errors {
		errors[i] = err
	}
	return errors
}

// HasType returns true if any error of the specified type exists
func (e *MultipleAnnotationErrors) HasType(code ErrorCode) bool {
	for _, err := range e.Errors {
		if err.Code() == code {
			return true
		}
	}
	return false
}

// errorOrNil returns nil when nothing was collected
func (e *MultipleAnnotationErrors) errorOrNil() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewSyntaxErrorWithContext creates a syntax error with context-aware suggestions
func NewSyntaxErrorWithContext(msg string, loc SourceLocation, context string) *SyntaxError {
	return &SyntaxError{
		Msg:  msg,
		Loc:  loc,
		Hint: generateSyntaxSuggestion(msg, context),
	}
}

// NewValidationErrorWithContext creates a validation error with context-aware suggestions
func NewValidationErrorWithContext(parameter, expected, actual string, loc SourceLocation, annotationType AnnotationType) *ValidationError {
	return &ValidationError{
		Parameter: parameter,
		Expected:  expected,
		Actual:    actual,
		Loc:       loc,
		Hint:      generateValidationSuggestion(parameter, expected, actual, annotationType),
	}
}

func generateSyntaxSuggestion(msg, context string) string {
	msg = strings.ToLower(msg)
	context = strings.ToLower(context)

	switch {
	case strings.Contains(msg, "unknown annotation type"):
		return "Supported declarations: //rest::resource, //rest::route, //rest::handle"
	case strings.Contains(msg, "prefix"):
		return "Declarations must start with '//rest::' (note the double colon)"
	case strings.Contains(msg, "unterminated"):
		return "Make sure quoted strings are properly closed with matching quotes"
	case strings.Contains(msg, "too many positional"):
		if strings.Contains(context, "route") {
			return "Route format: //rest::route <name> <pattern> [-Verbs=read,update] [-Collection] [-Origin]"
		}
		if strings.Contains(context, "handle") {
			return "Handle format: //rest::handle <route name>"
		}
		return "Use -Name=Value for anything after the positional arguments"
	default:
		return "Parameters should be in format '-Name=Value' or '-Flag' for boolean flags"
	}
}

func generateValidationSuggestion(parameter, expected, actual string, annotationType AnnotationType) string {
	switch annotationType {
	case ResourceAnnotation:
		if parameter == "Representations" {
			return "Representations should be comma-separated formats. Example: -Representations=json,xml"
		}
		return "Resource declarations support: Representations"
	case RouteAnnotation:
		switch parameter {
		case "Verbs":
			return "Verbs should be comma-separated. Example: -Verbs=read,update"
		case "Conditions":
			return "Conditions should be var:regex pairs. Example: -Conditions=id:[0-9]+"
		case "Collection", "Origin", "AllowOptions", "RequireHandle":
			return fmt.Sprintf("%s is a boolean flag. Use: -%s (no value needed)", parameter, parameter)
		}
		return "Route declarations support: Name, Pattern, Verbs, Collection, Conditions, Expose, AllowOptions, Action, Origin, RequireHandle"
	case HandleAnnotation:
		return "Handle declarations take the route name. Example: //rest::handle get"
	default:
		return fmt.Sprintf("Parameter '%s' should be %s, not '%s'", parameter, expected, actual)
	}
}
