package errors

import "fmt"

// MetadataError reports a structural violation found while compiling the
// declarations of one resource type.
type MetadataError struct {
	*BaseError
	TypeName  string // resource type being compiled
	RouteName string // offending route, when known
	Method    string // offending method, when known
}

// NewMetadataError creates a compile error for a resource type
func NewMetadataError(code ErrorCode, typeName, message string) *MetadataError {
	base := New(code, fmt.Sprintf("%s: %s", typeName, message)).
		WithContext("type", typeName)
	return &MetadataError{
		BaseError: base,
		TypeName:  typeName,
	}
}

// WithRoute records the offending route name
func (e *MetadataError) WithRoute(routeName string) *MetadataError {
	e.RouteName = routeName
	e.BaseError.WithContext("route", routeName)
	return e
}

// WithMethod records the offending method name
func (e *MetadataError) WithMethod(method string) *MetadataError {
	e.Method = method
	e.BaseError.WithContext("method", method)
	return e
}

// WithLocation adds location information to the error
func (e *MetadataError) WithLocation(loc SourceLocation) *MetadataError {
	e.BaseError.WithLocation(loc)
	return e
}

// WithSuggestion adds a helpful suggestion for fixing the error
func (e *MetadataError) WithSuggestion(suggestion string) *MetadataError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// SyntaxError represents a declaration that could not be parsed
type SyntaxError struct {
	*BaseError
	Raw string // original declaration text
}

// NewSyntaxError creates a new syntax error
func NewSyntaxError(message string, loc SourceLocation, raw string) *SyntaxError {
	return &SyntaxError{
		BaseError: New(SyntaxErrorCode, message).WithLocation(loc),
		Raw:       raw,
	}
}
