package annotations

import (
	"fmt"
	"strings"
)

// AnnotationType represents the kind of a declaration
type AnnotationType int

const (
	ResourceAnnotation AnnotationType = iota
	RouteAnnotation
	HandleAnnotation
)

// String returns the string representation of the annotation type
func (a AnnotationType) String() string {
	switch a {
	case ResourceAnnotation:
		return "resource"
	case RouteAnnotation:
		return "route"
	case HandleAnnotation:
		return "handle"
	default:
		return "unknown"
	}
}

// ParseAnnotationType converts string to AnnotationType
func ParseAnnotationType(s string) (AnnotationType, error) {
	switch s {
	case "resource":
		return ResourceAnnotation, nil
	case "route":
		return RouteAnnotation, nil
	case "handle":
		return HandleAnnotation, nil
	default:
		return 0, fmt.Errorf("unknown annotation type: %s", s)
	}
}

// SourceLocation represents the location of an annotation in source code
type SourceLocation struct {
	File   string // File path
	Line   int    // Line number (1-based)
	Column int    // Column number (1-based)
}

// ParsedAnnotation is one declaration record: a kind plus a key-value payload
type ParsedAnnotation struct {
	Type       AnnotationType         // Annotation type enum
	Target     string                 // Target type or method name
	Parameters map[string]interface{} // Typed parameters
	Location   SourceLocation         // Source location
	Raw        string                 // Original annotation text
}

// NewAnnotation creates a record with the given payload, mostly for declaration
// sources that do not go through the comment grammar.
func NewAnnotation(annotationType AnnotationType, params map[string]interface{}) *ParsedAnnotation {
	if params == nil {
		params = make(map[string]interface{})
	}
	return &ParsedAnnotation{
		Type:       annotationType,
		Parameters: params,
	}
}

// GetString returns a string parameter value with optional default
func (p *ParsedAnnotation) GetString(paramName string, defaultValue ...string) string {
	if value, exists := p.Parameters[paramName]; exists {
		if strValue, ok := value.(string); ok {
			return strValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return ""
}

// GetBool returns a boolean parameter value with optional default
func (p *ParsedAnnotation) GetBool(paramName string, defaultValue ...bool) bool {
	if value, exists := p.Parameters[paramName]; exists {
		if boolValue, ok := value.(bool); ok {
			return boolValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return false
}

// GetStringSlice returns a string slice parameter value with optional default
func (p *ParsedAnnotation) GetStringSlice(paramName string, defaultValue ...[]string) []string {
	if value, exists := p.Parameters[paramName]; exists {
		if sliceValue, ok := value.([]string); ok {
			return sliceValue
		}
	}
	if len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return nil
}

// GetStringMap returns a map parameter value, or nil when absent or not map-shaped
func (p *ParsedAnnotation) GetStringMap(paramName string) map[string]string {
	if value, exists := p.Parameters[paramName]; exists {
		if mapValue, ok := value.(map[string]string); ok {
			return mapValue
		}
	}
	return nil
}

// HasParameter checks if a parameter exists
func (p *ParsedAnnotation) HasParameter(paramName string) bool {
	_, exists := p.Parameters[paramName]
	return exists
}

// ParameterType represents the type of a parameter
type ParameterType int

const (
	StringType ParameterType = iota
	BoolType
	StringSliceType
	StringMapType
)

// String returns the string representation of the parameter type
func (p ParameterType) String() string {
	switch p {
	case StringType:
		return "string"
	case BoolType:
		return "bool"
	case StringSliceType:
		return "[]string"
	case StringMapType:
		return "map[string]string"
	default:
		return "unknown"
	}
}

// ParameterSpec defines the specification for an annotation parameter
type ParameterSpec struct {
	Type         ParameterType           // Parameter type
	Required     bool                    // Whether parameter is required
	DefaultValue interface{}             // Value used when given as a bare flag
	Description  string                  // Parameter description
	Validator    func(interface{}) error // Custom validator function
}

// CustomValidator represents a custom validation function for annotations
type CustomValidator func(*ParsedAnnotation) error

// AnnotationSchema defines the schema for an annotation type
type AnnotationSchema struct {
	Type        AnnotationType           // Annotation type enum
	Description string                   // Human-readable description
	Parameters  map[string]ParameterSpec // Parameter specifications
	Positional  []string                 // Parameter names filled by positional arguments, in order
	Validators  []CustomValidator        // Custom validation functions
	Examples    []string                 // Usage examples
}

// CanonicalParameter returns the schema spelling of a parameter name, matched
// case-insensitively.
func (s AnnotationSchema) CanonicalParameter(name string) (string, bool) {
	if _, ok := s.Parameters[name]; ok {
		return name, true
	}
	for key := range s.Parameters {
		if strings.EqualFold(key, name) {
			return key, true
		}
	}
	return name, false
}

// Type conversion utilities

// ConvertToBool converts various types to boolean
func ConvertToBool(value interface{}) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return parseBoolString(v)
	case int:
		return v != 0, nil
	default:
		return false, fmt.Errorf("cannot convert %T to bool", value)
	}
}

// ConvertToStringSlice converts various types to string slice
func ConvertToStringSlice(value interface{}) ([]string, error) {
	switch v := value.(type) {
	case []string:
		return v, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return []string{}, nil
		}
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, part := range parts {
			if trimmed := trimAndUnquote(part); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result, nil
	case []interface{}:
		result := make([]string, len(v))
		for i, item := range v {
			result[i] = fmt.Sprintf("%v", item)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to []string", value)
	}
}

// ConvertToStringMap converts "key:value,key:value" strings to a map
func ConvertToStringMap(value interface{}) (map[string]string, error) {
	switch v := value.(type) {
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		result := make(map[string]string, len(v))
		for key, item := range v {
			result[key] = fmt.Sprintf("%v", item)
		}
		return result, nil
	case string:
		result := make(map[string]string)
		if strings.TrimSpace(v) == "" {
			return result, nil
		}
		for _, entry := range splitMapEntries(v) {
			key, val, found := strings.Cut(entry, ":")
			key = strings.TrimSpace(key)
			if !found || key == "" {
				return nil, fmt.Errorf("invalid map entry '%s', expected key:value", entry)
			}
			result[key] = trimAndUnquote(val)
		}
		return result, nil
	default:
		return nil, fmt.Errorf("cannot convert %T to map[string]string", value)
	}
}

// splitMapEntries splits on commas, gluing a segment without a colon back onto
// the previous entry so values like [0-9]{1,3} survive.
func splitMapEntries(s string) []string {
	var entries []string
	for _, segment := range strings.Split(s, ",") {
		if len(entries) > 0 && !strings.Contains(segment, ":") {
			entries[len(entries)-1] += "," + segment
			continue
		}
		entries = append(entries, segment)
	}
	return entries
}

func parseBoolString(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s", s)
	}
}

// trimAndUnquote trims whitespace and strips one pair of matching quotes
func trimAndUnquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
