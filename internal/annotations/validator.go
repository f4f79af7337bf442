package annotations

import (
	"fmt"
)

// SchemaValidator defines the interface for validating annotations against their schemas
type SchemaValidator interface {
	// Validate annotation against its schema
	Validate(annotation *ParsedAnnotation, schema AnnotationSchema) error

	// ApplyDefaults applies default values for missing optional parameters
	ApplyDefaults(annotation *ParsedAnnotation, schema AnnotationSchema) error

	// TransformParameters transforms parameter values to correct types
	TransformParameters(annotation *ParsedAnnotation, schema AnnotationSchema) error
}

// validator is the concrete implementation of SchemaValidator
type validator struct{}

// NewValidator creates a new schema validator
func NewValidator() SchemaValidator {
	return &validator{}
}

// Validate validates an annotation against its schema
func (v *validator) Validate(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	collected := &MultipleAnnotationErrors{}

	for paramName, paramSpec := range schema.Parameters {
		if paramSpec.Required {
			if _, exists := annotation.Parameters[paramName]; !exists {
				collected.Errors = append(collected.Errors, &ValidationError{
					Parameter: paramName,
					Expected:  fmt.Sprintf("required parameter of type %s", paramSpec.Type.String()),
					Actual:    "missing",
					Loc:       annotation.Location,
					Hint:      fmt.Sprintf("Add -%s=<value> to the declaration", paramName),
				})
			}
		}
	}

	for paramName, paramValue := range annotation.Parameters {
		paramSpec, exists := schema.Parameters[paramName]
		if !exists {
			collected.Errors = append(collected.Errors, NewValidationErrorWithContext(
				paramName, "known parameter", fmt.Sprintf("unknown parameter '%s'", paramName),
				annotation.Location, annotation.Type))
			continue
		}

		if err := v.validateParameterType(paramName, paramSpec.Type, paramValue, annotation.Location); err != nil {
			collected.Errors = append(collected.Errors, err)
			continue
		}

		if paramSpec.Validator != nil {
			if err := paramSpec.Validator(paramValue); err != nil {
				collected.Errors = append(collected.Errors, &ValidationError{
					Parameter: paramName,
					Expected:  "valid value",
					Actual:    fmt.Sprintf("%v", paramValue),
					Loc:       annotation.Location,
					Hint:      err.Error(),
				})
			}
		}
	}

	for _, customValidator := range schema.Validators {
		if err := customValidator(annotation); err != nil {
			collected.Errors = append(collected.Errors, &SchemaError{
				Msg:  err.Error(),
				Loc:  annotation.Location,
				Hint: "Check declaration parameters and their combinations",
			})
		}
	}

	return collected.errorOrNil()
}

// ApplyDefaults applies default values for missing optional parameters.
// Boolean flags are not defaulted: their DefaultValue is what a bare flag means.
func (v *validator) ApplyDefaults(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	if annotation.Parameters == nil {
		annotation.Parameters = make(map[string]interface{})
	}

	for paramName, paramSpec := range schema.Parameters {
		if paramSpec.Type == BoolType || paramSpec.DefaultValue == nil {
			continue
		}
		if _, exists := annotation.Parameters[paramName]; !exists {
			annotation.Parameters[paramName] = paramSpec.DefaultValue
		}
	}

	return nil
}

// TransformParameters transforms parameter values to correct types
func (v *validator) TransformParameters(annotation *ParsedAnnotation, schema AnnotationSchema) error {
	for paramName, paramValue := range annotation.Parameters {
		paramSpec, exists := schema.Parameters[paramName]
		if !exists {
			continue // caught in Validate
		}

		transformedValue, err := v.transformParameterValue(paramValue, paramSpec.Type)
		if err != nil {
			return NewValidationErrorWithContext(
				paramName,
				fmt.Sprintf("value convertible to %s", paramSpec.Type.String()),
				fmt.Sprintf("%v (%T)", paramValue, paramValue),
				annotation.Location, annotation.Type)
		}

		annotation.Parameters[paramName] = transformedValue
	}

	return nil
}

// validateParameterType validates that a parameter value matches the expected type
func (v *validator) validateParameterType(paramName string, expectedType ParameterType, value interface{}, location SourceLocation) AnnotationError {
	if v.isCorrectType(value, expectedType) {
		return nil
	}

	hint := "Provide a string value"
	switch expectedType {
	case BoolType:
		hint = "Use true/false or provide as a flag"
	case StringSliceType:
		hint = "Provide comma-separated string values"
	case StringMapType:
		hint = "Provide comma-separated key:value pairs"
	case StringType:
	default:
		return &ValidationError{
			Parameter: paramName,
			Expected:  "known type",
			Actual:    fmt.Sprintf("unknown type %d", expectedType),
			Loc:       location,
			Hint:      "The schema declares a parameter type the validator does not know",
		}
	}

	return &ValidationError{
		Parameter: paramName,
		Expected:  expectedType.String(),
		Actual:    fmt.Sprintf("%T", value),
		Loc:       location,
		Hint:      hint,
	}
}

// transformParameterValue attempts to transform a value to the target type
func (v *validator) transformParameterValue(value interface{}, targetType ParameterType) (interface{}, error) {
	if v.isCorrectType(value, targetType) {
		return value, nil
	}

	switch targetType {
	case StringType:
		return fmt.Sprintf("%v", value), nil
	case BoolType:
		return ConvertToBool(value)
	case StringSliceType:
		return ConvertToStringSlice(value)
	case StringMapType:
		return ConvertToStringMap(value)
	default:
		return nil, fmt.Errorf("unsupported target type: %d", targetType)
	}
}

// isCorrectType checks if a value is already the correct type
func (v *validator) isCorrectType(value interface{}, targetType ParameterType) bool {
	switch targetType {
	case StringType:
		_, ok := value.(string)
		return ok
	case BoolType:
		_, ok := value.(bool)
		return ok
	case StringSliceType:
		_, ok := value.([]string)
		return ok
	case StringMapType:
		_, ok := value.(map[string]string)
		return ok
	default:
		return false
	}
}
