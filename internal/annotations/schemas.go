package annotations

import (
	"fmt"
)

// Built-in annotation schemas

// ResourceAnnotationSchema defines the schema for //rest::resource annotations
var ResourceAnnotationSchema = AnnotationSchema{
	Type:        ResourceAnnotation,
	Description: "Marks a type as a resource exposed through the route table",
	Parameters: map[string]ParameterSpec{
		"Representations": {
			Type:        StringSliceType,
			Description: "Comma-separated output formats the resource supports (e.g. json,xml)",
		},
	},
	Examples: []string{
		"//rest::resource",
		"//rest::resource -Representations=json,xml",
	},
}

// RouteAnnotationSchema defines the schema for //rest::route annotations.
// Name, pattern and verb rules are enforced by the route compiler, not here.
var RouteAnnotationSchema = AnnotationSchema{
	Type:        RouteAnnotation,
	Description: "Declares a named route on a resource type",
	Parameters: map[string]ParameterSpec{
		"Name": {
			Type:        StringType,
			Description: "Route name, unique within the resource",
		},
		"Pattern": {
			Type:        StringType,
			Description: "Path template (e.g. /invoice/:id)",
		},
		"Verbs": {
			Type:        StringSliceType,
			Description: "Comma-separated verbs: read, create, update, patch, delete, options",
		},
		"Collection": {
			Type:         BoolType,
			DefaultValue: true,
			Description:  "Route addresses a collection instead of a single instance",
		},
		"Conditions": {
			Type:        StringMapType,
			Description: "Pattern variable constraints as var:regex pairs",
		},
		"Expose": {
			Type:        StringSliceType,
			Description: "Fields allowed in the rendered representation",
		},
		"AllowOptions": {
			Type:         BoolType,
			DefaultValue: true,
			Description:  "Whether an options request is permitted",
		},
		"Action": {
			Type:        StringType,
			Description: "Delegate action class handling the route",
		},
		"Origin": {
			Type:         BoolType,
			DefaultValue: true,
			Description:  "Marks the canonical route of the resource",
		},
		"RequireHandle": {
			Type:         BoolType,
			DefaultValue: true,
			Description:  "Route must be bound to a handle method (declared handle policy)",
		},
	},
	Positional: []string{"Name", "Pattern"},
	Examples: []string{
		"//rest::route -Name=get -Pattern=/invoice/:id -Verbs=read",
		"//rest::route list /invoice -Verbs=read -Collection -Origin",
		"//rest::route -Name=update -Pattern=/invoice/{id} -Verbs=update -Conditions=id:[0-9]+",
		"//rest::route -Name=show -Pattern=/invoice/:id -Expose=id,total -Action=InvoiceAction",
	},
}

// HandleAnnotationSchema defines the schema for //rest::handle annotations
var HandleAnnotationSchema = AnnotationSchema{
	Type:        HandleAnnotation,
	Description: "Binds a method to a named route of its resource",
	Parameters: map[string]ParameterSpec{
		"For": {
			Type:        StringType,
			Description: "Name of the route handled by the method",
		},
	},
	Positional: []string{"For"},
	Examples: []string{
		"//rest::handle get",
		"//rest::handle -For=list",
	},
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the given registry
func RegisterBuiltinSchemas(registry AnnotationRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema.Type, schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type.String(), err)
		}
	}

	return nil
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		ResourceAnnotationSchema,
		RouteAnnotationSchema,
		HandleAnnotationSchema,
	}
}
