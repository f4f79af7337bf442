package annotations

import (
	"fmt"
	"sync"
	"testing"
)

func TestNewRegistry(t *testing.T) {
	registry := NewRegistry()
	if registry == nil {
		t.Fatal("NewRegistry() returned nil")
	}

	if types := registry.ListTypes(); len(types) != 0 {
		t.Errorf("Expected empty registry, got %d types", len(types))
	}
}

func TestBuiltinRegistry(t *testing.T) {
	registry1 := BuiltinRegistry()
	registry2 := BuiltinRegistry()

	if registry1 != registry2 {
		t.Error("BuiltinRegistry() should return the same instance")
	}

	for _, annotationType := range []AnnotationType{ResourceAnnotation, RouteAnnotation, HandleAnnotation} {
		if !registry1.IsRegistered(annotationType) {
			t.Errorf("Expected %s to be registered", annotationType)
		}
	}
}

func TestRegister(t *testing.T) {
	registry := NewRegistry()

	if err := registry.Register(ResourceAnnotation, ResourceAnnotationSchema); err != nil {
		t.Fatalf("Failed to register schema: %v", err)
	}

	if !registry.IsRegistered(ResourceAnnotation) {
		t.Error("Schema should be registered")
	}

	if err := registry.Register(ResourceAnnotation, ResourceAnnotationSchema); err == nil {
		t.Error("Expected error when registering the same type twice")
	}
}

func TestRegisterInvalidSchema(t *testing.T) {
	tests := []struct {
		name           string
		annotationType AnnotationType
		schema         AnnotationSchema
	}{
		{
			name:           "mismatched type",
			annotationType: RouteAnnotation,
			schema:         AnnotationSchema{Type: HandleAnnotation},
		},
		{
			name:           "empty parameter name",
			annotationType: RouteAnnotation,
			schema: AnnotationSchema{
				Type:       RouteAnnotation,
				Parameters: map[string]ParameterSpec{"": {Type: StringType}},
			},
		},
		{
			name:           "invalid parameter type",
			annotationType: RouteAnnotation,
			schema: AnnotationSchema{
				Type:       RouteAnnotation,
				Parameters: map[string]ParameterSpec{"Name": {Type: ParameterType(42)}},
			},
		},
		{
			name:           "default value of wrong type",
			annotationType: RouteAnnotation,
			schema: AnnotationSchema{
				Type:       RouteAnnotation,
				Parameters: map[string]ParameterSpec{"Origin": {Type: BoolType, DefaultValue: "yes"}},
			},
		},
		{
			name:           "undeclared positional",
			annotationType: HandleAnnotation,
			schema: AnnotationSchema{
				Type:       HandleAnnotation,
				Parameters: map[string]ParameterSpec{"For": {Type: StringType}},
				Positional: []string{"Route"},
			},
		},
		{
			name:           "positional listed twice",
			annotationType: HandleAnnotation,
			schema: AnnotationSchema{
				Type:       HandleAnnotation,
				Parameters: map[string]ParameterSpec{"For": {Type: StringType}},
				Positional: []string{"For", "For"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry()
			if err := registry.Register(tt.annotationType, tt.schema); err == nil {
				t.Error("Expected registration to fail")
			}
		})
	}
}

func TestGetSchema(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.GetSchema(RouteAnnotation); err == nil {
		t.Error("Expected error for unregistered type")
	}

	if err := RegisterBuiltinSchemas(registry); err != nil {
		t.Fatalf("RegisterBuiltinSchemas() failed: %v", err)
	}

	schema, err := registry.GetSchema(RouteAnnotation)
	if err != nil {
		t.Fatalf("GetSchema() failed: %v", err)
	}
	if len(schema.Positional) != 2 || schema.Positional[0] != "Name" || schema.Positional[1] != "Pattern" {
		t.Errorf("Unexpected route positional parameters: %v", schema.Positional)
	}
	if len(schema.Validators) != 0 {
		t.Error("Route patterns are not validated beyond presence")
	}
}

func TestRegisterBuiltinSchemasTwice(t *testing.T) {
	registry := NewRegistry()
	if err := RegisterBuiltinSchemas(registry); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	if err := RegisterBuiltinSchemas(registry); err == nil {
		t.Error("Expected second registration to fail")
	}
	if got := len(registry.ListTypes()); got != len(GetBuiltinSchemas()) {
		t.Errorf("Expected %d types, got %d", len(GetBuiltinSchemas()), got)
	}
}

func TestSchemaExamples(t *testing.T) {
	parser := NewParticipleParser(nil)

	for _, schema := range GetBuiltinSchemas() {
		for _, example := range schema.Examples {
			parsed, err := parser.ParseDeclaration(example, SourceLocation{File: "example.go", Line: 1, Column: 1})
			if err != nil {
				t.Errorf("Example %q does not parse: %v", example, err)
				continue
			}
			if parsed.Type != schema.Type {
				t.Errorf("Example %q parsed as %s, want %s", example, parsed.Type, schema.Type)
			}
		}
	}
}

func TestConcurrentAccess(t *testing.T) {
	registry := NewRegistry()
	if err := RegisterBuiltinSchemas(registry); err != nil {
		t.Fatalf("RegisterBuiltinSchemas() failed: %v", err)
	}
	parser := NewParticipleParser(registry)

	var wg sync.WaitGroup
	errs := make(chan error, 50)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			comment := fmt.Sprintf("//rest::route -Name=r%d -Pattern=/items/%d -Verbs=read", i, i)
			parsed, err := parser.ParseDeclaration(comment, SourceLocation{File: "concurrent.go", Line: i + 1})
			if err != nil {
				errs <- err
				return
			}
			if parsed.GetString("Name") != fmt.Sprintf("r%d", i) {
				errs <- fmt.Errorf("goroutine %d got name %q", i, parsed.GetString("Name"))
			}
			if !registry.IsRegistered(HandleAnnotation) {
				errs <- fmt.Errorf("goroutine %d lost handle schema", i)
			}
		}(i)
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
