package annotations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Prefix introduces every declaration comment
const Prefix = "rest::"

// ParticipleParser parses //rest:: declaration comments
type ParticipleParser struct {
	parser    *participle.Parser[declaration]
	registry  AnnotationRegistry
	validator SchemaValidator
}

// declaration is the grammar root: //rest::<kind> followed by arguments
type declaration struct {
	Pos     lexer.Position
	Comment bool        `parser:"@Comment?"`
	Prefix  string      `parser:"@Prefix"`
	Kind    string      `parser:"@Word"`
	Args    []*argument `parser:"@@*"`
}

type argument struct {
	Param      *param  `parser:"  @@"`
	Positional *string `parser:"| @(String | Word)"`
}

type param struct {
	Name  string  `parser:"@Flag"`
	Value *string `parser:"( Equals @(String | Word) )?"`
}

// Rules are tried in order, so flags win over words and a word swallows any
// '=' or ':' after its first character. Patterns and regexes like
// /invoice/:id or id:[0-9]+ arrive as one Word token.
var declarationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Comment", Pattern: `//`},
	{Name: "Prefix", Pattern: `rest::`},
	{Name: "Flag", Pattern: `-[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Equals", Pattern: `=`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"|'[^']*'`},
	{Name: "Word", Pattern: `[^\s"'=]\S*`},
})

// NewParticipleParser creates a parser validating against the given registry.
// A nil registry uses the built-in schemas.
func NewParticipleParser(registry AnnotationRegistry) *ParticipleParser {
	if registry == nil {
		registry = BuiltinRegistry()
	}

	parser := participle.MustBuild[declaration](
		participle.Lexer(declarationLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(2),
	)

	return &ParticipleParser{
		parser:    parser,
		registry:  registry,
		validator: NewValidator(),
	}
}

// IsDeclaration reports whether a comment line is a //rest:: declaration
func IsDeclaration(comment string) bool {
	content := strings.TrimSpace(comment)
	content = strings.TrimPrefix(content, "//")
	return strings.HasPrefix(strings.TrimSpace(content), Prefix)
}

// ParseDeclaration parses one comment line into a typed declaration record
func (p *ParticipleParser) ParseDeclaration(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	raw := strings.TrimSpace(comment)

	decl, err := p.parser.ParseString(location.File, raw)
	if err != nil {
		return nil, p.syntaxError(err, location, raw)
	}

	annotationType, err := ParseAnnotationType(decl.Kind)
	if err != nil {
		return nil, NewSyntaxErrorWithContext(err.Error(), location, raw)
	}

	schema, err := p.registry.GetSchema(annotationType)
	if err != nil {
		return nil, &SchemaError{
			Msg:  err.Error(),
			Loc:  location,
			Hint: fmt.Sprintf("Register a schema for %s declarations", annotationType),
		}
	}

	parsed := &ParsedAnnotation{
		Type:       annotationType,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        raw,
	}

	collected := &MultipleAnnotationErrors{}
	var positional []string

	for _, arg := range decl.Args {
		if arg.Positional != nil {
			positional = append(positional, trimAndUnquote(*arg.Positional))
			continue
		}

		name, known := schema.CanonicalParameter(strings.TrimPrefix(arg.Param.Name, "-"))
		if _, exists := parsed.Parameters[name]; exists {
			collected.Errors = append(collected.Errors, NewValidationErrorWithContext(
				name, "parameter given once", "duplicate", location, annotationType))
			continue
		}

		if arg.Param.Value != nil {
			parsed.Parameters[name] = trimAndUnquote(*arg.Param.Value)
			continue
		}

		// A bare flag means its declared default, or true for booleans
		spec := schema.Parameters[name]
		switch {
		case !known:
			parsed.Parameters[name] = true
		case spec.DefaultValue != nil:
			parsed.Parameters[name] = spec.DefaultValue
		case spec.Type == BoolType:
			parsed.Parameters[name] = true
		default:
			collected.Errors = append(collected.Errors, NewValidationErrorWithContext(
				name, fmt.Sprintf("-%s=<value>", name), "flag without value", location, annotationType))
		}
	}

	if len(positional) > len(schema.Positional) {
		collected.Errors = append(collected.Errors, NewSyntaxErrorWithContext(
			fmt.Sprintf("too many positional arguments for %s: %s", annotationType, strings.Join(positional, " ")),
			location, raw))
	}
	for i, value := range positional {
		if i >= len(schema.Positional) {
			break
		}
		name := schema.Positional[i]
		if _, exists := parsed.Parameters[name]; exists {
			collected.Errors = append(collected.Errors, NewValidationErrorWithContext(
				name, "parameter given once", "given both positionally and as -"+name, location, annotationType))
			continue
		}
		parsed.Parameters[name] = value
	}

	if err := collected.errorOrNil(); err != nil {
		return nil, err
	}

	if err := p.validator.TransformParameters(parsed, schema); err != nil {
		return nil, err
	}
	if err := p.validator.ApplyDefaults(parsed, schema); err != nil {
		return nil, err
	}
	if err := p.validator.Validate(parsed, schema); err != nil {
		return nil, err
	}

	return parsed, nil
}

// ParseComments parses every declaration line of a comment group, skipping
// ordinary comment lines. Errors are collected so one bad line does not hide
// the others.
func (p *ParticipleParser) ParseComments(lines []string, location SourceLocation) ([]*ParsedAnnotation, error) {
	var result []*ParsedAnnotation
	collected := &MultipleAnnotationErrors{}

	for i, line := range lines {
		if !IsDeclaration(line) {
			continue
		}
		loc := location
		loc.Line += i

		parsed, err := p.ParseDeclaration(line, loc)
		if err != nil {
			var multi *MultipleAnnotationErrors
			var single AnnotationError
			switch {
			case errors.As(err, &multi):
				collected.Errors = append(collected.Errors, multi.Errors...)
			case errors.As(err, &single):
				collected.Errors = append(collected.Errors, single)
			default:
				collected.Errors = append(collected.Errors, &SyntaxError{Msg: err.Error(), Loc: loc})
			}
			continue
		}
		result = append(result, parsed)
	}

	return result, collected.errorOrNil()
}

func (p *ParticipleParser) syntaxError(err error, location SourceLocation, raw string) *SyntaxError {
	loc := location
	msg := err.Error()

	var perr participle.Error
	if errors.As(err, &perr) {
		msg = perr.Message()
		if pos := perr.Position(); pos.Column > 0 {
			loc.Column = location.Column + pos.Column - 1
		}
	}
	if !strings.Contains(strings.TrimPrefix(strings.TrimSpace(raw), "//"), Prefix) {
		msg = "missing " + Prefix + " prefix: " + msg
	}
	if strings.Count(raw, `"`)%2 == 1 {
		msg = "unterminated quoted string: " + msg
	}

	return NewSyntaxErrorWithContext(msg, loc, raw)
}
