package restmeta

import (
	"strings"
)

// PatternPartType represents the type of a route pattern part
type PatternPartType int

const (
	StaticPart PatternPartType = iota
	VariablePart
	WildcardPart
)

// PatternPart represents a single part of a route pattern
type PatternPart struct {
	Type      PatternPartType
	Value     string // For static parts: the literal text, for variables: the variable name
	ParamType string // For braced variables with a type suffix (e.g. "int"), empty otherwise
}

// RoutePattern is a route path template. Both ":id" and "{id}" / "{id:int}"
// variable forms are understood; no further grammar is enforced.
type RoutePattern string

// Raw returns the original pattern
func (p RoutePattern) Raw() string {
	return string(p)
}

// Parts splits the pattern into static, variable and wildcard parts
func (p RoutePattern) Parts() []PatternPart {
	path := string(p)
	var parts []PatternPart

	i := 0
	for i < len(path) {
		switch {
		case path[i] == '{':
			j := strings.IndexByte(path[i:], '}')
			if j == -1 {
				// Malformed, treat the rest as static
				parts = append(parts, PatternPart{Type: StaticPart, Value: path[i:]})
				return parts
			}
			content := path[i+1 : i+j]
			if content == "*" {
				parts = append(parts, PatternPart{Type: WildcardPart, Value: "*"})
			} else {
				name, paramType := content, ""
				if colon := strings.Index(content, ":"); colon != -1 {
					name, paramType = content[:colon], content[colon+1:]
				}
				parts = append(parts, PatternPart{Type: VariablePart, Value: name, ParamType: paramType})
			}
			i += j + 1
		case path[i] == ':' && (i == 0 || path[i-1] == '/'):
			j := i + 1
			for j < len(path) && path[j] != '/' {
				j++
			}
			parts = append(parts, PatternPart{Type: VariablePart, Value: path[i+1 : j]})
			i = j
		case path[i] == '*' && (i == 0 || path[i-1] == '/'):
			parts = append(parts, PatternPart{Type: WildcardPart, Value: "*"})
			i++
		default:
			start := i
			for i < len(path) && path[i] != '{' && !(path[i] == ':' && path[i-1] == '/') && !(path[i] == '*' && path[i-1] == '/') {
				i++
			}
			if i == start {
				i++
			}
			parts = append(parts, PatternPart{Type: StaticPart, Value: path[start:i]})
		}
	}

	return parts
}

// Variables returns the variable names in order of appearance
func (p RoutePattern) Variables() []string {
	var names []string
	for _, part := range p.Parts() {
		if part.Type == VariablePart {
			names = append(names, part.Value)
		}
	}
	return names
}
