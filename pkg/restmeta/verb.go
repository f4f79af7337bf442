package restmeta

import (
	"fmt"
	"strings"
)

// Verb is a protocol-neutral operation a route allows
type Verb string

const (
	VerbRead    Verb = "read"
	VerbCreate  Verb = "create"
	VerbUpdate  Verb = "update"
	VerbPatch   Verb = "patch"
	VerbDelete  Verb = "delete"
	VerbOptions Verb = "options"
)

// AllVerbs lists the allowed verb vocabulary in canonical order
var AllVerbs = []Verb{VerbRead, VerbCreate, VerbUpdate, VerbPatch, VerbDelete, VerbOptions}

// httpAliases maps HTTP method names onto the verb vocabulary
var httpAliases = map[string]Verb{
	"GET":     VerbRead,
	"HEAD":    VerbRead,
	"POST":    VerbCreate,
	"PUT":     VerbUpdate,
	"PATCH":   VerbPatch,
	"DELETE":  VerbDelete,
	"OPTIONS": VerbOptions,
}

// ParseVerb converts a declared verb (case-insensitive, HTTP aliases accepted)
func ParseVerb(s string) (Verb, error) {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	for _, v := range AllVerbs {
		if string(v) == lower {
			return v, nil
		}
	}
	if v, ok := httpAliases[strings.ToUpper(trimmed)]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown verb '%s', must be one of: %s", s, strings.Join(VerbStrings(AllVerbs), ", "))
}

// HTTPMethod returns the canonical HTTP method for the verb
func (v Verb) HTTPMethod() string {
	switch v {
	case VerbRead:
		return "GET"
	case VerbCreate:
		return "POST"
	case VerbUpdate:
		return "PUT"
	case VerbPatch:
		return "PATCH"
	case VerbDelete:
		return "DELETE"
	case VerbOptions:
		return "OPTIONS"
	default:
		return ""
	}
}

// VerbStrings converts verbs to their string form
func VerbStrings(verbs []Verb) []string {
	out := make([]string, len(verbs))
	for i, v := range verbs {
		out[i] = string(v)
	}
	return out
}
