package resolver

import (
	"fmt"
	"strings"

	"github.com/toyz/restmeta/internal/annotations"
)

// Payload keys. Declarations from the comment grammar use the first spelling;
// other declaration sources may use the alternates, matched case-insensitively.
var (
	keyName            = []string{"Name"}
	keyPattern         = []string{"Pattern", "RoutePattern"}
	keyVerbs           = []string{"Verbs"}
	keyCollection      = []string{"Collection", "IsCollection"}
	keyConditions      = []string{"Conditions", "RouteConditions"}
	keyExpose          = []string{"Expose"}
	keyAllowOptions    = []string{"AllowOptions", "AllowOptionsRequest"}
	keyAction          = []string{"Action", "ActionClassName"}
	keyOrigin          = []string{"Origin"}
	keyFor             = []string{"For"}
	keyRepresentations = []string{"Representations"}
)

// lookup finds a payload value under any of the key spellings
func lookup(decl *annotations.ParsedAnnotation, keys []string) (interface{}, bool) {
	for _, key := range keys {
		if value, ok := decl.Parameters[key]; ok {
			return value, true
		}
	}
	for param, value := range decl.Parameters {
		for _, key := range keys {
			if strings.EqualFold(param, key) {
				return value, true
			}
		}
	}
	return nil, false
}

// stringValue returns the value when it is string-shaped
func stringValue(decl *annotations.ParsedAnnotation, keys []string) (string, bool) {
	value, ok := lookup(decl, keys)
	if !ok {
		return "", false
	}
	s, ok := value.(string)
	return s, ok
}

func boolValue(decl *annotations.ParsedAnnotation, keys []string) bool {
	value, ok := lookup(decl, keys)
	if !ok {
		return false
	}
	b, err := annotations.ConvertToBool(value)
	return err == nil && b
}

// listValue returns the value when it is array-shaped
func listValue(decl *annotations.ParsedAnnotation, keys []string) ([]string, bool) {
	value, ok := lookup(decl, keys)
	if !ok {
		return nil, false
	}
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...), true
	case []interface{}:
		out := make([]string, len(v))
		for i, item := range v {
			out[i] = fmt.Sprintf("%v", item)
		}
		return out, true
	default:
		return nil, false
	}
}

// mapValue returns the value when it is map-shaped
func mapValue(decl *annotations.ParsedAnnotation, keys []string) (map[string]string, bool) {
	value, ok := lookup(decl, keys)
	if !ok {
		return nil, false
	}
	switch value.(type) {
	case map[string]string, map[string]interface{}:
		m, err := annotations.ConvertToStringMap(value)
		if err != nil {
			return nil, false
		}
		out := make(map[string]string, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out, true
	default:
		return nil, false
	}
}
