package resolver

import (
	"fmt"
	"strings"

	"github.com/toyz/restmeta/internal/annotations"
	"github.com/toyz/restmeta/pkg/restmeta"
)

// HandlePolicy decides whether a compiled route must be bound to a handle
// method. It sees the compiled route and the declaration it came from.
type HandlePolicy func(route *restmeta.RouteMetaData, decl *annotations.ParsedAnnotation) bool

// Policy names accepted by ParsePolicy
const (
	PolicyNone          = "none"
	PolicyWithoutAction = "without-action"
	PolicyVerbs         = "verbs"
	PolicyDeclared      = "declared"
)

// NoHandleRequired never requires a handle
func NoHandleRequired(*restmeta.RouteMetaData, *annotations.ParsedAnnotation) bool {
	return false
}

// RequireHandleWithoutAction requires a handle on routes with no action class
func RequireHandleWithoutAction(route *restmeta.RouteMetaData, _ *annotations.ParsedAnnotation) bool {
	return route.ActionClassName == ""
}

// RequireHandleForVerbs requires a handle on routes allowing any of the verbs
func RequireHandleForVerbs(verbs ...restmeta.Verb) HandlePolicy {
	return func(route *restmeta.RouteMetaData, _ *annotations.ParsedAnnotation) bool {
		for _, verb := range verbs {
			if route.AllowsVerb(verb) {
				return true
			}
		}
		return false
	}
}

// RequireDeclaredHandle requires a handle on routes declared with -RequireHandle
func RequireDeclaredHandle(_ *restmeta.RouteMetaData, decl *annotations.ParsedAnnotation) bool {
	if decl == nil {
		return false
	}
	required, err := annotations.ConvertToBool(decl.Parameters["RequireHandle"])
	return err == nil && required
}

// ParsePolicy resolves a policy by name. verbs is only used by the verbs policy.
func ParsePolicy(name string, verbs []string) (HandlePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PolicyNone:
		return NoHandleRequired, nil
	case PolicyWithoutAction:
		return RequireHandleWithoutAction, nil
	case PolicyDeclared:
		return RequireDeclaredHandle, nil
	case PolicyVerbs:
		if len(verbs) == 0 {
			return nil, fmt.Errorf("handle policy %q needs at least one verb", PolicyVerbs)
		}
		parsed := make([]restmeta.Verb, 0, len(verbs))
		for _, v := range verbs {
			verb, err := restmeta.ParseVerb(v)
			if err != nil {
				return nil, err
			}
			parsed = append(parsed, verb)
		}
		return RequireHandleForVerbs(parsed...), nil
	default:
		return nil, fmt.Errorf("unknown handle policy %q (expected %s, %s, %s or %s)",
			name, PolicyNone, PolicyWithoutAction, PolicyVerbs, PolicyDeclared)
	}
}
