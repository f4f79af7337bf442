// Package restmeta holds the compiled resource routing table produced by the
// restmeta resolver. Routers and link generators import this package to read
// the table; nothing here performs request dispatch.
package restmeta

import (
	"errors"
	"fmt"
)

// ErrFrozen is returned when a frozen ClassMetaData or RouteMetaData is mutated
var ErrFrozen = errors.New("metadata is frozen")

// RouteMetaData describes one named, addressable operation on a resource type
type RouteMetaData struct {
	Name                string            `json:"name" yaml:"name"`
	Verbs               []Verb            `json:"verbs,omitempty" yaml:"verbs,omitempty"`
	IsCollection        bool              `json:"collection" yaml:"collection"`
	RoutePattern        string            `json:"pattern" yaml:"pattern"`
	RouteConditions     map[string]string `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Expose              []string          `json:"expose,omitempty" yaml:"expose,omitempty"`
	AllowOptionsRequest bool              `json:"allowOptions" yaml:"allowOptions"`
	ActionClassName     string            `json:"action,omitempty" yaml:"action,omitempty"`
	HandleMethodName    string            `json:"handle,omitempty" yaml:"handle,omitempty"`
	RequiresHandle      bool              `json:"requiresHandle" yaml:"requiresHandle"`

	frozen bool
}

// HasHandleCall reports whether a handler method is bound to the route
func (r *RouteMetaData) HasHandleCall() bool {
	return r.HandleMethodName != ""
}

// NeedsHandleCall reports whether the handle policy requires a bound handler
func (r *RouteMetaData) NeedsHandleCall() bool {
	return r.RequiresHandle
}

// AllowsVerb reports whether the route accepts the verb
func (r *RouteMetaData) AllowsVerb(verb Verb) bool {
	for _, v := range r.Verbs {
		if v == verb {
			return true
		}
	}
	return false
}

// BindHandle sets the handler method. A route is bound at most once.
func (r *RouteMetaData) BindHandle(method string) error {
	if r.frozen {
		return ErrFrozen
	}
	if r.HandleMethodName != "" {
		return fmt.Errorf("route '%s' is already handled by '%s'", r.Name, r.HandleMethodName)
	}
	r.HandleMethodName = method
	return nil
}

// Pattern returns the parsed route pattern
func (r *RouteMetaData) Pattern() RoutePattern {
	return RoutePattern(r.RoutePattern)
}

// ClassMetaData is the compiled metadata of one resource type
type ClassMetaData struct {
	ClassName       string   `json:"class" yaml:"class"`
	Representations []string `json:"representations,omitempty" yaml:"representations,omitempty"`
	OriginRouteName string   `json:"origin,omitempty" yaml:"origin,omitempty"`

	routes     map[string]*RouteMetaData
	routeOrder []string
	frozen     bool
}

// NewClassMetaData creates empty metadata for a resource type
func NewClassMetaData(className string) *ClassMetaData {
	return &ClassMetaData{
		ClassName: className,
		routes:    make(map[string]*RouteMetaData),
	}
}

// AddRepresentation records an output format, ignoring duplicates
func (c *ClassMetaData) AddRepresentation(format string) {
	for _, existing := range c.Representations {
		if existing == format {
			return
		}
	}
	c.Representations = append(c.Representations, format)
}

// AddRoute inserts a route, preserving insertion order
func (c *ClassMetaData) AddRoute(route *RouteMetaData) error {
	if c.frozen {
		return ErrFrozen
	}
	if _, exists := c.routes[route.Name]; exists {
		return fmt.Errorf("route '%s' already exists on %s", route.Name, c.ClassName)
	}
	c.routes[route.Name] = route
	c.routeOrder = append(c.routeOrder, route.Name)
	return nil
}

// SetOriginRoute designates the canonical route. It must already exist.
func (c *ClassMetaData) SetOriginRoute(name string) error {
	if c.frozen {
		return ErrFrozen
	}
	if _, exists := c.routes[name]; !exists {
		return fmt.Errorf("origin route '%s' is not declared on %s", name, c.ClassName)
	}
	c.OriginRouteName = name
	return nil
}

// HasRoute reports whether a route with the given name exists
func (c *ClassMetaData) HasRoute(name string) bool {
	_, exists := c.routes[name]
	return exists
}

// Route returns a route by name
func (c *ClassMetaData) Route(name string) (*RouteMetaData, bool) {
	route, exists := c.routes[name]
	return route, exists
}

// Routes returns the routes in declaration order
func (c *ClassMetaData) Routes() []*RouteMetaData {
	result := make([]*RouteMetaData, 0, len(c.routeOrder))
	for _, name := range c.routeOrder {
		result = append(result, c.routes[name])
	}
	return result
}

// RouteNames returns the route names in declaration order
func (c *ClassMetaData) RouteNames() []string {
	return append([]string(nil), c.routeOrder...)
}

// OriginRoute returns the canonical route, if one is designated
func (c *ClassMetaData) OriginRoute() (*RouteMetaData, bool) {
	if c.OriginRouteName == "" {
		return nil, false
	}
	return c.Route(c.OriginRouteName)
}

// Freeze makes the metadata and all of its routes read-only
func (c *ClassMetaData) Freeze() {
	c.frozen = true
	for _, route := range c.routes {
		route.frozen = true
	}
}

// Frozen reports whether Freeze has been called
func (c *ClassMetaData) Frozen() bool {
	return c.frozen
}
