package restmeta

import (
	"encoding/json"
	"sort"
)

// RouteInfo is a flattened, read-only view of one compiled route
type RouteInfo struct {
	ClassName  string   `json:"class" yaml:"class"`
	Name       string   `json:"name" yaml:"name"`
	Verbs      []Verb   `json:"verbs,omitempty" yaml:"verbs,omitempty"`
	Pattern    string   `json:"pattern" yaml:"pattern"`
	Variables  []string `json:"variables,omitempty" yaml:"variables,omitempty"`
	Collection bool     `json:"collection" yaml:"collection"`
	Handle     string   `json:"handle,omitempty" yaml:"handle,omitempty"`
	Action     string   `json:"action,omitempty" yaml:"action,omitempty"`
	Origin     bool     `json:"origin" yaml:"origin"`
}

// Table maps resource type identifiers to their compiled metadata
type Table struct {
	classes map[string]*ClassMetaData
}

// NewTable creates a table from compiled classes
func NewTable(classes ...*ClassMetaData) *Table {
	t := &Table{classes: make(map[string]*ClassMetaData, len(classes))}
	for _, c := range classes {
		t.classes[c.ClassName] = c
	}
	return t
}

// Class returns the metadata of one resource type
func (t *Table) Class(name string) (*ClassMetaData, bool) {
	c, ok := t.classes[name]
	return c, ok
}

// ClassNames returns the resource type identifiers in sorted order
func (t *Table) ClassNames() []string {
	names := make([]string, 0, len(t.classes))
	for name := range t.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Classes returns the compiled classes sorted by type identifier
func (t *Table) Classes() []*ClassMetaData {
	names := t.ClassNames()
	result := make([]*ClassMetaData, len(names))
	for i, name := range names {
		result[i] = t.classes[name]
	}
	return result
}

// Len returns the number of resource types in the table
func (t *Table) Len() int {
	return len(t.classes)
}

// Routes returns every route of every class, classes sorted, routes in declaration order
func (t *Table) Routes() []RouteInfo {
	var routes []RouteInfo
	for _, c := range t.Classes() {
		for _, r := range c.Routes() {
			routes = append(routes, RouteInfo{
				ClassName:  c.ClassName,
				Name:       r.Name,
				Verbs:      r.Verbs,
				Pattern:    r.RoutePattern,
				Variables:  r.Pattern().Variables(),
				Collection: r.IsCollection,
				Handle:     r.HandleMethodName,
				Action:     r.ActionClassName,
				Origin:     c.OriginRouteName == r.Name,
			})
		}
	}
	return routes
}

// RoutesByVerb returns the routes that allow the verb
func (t *Table) RoutesByVerb(verb Verb) []RouteInfo {
	var filtered []RouteInfo
	for _, route := range t.Routes() {
		for _, v := range route.Verbs {
			if v == verb {
				filtered = append(filtered, route)
				break
			}
		}
	}
	return filtered
}

// classDocument is the serialized form of ClassMetaData with ordered routes
type classDocument struct {
	ClassName       string           `json:"class" yaml:"class"`
	Representations []string         `json:"representations,omitempty" yaml:"representations,omitempty"`
	OriginRouteName string           `json:"origin,omitempty" yaml:"origin,omitempty"`
	Routes          []*RouteMetaData `json:"routes" yaml:"routes"`
}

func (c *ClassMetaData) document() classDocument {
	return classDocument{
		ClassName:       c.ClassName,
		Representations: c.Representations,
		OriginRouteName: c.OriginRouteName,
		Routes:          c.Routes(),
	}
}

// MarshalJSON renders the class with its routes in declaration order
func (c *ClassMetaData) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.document())
}

// MarshalYAML renders the class with its routes in declaration order
func (c *ClassMetaData) MarshalYAML() (interface{}, error) {
	return c.document(), nil
}
