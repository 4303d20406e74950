// Package domain contains the route registry model the document compiler reads.
// Values are coerced into typed fields when they enter the registry so the
// compiler never has to inspect loosely typed data.
package domain

import (
	"strings"
)

// RouteRegistry is an ordered collection of registered routes.
type RouteRegistry struct {
	// Namespace is set when the registry is a single-namespace index view.
	Namespace string

	// Description of the namespace view, used as the document description.
	Description string

	routes []*RouteEntry
	index  map[string]int
}

// NewRouteRegistry creates an empty registry.
func NewRouteRegistry() *RouteRegistry {
	return &RouteRegistry{
		index: make(map[string]int),
	}
}

// Add appends a route. Adding a pattern that is already present replaces the
// entry in place, keeping its original position.
func (r *RouteRegistry) Add(entry *RouteEntry) {
	if entry == nil {
		return
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[entry.Pattern]; ok {
		r.routes[i] = entry
		return
	}
	r.index[entry.Pattern] = len(r.routes)
	r.routes = append(r.routes, entry)
}

// Get returns the route registered for pattern.
func (r *RouteRegistry) Get(pattern string) (*RouteEntry, bool) {
	i, ok := r.index[pattern]
	if !ok {
		return nil, false
	}
	return r.routes[i], true
}

// Routes returns the routes in registration order.
func (r *RouteRegistry) Routes() []*RouteEntry {
	return r.routes
}

// Len returns the number of routes.
func (r *RouteRegistry) Len() int {
	return len(r.routes)
}

// Filter returns a copy of the registry holding only routes whose pattern
// begins with prefix.
func (r *RouteRegistry) Filter(prefix string) *RouteRegistry {
	out := NewRouteRegistry()
	out.Namespace = r.Namespace
	out.Description = r.Description
	for _, route := range r.routes {
		if strings.HasPrefix(route.Pattern, prefix) {
			out.Add(route.Clone())
		}
	}
	return out
}

// Clone returns a deep copy of the registry.
func (r *RouteRegistry) Clone() *RouteRegistry {
	return r.Filter("")
}

// RouteEntry is a single registered route pattern.
type RouteEntry struct {
	// Pattern is the route regex, e.g. /wp/v2/posts/(?P<id>[\d]+)
	Pattern string

	// Namespace the route was registered under
	Namespace string

	// Endpoints holds one MethodSpec per registered handler
	Endpoints []MethodSpec

	// Schema describes the resource served by the route
	Schema *SchemaObject

	// GroupName overrides the derived documentation group
	GroupName string

	// Description of the route group
	Description string
}

// Clone returns a deep copy of the entry.
func (e *RouteEntry) Clone() *RouteEntry {
	if e == nil {
		return nil
	}
	out := *e
	out.Endpoints = make([]MethodSpec, len(e.Endpoints))
	for i, ep := range e.Endpoints {
		out.Endpoints[i] = ep.Clone()
	}
	out.Schema = e.Schema.Clone()
	return &out
}

// MethodSpec is one handler registration: a set of HTTP methods sharing args.
type MethodSpec struct {
	Methods []string
	Args    []ArgSpec
}

// HasMethod reports whether method is served by this spec.
func (m MethodSpec) HasMethod(method string) bool {
	for _, v := range m.Methods {
		if strings.EqualFold(v, method) {
			return true
		}
	}
	return false
}

// Arg returns the declared argument with the given name.
func (m MethodSpec) Arg(name string) (ArgSpec, bool) {
	for _, arg := range m.Args {
		if arg.Name == name {
			return arg, true
		}
	}
	return ArgSpec{}, false
}

// Clone returns a deep copy of the spec.
func (m MethodSpec) Clone() MethodSpec {
	out := MethodSpec{
		Methods: append([]string(nil), m.Methods...),
		Args:    make([]ArgSpec, len(m.Args)),
	}
	for i, arg := range m.Args {
		out.Args[i] = arg.Clone()
	}
	return out
}

// ArgSpec describes a request argument or a schema property.
type ArgSpec struct {
	Name string

	// Type is the declared type token. HasType is true whenever a type was
	// declared at all; a declared type that was not a string leaves Type empty.
	Type    string
	HasType bool

	Description string
	Format      string
	Default     interface{}
	Enum        []interface{}
	Required    bool
	Minimum     *float64
	Maximum     *float64

	// ItemsType is the element type of array arguments, empty when undeclared.
	ItemsType string

	ReadOnly bool
	Context  []string

	MinLength   *int64
	MaxLength   *int64
	Pattern     string
	MinItems    *int64
	MaxItems    *int64
	UniqueItems bool

	// Properties of nested object types. The normalizer drops these.
	Properties []ArgSpec
}

// Clone returns a deep copy of the arg.
func (a ArgSpec) Clone() ArgSpec {
	out := a
	out.Enum = append([]interface{}(nil), a.Enum...)
	out.Context = append([]string(nil), a.Context...)
	out.Minimum = cloneFloat(a.Minimum)
	out.Maximum = cloneFloat(a.Maximum)
	out.MinLength = cloneInt(a.MinLength)
	out.MaxLength = cloneInt(a.MaxLength)
	out.MinItems = cloneInt(a.MinItems)
	out.MaxItems = cloneInt(a.MaxItems)
	if a.Properties != nil {
		out.Properties = make([]ArgSpec, len(a.Properties))
		for i, p := range a.Properties {
			out.Properties[i] = p.Clone()
		}
	}
	return out
}

// SchemaObject is the resource schema attached to a route.
type SchemaObject struct {
	// Schema is the $schema meta URI
	Schema string

	// Title becomes the definition key and must be unique across the registry
	Title string

	Type       string
	Properties []ArgSpec
}

// Clone returns a deep copy of the schema.
func (s *SchemaObject) Clone() *SchemaObject {
	if s == nil {
		return nil
	}
	out := *s
	out.Properties = make([]ArgSpec, len(s.Properties))
	for i, p := range s.Properties {
		out.Properties[i] = p.Clone()
	}
	return &out
}

// Property returns the property with the given name.
func (s *SchemaObject) Property(name string) (ArgSpec, bool) {
	for _, p := range s.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return ArgSpec{}, false
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
