package loader

import (
	"fmt"
	"math"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/griffnb/rest-swag/internal/domain"
)

// pair is one key/value of a mapping node, in document order.
type pair struct {
	key   string
	value *yaml.Node
}

// resolve follows document and alias nodes to the node holding the value.
func resolve(n *yaml.Node) *yaml.Node {
	for n != nil {
		switch n.Kind {
		case yaml.DocumentNode:
			if len(n.Content) == 0 {
				return nil
			}
			n = n.Content[0]
		case yaml.AliasNode:
			n = n.Alias
		default:
			return n
		}
	}
	return nil
}

// pairs returns the entries of a mapping in document order. Empty sequences
// are accepted as empty mappings since PHP encodes an empty array as [].
func pairs(n *yaml.Node) ([]pair, bool) {
	n = resolve(n)
	if n == nil {
		return nil, false
	}

	switch n.Kind {
	case yaml.MappingNode:
		out := make([]pair, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			out = append(out, pair{key: n.Content[i].Value, value: n.Content[i+1]})
		}
		return out, true
	case yaml.SequenceNode:
		return nil, len(n.Content) == 0
	default:
		return nil, false
	}
}

func field(n *yaml.Node, key string) *yaml.Node {
	entries, _ := pairs(n)
	for _, p := range entries {
		if p.key == key {
			return resolve(p.value)
		}
	}
	return nil
}

func isNull(n *yaml.Node) bool {
	return n == nil || (n.Kind == yaml.ScalarNode && n.Tag == "!!null")
}

// stringValue returns the scalar text of a string node.
func stringValue(n *yaml.Node) (string, bool) {
	n = resolve(n)
	if n == nil || n.Kind != yaml.ScalarNode || n.Tag == "!!null" {
		return "", false
	}
	return n.Value, true
}

func stringField(n *yaml.Node, key string) string {
	s, _ := stringValue(field(n, key))
	return s
}

func boolField(n *yaml.Node, key string) bool {
	v := field(n, key)
	if isNull(v) {
		return false
	}
	var b bool
	if err := v.Decode(&b); err != nil {
		return false
	}
	return b
}

func floatField(n *yaml.Node, key string) *float64 {
	v := field(n, key)
	if isNull(v) {
		return nil
	}
	var f float64
	if err := v.Decode(&f); err != nil || !isFinite(f) {
		return nil
	}
	return &f
}

func intField(n *yaml.Node, key string) *int64 {
	v := field(n, key)
	if isNull(v) {
		return nil
	}
	var i int64
	if err := v.Decode(&i); err != nil {
		return nil
	}
	return &i
}

// value decodes any node into plain Go values.
func value(n *yaml.Node) interface{} {
	v, _ := finiteValue(n)
	return v
}

// finiteValue decodes n without the NaN and infinities YAML allows and JSON
// does not. ok is false when n itself is such a number.
func finiteValue(n *yaml.Node) (interface{}, bool) {
	if isNull(n) {
		return nil, true
	}
	var v interface{}
	if err := n.Decode(&v); err != nil {
		return nil, true
	}
	return finite(v)
}

func finite(v interface{}) (interface{}, bool) {
	switch t := v.(type) {
	case float64:
		return t, isFinite(t)
	case []interface{}:
		out := make([]interface{}, 0, len(t))
		for _, item := range t {
			if item, ok := finite(item); ok {
				out = append(out, item)
			}
		}
		return out, true
	case map[string]interface{}:
		for key, item := range t {
			if item, ok := finite(item); ok {
				t[key] = item
			} else {
				delete(t, key)
			}
		}
		return t, true
	}
	return v, true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func stringList(n *yaml.Node) []string {
	n = resolve(n)
	if n == nil {
		return nil
	}
	if n.Kind == yaml.ScalarNode {
		if s, ok := stringValue(n); ok && s != "" {
			return []string{s}
		}
		return nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(n.Content))
	for _, item := range n.Content {
		if s, ok := stringValue(item); ok {
			out = append(out, s)
		}
	}
	return out
}

// decoder turns a route index document into registry entries. Anomalies in a
// single route or argument are coerced and reported, never fatal.
type decoder struct {
	debug Debugger
}

func (d *decoder) debugf(format string, v ...interface{}) {
	if d.debug != nil {
		d.debug.Printf(format, v...)
	}
}

func (d *decoder) decodeIndex(root *yaml.Node) (*Index, error) {
	root = resolve(root)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("route index must be an object")
	}

	idx := &Index{
		Name:           stringField(root, "name"),
		Description:    stringField(root, "description"),
		URL:            stringField(root, "url"),
		Home:           stringField(root, "home"),
		Namespace:      stringField(root, "namespace"),
		Namespaces:     stringList(field(root, "namespaces")),
		Authentication: d.decodeAuthentication(field(root, "authentication")),
	}

	routes, ok := pairs(field(root, "routes"))
	if !ok {
		return nil, fmt.Errorf("route index has no routes object")
	}

	for _, p := range routes {
		entry, err := d.decodeRoute(p.key, p.value)
		if err != nil {
			d.debugf("loader: skipping route %s: %v", p.key, err)
			continue
		}
		if entry.Namespace == "" {
			entry.Namespace = idx.Namespace
		}
		idx.Routes = append(idx.Routes, entry)
	}

	return idx, nil
}

func (d *decoder) decodeAuthentication(n *yaml.Node) []string {
	entries, _ := pairs(n)
	out := make([]string, 0, len(entries))
	for _, p := range entries {
		out = append(out, p.key)
	}
	return out
}

func (d *decoder) decodeRoute(pattern string, n *yaml.Node) (*domain.RouteEntry, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern must start with /")
	}
	if resolve(n) == nil || resolve(n).Kind != yaml.MappingNode {
		return nil, fmt.Errorf("route must be an object")
	}

	entry := &domain.RouteEntry{
		Pattern:     pattern,
		Namespace:   strings.Trim(stringField(n, "namespace"), "/"),
		GroupName:   stringField(n, "_groupname"),
		Description: stringField(n, "_description"),
	}

	if endpoints := field(n, "endpoints"); endpoints != nil && endpoints.Kind == yaml.SequenceNode {
		for _, ep := range endpoints.Content {
			entry.Endpoints = append(entry.Endpoints, d.decodeEndpoint(pattern, ep))
		}
	} else if methods := stringList(field(n, "methods")); len(methods) > 0 {
		entry.Endpoints = []domain.MethodSpec{{Methods: upper(methods)}}
	}

	if schema := field(n, "schema"); !isNull(schema) {
		if obj, ok := d.decodeSchema(pattern, schema); ok {
			entry.Schema = obj
		}
	}

	return entry, nil
}

func (d *decoder) decodeEndpoint(pattern string, n *yaml.Node) domain.MethodSpec {
	spec := domain.MethodSpec{
		Methods: upper(methodList(field(n, "methods"))),
	}

	args, ok := pairs(field(n, "args"))
	if !ok && field(n, "args") != nil {
		d.debugf("loader: %s has malformed args, ignoring", pattern)
	}
	for _, p := range args {
		spec.Args = append(spec.Args, d.decodeArg(pattern, p.key, p.value))
	}

	return spec
}

// methodList accepts both a list of names and a {NAME: true} map.
func methodList(n *yaml.Node) []string {
	if entries, ok := pairs(n); ok && resolve(n).Kind == yaml.MappingNode {
		out := make([]string, 0, len(entries))
		for _, p := range entries {
			out = append(out, p.key)
		}
		return out
	}
	return stringList(n)
}

func (d *decoder) decodeArg(pattern, name string, n *yaml.Node) domain.ArgSpec {
	arg := domain.ArgSpec{
		Name:        name,
		Description: stringField(n, "description"),
		Format:      stringField(n, "format"),
		Default:     value(field(n, "default")),
		Required:    boolField(n, "required"),
		Minimum:     floatField(n, "minimum"),
		Maximum:     floatField(n, "maximum"),
		ReadOnly:    boolField(n, "readonly"),
		Context:     stringList(field(n, "context")),
		MinLength:   intField(n, "minLength"),
		MaxLength:   intField(n, "maxLength"),
		Pattern:     stringField(n, "pattern"),
		MinItems:    intField(n, "minItems"),
		MaxItems:    intField(n, "maxItems"),
		UniqueItems: boolField(n, "uniqueItems"),
	}

	if t := field(n, "type"); !isNull(t) {
		arg.HasType = true
		if s, ok := stringValue(t); ok {
			arg.Type = s
		}
	}

	if items := field(n, "items"); items != nil {
		arg.ItemsType, _ = stringValue(field(items, "type"))
	}

	if enum := field(n, "enum"); !isNull(enum) {
		if enum.Kind == yaml.SequenceNode {
			arg.Enum = make([]interface{}, 0, len(enum.Content))
			for _, item := range enum.Content {
				if v, ok := finiteValue(item); ok {
					arg.Enum = append(arg.Enum, v)
				}
			}
		} else {
			d.debugf("loader: %s arg %s has a non-list enum, ignoring", pattern, name)
		}
	}

	props, _ := pairs(field(n, "properties"))
	for _, p := range props {
		arg.Properties = append(arg.Properties, d.decodeArg(pattern, p.key, p.value))
	}

	return arg
}

func (d *decoder) decodeSchema(pattern string, n *yaml.Node) (*domain.SchemaObject, bool) {
	if n.Kind != yaml.MappingNode {
		d.debugf("loader: %s schema is not an object, ignoring", pattern)
		return nil, false
	}

	obj := &domain.SchemaObject{
		Schema: stringField(n, "$schema"),
		Title:  stringField(n, "title"),
		Type:   stringField(n, "type"),
	}

	props, _ := pairs(field(n, "properties"))
	for _, p := range props {
		obj.Properties = append(obj.Properties, d.decodeArg(pattern, p.key, p.value))
	}

	return obj, true
}

func upper(methods []string) []string {
	for i, m := range methods {
		methods[i] = strings.ToUpper(strings.TrimSpace(m))
	}
	return methods
}
