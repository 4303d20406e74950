package orchestrator

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/go-openapi/spec"
)

// topLevelOrder is the key order of the emitted document. Keys not listed
// follow in lexical order.
var topLevelOrder = []string{
	"swagger",
	"info",
	"host",
	"basePath",
	"schemes",
	"consumes",
	"produces",
	"securityDefinitions",
	"security",
	"paths",
	"definitions",
}

// Document is a generated Swagger document. Paths marshal in PathOrder,
// which is the order routes were registered, rather than map order, and
// definition properties marshal in PropertyOrder.
type Document struct {
	*spec.Swagger

	// PathOrder lists path templates in the order they were first compiled
	PathOrder []string

	// PropertyOrder lists each definition's property names in schema order
	PropertyOrder map[string][]string
}

// MarshalJSON emits the document with a stable key order.
func (d Document) MarshalJSON() ([]byte, error) {
	raw, err := json.Marshal(d.Swagger)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	if d.Paths != nil {
		paths, err := d.marshalPaths()
		if err != nil {
			return nil, err
		}
		fields["paths"] = paths
	}

	if len(d.Definitions) > 0 {
		definitions, err := d.marshalDefinitions()
		if err != nil {
			return nil, err
		}
		fields["definitions"] = definitions
	}

	keys := make([]string, 0, len(fields))
	for _, key := range topLevelOrder {
		if _, ok := fields[key]; ok {
			keys = append(keys, key)
		}
	}
	rest := make([]string, 0, len(fields))
	for key := range fields {
		if !contains(topLevelOrder, key) {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)

	return writeObject(append(keys, rest...), fields)
}

func (d Document) marshalPaths() (json.RawMessage, error) {
	keys := orderedKeys(d.PathOrder, d.Paths.Paths)

	fields := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		b, err := json.Marshal(d.Paths.Paths[key])
		if err != nil {
			return nil, err
		}
		fields[key] = b
	}

	return writeObject(keys, fields)
}

func (d Document) marshalDefinitions() (json.RawMessage, error) {
	keys := orderedKeys(nil, d.Definitions)

	fields := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		b, err := marshalSchema(d.Definitions[key], d.PropertyOrder[key])
		if err != nil {
			return nil, err
		}
		fields[key] = b
	}

	return writeObject(keys, fields)
}

// marshalSchema emits a definition with its properties in order. The
// properties object goes last; the other schema keys keep their usual order.
func marshalSchema(s spec.Schema, order []string) (json.RawMessage, error) {
	if len(s.Properties) == 0 || len(order) == 0 {
		return json.Marshal(s)
	}

	props := s.Properties
	s.Properties = nil
	base, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	if len(base) < 2 || base[0] != '{' {
		base = []byte("{}")
	}

	keys := orderedKeys(order, props)
	fields := make(map[string]json.RawMessage, len(keys))
	for _, key := range keys {
		b, err := json.Marshal(props[key])
		if err != nil {
			return nil, err
		}
		fields[key] = b
	}
	properties, err := writeObject(keys, fields)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	if len(base) > 2 {
		buf.WriteByte(',')
	}
	buf.WriteString(`"properties":`)
	buf.Write(properties)
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// orderedKeys lists the keys of m named in order first, each once, then the
// remaining keys in lexical order.
func orderedKeys[V any](order []string, m map[string]V) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	for _, key := range order {
		if _, ok := m[key]; !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}

	var rest []string
	for key := range m {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

func writeObject(keys []string, fields map[string]json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(fields[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
