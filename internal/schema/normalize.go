// Package schema turns route resource schemas into Swagger definitions and
// provides the shared reference helpers used by the document compiler.
package schema

import (
	"github.com/go-openapi/spec"
	"github.com/griffnb/rest-swag/internal/domain"
)

// EmptyEnumSentinel replaces an enum that only declared "no selection".
const EmptyEnumSentinel = "NONE"

// Normalize converts a route schema into a Swagger definition. The $schema,
// title and context meta fields are not carried over, nor are the internal
// per-property fields (name, required, readonly, context, arg_options).
// The input is never modified.
func Normalize(in *domain.SchemaObject) spec.Schema {
	out := spec.Schema{}
	if in == nil {
		return out
	}

	if in.Type != "" {
		out.Type = spec.StringOrArray{in.Type}
	}

	if len(in.Properties) == 0 {
		return out
	}

	out.Properties = make(spec.SchemaProperties, len(in.Properties))
	for _, prop := range in.Properties {
		out.Properties[prop.Name] = NormalizeProperty(prop)
	}

	return out
}

// PropertyNames lists the property names of a route schema in declaration
// order, each once.
func PropertyNames(in *domain.SchemaObject) []string {
	if in == nil || len(in.Properties) == 0 {
		return nil
	}

	names := make([]string, 0, len(in.Properties))
	seen := make(map[string]struct{}, len(in.Properties))
	for _, prop := range in.Properties {
		if _, ok := seen[prop.Name]; ok {
			continue
		}
		seen[prop.Name] = struct{}{}
		names = append(names, prop.Name)
	}
	return names
}

// NormalizeProperty converts a single schema property.
//
// Nested object properties are dropped rather than normalized recursively;
// such a property documents as a string formatted "object".
func NormalizeProperty(prop domain.ArgSpec) spec.Schema {
	out := spec.Schema{
		SchemaProps: spec.SchemaProps{
			Description: prop.Description,
			Format:      prop.Format,
			Default:     prop.Default,
			Enum:        NormalizeEnum(prop.Enum),
			Minimum:     cloneFloat(prop.Minimum),
			Maximum:     cloneFloat(prop.Maximum),
			MinLength:   cloneInt(prop.MinLength),
			MaxLength:   cloneInt(prop.MaxLength),
			Pattern:     prop.Pattern,
			MinItems:    cloneInt(prop.MinItems),
			MaxItems:    cloneInt(prop.MaxItems),
			UniqueItems: prop.UniqueItems,
		},
	}

	typeName, format, coerced := CoerceType(prop)
	out.Type = spec.StringOrArray{typeName}
	if coerced {
		out.Format = format
	}

	if typeName == ARRAY {
		items := PrimitiveSchema(ItemsType(prop))
		out.Items = &spec.SchemaOrArray{Schema: &items}
	}

	return out
}

// NormalizeEnum removes the leading "" entry used to mean "no selection".
// When it is the only entry the enum becomes ["NONE"] so it is never empty.
func NormalizeEnum(enum []interface{}) []interface{} {
	if len(enum) == 0 {
		return nil
	}

	out := append([]interface{}(nil), enum...)
	if !isEmptyEnumValue(out[0]) {
		return out
	}
	if len(out) > 1 {
		return out[1:]
	}
	return []interface{}{EmptyEnumSentinel}
}

func isEmptyEnumValue(v interface{}) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
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
