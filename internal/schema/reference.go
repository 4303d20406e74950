package schema

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/go-openapi/jsonpointer"
	"github.com/go-openapi/spec"
)

const (
	definitionsToken = "definitions"

	// ErrorDefinition is the shared error envelope definition key.
	ErrorDefinition = "error"
)

// DefinitionRef builds the "#/definitions/<name>" reference for a definition
// key. The key is JSON pointer escaped (~0, ~1) and then percent-encoded, so
// any title round-trips through refName.
func DefinitionRef(name string) (spec.Ref, error) {
	if name == "" {
		return spec.Ref{}, errors.New("empty definition name")
	}
	fragment := (&url.URL{Fragment: "/" + definitionsToken + "/" + jsonpointer.Escape(name)}).String()
	ref, err := spec.NewRef(fragment)
	if err != nil {
		return spec.Ref{}, fmt.Errorf("invalid definition reference %q: %w", name, err)
	}
	return ref, nil
}

// RefSchema builds a reference schema.
func RefSchema(refType string) (*spec.Schema, error) {
	ref, err := DefinitionRef(refType)
	if err != nil {
		return nil, err
	}
	return &spec.Schema{SchemaProps: spec.SchemaProps{Ref: ref}}, nil
}

// IsRefSchema determines whether a schema is a reference schema.
func IsRefSchema(schema *spec.Schema) bool {
	if schema == nil {
		return false
	}
	return schema.Ref.Ref.GetURL() != nil
}

// ErrorSchema is the error envelope returned by the API:
// {code, message, data: {status}}.
func ErrorSchema() spec.Schema {
	data := spec.Schema{
		SchemaProps: spec.SchemaProps{
			Type: spec.StringOrArray{OBJECT},
			Properties: spec.SchemaProperties{
				"status": PrimitiveSchema(INTEGER),
			},
		},
	}
	return spec.Schema{
		SchemaProps: spec.SchemaProps{
			Properties: spec.SchemaProperties{
				"code":    PrimitiveSchema(STRING),
				"message": PrimitiveSchema(STRING),
				"data":    data,
			},
		},
	}
}

// PrimitiveSchema builds a primitive schema.
func PrimitiveSchema(refType string) spec.Schema {
	return spec.Schema{SchemaProps: spec.SchemaProps{Type: spec.StringOrArray{refType}}}
}

// ResolveReferences checks that every $ref used by an operation or a
// definition points at a key present in the definitions map.
func ResolveReferences(swagger *spec.Swagger) error {
	if swagger == nil {
		return nil
	}

	var missing []string
	check := func(where string, s *spec.Schema) {
		walkRefs(s, func(ref spec.Ref) {
			name := refName(ref)
			if _, ok := swagger.Definitions[name]; name == "" || !ok {
				missing = append(missing, fmt.Sprintf("%s -> %s", where, ref.String()))
			}
		})
	}

	if swagger.Paths != nil {
		for path, item := range swagger.Paths.Paths {
			for method, op := range operations(item) {
				where := strings.ToUpper(method) + " " + path
				for i := range op.Parameters {
					check(where, op.Parameters[i].Schema)
				}
				if op.Responses == nil {
					continue
				}
				if op.Responses.Default != nil {
					check(where, op.Responses.Default.Schema)
				}
				for _, resp := range op.Responses.StatusCodeResponses {
					check(where, resp.Schema)
				}
			}
		}
	}

	for name := range swagger.Definitions {
		def := swagger.Definitions[name]
		check("definitions."+name, &def)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("unresolved references: %s", strings.Join(missing, ", "))
	}
	return nil
}

func operations(item spec.PathItem) map[string]*spec.Operation {
	ops := make(map[string]*spec.Operation)
	for method, op := range map[string]*spec.Operation{
		"get":     item.Get,
		"put":     item.Put,
		"post":    item.Post,
		"delete":  item.Delete,
		"options": item.Options,
		"head":    item.Head,
		"patch":   item.Patch,
	} {
		if op != nil {
			ops[method] = op
		}
	}
	return ops
}

func walkRefs(s *spec.Schema, fn func(ref spec.Ref)) {
	if s == nil {
		return
	}
	if IsRefSchema(s) {
		fn(s.Ref)
	}
	if s.Items != nil {
		walkRefs(s.Items.Schema, fn)
		for i := range s.Items.Schemas {
			walkRefs(&s.Items.Schemas[i], fn)
		}
	}
	for name := range s.Properties {
		prop := s.Properties[name]
		walkRefs(&prop, fn)
	}
	if s.AdditionalProperties != nil {
		walkRefs(s.AdditionalProperties.Schema, fn)
	}
	for i := range s.AllOf {
		walkRefs(&s.AllOf[i], fn)
	}
}

// refName decodes the definition key a local "#/definitions/<name>"
// reference points at, or returns "" for any other reference.
func refName(ref spec.Ref) string {
	if !ref.HasFragmentOnly {
		return ""
	}
	tokens := ref.GetPointer().DecodedTokens()
	if len(tokens) != 2 || tokens[0] != definitionsToken {
		return ""
	}
	return tokens[1]
}
