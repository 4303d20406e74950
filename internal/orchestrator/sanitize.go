package orchestrator

import (
	"math"

	"github.com/go-openapi/spec"
)

// sanitizeSwagger drops infinity and NaN values, which JSON cannot encode.
func sanitizeSwagger(swagger *spec.Swagger) {
	if swagger == nil {
		return
	}

	for name, def := range swagger.Definitions {
		sanitizeSchema(&def)
		swagger.Definitions[name] = def
	}

	if swagger.Paths == nil {
		return
	}

	for pathKey, pathItem := range swagger.Paths.Paths {
		sanitizeOperation(pathKey, pathItem.Get)
		sanitizeOperation(pathKey, pathItem.Put)
		sanitizeOperation(pathKey, pathItem.Post)
		sanitizeOperation(pathKey, pathItem.Delete)
		sanitizeOperation(pathKey, pathItem.Options)
		sanitizeOperation(pathKey, pathItem.Head)
		sanitizeOperation(pathKey, pathItem.Patch)
	}
}

// sanitizeOperation sanitizes parameters in an operation
func sanitizeOperation(path string, op *spec.Operation) {
	if op == nil {
		return
	}

	for i := range op.Parameters {
		param := &op.Parameters[i]
		sanitizeParameter(path, param)
	}
}

func invalidFloat(f *float64) bool {
	return f != nil && (math.IsInf(*f, 0) || math.IsNaN(*f))
}

func invalidValue(v interface{}) bool {
	f, ok := v.(float64)
	return ok && (math.IsInf(f, 0) || math.IsNaN(f))
}

func sanitizeEnum(enum []interface{}) []interface{} {
	if len(enum) == 0 {
		return enum
	}
	valid := make([]interface{}, 0, len(enum))
	for _, v := range enum {
		if invalidValue(v) {
			continue
		}
		valid = append(valid, v)
	}
	return valid
}

// sanitizeParameter removes infinity/NaN values from parameter constraints
func sanitizeParameter(_ string, param *spec.Parameter) {
	if param == nil {
		return
	}

	if invalidFloat(param.Minimum) {
		param.Minimum = nil
	}
	if invalidFloat(param.Maximum) {
		param.Maximum = nil
	}
	if invalidFloat(param.MultipleOf) {
		param.MultipleOf = nil
	}
	if invalidValue(param.Default) {
		param.Default = nil
	}
	if invalidValue(param.Example) {
		param.Example = nil
	}

	param.Enum = sanitizeEnum(param.Enum)

	if param.Schema != nil {
		sanitizeSchema(param.Schema)
	}

	if param.Items != nil {
		sanitizeItems(param.Items)
	}
}

// sanitizeSchema recursively sanitizes a schema
func sanitizeSchema(schema *spec.Schema) {
	if schema == nil {
		return
	}

	if invalidFloat(schema.Minimum) {
		schema.Minimum = nil
	}
	if invalidFloat(schema.Maximum) {
		schema.Maximum = nil
	}
	if invalidFloat(schema.MultipleOf) {
		schema.MultipleOf = nil
	}
	if invalidValue(schema.Default) {
		schema.Default = nil
	}

	schema.Enum = sanitizeEnum(schema.Enum)

	for k := range schema.Properties {
		propSchema := schema.Properties[k]
		sanitizeSchema(&propSchema)
		schema.Properties[k] = propSchema
	}

	if schema.Items != nil && schema.Items.Schema != nil {
		sanitizeSchema(schema.Items.Schema)
	}

	if schema.AdditionalProperties != nil && schema.AdditionalProperties.Schema != nil {
		sanitizeSchema(schema.AdditionalProperties.Schema)
	}
}

// sanitizeItems sanitizes items in array parameters
func sanitizeItems(items *spec.Items) {
	if items == nil {
		return
	}

	if invalidFloat(items.Minimum) {
		items.Minimum = nil
	}
	if invalidFloat(items.Maximum) {
		items.Maximum = nil
	}
	if invalidFloat(items.MultipleOf) {
		items.MultipleOf = nil
	}
	if invalidValue(items.Default) {
		items.Default = nil
	}
	if invalidValue(items.Example) {
		items.Example = nil
	}

	items.Enum = sanitizeEnum(items.Enum)

	if items.Items != nil {
		sanitizeItems(items.Items)
	}
}
