package schema

import (
	"github.com/griffnb/rest-swag/internal/domain"
)

const (
	// ARRAY represent a array value.
	ARRAY = "array"
	// OBJECT represent a object value.
	OBJECT = "object"
	// BOOLEAN represent a boolean value.
	BOOLEAN = "boolean"
	// INTEGER represent a integer value.
	INTEGER = "integer"
	// NUMBER represent a number value.
	NUMBER = "number"
	// STRING represent a string value.
	STRING = "string"
	// FILE represent a file upload value.
	FILE = "file"
)

// IsSimplePrimitiveType determines whether the type name is a simple primitive type.
func IsSimplePrimitiveType(typeName string) bool {
	switch typeName {
	case STRING, NUMBER, INTEGER, BOOLEAN:
		return true
	}
	return false
}

// IsPrimitiveType determines whether the type name can be used as-is for a
// Swagger property or non-body parameter.
func IsPrimitiveType(typeName string) bool {
	return IsSimplePrimitiveType(typeName) || typeName == FILE
}

// ItemsType returns the element type of an array arg, defaulting to string.
func ItemsType(arg domain.ArgSpec) string {
	if arg.ItemsType == "" {
		return STRING
	}
	return arg.ItemsType
}

// CoerceType maps a declared type onto a Swagger type. Arrays and primitives
// pass through. Anything else becomes a string, with the original type token
// kept as the format when it was itself a string.
func CoerceType(arg domain.ArgSpec) (typeName, format string, coerced bool) {
	if arg.Type == ARRAY || IsPrimitiveType(arg.Type) {
		return arg.Type, "", false
	}
	if arg.Type != "" {
		return STRING, arg.Type, true
	}
	return STRING, STRING, true
}
