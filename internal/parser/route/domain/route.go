// Package domain holds one compiled route operation, between the route
// registry entry it came from and the Swagger operation it becomes.
package domain

// Route is a single method of a registry route, ready for conversion.
type Route struct {
	Method string

	// Path is the template relative to the document basePath, e.g. /posts/{id}
	Path string

	// Summary reads "<METHOD> <group>"
	Summary     string
	GroupName   string
	Description string

	Parameters []Parameter

	// Responses by status code; Default is the shared error response
	Responses map[int]Response
	Default   *Response

	Security []map[string][]string
}

// Parameter is a path, query or formData parameter.
type Parameter struct {
	Name        string
	In          string
	Description string
	Required    bool

	Type   string
	Format string
	Items  *Items

	Default interface{}
	Enum    []interface{}

	// bounds force Format to "number"
	Minimum *float64
	Maximum *float64
}

// Items is the element type of an array parameter.
type Items struct {
	Type string
}

// Response references a definition by name. An empty Ref means no body.
type Response struct {
	Description string
	Ref         string

	// Array wraps the reference in an array schema
	Array bool
}
