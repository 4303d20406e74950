package route

import (
	"net/http"

	"github.com/griffnb/rest-swag/internal/domain"
	routedomain "github.com/griffnb/rest-swag/internal/parser/route/domain"
	"github.com/griffnb/rest-swag/internal/schema"
)

const (
	inPath     = "path"
	inQuery    = "query"
	inFormData = "formData"

	// contextArg is the reserved response-context argument, never documented.
	contextArg = "context"
)

// buildParameters assembles the parameter list for one method of a route.
// Path parameters come first: every captured name not declared as an arg,
// or all of them for POST. Declared args follow in declaration order.
func buildParameters(method string, pathParams []string, endpoint domain.MethodSpec) []routedomain.Parameter {
	isPost := method == http.MethodPost
	params := make([]routedomain.Parameter, 0, len(pathParams)+len(endpoint.Args))

	for _, name := range pathParams {
		if _, declared := endpoint.Arg(name); isPost || !declared {
			params = append(params, routedomain.Parameter{
				Name:     name,
				In:       inPath,
				Type:     schema.STRING,
				Required: true,
			})
		}
	}

	for _, arg := range endpoint.Args {
		if arg.Name == contextArg {
			continue
		}
		params = append(params, argToParameter(arg, isPost, contains(pathParams, arg.Name)))
	}

	return params
}

// argToParameter converts a declared arg. Arg fields are applied in a fixed
// order: bounds force the format to number, then a coerced type may replace
// the format with the original type token.
func argToParameter(arg domain.ArgSpec, isPost, isPathParam bool) routedomain.Parameter {
	param := routedomain.Parameter{
		Name:        arg.Name,
		Type:        schema.STRING,
		In:          inQuery,
		Required:    isPathParam || arg.Required,
		Description: arg.Description,
		Format:      arg.Format,
		Default:     arg.Default,
	}

	switch {
	case isPost:
		param.In = inFormData
	case isPathParam:
		param.In = inPath
	}

	if len(arg.Enum) > 0 {
		param.Enum = append([]interface{}(nil), arg.Enum...)
	}

	if arg.Minimum != nil {
		minimum := *arg.Minimum
		param.Minimum = &minimum
		param.Format = schema.NUMBER
	}

	if arg.Maximum != nil {
		maximum := *arg.Maximum
		param.Maximum = &maximum
		param.Format = schema.NUMBER
	}

	if arg.HasType {
		typeName, format, coerced := schema.CoerceType(arg)
		param.Type = typeName
		if coerced {
			param.Format = format
		}
		if typeName == schema.ARRAY {
			param.Items = &routedomain.Items{Type: schema.ItemsType(arg)}
		}
	}

	return param
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
