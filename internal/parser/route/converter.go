package route

import (
	"errors"
	"fmt"

	"github.com/go-openapi/spec"
	"github.com/griffnb/rest-swag/internal/parser/route/domain"
	"github.com/griffnb/rest-swag/internal/schema"
)

// RouteToSpecOperation converts a domain.Route to a spec.Operation
func RouteToSpecOperation(route *domain.Route) (*spec.Operation, error) {
	if route == nil {
		return nil, errors.New("nil route")
	}

	operation := &spec.Operation{
		OperationProps: spec.OperationProps{
			Summary: route.Summary,
		},
	}

	operation.Parameters = make([]spec.Parameter, 0, len(route.Parameters))
	for _, param := range route.Parameters {
		operation.Parameters = append(operation.Parameters, ParameterToSpec(param))
	}

	responses := &spec.Responses{
		ResponsesProps: spec.ResponsesProps{
			StatusCodeResponses: make(map[int]spec.Response),
		},
	}

	if route.Default != nil {
		def, err := ResponseToSpec(*route.Default)
		if err != nil {
			return nil, fmt.Errorf("default response: %w", err)
		}
		responses.Default = &def
	}

	for code, resp := range route.Responses {
		specResp, err := ResponseToSpec(resp)
		if err != nil {
			return nil, fmt.Errorf("response %d: %w", code, err)
		}
		responses.StatusCodeResponses[code] = specResp
	}

	operation.Responses = responses

	if len(route.Security) > 0 {
		operation.Security = route.Security
	}

	return operation, nil
}

// ParameterToSpec converts a domain.Parameter to spec.Parameter
func ParameterToSpec(param domain.Parameter) spec.Parameter {
	specParam := spec.Parameter{
		ParamProps: spec.ParamProps{
			Name:        param.Name,
			In:          param.In,
			Required:    param.Required,
			Description: param.Description,
		},
		SimpleSchema: spec.SimpleSchema{
			Type:   param.Type,
			Format: param.Format,
		},
	}

	if param.Items != nil {
		specParam.Items = &spec.Items{
			SimpleSchema: spec.SimpleSchema{
				Type: param.Items.Type,
			},
		}
	}

	if param.Default != nil {
		specParam.Default = param.Default
	}

	if len(param.Enum) > 0 {
		specParam.Enum = param.Enum
	}

	if param.Minimum != nil {
		specParam.Minimum = param.Minimum
	}

	if param.Maximum != nil {
		specParam.Maximum = param.Maximum
	}

	return specParam
}

// ResponseToSpec converts a domain.Response to spec.Response
func ResponseToSpec(resp domain.Response) (spec.Response, error) {
	specResp := spec.Response{
		ResponseProps: spec.ResponseProps{
			Description: resp.Description,
		},
	}

	if resp.Ref == "" {
		return specResp, nil
	}

	ref, err := schema.RefSchema(resp.Ref)
	if err != nil {
		return specResp, err
	}
	if resp.Array {
		ref = spec.ArrayProperty(ref)
	}
	specResp.Schema = ref

	return specResp, nil
}
