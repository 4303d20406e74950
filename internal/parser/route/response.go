package route

import (
	"net/http"

	routedomain "github.com/griffnb/rest-swag/internal/parser/route/domain"
	"github.com/griffnb/rest-swag/internal/schema"
)

const (
	successDescription = "successful operation"
	errorDescription   = "error"
)

// buildResponses infers the response shape for a method. GET on a collection
// returns an array of the resource; writes to a collection answer 201; DELETE
// answers 200 without a body; everything else returns the resource with 200.
// The error envelope is always the default response.
func buildResponses(method, template, definition string) (map[int]routedomain.Response, *routedomain.Response) {
	collection := isCollection(template)

	success := routedomain.Response{
		Description: successDescription,
		Ref:         definition,
		Array:       method == http.MethodGet && collection,
	}

	responses := make(map[int]routedomain.Response, 1)
	switch {
	case isWriteMethod(method) && collection:
		responses[http.StatusCreated] = success
	case method == http.MethodDelete:
		responses[http.StatusOK] = routedomain.Response{Description: successDescription}
	default:
		responses[http.StatusOK] = success
	}

	return responses, &routedomain.Response{
		Description: errorDescription,
		Ref:         schema.ErrorDefinition,
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}
