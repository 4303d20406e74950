package route

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-openapi/spec"
	"github.com/griffnb/rest-swag/internal/parser/route/domain"
)

const (
	extGroupName   = "x-group-name"
	extDescription = "x-description"
)

// RegisterRoutes registers compiled routes to swagger.Paths and returns the
// paths it created, in the order they were first seen.
func (s *Service) RegisterRoutes(swagger *spec.Swagger, routes []*domain.Route) ([]string, error) {
	if swagger.Paths == nil {
		swagger.Paths = &spec.Paths{
			Paths: make(map[string]spec.PathItem),
		}
	}
	if swagger.Paths.Paths == nil {
		swagger.Paths.Paths = make(map[string]spec.PathItem)
	}

	var created []string
	for _, route := range routes {
		isNew, err := s.registerRoute(swagger, route)
		if err != nil {
			return created, err
		}
		if isNew {
			created = append(created, route.Path)
		}
	}

	return created, nil
}

// registerRoute registers a single route to swagger.Paths. The first route
// to create a path item labels it with its group; a later operation for the
// same method replaces the earlier one.
func (s *Service) registerRoute(swagger *spec.Swagger, route *domain.Route) (bool, error) {
	pathItem, exists := swagger.Paths.Paths[route.Path]
	if !exists {
		pathItem = spec.PathItem{}
		pathItem.Extensions = spec.Extensions{
			extGroupName:   route.GroupName,
			extDescription: route.Description,
		}
	}

	op := refRouteMethodOp(&pathItem, route.Method)
	if op == nil {
		return false, fmt.Errorf("invalid HTTP method: %s", route.Method)
	}

	if *op != nil {
		s.debugf("route: %s %s is declared multiple times, keeping the latest", route.Method, route.Path)
	}

	specOp, err := RouteToSpecOperation(route)
	if err != nil {
		return false, fmt.Errorf("failed to convert route to operation: %s %s: %w", route.Method, route.Path, err)
	}

	*op = specOp

	swagger.Paths.Paths[route.Path] = pathItem

	return !exists, nil
}

// refRouteMethodOp returns a pointer to the operation field for the given HTTP method
func refRouteMethodOp(item *spec.PathItem, method string) **spec.Operation {
	switch strings.ToUpper(method) {
	case http.MethodGet:
		return &item.Get
	case http.MethodPost:
		return &item.Post
	case http.MethodDelete:
		return &item.Delete
	case http.MethodPut:
		return &item.Put
	case http.MethodPatch:
		return &item.Patch
	case http.MethodHead:
		return &item.Head
	case http.MethodOptions:
		return &item.Options
	default:
		return nil
	}
}
