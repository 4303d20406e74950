// Package route compiles the route registry into Swagger paths and
// definitions: path templating, per-method parameter classification,
// response shape inference and schema definition registration.
package route

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-openapi/spec"
	"github.com/griffnb/rest-swag/internal/domain"
	routedomain "github.com/griffnb/rest-swag/internal/parser/route/domain"
	"github.com/griffnb/rest-swag/internal/schema"
)

// DefaultSelfRoute is the route serving the generated document.
const DefaultSelfRoute = "/apigenerate/swagger"

// ErrDefinitionCollision is returned in strict mode when two routes register
// a schema under the same title.
var ErrDefinitionCollision = errors.New("definition registered more than once")

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

// Service compiles registry routes into Swagger paths
type Service struct {
	selfRoute string
	strict    bool
	debug     Debugger
}

// NewService creates a new route compiler service
func NewService(selfRoute string) *Service {
	if selfRoute == "" {
		selfRoute = DefaultSelfRoute
	}
	return &Service{
		selfRoute: selfRoute,
	}
}

// SetStrict makes definition title collisions fail the compilation instead
// of letting the last registered schema win.
func (s *Service) SetStrict(strict bool) {
	s.strict = strict
}

// SetDebugger sets the debugger for logging
func (s *Service) SetDebugger(debug Debugger) {
	s.debug = debug
}

// Options describe where the compiled routes are mounted.
type Options struct {
	// Namespace filter, empty for all routes
	Namespace string

	// APIPath is the REST mount path, e.g. /wp-json
	APIPath string

	// BasePath is the document basePath templates are made relative to
	BasePath string

	// Security requirements attached to every operation
	Security []map[string][]string
}

// Result records the declaration order of what Compile added, which the
// swagger maps do not keep.
type Result struct {
	// Paths lists path templates in the order they were first created
	Paths []string

	// Properties lists each definition's property names in schema order
	Properties map[string][]string
}

// Compile adds the registry's routes to swagger.Paths and their schemas to
// swagger.Definitions. Routes are visited in registry order.
func (s *Service) Compile(swagger *spec.Swagger, registry *domain.RouteRegistry, opts Options) (Result, error) {
	if swagger.Paths == nil {
		swagger.Paths = &spec.Paths{Paths: make(map[string]spec.PathItem)}
	}
	if swagger.Definitions == nil {
		swagger.Definitions = make(spec.Definitions)
	}

	result := Result{Properties: make(map[string][]string)}
	owners := make(map[string]string)
	for _, entry := range registry.Routes() {
		if s.skip(entry, opts.Namespace) {
			continue
		}

		title := entry.Schema.Title
		if owner, ok := owners[title]; ok {
			if s.strict {
				return result, fmt.Errorf("%w: %q by %s and %s", ErrDefinitionCollision, title, owner, entry.Pattern)
			}
			s.debugf("route: definition %q from %s replaced by %s", title, owner, entry.Pattern)
		}
		owners[title] = entry.Pattern
		swagger.Definitions[title] = schema.Normalize(entry.Schema)
		result.Properties[title] = schema.PropertyNames(entry.Schema)

		created, err := s.RegisterRoutes(swagger, s.compileRoute(entry, title, opts))
		result.Paths = append(result.Paths, created...)
		if err != nil {
			return result, fmt.Errorf("failed to register %s: %w", entry.Pattern, err)
		}
	}

	return result, nil
}

// skip reports whether a route is left out of the document: the document's
// own route, routes outside the namespace filter, and routes without a
// titled schema that can be referenced.
func (s *Service) skip(entry *domain.RouteEntry, namespace string) bool {
	if entry.Pattern == s.selfRoute {
		return true
	}

	if namespace = strings.Trim(namespace, "/"); namespace != "" && !strings.HasPrefix(entry.Pattern, "/"+namespace) {
		return true
	}

	if entry.Schema == nil {
		s.debugf("route: %s has no schema, skipping", entry.Pattern)
		return true
	}

	if entry.Schema.Title == "" {
		s.debugf("route: %s schema has no title, skipping", entry.Pattern)
		return true
	}

	if _, err := schema.DefinitionRef(entry.Schema.Title); err != nil {
		s.debugf("route: %s schema title cannot be referenced, skipping: %v", entry.Pattern, err)
		return true
	}

	return false
}

// compileRoute produces one route operation per concrete HTTP method.
func (s *Service) compileRoute(entry *domain.RouteEntry, definition string, opts Options) []*routedomain.Route {
	template, pathParams := TemplatePath(entry.Pattern)
	template = RelativePath(opts.APIPath, opts.BasePath, template)

	groupName := entry.GroupName
	if groupName == "" {
		groupName = GroupName(template)
	}

	var routes []*routedomain.Route
	for _, endpoint := range entry.Endpoints {
		for _, method := range endpoint.Methods {
			method = strings.ToUpper(method)

			// PUT and PATCH registered alongside POST duplicate it
			if (method == http.MethodPut || method == http.MethodPatch) && endpoint.HasMethod(http.MethodPost) {
				continue
			}

			if !isSupportedMethod(method) {
				s.debugf("route: %s has unsupported method %s, skipping", entry.Pattern, method)
				continue
			}

			responses, def := buildResponses(method, template, definition)
			routes = append(routes, &routedomain.Route{
				Method:      method,
				Path:        template,
				Summary:     method + " " + groupName,
				GroupName:   groupName,
				Description: entry.Description,
				Parameters:  buildParameters(method, pathParams, endpoint),
				Responses:   responses,
				Default:     def,
				Security:    opts.Security,
			})
		}
	}

	return routes
}

func isSupportedMethod(method string) bool {
	var item spec.PathItem
	return refRouteMethodOp(&item, method) != nil
}

func (s *Service) debugf(format string, v ...interface{}) {
	if s.debug != nil {
		s.debug.Printf(format, v...)
	}
}
