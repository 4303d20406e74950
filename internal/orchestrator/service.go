// Package orchestrator coordinates the document scaffolder, route compiler and
// schema normalizer to generate a Swagger document from a route registry.
package orchestrator

import (
	"context"
	"fmt"

	"github.com/griffnb/rest-swag/internal/domain"
	"github.com/griffnb/rest-swag/internal/parser/base"
	"github.com/griffnb/rest-swag/internal/parser/route"
	"github.com/griffnb/rest-swag/internal/schema"
)

// Service generates documents from a route source. It holds no per-call
// state, so one Service may serve concurrent requests.
type Service struct {
	source      domain.RouteSource
	baseParser  *base.Service
	routeParser *route.Service
	config      *Config
}

// Config holds orchestrator configuration options.
type Config struct {
	// Site identity the document is generated for
	Site domain.Site

	// Auth methods enabled on the host
	Auth domain.AuthMethods

	// SelfRoute is the route serving the document, excluded from paths
	SelfRoute string

	// Strict turns definition title collisions into errors
	Strict bool

	Debug Debugger
}

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// New creates a new orchestrator service reading routes from source.
func New(source domain.RouteSource, config *Config) *Service {
	if config == nil {
		config = &Config{}
	}
	if config.SelfRoute == "" {
		config.SelfRoute = route.DefaultSelfRoute
	}

	baseParser := base.NewService(config.Site, config.Auth)
	routeParser := route.NewService(config.SelfRoute)
	routeParser.SetStrict(config.Strict)
	if config.Debug != nil {
		baseParser.SetDebugger(config.Debug)
		routeParser.SetDebugger(config.Debug)
	}

	return &Service{
		source:      source,
		baseParser:  baseParser,
		routeParser: routeParser,
		config:      config,
	}
}

// Generate builds the document for namespace, or for every route when
// namespace is empty. Failures reading the route source abort generation.
func (s *Service) Generate(ctx context.Context, namespace string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.debugf("Orchestrator: Step 1 - Reading routes (namespace=%q)", namespace)

	registry, err := s.source.Routes(ctx, namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to read routes: %w", err)
	}
	if registry == nil {
		registry = domain.NewRouteRegistry()
	}

	// the compiler never sees the live registry
	registry = registry.Clone()

	s.debugf("Orchestrator: Step 2 - Building skeleton")

	skeleton := s.baseParser.Build(namespace, registry.Description)
	swagger := skeleton.Swagger

	s.debugf("Orchestrator: Step 3 - Compiling %d routes", registry.Len())

	compiled, err := s.routeParser.Compile(swagger, registry, route.Options{
		Namespace: namespace,
		APIPath:   s.config.Site.APIPath(),
		BasePath:  swagger.BasePath,
		Security:  skeleton.Security,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to compile routes: %w", err)
	}

	// registries built in code can carry NaN or infinity, which JSON cannot encode
	sanitizeSwagger(swagger)

	s.debugf("Orchestrator: Step 4 - Resolving references")

	if err := schema.ResolveReferences(swagger); err != nil {
		return nil, err
	}

	s.debugf("Orchestrator: Generated %d paths, %d definitions", len(swagger.Paths.Paths), len(swagger.Definitions))

	return &Document{
		Swagger:       swagger,
		PathOrder:     compiled.Paths,
		PropertyOrder: compiled.Properties,
	}, nil
}

func (s *Service) debugf(format string, v ...interface{}) {
	if s.config.Debug != nil {
		s.config.Debug.Printf(format, v...)
	}
}
