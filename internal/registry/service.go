// Package registry holds the live route table: routes registered by
// namespace, served as ordered snapshots to the document generator.
package registry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/griffnb/rest-swag/internal/domain"
)

// ErrMissingNamespace is returned when a route is registered without a namespace.
var ErrMissingNamespace = errors.New("routes must be namespaced")

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

// Service is a concurrency-safe, ordered route registry. It implements
// domain.RouteSource.
type Service struct {
	mu           sync.RWMutex
	routes       *domain.RouteRegistry
	namespaces   []string
	descriptions map[string]string
	debug        Debugger
}

// NewService creates an empty registry.
func NewService() *Service {
	return &Service{
		routes:       domain.NewRouteRegistry(),
		descriptions: make(map[string]string),
	}
}

// SetDebugger sets the debugger for logging
func (s *Service) SetDebugger(debug Debugger) {
	s.debug = debug
}

// Register adds a route under namespace. The stored pattern is
// /{namespace}/{route}; registering the same pattern again replaces the
// earlier entry but keeps its position.
func (s *Service) Register(namespace, route string, entry domain.RouteEntry) error {
	namespace = strings.Trim(namespace, "/")
	if namespace == "" {
		return fmt.Errorf("%w: %s", ErrMissingNamespace, route)
	}

	pattern := "/" + namespace
	if route = strings.Trim(route, "/"); route != "" {
		pattern += "/" + route
	}

	entry.Pattern = pattern
	entry.Namespace = namespace
	s.Add(&entry)

	return nil
}

// Add stores an entry under its own pattern. Method names are upper-cased and
// the entry is copied, so later changes by the caller are not observed.
func (s *Service) Add(entry *domain.RouteEntry) {
	if entry == nil || entry.Pattern == "" {
		return
	}

	stored := entry.Clone()
	for i := range stored.Endpoints {
		for j, method := range stored.Endpoints[i].Methods {
			stored.Endpoints[i].Methods[j] = strings.ToUpper(method)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.routes.Get(stored.Pattern); exists && s.debug != nil {
		s.debug.Printf("registry: route %s registered again, replacing", stored.Pattern)
	}

	if stored.Namespace != "" && !s.hasNamespace(stored.Namespace) {
		s.namespaces = append(s.namespaces, stored.Namespace)
	}

	s.routes.Add(stored)
}

// SetDescription sets the description shown for a namespace index.
func (s *Service) SetDescription(namespace, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.descriptions[strings.Trim(namespace, "/")] = description
}

// Namespaces returns the known namespaces in registration order.
func (s *Service) Namespaces() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string(nil), s.namespaces...)
}

// Len returns the number of registered routes.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.routes.Len()
}

// Routes returns a snapshot of the registry. With a namespace the snapshot is
// the namespace index: only routes registered under it, with its description.
func (s *Service) Routes(ctx context.Context, namespace string) (*domain.RouteRegistry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	namespace = strings.Trim(namespace, "/")
	if namespace == "" {
		return s.routes.Clone(), nil
	}

	if !s.hasNamespace(namespace) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNamespaceNotFound, namespace)
	}

	out := domain.NewRouteRegistry()
	out.Namespace = namespace
	out.Description = s.descriptions[namespace]
	for _, entry := range s.routes.Routes() {
		if entry.Namespace == namespace {
			out.Add(entry.Clone())
		}
	}

	return out, nil
}

func (s *Service) hasNamespace(namespace string) bool {
	for _, ns := range s.namespaces {
		if ns == namespace {
			return true
		}
	}
	return false
}
