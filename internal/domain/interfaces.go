package domain

import (
	"context"
	"errors"
)

// ErrNamespaceNotFound is returned when a namespace index is requested for a
// namespace that has no registered routes.
var ErrNamespaceNotFound = errors.New("namespace not found")

// RouteSource provides read access to the route registry.
type RouteSource interface {
	// Routes returns a snapshot of the registry. When namespace is set the
	// snapshot is the namespace index view.
	Routes(ctx context.Context, namespace string) (*RouteRegistry, error)
}

// RouteSourceFunc adapts a function to RouteSource.
type RouteSourceFunc func(ctx context.Context, namespace string) (*RouteRegistry, error)

// Routes calls f.
func (f RouteSourceFunc) Routes(ctx context.Context, namespace string) (*RouteRegistry, error) {
	return f(ctx, namespace)
}
