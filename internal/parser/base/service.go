// Package base builds the static skeleton of the Swagger document: general
// info, host and base path, schemes, the shared error definition and the
// security definitions for the enabled auth methods.
package base

import (
	"strings"

	"github.com/go-openapi/spec"
	"github.com/griffnb/rest-swag/internal/domain"
	"github.com/griffnb/rest-swag/internal/schema"
)

const (
	// SwaggerVersion is the only document version produced.
	SwaggerVersion = "2.0"

	// InfoVersion is the version reported for the described API.
	InfoVersion = "1.0"

	mimeMultipartForm = "multipart/form-data"
	mimeJSON          = "application/json"
)

// Debugger interface for logging
type Debugger interface {
	Printf(format string, v ...interface{})
}

// Service builds document skeletons for one site.
type Service struct {
	site  domain.Site
	auth  domain.AuthMethods
	debug Debugger
}

// NewService creates a new base service
func NewService(site domain.Site, auth domain.AuthMethods) *Service {
	if auth == nil {
		auth = make(domain.AuthMethods)
	}
	return &Service{
		site: site,
		auth: auth,
	}
}

// SetDebugger sets the debugger for logging
func (s *Service) SetDebugger(debug Debugger) {
	s.debug = debug
}

// Skeleton is the scaffolded document together with the security
// requirements every operation must carry.
type Skeleton struct {
	Swagger  *spec.Swagger
	Security []map[string][]string
}

// Build produces the document skeleton. namespace, when set, is the
// namespace filter and description its index description.
func (s *Service) Build(namespace, description string) *Skeleton {
	host := s.site.Host()

	title := s.site.Title
	if title == "" {
		title = host
	}

	swagger := &spec.Swagger{
		SwaggerProps: spec.SwaggerProps{
			Swagger: SwaggerVersion,
			Info: &spec.Info{
				InfoProps: spec.InfoProps{
					Version:     InfoVersion,
					Title:       title,
					Description: description,
				},
			},
			Host:     host,
			BasePath: s.BasePath(namespace),
			Schemes:  []string{s.scheme()},
			Consumes: []string{mimeMultipartForm},
			Produces: []string{mimeJSON},
			Paths:    &spec.Paths{Paths: make(map[string]spec.PathItem)},
			Definitions: spec.Definitions{
				schema.ErrorDefinition: schema.ErrorSchema(),
			},
			SecurityDefinitions: make(spec.SecurityDefinitions),
		},
	}

	security := s.addSecurityDefinitions(swagger.SecurityDefinitions)

	if s.debug != nil {
		s.debug.Printf("base: host=%s basePath=%s schemes=%v auth=%v", swagger.Host, swagger.BasePath, swagger.Schemes, s.auth.Names())
	}

	return &Skeleton{
		Swagger:  swagger,
		Security: security,
	}
}

// BasePath is the API mount path, suffixed with the namespace when filtering.
func (s *Service) BasePath(namespace string) string {
	basePath := s.site.APIPath()
	if namespace = strings.Trim(namespace, "/"); namespace != "" {
		basePath += "/" + namespace
	}
	return basePath
}

func (s *Service) scheme() string {
	if s.site.TLS || s.site.ForceSSLAdmin {
		return "https"
	}
	return "http"
}
