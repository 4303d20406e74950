package loader

import (
	"net/url"
	"strings"

	"github.com/griffnb/rest-swag/internal/domain"
	"github.com/griffnb/rest-swag/internal/registry"
)

// authentication keys advertised by the REST index, mapped to auth methods
var authenticationMethods = map[string]domain.AuthMethod{
	"oauth1":                domain.AuthOAuth1,
	"oauth2":                domain.AuthOAuth2,
	"application-passwords": domain.AuthBasic,
	"basic":                 domain.AuthBasic,
}

// Index is a decoded route index: the site root index, or a single
// namespace index when Namespace is set.
type Index struct {
	Name        string
	Description string
	URL         string
	Home        string

	// Namespace is set for a namespace index dump
	Namespace string

	Namespaces     []string
	Authentication []string

	// Routes in document order
	Routes []*domain.RouteEntry
}

// Site derives the site identity advertised by the index. Fields the index
// does not carry are left empty for configuration to fill.
func (idx *Index) Site() domain.Site {
	site := domain.Site{
		URL:   strings.TrimSuffix(idx.URL, "/"),
		Title: idx.Name,
	}
	if u, err := url.Parse(site.URL); err == nil && u.Scheme == "https" {
		site.TLS = true
	}
	return site
}

// AuthMethods maps the advertised authentication schemes onto auth methods.
// Unknown schemes are ignored.
func (idx *Index) AuthMethods() domain.AuthMethods {
	methods := make(domain.AuthMethods)
	for _, name := range idx.Authentication {
		if m, ok := authenticationMethods[strings.ToLower(name)]; ok {
			methods[m] = struct{}{}
		}
	}
	return methods
}

// Register adds every route of the index to reg, in document order.
func (idx *Index) Register(reg *registry.Service) {
	for _, entry := range idx.Routes {
		reg.Add(entry)
	}
	if idx.Namespace != "" && idx.Description != "" {
		reg.SetDescription(idx.Namespace, idx.Description)
	}
}
