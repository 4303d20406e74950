package base

import (
	"github.com/go-openapi/spec"
	"github.com/griffnb/rest-swag/internal/domain"
)

const (
	// CookieAuth is the nonce header scheme present on every document.
	CookieAuth = "cookieAuth"
	// OAuth is the scheme name shared by the OAuth1 and OAuth2 providers.
	OAuth = "oauth"
	// BasicAuth is the HTTP basic scheme name.
	BasicAuth = "basicAuth"

	nonceHeader       = "X-WP-Nonce"
	cookieDescription = "Please see http://v2.wp-api.org/guide/authentication/"
	oauth1Description = "OAuth authentication uses the OAuth 1.0a specification (published as RFC5849)"
)

// addSecurityDefinitions fills defs for the enabled auth methods and returns
// the security requirement list, in the order the schemes were added.
func (s *Service) addSecurityDefinitions(defs spec.SecurityDefinitions) []map[string][]string {
	cookie := spec.APIKeyAuth(nonceHeader, "header")
	cookie.Description = cookieDescription
	defs[CookieAuth] = cookie

	security := []map[string][]string{
		{CookieAuth: {}},
	}

	if s.auth.Has(domain.AuthOAuth1) {
		scheme := spec.OAuth2AccessToken(s.site.RootURL("oauth1/authorize"), s.site.RootURL("oauth1/request"))
		// Extensions.Add lower-cases keys, so these are set directly.
		scheme.Extensions = spec.Extensions{
			"x-oauth1":    true,
			"x-accessUrl": s.site.RootURL("oauth1/access"),
		}
		scheme.AddScope("basic", oauth1Description)
		defs[OAuth] = scheme
		security = append(security, map[string][]string{OAuth: {"basic"}})
	}

	// A generic OAuth2 server takes over the shared oauth definition.
	if s.auth.Has(domain.AuthOAuth2) {
		scheme := spec.OAuth2AccessToken(s.site.RootURL("oauth/authorize"), s.site.RootURL("oauth/token"))
		scheme.AddScope("openid", "openid")
		defs[OAuth] = scheme
		security = append(security, map[string][]string{OAuth: {"openid"}})
	}

	if s.auth.Has(domain.AuthBasic) {
		defs[BasicAuth] = spec.BasicAuth()
		security = append(security, map[string][]string{BasicAuth: {}})
	}

	return security
}
