package base

import (
	"encoding/json"
	"testing"

	"github.com/go-openapi/spec"
	"github.com/griffnb/rest-swag/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authMethods(methods ...domain.AuthMethod) domain.AuthMethods {
	set := make(domain.AuthMethods)
	for _, m := range methods {
		set[m] = struct{}{}
	}
	return set
}

func TestBuild(t *testing.T) {
	t.Parallel()

	t.Run("general info", func(t *testing.T) {
		service := NewService(domain.Site{URL: "https://example.com/", Title: "Example"}, nil)

		sk := service.Build("", "")
		swagger := sk.Swagger

		assert.Equal(t, "2.0", swagger.Swagger)
		assert.Equal(t, "Example", swagger.Info.Title)
		assert.Equal(t, "1.0", swagger.Info.Version)
		assert.Equal(t, "example.com", swagger.Host)
		assert.Equal(t, "/wp-json", swagger.BasePath)
		assert.Equal(t, []string{"multipart/form-data"}, swagger.Consumes)
		assert.Equal(t, []string{"application/json"}, swagger.Produces)
		assert.Contains(t, swagger.Definitions, "error")
		assert.Empty(t, swagger.Paths.Paths)
	})

	t.Run("title falls back to host", func(t *testing.T) {
		service := NewService(domain.Site{URL: "http://localhost:8080"}, nil)
		assert.Equal(t, "localhost:8080", service.Build("", "").Swagger.Info.Title)
	})

	t.Run("namespace suffixes base path and sets description", func(t *testing.T) {
		service := NewService(domain.Site{URL: "https://example.com/blog/"}, nil)

		sk := service.Build("wp/v2", "Core endpoints")
		assert.Equal(t, "/blog/wp-json/wp/v2", sk.Swagger.BasePath)
		assert.Equal(t, "Core endpoints", sk.Swagger.Info.Description)
	})
}

func TestSchemes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		site domain.Site
		want []string
	}{
		{"plain http", domain.Site{URL: "http://example.com"}, []string{"http"}},
		{"tls", domain.Site{URL: "https://example.com", TLS: true}, []string{"https"}},
		{"forced ssl admin", domain.Site{URL: "http://example.com", ForceSSLAdmin: true}, []string{"https"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sk := NewService(tt.site, nil).Build("", "")
			assert.Equal(t, tt.want, sk.Swagger.Schemes)
		})
	}
}

func TestSecurityDefinitions(t *testing.T) {
	t.Parallel()

	site := domain.Site{URL: "https://example.com"}

	t.Run("cookie auth always present", func(t *testing.T) {
		sk := NewService(site, nil).Build("", "")

		require.Len(t, sk.Swagger.SecurityDefinitions, 1)
		cookie := sk.Swagger.SecurityDefinitions[CookieAuth]
		assert.Equal(t, "apiKey", cookie.Type)
		assert.Equal(t, "X-WP-Nonce", cookie.Name)
		assert.Equal(t, "header", cookie.In)
		assert.Equal(t, []map[string][]string{{CookieAuth: {}}}, sk.Security)
	})

	t.Run("basic auth without oauth1", func(t *testing.T) {
		sk := NewService(site, authMethods(domain.AuthBasic)).Build("", "")

		assert.Len(t, sk.Swagger.SecurityDefinitions, 2)
		assert.Contains(t, sk.Swagger.SecurityDefinitions, CookieAuth)
		assert.Equal(t, "basic", sk.Swagger.SecurityDefinitions[BasicAuth].Type)
		assert.Equal(t, []map[string][]string{{CookieAuth: {}}, {BasicAuth: {}}}, sk.Security)
	})

	t.Run("oauth1 provider", func(t *testing.T) {
		sk := NewService(domain.Site{URL: "https://example.com", IndexPrefix: "index.php"}, authMethods(domain.AuthOAuth1)).Build("", "")

		oauth := sk.Swagger.SecurityDefinitions[OAuth]
		require.NotNil(t, oauth)
		assert.Equal(t, "oauth2", oauth.Type)
		assert.Equal(t, "accessCode", oauth.Flow)
		assert.Equal(t, "https://example.com/index.php/oauth1/authorize", oauth.AuthorizationURL)
		assert.Equal(t, "https://example.com/index.php/oauth1/request", oauth.TokenURL)
		assert.Equal(t, "https://example.com/index.php/oauth1/access", oauth.Extensions["x-accessUrl"])
		assert.Equal(t, true, oauth.Extensions["x-oauth1"])
		assert.Contains(t, oauth.Scopes, "basic")
		assert.Equal(t, map[string][]string{OAuth: {"basic"}}, sk.Security[1])
	})

	t.Run("oauth2 server overrides oauth1 definition", func(t *testing.T) {
		sk := NewService(site, authMethods(domain.AuthOAuth1, domain.AuthOAuth2, domain.AuthBasic)).Build("", "")

		oauth := sk.Swagger.SecurityDefinitions[OAuth]
		assert.Equal(t, "https://example.com/oauth/authorize", oauth.AuthorizationURL)
		assert.Equal(t, "https://example.com/oauth/token", oauth.TokenURL)
		assert.Equal(t, map[string]string{"openid": "openid"}, oauth.Scopes)

		assert.Equal(t, []map[string][]string{
			{CookieAuth: {}},
			{OAuth: {"basic"}},
			{OAuth: {"openid"}},
			{BasicAuth: {}},
		}, sk.Security)
	})

	t.Run("serializes extension keys verbatim", func(t *testing.T) {
		sk := NewService(site, authMethods(domain.AuthOAuth1)).Build("", "")

		b, err := json.Marshal(sk.Swagger.SecurityDefinitions[OAuth])
		require.NoError(t, err)

		var raw map[string]interface{}
		require.NoError(t, json.Unmarshal(b, &raw))
		assert.Contains(t, raw, "x-accessUrl")
		assert.Contains(t, raw, "x-oauth1")
	})
}

func TestBuildIsFresh(t *testing.T) {
	t.Parallel()

	service := NewService(domain.Site{URL: "https://example.com"}, nil)
	first := service.Build("", "")
	first.Swagger.Paths.Paths["/x"] = spec.PathItem{}

	second := service.Build("", "")
	assert.Empty(t, second.Swagger.Paths.Paths)
}
