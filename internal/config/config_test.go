package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/griffnb/rest-swag/internal/parser/route"
)

func TestSetDefaults(t *testing.T) {
	c := &Config{}
	c.SetDefaults()

	assert.Equal(t, "127.0.0.1:8080", c.Server.Listen)
	assert.Equal(t, route.DefaultSelfRoute, c.Server.SelfRoute)
	assert.Equal(t, 10*time.Second, c.Server.ShutdownTimeout)
	assert.Equal(t, "./docs", c.Output.Dir)
	assert.Equal(t, []string{"json", "yaml"}, c.Output.Types)
	assert.Equal(t, "swagger", c.Output.InstanceName)
}

func TestLoadFromYAML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `source: ./index.json
site:
  url: https://example.com/blog
  title: Blog
  index_prefix: index.php
auth: [oauth1, basic]
server:
  listen: ":9000"
  shutdown_timeout: 3s
output:
  types: [json, go]
  state: prod
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0o644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	assert.Equal(t, "./index.json", cfg.Source)
	assert.Equal(t, "https://example.com/blog", cfg.Site.URL)
	assert.Equal(t, "index.php", cfg.Site.IndexPrefix)
	assert.Equal(t, ":9000", cfg.Server.Listen)
	assert.Equal(t, 3*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, []string{"json", "go"}, cfg.Output.Types)
	assert.Equal(t, "prod", cfg.Output.State)
	assert.Equal(t, "./docs", cfg.Output.Dir)
	require.NoError(t, cfg.Validate())

	site := cfg.SiteIdentity()
	assert.True(t, site.TLS)
	assert.Equal(t, "Blog", site.Title)

	auth, err := cfg.AuthMethods()
	require.NoError(t, err)
	assert.Equal(t, []string{"basic", "oauth1"}, auth.Names())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("site: [\n"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RESTSWAG_SITE_URL", "http://localhost:8000")
	t.Setenv("RESTSWAG_SITE_TITLE", "Local")
	t.Setenv("RESTSWAG_API_ROOT", "http://localhost:8000/api/")
	t.Setenv("RESTSWAG_FORCE_SSL", "true")
	t.Setenv("RESTSWAG_AUTH", "oauth2, basic")
	t.Setenv("RESTSWAG_LISTEN", ":7000")
	t.Setenv("RESTSWAG_SOURCE", "http://localhost:8000/api/")
	t.Setenv("RESTSWAG_CORS_ORIGINS", "https://a.example.com,https://b.example.com")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8000", cfg.Site.URL)
	assert.Equal(t, "Local", cfg.Site.Title)
	assert.Equal(t, "http://localhost:8000/api/", cfg.Site.APIRoot)
	assert.True(t, cfg.Site.ForceSSLAdmin)
	assert.Equal(t, []string{"oauth2", "basic"}, cfg.Auth)
	assert.Equal(t, ":7000", cfg.Server.Listen)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.CORSOrigins)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "/api", cfg.SiteIdentity().APIPath())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{Source: "index.json"}
		c.SetDefaults()
		return c
	}

	require.NoError(t, valid().Validate())

	tests := map[string]func(c *Config){
		"missing source":  func(c *Config) { c.Source = " " },
		"relative site":   func(c *Config) { c.Site.URL = "example.com" },
		"relative root":   func(c *Config) { c.Site.APIRoot = "/wp-json" },
		"schemeless root": func(c *Config) { c.Site.URL, c.Site.APIRoot = "https://example.com", "example.com/wp-json" },
		"unknown auth":    func(c *Config) { c.Auth = []string{"kerberos"} },
		"bad self route":  func(c *Config) { c.Server.SelfRoute = "swagger" },
		"bad output type": func(c *Config) { c.Output.Types = []string{"xml"} },
	}

	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}

	t.Run("absolute root without site url", func(t *testing.T) {
		c := valid()
		c.Site.APIRoot = "https://example.com/wp-json/"
		assert.NoError(t, c.Validate())
	})

	t.Run("api root error names the key", func(t *testing.T) {
		c := valid()
		c.Site.APIRoot = "/wp-json"
		err := c.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "site.api_root")
	})
}
