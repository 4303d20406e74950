// Package config loads the generator configuration from a YAML file with
// environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/griffnb/rest-swag/internal/domain"
	"github.com/griffnb/rest-swag/internal/parser/route"
)

type SiteConfig struct {
	URL           string `yaml:"url"`
	APIRoot       string `yaml:"api_root"`
	Title         string `yaml:"title"`
	IndexPrefix   string `yaml:"index_prefix"`
	TLS           bool   `yaml:"tls"`
	ForceSSLAdmin bool   `yaml:"force_ssl_admin"`
}

type ServerConfig struct {
	Listen          string        `yaml:"listen"`
	SelfRoute       string        `yaml:"self_route"`
	SchemaFile      string        `yaml:"schema_file"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

type OutputConfig struct {
	Dir          string   `yaml:"dir"`
	Types        []string `yaml:"types"`
	InstanceName string   `yaml:"instance_name"`
	State        string   `yaml:"state"`
	PackageName  string   `yaml:"package_name"`
	Namespace    string   `yaml:"namespace"`
}

type Config struct {
	// Source is the route index: a file path or an API root URL
	Source string       `yaml:"source"`
	Site   SiteConfig   `yaml:"site"`
	Auth   []string     `yaml:"auth"`
	Strict bool         `yaml:"strict"`
	Server ServerConfig `yaml:"server"`
	Output OutputConfig `yaml:"output"`
}

var outputTypes = map[string]struct{}{
	"json": {},
	"yaml": {},
	"yml":  {},
	"go":   {},
}

// Load loads YAML config, then applies env overrides. An empty path loads
// defaults only.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.SetDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = "127.0.0.1:8080"
	}
	if c.Server.SelfRoute == "" {
		c.Server.SelfRoute = route.DefaultSelfRoute
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./docs"
	}
	if len(c.Output.Types) == 0 {
		c.Output.Types = []string{"json", "yaml"}
	}
	if c.Output.InstanceName == "" {
		c.Output.InstanceName = "swagger"
	}
}

// Validate checks the values that cannot be defaulted. The site URL may be
// left empty when the route index advertises it.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return errors.New("source cannot be empty")
	}

	site := c.SiteIdentity()
	if err := site.ValidateAPIRoot(); err != nil {
		return fmt.Errorf("site.api_root: %w", err)
	}
	if c.Site.URL != "" {
		if err := site.Validate(); err != nil {
			return fmt.Errorf("site.url: %w", err)
		}
	}

	if _, err := c.AuthMethods(); err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	if !strings.HasPrefix(c.Server.SelfRoute, "/") {
		return fmt.Errorf("server.self_route %q must start with /", c.Server.SelfRoute)
	}

	for _, t := range c.Output.Types {
		if _, ok := outputTypes[strings.ToLower(strings.TrimSpace(t))]; !ok {
			return fmt.Errorf("output.types: unsupported type %q", t)
		}
	}

	return nil
}

// SiteIdentity returns the configured site.
func (c *Config) SiteIdentity() domain.Site {
	return domain.Site{
		URL:           c.Site.URL,
		APIRoot:       c.Site.APIRoot,
		Title:         c.Site.Title,
		IndexPrefix:   c.Site.IndexPrefix,
		TLS:           c.Site.TLS || strings.HasPrefix(c.Site.URL, "https://"),
		ForceSSLAdmin: c.Site.ForceSSLAdmin,
	}
}

// AuthMethods parses the configured auth method names.
func (c *Config) AuthMethods() (domain.AuthMethods, error) {
	return domain.ParseAuthMethods(c.Auth)
}

func applyEnvOverrides(c *Config) {
	setString(&c.Source, "RESTSWAG_SOURCE")
	setString(&c.Site.URL, "RESTSWAG_SITE_URL")
	setString(&c.Site.Title, "RESTSWAG_SITE_TITLE")
	setString(&c.Site.APIRoot, "RESTSWAG_API_ROOT")
	setBool(&c.Site.ForceSSLAdmin, "RESTSWAG_FORCE_SSL")
	setList(&c.Auth, "RESTSWAG_AUTH")
	setString(&c.Server.Listen, "RESTSWAG_LISTEN")
	setList(&c.Server.CORSOrigins, "RESTSWAG_CORS_ORIGINS")
	setString(&c.Output.Dir, "RESTSWAG_OUTPUT_DIR")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setList(dst *[]string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		var out []string
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		*dst = out
	}
}
