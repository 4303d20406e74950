package domain

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// DefaultAPIPath is the REST mount path used when no API root is configured.
const DefaultAPIPath = "/wp-json/"

// Site identifies the host serving the API.
type Site struct {
	// URL is the site root, e.g. https://example.com/blog
	URL string

	// APIRoot is the REST root URL. Defaults to URL + DefaultAPIPath.
	APIRoot string

	// Title is the display title; the host is used when empty.
	Title string

	// IndexPrefix is set when the site routes through a front controller
	// such as index.php, and is inserted in front of auth endpoint paths.
	IndexPrefix string

	// TLS reports whether the site is served over TLS.
	TLS bool

	// ForceSSLAdmin reports whether TLS is forced for admin contexts.
	ForceSSLAdmin bool
}

// Host returns the authority of the site URL.
func (s Site) Host() string {
	u, err := url.Parse(s.URL)
	if err != nil || u.Host == "" {
		host := strings.TrimPrefix(strings.TrimPrefix(s.URL, "https://"), "http://")
		host, _, _ = strings.Cut(strings.TrimSuffix(host, "/"), "/")
		return host
	}
	return u.Host
}

// APIRootURL returns the REST root URL, falling back to the default mount.
func (s Site) APIRootURL() string {
	if s.APIRoot != "" {
		return s.APIRoot
	}
	return strings.TrimSuffix(s.URL, "/") + DefaultAPIPath
}

// APIPath returns the path portion of the REST root without a trailing slash.
func (s Site) APIPath() string {
	root := s.APIRootURL()
	u, err := url.Parse(root)
	if err != nil {
		return strings.TrimSuffix(root, "/")
	}
	return strings.TrimSuffix(u.Path, "/")
}

// RootURL joins path onto the site root, honouring the index prefix.
func (s Site) RootURL(path string) string {
	root := strings.TrimSuffix(s.URL, "/")
	if s.IndexPrefix != "" {
		root += "/" + strings.Trim(s.IndexPrefix, "/")
	}
	return root + "/" + strings.TrimPrefix(path, "/")
}

// Validate checks the site URL, and the REST root when set, are absolute.
func (s Site) Validate() error {
	if err := absoluteURL("site url", s.URL); err != nil {
		return err
	}
	return s.ValidateAPIRoot()
}

// ValidateAPIRoot checks an explicit REST root is absolute.
func (s Site) ValidateAPIRoot() error {
	if s.APIRoot == "" {
		return nil
	}
	return absoluteURL("api root", s.APIRoot)
}

func absoluteURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s %q must be absolute", name, raw)
	}
	return nil
}

// AuthMethod is an authentication mechanism enabled on the host.
type AuthMethod string

const (
	// AuthOAuth1 is an OAuth 1.0a provider.
	AuthOAuth1 AuthMethod = "oauth1"
	// AuthOAuth2 is a generic OAuth2 server.
	AuthOAuth2 AuthMethod = "oauth2"
	// AuthBasic is HTTP basic auth (e.g. application passwords).
	AuthBasic AuthMethod = "basic"
)

// AuthMethods is the set of enabled authentication mechanisms.
type AuthMethods map[AuthMethod]struct{}

// ParseAuthMethods builds a set from names, rejecting unknown methods.
func ParseAuthMethods(names []string) (AuthMethods, error) {
	methods := make(AuthMethods)
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		switch m := AuthMethod(name); m {
		case AuthOAuth1, AuthOAuth2, AuthBasic:
			methods[m] = struct{}{}
		default:
			return nil, fmt.Errorf("unknown auth method %q", name)
		}
	}
	return methods, nil
}

// Has reports whether m is enabled.
func (a AuthMethods) Has(m AuthMethod) bool {
	_, ok := a[m]
	return ok
}

// Names returns the enabled methods sorted by name.
func (a AuthMethods) Names() []string {
	names := make([]string, 0, len(a))
	for m := range a {
		names = append(names, string(m))
	}
	sort.Strings(names)
	return names
}
