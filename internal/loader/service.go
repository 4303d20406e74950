// Package loader reads a REST route index, as served by the API root with
// context=help, from a file or a live URL and feeds it to the registry.
package loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// DefaultTimeout bounds a live index fetch.
const DefaultTimeout = 30 * time.Second

// maxIndexSize bounds the index document read from a URL.
const maxIndexSize = 64 << 20

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// noOpDebugger is a debugger that does nothing.
type noOpDebugger struct{}

func (n *noOpDebugger) Printf(format string, v ...interface{}) {}

// Option configures the loader service.
type Option func(*Service)

// WithDebugger sets the debugger.
func WithDebugger(debug Debugger) Option {
	return func(s *Service) {
		if debug != nil {
			s.debug = debug
		}
	}
}

// WithHTTPClient sets the client used for live index fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// Service loads route indexes.
type Service struct {
	debug  Debugger
	client *http.Client
}

// NewService creates a new loader service with the given options.
func NewService(opts ...Option) *Service {
	s := &Service{
		debug:  &noOpDebugger{},
		client: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Load reads an index from source, fetching it when source is an http(s)
// URL and reading it from disk otherwise.
func (s *Service) Load(ctx context.Context, source string) (*Index, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return s.LoadURL(ctx, source)
	}
	return s.LoadFile(source)
}

// LoadFile reads a JSON or YAML index from disk.
func (s *Service) LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open route index: %w", err)
	}
	defer f.Close()

	s.debug.Printf("loader: reading route index %s", path)

	idx, err := s.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return idx, nil
}

// LoadURL fetches a live index. context=help is added to the query when the
// URL does not set a context, so routes carry their argument details.
func (s *Service) LoadURL(ctx context.Context, rawURL string) (*Index, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid route index url: %w", err)
	}

	q := u.Query()
	if q.Get("context") == "" {
		q.Set("context", "help")
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	s.debug.Printf("loader: fetching route index %s", u.String())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch route index: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch route index: %s", resp.Status)
	}

	idx, err := s.Decode(io.LimitReader(resp.Body, maxIndexSize))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", u.String(), err)
	}
	return idx, nil
}

// Decode reads a JSON or YAML index. Key order of routes, args and schema
// properties is preserved.
func (s *Service) Decode(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}

	d := &decoder{debug: s.debug}
	idx, err := d.decodeIndex(&root)
	if err != nil {
		return nil, err
	}

	s.debug.Printf("loader: decoded %d routes", len(idx.Routes))

	return idx, nil
}

// LoadSchemaFile reads a static schema document, such as the meta schema
// published for the document route. YAML files are converted to JSON.
func LoadSchemaFile(path string) (json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}

	data, err = sigsyaml.YAMLToJSON(bytes.TrimSpace(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	if string(data) == "null" {
		return nil, fmt.Errorf("schema file %s is empty", path)
	}

	return json.RawMessage(data), nil
}
