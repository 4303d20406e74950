// Package server publishes the generated document over HTTP.
package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/vitalvas/kasper/mux"
	"github.com/vitalvas/kasper/muxhandlers"
	"golang.org/x/sync/errgroup"

	"github.com/griffnb/rest-swag/internal/domain"
	"github.com/griffnb/rest-swag/internal/orchestrator"
	"github.com/griffnb/rest-swag/internal/parser/route"
)

//go:embed schema.json
var defaultSchema []byte

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Generator produces the document for a namespace.
type Generator interface {
	Generate(ctx context.Context, namespace string) (*orchestrator.Document, error)
}

// Debugger is the interface for debug logging.
type Debugger interface {
	Printf(format string, v ...interface{})
}

// Config holds server options.
type Config struct {
	// Listen address, e.g. 127.0.0.1:8080
	Listen string

	// SelfRoute is the path the document is served on
	SelfRoute string

	// Schema is the meta schema answered on OPTIONS. The embedded schema is
	// used when empty.
	Schema json.RawMessage

	// CORSOrigins enables CORS for the listed origins
	CORSOrigins []string

	ShutdownTimeout time.Duration

	Debug Debugger
}

// Server serves the document endpoint.
type Server struct {
	gen    Generator
	cfg    Config
	router *mux.Router
}

// New creates a server with its routes and middleware registered.
func New(gen Generator, cfg Config) (*Server, error) {
	if gen == nil {
		return nil, errors.New("generator is nil")
	}
	if cfg.SelfRoute == "" {
		cfg.SelfRoute = route.DefaultSelfRoute
	}
	if len(cfg.Schema) == 0 {
		cfg.Schema = defaultSchema
	}
	if !json.Valid(cfg.Schema) {
		return nil, errors.New("meta schema is not valid JSON")
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		gen:    gen,
		cfg:    cfg,
		router: mux.NewRouter(),
	}
	if err := s.registerRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler returns the http handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() error {
	r := s.router

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNoRoute, "No route was found matching the URL and request method.")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, codeNoRoute, "No route was found matching the URL and request method.")
	})

	r.Use(
		muxhandlers.RequestIDMiddleware(muxhandlers.RequestIDConfig{
			GenerateFunc: muxhandlers.GenerateUUIDv7,
		}),
		muxhandlers.RecoveryMiddleware(muxhandlers.RecoveryConfig{
			LogFunc: func(r *http.Request, err any) {
				s.debugf("server: panic serving %s %s (request %s): %v",
					r.Method, r.URL.Path, muxhandlers.RequestIDFromContext(r.Context()), err)
			},
		}),
	)

	if len(s.cfg.CORSOrigins) > 0 {
		cors, err := muxhandlers.CORSMiddleware(r, muxhandlers.CORSConfig{
			AllowedOrigins: s.cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		})
		if err != nil {
			return fmt.Errorf("invalid cors config: %w", err)
		}
		r.Use(cors)
	}

	compression, err := muxhandlers.CompressionMiddleware(muxhandlers.CompressionConfig{MinLength: 1024})
	if err != nil {
		return err
	}
	r.Use(compression)

	r.HandleFunc(s.cfg.SelfRoute, s.handleSwagger).Methods(http.MethodGet)
	r.HandleFunc(s.cfg.SelfRoute, s.handleSchema).Methods(http.MethodOptions)

	return nil
}

// handleSwagger answers with the document, narrowed to the namespace query
// parameter when present. Failures, panics included, answer with the JSON
// error envelope rather than the plain text of the recovery middleware.
func (s *Server) handleSwagger(w http.ResponseWriter, r *http.Request) {
	namespace := r.URL.Query().Get("namespace")
	requestID := muxhandlers.RequestIDFromContext(r.Context())

	defer func() {
		if rec := recover(); rec != nil {
			s.debugf("server: panic generating namespace=%q (request %s): %v", namespace, requestID, rec)
			writeError(w, http.StatusInternalServerError, codeGenerationFailed, "The document could not be generated.")
		}
	}()

	doc, err := s.gen.Generate(r.Context(), namespace)
	if err != nil {
		s.debugf("server: generate namespace=%q (request %s): %v", namespace, requestID, err)
		writeGenerateError(w, err)
		return
	}

	// encoded up front so a failure still gets the envelope
	b, err := json.Marshal(doc)
	if err != nil {
		s.debugf("server: encode namespace=%q (request %s): %v", namespace, requestID, err)
		writeError(w, http.StatusInternalServerError, codeGenerationFailed, "The document could not be encoded.")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(b, '\n'))
}

func (s *Server) handleSchema(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, s.cfg.Schema)
}

// Run listens on the configured address until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.debugf("server: listening on %s", ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.debugf("server: shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) debugf(format string, v ...interface{}) {
	if s.cfg.Debug != nil {
		s.cfg.Debug.Printf(format, v...)
	}
}

var _ Generator = (*orchestrator.Service)(nil)

// writeGenerateError maps generation failures onto the error envelope.
func writeGenerateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNamespaceNotFound):
		writeError(w, http.StatusNotFound, codeInvalidNamespace, "The specified namespace could not be found.")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, codeGenerationFailed, "The request was canceled.")
	default:
		writeError(w, http.StatusInternalServerError, codeGenerationFailed, err.Error())
	}
}
