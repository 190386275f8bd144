// Package http exposes the modeling engine as a JSON API.
package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/carverlab/facet"
	"github.com/carverlab/facet/internal/kernel"
	"github.com/carverlab/facet/internal/logging"
	"github.com/carverlab/facet/internal/registry"
	"github.com/carverlab/facet/pkg/feature"
	"github.com/carverlab/facet/pkg/model"
	"github.com/carverlab/facet/pkg/pmi"
	"github.com/carverlab/facet/pkg/selector"
	"github.com/carverlab/facet/pkg/session"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Engine defines the interface for the Facet modeling core.
type Engine interface {
	ApplyFeature(ctx context.Context, sessionID string, upstream model.Result, f feature.Feature) (string, model.Result, error)
	Mesh(ctx context.Context, sessionID, handle string, opts facet.MeshOptions) (facet.Mesh, error)
	ExportSTEP(ctx context.Context, sessionID, handle, schema string) ([]byte, error)
	ExportSTEPWithPMI(ctx context.Context, sessionID, handle, schema string, payload pmi.Payload) ([]byte, error)
	Sessions(ctx context.Context) ([]string, error)
	Session(ctx context.Context, id string) (*session.State, error)
	DropSession(ctx context.Context, id string) error
}

// Server handles the JSON API.
type Server struct {
	engine   Engine
	logger   *slog.Logger
	gatherer prometheus.Gatherer
}

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithGatherer exposes the given metrics registry at /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		engine: engine,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	// The embedded contract is validated once at startup so a broken spec
	// never ships silently.
	if err := validateSpec(); err != nil {
		server.logger.Warn("openapi spec failed validation", "error", err)
	}

	r := chi.NewRouter()

	r.Post("/v1/exec-feature", server.execFeature)
	r.Post("/v1/mesh", server.mesh)
	r.Post("/v1/export-step", server.exportStep)
	r.Post("/v1/export-step-pmi", server.exportStepPMI)
	r.Get("/v1/sessions", server.listSessions)
	r.Delete("/v1/sessions/{id}", server.deleteSession)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if server.gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(server.gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(openapiSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	return r
}

func validateSpec() error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return err
	}
	return doc.Validate(loader.Context)
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Facet API Documentation</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

type execFeatureRequest struct {
	SessionID string         `json:"sessionId"`
	Upstream  model.Result   `json:"upstream"`
	Feature   map[string]any `json:"feature"`
}

func (s *Server) execFeature(w http.ResponseWriter, r *http.Request) {
	var body execFeatureRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	f, err := feature.Parse(body.Feature)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	sessionID, built, err := s.engine.ApplyFeature(r.Context(), body.SessionID, body.Upstream, f)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"sessionId": sessionID,
		"result":    built,
	})
}

type meshRequest struct {
	SessionID string `json:"sessionId"`
	Handle    string `json:"handle"`
	Options   struct {
		LinearDeflection  float64 `json:"linearDeflection"`
		AngularDeflection float64 `json:"angularDeflection"`
		Relative          bool    `json:"relative"`
	} `json:"options"`
}

func (s *Server) mesh(w http.ResponseWriter, r *http.Request) {
	var body meshRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	mesh, err := s.engine.Mesh(r.Context(), body.SessionID, body.Handle, facet.MeshOptions{
		LinearDeflection:  body.Options.LinearDeflection,
		AngularDeflection: body.Options.AngularDeflection,
		Relative:          body.Options.Relative,
	})
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, mesh)
}

type exportRequest struct {
	SessionID string         `json:"sessionId"`
	Handle    string         `json:"handle"`
	PMI       map[string]any `json:"pmi"`
	Options   struct {
		Schema string `json:"schema"`
	} `json:"options"`
}

func (s *Server) exportStep(w http.ResponseWriter, r *http.Request) {
	var body exportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := s.engine.ExportSTEP(r.Context(), body.SessionID, body.Handle, body.Options.Schema)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func (s *Server) exportStepPMI(w http.ResponseWriter, r *http.Request) {
	var body exportRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	payload, err := pmi.ParsePayload(body.PMI)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	data, err := s.engine.ExportSTEPWithPMI(r.Context(), body.SessionID, body.Handle, body.Options.Schema, payload)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.engine.Sessions(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": ids})
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.engine.Session(r.Context(), id); err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	if err := s.engine.DropSession(r.Context(), id); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps engine errors to HTTP statuses: unknown sessions are 404,
// domain failures are 400, everything else is a 500.
func statusFor(err error) int {
	if errors.Is(err, session.ErrNotFound) {
		return http.StatusNotFound
	}

	var (
		missingOutput  *selector.MissingOutputError
		ambiguous      *selector.AmbiguousError
		unknownKind    *selector.UnknownKindError
		unsupported    *feature.UnsupportedKindError
		invalidProf    *feature.InvalidProfileError
		unknownMod     *pmi.UnknownModifierError
		typeMismatch   *pmi.TypeMismatchError
		unsupportedRef *pmi.UnsupportedRefError
		unknownHandle  *registry.UnknownHandleError
		opErr          *kernel.OperationError
	)
	switch {
	case errors.Is(err, selector.ErrNoMatch),
		errors.Is(err, selector.ErrMissingCenter),
		errors.Is(err, feature.ErrProfileRefUnsupported),
		errors.Is(err, feature.ErrThroughAllUnsupported),
		errors.Is(err, pmi.ErrMissingHandle),
		errors.As(err, &missingOutput),
		errors.As(err, &ambiguous),
		errors.As(err, &unknownKind),
		errors.As(err, &unsupported),
		errors.As(err, &invalidProf),
		errors.As(err, &unknownMod),
		errors.As(err, &typeMismatch),
		errors.As(err, &unsupportedRef),
		errors.As(err, &unknownHandle),
		errors.As(err, &opErr):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "error", err)
	} else {
		s.logger.Warn("request rejected", "status", status, "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "error", err)
	}
}
