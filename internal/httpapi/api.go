// Package httpapi is the HTTP surface of the document portal. Handlers stay
// thin: they decode input, call into the gateway/registry/storage components
// and convert sentinel errors into responses at the boundary.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"studentdocs.org/internal/auth"
	"studentdocs.org/internal/docs"
	"studentdocs.org/internal/gateway"
	"studentdocs.org/internal/obs"
	"studentdocs.org/internal/storage"
)

// ReadyProbe checks the backing database when one is configured.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Options wires the API's collaborators.
type Options struct {
	Gateway        *gateway.Gateway
	Users          auth.Store
	Registry       *docs.Registry
	Files          *storage.Dir
	ReadyProbe     ReadyProbe
	Version        string
	TokenTTL       time.Duration
	MaxUploadBytes int64
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	gw         *gateway.Gateway
	users      auth.Store
	registry   *docs.Registry
	files      *storage.Dir
	readyProbe ReadyProbe
	version    string
	tokenTTL   time.Duration
	maxUpload  int64
}

func New(opts Options) *API {
	a := &API{
		mux:        http.NewServeMux(),
		gw:         opts.Gateway,
		users:      opts.Users,
		registry:   opts.Registry,
		files:      opts.Files,
		readyProbe: opts.ReadyProbe,
		version:    opts.Version,
		tokenTTL:   opts.TokenTTL,
		maxUpload:  opts.MaxUploadBytes,
	}
	if a.tokenTTL <= 0 {
		a.tokenTTL = auth.TokenTTL
	}
	if a.maxUpload <= 0 {
		a.maxUpload = 10 << 20
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/api/auth/login", a.handleLogin)
	a.mux.HandleFunc("/api/documents", a.handleDocuments)
	a.mux.HandleFunc("/api/documents/upload", a.handleDocumentUpload)
	a.mux.HandleFunc("/api/documents/download", a.handleDocumentDownload)

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler assembles the middleware chain around the mux.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, 100, 50)
	h = MaxBodyBytes(h, a.maxUpload)
	h = LoggingJSON(h)
	h = RequestID(h)
	h = CORS(h)
	h = SecurityHeaders(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "studentdocs-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
