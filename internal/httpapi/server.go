// Package httpapi serves the transformer over HTTP: JSON routes, a
// websocket stream and the mounted MCP endpoint.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/apresai/personaswap/internal/config"
	"github.com/apresai/personaswap/internal/persona"
	"github.com/apresai/personaswap/internal/transformer"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// Options configures a Server.
type Options struct {
	Service *transformer.Service
	Config  config.Config
	Logger  *slog.Logger
	// MCP, when set, is mounted at /mcp.
	MCP http.Handler
}

// Server holds the routes and their dependencies.
type Server struct {
	svc      *transformer.Service
	cfg      config.Config
	log      *slog.Logger
	limiter  *RateLimiter
	upgrader websocket.Upgrader
	router   *mux.Router
	handler  http.Handler
}

// New builds the router and middleware stack.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		svc:     opts.Service,
		cfg:     opts.Config,
		log:     logger,
		limiter: NewRateLimiter(opts.Config.RateLimit.Max, opts.Config.RateLimit.Window),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		router: mux.NewRouter(),
	}
	s.routes(opts.MCP)

	s.handler = otelhttp.NewHandler(
		chain(s.router, s.recoverer, requestID, securityHeaders, cors, s.accessLog),
		"personaswap",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
	return s
}

func (s *Server) routes(mcp http.Handler) {
	r := s.router
	r.HandleFunc("/", s.handleWelcome).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/personas", s.handlePersonas).Methods(http.MethodGet)
	api.Handle("/transform", s.rateLimited(http.HandlerFunc(s.handleTransform))).Methods(http.MethodPost)
	api.HandleFunc("/history", s.handleHistory).Methods(http.MethodGet)
	api.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)

	if mcp != nil {
		r.Handle("/mcp", mcp)
	}

	r.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(s.handleNotFound)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured port until ctx is cancelled, then
// drains in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("Starting HTTP server", "addr", srv.Addr, "env", s.cfg.Server.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutdown signal received, draining connections...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Welcome to PersonaSwap API",
		"endpoints": map[string]string{
			"getPersonas":      "GET /api/personas",
			"transformMessage": "POST /api/transform",
			"getHistory":       "GET /api/history",
			"stream":           "GET /api/ws",
			"mcp":              "POST /mcp",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, s.svc.ListPersonas(), "Available personas retrieved successfully")
}

type transformRequest struct {
	Message string `json:"message"`
	Persona string `json:"persona"`
}

func (s *Server) handleTransform(w http.ResponseWriter, r *http.Request) {
	var req transformRequest
	if err := decodeRequest(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	res, err := s.svc.Transform(r.Context(), req.Message, req.Persona)
	if err != nil {
		s.transformError(w, err)
		return
	}
	writeSuccess(w, res, "Message transformed successfully")
}

// decodeRequest reads a JSON body, or a form body for urlencoded posts. An
// empty body decodes to an empty request so validation can name the field.
func decodeRequest(w http.ResponseWriter, r *http.Request, req *transformRequest) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		if err := r.ParseForm(); err != nil {
			return err
		}
		req.Message = r.PostForm.Get("message")
		req.Persona = r.PostForm.Get("persona")
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

func (s *Server) transformError(w http.ResponseWriter, err error) {
	var verr *transformer.ValidationError
	switch {
	case errors.As(err, &verr):
		s.writeError(w, http.StatusBadRequest, verr.Message, nil)
	case errors.Is(err, persona.ErrNotFound):
		s.writeError(w, http.StatusNotFound, err.Error(), nil)
	default:
		s.internalError(w, err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	records, err := s.svc.History(r.Context(), limit)
	if err != nil {
		s.internalError(w, err)
		return
	}
	writeSuccess(w, records, "Transformation history retrieved successfully")
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorBody{Success: false, Message: "Endpoint not found"})
}

// internalError logs err and sends a 500. Production clients only see
// "Server error".
func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.log.Error("Request failed", "error", err)
	message := err.Error()
	if s.cfg.Server.Production() {
		message = "Server error"
	}
	s.writeError(w, http.StatusInternalServerError, message, nil)
}
