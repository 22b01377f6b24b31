// Package httpapi serves the lens over HTTP.
//
//	POST /v1/tokenize     {"text": "..."}
//	POST /v1/classify     {"text": "...", "id": "open-3"} or {"text": "...", "offset": 3}
//	POST /v1/diagnostics  {"text": "..."}
//	POST /v1/rpc          JSON-RPC 2.0 (lens.tokenize, lens.classify, lens.diagnostics)
//	GET  /v1/healthz
//	GET  /v1/ws           websocket hover channel, see Session
package httpapi

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/creachadair/jrpc2/jhttp"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/walteh/bracketlens/pkg/lens"
	"github.com/walteh/bracketlens/pkg/rpcapi"
	"gitlab.com/tozd/go/errors"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 1 << 20

type Handler struct {
	service *lens.Service
	bridge  jhttp.Bridge
}

// NewHandler builds the HTTP surface for svc. The returned handler owns a
// JSON-RPC bridge and must be closed.
func NewHandler(ctx context.Context, svc *lens.Service) *Handler {
	return &Handler{
		service: svc,
		bridge: jhttp.NewBridge(rpcapi.Methods(svc), &jhttp.BridgeOptions{
			Server: rpcapi.ServerOptions(ctx),
		}),
	}
}

func (h *Handler) Close() error {
	if err := h.bridge.Close(); err != nil {
		return errors.Errorf("closing rpc bridge: %w", err)
	}
	return nil
}

// RegisterHTTP mounts the lens endpoints on r.
func (h *Handler) RegisterHTTP(r chi.Router) {
	r.Post("/v1/tokenize", handleJSON(h.service.Tokenize))
	r.Post("/v1/classify", handleJSON(h.service.Classify))
	r.Post("/v1/diagnostics", handleJSON(h.service.Diagnostics))
	r.Method(http.MethodPost, "/v1/rpc", h.bridge)
	r.Get("/v1/healthz", h.handleHealth)
	r.Get("/v1/ws", h.handleWebSocket)
}

// Router returns a chi router with the lens endpoints and the standard
// middleware stack. Request loggers derive from ctx's logger.
func (h *Handler) Router(ctx context.Context) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(withLogger(*zerolog.Ctx(ctx)))
	r.Use(middleware.Recoverer)
	h.RegisterHTTP(r)
	return r
}

func withLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqLogger := logger.With().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Logger()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r.WithContext(reqLogger.WithContext(r.Context())))

			reqLogger.Debug().
				Int("status", ww.Status()).
				Int("bytes", ww.BytesWritten()).
				Dur("elapsed", time.Since(start)).
				Msg("http request")
		})
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status string          `json:"status"`
	Cache  lens.CacheStats `json:"cache"`
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, HealthResponse{
		Status: "ok",
		Cache:  h.service.Cache().Stats(),
	})
}

func handleJSON[T any, O any](method func(ctx context.Context, req T) (O, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req T
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: "decoding request: " + err.Error()})
			return
		}

		resp, err := method(ctx, req)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, lens.ErrNoSelection) {
				status = http.StatusBadRequest
			}
			zerolog.Ctx(ctx).Debug().Err(err).Msg("request failed")
			writeJSON(ctx, w, status, errorResponse{Error: err.Error()})
			return
		}

		writeJSON(ctx, w, http.StatusOK, resp)
	}
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("writing response")
	}
}

// ListenAndServe serves the lens on addr until ctx is cancelled.
func ListenAndServe(ctx context.Context, svc *lens.Service, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Errorf("listening on %s: %w", addr, err)
	}
	return Serve(ctx, svc, lis)
}

// Serve serves the lens on lis until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, svc *lens.Service, lis net.Listener) error {
	h := NewHandler(ctx, svc)
	defer h.Close()

	srv := &http.Server{
		Handler:           h.Router(ctx),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errch := make(chan error, 1)
	go func() {
		zerolog.Ctx(ctx).Info().Str("addr", lis.Addr().String()).Msg("http server listening")
		errch <- srv.Serve(lis)
	}()

	select {
	case err := <-errch:
		if !errors.Is(err, http.ErrServerClosed) {
			return errors.Errorf("serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Errorf("shutting down http server: %w", err)
	}
	return nil
}
