package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"modelgw/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Enqueue(ctx context.Context, req types.EnqueueRequest) (string, error)
	Result(ctx context.Context, requestID string) (*types.GatewayResponse, bool, error)
	WaitForResult(ctx context.Context, requestID string, timeout time.Duration) (*types.GatewayResponse, error)
	ListInstances() []types.ModelInstance
	ListInstancesByModel(modelID string) []types.ModelInstance
	StartInstance(id string) bool
	StopInstance(id string) bool
	ResetManualControl()
	QueueStatus(ctx context.Context, modelID string) (types.QueueStatus, error)
	Status() types.StatusResponse
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	// Compression for JSON endpoints
	r.Use(middleware.Compress(5))
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}
	r.Use(MetricsMiddleware)
	r.Use(requestLogger)
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	r.Post("/requests", func(w http.ResponseWriter, r *http.Request) {
		ct := r.Header.Get("Content-Type")
		if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		var req types.EnqueueRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		id, err := svc.Enqueue(r.Context(), req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusAccepted, types.EnqueueResponse{RequestID: id})
	})

	r.Get("/requests/{id}/result", func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		waitMs, err := parseWaitMs(r.URL.Query().Get("wait_ms"))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "wait_ms must be a non-negative integer")
			return
		}
		if waitMs == 0 {
			resp, ok, err := svc.Result(r.Context(), id)
			if err != nil {
				writeServiceError(w, err)
				return
			}
			if !ok {
				writeJSONError(w, http.StatusNotFound, "result not ready")
				return
			}
			writeJSON(w, http.StatusOK, resp)
			return
		}
		// Join server base context with request context so shutdown ends
		// long polls too.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		resp, err := svc.WaitForResult(ctx, id, time.Duration(waitMs)*time.Millisecond)
		if err != nil {
			if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
				return
			}
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	})

	r.Get("/instances", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"instances": svc.ListInstances()})
	})

	r.Get("/models/{model}/instances", func(w http.ResponseWriter, r *http.Request) {
		model := chi.URLParam(r, "model")
		writeJSON(w, http.StatusOK, map[string]any{"instances": svc.ListInstancesByModel(model)})
	})

	r.Get("/models/{model}/queue", func(w http.ResponseWriter, r *http.Request) {
		status, err := svc.QueueStatus(r.Context(), chi.URLParam(r, "model"))
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, status)
	})

	r.Post("/instances/{id}/start", func(w http.ResponseWriter, r *http.Request) {
		if !svc.StartInstance(chi.URLParam(r, "id")) {
			writeJSONError(w, http.StatusNotFound, "unknown instance")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Post("/instances/{id}/stop", func(w http.ResponseWriter, r *http.Request) {
		if !svc.StopInstance(chi.URLParam(r, "id")) {
			writeJSONError(w, http.StatusNotFound, "unknown instance")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Post("/instances/reset-manual", func(w http.ResponseWriter, r *http.Request) {
		svc.ResetManualControl()
		w.WriteHeader(http.StatusNoContent)
	})

	r.Get("/status", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, svc.Status())
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)

	return r
}

func parseWaitMs(raw string) (int64, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	if n > maxWaitMs {
		n = maxWaitMs
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && zlog != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}

// writeServiceError maps service errors to HTTP status codes.
func writeServiceError(w http.ResponseWriter, err error) {
	if he, ok := err.(HTTPError); ok {
		writeJSONError(w, he.StatusCode(), he.Error())
		return
	}
	writeJSONError(w, http.StatusInternalServerError, err.Error())
}
