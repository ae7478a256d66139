package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"localmind/internal/manager"
	"localmind/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Ready() bool
	Status() types.StatusResponse
	Telemetry() types.TelemetryResponse
	Initialize(ctx context.Context) error
	// Chat runs one generation; onToken is nil for non-streaming requests.
	Chat(ctx context.Context, req types.ChatRequest, onToken func(string) error) (types.ChatResponse, error)
	CancelGeneration() bool
	Unload(ctx context.Context) error
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if len(corsAllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			ExposedHeaders: []string{"X-Request-Id"},
			MaxAge:         300,
		}))
	}

	h := &handlers{svc: svc}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", h.readyz)
	r.Get("/status", h.status)
	r.Get("/telemetry", h.telemetry)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	r.Post("/init", h.initialize)
	r.Post("/unload", h.unload)
	if chatLimit != nil {
		r.With(rateLimitMiddleware(*chatLimit)).Post("/chat", h.chat)
	} else {
		r.Post("/chat", h.chat)
	}
	r.Post("/chat/cancel", h.cancel)
	MountSwagger(r)

	return r
}

type handlers struct {
	svc Service
}

// readyz godoc
// @Summary      Readiness probe
// @Description  200 once the model is loaded and Ready, 503 otherwise.
// @Tags         health
// @Produce      plain
// @Success      200  {string}  string  "ready"
// @Failure      503  {string}  string  "not ready"
// @Router       /readyz [get]
func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.svc.Ready() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("not ready"))
}

// status godoc
// @Summary      Lifecycle and scheduler status
// @Tags         status
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// telemetry godoc
// @Summary      Aggregate generation telemetry
// @Tags         status
// @Produce      json
// @Success      200  {object}  types.TelemetryResponse
// @Router       /telemetry [get]
func (h *handlers) telemetry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Telemetry())
}

// initialize godoc
// @Summary      Extract and load the bundled model
// @Description  Idempotent; returns the status once the model is Ready.
// @Tags         lifecycle
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Failure      500  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /init [post]
func (h *handlers) initialize(w http.ResponseWriter, r *http.Request) {
	log, lvl := requestLogger(r)
	start := time.Now()
	// a client disconnect must not abort a model load half way
	if err := h.svc.Initialize(serverBaseCtx); err != nil {
		status := statusForError(err)
		if lvl >= LevelError {
			log.Error().Err(err).Int("status", status).Dur("dur", time.Since(start)).Msg("init failed")
		}
		writeJSONError(w, status, err.Error())
		return
	}
	if lvl >= LevelInfo {
		log.Info().Dur("dur", time.Since(start)).Msg("init done")
	}
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// unload godoc
// @Summary      Unload the model
// @Tags         lifecycle
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Failure      409  {object}  types.ErrorResponse
// @Failure      503  {object}  types.ErrorResponse
// @Router       /unload [post]
func (h *handlers) unload(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()
	if err := h.svc.Unload(ctx); err != nil {
		writeJSONError(w, statusForError(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.svc.Status())
}

// cancel godoc
// @Summary      Cancel the running generation
// @Tags         chat
// @Produce      json
// @Success      200  {object}  types.CancelResponse
// @Router       /chat/cancel [post]
func (h *handlers) cancel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.CancelResponse{Cancelled: h.svc.CancelGeneration()})
}

// chat godoc
// @Summary      Generate a reply
// @Description  Returns a ChatResponse, or with stream=true NDJSON TokenLine objects followed by a final ChatResponse line.
// @Tags         chat
// @Accept       json
// @Produce      json
// @Produce      application/x-ndjson
// @Param        request  body      types.ChatRequest  true  "Chat request"
// @Success      200      {object}  types.ChatResponse
// @Failure      400      {object}  types.ErrorResponse
// @Failure      409      {object}  types.ErrorResponse
// @Failure      413      {object}  types.ErrorResponse
// @Failure      429      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Failure      504      {object}  types.ErrorResponse
// @Router       /chat [post]
func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt != "application/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req types.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeJSONError(w, http.StatusBadRequest, "content is required")
		return
	}

	log, lvl := requestLogger(r)
	start := time.Now()
	if lvl >= LevelInfo {
		log.Info().Bool("stream", req.Stream).Int("history", len(req.History)).Msg("chat start")
	}

	ctx, cancel := joinContexts(serverBaseCtx, r.Context())
	defer cancel()

	var (
		resp    types.ChatResponse
		err     error
		started bool
		enc     *json.Encoder
		// tokens may still arrive from a worker after the handler gave up
		mu   sync.Mutex
		done bool
	)
	defer func() {
		mu.Lock()
		done = true
		mu.Unlock()
	}()
	if req.Stream {
		var out io.Writer = w
		if lvl >= LevelDebug {
			out = io.MultiWriter(w, &tokenLogWriter{log: log})
		}
		enc = json.NewEncoder(out)
		flush := func() {}
		if f, ok := w.(http.Flusher); ok {
			flush = f.Flush
		}
		resp, err = h.svc.Chat(ctx, req, func(tok string) error {
			mu.Lock()
			defer mu.Unlock()
			if done {
				return context.Canceled
			}
			if !started {
				w.Header().Set("Content-Type", "application/x-ndjson")
				w.WriteHeader(http.StatusOK)
				started = true
			}
			if err := enc.Encode(types.TokenLine{Token: tok}); err != nil {
				return err
			}
			flush()
			return nil
		})
	} else {
		resp, err = h.svc.Chat(ctx, req, nil)
	}

	mu.Lock()
	defer mu.Unlock()
	if err != nil {
		// client gone or server stopping; nobody to answer
		if r.Context().Err() != nil || serverBaseCtx.Err() != nil {
			return
		}
		status := http.StatusOK
		var body any = types.CancelResponse{Cancelled: true}
		if !manager.IsCancelled(err) {
			status = statusForError(err)
			body = types.ErrorResponse{Error: err.Error(), Code: status}
			switch status {
			case http.StatusConflict:
				countRejection("in_flight")
			case http.StatusServiceUnavailable:
				countRejection("not_ready")
			case http.StatusRequestEntityTooLarge:
				countRejection("prompt_too_long")
			}
		}
		if lvl >= LevelInfo || (lvl >= LevelError && status >= 500) {
			log.Info().Int("status", status).Dur("dur", time.Since(start)).Err(err).Msg("chat end")
		}
		if started {
			_ = enc.Encode(body)
			return
		}
		writeJSON(w, status, body)
		return
	}

	if lvl >= LevelInfo {
		log.Info().Int("status", http.StatusOK).Dur("dur", time.Since(start)).
			Int("output_tokens", resp.Metadata.OutputTokens).Msg("chat end")
	}
	if started {
		_ = enc.Encode(resp)
		return
	}
	if req.Stream {
		w.Header().Set("Content-Type", "application/x-ndjson")
		w.WriteHeader(http.StatusOK)
		_ = enc.Encode(resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
