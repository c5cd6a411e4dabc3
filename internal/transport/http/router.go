package http

import (
	"bufio"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"character-match-service/internal/app"
	"character-match-service/internal/domain"
	"go.uber.org/zap"
)

// Options carries the transport settings from config.
type Options struct {
	AdminToken     string
	MaxUploadBytes int64
	CORSOrigin     string
	DefaultTTL     int
}

// API wires the REST and websocket handlers onto the use cases.
type API struct {
	catalog  *app.CatalogService
	sessions *app.SessionService
	results  *app.ResultService
	blobs    app.BlobStore
	events   *app.EventHub
	ws       *WSHandler
	opts     Options
	logger   *zap.Logger
}

func NewAPI(catalog *app.CatalogService, sessions *app.SessionService, results *app.ResultService, blobs app.BlobStore, events *app.EventHub, opts Options, logger *zap.Logger) *API {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.DefaultTTL <= 0 {
		opts.DefaultTTL = app.DefaultSessionTTLMinutes
	}
	logger = logger.Named("http")
	return &API{
		catalog:  catalog,
		sessions: sessions,
		results:  results,
		blobs:    blobs,
		events:   events,
		ws:       NewWSHandler(sessions, events, logger),
		opts:     opts,
		logger:   logger,
	}
}

func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", a.handleHealth)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /session", a.handleCreateSession)
	mux.HandleFunc("GET /quiz", a.handleListQuizzes)
	mux.HandleFunc("GET /quiz/{id}", a.handleGetQuiz)
	mux.HandleFunc("GET /quiz/{id}/questions", a.handleQuizQuestions)
	mux.HandleFunc("POST /answers", a.handleSubmitAnswer)
	mux.HandleFunc("POST /match/{session_id}", a.handleComputeMatch)
	mux.HandleFunc("POST /upload/selfie", a.handleUploadSelfie)
	mux.HandleFunc("POST /generate/{session_id}", a.handleGenerate)
	mux.HandleFunc("GET /results/{session_id}", a.handleGetResult)
	mux.HandleFunc("GET /media/{area}/{name}", a.handleServeMedia)
	mux.HandleFunc("GET /ws", a.ws.ServeWS)

	// Admin
	mux.HandleFunc("POST /admin/auth", a.handleAdminAuth)
	mux.Handle("GET /admin/questions", a.adminOnly(a.handleListQuestions))
	mux.Handle("POST /admin/questions", a.adminOnly(a.handleCreateQuestion))
	mux.Handle("GET /admin/questions/{id}", a.adminOnly(a.handleGetQuestion))
	mux.Handle("PUT /admin/questions/{id}", a.adminOnly(a.handleUpdateQuestion))
	mux.Handle("DELETE /admin/questions/{id}", a.adminOnly(a.handleDeleteQuestion))
	mux.Handle("GET /admin/characters", a.adminOnly(a.handleListCharacters))
	mux.Handle("POST /admin/characters", a.adminOnly(a.handleCreateCharacter))
	mux.Handle("GET /admin/characters/{id}", a.adminOnly(a.handleGetCharacter))
	mux.Handle("PUT /admin/characters/{id}", a.adminOnly(a.handleUpdateCharacter))
	mux.Handle("DELETE /admin/characters/{id}", a.adminOnly(a.handleDeleteCharacter))
	mux.Handle("GET /admin/quizzes", a.adminOnly(a.handleListQuizzes))
	mux.Handle("POST /admin/quizzes", a.adminOnly(a.handleCreateQuiz))
	mux.Handle("GET /admin/quizzes/{id}", a.adminOnly(a.handleGetQuiz))
	mux.Handle("PUT /admin/quizzes/{id}", a.adminOnly(a.handleUpdateQuiz))
	mux.Handle("DELETE /admin/quizzes/{id}", a.adminOnly(a.handleDeleteQuiz))

	return a.logRequests(a.cors(mux))
}

func (a *API) tokenValid(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(a.opts.AdminToken)) == 1
}

func (a *API) adminOnly(next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.tokenValid(r.URL.Query().Get("token")) {
			a.writeError(w, r, domain.ErrForbidden)
			return
		}
		next(w, r)
	})
}

func (a *API) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", a.opts.CORSOrigin)
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through so websocket upgrades work behind the logger.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func (a *API) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		a.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}

// StatusFor maps a domain error to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionExpired):
		return http.StatusGone
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidChoice),
		errors.Is(err, domain.ErrUnsupportedMediaType),
		errors.Is(err, domain.ErrPreconditionFailed),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type errorPayload struct {
	Detail string `json:"detail"`
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		detail = "internal error"
	}
	writeJSON(w, status, errorPayload{Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
