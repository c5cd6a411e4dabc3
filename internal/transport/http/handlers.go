package http

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"character-match-service/internal/app"
	"character-match-service/internal/domain"
	"github.com/gabriel-vasile/mimetype"
)

type sessionCreated struct {
	SessionID string    `json:"session_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateSession serves POST /session?ttl_minutes=N.
func (a *API) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	ttl := a.opts.DefaultTTL
	if raw := r.URL.Query().Get("ttl_minutes"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			a.writeError(w, r, fmt.Errorf("%w: ttl_minutes must be an integer", domain.ErrInvalidInput))
			return
		}
		ttl = parsed
	}
	session, err := a.sessions.Create(r.Context(), ttl)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionCreated{
		SessionID: session.ID,
		ExpiresAt: session.ExpiresAt,
	})
}

func (a *API) handleListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes, err := a.catalog.ListQuizzes(r.Context())
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (a *API) handleGetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := a.catalog.GetQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

func (a *API) handleQuizQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.catalog.QuizQuestions(r.Context(), r.PathValue("id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, questions)
}

func (a *API) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var sub domain.AnswerSubmission
	if err := decodeJSON(r, &sub); err != nil {
		a.writeError(w, r, err)
		return
	}
	if _, err := a.sessions.SubmitAnswer(r.Context(), sub); err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "session_id": sub.SessionID})
}

func (a *API) handleComputeMatch(w http.ResponseWriter, r *http.Request) {
	result, err := a.results.ComputeMatch(r.Context(), r.PathValue("session_id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleUploadSelfie expects multipart fields session_id and file.
func (a *API) handleUploadSelfie(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(a.opts.MaxUploadBytes); err != nil {
		a.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	sessionID := r.FormValue("session_id")
	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, r, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}
	defer file.Close()

	ref, err := a.results.AssociateUpload(r.Context(), sessionID, file, header.Header.Get("Content-Type"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "path": ref})
}

func (a *API) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ref, err := a.results.GenerateResultImage(r.Context(), r.PathValue("session_id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "portrait_url": ref})
}

func (a *API) handleGetResult(w http.ResponseWriter, r *http.Request) {
	result, err := a.results.GetResult(r.Context(), r.PathValue("session_id"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleServeMedia serves /media/uploads/{name} and /media/results/{name}.
func (a *API) handleServeMedia(w http.ResponseWriter, r *http.Request) {
	area, name := r.PathValue("area"), r.PathValue("name")
	if (area != app.UploadsArea && area != app.ResultsArea) || name != path.Base(name) || strings.HasPrefix(name, ".") {
		a.writeError(w, r, domain.ErrBlobNotFound)
		return
	}
	blob, err := a.blobs.Open(r.Context(), path.Join(area, name))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	defer blob.Close()

	data, err := io.ReadAll(blob)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", mimetype.Detect(data).String())
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
