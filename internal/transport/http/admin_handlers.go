package http

import (
	"net/http"

	"character-match-service/internal/domain"
)

type adminAuthRequest struct {
	Token string `json:"token"`
}

// handleAdminAuth validates a token sent in the body rather than the query.
func (a *API) handleAdminAuth(w http.ResponseWriter, r *http.Request) {
	var req adminAuthRequest
	if err := decodeJSON(r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}
	if !a.tokenValid(req.Token) {
		a.writeError(w, r, domain.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) deleted(w http.ResponseWriter, r *http.Request, err error) {
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func respond[T any](a *API, w http.ResponseWriter, r *http.Request, v T, err error) {
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

// Questions

func (a *API) handleListQuestions(w http.ResponseWriter, r *http.Request) {
	questions, err := a.catalog.ListQuestions(r.Context())
	respond(a, w, r, questions, err)
}

func (a *API) handleGetQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := a.catalog.GetQuestion(r.Context(), r.PathValue("id"))
	respond(a, w, r, q, err)
}

func (a *API) handleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	var in domain.QuestionInput
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	q, err := a.catalog.CreateQuestion(r.Context(), in)
	respond(a, w, r, q, err)
}

func (a *API) handleUpdateQuestion(w http.ResponseWriter, r *http.Request) {
	var patch domain.QuestionPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.writeError(w, r, err)
		return
	}
	q, err := a.catalog.UpdateQuestion(r.Context(), r.PathValue("id"), patch)
	respond(a, w, r, q, err)
}

func (a *API) handleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	a.deleted(w, r, a.catalog.DeleteQuestion(r.Context(), r.PathValue("id")))
}

// Characters

func (a *API) handleListCharacters(w http.ResponseWriter, r *http.Request) {
	characters, err := a.catalog.ListCharacters(r.Context())
	respond(a, w, r, characters, err)
}

func (a *API) handleGetCharacter(w http.ResponseWriter, r *http.Request) {
	c, err := a.catalog.GetCharacter(r.Context(), r.PathValue("id"))
	respond(a, w, r, c, err)
}

func (a *API) handleCreateCharacter(w http.ResponseWriter, r *http.Request) {
	var in domain.CharacterInput
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.catalog.CreateCharacter(r.Context(), in)
	respond(a, w, r, c, err)
}

func (a *API) handleUpdateCharacter(w http.ResponseWriter, r *http.Request) {
	var patch domain.CharacterPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.writeError(w, r, err)
		return
	}
	c, err := a.catalog.UpdateCharacter(r.Context(), r.PathValue("id"), patch)
	respond(a, w, r, c, err)
}

func (a *API) handleDeleteCharacter(w http.ResponseWriter, r *http.Request) {
	a.deleted(w, r, a.catalog.DeleteCharacter(r.Context(), r.PathValue("id")))
}

// Quizzes (list and get are shared with the public routes)

func (a *API) handleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var in domain.QuizInput
	if err := decodeJSON(r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}
	quiz, err := a.catalog.CreateQuiz(r.Context(), in)
	respond(a, w, r, quiz, err)
}

func (a *API) handleUpdateQuiz(w http.ResponseWriter, r *http.Request) {
	var patch domain.QuizPatch
	if err := decodeJSON(r, &patch); err != nil {
		a.writeError(w, r, err)
		return
	}
	quiz, err := a.catalog.UpdateQuiz(r.Context(), r.PathValue("id"), patch)
	respond(a, w, r, quiz, err)
}

func (a *API) handleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	a.deleted(w, r, a.catalog.DeleteQuiz(r.Context(), r.PathValue("id")))
}
