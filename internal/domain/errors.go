package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors below wrap one of these so callers can
// branch with errors.Is.
var (
	ErrNotFound             = errors.New("not found")
	ErrSessionExpired       = errors.New("session expired")
	ErrInvalidChoice        = errors.New("invalid choice for question")
	ErrUnsupportedMediaType = errors.New("unsupported file type")
	ErrPreconditionFailed   = errors.New("precondition failed")
	ErrForbidden            = errors.New("forbidden: invalid admin token")
	ErrInvalidInput         = errors.New("invalid input")
)

var (
	// ErrSessionNotFound is returned when no session exists for an ID.
	ErrSessionNotFound = fmt.Errorf("session %w", ErrNotFound)
	// ErrQuizNotFound indicates the quiz could not be loaded.
	ErrQuizNotFound = fmt.Errorf("quiz %w", ErrNotFound)
	// ErrQuestionNotFound indicates a question ID does not resolve.
	ErrQuestionNotFound = fmt.Errorf("question %w", ErrNotFound)
	// ErrCharacterNotFound indicates a character ID does not resolve.
	ErrCharacterNotFound = fmt.Errorf("character %w", ErrNotFound)
	// ErrResultNotFound is returned when no match was ever computed.
	ErrResultNotFound = fmt.Errorf("no result for session: %w", ErrNotFound)
	// ErrBlobNotFound indicates a stored media file is gone.
	ErrBlobNotFound = fmt.Errorf("file %w", ErrNotFound)

	ErrNoQuizSelected = fmt.Errorf("no quiz selected in session: %w", ErrPreconditionFailed)
	ErrNoUpload       = fmt.Errorf("no selfie uploaded for session: %w", ErrPreconditionFailed)
	ErrNoMatch        = fmt.Errorf("no match computed for session: %w", ErrPreconditionFailed)
	// ErrQuizLocked is returned when quiz locking is on and an answer names
	// a different quiz than the one the session is bound to.
	ErrQuizLocked = fmt.Errorf("session bound to another quiz: %w", ErrPreconditionFailed)
)
