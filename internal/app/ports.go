package app

import (
	"context"
	"io"
	"time"

	"character-match-service/internal/domain"
)

// Table is a keyed store for one catalog entity kind (in-memory, Postgres, etc).
// List returns values in insertion order. Missing IDs yield the table's
// specific not-found error.
type Table[T any] interface {
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context) ([]T, error)
	Put(ctx context.Context, id string, v T) error
	Delete(ctx context.Context, id string) error
}

// Catalog bundles the three catalog tables.
type Catalog struct {
	Questions  Table[domain.Question]
	Characters Table[domain.Character]
	Quizzes    Table[domain.Quiz]
}

// SessionRepository abstracts how sessions are stored.
type SessionRepository interface {
	Create(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (domain.Session, error)
	// Update applies fn to the stored session as one read-modify-write.
	// If fn returns an error nothing is written.
	Update(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error)
}

// ResultRepository keeps the last match and the last portrait per session.
// sessionExpiresAt lets stores that evict data keep a result exactly as long
// as the session it belongs to.
type ResultRepository interface {
	SaveMatch(ctx context.Context, result domain.MatchResult, sessionExpiresAt time.Time) error
	SetPortrait(ctx context.Context, sessionID, url string, sessionExpiresAt time.Time) error
	Get(ctx context.Context, sessionID string) (domain.StoredResult, error)
}

// BlobStore persists media files keyed by "<area>/<name>".
type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ImageTransformer turns an uploaded selfie into a portrait for the matched character.
type ImageTransformer interface {
	Transform(ctx context.Context, dst io.Writer, src io.Reader, character *domain.Character) error
}
