package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"character-match-service/internal/app"
	"character-match-service/internal/domain"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// Table stores one catalog entity kind as JSONB rows. The serial position
// column preserves insertion order for List.
type Table[T any] struct {
	pool     *pgxpool.Pool
	name     string
	notFound error
}

func NewTable[T any](pool *pgxpool.Pool, name string, notFound error) *Table[T] {
	return &Table[T]{pool: pool, name: name, notFound: notFound}
}

// NewCatalog returns the questions, characters and quizzes tables.
func NewCatalog(pool *pgxpool.Pool) app.Catalog {
	return app.Catalog{
		Questions:  NewTable[domain.Question](pool, "questions", domain.ErrQuestionNotFound),
		Characters: NewTable[domain.Character](pool, "characters", domain.ErrCharacterNotFound),
		Quizzes:    NewTable[domain.Quiz](pool, "quizzes", domain.ErrQuizNotFound),
	}
}

func (t *Table[T]) Get(ctx context.Context, id string) (T, error) {
	var (
		v   T
		raw []byte
	)
	err := t.pool.QueryRow(ctx, `SELECT data FROM `+t.name+` WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return v, t.notFound
	}
	if err != nil {
		return v, fmt.Errorf("load %s %s: %w", t.name, id, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("unmarshal %s %s: %w", t.name, id, err)
	}
	return v, nil
}

func (t *Table[T]) List(ctx context.Context) ([]T, error) {
	rows, err := t.pool.Query(ctx, `SELECT data FROM `+t.name+` ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.name, err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", t.name, err)
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", t.name, err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (t *Table[T]) Put(ctx context.Context, id string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s %s: %w", t.name, id, err)
	}
	_, err = t.pool.Exec(ctx, `INSERT INTO `+t.name+` (id, data) VALUES ($1, $2::jsonb)
ON CONFLICT (id) DO UPDATE SET data=EXCLUDED.data, updated_at=now()`, id, string(data))
	if err != nil {
		return fmt.Errorf("store %s %s: %w", t.name, id, err)
	}
	return nil
}

func (t *Table[T]) Delete(ctx context.Context, id string) error {
	tag, err := t.pool.Exec(ctx, `DELETE FROM `+t.name+` WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete %s %s: %w", t.name, id, err)
	}
	if tag.RowsAffected() == 0 {
		return t.notFound
	}
	return nil
}
