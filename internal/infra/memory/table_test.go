package memory

import (
	"context"
	"errors"
	"testing"

	"character-match-service/internal/domain"
)

func TestTableKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	table := NewTable[domain.Character](domain.ErrCharacterNotFound)

	for _, id := range []string{"b", "a", "c"} {
		if err := table.Put(ctx, id, domain.Character{ID: id, Name: id}); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	// Replacing keeps the original slot.
	_ = table.Put(ctx, "b", domain.Character{ID: "b", Name: "B"})

	list, _ := table.List(ctx)
	if len(list) != 3 || list[0].Name != "B" || list[1].ID != "a" || list[2].ID != "c" {
		t.Fatalf("unexpected order %+v", list)
	}

	if err := table.Delete(ctx, "a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, _ = table.List(ctx)
	if len(list) != 2 || list[1].ID != "c" {
		t.Fatalf("unexpected list after delete %+v", list)
	}
	if table.Len() != 2 {
		t.Fatalf("expected len 2, got %d", table.Len())
	}
}

func TestTableNotFound(t *testing.T) {
	ctx := context.Background()
	table := NewTable[domain.Quiz](domain.ErrQuizNotFound)

	if _, err := table.Get(ctx, "x"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if err := table.Delete(ctx, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found kind, got %v", err)
	}
}
