package memory

import (
	"time"

	"character-match-service/internal/app"
	"character-match-service/internal/domain"
)

// NewCatalog returns an empty catalog backed by in-memory tables.
func NewCatalog() app.Catalog {
	return app.Catalog{
		Questions:  NewTable[domain.Question](domain.ErrQuestionNotFound),
		Characters: NewTable[domain.Character](domain.ErrCharacterNotFound),
		Quizzes:    NewTable[domain.Quiz](domain.ErrQuizNotFound),
	}
}

// CacheCatalog wraps each table of catalog in a CachedTable.
func CacheCatalog(catalog app.Catalog, ttl time.Duration) app.Catalog {
	return app.Catalog{
		Questions:  NewCachedTable(catalog.Questions, ttl),
		Characters: NewCachedTable(catalog.Characters, ttl),
		Quizzes:    NewCachedTable(catalog.Quizzes, ttl),
	}
}
