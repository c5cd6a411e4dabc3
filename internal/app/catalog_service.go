package app

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"character-match-service/internal/domain"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogService is the CRUD surface over questions, characters and quizzes.
type CatalogService struct {
	catalog  Catalog
	validate *validator.Validate
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
}

func NewCatalogService(catalog Catalog, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		catalog:  catalog,
		validate: validator.New(),
		logger:   logger.Named("catalog"),
		now:      time.Now,
		newID:    newHexID,
	}
}

// WithClock swaps the time source; used for deterministic timestamps in tests.
func (s *CatalogService) WithClock(now func() time.Time) *CatalogService {
	s.now = now
	return s
}

// Catalog exposes the underlying tables to the other services.
func (s *CatalogService) Catalog() Catalog {
	return s.catalog
}

func newHexID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (s *CatalogService) check(v any) error {
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// Quizzes

func (s *CatalogService) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	return s.catalog.Quizzes.List(ctx)
}

func (s *CatalogService) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	return s.catalog.Quizzes.Get(ctx, id)
}

// QuizQuestions resolves a quiz's question IDs in display order: ascending
// Order, ties kept in the quiz's own sequence. A dangling ID is NotFound.
func (s *CatalogService) QuizQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	quiz, err := s.catalog.Quizzes.Get(ctx, quizID)
	if err != nil {
		return nil, err
	}
	questions := make([]domain.Question, 0, len(quiz.QuestionIDs))
	for _, id := range quiz.QuestionIDs {
		q, err := s.catalog.Questions.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Order < questions[j].Order
	})
	return questions, nil
}

func (s *CatalogService) CreateQuiz(ctx context.Context, in domain.QuizInput) (domain.Quiz, error) {
	if err := s.check(in); err != nil {
		return domain.Quiz{}, err
	}
	now := s.now().UTC()
	quiz := domain.Quiz{
		ID:          s.newID(),
		Title:       in.Title,
		Description: in.Description,
		QuestionIDs: nonNilIDs(in.QuestionIDs),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.catalog.Quizzes.Put(ctx, quiz.ID, quiz); err != nil {
		return domain.Quiz{}, err
	}
	s.logger.Info("quiz created", zap.String("quiz_id", quiz.ID))
	return quiz, nil
}

// UpdateQuiz applies the set fields and refreshes UpdatedAt. Question IDs
// are not checked against the question table.
func (s *CatalogService) UpdateQuiz(ctx context.Context, id string, patch domain.QuizPatch) (domain.Quiz, error) {
	if err := s.check(patch); err != nil {
		return domain.Quiz{}, err
	}
	quiz, err := s.catalog.Quizzes.Get(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if patch.Title != nil {
		quiz.Title = *patch.Title
	}
	if patch.Description != nil {
		quiz.Description = *patch.Description
	}
	if patch.QuestionIDs != nil {
		quiz.QuestionIDs = nonNilIDs(*patch.QuestionIDs)
	}
	quiz.UpdatedAt = s.now().UTC()
	if err := s.catalog.Quizzes.Put(ctx, id, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *CatalogService) DeleteQuiz(ctx context.Context, id string) error {
	return s.catalog.Quizzes.Delete(ctx, id)
}

// Questions

func (s *CatalogService) ListQuestions(ctx context.Context) ([]domain.Question, error) {
	return s.catalog.Questions.List(ctx)
}

func (s *CatalogService) GetQuestion(ctx context.Context, id string) (domain.Question, error) {
	return s.catalog.Questions.Get(ctx, id)
}

func (s *CatalogService) CreateQuestion(ctx context.Context, in domain.QuestionInput) (domain.Question, error) {
	if err := s.check(in); err != nil {
		return domain.Question{}, err
	}
	q := domain.Question{
		ID:      s.newID(),
		Text:    in.Text,
		Choices: in.Choices,
		Order:   in.Order,
	}
	if err := s.catalog.Questions.Put(ctx, q.ID, q); err != nil {
		return domain.Question{}, err
	}
	s.logger.Info("question created", zap.String("question_id", q.ID))
	return q, nil
}

// UpdateQuestion replaces the set fields. Sessions already scored keep
// their stored results; nothing is rescored.
func (s *CatalogService) UpdateQuestion(ctx context.Context, id string, patch domain.QuestionPatch) (domain.Question, error) {
	if err := s.check(patch); err != nil {
		return domain.Question{}, err
	}
	q, err := s.catalog.Questions.Get(ctx, id)
	if err != nil {
		return domain.Question{}, err
	}
	if patch.Text != nil {
		q.Text = *patch.Text
	}
	if patch.Choices != nil {
		q.Choices = *patch.Choices
	}
	if patch.Order != nil {
		q.Order = *patch.Order
	}
	if err := s.catalog.Questions.Put(ctx, id, q); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// DeleteQuestion does not touch quizzes that still reference id.
func (s *CatalogService) DeleteQuestion(ctx context.Context, id string) error {
	return s.catalog.Questions.Delete(ctx, id)
}

// Characters

func (s *CatalogService) ListCharacters(ctx context.Context) ([]domain.Character, error) {
	return s.catalog.Characters.List(ctx)
}

func (s *CatalogService) GetCharacter(ctx context.Context, id string) (domain.Character, error) {
	return s.catalog.Characters.Get(ctx, id)
}

func (s *CatalogService) CreateCharacter(ctx context.Context, in domain.CharacterInput) (domain.Character, error) {
	if err := s.check(in); err != nil {
		return domain.Character{}, err
	}
	c := domain.Character{
		ID:          s.newID(),
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		Traits:      in.Traits,
	}
	if c.Traits == nil {
		c.Traits = map[string]float64{}
	}
	if err := s.catalog.Characters.Put(ctx, c.ID, c); err != nil {
		return domain.Character{}, err
	}
	s.logger.Info("character created", zap.String("character_id", c.ID))
	return c, nil
}

func (s *CatalogService) UpdateCharacter(ctx context.Context, id string, patch domain.CharacterPatch) (domain.Character, error) {
	if err := s.check(patch); err != nil {
		return domain.Character{}, err
	}
	c, err := s.catalog.Characters.Get(ctx, id)
	if err != nil {
		return domain.Character{}, err
	}
	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Description != nil {
		c.Description = *patch.Description
	}
	if patch.ImageURL != nil {
		c.ImageURL = *patch.ImageURL
	}
	if patch.Traits != nil {
		c.Traits = *patch.Traits
	}
	if err := s.catalog.Characters.Put(ctx, id, c); err != nil {
		return domain.Character{}, err
	}
	return c, nil
}

func (s *CatalogService) DeleteCharacter(ctx context.Context, id string) error {
	return s.catalog.Characters.Delete(ctx, id)
}

func nonNilIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
