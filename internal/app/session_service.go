package app

import (
	"context"
	"time"

	"character-match-service/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultSessionTTLMinutes applies when a caller does not ask for a TTL.
const DefaultSessionTTLMinutes = 60

// SessionService owns the session lifecycle: creation, lookup with expiry,
// and answer recording.
type SessionService struct {
	sessions SessionRepository
	catalog  Catalog
	events   *EventHub
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
	lockQuiz bool
}

func NewSessionService(sessions SessionRepository, catalog Catalog, events *EventHub, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		catalog:  catalog,
		events:   events,
		logger:   logger.Named("session"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock swaps the time source; used for deterministic expiry in tests.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// WithQuizLock makes a session keep the quiz of its first answer.
func (s *SessionService) WithQuizLock(lock bool) *SessionService {
	s.lockQuiz = lock
	return s
}

// Create starts a session that expires ttlMinutes from now. Values below
// one minute are raised to one.
func (s *SessionService) Create(ctx context.Context, ttlMinutes int) (domain.Session, error) {
	if ttlMinutes < 1 {
		ttlMinutes = 1
	}
	now := s.now().UTC()
	session := domain.Session{
		ID:        s.newID(),
		CreatedAt: now,
		ExpiresAt: now.Add(time.Duration(ttlMinutes) * time.Minute),
		Answers:   make(map[string]string),
		Uploads:   []string{},
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return domain.Session{}, err
	}
	s.logger.Debug("session created", zap.String("session_id", session.ID), zap.Time("expires_at", session.ExpiresAt))
	return session, nil
}

// Get returns the session, or ErrSessionExpired once it is past its TTL.
// Expired sessions stay in the store.
func (s *SessionService) Get(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	if session.Expired(s.now()) {
		return domain.Session{}, domain.ErrSessionExpired
	}
	return session, nil
}

// update runs fn on a live session; expiry is re-checked inside the write.
func (s *SessionService) update(ctx context.Context, id string, fn func(*domain.Session) error) (domain.Session, error) {
	return s.sessions.Update(ctx, id, func(session *domain.Session) error {
		if session.Expired(s.now()) {
			return domain.ErrSessionExpired
		}
		return fn(session)
	})
}

// SubmitAnswer validates the choice against the question and records it,
// replacing any earlier answer to the same question.
func (s *SessionService) SubmitAnswer(ctx context.Context, sub domain.AnswerSubmission) (domain.Session, error) {
	if _, err := s.Get(ctx, sub.SessionID); err != nil {
		return domain.Session{}, err
	}
	if _, err := s.catalog.Quizzes.Get(ctx, sub.QuizID); err != nil {
		return domain.Session{}, err
	}
	q, err := s.catalog.Questions.Get(ctx, sub.QuestionID)
	if err != nil {
		return domain.Session{}, err
	}
	if _, ok := q.Choice(sub.ChoiceID); !ok {
		return domain.Session{}, domain.ErrInvalidChoice
	}

	session, err := s.update(ctx, sub.SessionID, func(session *domain.Session) error {
		if err := s.bindQuiz(session, sub.QuizID); err != nil {
			return err
		}
		if session.Answers == nil {
			session.Answers = make(map[string]string)
		}
		session.Answers[sub.QuestionID] = sub.ChoiceID
		session.Scored = false
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}

	s.events.Publish(Event{
		Type:      EventAnswerRecorded,
		SessionID: session.ID,
		Payload:   map[string]string{"question_id": sub.QuestionID, "choice_id": sub.ChoiceID},
		At:        s.now().UTC(),
	})
	return session, nil
}

// bindQuiz associates the session with quizID. By default the latest answer
// wins and a session may move between quizzes; with the quiz lock on, a
// bound session rejects answers for any other quiz.
func (s *SessionService) bindQuiz(session *domain.Session, quizID string) error {
	if session.QuizID == quizID {
		return nil
	}
	if session.QuizID != "" {
		if s.lockQuiz {
			return domain.ErrQuizLocked
		}
		s.logger.Info("session rebound to another quiz",
			zap.String("session_id", session.ID),
			zap.String("from", session.QuizID),
			zap.String("to", quizID))
	}
	session.QuizID = quizID
	return nil
}
