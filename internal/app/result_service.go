package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"path"
	"strings"
	"time"

	"character-match-service/internal/domain"
	"go.uber.org/zap"
)

// Media areas, mirrored in the /media/{area}/{name} routes.
const (
	UploadsArea = "uploads"
	ResultsArea = "results"
)

var uploadExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// MediaURL is the public reference for a blob.
func MediaURL(area, name string) string {
	return "/media/" + area + "/" + name
}

// BlobKey maps a media reference back to its blob key.
func BlobKey(ref string) (string, bool) {
	rest, ok := strings.CutPrefix(ref, "/media/")
	if !ok || rest == "" {
		return "", false
	}
	return rest, true
}

// ResultService coordinates matching, selfie uploads and portrait generation.
type ResultService struct {
	sessions    *SessionService
	catalog     Catalog
	results     ResultRepository
	blobs       BlobStore
	transformer ImageTransformer
	events      *EventHub
	logger      *zap.Logger
	now         func() time.Time
	newID       func() string
}

func NewResultService(sessions *SessionService, results ResultRepository, blobs BlobStore, transformer ImageTransformer, events *EventHub, logger *zap.Logger) *ResultService {
	return &ResultService{
		sessions:    sessions,
		catalog:     sessions.catalog,
		results:     results,
		blobs:       blobs,
		transformer: transformer,
		events:      events,
		logger:      logger.Named("result"),
		now:         time.Now,
		newID:       newHexID,
	}
}

// WithClock swaps the time source; used for deterministic timestamps in tests.
func (s *ResultService) WithClock(now func() time.Time) *ResultService {
	s.now = now
	return s
}

// ComputeMatch scores the session and stores the result, replacing any
// earlier one. The character is attached only when the top score is positive.
func (s *ResultService) ComputeMatch(ctx context.Context, sessionID string) (domain.MatchResult, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.MatchResult{}, err
	}
	if session.QuizID == "" {
		return domain.MatchResult{}, domain.ErrNoQuizSelected
	}

	characters, err := s.catalog.Characters.List(ctx)
	if err != nil {
		return domain.MatchResult{}, err
	}
	scores, err := ComputeScores(ctx, session.Answers, characters, s.catalog.Questions)
	if err != nil {
		return domain.MatchResult{}, err
	}

	result := domain.MatchResult{
		SessionID: session.ID,
		QuizID:    session.QuizID,
		Scores:    scores,
		CreatedAt: s.now().UTC(),
	}
	if len(scores) > 0 {
		top := scores[0]
		result.TopMatch = &top
		if top.Score > 0 {
			character, err := s.catalog.Characters.Get(ctx, top.CharacterID)
			if err != nil {
				return domain.MatchResult{}, err
			}
			result.Character = &character
		}
	}

	// Expiry is decided once, here. A session that lapses after the result is
	// stored still gets its scored flag below and the call succeeds.
	if session.Expired(s.now()) {
		return domain.MatchResult{}, domain.ErrSessionExpired
	}
	if err := s.results.SaveMatch(ctx, result, session.ExpiresAt); err != nil {
		return domain.MatchResult{}, fmt.Errorf("save match: %w", err)
	}

	// Only flag the session as scored if no answer landed while we were scoring.
	_, err = s.sessions.sessions.Update(ctx, sessionID, func(current *domain.Session) error {
		if current.QuizID == session.QuizID && maps.Equal(current.Answers, session.Answers) {
			current.Scored = true
		}
		return nil
	})
	if err != nil {
		return domain.MatchResult{}, err
	}

	s.logger.Info("match computed",
		zap.String("session_id", sessionID),
		zap.Int("characters", len(scores)),
		zap.Bool("matched", result.Character != nil))
	s.events.Publish(Event{Type: EventMatchComputed, SessionID: sessionID, Payload: result, At: result.CreatedAt})
	return result, nil
}

// AssociateUpload stores a JPEG or PNG selfie and appends its reference to
// the session. The blob is written before the session is touched, so no
// recorded reference points at a missing file.
func (s *ResultService) AssociateUpload(ctx context.Context, sessionID string, content io.Reader, contentType string) (string, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return "", err
	}
	ext, ok := uploadExtensions[contentType]
	if !ok {
		return "", domain.ErrUnsupportedMediaType
	}

	name := sessionID + "_" + s.newID() + ext
	if err := s.blobs.Put(ctx, path.Join(UploadsArea, name), content, contentType); err != nil {
		return "", fmt.Errorf("store upload: %w", err)
	}

	ref := MediaURL(UploadsArea, name)
	_, err := s.sessions.update(ctx, sessionID, func(session *domain.Session) error {
		session.Uploads = append(session.Uploads, ref)
		return nil
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, path.Join(UploadsArea, name)); delErr != nil {
			s.logger.Warn("orphaned upload", zap.String("name", name), zap.Error(delErr))
		}
		return "", err
	}

	s.events.Publish(Event{Type: EventUploadStored, SessionID: sessionID, Payload: map[string]string{"path": ref}, At: s.now().UTC()})
	return ref, nil
}

// PortraitName is the deterministic output name for a session's portrait.
func PortraitName(sessionID string) string {
	return "portrait_" + sessionID + ".png"
}

// GenerateResultImage transforms the latest selfie into the session's
// portrait. Each call overwrites the previous portrait.
func (s *ResultService) GenerateResultImage(ctx context.Context, sessionID string) (string, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return "", err
	}
	latest, ok := session.LatestUpload()
	if !ok {
		return "", domain.ErrNoUpload
	}

	stored, err := s.results.Get(ctx, sessionID)
	if err != nil && !errors.Is(err, domain.ErrResultNotFound) {
		return "", err
	}
	if stored.Match == nil || stored.Match.TopMatch == nil {
		return "", domain.ErrNoMatch
	}

	key, ok := BlobKey(latest)
	if !ok {
		return "", domain.ErrBlobNotFound
	}
	src, err := s.blobs.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer src.Close()

	var out bytes.Buffer
	if err := s.transformer.Transform(ctx, &out, src, stored.Match.Character); err != nil {
		return "", fmt.Errorf("transform portrait: %w", err)
	}

	name := PortraitName(sessionID)
	if err := s.blobs.Put(ctx, path.Join(ResultsArea, name), &out, "image/png"); err != nil {
		return "", fmt.Errorf("store portrait: %w", err)
	}

	ref := MediaURL(ResultsArea, name)
	if err := s.results.SetPortrait(ctx, sessionID, ref, session.ExpiresAt); err != nil {
		return "", fmt.Errorf("record portrait: %w", err)
	}

	s.logger.Info("portrait generated", zap.String("session_id", sessionID), zap.String("source", latest))
	s.events.Publish(Event{Type: EventPortraitGenerated, SessionID: sessionID, Payload: map[string]string{"portrait_url": ref}, At: s.now().UTC()})
	return ref, nil
}

// GetResult returns the stored match with the latest portrait merged in.
func (s *ResultService) GetResult(ctx context.Context, sessionID string) (domain.MatchResult, error) {
	if _, err := s.sessions.Get(ctx, sessionID); err != nil {
		return domain.MatchResult{}, err
	}
	stored, err := s.results.Get(ctx, sessionID)
	if err != nil {
		return domain.MatchResult{}, err
	}
	if stored.Match == nil {
		return domain.MatchResult{}, domain.ErrResultNotFound
	}
	result := *stored.Match
	if stored.PortraitURL != "" {
		result.PortraitURL = stored.PortraitURL
	}
	return result, nil
}
