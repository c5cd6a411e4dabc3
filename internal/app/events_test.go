package app_test

import (
	"context"
	"testing"
	"time"

	"character-match-service/internal/app"
	"character-match-service/internal/domain"
	"character-match-service/internal/seed"
)

func TestEventHubDeliversSessionEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	session, _ := f.sessions.Create(ctx, 60)

	ch, cancel := f.events.Subscribe(session.ID)
	defer cancel()
	other, cancelOther := f.events.Subscribe("someone-else")
	defer cancelOther()

	if _, err := f.sessions.SubmitAnswer(ctx, domain.AnswerSubmission{SessionID: session.ID, QuizID: seed.DefaultQuizID, QuestionID: "q1", ChoiceID: "c1"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.results.ComputeMatch(ctx, session.ID); err != nil {
		t.Fatalf("match: %v", err)
	}

	for _, want := range []string{app.EventAnswerRecorded, app.EventMatchComputed} {
		select {
		case e := <-ch:
			if e.Type != want || e.SessionID != session.ID {
				t.Fatalf("expected %s, got %+v", want, e)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
	select {
	case e := <-other:
		t.Fatalf("unrelated subscriber got %+v", e)
	default:
	}
}

func TestEventHubDropsOldestForSlowSubscriber(t *testing.T) {
	hub := app.NewEventHub()
	ch, cancel := hub.Subscribe("s")
	defer cancel()

	for i := 0; i < 20; i++ {
		hub.Publish(app.Event{Type: "tick", SessionID: "s", Payload: i})
	}

	var last app.Event
	for len(ch) > 0 {
		last = <-ch
	}
	if last.Payload != 19 {
		t.Fatalf("expected newest event kept, got %+v", last.Payload)
	}
}

func TestEventHubCancelClosesChannel(t *testing.T) {
	hub := app.NewEventHub()
	ch, cancel := hub.Subscribe("s")
	if hub.Subscribers("s") != 1 {
		t.Fatalf("expected one subscriber")
	}
	cancel()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if hub.Subscribers("s") != 0 {
		t.Fatalf("expected no subscribers after cancel")
	}
	hub.Publish(app.Event{SessionID: "s"})
}
