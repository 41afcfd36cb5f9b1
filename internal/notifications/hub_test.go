package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	defer unsubscribe()

	if err := hub.Publish(context.Background(), userID, Event{Type: EventThemeChanged}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	select {
	case event := <-ch:
		if event.Type != EventThemeChanged {
			t.Fatalf("expected event type %s, got %s", EventThemeChanged, event.Type)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubIsolatesUsers проверяет, что событие не уходит другому пользователю.
func TestHubIsolatesUsers(t *testing.T) {
	hub := NewHub()
	ch, unsubscribe := hub.Subscribe(uuid.New())
	defer unsubscribe()

	_ = hub.Publish(context.Background(), uuid.New(), Event{Type: EventOnboardingStep})

	select {
	case event := <-ch:
		t.Fatalf("unexpected event %s", event.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	userID := uuid.New()

	ch, unsubscribe := hub.Subscribe(userID)
	unsubscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
	if hub.Subscribers(userID) != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.Subscribers(userID))
	}
}

type recordingPublisher struct {
	events []Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ uuid.UUID, event Event) error {
	p.events = append(p.events, event)
	return p.err
}

// TestFanoutPublishesToAll проверяет рассылку во все публикаторы и объединение ошибок.
func TestFanoutPublishesToAll(t *testing.T) {
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: errors.New("broker down")}
	fanout := NewFanout(nil, ok, nil, failing)

	err := fanout.Publish(context.Background(), uuid.New(), Event{Type: EventTransactionsUpdated})
	if err == nil {
		t.Fatalf("expected joined error")
	}
	if len(ok.events) != 1 || len(failing.events) != 1 {
		t.Fatalf("expected both publishers to receive the event")
	}
}

// TestEncodeMessage проверяет формат сообщения для брокера.
func TestEncodeMessage(t *testing.T) {
	userID := uuid.New()
	body, err := EncodeMessage(userID, Event{Type: EventOnboardingCompleted, Data: map[string]int{"step": 5}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var msg map[string]any
	if err := json.Unmarshal(body, &msg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg["userId"] != userID.String() || msg["type"] != EventOnboardingCompleted {
		t.Fatalf("unexpected message %v", msg)
	}

	if got := RoutingKey("finance", EventThemeChanged); got != "finance.theme_changed" {
		t.Fatalf("expected finance.theme_changed, got %s", got)
	}
	if got := RoutingKey("", EventThemeChanged); got != EventThemeChanged {
		t.Fatalf("expected bare event type, got %s", got)
	}
}
