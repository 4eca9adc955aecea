package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestManager_GetReturnsSameController(t *testing.T) {
	m := NewManager(&fakeBackend{}, Options{}, time.Hour)
	id := uuid.New()

	first := m.Get(id)
	if second := m.Get(id); first != second {
		t.Fatalf("expected the same controller for one session")
	}
	if other := m.Get(uuid.New()); other == first {
		t.Fatalf("sessions must not share controllers")
	}
	if m.Len() != 2 {
		t.Fatalf("expected 2 controllers, got %d", m.Len())
	}

}

func TestManager_GetCountsAsUse(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := start
	m := NewManager(&fakeBackend{}, Options{Now: func() time.Time { return now }}, time.Hour)
	id := uuid.New()

	m.Get(id)
	now = start.Add(50 * time.Minute)
	m.Get(id)

	if n := m.EvictIdle(start.Add(80 * time.Minute)); n != 0 {
		t.Fatalf("controller fetched 30 minutes ago was evicted")
	}
}

func TestManager_EvictedHandleCannotForkSession(t *testing.T) {
	backend := &fakeBackend{reply: "Olá, Ana!"}
	m := NewManager(backend, Options{}, time.Minute)
	id := uuid.New()
	rec := anaRecord(true)

	stale := m.Get(id)
	if n := m.EvictIdle(time.Now().Add(2 * time.Minute)); n != 1 {
		t.Fatalf("expected the idle controller to be evicted, got %d", n)
	}
	live := m.Get(id)
	if live == stale {
		t.Fatalf("expected a fresh controller after eviction")
	}

	if _, err := stale.SendChatMessage(context.Background(), rec, "Oi"); !errors.Is(err, ErrRetired) {
		t.Fatalf("expected ErrRetired from the evicted controller, got %v", err)
	}
	if len(stale.History()) != 0 {
		t.Fatalf("evicted controller must not record turns, got %v", stale.History())
	}
	if _, chat, _ := backend.calls(); chat != 0 {
		t.Fatalf("evicted controller reached the backend %d times", chat)
	}

	attempts := 0
	err := m.Do(id, func(c *Controller) error {
		attempts++
		if attempts == 1 {
			c = stale
		}
		_, err := c.SendChatMessage(context.Background(), rec, "Oi")
		return err
	})
	if err != nil {
		t.Fatalf("Do should retry on the live controller, got %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if _, chat, _ := backend.calls(); chat != 1 {
		t.Fatalf("expected exactly one backend call, got %d", chat)
	}
	if got := len(live.History()); got != 2 {
		t.Fatalf("expected the live controller to hold the turn, got %d entries", got)
	}
}

func TestManager_EvictIdle(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	now := start
	m := NewManager(&fakeBackend{}, Options{Now: func() time.Time { return now }}, 2*time.Hour)

	m.Get(uuid.New())
	now = start.Add(90 * time.Minute)
	m.Get(uuid.New())

	if n := m.EvictIdle(start.Add(time.Hour)); n != 0 {
		t.Fatalf("nothing is idle yet, evicted %d", n)
	}
	if n := m.EvictIdle(start.Add(150 * time.Minute)); n != 1 {
		t.Fatalf("expected the older session to be evicted, got %d", n)
	}
	if m.Len() != 1 {
		t.Fatalf("expected 1 remaining, got %d", m.Len())
	}
}

func TestManager_EvictIdleKeepsPendingControllers(t *testing.T) {
	backend := gatedBackend()
	backend.reply = "Olá"
	m := NewManager(backend, Options{}, time.Minute)
	id := uuid.New()

	done := make(chan error, 1)
	go func() {
		_, err := m.Get(id).SendChatMessage(context.Background(), anaRecord(true), "Oi")
		done <- err
	}()
	waitEntered(t, backend)

	if n := m.EvictIdle(time.Now().Add(24 * time.Hour)); n != 0 {
		t.Fatalf("controller with a call in flight was evicted")
	}

	close(backend.gate)
	if err := <-done; err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if n := m.EvictIdle(time.Now().Add(24 * time.Hour)); n != 1 {
		t.Fatalf("expected eviction once the call settled, got %d", n)
	}
}

func TestManager_ZeroTTLNeverEvicts(t *testing.T) {
	m := NewManager(&fakeBackend{}, Options{}, 0)
	m.Get(uuid.New())

	if n := m.EvictIdle(time.Now().Add(365 * 24 * time.Hour)); n != 0 {
		t.Fatalf("expected no eviction with TTL disabled, got %d", n)
	}
}

func TestManager_StopIsIdempotent(t *testing.T) {
	m := NewManager(&fakeBackend{}, Options{}, time.Hour)
	m.Start()
	m.Stop()
	m.Stop()
}
