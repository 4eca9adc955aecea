package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"nutricionista-backend/internal/session"
)

func TestAssistantService_GenerateMealPlanPersists(t *testing.T) {
	env := newTestEnv()
	rec := env.createSession(true)
	svc := NewAssistantService(env.sessions, env.store, env.manager)
	ctx := context.Background()

	resp, err := svc.GenerateMealPlan(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GenerateMealPlan failed: %v", err)
	}
	if resp.TotalCalories != 1500 || len(resp.Cards) != 5 || resp.GeneratedAt == nil {
		t.Fatalf("unexpected response: total=%v cards=%d", resp.TotalCalories, len(resp.Cards))
	}
	if resp.Cards[0].Title != "Café da Manhã" {
		t.Errorf("expected breakfast first, got %q", resp.Cards[0].Title)
	}

	stored, ok := env.store.plans[rec.ID]
	if !ok || stored.Plan.Lunch.Name != "Arroz, feijão e frango" {
		t.Fatalf("expected plan to be stored, got %+v", stored)
	}

	again, err := svc.MealPlan(ctx, rec.ID)
	if err != nil {
		t.Fatalf("MealPlan failed: %v", err)
	}
	if again.Plan.Dinner.Name != "Omelete" {
		t.Fatalf("expected stored plan, got %+v", again.Plan)
	}
}

func TestAssistantService_PersistenceFailureStillReturnsPlan(t *testing.T) {
	env := newTestEnv()
	env.store.saveErr = errors.New("disk full")
	rec := env.createSession(true)
	svc := NewAssistantService(env.sessions, env.store, env.manager)

	resp, err := svc.GenerateMealPlan(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("GenerateMealPlan failed: %v", err)
	}
	if resp.Plan == nil {
		t.Fatal("expected plan in response")
	}

	// Falls back to the controller's copy.
	fallback, err := svc.MealPlan(context.Background(), rec.ID)
	if err != nil || fallback.Plan == nil {
		t.Fatalf("expected in-memory plan, got %v", err)
	}
}

func TestAssistantService_NotPremium(t *testing.T) {
	env := newTestEnv()
	rec := env.createSession(false)
	svc := NewAssistantService(env.sessions, env.store, env.manager)

	_, err := svc.GenerateMealPlan(context.Background(), rec.ID)

	var denied *session.AccessDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected AccessDeniedError, got %T: %v", err, err)
	}
	if len(env.store.plans) != 0 {
		t.Fatal("nothing should be stored")
	}
}

func TestAssistantService_MissingPlanAndSession(t *testing.T) {
	env := newTestEnv()
	rec := env.createSession(true)
	svc := NewAssistantService(env.sessions, env.store, env.manager)
	ctx := context.Background()

	if _, err := svc.MealPlan(ctx, rec.ID); err == nil {
		t.Fatal("expected NotFoundError before any plan exists")
	} else if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %T", err)
	}

	if _, err := svc.State(ctx, uuid.New()); err == nil {
		t.Fatal("expected NotFoundError for unknown session")
	} else if _, ok := err.(*NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
}

func TestAssistantService_ChatAndLabel(t *testing.T) {
	env := newTestEnv()
	rec := env.createSession(true)
	svc := NewAssistantService(env.sessions, env.store, env.manager)
	ctx := context.Background()

	resp, err := svc.SendChatMessage(ctx, rec.ID, "Oi")
	if err != nil {
		t.Fatalf("SendChatMessage failed: %v", err)
	}
	if resp.Reply.Content != "Olá, Ana!" || len(resp.History) != 2 {
		t.Fatalf("unexpected chat response: %+v", resp)
	}

	label, err := svc.AnalyzeLabel(ctx, rec.ID, []byte{0xFF, 0xD8, 0xFF}, "image/jpeg")
	if err != nil {
		t.Fatalf("AnalyzeLabel failed: %v", err)
	}
	if label.Verdict != "Recomendado" {
		t.Fatalf("unexpected verdict: %q", label.Verdict)
	}

	state, err := svc.State(ctx, rec.ID)
	if err != nil {
		t.Fatalf("State failed: %v", err)
	}
	if state.Label == nil || len(state.History) != 2 {
		t.Fatalf("state does not reflect the calls: %+v", state)
	}

	svc.ResetChat(ctx, rec.ID)
	if n := len(svc.ChatHistory(rec.ID)); n != 0 {
		t.Fatalf("expected empty history after reset, got %d", n)
	}
}
