package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"nutricionista-backend/internal/logger"
	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/repository"
	"nutricionista-backend/internal/session"
)

const msgNoMealPlan = "Você ainda não gerou um plano alimentar."

// AssistantService binds the per-session controllers to persisted records: it loads
// the record for the access gate and stores the artifacts that outlive the process.
type AssistantService struct {
	sessions *SessionService
	plans    repository.MealPlanStore
	manager  *session.Manager
	now      func() time.Time
}

func NewAssistantService(sessions *SessionService, plans repository.MealPlanStore, manager *session.Manager) *AssistantService {
	return &AssistantService{sessions: sessions, plans: plans, manager: manager, now: time.Now}
}

func (s *AssistantService) GenerateMealPlan(ctx context.Context, id uuid.UUID) (*models.MealPlanResponse, error) {
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var plan *models.MealPlan
	err = s.manager.Do(id, func(c *session.Controller) error {
		var err error
		plan, err = c.RequestMealPlan(ctx, rec)
		return err
	})
	if err != nil {
		return nil, err
	}

	generatedAt := s.now().UTC()
	stored := &models.StoredMealPlan{SessionID: id, Plan: *plan, GeneratedAt: generatedAt}
	if err := s.plans.Save(ctx, stored); err != nil {
		// The plan is still valid for this process; only persistence failed.
		logger.Error("failed to persist meal plan", "session_id", id, "error", err)
	}

	return mealPlanResponse(plan, &generatedAt), nil
}

// MealPlan returns the last stored plan, falling back to the in-memory one.
func (s *AssistantService) MealPlan(ctx context.Context, id uuid.UUID) (*models.MealPlanResponse, error) {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return nil, err
	}

	stored, err := s.plans.GetBySession(ctx, id)
	switch {
	case err == nil:
		return mealPlanResponse(&stored.Plan, &stored.GeneratedAt), nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	if plan := s.manager.Get(id).Snapshot().MealPlan; plan != nil {
		return mealPlanResponse(plan, nil), nil
	}
	return nil, &NotFoundError{Message: msgNoMealPlan}
}

func (s *AssistantService) AbandonMealPlan(ctx context.Context, id uuid.UUID) bool {
	return s.manager.Get(id).Abandon(ctx, models.SlotMealPlan)
}

func (s *AssistantService) SendChatMessage(ctx context.Context, id uuid.UUID, text string) (*models.ChatResponse, error) {
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var resp *models.ChatResponse
	err = s.manager.Do(id, func(c *session.Controller) error {
		reply, err := c.SendChatMessage(ctx, rec, text)
		if err != nil {
			return err
		}
		resp = &models.ChatResponse{Reply: reply, History: c.History()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *AssistantService) ChatHistory(id uuid.UUID) []models.ChatMessage {
	return s.manager.Get(id).History()
}

func (s *AssistantService) ResetChat(ctx context.Context, id uuid.UUID) {
	s.manager.Get(id).ResetChat(ctx)
}

func (s *AssistantService) AnalyzeLabel(ctx context.Context, id uuid.UUID, image []byte, mimeType string) (*models.LabelAnalysis, error) {
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var result *models.LabelAnalysis
	err = s.manager.Do(id, func(c *session.Controller) error {
		var err error
		result, err = c.AnalyzeLabel(ctx, rec, image, mimeType)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *AssistantService) AbandonLabel(ctx context.Context, id uuid.UUID) bool {
	return s.manager.Get(id).Abandon(ctx, models.SlotLabel)
}

func (s *AssistantService) State(ctx context.Context, id uuid.UUID) (*models.SessionState, error) {
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return nil, err
	}
	state := s.manager.Get(id).Snapshot()
	return &state, nil
}

func mealPlanResponse(plan *models.MealPlan, generatedAt *time.Time) *models.MealPlanResponse {
	return &models.MealPlanResponse{
		Plan:          plan,
		Cards:         plan.Cards(),
		TotalCalories: plan.TotalCalories(),
		GeneratedAt:   generatedAt,
	}
}
