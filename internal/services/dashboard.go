package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/nutrition"
	"nutricionista-backend/internal/session"
)

type DashboardService struct {
	sessions *SessionService
	manager  *session.Manager
	now      func() time.Time
}

func NewDashboardService(sessions *SessionService, manager *session.Manager, loc *time.Location) *DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardService{
		sessions: sessions,
		manager:  manager,
		now:      func() time.Time { return time.Now().In(loc) },
	}
}

// Build assembles the home screen: greeting, daily tip, weekly challenge, body
// metrics and slot state.
func (s *DashboardService) Build(ctx context.Context, id uuid.UUID) (*models.DashboardResponse, error) {
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	p := rec.Profile

	now := s.now()
	resp := &models.DashboardResponse{
		Greeting:      nutrition.Greeting(now, p.FirstName()),
		Tip:           nutrition.DailyTip,
		Challenge:     nutrition.WeeklyChallenge(rec.CreatedAt, now),
		Premium:       rec.Premium,
		Goal:          models.EnumOption{Value: string(p.Goal), Label: p.Goal.Label()},
		DailyCalories: nutrition.DailyCalories(p),
		State:         s.manager.Get(id).Snapshot(),
	}

	// Implausible measurements leave BMI out rather than failing the dashboard.
	if bmi, err := nutrition.CalculateBMI(p.Height, p.Weight); err == nil {
		resp.BMI = bmi
		resp.BMICategory = nutrition.BMICategory(bmi)
	}
	return resp, nil
}
