package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"nutricionista-backend/internal/models"
)

// ErrNotFound is returned by every store when the requested row does not exist.
var ErrNotFound = errors.New("record not found")

// SessionStore persists session records: the profile plus the premium flag.
type SessionStore interface {
	Create(ctx context.Context, rec *models.SessionRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.SessionRecord, error)
	SetPremium(ctx context.Context, id uuid.UUID, premium bool) (*models.SessionRecord, error)
}

// MealPlanStore keeps the last successful plan per session.
type MealPlanStore interface {
	Save(ctx context.Context, plan *models.StoredMealPlan) error
	GetBySession(ctx context.Context, sessionID uuid.UUID) (*models.StoredMealPlan, error)
}

// ProgressStore records weight entries.
type ProgressStore interface {
	Add(ctx context.Context, entry *models.WeightEntry) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.WeightEntry, error)
}
