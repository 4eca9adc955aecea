package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutricionista-backend/internal/models"
)

type MealPlanRepo struct {
	pool *pgxpool.Pool
}

func NewMealPlanRepo(pool *pgxpool.Pool) *MealPlanRepo {
	return &MealPlanRepo{pool: pool}
}

// Save replaces the session's plan wholesale.
func (r *MealPlanRepo) Save(ctx context.Context, p *models.StoredMealPlan) error {
	planBytes, err := json.Marshal(p.Plan)
	if err != nil {
		return fmt.Errorf("failed to encode meal plan: %w", err)
	}

	query := `
		INSERT INTO meal_plans (session_id, plan_json, generated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (session_id) DO UPDATE
		SET plan_json = EXCLUDED.plan_json, generated_at = EXCLUDED.generated_at`

	_, err = r.pool.Exec(ctx, query, p.SessionID, planBytes, p.GeneratedAt)
	return err
}

func (r *MealPlanRepo) GetBySession(ctx context.Context, sessionID uuid.UUID) (*models.StoredMealPlan, error) {
	p := &models.StoredMealPlan{}
	var plan json.RawMessage

	query := `SELECT session_id, plan_json, generated_at FROM meal_plans WHERE session_id = $1`
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(&p.SessionID, &plan, &p.GeneratedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := json.Unmarshal(plan, &p.Plan); err != nil {
		return nil, fmt.Errorf("failed to decode meal plan: %w", err)
	}
	return p, nil
}
