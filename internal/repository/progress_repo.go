package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"nutricionista-backend/internal/models"
)

type ProgressRepo struct {
	pool *pgxpool.Pool
}

func NewProgressRepo(pool *pgxpool.Pool) *ProgressRepo {
	return &ProgressRepo{pool: pool}
}

func (r *ProgressRepo) Add(ctx context.Context, e *models.WeightEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	query := `
		INSERT INTO weight_entries (id, session_id, weight_kg, recorded_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, e.ID, e.SessionID, e.WeightKg, e.RecordedAt)
	return err
}

// ListBySession returns entries oldest first.
func (r *ProgressRepo) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.WeightEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, session_id, weight_kg, recorded_at
		FROM weight_entries
		WHERE session_id = $1
		ORDER BY recorded_at ASC, id ASC
	`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.WeightEntry{}
	for rows.Next() {
		var e models.WeightEntry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.WeightKg, &e.RecordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
