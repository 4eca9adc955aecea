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

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) Create(ctx context.Context, rec *models.SessionRecord) error {
	profileBytes, err := encodeProfile(rec.Profile)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sessions (id, profile_json, premium)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`

	return r.pool.QueryRow(ctx, query, rec.ID, profileBytes, rec.Premium).
		Scan(&rec.CreatedAt, &rec.UpdatedAt)
}

func (r *SessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.SessionRecord, error) {
	query := `SELECT id, profile_json, premium, created_at, updated_at FROM sessions WHERE id = $1`
	return scanSession(r.pool.QueryRow(ctx, query, id))
}

func (r *SessionRepo) SetPremium(ctx context.Context, id uuid.UUID, premium bool) (*models.SessionRecord, error) {
	query := `
		UPDATE sessions SET premium = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, profile_json, premium, created_at, updated_at`
	return scanSession(r.pool.QueryRow(ctx, query, id, premium))
}

// encodeProfile produces the profile_json JSONB value.
func encodeProfile(p models.UserProfile) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	return data, nil
}

func scanSession(row pgx.Row) (*models.SessionRecord, error) {
	rec := &models.SessionRecord{}
	var profile json.RawMessage

	if err := row.Scan(&rec.ID, &profile, &rec.Premium, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(profile, &rec.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return rec, nil
}
