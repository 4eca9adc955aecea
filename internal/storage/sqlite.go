// Package storage is the single-file local alternative to the Postgres repositories.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/repository"
)

// SQLiteStore implements the session, meal-plan and progress stores.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

var (
	_ repository.SessionStore  = (*SQLiteStore)(nil)
	_ repository.MealPlanStore = (*SQLiteStore)(nil)
	_ repository.ProgressStore = (*SQLiteStore)(nil)
)

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dbPath != ":memory:" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    PRAGMA foreign_keys = ON;

    CREATE TABLE IF NOT EXISTS sessions (
        id TEXT PRIMARY KEY,
        profile_json TEXT NOT NULL,
        premium INTEGER NOT NULL DEFAULT 0,
        created_at TEXT NOT NULL,
        updated_at TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS meal_plans (
        session_id TEXT PRIMARY KEY,
        plan_json TEXT NOT NULL,
        generated_at TEXT NOT NULL,
        FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS weight_entries (
        id TEXT PRIMARY KEY,
        session_id TEXT NOT NULL,
        weight_kg REAL NOT NULL,
        recorded_at TEXT NOT NULL,
        FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_weight_entries_session ON weight_entries(session_id, recorded_at);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Fixed-width UTC timestamps sort correctly as TEXT.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(field, raw string) (time.Time, error) {
	t, err := time.Parse(timeLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse %s: %w", field, err)
	}
	return t, nil
}

// ──── Sessions ────

func (s *SQLiteStore) Create(ctx context.Context, rec *models.SessionRecord) error {
	profile, err := json.Marshal(rec.Profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}

	now := s.now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO sessions (id, profile_json, premium, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?)
    `, rec.ID.String(), string(profile), rec.Premium, formatTime(now), formatTime(now))
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetByID(ctx context.Context, id uuid.UUID) (*models.SessionRecord, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, profile_json, premium, created_at, updated_at
        FROM sessions WHERE id = ?
    `, id.String())
	return scanSession(row)
}

func (s *SQLiteStore) SetPremium(ctx context.Context, id uuid.UUID, premium bool) (*models.SessionRecord, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE sessions SET premium = ?, updated_at = ? WHERE id = ?`,
		premium, formatTime(s.now()), id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, repository.ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func scanSession(row *sql.Row) (*models.SessionRecord, error) {
	var (
		rec                  models.SessionRecord
		idStr, profile       string
		createdAt, updatedAt string
	)
	if err := row.Scan(&idStr, &profile, &rec.Premium, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	var err error
	if rec.ID, err = uuid.Parse(idStr); err != nil {
		return nil, fmt.Errorf("failed to parse session id: %w", err)
	}
	if err := json.Unmarshal([]byte(profile), &rec.Profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	if rec.CreatedAt, err = parseTime("created_at", createdAt); err != nil {
		return nil, err
	}
	if rec.UpdatedAt, err = parseTime("updated_at", updatedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

// ──── Meal plans ────

// Save replaces the session's plan wholesale.
func (s *SQLiteStore) Save(ctx context.Context, p *models.StoredMealPlan) error {
	plan, err := json.Marshal(p.Plan)
	if err != nil {
		return fmt.Errorf("failed to encode meal plan: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO meal_plans (session_id, plan_json, generated_at)
        VALUES (?, ?, ?)
        ON CONFLICT(session_id) DO UPDATE SET plan_json = excluded.plan_json, generated_at = excluded.generated_at
    `, p.SessionID.String(), string(plan), formatTime(p.GeneratedAt))
	if err != nil {
		return fmt.Errorf("failed to save meal plan: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetBySession(ctx context.Context, sessionID uuid.UUID) (*models.StoredMealPlan, error) {
	var plan, generatedAt string
	err := s.db.QueryRowContext(ctx, `SELECT plan_json, generated_at FROM meal_plans WHERE session_id = ?`,
		sessionID.String()).Scan(&plan, &generatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query meal plan: %w", err)
	}

	stored := &models.StoredMealPlan{SessionID: sessionID}
	if err := json.Unmarshal([]byte(plan), &stored.Plan); err != nil {
		return nil, fmt.Errorf("failed to decode meal plan: %w", err)
	}
	if stored.GeneratedAt, err = parseTime("generated_at", generatedAt); err != nil {
		return nil, err
	}
	return stored, nil
}

// ──── Progress ────

func (s *SQLiteStore) Add(ctx context.Context, e *models.WeightEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	_, err := s.db.ExecContext(ctx, `
        INSERT INTO weight_entries (id, session_id, weight_kg, recorded_at)
        VALUES (?, ?, ?, ?)
    `, e.ID.String(), e.SessionID.String(), e.WeightKg, formatTime(e.RecordedAt))
	if err != nil {
		return fmt.Errorf("failed to insert weight entry: %w", err)
	}
	return nil
}

// ListBySession returns entries oldest first.
func (s *SQLiteStore) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]models.WeightEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT id, weight_kg, recorded_at
        FROM weight_entries
        WHERE session_id = ?
        ORDER BY recorded_at ASC, id ASC
    `, sessionID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query weight entries: %w", err)
	}
	defer rows.Close()

	entries := []models.WeightEntry{}
	for rows.Next() {
		var idStr, recordedAt string
		e := models.WeightEntry{SessionID: sessionID}
		if err := rows.Scan(&idStr, &e.WeightKg, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan weight entry: %w", err)
		}
		if e.ID, err = uuid.Parse(idStr); err != nil {
			return nil, fmt.Errorf("failed to parse weight entry id: %w", err)
		}
		if e.RecordedAt, err = parseTime("recorded_at", recordedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
