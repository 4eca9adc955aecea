package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/repository"
)

const (
	minWeightKg = 10
	maxWeightKg = 400
)

type ProgressService struct {
	sessions *SessionService
	store    repository.ProgressStore
	now      func() time.Time
}

func NewProgressService(sessions *SessionService, store repository.ProgressStore) *ProgressService {
	return &ProgressService{sessions: sessions, store: store, now: time.Now}
}

func (s *ProgressService) Log(ctx context.Context, id uuid.UUID, req models.LogWeightRequest) (*models.WeightEntry, error) {
	if req.WeightKg < minWeightKg || req.WeightKg > maxWeightKg || math.IsNaN(req.WeightKg) {
		return nil, &ValidationError{Fields: map[string]string{
			"weight_kg": fmt.Sprintf("O peso deve estar entre %d e %d kg", minWeightKg, maxWeightKg),
		}}
	}
	if _, err := s.sessions.Get(ctx, id); err != nil {
		return nil, err
	}

	recordedAt := s.now().UTC()
	if req.RecordedAt != nil {
		recordedAt = req.RecordedAt.UTC()
	}

	entry := &models.WeightEntry{SessionID: id, WeightKg: req.WeightKg, RecordedAt: recordedAt}
	if err := s.store.Add(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to record weight: %w", err)
	}
	return entry, nil
}

func (s *ProgressService) Get(ctx context.Context, id uuid.UUID) (*models.ProgressResponse, error) {
	rec, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	entries, err := s.store.ListBySession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load weight entries: %w", err)
	}

	resp := WeeklyProgress(entries, rec.Profile.Weight)
	return &resp, nil
}

// WeeklyProgress buckets entries into weeks counted from the first entry's day and
// keeps the last weight of each week. Weeks without entries are skipped; labels keep
// their real week number. With no entries the series is the profile weight alone.
func WeeklyProgress(entries []models.WeightEntry, profileWeightKg float64) models.ProgressResponse {
	if len(entries) == 0 {
		if profileWeightKg <= 0 {
			return models.ProgressResponse{Points: []models.ProgressPoint{}}
		}
		return models.ProgressResponse{Points: []models.ProgressPoint{{Label: weekLabel(1), WeightKg: profileWeightKg}}}
	}

	sorted := append([]models.WeightEntry(nil), entries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].RecordedAt.Before(sorted[j].RecordedAt) })

	first := sorted[0].RecordedAt.UTC()
	start := time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)

	points := []models.ProgressPoint{}
	lastWeek := -1
	for _, e := range sorted {
		week := int(e.RecordedAt.UTC().Sub(start).Hours()/24) / 7
		if week == lastWeek {
			points[len(points)-1].WeightKg = e.WeightKg
			continue
		}
		points = append(points, models.ProgressPoint{Label: weekLabel(week + 1), WeightKg: e.WeightKg})
		lastWeek = week
	}

	change := points[len(points)-1].WeightKg - points[0].WeightKg
	return models.ProgressResponse{Points: points, Change: math.Round(change*10) / 10}
}

func weekLabel(n int) string {
	return fmt.Sprintf("Semana %d", n)
}
