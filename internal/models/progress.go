package models

import (
	"time"

	"github.com/google/uuid"
)

type WeightEntry struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	WeightKg   float64   `json:"weight_kg"`
	RecordedAt time.Time `json:"recorded_at"`
}

type LogWeightRequest struct {
	WeightKg   float64    `json:"weight_kg"`
	RecordedAt *time.Time `json:"recorded_at"`
}

// ProgressPoint is one bar of the weekly chart.
type ProgressPoint struct {
	Label    string  `json:"label"`
	WeightKg float64 `json:"weight_kg"`
}

type ProgressResponse struct {
	Points []ProgressPoint `json:"points"`
	Change float64         `json:"change_kg"`
}
