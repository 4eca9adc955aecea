package models

import (
	"time"

	"github.com/google/uuid"
)

// MealPlanJob is a queued background meal-plan generation.
type MealPlanJob struct {
	ID         uuid.UUID `json:"id"`
	SessionID  uuid.UUID `json:"session_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type JobAccepted struct {
	JobID  uuid.UUID  `json:"job_id"`
	Status SlotStatus `json:"status"`
}

type JobCompletedEvent struct {
	JobID    uuid.UUID         `json:"job_id"`
	MealPlan *MealPlanResponse `json:"meal_plan"`
}

type JobFailedEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}
