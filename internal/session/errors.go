package session

import (
	"fmt"

	"nutricionista-backend/internal/models"
)

// AccessDeniedError is returned before any backend call when the session is not premium.
type AccessDeniedError struct {
	Slot    models.SlotName
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// GenerationError means the meal-plan call failed or returned a nonconforming document.
type GenerationError struct {
	Message string
	Err     error
}

func (e *GenerationError) Error() string { return fmt.Sprintf("%s: %v", e.Message, e.Err) }
func (e *GenerationError) Unwrap() error { return e.Err }

// ChatError is only surfaced by policies that keep failures out of the transcript.
type ChatError struct {
	Message string
	Err     error
}

func (e *ChatError) Error() string { return fmt.Sprintf("%s: %v", e.Message, e.Err) }
func (e *ChatError) Unwrap() error { return e.Err }

type AnalysisError struct {
	Message string
	Err     error
}

func (e *AnalysisError) Error() string { return fmt.Sprintf("%s: %v", e.Message, e.Err) }
func (e *AnalysisError) Unwrap() error { return e.Err }

// InputError rejects a request whose input can never succeed, such as an unreadable image.
type InputError struct {
	Message string
	Fields  map[string]string
}

func (e *InputError) Error() string { return e.Message }

// BusyError is returned when the slot already has a call in flight.
type BusyError struct {
	Slot    models.SlotName
	Message string
}

func (e *BusyError) Error() string { return e.Message }

// StaleError is returned to a caller whose request was abandoned while in flight.
// Its result has been discarded.
type StaleError struct {
	Slot models.SlotName
}

func (e *StaleError) Error() string {
	return fmt.Sprintf("%s request was abandoned before it completed", e.Slot)
}

// ErrEmptyMessage is returned for blank chat input; nothing is recorded or sent.
var ErrEmptyMessage = &InputError{Message: msgEmptyMessage}
