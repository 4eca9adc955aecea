package models

import "github.com/google/uuid"

type SlotName string

const (
	SlotMealPlan SlotName = "meal_plan"
	SlotChat     SlotName = "chat"
	SlotLabel    SlotName = "label"
)

var SlotNames = []SlotName{SlotMealPlan, SlotChat, SlotLabel}

type SlotStatus string

const (
	StatusIdle    SlotStatus = "idle"
	StatusPending SlotStatus = "pending"
	StatusSuccess SlotStatus = "success"
	StatusFailed  SlotStatus = "failed"
)

// SlotView is what the presentation layer renders for one slot.
// Message holds the interim placeholder while pending and the error text when failed.
type SlotView struct {
	Status     SlotStatus `json:"status"`
	Generation uint64     `json:"generation"`
	Message    string     `json:"message,omitempty"`
}

type SessionState struct {
	MealPlanSlot SlotView       `json:"meal_plan_slot"`
	ChatSlot     SlotView       `json:"chat_slot"`
	LabelSlot    SlotView       `json:"label_slot"`
	MealPlan     *MealPlan      `json:"meal_plan,omitempty"`
	Label        *LabelAnalysis `json:"label,omitempty"`
	History      []ChatMessage  `json:"history"`
}

// SlotUpdate is pushed to websocket subscribers on every slot transition.
type SlotUpdate struct {
	SessionID  uuid.UUID  `json:"session_id"`
	Slot       SlotName   `json:"slot"`
	Status     SlotStatus `json:"status"`
	Generation uint64     `json:"generation"`
	Message    string     `json:"message,omitempty"`
}
