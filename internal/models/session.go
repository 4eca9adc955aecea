package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionRecord is the persisted state of one user: the profile plus the premium flag.
type SessionRecord struct {
	ID        uuid.UUID   `json:"id"`
	Profile   UserProfile `json:"profile"`
	Premium   bool        `json:"premium"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// Routes a client lands on depending on whether a record exists.
const (
	RouteOnboarding = "onboarding"
	RouteDashboard  = "dashboard"
)

type CreateSessionRequest struct {
	Profile UserProfile `json:"profile"`
	Premium bool        `json:"premium"`
}

type UpdatePremiumRequest struct {
	Premium bool `json:"premium"`
}

type SessionResponse struct {
	Session *SessionRecord `json:"session"`
	Token   string         `json:"token,omitempty"`
	Route   string         `json:"route"`
}

type RouteResponse struct {
	Route string `json:"route"`
}

type EnumOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type OnboardingOptions struct {
	Sex          []EnumOption `json:"sex"`
	Activity     []EnumOption `json:"activity_level"`
	Goals        []EnumOption `json:"goal"`
	Restrictions []string     `json:"restrictions"`
	Defaults     UserProfile  `json:"defaults"`
}
