package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nutricionista-backend/internal/middleware"
	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/repository"
)

const msgSessionNotFound = "Sessão não encontrada. Faça o cadastro novamente."

// SessionService owns the persisted session record and the tokens that name it.
type SessionService struct {
	store    repository.SessionStore
	jwt      *middleware.JWTAuth
	tokenTTL time.Duration
}

func NewSessionService(store repository.SessionStore, jwt *middleware.JWTAuth, tokenTTL time.Duration) *SessionService {
	return &SessionService{store: store, jwt: jwt, tokenTTL: tokenTTL}
}

// OnboardingOptions lists what the onboarding form offers and where it starts.
func OnboardingOptions() models.OnboardingOptions {
	sexes := []models.Sex{models.SexFemale, models.SexMale}
	levels := []models.ActivityLevel{models.ActivitySedentary, models.ActivityLight, models.ActivityModerate, models.ActivityVeryActive}
	goals := []models.Goal{models.GoalLoseWeight, models.GoalGainMuscle, models.GoalMaintain, models.GoalImproveHealth}

	opts := models.OnboardingOptions{
		Restrictions: append([]string(nil), models.RestrictionOptions...),
		Defaults:     models.DefaultProfile(),
	}
	for _, s := range sexes {
		opts.Sex = append(opts.Sex, models.EnumOption{Value: string(s), Label: s.Label()})
	}
	for _, a := range levels {
		opts.Activity = append(opts.Activity, models.EnumOption{Value: string(a), Label: a.Label()})
	}
	for _, g := range goals {
		opts.Goals = append(opts.Goals, models.EnumOption{Value: string(g), Label: g.Label()})
	}
	return opts
}

// Create completes onboarding: it stores the profile and issues the session token.
func (s *SessionService) Create(ctx context.Context, req models.CreateSessionRequest) (*models.SessionResponse, error) {
	profile := req.Profile
	profile.Name = strings.TrimSpace(profile.Name)
	profile.Preferences = strings.TrimSpace(profile.Preferences)
	profile.ApplyDefaults()
	profile.Restrictions = models.NormalizeRestrictions(profile.Restrictions)

	if fields := profile.Validate(); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	rec := &models.SessionRecord{
		ID:      uuid.New(),
		Profile: profile,
		Premium: req.Premium,
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.jwt.GenerateSessionToken(rec.ID, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &models.SessionResponse{Session: rec, Token: token, Route: models.RouteDashboard}, nil
}

func (s *SessionService) Get(ctx context.Context, id uuid.UUID) (*models.SessionRecord, error) {
	rec, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: msgSessionNotFound}
		}
		return nil, err
	}
	return rec, nil
}

// SetPremium is the paywall hook: it flips the flag and returns the updated record.
func (s *SessionService) SetPremium(ctx context.Context, id uuid.UUID, premium bool) (*models.SessionRecord, error) {
	rec, err := s.store.SetPremium(ctx, id, premium)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &NotFoundError{Message: msgSessionNotFound}
		}
		return nil, err
	}
	return rec, nil
}

// Route picks the landing screen: dashboard when a record exists, onboarding otherwise.
func (s *SessionService) Route(ctx context.Context, id uuid.UUID, authenticated bool) (models.RouteResponse, error) {
	if !authenticated {
		return models.RouteResponse{Route: models.RouteOnboarding}, nil
	}

	_, err := s.store.GetByID(ctx, id)
	switch {
	case err == nil:
		return models.RouteResponse{Route: models.RouteDashboard}, nil
	case errors.Is(err, repository.ErrNotFound):
		return models.RouteResponse{Route: models.RouteOnboarding}, nil
	default:
		return models.RouteResponse{}, err
	}
}
