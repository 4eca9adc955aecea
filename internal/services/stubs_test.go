package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutricionista-backend/internal/middleware"
	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/repository"
	"nutricionista-backend/internal/schema"
	"nutricionista-backend/internal/session"
)

// memStore is an in-memory SessionStore, MealPlanStore and ProgressStore.
type memStore struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]models.SessionRecord
	plans    map[uuid.UUID]models.StoredMealPlan
	weights  []models.WeightEntry
	saveErr  error
}

func newMemStore() *memStore {
	return &memStore{
		sessions: make(map[uuid.UUID]models.SessionRecord),
		plans:    make(map[uuid.UUID]models.StoredMealPlan),
	}
}

func (m *memStore) Create(ctx context.Context, rec *models.SessionRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now
	m.sessions[rec.ID] = *rec
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*models.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &rec, nil
}

func (m *memStore) SetPremium(ctx context.Context, id uuid.UUID, premium bool) (*models.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	rec.Premium = premium
	m.sessions[id] = rec
	return &rec, nil
}

func (m *memStore) Save(ctx context.Context, p *models.StoredMealPlan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.plans[p.SessionID] = *p
	return nil
}

func (m *memStore) GetBySession(ctx context.Context, id uuid.UUID) (*models.StoredMealPlan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) Add(ctx context.Context, e *models.WeightEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.weights = append(m.weights, *e)
	return nil
}

func (m *memStore) ListBySession(ctx context.Context, id uuid.UUID) ([]models.WeightEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.WeightEntry{}
	for _, e := range m.weights {
		if e.SessionID == id {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RecordedAt.Before(out[j].RecordedAt) })
	return out, nil
}

// stubBackend answers every capability with canned text.
type stubBackend struct {
	structured string
	reply      string
	analysis   string
	err        error

	chatSession string
}

func (b *stubBackend) GenerateStructured(ctx context.Context, prompt string, contract *schema.Schema) (string, error) {
	return b.structured, b.err
}

func (b *stubBackend) GenerateWithHistory(ctx context.Context, instruction string, history []models.ChatMessage, message string) (string, error) {
	b.chatSession = callSession(ctx)
	return b.reply, b.err
}

func (b *stubBackend) AnalyzeImage(ctx context.Context, image []byte, mimeType, instruction string) (string, error) {
	return b.analysis, b.err
}

const testPlanJSON = `{
  "breakfast": {"name": "Ovos mexidos", "calories": 300, "description": "Dois ovos com pão integral", "substitutions": ["Tapioca", "Iogurte com aveia"]},
  "morning_snack": {"name": "Banana", "calories": 90, "description": "Uma banana prata", "substitutions": ["Maçã", "Pera"]},
  "lunch": {"name": "Arroz, feijão e frango", "calories": 550, "description": "Prato feito equilibrado", "substitutions": ["Peixe", "Carne magra"]},
  "afternoon_snack": {"name": "Castanhas", "calories": 160, "description": "Um punhado de castanhas", "substitutions": ["Amendoim", "Queijo branco"]},
  "dinner": {"name": "Omelete", "calories": 400, "description": "Omelete com legumes", "substitutions": ["Sopa", "Salada com atum"]}
}`

func anaProfile() models.UserProfile {
	return models.UserProfile{
		Name: "Ana Souza", Age: 30, Weight: 68, Height: 165,
		Sex: models.SexFemale, ActivityLevel: models.ActivityLight, Goal: models.GoalLoseWeight,
		Restrictions: []string{},
	}
}

type testEnv struct {
	store    *memStore
	jwt      *middleware.JWTAuth
	sessions *SessionService
	manager  *session.Manager
	backend  *stubBackend
}

func newTestEnv() *testEnv {
	store := newMemStore()
	jwt := middleware.NewJWTAuth("test-secret")
	backend := &stubBackend{structured: testPlanJSON, reply: "Olá, Ana!", analysis: "Veredito: Recomendado"}
	return &testEnv{
		store:    store,
		jwt:      jwt,
		sessions: NewSessionService(store, jwt, time.Hour),
		manager:  session.NewManager(backend, session.Options{}, 0),
		backend:  backend,
	}
}

func (e *testEnv) createSession(premium bool) *models.SessionRecord {
	rec := &models.SessionRecord{ID: uuid.New(), Profile: anaProfile(), Premium: premium}
	e.store.Create(context.Background(), rec)
	return rec
}
