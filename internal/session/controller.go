package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"nutricionista-backend/internal/logger"
	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/schema"
)

var errEmptyReply = errors.New("backend returned an empty reply")

// ErrRetired is returned by a controller the Manager has evicted. Callers fetch the
// session's controller again; Manager.Do does that for them.
var ErrRetired = errors.New("session controller retired")

type Options struct {
	// Timeout bounds every backend call. Zero disables the bound.
	Timeout  time.Duration
	Policy   ChatFailurePolicy
	Notifier Notifier
	Now      func() time.Time
}

type slot struct {
	status     models.SlotStatus
	generation uint64
	message    string
}

// Controller owns one session's conversation history, generated artifacts and the
// three request slots. It is safe for concurrent use; backend calls run outside the lock.
type Controller struct {
	id       uuid.UUID
	backend  Backend
	timeout  time.Duration
	policy   ChatFailurePolicy
	notifier Notifier
	now      func() time.Time

	mu       sync.Mutex
	slots    map[models.SlotName]*slot
	history  []models.ChatMessage
	plan     *models.MealPlan
	label    *models.LabelAnalysis
	lastUsed time.Time
	retired  bool
}

func NewController(id uuid.UUID, backend Backend, opts Options) *Controller {
	c := &Controller{
		id:       id,
		backend:  backend,
		timeout:  opts.Timeout,
		policy:   opts.Policy,
		notifier: opts.Notifier,
		now:      opts.Now,
		slots:    make(map[models.SlotName]*slot, len(models.SlotNames)),
		history:  []models.ChatMessage{},
	}
	if c.policy == nil {
		c.policy = DefaultChatFailurePolicy
	}
	if c.notifier == nil {
		c.notifier = noopNotifier{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	for _, name := range models.SlotNames {
		c.slots[name] = &slot{status: models.StatusIdle}
	}
	c.lastUsed = c.now()
	return c
}

func (c *Controller) ID() uuid.UUID {
	return c.id
}

// RequestMealPlan generates a new plan for the session's profile. The previous plan is
// dropped as soon as the request starts.
func (c *Controller) RequestMealPlan(ctx context.Context, rec *models.SessionRecord) (*models.MealPlan, error) {
	if err := checkAccess(rec, models.SlotMealPlan); err != nil {
		return nil, err
	}
	if err := checkProfile(rec.Profile); err != nil {
		return nil, err
	}

	gen, err := c.begin(ctx, models.SlotMealPlan, "", func() { c.plan = nil })
	if err != nil {
		return nil, err
	}

	callCtx, cancel := c.callContext(ctx)
	raw, err := c.backend.GenerateStructured(callCtx, buildMealPlanPrompt(rec.Profile), schema.MealPlan)
	cancel()

	var plan *models.MealPlan
	if err == nil {
		plan, err = schema.DecodeMealPlan(raw)
	}
	if err != nil {
		logger.Warn("meal plan generation failed", "session_id", c.id, "error", err)
		if !c.finish(ctx, models.SlotMealPlan, gen, models.StatusFailed, msgMealPlanFailed, nil) {
			return nil, &StaleError{Slot: models.SlotMealPlan}
		}
		return nil, &GenerationError{Message: msgMealPlanFailed, Err: err}
	}

	if !c.finish(ctx, models.SlotMealPlan, gen, models.StatusSuccess, "", func() { c.plan = plan }) {
		return nil, &StaleError{Slot: models.SlotMealPlan}
	}
	return plan, nil
}

// SendChatMessage appends the user's text to the transcript right away, asks the
// backend for a reply and appends that too. Failures are reported through the
// configured ChatFailurePolicy.
func (c *Controller) SendChatMessage(ctx context.Context, rec *models.SessionRecord, text string) (models.ChatMessage, error) {
	if err := checkAccess(rec, models.SlotChat); err != nil {
		return models.ChatMessage{}, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}
	if err := checkProfile(rec.Profile); err != nil {
		return models.ChatMessage{}, err
	}

	var prior []models.ChatMessage
	gen, err := c.begin(ctx, models.SlotChat, "", func() {
		prior = append([]models.ChatMessage(nil), c.history...)
		c.history = append(c.history, models.ChatMessage{Role: models.RoleUser, Content: text})
	})
	if err != nil {
		return models.ChatMessage{}, err
	}

	callCtx, cancel := c.callContext(ctx)
	reply, err := c.backend.GenerateWithHistory(callCtx, buildChatInstruction(rec.Profile), prior, text)
	cancel()

	reply = strings.TrimSpace(reply)
	if err == nil && reply == "" {
		err = errEmptyReply
	}

	if err != nil {
		logger.Warn("chat reply failed", "session_id", c.id, "error", err)
		msg, policyErr := c.policy.OnChatFailure(err)
		var apply func()
		if policyErr == nil {
			apply = func() { c.history = append(c.history, msg) }
		}
		if !c.finish(ctx, models.SlotChat, gen, models.StatusFailed, msgChatFailed, apply) {
			return models.ChatMessage{}, &StaleError{Slot: models.SlotChat}
		}
		return msg, policyErr
	}

	msg := models.ChatMessage{Role: models.RoleAssistant, Content: reply}
	if !c.finish(ctx, models.SlotChat, gen, models.StatusSuccess, "", func() { c.history = append(c.history, msg) }) {
		return models.ChatMessage{}, &StaleError{Slot: models.SlotChat}
	}
	return msg, nil
}

// AnalyzeLabel sends a label photo to the backend. While the call is pending the label
// slot carries an "analyzing" placeholder; on failure it carries the error text.
func (c *Controller) AnalyzeLabel(ctx context.Context, rec *models.SessionRecord, image []byte, mimeType string) (*models.LabelAnalysis, error) {
	if err := checkAccess(rec, models.SlotLabel); err != nil {
		return nil, err
	}

	gen, err := c.begin(ctx, models.SlotLabel, msgAnalyzing, func() { c.label = nil })
	if err != nil {
		return nil, err
	}

	if err := checkImage(image, mimeType); err != nil {
		if !c.finish(ctx, models.SlotLabel, gen, models.StatusFailed, msgImageUnreadable, nil) {
			return nil, &StaleError{Slot: models.SlotLabel}
		}
		return nil, err
	}

	callCtx, cancel := c.callContext(ctx)
	text, err := c.backend.AnalyzeImage(callCtx, image, mimeType, labelInstruction)
	cancel()

	text = strings.TrimSpace(text)
	if err == nil && text == "" {
		err = errEmptyReply
	}
	if err != nil {
		logger.Warn("label analysis failed", "session_id", c.id, "mime_type", mimeType, "error", err)
		if !c.finish(ctx, models.SlotLabel, gen, models.StatusFailed, msgLabelFailed, nil) {
			return nil, &StaleError{Slot: models.SlotLabel}
		}
		return nil, &AnalysisError{Message: msgLabelFailed, Err: err}
	}

	result := &models.LabelAnalysis{Text: text, Verdict: models.ParseVerdict(text)}
	if !c.finish(ctx, models.SlotLabel, gen, models.StatusSuccess, "", func() { c.label = result }) {
		return nil, &StaleError{Slot: models.SlotLabel}
	}
	return result, nil
}

// Abandon gives up on a pending call in the slot. Its late result will be discarded.
// Reports whether a call was pending.
func (c *Controller) Abandon(ctx context.Context, name models.SlotName) bool {
	c.mu.Lock()
	s, ok := c.slots[name]
	if !ok {
		c.mu.Unlock()
		return false
	}
	wasPending := s.status == models.StatusPending
	s.generation++
	if wasPending {
		s.status = models.StatusIdle
		s.message = ""
	}
	update := c.updateLocked(name)
	c.mu.Unlock()

	if wasPending {
		c.notifier.SlotChanged(context.WithoutCancel(ctx), update)
	}
	return wasPending
}

// ResetChat starts a fresh conversation, abandoning any reply still in flight.
func (c *Controller) ResetChat(ctx context.Context) {
	c.mu.Lock()
	s := c.slots[models.SlotChat]
	s.generation++
	s.status = models.StatusIdle
	s.message = ""
	c.history = []models.ChatMessage{}
	update := c.updateLocked(models.SlotChat)
	c.mu.Unlock()

	c.notifier.SlotChanged(context.WithoutCancel(ctx), update)
}

func (c *Controller) History() []models.ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ChatMessage{}, c.history...)
}

func (c *Controller) Snapshot() models.SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := models.SessionState{
		MealPlanSlot: c.viewLocked(models.SlotMealPlan),
		ChatSlot:     c.viewLocked(models.SlotChat),
		LabelSlot:    c.viewLocked(models.SlotLabel),
		History:      append([]models.ChatMessage{}, c.history...),
	}
	if c.plan != nil {
		plan := *c.plan
		state.MealPlan = &plan
	}
	if c.label != nil {
		label := *c.label
		state.Label = &label
	}
	return state
}

func (c *Controller) touch() {
	c.mu.Lock()
	c.lastUsed = c.now()
	c.mu.Unlock()
}

// retireIfIdle retires the controller when it has been unused since cutoff and
// has nothing in flight. A retired controller refuses new calls.
func (c *Controller) retireIfIdle(cutoff time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.lastUsed.After(cutoff) {
		return false
	}
	for _, s := range c.slots {
		if s.status == models.StatusPending {
			return false
		}
	}
	c.retired = true
	return true
}

// begin moves the slot into Pending and returns the generation that owns the call.
// onEnter runs under the lock in the same step.
func (c *Controller) begin(ctx context.Context, name models.SlotName, placeholder string, onEnter func()) (uint64, error) {
	c.mu.Lock()
	if c.retired {
		c.mu.Unlock()
		return 0, ErrRetired
	}
	s := c.slots[name]
	if s.status == models.StatusPending {
		c.mu.Unlock()
		return 0, &BusyError{Slot: name, Message: busyMessages[name]}
	}
	s.generation++
	s.status = models.StatusPending
	s.message = placeholder
	if onEnter != nil {
		onEnter()
	}
	c.lastUsed = c.now()
	update := c.updateLocked(name)
	c.mu.Unlock()

	c.notifier.SlotChanged(context.WithoutCancel(ctx), update)
	return update.Generation, nil
}

// finish settles the slot only if gen still owns it; apply runs under the lock.
// A false return means the call was abandoned and its result must be dropped.
func (c *Controller) finish(ctx context.Context, name models.SlotName, gen uint64, status models.SlotStatus, message string, apply func()) bool {
	c.mu.Lock()
	s := c.slots[name]
	if s.generation != gen || s.status != models.StatusPending {
		c.mu.Unlock()
		logger.Debug("discarding stale result", "session_id", c.id, "slot", name, "generation", gen)
		return false
	}
	s.status = status
	s.message = message
	if apply != nil {
		apply()
	}
	c.lastUsed = c.now()
	update := c.updateLocked(name)
	c.mu.Unlock()

	c.notifier.SlotChanged(context.WithoutCancel(ctx), update)
	return true
}

func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = withSessionID(ctx, c.id)
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Controller) viewLocked(name models.SlotName) models.SlotView {
	s := c.slots[name]
	return models.SlotView{Status: s.status, Generation: s.generation, Message: s.message}
}

func (c *Controller) updateLocked(name models.SlotName) models.SlotUpdate {
	s := c.slots[name]
	return models.SlotUpdate{
		SessionID:  c.id,
		Slot:       name,
		Status:     s.status,
		Generation: s.generation,
		Message:    s.message,
	}
}

func checkAccess(rec *models.SessionRecord, name models.SlotName) error {
	if rec == nil || !rec.Premium {
		return &AccessDeniedError{Slot: name, Message: premiumMessages[name]}
	}
	return nil
}

func checkProfile(p models.UserProfile) error {
	if fields := p.Validate(); len(fields) > 0 {
		return &InputError{Message: msgIncompleteProfile, Fields: fields}
	}
	return nil
}

func checkImage(image []byte, mimeType string) error {
	if len(image) == 0 || !strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return &InputError{Message: msgImageUnreadable}
	}
	return nil
}
