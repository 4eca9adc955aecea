package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"nutricionista-backend/internal/logger"
	"nutricionista-backend/internal/models"
	"nutricionista-backend/internal/services"
	"nutricionista-backend/internal/session"
)

const (
	MealPlanQueue = "queue:meal-plan-generation"

	popTimeout    = 30 * time.Second
	popRetryDelay = 2 * time.Second
	lockTTL       = 10 * time.Minute

	msgJobFailed = "Não foi possível gerar o plano alimentar. Tente novamente."
)

type MealPlanGenerator interface {
	GenerateMealPlan(ctx context.Context, id uuid.UUID) (*models.MealPlanResponse, error)
}

type Publisher interface {
	PublishUpdate(ctx context.Context, sessionID uuid.UUID, msg models.WSMessage)
}

// Pool runs queued meal-plan generations and reports each outcome on the
// session's websocket channel.
type Pool struct {
	redis       *redis.Client
	generator   MealPlanGenerator
	publisher   Publisher
	workerCount int
	retryDelay  time.Duration
	now         func() time.Time
	stopChan    chan struct{}
}

func NewPool(redisClient *redis.Client, generator MealPlanGenerator, publisher Publisher, workerCount int) *Pool {
	if workerCount <= 0 {
		workerCount = 1
	}
	return &Pool{
		redis:       redisClient,
		generator:   generator,
		publisher:   publisher,
		workerCount: workerCount,
		retryDelay:  popRetryDelay,
		now:         time.Now,
		stopChan:    make(chan struct{}),
	}
}

// Enqueue pushes a generation job for the session.
func (p *Pool) Enqueue(ctx context.Context, sessionID uuid.UUID) (*models.MealPlanJob, error) {
	job := &models.MealPlanJob{
		ID:         uuid.New(),
		SessionID:  sessionID,
		EnqueuedAt: p.now().UTC(),
	}

	data, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job: %w", err)
	}
	if err := p.redis.RPush(ctx, MealPlanQueue, string(data)).Err(); err != nil {
		return nil, fmt.Errorf("failed to enqueue meal plan job: %w", err)
	}

	logger.Info("meal plan job enqueued", "job_id", job.ID, "session_id", sessionID)
	return job, nil
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}

	logger.Info("started meal plan workers", "count", p.workerCount)
}

func (p *Pool) Stop() {
	select {
	case <-p.stopChan:
	default:
		close(p.stopChan)
	}
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			logger.Info("worker shutting down", "worker", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, popTimeout, MealPlanQueue).Result()
		if err != nil {
			if errors.Is(err, redis.Nil) {
				continue
			}
			logger.Warn("failed to pop meal plan job", "worker", id, "error", err, "retry_in", p.retryDelay)
			if !p.pause(p.retryDelay) {
				logger.Info("worker shutting down", "worker", id)
				return
			}
			continue
		}
		if len(result) < 2 {
			continue
		}

		var job models.MealPlanJob
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			logger.Error("failed to parse job", "worker", id, "error", err)
			continue
		}

		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", lockTTL).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		logger.Info("processing meal plan job", "worker", id, "job_id", job.ID, "session_id", job.SessionID)
		p.process(ctx, &job)

		p.redis.Del(ctx, lockKey)
	}
}

// pause waits d unless the pool is stopped first; it reports whether to keep going.
func (p *Pool) pause(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-p.stopChan:
		return false
	case <-timer.C:
		return true
	}
}

// process runs one job to completion. Failures are reported once and never requeued.
func (p *Pool) process(ctx context.Context, job *models.MealPlanJob) {
	resp, err := p.generator.GenerateMealPlan(ctx, job.SessionID)
	if err != nil {
		code, message := describeFailure(err)
		logger.Warn("meal plan job failed", "job_id", job.ID, "code", code, "error", err)
		p.publisher.PublishUpdate(ctx, job.SessionID, models.WSMessage{
			Type: "job_failed",
			Payload: models.JobFailedEvent{
				JobID:        job.ID,
				ErrorCode:    code,
				ErrorMessage: message,
			},
		})
		return
	}

	p.publisher.PublishUpdate(ctx, job.SessionID, models.WSMessage{
		Type:    "job_completed",
		Payload: models.JobCompletedEvent{JobID: job.ID, MealPlan: resp},
	})
	logger.Info("meal plan job completed", "job_id", job.ID)
}

func describeFailure(err error) (code, message string) {
	var denied *session.AccessDeniedError
	var busy *session.BusyError
	var stale *session.StaleError
	var input *session.InputError
	var gen *session.GenerationError
	var notFound *services.NotFoundError

	switch {
	case errors.As(err, &denied):
		return "PREMIUM_REQUIRED", denied.Message
	case errors.As(err, &busy):
		return "SLOT_BUSY", busy.Message
	case errors.As(err, &stale):
		return "REQUEST_ABANDONED", "A solicitação foi cancelada."
	case errors.As(err, &input):
		return "INPUT_ERROR", input.Message
	case errors.As(err, &gen):
		return "GENERATION_FAILED", gen.Message
	case errors.As(err, &notFound):
		return "NOT_FOUND", notFound.Message
	default:
		return "JOB_FAILED", msgJobFailed
	}
}
