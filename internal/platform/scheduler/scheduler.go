package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
	"github.com/riskibarqy/geoduel/internal/platform/logging"
)

// immediateThreshold is the delay under which a one-time job is started
// right away; gocron rejects start times that are already in the past.
const immediateThreshold = 50 * time.Millisecond

type Config struct {
	TaskTimeout time.Duration
}

type keyedJob struct {
	generation uint64
	jobID      uuid.UUID
}

// Scheduler runs delayed tasks identified by a key. Scheduling a key that
// is already pending replaces it; Cancel drops it if it has not fired.
type Scheduler struct {
	cron   gocron.Scheduler
	cfg    Config
	logger *logging.Logger

	baseCtx context.Context
	stop    context.CancelFunc

	mu         sync.Mutex
	jobs       map[string]keyedJob
	generation uint64
}

func New(cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = 30 * time.Second
	}

	cron, err := gocron.NewScheduler(gocron.WithLogger(logger.Named("scheduler")))
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:    cron,
		cfg:     cfg,
		logger:  logger,
		baseCtx: ctx,
		stop:    cancel,
		jobs:    make(map[string]keyedJob),
	}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

func (s *Scheduler) Shutdown() error {
	s.stop()
	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("shutdown gocron scheduler: %w", err)
	}
	return nil
}

func (s *Scheduler) Schedule(key string, delay time.Duration, task func(context.Context)) error {
	if key == "" {
		return fmt.Errorf("schedule key is required")
	}
	if task == nil {
		return fmt.Errorf("schedule task is required")
	}

	startAt := gocron.OneTimeJobStartImmediately()
	if delay >= immediateThreshold {
		startAt = gocron.OneTimeJobStartDateTime(time.Now().Add(delay))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(key)
	s.generation++
	generation := s.generation

	job, err := s.cron.NewJob(
		gocron.OneTimeJob(startAt),
		gocron.NewTask(func() { s.run(key, generation, task) }),
		gocron.WithName(key),
		gocron.WithTags(key),
	)
	if err != nil {
		return fmt.Errorf("schedule job key=%s: %w", key, err)
	}
	s.jobs[key] = keyedJob{generation: generation, jobID: job.ID()}

	return nil
}

func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(key)
}

// Every registers a recurring task. A run that is still busy when the next
// tick arrives causes that tick to be skipped.
func (s *Scheduler) Every(name string, interval time.Duration, task func(context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("interval must be > 0 for job %s", name)
	}

	_, err := s.cron.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(s.baseCtx, s.cfg.TaskTimeout)
			defer cancel()
			task(ctx)
		}),
		gocron.WithName(name),
		gocron.WithTags(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register recurring job %s: %w", name, err)
	}
	return nil
}

func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[key]
	return ok
}

func (s *Scheduler) removeLocked(key string) {
	prev, ok := s.jobs[key]
	if !ok {
		return
	}
	delete(s.jobs, key)
	if err := s.cron.RemoveJob(prev.jobID); err != nil {
		s.logger.Debug("remove scheduled job", "key", key, "error", err)
	}
}

func (s *Scheduler) run(key string, generation uint64, task func(context.Context)) {
	s.mu.Lock()
	current, ok := s.jobs[key]
	live := ok && current.generation == generation
	if live {
		delete(s.jobs, key)
	}
	s.mu.Unlock()

	if !live {
		return
	}
	defer func() {
		_ = s.cron.RemoveJob(current.jobID)
	}()
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("scheduled task panicked", "key", key, "panic", rec)
		}
	}()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.cfg.TaskTimeout)
	defer cancel()
	task(ctx)
}
