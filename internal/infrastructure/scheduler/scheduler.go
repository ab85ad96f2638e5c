package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// TaskFunc is the body of a scheduled task
type TaskFunc func(ctx context.Context) error

// TaskStatus is the outcome of the most recent run of a task
type TaskStatus string

const (
	TaskStatusIdle    TaskStatus = "IDLE"
	TaskStatusRunning TaskStatus = "RUNNING"
	TaskStatusSuccess TaskStatus = "SUCCESS"
	TaskStatusFailed  TaskStatus = "FAILED"
)

// TaskInfo is a snapshot of a registered task
type TaskInfo struct {
	Name      string
	Schedule  string
	Status    TaskStatus
	LastRunAt *time.Time
	LastError string
	NextRunAt time.Time
	Runs      int64
}

type task struct {
	name     string
	schedule string
	timeout  time.Duration
	fn       TaskFunc
	entryID  cron.EntryID

	mu        sync.Mutex
	status    TaskStatus
	lastRunAt *time.Time
	lastError string
	runs      int64
}

// Config holds scheduler configuration
type Config struct {
	// TaskTimeout bounds a single task run. Zero means no timeout.
	TaskTimeout time.Duration
	// Location for schedule evaluation. Defaults to time.Local.
	Location *time.Location
}

// DefaultConfig returns default scheduler configuration
func DefaultConfig() Config {
	return Config{
		TaskTimeout: 30 * time.Second,
		Location:    time.Local,
	}
}

// Scheduler runs named tasks on cron schedules. Expressions carry a leading
// seconds field ("0 * * * * *" runs every minute). A run that is still in
// progress when its next tick fires causes that tick to be skipped.
type Scheduler struct {
	config Config
	cron   *cron.Cron
	logger *zap.Logger

	mu        sync.Mutex
	tasks     map[string]*task
	ctx       context.Context
	cancel    context.CancelFunc
	isRunning bool
}

// New creates a scheduler
func New(config Config, logger *zap.Logger) *Scheduler {
	if config.Location == nil {
		config.Location = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("scheduler")

	return &Scheduler{
		config: config,
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithLocation(config.Location),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger})),
		),
		logger: logger,
		tasks:  make(map[string]*task),
	}
}

// Register adds a task. It must be called before Start.
func (s *Scheduler) Register(name, schedule string, fn TaskFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return ErrSchedulerRunning
	}
	if _, ok := s.tasks[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateTask, name)
	}

	t := &task{
		name:     name,
		schedule: schedule,
		timeout:  s.config.TaskTimeout,
		fn:       fn,
		status:   TaskStatusIdle,
	}
	id, err := s.cron.AddFunc(schedule, func() { s.run(t) })
	if err != nil {
		return fmt.Errorf("%w %q: %v", ErrInvalidSchedule, schedule, err)
	}
	t.entryID = id
	s.tasks[name] = t

	s.logger.Info("Registered scheduled task",
		zap.String("task", name),
		zap.String("schedule", schedule))
	return nil
}

// Start begins evaluating schedules. Tasks run with a context derived from ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.isRunning = true
	s.cron.Start()

	s.logger.Info("Scheduler started", zap.Int("tasks", len(s.tasks)))
	return nil
}

// Stop halts scheduling, cancels running tasks and waits for them until ctx is done
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	cancel := s.cancel
	s.mu.Unlock()

	stopped := s.cron.Stop()
	cancel()

	select {
	case <-stopped.Done():
		s.logger.Info("Scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Scheduler stop timed out")
		return ctx.Err()
	}
}

// IsRunning reports whether the scheduler has been started
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

// RunNow executes a registered task immediately, outside its schedule
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	s.mu.Lock()
	t, ok := s.tasks[name]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("task %q not registered", name)
	}
	return s.execute(ctx, t)
}

// Tasks returns a snapshot of all registered tasks
func (s *Scheduler) Tasks() []TaskInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]TaskInfo, 0, len(s.tasks))
	for _, t := range s.tasks {
		t.mu.Lock()
		info := TaskInfo{
			Name:      t.name,
			Schedule:  t.schedule,
			Status:    t.status,
			LastRunAt: t.lastRunAt,
			LastError: t.lastError,
			Runs:      t.runs,
		}
		t.mu.Unlock()
		info.NextRunAt = s.cron.Entry(t.entryID).Next
		infos = append(infos, info)
	}
	return infos
}

func (s *Scheduler) run(t *task) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}
	_ = s.execute(ctx, t)
}

func (s *Scheduler) execute(ctx context.Context, t *task) (err error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	t.mu.Lock()
	t.status = TaskStatusRunning
	t.lastRunAt = &start
	t.runs++
	t.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task panicked: %v", r)
		}

		t.mu.Lock()
		if err != nil {
			t.status = TaskStatusFailed
			t.lastError = err.Error()
		} else {
			t.status = TaskStatusSuccess
			t.lastError = ""
		}
		t.mu.Unlock()

		if err != nil {
			s.logger.Error("Scheduled task failed",
				zap.String("task", t.name),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err))
			return
		}
		s.logger.Debug("Scheduled task completed",
			zap.String("task", t.name),
			zap.Duration("duration", time.Since(start)))
	}()

	return t.fn(ctx)
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
