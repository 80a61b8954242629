package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/trendradar/trendradar/internal/metrics"
)

// Handler is the unit of work a task executes on each firing.
type Handler func(ctx context.Context) error

// UnknownTaskError is returned when an administrative call references a
// task name that was never registered.
type UnknownTaskError struct {
	Name string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("scheduler: unknown task %q", e.Name)
}

// AlreadyRunningError is returned when a manual trigger arrives while the
// previous run of the same task is still executing.
type AlreadyRunningError struct {
	Name string
}

func (e *AlreadyRunningError) Error() string {
	return fmt.Sprintf("scheduler: task %q is already running", e.Name)
}

// RunResult reports the outcome of one task execution.
type RunResult struct {
	Task     string    `json:"task"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Err      error     `json:"-"`
}

// TaskStatus is the administrative view of one registered task.
type TaskStatus struct {
	Name        string     `json:"name"`
	Schedule    string     `json:"schedule"`
	Description string     `json:"description"`
	Enabled     bool       `json:"enabled"`
	Running     bool       `json:"running"`
	LastStarted *time.Time `json:"last_started,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
}

type task struct {
	name        string
	expr        string
	description string
	schedule    cron.Schedule
	handler     Handler

	enabled bool
	running bool
	lastRun *RunResult
	stopCh  chan struct{}
}

// Scheduler owns one timer loop per enabled task and enforces per-task run
// exclusivity: at most one execution of a given task's handler at a time.
// Triggers arriving while the same task is still running are skipped, never
// queued. Different tasks execute concurrently with no ordering guarantee.
//
// Tasks are registered once at process start and never deleted; stop only
// disables future firings and does not interrupt an in-flight run.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*task
	order   []string
	clock   Clock
	loc     *time.Location
	logger  *slog.Logger
	metrics *metrics.Collector
	parser  cron.Parser
}

// New creates a scheduler. clock may be nil for the system clock; loc may be
// nil for UTC.
func New(clock Clock, loc *time.Location, logger *slog.Logger, collectorMetrics *metrics.Collector) *Scheduler {
	if clock == nil {
		clock = SystemClock()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		tasks:   make(map[string]*task),
		clock:   clock,
		loc:     loc,
		logger:  logger,
		metrics: collectorMetrics,
		parser:  cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
	}
}

// Register adds a named task with a 5-field cron schedule expression. The
// task starts in the stopped state. Registering a duplicate name or an
// invalid expression is an error.
func (s *Scheduler) Register(name, expr string, handler Handler, description string) error {
	schedule, err := s.parser.Parse(expr)
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q for task %q: %w", expr, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[name]; exists {
		return fmt.Errorf("scheduler: task %q already registered", name)
	}

	s.tasks[name] = &task{
		name:        name,
		expr:        expr,
		description: description,
		schedule:    schedule,
		handler:     handler,
	}
	s.order = append(s.order, name)

	s.logger.Info("task registered", "task", name, "schedule", expr, "description", description)
	return nil
}

// Start arms the timer for a stopped task. It is a no-op for a task that is
// already scheduled.
func (s *Scheduler) Start(ctx context.Context, name string) error {
	s.mu.Lock()
	t, ok := s.tasks[name]
	if !ok {
		s.mu.Unlock()
		return &UnknownTaskError{Name: name}
	}
	if t.enabled {
		s.mu.Unlock()
		return nil
	}
	t.enabled = true
	t.stopCh = make(chan struct{})
	stopCh := t.stopCh
	s.mu.Unlock()

	go s.loop(ctx, t, stopCh)

	s.logger.Info("task started", "task", name, "schedule", t.expr)
	return nil
}

// Stop disarms a task's timer. An in-flight execution is not interrupted;
// only future firings are prevented.
func (s *Scheduler) Stop(name string) error {
	s.mu.Lock()
	t, ok := s.tasks[name]
	if !ok {
		s.mu.Unlock()
		return &UnknownTaskError{Name: name}
	}
	if !t.enabled {
		s.mu.Unlock()
		return nil
	}
	t.enabled = false
	close(t.stopCh)
	t.stopCh = nil
	s.mu.Unlock()

	s.logger.Info("task stopped", "task", name)
	return nil
}

// StartAll arms every registered task.
func (s *Scheduler) StartAll(ctx context.Context) {
	for _, name := range s.taskNames() {
		if err := s.Start(ctx, name); err != nil {
			s.logger.Error("failed to start task", "task", name, "error", err)
		}
	}
}

// StopAll disarms every registered task.
func (s *Scheduler) StopAll() {
	for _, name := range s.taskNames() {
		if err := s.Stop(name); err != nil {
			s.logger.Error("failed to stop task", "task", name, "error", err)
		}
	}
}

// ExecuteNow manually triggers a task. The call returns immediately; the
// returned channel delivers the run result once the handler finishes. The
// same exclusivity rule as scheduled firing applies: a task whose previous
// run is still executing is rejected, not queued.
func (s *Scheduler) ExecuteNow(ctx context.Context, name string) (<-chan RunResult, error) {
	s.mu.Lock()
	t, ok := s.tasks[name]
	if !ok {
		s.mu.Unlock()
		return nil, &UnknownTaskError{Name: name}
	}
	if t.running {
		s.mu.Unlock()
		return nil, &AlreadyRunningError{Name: name}
	}
	t.running = true
	s.mu.Unlock()

	s.logger.Info("task triggered manually", "task", name)

	done := make(chan RunResult, 1)
	go func() {
		done <- s.execute(ctx, t)
	}()
	return done, nil
}

// StatusOf reports a single task by name.
func (s *Scheduler) StatusOf(name string) (TaskStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tasks[name]
	if !ok {
		return TaskStatus{}, &UnknownTaskError{Name: name}
	}
	return s.statusLocked(t), nil
}

// Status reports every registered task in registration order.
func (s *Scheduler) Status() []TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]TaskStatus, 0, len(s.order))
	for _, name := range s.order {
		statuses = append(statuses, s.statusLocked(s.tasks[name]))
	}
	return statuses
}

// statusLocked builds the status view of one task. Caller holds s.mu.
func (s *Scheduler) statusLocked(t *task) TaskStatus {
	status := TaskStatus{
		Name:        t.name,
		Schedule:    t.expr,
		Description: t.description,
		Enabled:     t.enabled,
		Running:     t.running,
	}
	if t.lastRun != nil {
		started := t.lastRun.Started
		status.LastStarted = &started
		if t.lastRun.Err != nil {
			status.LastError = t.lastRun.Err.Error()
		}
	}
	return status
}

func (s *Scheduler) taskNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, len(s.order))
	copy(names, s.order)
	sort.Strings(names)
	return names
}

// loop waits for the task's next cron firing and executes it, until the
// task is stopped or the context is cancelled.
func (s *Scheduler) loop(ctx context.Context, t *task, stopCh chan struct{}) {
	for {
		now := s.clock.Now().In(s.loc)
		next := t.schedule.Next(now)
		if next.IsZero() {
			s.logger.Error("no future firing for task, loop exiting", "task", t.name)
			return
		}

		select {
		case <-s.clock.After(next.Sub(now)):
			s.fire(ctx, t)
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// fire runs the handler for a scheduled tick, skipping the tick when the
// previous run of the same task has not finished yet.
func (s *Scheduler) fire(ctx context.Context, t *task) {
	s.mu.Lock()
	if t.running {
		s.mu.Unlock()
		s.logger.Warn("skipping scheduled run, previous run still executing", "task", t.name)
		s.metrics.ObserveTaskRun(t.name, metrics.OutcomeSkipped, 0)
		return
	}
	t.running = true
	s.mu.Unlock()

	s.execute(ctx, t)
}

// execute runs the handler and records the outcome. The caller must have
// set t.running under the lock. Handler errors and panics are caught and
// logged; they never stop the timer or crash the process.
func (s *Scheduler) execute(ctx context.Context, t *task) RunResult {
	result := RunResult{Task: t.name, Started: s.clock.Now()}

	func() {
		defer func() {
			if r := recover(); r != nil {
				result.Err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		result.Err = t.handler(ctx)
	}()

	result.Finished = s.clock.Now()
	duration := result.Finished.Sub(result.Started)

	s.mu.Lock()
	t.running = false
	t.lastRun = &result
	s.mu.Unlock()

	if result.Err != nil {
		s.metrics.ObserveTaskRun(t.name, metrics.OutcomeFailure, duration)
		s.logger.Error("task run failed", "task", t.name, "duration", duration, "error", result.Err)
	} else {
		s.metrics.ObserveTaskRun(t.name, metrics.OutcomeSuccess, duration)
		s.logger.Info("task run complete", "task", t.name, "duration", duration)
	}
	return result
}
