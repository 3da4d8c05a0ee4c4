// Package monitor implements the alarm loop: poll the clock against
// the store, fire each due task exactly once, and advance recurring
// tasks by inserting their next occurrence.
package monitor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"remindd/internal/notify"
	"remindd/internal/store"
	"remindd/internal/task"
	"remindd/pkg/logx"
)

// State is the monitor's lifecycle position. Transitions:
// Idle → Scanning → Firing → Idle per tick; Stopped is terminal and
// reachable from any state on shutdown.
type State int32

const (
	StateIdle State = iota
	StateScanning
	StateFiring
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateFiring:
		return "firing"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	DefaultPollInterval  = 5 * time.Second
	DefaultNotifyTimeout = 10 * time.Second
)

type Config struct {
	PollInterval  time.Duration
	NotifyTimeout time.Duration
}

type Monitor struct {
	store    *store.Store
	notifier notify.Notifier
	log      logx.Logger

	mu  sync.Mutex
	cfg Config

	state   atomic.Int32
	stopped chan struct{}

	// now is swappable so tests drive ticks with a virtual clock
	// instead of sleeping.
	now func() time.Time
}

func New(st *store.Store, n notify.Notifier, cfg Config, log logx.Logger) *Monitor {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.NotifyTimeout <= 0 {
		cfg.NotifyTimeout = DefaultNotifyTimeout
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Monitor{
		store:    st,
		notifier: n,
		log:      log,
		cfg:      cfg,
		stopped:  make(chan struct{}),
		now:      time.Now,
	}
}

// Apply updates tick and timeout settings; the new poll interval takes
// effect on the next sleep.
func (m *Monitor) Apply(cfg Config) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg.PollInterval > 0 {
		m.cfg.PollInterval = cfg.PollInterval
	}
	if cfg.NotifyTimeout > 0 {
		m.cfg.NotifyTimeout = cfg.NotifyTimeout
	}
}

func (m *Monitor) State() State { return State(m.state.Load()) }

// Stopped is closed once Run has fully exited. The store must not be
// closed before this fires.
func (m *Monitor) Stopped() <-chan struct{} { return m.stopped }

// Run blocks, ticking every poll interval until ctx is cancelled.
// Cancellation interrupts the sleep promptly; an in-flight tick
// finishes its current task and stops.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("alarm monitor started", logx.Duration("poll_interval", m.pollInterval()))
	defer func() {
		m.state.Store(int32(StateStopped))
		close(m.stopped)
		m.log.Info("alarm monitor stopped")
	}()

	for {
		timer := time.NewTimer(m.pollInterval())
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			m.tick(ctx, m.now())
		}
	}
}

func (m *Monitor) pollInterval() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.PollInterval
}

func (m *Monitor) notifyTimeout() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cfg.NotifyTimeout
}

// tick runs one Scanning/Firing pass. Failures are isolated per task:
// a bad notify or store write never aborts the rest of the scan.
func (m *Monitor) tick(ctx context.Context, now time.Time) {
	m.state.Store(int32(StateScanning))
	defer m.state.Store(int32(StateIdle))

	due, err := m.store.Due(ctx, now, false)
	if err != nil {
		m.log.Error("due scan failed", logx.Err(err))
		return
	}
	if len(due) == 0 {
		return
	}

	m.state.Store(int32(StateFiring))
	for _, t := range due {
		if ctx.Err() != nil {
			return
		}
		m.fire(ctx, t)
	}
}

// fire notifies one due task, marks it fired, and for recurring tasks
// inserts the successor occurrence (copy-and-advance: the fired row is
// kept). Notify runs before the fired mark, so a crash in between can
// re-notify after restart; that at-least-once trade-off beats silently
// losing a reminder.
func (m *Monitor) fire(ctx context.Context, t task.Task) {
	nctx, cancel := context.WithTimeout(ctx, m.notifyTimeout())
	err := m.notifier.Notify(nctx, t)
	cancel()
	if err != nil {
		// Left un-fired: retried on the next tick.
		m.log.Warn("notify failed, will retry",
			logx.Int64("task", t.ID), logx.String("title", t.Title), logx.Err(err))
		return
	}

	fired := true
	if err := m.store.Update(ctx, t.ID, store.Fields{Fired: &fired}); err != nil {
		m.log.Error("marking task fired failed",
			logx.Int64("task", t.ID), logx.Err(err))
		return
	}

	if t.Recurrence == task.RecurNone {
		m.log.Info("task fired", logx.Int64("task", t.ID), logx.String("title", t.Title))
		return
	}

	next, err := task.Next(t)
	if err != nil {
		m.log.Error("recurrence advance failed", logx.Int64("task", t.ID), logx.Err(err))
		return
	}
	id, err := m.store.Insert(ctx, next)
	if err != nil {
		m.log.Error("inserting next occurrence failed",
			logx.Int64("task", t.ID), logx.Err(err))
		return
	}
	m.log.Info("recurring task fired and advanced",
		logx.Int64("task", t.ID),
		logx.Int64("next", id),
		logx.String("next_due", next.Date+" "+next.Time),
	)
}
