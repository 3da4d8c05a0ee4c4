// Package app wires the reminder daemon together: config, logging,
// store, notifier, alarm monitor and the daily cleanup job, with a
// clean startup/shutdown order.
package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"remindd/internal/cleanup"
	"remindd/internal/config"
	"remindd/internal/monitor"
	"remindd/internal/notify"
	"remindd/internal/store"
	"remindd/pkg/logx"
)

type App struct {
	cfgMgr *config.Manager
	logSvc *logx.Service
	log    logx.Logger

	store      *store.Store
	mon        *monitor.Monitor
	monStarted bool
	cron       *cron.Cron

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New loads the config and prepares logging. Nothing touches the disk
// database yet; that happens in Start so a config error stays cheap.
func New(cfgPath string) (*App, error) {
	mgr := config.NewManager(cfgPath)
	cfg, err := mgr.Load()
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", cfgPath, err)
	}

	logSvc, log := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File:    logx.FileConfig{Enabled: cfg.Logging.File.Enabled, Path: cfg.Logging.File.Path},
	})
	mgr.SetLogger(log.With(logx.String("component", "config")))

	return &App{cfgMgr: mgr, logSvc: logSvc, log: log}, nil
}

func (a *App) Log() logx.Logger { return a.log }

// Start opens the store (running migrations; a migration failure is
// fatal here), builds the notifier, and launches the monitor loop,
// the cleanup schedule and the config watcher.
func (a *App) Start(ctx context.Context) error {
	cfg := a.cfgMgr.Get()

	st, err := store.Open(store.Config{
		Path:        cfg.Storage.Path,
		BusyTimeout: cfg.StorageBusyTimeout(),
	}, a.log.With(logx.String("component", "store")))
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	a.store = st

	if n, err := st.CountAll(ctx); err == nil {
		a.log.Info("store opened", logx.String("path", cfg.Storage.Path), logx.Int("tasks", n))
	}

	notifier, err := notify.New(notify.Config{
		Channel:    cfg.Notify.Channel,
		RatePerSec: cfg.Notify.RatePerSec,
		Command:    notify.CommandConfig{Path: cfg.Notify.Command.Path, Args: cfg.Notify.Command.Args},
		Telegram:   notify.TelegramConfig{Token: cfg.Notify.Telegram.Token, ChatID: cfg.Notify.Telegram.ChatID},
	}, a.log.With(logx.String("component", "notify")))
	if err != nil {
		_ = st.Close()
		return fmt.Errorf("build notifier: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	a.mon = monitor.New(st, notifier, monitor.Config{
		PollInterval:  cfg.PollInterval(),
		NotifyTimeout: cfg.NotifyTimeout(),
	}, a.log.With(logx.String("component", "monitor")))

	if cfg.Monitor.IsEnabled() {
		a.monStarted = true
		a.wg.Add(1)
		go func() {
			defer a.wg.Done()
			a.mon.Run(runCtx)
		}()
	} else {
		a.log.Warn("alarm monitor disabled by config; reminders will not fire")
	}

	if cfg.Cleanup.IsEnabled() {
		if err := a.startCleanup(runCtx, cfg); err != nil {
			cancel()
			_ = st.Close()
			return err
		}
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.watchConfig(runCtx)
	}()

	return nil
}

// startCleanup schedules the daily purge at cleanup.at and runs one
// silent pass shortly after startup, like the original planner did.
func (a *App) startCleanup(ctx context.Context, cfg *config.Config) error {
	at := cfg.Cleanup.At
	if at == "" {
		at = "03:30"
	}
	spec, err := dailySpec(at)
	if err != nil {
		return fmt.Errorf("cleanup schedule: %w", err)
	}

	a.cron = cron.New()
	if _, err := a.cron.AddFunc(spec, func() { a.runCleanup(ctx) }); err != nil {
		return fmt.Errorf("cleanup schedule: %w", err)
	}
	a.cron.Start()
	a.log.Info("cleanup scheduled", logx.String("at", at))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		select {
		case <-ctx.Done():
		case <-time.After(time.Minute):
			a.runCleanup(ctx)
		}
	}()
	return nil
}

// runCleanup reads the live config each run so retention_days changes
// apply without a restart. A failed run is retried on the next
// scheduled one.
func (a *App) runCleanup(ctx context.Context) {
	cfg := a.cfgMgr.Get()
	if !cfg.Cleanup.IsEnabled() {
		return
	}
	svc := cleanup.New(a.store, cfg.Cleanup.RetentionDays, a.log.With(logx.String("component", "cleanup")))
	cctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if _, err := svc.Run(cctx, time.Now()); err != nil {
		a.log.Error("cleanup run failed", logx.Err(err))
	}
}

// watchConfig applies file changes live where safe: log settings and
// monitor intervals re-apply in place; notifier channel and cleanup
// schedule changes need a restart and say so.
func (a *App) watchConfig(ctx context.Context) {
	sub := a.cfgMgr.Subscribe(1)
	defer a.cfgMgr.Unsubscribe(sub)

	startCfg := a.cfgMgr.Get()
	prevChannel, prevCleanupAt := startCfg.Notify.Channel, startCfg.Cleanup.At

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.cfgMgr.Watch(ctx); err != nil && ctx.Err() == nil {
			a.log.Warn("config watch ended", logx.Err(err))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case cfg, ok := <-sub:
			if !ok {
				return
			}
			a.logSvc.Apply(logx.Config{
				Level:   cfg.Logging.Level,
				Console: cfg.Logging.Console,
				File:    logx.FileConfig{Enabled: cfg.Logging.File.Enabled, Path: cfg.Logging.File.Path},
			})
			a.mon.Apply(monitor.Config{
				PollInterval:  cfg.PollInterval(),
				NotifyTimeout: cfg.NotifyTimeout(),
			})
			a.log.Info("config changes applied",
				logx.Duration("poll_interval", cfg.PollInterval()),
				logx.Duration("notify_timeout", cfg.NotifyTimeout()),
			)
			if cfg.Notify.Channel != prevChannel || cfg.Cleanup.At != prevCleanupAt {
				a.log.Warn("notify channel / cleanup schedule changes take effect on restart")
			}
			prevChannel, prevCleanupAt = cfg.Notify.Channel, cfg.Cleanup.At
		}
	}
}

// Stop cancels background work, waits for the monitor to reach its
// stopped state, then closes the store and flushes logs. The store is
// never closed while a tick could still be writing.
func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
	}
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
	if a.monStarted {
		select {
		case <-a.mon.Stopped():
		case <-ctx.Done():
			a.log.Warn("shutdown timed out waiting for monitor")
		}
	}
	a.wg.Wait()
	if a.store != nil {
		_ = a.store.Close()
	}
	return a.logSvc.Close()
}

// dailySpec builds a standard 5-field cron spec firing once a day at
// the given HH:MM.
func dailySpec(hhmm string) (string, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return "", fmt.Errorf("invalid time %q, expected HH:MM", hhmm)
	}
	return fmt.Sprintf("%d %d * * *", m, h), nil
}
