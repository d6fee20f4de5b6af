package auth

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/ai-quizzer/quizzer/pkg/logger"
)

// SessionPurger deletes expired sessions on a cron schedule. It implements
// the lifecycle service interface so the application manager owns it.
type SessionPurger struct {
	svc      *Service
	schedule string
	log      *logger.Logger
	cron     *cron.Cron
}

// NewSessionPurger constructs a purger with the given cron schedule
// (e.g. "@every 10m").
func NewSessionPurger(svc *Service, schedule string, log *logger.Logger) *SessionPurger {
	if log == nil {
		log = logger.NewDefault("session-purger")
	}
	if schedule == "" {
		schedule = "@every 10m"
	}
	return &SessionPurger{svc: svc, schedule: schedule, log: log}
}

// Name identifies the purger to the lifecycle manager.
func (p *SessionPurger) Name() string { return "session-purger" }

// Start schedules the purge job. The schedule is validated here so a bad
// configuration fails startup rather than silently never running.
func (p *SessionPurger) Start(ctx context.Context) error {
	_ = ctx
	p.cron = cron.New()
	if _, err := p.cron.AddFunc(p.schedule, p.run); err != nil {
		return fmt.Errorf("invalid purge schedule %q: %w", p.schedule, err)
	}
	p.cron.Start()
	p.log.Infof("session purge scheduled: %s", p.schedule)
	return nil
}

// Stop halts the schedule and waits for an in-flight purge to finish.
func (p *SessionPurger) Stop(ctx context.Context) error {
	if p.cron == nil {
		return nil
	}
	done := p.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (p *SessionPurger) run() {
	removed, err := p.svc.PurgeExpired(context.Background())
	if err != nil {
		p.log.WithError(err).Warn("session purge failed")
		return
	}
	if removed > 0 {
		p.log.Infof("purged %d expired sessions", removed)
	}
}
