// Package scheduler fires periodic export requests into the view loop.
package scheduler

import (
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"goldview/internal/event"
)

// Scheduler owns the cron instance behind timed snapshot exports.
type Scheduler struct {
	cron   *cron.Cron
	inbox  chan<- event.Event
	logger *slog.Logger
}

// NewScheduler creates a scheduler sending into the loop inbox.
func NewScheduler(inbox chan<- event.Event) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		inbox:  inbox,
		logger: slog.With("module", "scheduler"),
	}
}

// RegisterExport schedules snapshot exports. Accepts standard cron
// expressions and the @every form.
func (s *Scheduler) RegisterExport(expr string) error {
	if _, err := s.cron.AddFunc(expr, s.requestExport); err != nil {
		return fmt.Errorf("register export task: %w", err)
	}
	return nil
}

func (s *Scheduler) requestExport() {
	// Non-blocking: a congested loop just skips this cycle, the next
	// tick exports a fresher view anyway.
	select {
	case s.inbox <- &event.ExportRequestEvent{}:
	default:
		s.logger.Warn("export request skipped, inbox full")
	}
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("scheduler stopped")
}
