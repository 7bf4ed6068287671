// Package scheduler runs cron-based maintenance jobs for Formi.
//
// Its main job evicts stale conversation sessions from persistent stores,
// which have no in-process janitor of their own.
package scheduler

import (
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ku28/formi/internal/store"
)

// Scheduler provides cron-based job scheduling.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates and starts a cron scheduler. Panicking jobs are
// recovered so a single bad run cannot kill the process.
func NewScheduler() *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	c := cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger)))
	c.Start()
	return &Scheduler{cron: c}
}

// AddJob schedules a task under a five-field cron expression.
func (s *Scheduler) AddJob(expr string, task func()) error {
	_, err := s.cron.AddFunc(expr, task)
	return err
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

// CleanupExpiredSessions returns a job deleting sessions idle longer than
// ttl. Conversations abandoned mid-booking accumulate otherwise; completed
// ones stay reachable until they idle out too.
func CleanupExpiredSessions(sessions store.SessionStore, ttl time.Duration) func() {
	return func() {
		all, err := sessions.ListSessions()
		if err != nil {
			slog.Error("Session cleanup failed to list sessions", "error", err)
			return
		}
		cutoff := time.Now().Add(-ttl)
		evicted := 0
		for _, session := range all {
			if !session.UpdatedAt.Before(cutoff) {
				continue
			}
			if err := sessions.DeleteSession(session.ConversationID); err != nil {
				slog.Error("Session cleanup failed to delete session",
					"error", err, "conversationID", session.ConversationID)
				continue
			}
			evicted++
		}
		if evicted > 0 {
			slog.Info("Session cleanup evicted idle sessions", "evicted", evicted, "ttl", ttl)
		}
	}
}
