package service

import (
	"context"
	"log"
	"time"

	"github.com/brandforge/content-engine/api/internal/repository"
)

// SessionReaper periodically moves sessions that have been processing for
// too long to error, so callbacks that never arrive do not leave clients
// polling forever.
type SessionReaper struct {
	sessions repository.SessionsRepository
	interval time.Duration
	timeout  time.Duration
}

// NewSessionReaper creates a new instance of SessionReaper.
func NewSessionReaper(sessions repository.SessionsRepository, interval, timeout time.Duration) *SessionReaper {
	return &SessionReaper{sessions: sessions, interval: interval, timeout: timeout}
}

// Run sweeps on the configured interval until the context is cancelled.
func (r *SessionReaper) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep expires stale sessions once.
func (r *SessionReaper) Sweep(ctx context.Context) {
	expired, err := r.sessions.ExpireStale(ctx, r.timeout)
	if err != nil {
		log.Printf("level=error msg=\"expire stale sessions failed\" error=%q", err)
		return
	}
	if expired > 0 {
		log.Printf("level=info msg=\"expired stale workflow sessions\" count=%d timeout=%s", expired, r.timeout)
	}
}
