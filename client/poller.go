package client

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brandforge/content-engine/api/internal/entity"
)

// DefaultPollInterval is how often the poller checks a session.
const DefaultPollInterval = 3 * time.Second

// SessionGetter fetches current session state; satisfied by *Client.
type SessionGetter interface {
	GetSession(ctx context.Context, sessionID uuid.UUID) (*entity.WorkflowSession, error)
}

// Poller repeatedly fetches a session until it reaches a terminal status.
// Transient fetch errors are tolerated and the poll continues; an unknown
// session or a cancelled context stops it.
type Poller struct {
	getter   SessionGetter
	interval time.Duration
}

// PollerOption configures optional behaviour.
type PollerOption func(*Poller)

// WithInterval overrides the default poll interval.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// NewPoller builds a poller over the given session source.
func NewPoller(getter SessionGetter, opts ...PollerOption) *Poller {
	p := &Poller{getter: getter, interval: DefaultPollInterval}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WaitForCompletion polls until the session is terminal. The returned
// session carries the final status; callers inspect Status and ErrorMessage
// to tell success from workflow failure.
func (p *Poller) WaitForCompletion(ctx context.Context, sessionID uuid.UUID) (*entity.WorkflowSession, error) {
	if session, done, err := p.check(ctx, sessionID); done {
		return session, err
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			if session, done, err := p.check(ctx, sessionID); done {
				return session, err
			}
		}
	}
}

func (p *Poller) check(ctx context.Context, sessionID uuid.UUID) (*entity.WorkflowSession, bool, error) {
	session, err := p.getter.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) || ctx.Err() != nil {
			return nil, true, err
		}
		// Transient failure; keep polling.
		return nil, false, nil
	}
	if session.Status.Terminal() {
		return session, true, nil
	}
	return nil, false, nil
}
