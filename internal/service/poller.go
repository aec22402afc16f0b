package service

import (
	"context"
	"sync"
	"time"
)

// PollFunc is one polling round. It should respect the context and
// return promptly when it is cancelled.
type PollFunc func(ctx context.Context)

// Poller drives the messaging refresh loops. At most one loop is
// active at a time: opening a conversation replaces the list loop and
// vice versa, so switching views never leaks a ticker. The open
// conversation is polled faster than the conversation list.
type Poller struct {
	msgInterval  time.Duration
	listInterval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewPoller returns a stopped poller with the given intervals.
func NewPoller(msgInterval, listInterval time.Duration) *Poller {
	return &Poller{msgInterval: msgInterval, listInterval: listInterval}
}

// StartConversation begins polling an open conversation, replacing
// any active loop. fn runs once immediately, then once per interval.
func (p *Poller) StartConversation(ctx context.Context, fn PollFunc) {
	p.start(ctx, p.msgInterval, fn)
}

// StartList begins polling the conversation list, replacing any
// active loop.
func (p *Poller) StartList(ctx context.Context, fn PollFunc) {
	p.start(ctx, p.listInterval, fn)
}

func (p *Poller) start(ctx context.Context, interval time.Duration, fn PollFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	p.cancel = cancel
	p.done = done

	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		fn(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn(ctx)
			}
		}
	}()
}

// Stop tears down the active loop, if any, and waits for it to exit.
// Idempotent.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

func (p *Poller) stopLocked() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
}

// Active reports whether a loop is currently running.
func (p *Poller) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}
