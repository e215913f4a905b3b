package worker

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Message types accepted by PostMessage.
const (
	MessageCleanCache  = "CLEAN_CACHE"
	MessageSkipWaiting = "SKIP_WAITING"
)

var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrMailboxFull    = errors.New("worker mailbox full")
)

// Message is a command sent from a page to the worker.
type Message struct {
	Type string `json:"type"`
}

// PostMessage queues msg for Run. It never blocks.
func (w *Worker) PostMessage(msg Message) error {
	switch msg.Type {
	case MessageCleanCache, MessageSkipWaiting:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
	}
	select {
	case w.messages <- msg:
		return nil
	default:
		return ErrMailboxFull
	}
}

// HandleMessage processes msg synchronously.
func (w *Worker) HandleMessage(ctx context.Context, msg Message) error {
	switch msg.Type {
	case MessageCleanCache:
		n, err := w.Sweep(ctx, w.cleanMaxAge)
		if err != nil {
			return err
		}
		w.logger.Infof("clean cache: removed %d entries", n)
		return nil
	case MessageSkipWaiting:
		if w.State() != StateInstalled {
			return nil
		}
		return w.Activate(ctx)
	}
	return fmt.Errorf("%w: %q", ErrUnknownMessage, msg.Type)
}

// Sweep removes dynamic entries whose Date header is older than maxAge.
// Entries without a usable Date are kept.
func (w *Worker) Sweep(ctx context.Context, maxAge time.Duration) (int, error) {
	name := w.partitions.Dynamic
	urls, err := w.storage.URLs(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("listing %s: %w", name, err)
	}
	cutoff := w.now().Add(-maxAge)
	removed := 0
	for _, u := range urls {
		e, err := w.storage.Match(ctx, name, u)
		if errors.Is(err, ErrCacheMiss) {
			continue
		}
		if err != nil {
			return removed, fmt.Errorf("reading %s: %w", u, err)
		}
		date, ok := e.Date()
		if !ok || !date.Before(cutoff) {
			continue
		}
		if err := w.storage.Remove(ctx, name, u); err != nil {
			return removed, fmt.Errorf("removing %s: %w", u, err)
		}
		removed++
	}
	return removed, nil
}

// Run drains posted messages and runs the periodic sweep until ctx ends.
// Message errors are logged.
func (w *Worker) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if w.sweepInterval > 0 {
		t := time.NewTicker(w.sweepInterval)
		defer t.Stop()
		tick = t.C
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-w.messages:
			if err := w.HandleMessage(ctx, msg); err != nil {
				w.logger.Errorf("message %s: %v", msg.Type, err)
			}
		case <-tick:
			n, err := w.Sweep(ctx, w.sweepMaxAge)
			if err != nil {
				w.logger.Errorf("periodic sweep: %v", err)
				continue
			}
			w.logger.Infof("periodic sweep: removed %d entries", n)
		}
	}
}
