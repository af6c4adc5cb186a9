// Package render abstracts the browser that renders the SEACE listing. The
// crawler only needs a handful of operations, so tests drive it with a fake.
package render

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("render: timeout")

// Element is a handle on one rendered node.
type Element interface {
	Text() (string, error)
	// Snapshot reads the node's rendered text and inner markup in one call,
	// so both describe the same node even if the page re-renders meanwhile.
	Snapshot() (text, html string, err error)
	Click() error
}

// Renderer is one rendering session (a browser context with a single page).
// Sessions are used serially and must be closed by whoever opened them.
type Renderer interface {
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	QueryAll(ctx context.Context, selector string) ([]Element, error)
	// Query returns nil, nil when nothing matches.
	Query(ctx context.Context, selector string) (Element, error)
	Content(ctx context.Context) (string, error)
	Close() error
}

// Provider opens independent sessions. Implementations must be safe for
// concurrent use.
type Provider interface {
	NewSession(ctx context.Context) (Renderer, error)
}

// Sleep waits d or until ctx ends.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// MinBudget is the smallest timeout Budget hands out under a deadline. The
// browser reads a zero timeout as "wait forever".
const MinBudget = time.Millisecond

// Budget caps timeout by whatever is left of ctx's deadline. Under a deadline
// the result is never below MinBudget.
func Budget(ctx context.Context, timeout time.Duration) time.Duration {
	if dl, ok := ctx.Deadline(); ok {
		if left := time.Until(dl); left < timeout || timeout <= 0 {
			if left < MinBudget {
				return MinBudget
			}
			return left
		}
	}
	return timeout
}
