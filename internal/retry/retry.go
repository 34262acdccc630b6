// Package retry implements bounded polling against a remote UI.
package retry

import (
	"context"
	"errors"
	"time"
)

var ErrTimeout = errors.New("timed out waiting for condition")

type Options struct {
	Timeout  time.Duration
	Interval time.Duration
}

// Until polls check every Interval until it reports true, returns an error, or
// Timeout elapses. check runs once immediately.
func Until(ctx context.Context, opts Options, check func(ctx context.Context) (bool, error)) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	for {
		ok, err := check(ctx)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() != nil {
				return ErrTimeout
			}
			return err
		}
		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return ErrTimeout
			}
			return ctx.Err()
		case <-time.After(opts.Interval):
		}
	}
}

// Healing is a wait that can repair a known failure while it waits.
type Healing struct {
	// Action starts the operation, e.g. a navigation. Optional.
	Action func(ctx context.Context) error
	// Success reports that the operation completed.
	Success func(ctx context.Context) (bool, error)
	// Recoverable reports a known failure that Recover can fix.
	Recoverable func(ctx context.Context) (bool, error)
	// Recover repairs the failure, e.g. by repeating the navigation.
	Recover func(ctx context.Context) error
}

// Run performs Action and then waits for Success, invoking Recover each time
// Recoverable is seen. The whole sequence is bounded by opts.Timeout.
func (h Healing) Run(ctx context.Context, opts Options) error {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	if h.Action != nil {
		if err := h.Action(ctx); err != nil {
			return timeoutOr(ctx, err)
		}
	}

	err := Until(ctx, Options{Timeout: opts.Timeout, Interval: opts.Interval}, func(ctx context.Context) (bool, error) {
		ok, err := h.Success(ctx)
		if err != nil || ok {
			return ok, err
		}

		if h.Recoverable == nil {
			return false, nil
		}
		bad, err := h.Recoverable(ctx)
		if err != nil || !bad {
			return false, err
		}

		if h.Recover != nil {
			if err := h.Recover(ctx); err != nil {
				return false, err
			}
		}
		return false, nil
	})

	return timeoutOr(ctx, err)
}

func timeoutOr(ctx context.Context, err error) error {
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimeout
	}
	return err
}
