package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fast = Options{Timeout: time.Second, Interval: time.Millisecond}

func TestUntilSucceedsAfterPolling(t *testing.T) {
	calls := 0
	err := Until(context.Background(), fast, func(context.Context) (bool, error) {
		calls++
		return calls == 3, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestUntilTimesOut(t *testing.T) {
	err := Until(context.Background(), Options{Timeout: 20 * time.Millisecond, Interval: 5 * time.Millisecond},
		func(context.Context) (bool, error) { return false, nil })

	assert.ErrorIs(t, err, ErrTimeout)
}

func TestUntilStopsOnError(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Until(context.Background(), fast, func(context.Context) (bool, error) {
		calls++
		return false, boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestUntilHonorsCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Until(ctx, fast, func(context.Context) (bool, error) { return false, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHealingRecoversTransientFailure(t *testing.T) {
	loads := []string{"banner", "banner", "ready"}
	navigations := 0
	current := func() string { return loads[navigations-1] }
	navigate := func(context.Context) error {
		navigations++
		return nil
	}

	h := Healing{
		Action: navigate,
		Success: func(context.Context) (bool, error) {
			return current() == "ready", nil
		},
		Recoverable: func(context.Context) (bool, error) {
			return current() == "banner", nil
		},
		Recover: navigate,
	}

	require.NoError(t, h.Run(context.Background(), fast))
	assert.Equal(t, 3, navigations)
}

func TestHealingTimesOut(t *testing.T) {
	recovered := 0
	h := Healing{
		Success:     func(context.Context) (bool, error) { return false, nil },
		Recoverable: func(context.Context) (bool, error) { return true, nil },
		Recover: func(context.Context) error {
			recovered++
			return nil
		},
	}

	err := h.Run(context.Background(), Options{Timeout: 30 * time.Millisecond, Interval: 5 * time.Millisecond})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Positive(t, recovered)
}

func TestHealingActionError(t *testing.T) {
	boom := errors.New("navigate failed")
	h := Healing{
		Action:  func(context.Context) error { return boom },
		Success: func(context.Context) (bool, error) { return true, nil },
	}

	assert.ErrorIs(t, h.Run(context.Background(), fast), boom)
}
