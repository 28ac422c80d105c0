package camunda

import (
	"context"
	"errors"
	"testing"
	"time"

	"nc-param-manager/internal/common/logger"

	"github.com/stretchr/testify/assert"
)

func TestRetryWithBackoff(t *testing.T) {
	retry := RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
	log := logger.NewTestLogger(t)

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), retry, log, "op", func(context.Context) error {
			calls++
			if calls < 3 {
				return errors.New("rpc error: code = Unavailable")
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), retry, log, "op", func(context.Context) error {
			calls++
			return errors.New("permission denied")
		})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(context.Background(), retry, log, "op", func(context.Context) error {
			calls++
			return errors.New("connection refused")
		})
		assert.Error(t, err)
		assert.Equal(t, 3, calls)
	})
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(errors.New("context deadline exceeded")))
	assert.False(t, IsTransient(errors.New("not found")))
}
