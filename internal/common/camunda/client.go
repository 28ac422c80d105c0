package camunda

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nc-param-manager/internal/common/config"
	"nc-param-manager/internal/common/logger"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// RetryConfig defines how the broker connection is retried at startup.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxRetries: 10,
	BaseDelay:  2 * time.Second,
	MaxDelay:   30 * time.Second,
}

// Client wraps the Zeebe gRPC client.
type Client struct {
	zbc.Client
	requestTimeout time.Duration
}

// Connect creates a Zeebe client and waits for the broker topology,
// retrying transient failures with exponential backoff.
func Connect(ctx context.Context, cfg config.CamundaConfig, retry RetryConfig, log logger.Logger) (*Client, error) {
	zeebeClient, err := zbc.NewClient(&zbc.ClientConfig{
		GatewayAddress:         cfg.BrokerAddress,
		UsePlaintextConnection: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Zeebe client: %w", err)
	}

	c := &Client{Client: zeebeClient, requestTimeout: config.GetDuration(cfg.RequestTimeout)}
	err = RetryWithBackoff(ctx, retry, log, "Zeebe topology", func(ctx context.Context) error {
		return c.HealthCheck(ctx)
	})
	if err != nil {
		_ = zeebeClient.Close()
		return nil, fmt.Errorf("failed to connect to Zeebe broker at %s: %w", cfg.BrokerAddress, err)
	}
	return c, nil
}

// HealthCheck asks the broker for its topology.
func (c *Client) HealthCheck(ctx context.Context) error {
	timeout := c.requestTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if _, err := c.NewTopologyCommand().Send(ctx); err != nil {
		return fmt.Errorf("zeebe health check failed: %w", err)
	}
	return nil
}

// RetryWithBackoff runs op until it succeeds, a non-transient error is
// returned or retries are exhausted.
func RetryWithBackoff(ctx context.Context, retry RetryConfig, log logger.Logger, name string, op func(context.Context) error) error {
	delay := retry.BaseDelay
	var err error
	for attempt := 1; attempt <= retry.MaxRetries; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if !IsTransient(err) || attempt == retry.MaxRetries {
			break
		}

		log.Warn(fmt.Sprintf("%s failed, retrying", name), map[string]interface{}{
			"error":       err.Error(),
			"attempt":     attempt,
			"maxRetries":  retry.MaxRetries,
			"nextRetryIn": delay.String(),
		})

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return fmt.Errorf("%s cancelled after %d attempts: %w", name, attempt, ctx.Err())
		}

		delay *= 2
		if retry.MaxDelay > 0 && delay > retry.MaxDelay {
			delay = retry.MaxDelay
		}
	}
	return fmt.Errorf("%s failed: %w", name, err)
}

// IsTransient reports whether err looks like a connectivity problem.
func IsTransient(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, phrase := range []string{
		"connection refused",
		"connection reset",
		"timeout",
		"deadline exceeded",
		"unavailable",
		"unreachable",
		"broken pipe",
	} {
		if strings.Contains(msg, phrase) {
			return true
		}
	}
	return false
}
