package hooks

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout bounds a single backend call. A call that has not returned
// by then is treated as failed.
const DefaultTimeout = 5 * time.Second

// Client wraps an Executor with the best-effort policy: every call is bounded
// by a firm timeout, and every failure is logged and swallowed. A nil Client
// or a Client without an Executor reports every call as skipped.
type Client struct {
	exec    Executor
	log     *zap.Logger
	timeout time.Duration
}

// NewClient creates a Client around exec. A nil exec produces a disabled
// Client; a nil logger degrades to zap.NewNop().
func NewClient(exec Executor, logger *zap.Logger, timeout time.Duration) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{exec: exec, log: logger.Named("hooks"), timeout: timeout}
}

// Enabled reports whether a backend is configured at all.
func (c *Client) Enabled() bool {
	return c != nil && c.exec != nil
}

// Try invokes op with payload. The second return is false when the backend is
// absent, the call failed, or the call timed out. Failure reasons are logged,
// never returned: callers degrade locally regardless of cause.
func (c *Client) Try(ctx context.Context, op string, payload map[string]interface{}) (Result, bool) {
	if !c.Enabled() {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	res, err := c.invoke(ctx, op, payload)
	if err != nil {
		c.log.Warn("backend call failed",
			zap.String("op", op),
			zap.Error(err))
		return nil, false
	}
	return res, true
}

// invoke guards against panicking executors; a panic is converted into an
// ordinary failure.
func (c *Client) invoke(ctx context.Context, op string, payload map[string]interface{}) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &panicError{op: op, value: r}
		}
	}()
	return c.exec.Invoke(ctx, op, payload)
}

type panicError struct {
	op    string
	value interface{}
}

func (e *panicError) Error() string {
	return "executor panic during " + e.op
}
