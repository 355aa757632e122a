package hooks

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeExec is a scriptable Executor for tests.
type fakeExec struct {
	err   error
	sleep time.Duration
	calls []string
}

func (f *fakeExec) Invoke(ctx context.Context, op string, payload map[string]interface{}) (Result, error) {
	f.calls = append(f.calls, op)
	if f.sleep > 0 {
		select {
		case <-time.After(f.sleep):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return Result{"op": op}, nil
}

func TestTrySuccess(t *testing.T) {
	exec := &fakeExec{}
	c := NewClient(exec, nil, 0)

	res, ok := c.Try(context.Background(), OpSwarmInit, map[string]interface{}{"agents": 5})
	if !ok {
		t.Fatal("expected success")
	}
	if res["op"] != OpSwarmInit {
		t.Errorf("unexpected result: %v", res)
	}
	if len(exec.calls) != 1 || exec.calls[0] != OpSwarmInit {
		t.Errorf("unexpected calls: %v", exec.calls)
	}
}

func TestTryFailureSwallowed(t *testing.T) {
	exec := &fakeExec{err: errors.New("backend down")}
	c := NewClient(exec, nil, 0)

	if _, ok := c.Try(context.Background(), OpAgentSpawn, nil); ok {
		t.Fatal("expected failure to be reported as not-ok")
	}
}

func TestTryTimeout(t *testing.T) {
	exec := &fakeExec{sleep: time.Second}
	c := NewClient(exec, nil, 10*time.Millisecond)

	start := time.Now()
	_, ok := c.Try(context.Background(), OpNeuralTrain, nil)
	if ok {
		t.Fatal("expected timeout to be reported as not-ok")
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Error("Try did not honor the firm timeout")
	}
}

func TestNilAndDisabledClient(t *testing.T) {
	var c *Client
	if c.Enabled() {
		t.Error("nil client should be disabled")
	}
	if _, ok := c.Try(context.Background(), OpMemoryStore, nil); ok {
		t.Error("nil client should skip calls")
	}

	c = NewClient(nil, nil, 0)
	if c.Enabled() {
		t.Error("client without executor should be disabled")
	}
	if _, ok := c.Try(context.Background(), OpMemoryStore, nil); ok {
		t.Error("disabled client should skip calls")
	}
}

type panicExec struct{}

func (panicExec) Invoke(ctx context.Context, op string, payload map[string]interface{}) (Result, error) {
	panic("boom")
}

func TestTryRecoversExecutorPanic(t *testing.T) {
	c := NewClient(panicExec{}, nil, 0)
	if _, ok := c.Try(context.Background(), OpValidatePhase, nil); ok {
		t.Fatal("panicking executor must be treated as a failed call")
	}
}

func TestNoopExecutor(t *testing.T) {
	c := NewClient(Noop{}, nil, 0)
	res, ok := c.Try(context.Background(), OpSwarmShutdown, nil)
	if !ok {
		t.Fatal("noop executor should always succeed")
	}
	if len(res) != 0 {
		t.Errorf("noop result should be empty, got %v", res)
	}
}
