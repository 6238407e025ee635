package controller

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danl5/gofade/pkg/config"
	"github.com/danl5/gofade/pkg/model"
)

type invocation struct {
	kind   model.CallbackKind
	status model.Status
}

func recordingCallBacks(events chan invocation) *LifecycleCallBacks {
	record := func(kind model.CallbackKind) CallbackHandler {
		return func(_ context.Context, cc CallbackContext) error {
			events <- invocation{kind: kind, status: cc.Status}
			return nil
		}
	}
	return &LifecycleCallBacks{
		OnStart:    record(model.CallbackStart),
		OnComplete: record(model.CallbackComplete),
		OnShow:     record(model.CallbackShow),
		OnHide:     record(model.CallbackHide),
	}
}

func nextInvocation(t *testing.T, events <-chan invocation) invocation {
	t.Helper()
	select {
	case in := <-events:
		return in
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a lifecycle callback")
		return invocation{}
	}
}

func TestController_FullEnterCycle(t *testing.T) {
	events := make(chan invocation, 16)

	cfg := config.Config{Duration: 10 * time.Millisecond}
	c, err := NewController(cfg, recordingCallBacks(events), time.Second, slog.Default())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Run()
	require.NoError(t, err)
	require.Equal(t, model.StatusExited, c.Status())

	cfg.Into = true
	require.NoError(t, c.Signal(cfg))

	assert.Equal(t, invocation{model.CallbackStart, model.StatusEntering}, nextInvocation(t, events))
	assert.Equal(t, invocation{model.CallbackComplete, model.StatusEntering}, nextInvocation(t, events))
	assert.Equal(t, invocation{model.CallbackShow, model.StatusEntered}, nextInvocation(t, events))

	assert.Equal(t, model.StatusEntered, c.Status())
	assert.False(t, c.IsAnimating())
}

func TestController_OpposingSignalChains(t *testing.T) {
	events := make(chan invocation, 16)

	cfg := config.Config{Duration: 50 * time.Millisecond}
	c, err := NewController(cfg, recordingCallBacks(events), time.Second, slog.Default())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Run()
	require.NoError(t, err)

	cfg.Into = true
	require.NoError(t, c.Signal(cfg))
	assert.Equal(t, invocation{model.CallbackStart, model.StatusEntering}, nextInvocation(t, events))

	// hide again while the enter animation is in flight
	cfg.Into = false
	require.NoError(t, c.Signal(cfg))

	// the enter completes but never settles, it chains into the exit
	assert.Equal(t, invocation{model.CallbackComplete, model.StatusEntering}, nextInvocation(t, events))
	assert.Equal(t, invocation{model.CallbackStart, model.StatusExiting}, nextInvocation(t, events))
	assert.Equal(t, invocation{model.CallbackComplete, model.StatusExiting}, nextInvocation(t, events))
	assert.Equal(t, invocation{model.CallbackHide, model.StatusExited}, nextInvocation(t, events))

	assert.Equal(t, model.StatusExited, c.Status())
}

func TestController_CloseCancelsTimer(t *testing.T) {
	events := make(chan invocation, 16)

	cfg := config.Config{Duration: 100 * time.Millisecond}
	c, err := NewController(cfg, recordingCallBacks(events), time.Second, slog.Default())
	require.NoError(t, err)

	_, err = c.Run()
	require.NoError(t, err)

	cfg.Into = true
	require.NoError(t, c.Signal(cfg))
	assert.Equal(t, invocation{model.CallbackStart, model.StatusEntering}, nextInvocation(t, events))

	require.NoError(t, c.Close())

	// the completion must never fire into a destroyed instance
	select {
	case in := <-events:
		t.Fatalf("unexpected callback after close: %v", in)
	case <-time.After(300 * time.Millisecond):
	}

	assert.Error(t, c.Signal(cfg))
}

func TestController_AbsentCallbacksAreSkipped(t *testing.T) {
	cfg := config.Config{Duration: 10 * time.Millisecond}
	c, err := NewController(cfg, nil, time.Second, slog.Default())
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Run()
	require.NoError(t, err)

	cfg.Into = true
	require.NoError(t, c.Signal(cfg))

	assert.Eventually(t, func() bool {
		return c.Status() == model.StatusEntered
	}, 2*time.Second, 5*time.Millisecond)
}
