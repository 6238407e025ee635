package controller

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danl5/gofade/pkg/config"
	"github.com/danl5/gofade/pkg/model"
)

func testConfig(into bool) config.Config {
	return config.Config{
		Duration: 300 * time.Millisecond,
		Into:     into,
	}
}

func newTestMachine(t *testing.T, cfg config.Config) *Machine {
	t.Helper()
	m, err := NewMachine(cfg, slog.Default())
	require.NoError(t, err)
	return m
}

func callbackKinds(effects model.Effects) []model.CallbackKind {
	var kinds []model.CallbackKind
	for _, cb := range effects.Callbacks {
		kinds = append(kinds, cb.Kind)
	}
	return kinds
}

func TestMachine_DeriveInitial(t *testing.T) {
	tests := []struct {
		name        string
		config      config.Config
		wantStatus  model.Status
		wantPending model.Status
	}{
		{
			name:        "visible",
			config:      config.Config{Into: true},
			wantStatus:  model.StatusEntered,
			wantPending: model.StatusNone,
		},
		{
			name:        "visible_with_appear",
			config:      config.Config{Into: true, TransitionAppear: true},
			wantStatus:  model.StatusExited,
			wantPending: model.StatusEntering,
		},
		{
			name:        "hidden_mount_on_enter",
			config:      config.Config{MountOnEnter: true},
			wantStatus:  model.StatusUnmounted,
			wantPending: model.StatusNone,
		},
		{
			name:        "hidden_unmount_on_exit",
			config:      config.Config{UnmountOnExit: true},
			wantStatus:  model.StatusUnmounted,
			wantPending: model.StatusNone,
		},
		{
			name:        "hidden_mount_and_unmount",
			config:      config.Config{MountOnEnter: true, UnmountOnExit: true},
			wantStatus:  model.StatusUnmounted,
			wantPending: model.StatusNone,
		},
		{
			name:        "hidden_always_mounted",
			config:      config.Config{},
			wantStatus:  model.StatusExited,
			wantPending: model.StatusNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestMachine(t, tt.config)
			assert.Equal(t, tt.wantStatus, m.Status())
			assert.Equal(t, tt.wantPending, m.Pending())
			assert.False(t, m.Animating())
		})
	}
}

func TestMachine_RepeatedShowSignalIsNoop(t *testing.T) {
	// fully shown element
	m := newTestMachine(t, testConfig(true))
	require.Equal(t, model.StatusEntered, m.Status())

	effects, err := m.HandleSignal(testConfig(true))
	require.NoError(t, err)
	assert.Empty(t, effects.Transitions)
	assert.Empty(t, effects.Callbacks)
	assert.Equal(t, model.StatusNone, m.Pending())

	// element animating in
	m = newTestMachine(t, config.Config{Into: true, TransitionAppear: true})
	_, err = m.HandleCheckpoint()
	require.NoError(t, err)
	require.Equal(t, model.StatusEntering, m.Status())
	require.True(t, m.Animating())

	_, err = m.HandleSignal(config.Config{Into: true, TransitionAppear: true})
	require.NoError(t, err)
	assert.Equal(t, model.StatusNone, m.Pending())
}

func TestMachine_SettleTerminal(t *testing.T) {
	tests := []struct {
		name          string
		unmountOnExit bool
		wantTerminal  model.Status
	}{
		{
			name:         "exit_keeps_element_mounted",
			wantTerminal: model.StatusExited,
		},
		{
			name:          "exit_unmounts_element",
			unmountOnExit: true,
			wantTerminal:  model.StatusUnmounted,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Config{Duration: 300 * time.Millisecond, Into: true}
			m := newTestMachine(t, cfg)
			require.Equal(t, model.StatusEntered, m.Status())

			cfg.Into = false
			cfg.UnmountOnExit = tt.unmountOnExit
			_, err := m.HandleSignal(cfg)
			require.NoError(t, err)
			assert.Equal(t, model.StatusExiting, m.Pending())

			effects, err := m.HandleCheckpoint()
			require.NoError(t, err)
			assert.Equal(t, model.StatusExiting, m.Status())
			assert.Equal(t, model.StatusNone, m.Pending())
			assert.True(t, m.Animating())
			assert.Equal(t, model.TimerArm, effects.Timer)
			assert.Equal(t, cfg.Duration, effects.ArmFor)
			assert.Equal(t, []model.CallbackKind{model.CallbackStart}, callbackKinds(effects))

			effects, err = m.HandleTimerFire()
			require.NoError(t, err)
			assert.Equal(t, tt.wantTerminal, m.Status())
			assert.False(t, m.Animating())
			assert.Equal(t, model.TimerKeep, effects.Timer)
			assert.Equal(t,
				[]model.CallbackKind{model.CallbackComplete, model.CallbackHide},
				callbackKinds(effects))
			assert.Equal(t, tt.wantTerminal, effects.Callbacks[1].Status)
		})
	}
}

func TestMachine_ChainingMidFlight(t *testing.T) {
	cfg := config.Config{Duration: 300 * time.Millisecond, Into: true, TransitionAppear: true}
	m := newTestMachine(t, cfg)

	_, err := m.HandleCheckpoint()
	require.NoError(t, err)
	require.Equal(t, model.StatusEntering, m.Status())
	require.True(t, m.Animating())

	// opposing signal while the enter animation is in flight
	cfg.Into = false
	_, err = m.HandleSignal(cfg)
	require.NoError(t, err)
	assert.Equal(t, model.StatusExiting, m.Pending())

	// a checkpoint while animating must not start the queued transition
	effects, err := m.HandleCheckpoint()
	require.NoError(t, err)
	assert.Empty(t, effects.Callbacks)
	assert.Equal(t, model.StatusEntering, m.Status())

	// completion chains into the exit without ever settling the enter
	effects, err = m.HandleTimerFire()
	require.NoError(t, err)
	assert.Equal(t,
		[]model.CallbackKind{model.CallbackComplete, model.CallbackStart},
		callbackKinds(effects))
	assert.Equal(t, model.StatusEntering, effects.Callbacks[0].Status)
	assert.Equal(t, model.StatusExiting, effects.Callbacks[1].Status)
	assert.Equal(t, model.TimerArm, effects.Timer)
	assert.Equal(t, model.StatusExiting, m.Status())
	assert.True(t, m.Animating())

	// the chained exit settles normally
	effects, err = m.HandleTimerFire()
	require.NoError(t, err)
	assert.Equal(t,
		[]model.CallbackKind{model.CallbackComplete, model.CallbackHide},
		callbackKinds(effects))
	assert.Equal(t, model.StatusExited, m.Status())
	assert.False(t, m.Animating())
}

func TestMachine_CallbackOrderingFullCycle(t *testing.T) {
	cfg := config.Config{Duration: 300 * time.Millisecond, Into: true}
	m := newTestMachine(t, cfg)
	require.Equal(t, model.StatusEntered, m.Status())

	var observed []model.CallbackRequest

	cfg.Into = false
	effects, err := m.HandleSignal(cfg)
	require.NoError(t, err)
	observed = append(observed, effects.Callbacks...)

	effects, err = m.HandleCheckpoint()
	require.NoError(t, err)
	observed = append(observed, effects.Callbacks...)

	effects, err = m.HandleTimerFire()
	require.NoError(t, err)
	observed = append(observed, effects.Callbacks...)

	assert.Equal(t, []model.CallbackRequest{
		{Kind: model.CallbackStart, Status: model.StatusExiting},
		{Kind: model.CallbackComplete, Status: model.StatusExiting},
		{Kind: model.CallbackHide, Status: model.StatusExited},
	}, observed)
}

func TestMachine_AnimatedAppearance(t *testing.T) {
	cfg := config.Config{
		Duration:         300 * time.Millisecond,
		Into:             true,
		TransitionAppear: true,
		UnmountOnExit:    true,
	}
	m := newTestMachine(t, cfg)
	require.Equal(t, model.StatusExited, m.Status())
	require.Equal(t, model.StatusEntering, m.Pending())

	// mount checkpoint starts the appearance
	effects, err := m.HandleCheckpoint()
	require.NoError(t, err)
	assert.Equal(t, model.StatusEntering, m.Status())
	assert.Equal(t, []model.CallbackKind{model.CallbackStart}, callbackKinds(effects))
	assert.Equal(t, model.TimerArm, effects.Timer)
	assert.Equal(t, 300*time.Millisecond, effects.ArmFor)

	// unmountOnExit only affects exits, an enter settles shown
	effects, err = m.HandleTimerFire()
	require.NoError(t, err)
	assert.Equal(t, []model.CallbackRequest{
		{Kind: model.CallbackComplete, Status: model.StatusEntering},
		{Kind: model.CallbackShow, Status: model.StatusEntered},
	}, effects.Callbacks)
	assert.Equal(t, model.StatusEntered, m.Status())
}

func TestMachine_ShowSignalMountsElement(t *testing.T) {
	cfg := config.Config{Duration: 300 * time.Millisecond, MountOnEnter: true}
	m := newTestMachine(t, cfg)
	require.Equal(t, model.StatusUnmounted, m.Status())
	require.Equal(t, model.StatusNone, m.Pending())

	cfg.Into = true
	effects, err := m.HandleSignal(cfg)
	require.NoError(t, err)

	// the element enters the tree hidden, the animation is only queued
	assert.Equal(t, model.StatusExited, m.Status())
	assert.Equal(t, model.StatusEntering, m.Pending())
	assert.False(t, m.Animating())
	assert.Equal(t, []model.StatusTransition{{
		Status:    model.StatusExited,
		SrcStatus: model.StatusUnmounted,
		Kind:      model.TransitionKindMount,
	}}, effects.Transitions)
	assert.Empty(t, effects.Callbacks)
}

// The checkpoint recompute rewrites a queued target from the current status
// and the animating flag alone, even when no signal changed it.
func TestMachine_CheckpointRecomputesQueuedTarget(t *testing.T) {
	t.Run("in_flight_queue_follows_opposite_direction", func(t *testing.T) {
		cfg := config.Config{Duration: 300 * time.Millisecond, Into: true}
		m := newTestMachine(t, cfg)

		cfg.Into = false
		_, err := m.HandleSignal(cfg)
		require.NoError(t, err)
		_, err = m.HandleCheckpoint()
		require.NoError(t, err)
		require.Equal(t, model.StatusExiting, m.Status())
		require.True(t, m.Animating())

		// a queued target pointing the same way as the in-flight animation
		// is rewritten to its opposite
		m.pending = model.StatusExiting
		effects, err := m.HandleCheckpoint()
		require.NoError(t, err)
		assert.Empty(t, effects.Callbacks)
		assert.Equal(t, model.StatusEntering, m.Pending())
		assert.Equal(t, model.StatusExiting, m.Status())
	})

	t.Run("idle_queue_leaves_current_resting_state", func(t *testing.T) {
		m := newTestMachine(t, testConfig(true))
		require.Equal(t, model.StatusEntered, m.Status())

		// a queued enter on a fully shown idle element becomes an exit
		m.pending = model.StatusEntering
		effects, err := m.HandleCheckpoint()
		require.NoError(t, err)
		assert.Equal(t, model.StatusExiting, m.Status())
		assert.True(t, m.Animating())
		assert.Equal(t, []model.CallbackKind{model.CallbackStart}, callbackKinds(effects))
	})
}

func TestMachine_TimerFireWhileIdleIsNoop(t *testing.T) {
	m := newTestMachine(t, testConfig(true))

	effects, err := m.HandleTimerFire()
	require.NoError(t, err)
	assert.Empty(t, effects.Callbacks)
	assert.Empty(t, effects.Transitions)
	assert.Equal(t, model.TimerKeep, effects.Timer)
	assert.Equal(t, model.StatusEntered, m.Status())
}

func TestMachine_ZeroDurationStillArmsTimer(t *testing.T) {
	m := newTestMachine(t, config.Config{Into: true, TransitionAppear: true})

	effects, err := m.HandleCheckpoint()
	require.NoError(t, err)
	assert.Equal(t, model.TimerArm, effects.Timer)
	assert.Equal(t, time.Duration(0), effects.ArmFor)
}
