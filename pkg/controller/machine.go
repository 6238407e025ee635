package controller

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"

	"github.com/danl5/gofade/pkg/config"
	"github.com/danl5/gofade/pkg/log"
	"github.com/danl5/gofade/pkg/model"
)

// NewMachine creates the status machine for one transitioning element.
// The initial status and the initially queued transition are derived from
// the configuration.
func NewMachine(cfg config.Config, logger log.Logger) (*Machine, error) {
	if logger == nil {
		return nil, fmt.Errorf("new machine, logger is nil")
	}

	m := &Machine{
		cfg:    cfg,
		logger: logger,
	}

	initial, pending := deriveInitial(cfg)
	m.pending = pending
	// initialize the status FSM
	m.initializeFsm(initial)
	return m, nil
}

// Machine is the transition status state machine. Its handlers mutate only
// machine state and return the Effects the host must perform; the machine
// itself never invokes callbacks and never schedules timers.
type Machine struct {
	// cfg is the most recent configuration received with a signal
	cfg config.Config
	// logger
	logger log.Logger

	// fsm holds the current status and the legal status graph
	fsm *fsm.FSM
	// pending is the queued next transition, StatusNone when empty.
	// When set it is always StatusEntering or StatusExiting, never a
	// terminal status.
	pending model.Status
	// animating is true strictly between a start and its completion
	animating bool

	// commits collects the status transitions made while handling one input
	commits []model.StatusTransition
}

// deriveInitial maps the construction-time configuration to the initial
// status and the initially queued transition.
func deriveInitial(cfg config.Config) (model.Status, model.Status) {
	if cfg.Into {
		if cfg.TransitionAppear {
			// start hidden and force an animated appearance
			return model.StatusExited, model.StatusEntering
		}
		return model.StatusEntered, model.StatusNone
	}
	if cfg.MountOnEnter || cfg.UnmountOnExit {
		return model.StatusUnmounted, model.StatusNone
	}
	return model.StatusExited, model.StatusNone
}

// Status returns the current element status.
func (m *Machine) Status() model.Status {
	return model.Status(m.fsm.Current())
}

// Pending returns the queued next transition, StatusNone when nothing is queued.
func (m *Machine) Pending() model.Status {
	return m.pending
}

// Animating reports whether a start-to-complete cycle is in flight.
func (m *Machine) Animating() bool {
	return m.animating
}

// Config returns the most recent configuration.
func (m *Machine) Config() config.Config {
	return m.cfg
}

// HandleSignal applies a new desired-visibility signal. A hidden element that
// is asked to become visible enters the render tree immediately; the actual
// animation is queued and begins at the next checkpoint.
func (m *Machine) HandleSignal(cfg config.Config) (model.Effects, error) {
	m.cfg = cfg

	if cfg.Into {
		if m.Status() == model.StatusUnmounted {
			if err := m.commit(model.EventMount, model.TransitionKindMount); err != nil {
				return model.Effects{}, err
			}
		}
		if !m.Status().TowardShown() {
			m.pending = model.StatusEntering
		}
	} else if m.Status().TowardShown() {
		m.pending = model.StatusExiting
	}

	return model.Effects{Transitions: m.takeCommits()}, nil
}

// HandleCheckpoint recomputes the queued transition and starts it when no
// animation is in flight. The host invokes it after every render-affecting
// checkpoint, including the one right after construction.
func (m *Machine) HandleCheckpoint() (model.Effects, error) {
	if m.pending == model.StatusNone {
		return model.Effects{}, nil
	}

	m.pending = m.nextStatus()
	if m.animating {
		// the queued transition chains when the current one completes
		return model.Effects{}, nil
	}
	return m.start()
}

// HandleTimerFire completes the in-flight animation: it either chains into a
// freshly queued transition or settles into a resting status. A fire that
// arrives while nothing is animating is a no-op.
func (m *Machine) HandleTimerFire() (model.Effects, error) {
	if !m.animating {
		m.logger.Warn("completion timer fired while idle, ignore it", "status", m.Status())
		return model.Effects{}, nil
	}

	complete := model.CallbackRequest{Kind: model.CallbackComplete, Status: m.Status()}

	if m.pending != model.StatusNone {
		// a new target was queued mid-flight, chain without settling
		effects, err := m.start()
		if err != nil {
			return effects, err
		}
		effects.Callbacks = append([]model.CallbackRequest{complete}, effects.Callbacks...)
		return effects, nil
	}

	var (
		settle model.TransitionEvent
		notify model.CallbackKind
	)
	if m.Status() == model.StatusEntering {
		settle, notify = model.EventShown, model.CallbackShow
	} else {
		settle, notify = model.EventHidden, model.CallbackHide
		if m.cfg.UnmountOnExit {
			settle = model.EventUnmount
		}
	}
	if err := m.commit(settle, model.TransitionKindSettle); err != nil {
		return model.Effects{}, err
	}
	m.animating = false

	return model.Effects{
		Callbacks: []model.CallbackRequest{
			complete,
			{Kind: notify, Status: m.Status()},
		},
		Transitions: m.takeCommits(),
	}, nil
}

// nextStatus keeps a queued target consistent with the current status: an
// in-flight animation can only be followed by its opposite, an idle element
// can only leave the resting state it is in.
func (m *Machine) nextStatus() model.Status {
	if m.animating {
		if m.Status() == model.StatusEntering {
			return model.StatusExiting
		}
		return model.StatusEntering
	}
	if m.Status() == model.StatusEntered {
		return model.StatusExiting
	}
	return model.StatusEntering
}

// start consumes the queued transition and begins animating toward it.
// The status commit is visible before the start callback fires, and the
// callback precedes the timer arming.
func (m *Machine) start() (model.Effects, error) {
	next := m.pending
	m.pending = model.StatusNone

	ev := model.EventEnter
	if next == model.StatusExiting {
		ev = model.EventExit
	}
	if err := m.commit(ev, model.TransitionKindStart); err != nil {
		return model.Effects{}, err
	}
	m.animating = true

	return model.Effects{
		Callbacks:   []model.CallbackRequest{{Kind: model.CallbackStart, Status: m.Status()}},
		Timer:       model.TimerArm,
		ArmFor:      m.cfg.Duration,
		Transitions: m.takeCommits(),
	}, nil
}

func (m *Machine) commit(ev model.TransitionEvent, kind model.TransitionKind) error {
	src := m.Status()
	if !m.fsm.Can(ev.String()) {
		return fmt.Errorf("illegal transition event %q in status %q", ev, src)
	}
	if err := m.fsm.Event(context.Background(), ev.String()); err != nil {
		return fmt.Errorf("transition event %q in status %q: %w", ev, src, err)
	}

	m.commits = append(m.commits, model.StatusTransition{
		Status:    m.Status(),
		SrcStatus: src,
		Kind:      kind,
	})
	return nil
}

func (m *Machine) takeCommits() []model.StatusTransition {
	commits := m.commits
	m.commits = nil
	return commits
}

// Visualize returns a visualization of the status machine in Graphviz format.
func (m *Machine) Visualize() string {
	return fsm.Visualize(m.fsm)
}

// initializeFsm initializes the status machine of a transitioning element
func (m *Machine) initializeFsm(initial model.Status) {
	m.fsm = fsm.NewFSM(
		initial.String(),
		fsm.Events{
			{
				Name: model.EventMount.String(),
				Src:  []string{model.StatusUnmounted.String()},
				Dst:  model.StatusExited.String(),
			},
			{
				Name: model.EventEnter.String(),
				Src: []string{
					model.StatusExited.String(),
					model.StatusExiting.String(),
				},
				Dst: model.StatusEntering.String(),
			},
			{
				Name: model.EventExit.String(),
				Src: []string{
					model.StatusEntered.String(),
					model.StatusEntering.String(),
				},
				Dst: model.StatusExiting.String(),
			},
			{
				Name: model.EventShown.String(),
				Src:  []string{model.StatusEntering.String()},
				Dst:  model.StatusEntered.String(),
			},
			{
				Name: model.EventHidden.String(),
				Src:  []string{model.StatusExiting.String()},
				Dst:  model.StatusExited.String(),
			},
			{
				Name: model.EventUnmount.String(),
				Src:  []string{model.StatusExiting.String()},
				Dst:  model.StatusUnmounted.String(),
			},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, ev *fsm.Event) {
				m.logger.Debug("status committed", "from", ev.Src, "to", ev.Dst)
			},
		},
	)
}
