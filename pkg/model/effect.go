package model

import (
	"time"
)

// CallbackKind identifies a lifecycle callback of the transition protocol.
type CallbackKind string

const (
	// CallbackStart fires right after an animation begins
	CallbackStart CallbackKind = "start"
	// CallbackComplete fires when the duration timer expires
	CallbackComplete CallbackKind = "complete"
	// CallbackShow fires when an enter animation settles fully shown
	CallbackShow CallbackKind = "show"
	// CallbackHide fires when an exit animation settles hidden or unmounted
	CallbackHide CallbackKind = "hide"
)

func (c CallbackKind) String() string {
	return string(c)
}

// CallbackRequest names one callback to invoke together with the status the
// callback observes.
type CallbackRequest struct {
	// Kind is the callback to invoke
	Kind CallbackKind
	// Status is the element status at the protocol point of the callback
	Status Status
}

// TimerAction is the action the host applies to the completion timer.
type TimerAction int

const (
	// TimerKeep leaves the completion timer untouched
	TimerKeep TimerAction = iota
	// TimerArm schedules a fresh completion timer, replacing any live one
	TimerArm
)

func (t TimerAction) String() string {
	switch t {
	case TimerKeep:
		return "keep"
	case TimerArm:
		return "arm"
	default:
		return "unknown"
	}
}

// Effects describes the side effects the host must perform after a machine
// handler returns. The machine itself never invokes callbacks and never
// touches timers; it only records what should happen, which keeps the status
// computation independently testable.
type Effects struct {
	// Callbacks are invoked in order, before the timer action is applied
	Callbacks []CallbackRequest
	// Timer is the action to apply to the completion timer
	Timer TimerAction
	// ArmFor is the timer duration when Timer is TimerArm
	ArmFor time.Duration
	// Transitions are the status commits made by the handler, in order
	Transitions []StatusTransition
}
