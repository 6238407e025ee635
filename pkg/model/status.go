package model

// Status represents the visibility lifecycle state of a transitioning element.
type Status string

const (
	// StatusUnmounted means the element is not present in the render tree at all
	StatusUnmounted Status = "unmounted"
	// StatusExited means the element is present but fully hidden
	StatusExited Status = "exited"
	// StatusExiting means the element is animating toward hidden
	StatusExiting Status = "exiting"
	// StatusEntering means the element is animating toward shown
	StatusEntering Status = "entering"
	// StatusEntered means the element is present and fully shown
	StatusEntered Status = "entered"

	// StatusNone marks the absence of a queued transition. It is never a
	// value of the current status.
	StatusNone Status = ""
)

func (s Status) String() string {
	return string(s)
}

// Terminal reports whether the status is a resting state with no animation
// in flight.
func (s Status) Terminal() bool {
	return s == StatusEntered || s == StatusExited || s == StatusUnmounted
}

// Present reports whether the element is renderable in this status.
func (s Status) Present() bool {
	return s != StatusUnmounted && s != StatusNone
}

// TowardShown reports whether the status points at the shown side of the
// lifecycle, either animating in or fully shown.
func (s Status) TowardShown() bool {
	return s == StatusEntering || s == StatusEntered
}

// TransitionKind classifies a committed status change.
type TransitionKind int

const (
	// TransitionKindMount is the immediate unmounted-to-exited commit made
	// when a hidden element is asked to become visible.
	TransitionKindMount TransitionKind = iota
	// TransitionKindStart begins an enter or exit animation.
	TransitionKindStart
	// TransitionKindSettle ends an animation in a resting status.
	TransitionKindSettle
)

func (t TransitionKind) String() string {
	switch t {
	case TransitionKindMount:
		return "mount"
	case TransitionKindStart:
		return "start"
	case TransitionKindSettle:
		return "settle"
	default:
		return "unknown"
	}
}

// StatusTransition represents a committed change of the element status
type StatusTransition struct {
	// Status is the destination status of the transition
	Status Status
	// SrcStatus is the source status of the transition
	SrcStatus Status
	// Kind is the kind of the transition
	Kind TransitionKind
}
