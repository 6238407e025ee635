package model

// TransitionEvent represents the events in the visibility lifecycle of the
// element, used to drive the status Finite State Machine (FSM)
type TransitionEvent string

const (
	// EventMount represents a hidden element entering the render tree
	EventMount TransitionEvent = "mount"
	// EventEnter represents the start of an animation toward shown
	EventEnter TransitionEvent = "enter"
	// EventExit represents the start of an animation toward hidden
	EventExit TransitionEvent = "exit"
	// EventShown represents an enter animation settling fully shown
	EventShown TransitionEvent = "shown"
	// EventHidden represents an exit animation settling fully hidden
	EventHidden TransitionEvent = "hidden"
	// EventUnmount represents an exit animation removing the element
	EventUnmount TransitionEvent = "unmount"
)

func (e TransitionEvent) String() string {
	return string(e)
}
