package config

import (
	"time"
)

// Config represents the transition config. A fresh Config accompanies every
// visibility signal; the controller keeps the most recent one and hands it to
// the lifecycle callbacks.
type Config struct {
	// Duration is the length of a single enter or exit animation.
	// A zero duration is legal and completes as soon as the timer fires.
	Duration time.Duration `json:"duration,omitempty"`
	// Into is the desired visibility of the element
	Into bool `json:"into"`
	// MountOnEnter keeps the element out of the render tree until it is
	// asked to become visible for the first time
	MountOnEnter bool `json:"mount_on_enter"`
	// UnmountOnExit removes the element from the render tree once an exit
	// animation finishes
	UnmountOnExit bool `json:"unmount_on_exit"`
	// TransitionAppear animates the first appearance when the element is
	// initially visible
	TransitionAppear bool `json:"transition_appear"`

	// Animation is the opaque animation-name token handed to the rendering
	// surface, it is not validated here
	Animation string `json:"animation,omitempty"`
	// EntireTransition marks animations that affect the whole element
	// container rather than only its content
	EntireTransition bool `json:"entire_transition"`

	// Element is the wrapped child element
	Element ElementConfig `json:"element"`
}

type ElementConfig struct {
	// Key is an opaque distinguishing value, passed through untouched
	Key string `json:"key"`
	// Class are the caller's own class tokens, merged into the computed
	// class list
	Class []string `json:"class,omitempty"`
	// Style is the caller's style, merged into the computed style
	Style map[string]string `json:"style,omitempty"`
	// Content is the wrapped child content
	Content any `json:"content,omitempty"`
}
