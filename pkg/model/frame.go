package model

import (
	"errors"
)

// CommandCode is the code of a surface command.
type CommandCode int

const (
	// Paint pushes a rendered frame to the surface
	Paint CommandCode = iota
	// SurfaceState queries the surface for its last applied frame
	SurfaceState
)

func (c CommandCode) String() string {
	switch c {
	case Paint:
		return "paint"
	case SurfaceState:
		return "surface_state"
	default:
		return "unknown"
	}
}

// Frame is the render decision for one element at one point in time.
type Frame struct {
	// Render is false when the element is unmounted; the remaining fields
	// carry no meaning in that case.
	Render bool `json:"render"`
	// Key is the opaque distinguishing value of the element
	Key string `json:"key,omitempty"`
	// Status is the element status the frame was computed from
	Status Status `json:"status,omitempty"`
	// Class is the computed class list
	Class []string `json:"class,omitempty"`
	// Style is the merged style
	Style map[string]string `json:"style,omitempty"`
	// Content is the wrapped child content, passed through untouched
	Content any `json:"content,omitempty"`
}

// PaintRequest is the frame push request
type PaintRequest struct {
	Seq   uint64 `json:"seq"`
	Frame Frame  `json:"frame"`
}

// PaintResponse is the frame push response
type PaintResponse struct {
	Ok      bool   `json:"ok,omitempty"`
	Message string `json:"message,omitempty"`
}

func PaintAck(resp *PaintResponse, ok bool, msg string) {
	resp.Ok = ok
	resp.Message = msg
}

// SurfaceStateResponse reports the last frame a surface applied.
type SurfaceStateResponse struct {
	LastSeq uint64 `json:"last_seq"`
	Frame   Frame  `json:"frame"`
}

// SurfaceNode represents an attached rendering surface
type SurfaceNode struct {
	// ID of the surface
	ID string
	// Address of the surface, used for establishing connections
	Address string
}

func (s *SurfaceNode) Validate() error {
	if s.ID == "" {
		return errors.New("surface ID is required")
	}
	if s.Address == "" {
		return errors.New("surface address is required")
	}
	return nil
}
