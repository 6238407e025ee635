package common

// ClassToken is a class-list token computed for the rendering surface
type ClassToken string

const (
	// TokenAnimating marks an element with a start-to-complete cycle in flight
	TokenAnimating ClassToken = `animating`
	// TokenIn marks an entire transition pointing toward shown
	TokenIn ClassToken = `in`
	// TokenOut marks an entire transition pointing toward hidden
	TokenOut ClassToken = `out`
	// TokenHidden marks an element that finished its exit animation
	TokenHidden ClassToken = `hidden`
	// TokenVisible marks every other present element
	TokenVisible ClassToken = `visible`
)

func (c ClassToken) String() string {
	return string(c)
}

// StyleDuration is the computed style property carrying the animation length
const StyleDuration = `animation-duration`

// PaintMessage is the message used to indicate the reason in the response to a frame push
type PaintMessage string

const (
	// PaintOk represents that the frame was applied
	PaintOk PaintMessage = `ok`
	// PaintStale represents that the frame sequence has fallen behind
	PaintStale PaintMessage = `stale frame`
)

func (p PaintMessage) String() string {
	return string(p)
}
