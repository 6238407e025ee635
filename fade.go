package gofade

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danl5/gofade/pkg/config"
	"github.com/danl5/gofade/pkg/controller"
	"github.com/danl5/gofade/pkg/log"
	"github.com/danl5/gofade/pkg/model"
)

const (
	// animation duration, in milliseconds
	defaultDuration = 500

	// lifecycle callback timeout, in seconds
	defaultCallBackTimeout = 5
)

// CallbackHandler is a lifecycle callback.
type CallbackHandler = controller.CallbackHandler

// CallbackContext is the value every lifecycle callback receives.
type CallbackContext = controller.CallbackContext

// LifecycleCallBacks is a struct to hold the transition lifecycle callbacks.
type LifecycleCallBacks = controller.LifecycleCallBacks

// NewTransition creates a new Transition instance. surface may be nil when no
// remote rendering surface is attached.
func NewTransition(surface model.Surface, surfaceConfig model.SurfaceConfig, cfg *TransitionConfig, logger log.Logger) (*Transition, error) {
	if cfg == nil {
		return nil, fmt.Errorf("new transition, config is nil")
	}

	callBackTimeout := cfg.CallBackTimeout
	if callBackTimeout == 0 {
		callBackTimeout = defaultCallBackTimeout
	}

	t := &Transition{
		cfg:           cfg,
		into:          boolOrDefault(cfg.Into, true),
		surface:       surface,
		surfaceConfig: surfaceConfig,
		logger:        logger,
		errChan:       make(chan error, 10),
	}

	// new controller instance
	c, err := controller.NewController(
		t.controllerConfig(t.into),
		cfg.CallBacks,
		time.Duration(callBackTimeout)*time.Second,
		logger)
	if err != nil {
		return nil, err
	}
	t.controller = c

	return t, nil
}

// Transition contains information about one animated-visibility element
type Transition struct {
	// controller drives the status state machine of the element
	controller *controller.Controller
	// surface is the rendering-surface transport, nil when local only
	surface model.Surface
	// surfaceConfig is the rendering-surface transport configuration
	surfaceConfig model.SurfaceConfig
	// errChan is a channel for errors
	errChan chan error
	// seq numbers the pushed frames
	seq atomic.Uint64

	// cfg is the configuration for the transition
	cfg *TransitionConfig
	// into is the most recently requested visibility
	into bool
	// mu guards into
	mu sync.Mutex
	// logger is used for logging
	logger log.Logger
}

// Run is the main function of the Transition struct.
// It connects the attached surfaces, starts the controller and pushes a frame
// for every committed status transition.
func (t *Transition) Run() error {
	// init the surface connections
	if err := t.initSurfaces(); err != nil {
		t.logger.Error("transition, failed to init surfaces", "error", err.Error())
		return err
	}

	// run the status state machine
	statusChan, err := t.controller.Run()
	if err != nil {
		t.logger.Error("transition, failed to run controller", "error", err.Error())
		return err
	}
	// handle status transitions in a separate goroutine
	go t.handleStatusTransition(statusChan)
	// forward controller errors
	go t.forwardErrors()

	t.logger.Info("transition, transition started")
	return nil
}

// Set submits a new desired visibility. The element animates toward the new
// state rather than switching abruptly; opposing requests made mid-animation
// chain once the in-flight animation completes.
func (t *Transition) Set(into bool) error {
	t.mu.Lock()
	t.into = into
	t.mu.Unlock()

	return t.controller.Signal(t.controllerConfig(into))
}

// Toggle flips the desired visibility.
func (t *Transition) Toggle() error {
	t.mu.Lock()
	into := !t.into
	t.into = into
	t.mu.Unlock()

	return t.controller.Signal(t.controllerConfig(into))
}

// Checkpoint submits a render-affecting checkpoint of the host.
func (t *Transition) Checkpoint() error {
	return t.controller.Checkpoint()
}

// Render returns the current render decision.
func (t *Transition) Render() model.Frame {
	return t.controller.Render()
}

// CurrentStatus returns the current element status
func (t *Transition) CurrentStatus() string {
	return t.controller.Status().String()
}

// IsAnimating reports whether a start-to-complete cycle is in flight.
func (t *Transition) IsAnimating() bool {
	return t.controller.IsAnimating()
}

// Errors returns a receive-only channel of type error from the Transition struct
func (t *Transition) Errors() <-chan error {
	// return the error channel from the Transition struct
	return t.errChan
}

// Visualize returns a visualization of the status machine in Graphviz format.
func (t *Transition) Visualize() string {
	return t.controller.Visualize()
}

// Close destroys the transition, cancelling any outstanding completion timer.
func (t *Transition) Close() error {
	return t.controller.Close()
}

func (t *Transition) initSurfaces() error {
	if t.surface == nil || len(t.cfg.Surfaces) == 0 {
		return nil
	}

	var surfaces []*model.SurfaceNode
	for _, s := range t.cfg.Surfaces {
		surfaces = append(surfaces, &model.SurfaceNode{
			ID:      s.ID,
			Address: s.Address,
		})
	}

	err := t.surface.InitConnections(surfaces, t.surfaceConfig)
	if err != nil {
		return err
	}

	t.logger.Info("success to init surface connections")
	return nil
}

func (t *Transition) handleStatusTransition(statusChan <-chan model.StatusTransition) {
	for st := range statusChan {
		t.logger.Debug("transition, status transition",
			"kind", st.Kind.String(), "status", st.Status, "src", st.SrcStatus)
		t.paint(t.controller.Render())
	}
}

// paint fans the frame out to every attached surface.
func (t *Transition) paint(frame model.Frame) {
	if t.surface == nil || len(t.cfg.Surfaces) == 0 {
		return
	}

	seq := t.seq.Add(1)
	g := errgroup.Group{}
	for _, s := range t.cfg.Surfaces {
		surfaceID := s.ID
		g.Go(func() error {
			resp := &model.Response{}
			// push the frame to the surface
			err := t.surface.SendRequest(surfaceID, &model.Request{
				Header:      model.Header{Key: t.cfg.Element.Key},
				CommandCode: model.Paint,
				Command:     &model.PaintRequest{Seq: seq, Frame: frame},
			}, resp)
			if err != nil {
				return fmt.Errorf("paint, failed to push frame, surface %s, err: %s", surfaceID, err.Error())
			}

			paintResp := &model.PaintResponse{}
			err = t.surface.Decode(resp.CommandResponse, paintResp)
			if err != nil {
				return fmt.Errorf("paint, surface %s, bad response: %s", surfaceID, err.Error())
			}
			if !paintResp.Ok {
				return fmt.Errorf("paint, surface %s response not ok, message %s", surfaceID, paintResp.Message)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.logger.Error("transition, paint error", "error", err.Error())
		t.sendError(err)
	}
}

func (t *Transition) forwardErrors() {
	for err := range t.controller.Errors() {
		t.sendError(err)
	}
}

func (t *Transition) sendError(err error) {
	select {
	case t.errChan <- err:
	default:
	}
}

func (t *Transition) controllerConfig(into bool) config.Config {
	duration := t.cfg.Duration
	if duration == 0 {
		duration = defaultDuration
	}

	return config.Config{
		Duration:         time.Duration(duration) * time.Millisecond,
		Into:             into,
		MountOnEnter:     boolOrDefault(t.cfg.MountOnEnter, true),
		UnmountOnExit:    t.cfg.UnmountOnExit,
		TransitionAppear: t.cfg.TransitionAppear,
		Animation:        t.cfg.Animation,
		EntireTransition: t.cfg.EntireTransition,
		Element: config.ElementConfig{
			Key:     t.cfg.Element.Key,
			Class:   t.cfg.Element.Class,
			Style:   t.cfg.Element.Style,
			Content: t.cfg.Element.Content,
		},
	}
}

func boolOrDefault(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

// TransitionConfig is a struct that represents the configuration for an
// animated-visibility transition.
type TransitionConfig struct {
	// Duration of one enter or exit animation, in milliseconds.
	// Zero selects the default of 500.
	Duration uint
	// Into is the initially desired visibility, nil selects the default of true
	Into *bool
	// MountOnEnter keeps the element out of the render tree until it is
	// first shown, nil selects the default of true
	MountOnEnter *bool
	// UnmountOnExit removes the element from the render tree after it hides
	UnmountOnExit bool
	// TransitionAppear animates the first appearance of an initially
	// visible element
	TransitionAppear bool
	// Animation is the opaque animation-name token for the rendering surface
	Animation string
	// EntireTransition marks animations affecting the whole element container
	EntireTransition bool
	// Element is the wrapped child element
	Element Element
	// Surfaces are the attached rendering surfaces
	Surfaces []Surface
	// Lifecycle callbacks
	CallBacks *LifecycleCallBacks
	// Timeout for callbacks, in seconds
	CallBackTimeout int
}

// Element is a struct that represents the wrapped child element
type Element struct {
	// Key is an opaque distinguishing value, passed through untouched
	Key string
	// Class are the caller's own class tokens
	Class []string
	// Style is the caller's style
	Style map[string]string
	// Content is the wrapped child content
	Content any
}

// Surface is a struct that represents an attached rendering surface
type Surface struct {
	// ID of the surface
	ID string
	// Address of the surface
	Address string
}
