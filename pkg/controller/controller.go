package controller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/danl5/gofade/pkg/config"
	"github.com/danl5/gofade/pkg/log"
	"github.com/danl5/gofade/pkg/model"
)

// CallbackHandler is a lifecycle callback. It receives the configuration the
// controller currently holds plus the status at the protocol point of the
// invocation.
type CallbackHandler func(ctx context.Context, cc CallbackContext) error

// CallbackContext is the value every lifecycle callback receives.
type CallbackContext struct {
	// Config is the full configuration at the time of the invocation
	Config config.Config
	// Status is the element status at the protocol point of the callback
	Status model.Status
}

// LifecycleCallBacks is a struct to hold the transition lifecycle callbacks.
// Any callback may be nil, an absent callback is simply skipped.
type LifecycleCallBacks struct {
	// OnStart is called right after an animation begins
	OnStart CallbackHandler
	// OnComplete is called when the duration timer expires
	OnComplete CallbackHandler
	// OnShow is called when an enter animation settles fully shown
	OnShow CallbackHandler
	// OnHide is called when an exit animation settles hidden or unmounted
	OnHide CallbackHandler
}

type inputKind int

const (
	inputSignal inputKind = iota
	inputCheckpoint
	inputTimerFire
)

// input is one unit of work for the controller event loop.
type input struct {
	kind inputKind
	// cfg is the signal payload
	cfg *config.Config
	// gen ties a timer fire to the arming that scheduled it
	gen uint64
}

// NewController creates a transition controller for one element.
func NewController(cfg config.Config, callBacks *LifecycleCallBacks, callBackTimeout time.Duration, logger log.Logger) (*Controller, error) {
	if logger == nil {
		return nil, fmt.Errorf("new controller, logger is nil")
	}

	m, err := NewMachine(cfg, logger)
	if err != nil {
		return nil, err
	}

	return &Controller{
		machine:         m,
		callBacks:       callBacks,
		callBackTimeout: callBackTimeout,
		logger:          logger,
		inputChan:       make(chan input, 8),
		statusChan:      make(chan model.StatusTransition, 8),
		errChan:         make(chan error, 8),
		shutdownChan:    make(chan struct{}),
	}, nil
}

// Controller hosts the status machine: it owns the event loop all machine
// mutation happens on, the single cancellable completion timer, and the
// synchronous invocation of lifecycle callbacks.
type Controller struct {
	// machine is the status state machine of the element
	machine *Machine
	// callBacks stores the callbacks to be triggered by the protocol
	callBacks *LifecycleCallBacks
	// callBackTimeout bounds a single callback invocation, zero means no bound
	callBackTimeout time.Duration
	// logger
	logger log.Logger

	// inputChan is used to transmit loop inputs
	inputChan chan input
	// statusChan is used to transmit committed status transitions
	statusChan chan model.StatusTransition
	// errChan is a channel for errors
	errChan chan error
	// shutdownChan is closed when the controller is destroyed
	shutdownChan chan struct{}

	// timer is the live completion timer, nil before the first start.
	// Arming replaces the previous handle, there is never more than one.
	timer *time.Timer
	// timerGen distinguishes the live timer from superseded ones
	timerGen uint64

	// mu guards machine state against snapshot readers and the timer
	// handle against Close
	mu sync.RWMutex

	closeOnce sync.Once
}

// Run starts the controller event loop and performs the construction
// checkpoint, so an initially queued appearance begins animating before any
// external signal lands.
// Returns a channel of status transitions and an error.
func (c *Controller) Run() (<-chan model.StatusTransition, error) {
	go c.runLoop()

	if err := c.Checkpoint(); err != nil {
		return nil, err
	}

	c.logger.Info("transition controller started", "status", c.Status())
	return c.statusChan, nil
}

// Signal submits a new desired-visibility configuration. The signal is
// followed by an automatic checkpoint, mirroring a host that re-renders
// after every state change.
func (c *Controller) Signal(cfg config.Config) error {
	return c.submit(input{kind: inputSignal, cfg: &cfg})
}

// Checkpoint submits a render-affecting checkpoint.
func (c *Controller) Checkpoint() error {
	return c.submit(input{kind: inputCheckpoint})
}

// Status returns the current element status.
func (c *Controller) Status() model.Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.machine.Status()
}

// IsAnimating reports whether a start-to-complete cycle is in flight.
func (c *Controller) IsAnimating() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.machine.Animating()
}

// Render produces the render decision for the current machine state.
func (c *Controller) Render() model.Frame {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Render(c.machine.Config(), c.machine.Status(), c.machine.Animating())
}

// Errors returns a receive-only channel of errors from the controller.
func (c *Controller) Errors() <-chan error {
	return c.errChan
}

// Visualize returns a visualization of the status machine in Graphviz format.
func (c *Controller) Visualize() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.machine.Visualize()
}

// Close destroys the controller. Any outstanding completion timer is
// cancelled so it can not fire into a destroyed instance.
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		close(c.shutdownChan)

		c.mu.Lock()
		if c.timer != nil {
			c.timer.Stop()
		}
		c.mu.Unlock()

		c.logger.Info("transition controller closed")
	})
	return nil
}

func (c *Controller) submit(in input) error {
	select {
	case <-c.shutdownChan:
		return fmt.Errorf("transition controller is closed")
	default:
	}

	select {
	case <-c.shutdownChan:
		return fmt.Errorf("transition controller is closed")
	case c.inputChan <- in:
	}
	return nil
}

func (c *Controller) runLoop() {
	for {
		select {
		case <-c.shutdownChan:
			return
		case in := <-c.inputChan:
			c.handle(in)
		}
	}
}

func (c *Controller) handle(in input) {
	switch in.kind {
	case inputSignal:
		c.apply(c.signal(*in.cfg))
		c.apply(c.checkpoint())
	case inputCheckpoint:
		c.apply(c.checkpoint())
	case inputTimerFire:
		c.mu.RLock()
		live := in.gen == c.timerGen
		c.mu.RUnlock()
		if !live {
			// superseded by a later arming
			return
		}
		c.apply(c.timerFire())
	}
}

func (c *Controller) signal(cfg config.Config) (model.Effects, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.HandleSignal(cfg)
}

func (c *Controller) checkpoint() (model.Effects, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.HandleCheckpoint()
}

func (c *Controller) timerFire() (model.Effects, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.HandleTimerFire()
}

// apply performs the side effects of one machine handler: publish the status
// commits, invoke the callbacks in order, then arm the timer. The callbacks
// run before the timer is armed.
func (c *Controller) apply(effects model.Effects, err error) {
	if err != nil {
		c.logger.Error("transition handling failed", "error", err.Error())
		c.sendError(err)
		return
	}

	for _, st := range effects.Transitions {
		c.publish(st)
	}
	for _, cb := range effects.Callbacks {
		if err := c.invoke(cb); err != nil {
			c.logger.Error("lifecycle callback failed", "callback", cb.Kind.String(), "error", err.Error())
			c.sendError(err)
		}
	}
	if effects.Timer == model.TimerArm {
		c.arm(effects.ArmFor)
	}
}

func (c *Controller) invoke(req model.CallbackRequest) error {
	if c.callBacks == nil {
		return nil
	}

	var handler CallbackHandler
	switch req.Kind {
	case model.CallbackStart:
		handler = c.callBacks.OnStart
	case model.CallbackComplete:
		handler = c.callBacks.OnComplete
	case model.CallbackShow:
		handler = c.callBacks.OnShow
	case model.CallbackHide:
		handler = c.callBacks.OnHide
	}
	if handler == nil {
		return nil
	}

	ctx := context.Background()
	if c.callBackTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callBackTimeout)
		defer cancel()
	}

	c.mu.RLock()
	cc := CallbackContext{Config: c.machine.Config(), Status: req.Status}
	c.mu.RUnlock()

	return handler(ctx, cc)
}

// arm schedules the completion timer, replacing any previous handle. A fire
// of a replaced or post-shutdown timer is dropped.
func (c *Controller) arm(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timerGen++
	gen := c.timerGen
	c.timer = time.AfterFunc(d, func() {
		select {
		case <-c.shutdownChan:
		case c.inputChan <- input{kind: inputTimerFire, gen: gen}:
		}
	})
}

func (c *Controller) publish(st model.StatusTransition) {
	c.logger.Debug("status transition",
		"kind", st.Kind.String(), "status", st.Status, "src", st.SrcStatus)
	select {
	case c.statusChan <- st:
	default:
		c.logger.Warn("status transition dropped, observer is not keeping up",
			"status", st.Status)
	}
}

func (c *Controller) sendError(err error) {
	select {
	case c.errChan <- err:
	default:
	}
}
