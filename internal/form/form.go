// ABOUTME: Generic multi-step form controller with per-step validation
// ABOUTME: Tracks the step pointer, field errors and the submit outcome

package form

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// FieldErrors maps a field name to its French error message
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := slices.Sorted(maps.Keys(fe))
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, fe[k]))
	}
	return strings.Join(parts, "; ")
}

// Add records msg for field unless the field already has an error
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; !ok {
		fe[field] = msg
	}
}

// Merge copies other into fe, keeping existing messages
func (fe FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		fe.Add(k, v)
	}
}

// Err returns fe as an error, or nil when empty
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Phase is where the controller is in its lifecycle
type Phase int

const (
	// Editing covers every Step(i)
	Editing Phase = iota
	Submitted
	Failed
)

func (p Phase) String() string {
	switch p {
	case Editing:
		return "editing"
	case Submitted:
		return "submitted"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// ErrNotFailed is returned by Retry outside the Failed phase
var ErrNotFailed = errors.New("nothing to retry")

// Step is one page of a form
type Step[S any] struct {
	Title    string
	Validate func(*S) FieldErrors
}

// SubmitFunc sends the accumulated state
type SubmitFunc[S any] func(ctx context.Context, state S) error

// Controller drives a fixed sequence of steps over a state value S
type Controller[S any] struct {
	steps   []Step[S]
	initial func() S
	submit  SubmitFunc[S]

	state   S
	current int
	phase   Phase
	errs    FieldErrors
	err     error
}

// NewController creates a controller positioned on the first step
func NewController[S any](initial func() S, steps []Step[S], submit SubmitFunc[S]) *Controller[S] {
	return &Controller[S]{
		steps:   steps,
		initial: initial,
		submit:  submit,
		state:   initial(),
	}
}

// State returns the mutable form state
func (c *Controller[S]) State() *S {
	return &c.state
}

// Snapshot returns a copy of the state for an asynchronous submit
func (c *Controller[S]) Snapshot() S {
	return c.state
}

// Step returns the 1-based current step
func (c *Controller[S]) Step() int {
	return c.current + 1
}

// Steps returns the number of steps
func (c *Controller[S]) Steps() int {
	return len(c.steps)
}

// Titles lists the step titles in order
func (c *Controller[S]) Titles() []string {
	out := make([]string, len(c.steps))
	for i, s := range c.steps {
		out[i] = s.Title
	}
	return out
}

// Title returns the current step's title
func (c *Controller[S]) Title() string {
	return c.steps[c.current].Title
}

// Phase returns the lifecycle phase
func (c *Controller[S]) Phase() Phase {
	return c.phase
}

// Errors returns the field errors of the last validation
func (c *Controller[S]) Errors() FieldErrors {
	return c.errs
}

// Err returns the submit error while Failed
func (c *Controller[S]) Err() error {
	return c.err
}

// Validate runs the current step's validator without moving
func (c *Controller[S]) Validate() FieldErrors {
	return c.validateStep(c.current)
}

func (c *Controller[S]) validateStep(i int) FieldErrors {
	if c.steps[i].Validate == nil {
		return FieldErrors{}
	}
	errs := c.steps[i].Validate(&c.state)
	if errs == nil {
		errs = FieldErrors{}
	}
	return errs
}

// ValidateAll runs every step's validator
func (c *Controller[S]) ValidateAll() FieldErrors {
	all := FieldErrors{}
	for i := range c.steps {
		all.Merge(c.validateStep(i))
	}
	return all
}

// Advance validates the current step. On an intermediate step it moves
// forward; on the last step it runs a full validation and reports ready.
func (c *Controller[S]) Advance() (ready bool, err error) {
	if c.phase == Submitted {
		c.Reset()
	}

	errs := c.Validate()
	c.errs = errs
	if len(errs) > 0 {
		return false, errs
	}
	if c.current < len(c.steps)-1 {
		c.current++
		c.phase = Editing
		return false, nil
	}

	errs = c.ValidateAll()
	c.errs = errs
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// Complete records the outcome of a submit. Success resets the state; failure
// keeps it so the user can retry.
func (c *Controller[S]) Complete(err error) {
	if err != nil {
		c.phase = Failed
		c.err = err
		return
	}
	c.phase = Submitted
	c.err = nil
	c.state = c.initial()
	c.errs = FieldErrors{}
}

// Submit sends the current state and records the outcome
func (c *Controller[S]) Submit(ctx context.Context) error {
	err := c.submit(ctx, c.state)
	c.Complete(err)
	return err
}

// Submitter returns the submit function for callers that run it themselves
func (c *Controller[S]) Submitter() SubmitFunc[S] {
	return c.submit
}

// Next validates the current step and moves forward, submitting after the
// last step. Validation failures return FieldErrors and never move.
func (c *Controller[S]) Next(ctx context.Context) error {
	ready, err := c.Advance()
	if err != nil || !ready {
		return err
	}
	return c.Submit(ctx)
}

// Previous moves back one step without validating
func (c *Controller[S]) Previous() {
	if c.current > 0 {
		c.current--
	}
	c.phase = Editing
	c.errs = FieldErrors{}
}

// Retry re-submits after a failure without re-entering data
func (c *Controller[S]) Retry(ctx context.Context) error {
	if c.phase != Failed {
		return ErrNotFailed
	}
	if errs := c.ValidateAll(); len(errs) > 0 {
		c.errs = errs
		return errs
	}
	return c.Submit(ctx)
}

// Reset starts over on the first step with the initial state
func (c *Controller[S]) Reset() {
	c.state = c.initial()
	c.current = 0
	c.phase = Editing
	c.errs = FieldErrors{}
	c.err = nil
}
