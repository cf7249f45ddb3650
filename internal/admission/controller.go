// Package admission implements the patient admission form: its field state,
// the submission controller and the per-browser form sessions.
package admission

//go:generate mockgen -source=controller.go -destination=mock_admission_test.go -package=admission

import (
	"context"
	"errors"
	"sync"

	"hospital-admission/internal/models"

	"github.com/rs/zerolog"
)

// SpecialtiesRoute is where the browser is sent after a successful admission
const SpecialtiesRoute = "/specialties"

// ErrAdmitterPanicked is the failure recorded when the admitter panics
var ErrAdmitterPanicked = errors.New("unexpected internal error")

// Admitter persists a new admission and returns the stored record
type Admitter interface {
	Admit(ctx context.Context, draft models.PatientDraft) (*models.Patient, error)
}

// Navigator moves the user to another view
type Navigator interface {
	Navigate(route string)
}

// Outcome of a Submit call
type Outcome int

const (
	// Rejected means a submission was already in flight; nothing happened
	Rejected Outcome = iota
	// Admitted means the admitter succeeded and navigation took place
	Admitted
	// Failed means the admitter (or draft shaping) failed; see Result.Error
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Admitted:
		return "admitted"
	case Failed:
		return "failed"
	default:
		return "rejected"
	}
}

// Result is returned from Submit
type Result struct {
	Outcome Outcome
	Error   string
}

// Snapshot is a copy of the controller state used for rendering
type Snapshot struct {
	Form       Form
	Submitting bool
	Error      string
}

// Controller owns one admission form: the field values, the in-progress
// guard and the error currently displayed.
type Controller struct {
	admitter Admitter
	logger   zerolog.Logger

	mu         sync.Mutex
	form       Form
	submitting bool
	errMsg     string
}

// NewController creates a controller with an empty form
func NewController(admitter Admitter, logger zerolog.Logger) *Controller {
	return &Controller{
		admitter: admitter,
		logger:   logger,
		form:     NewForm(),
	}
}

// SetForm replaces the field values. Allowed while a submission is in flight;
// the in-flight submission keeps the values it started with.
func (c *Controller) SetForm(f Form) {
	c.mu.Lock()
	c.form = f
	c.mu.Unlock()
}

// Submitting reports whether an admit call is in flight
func (c *Controller) Submitting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitting
}

// Snapshot returns the current form state
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{Form: c.form, Submitting: c.submitting, Error: c.errMsg}
}

// Submit runs one admission attempt. A call made while another is in flight
// returns Rejected immediately and is not queued. Failures, including a
// panicking admitter, are recorded as the displayed error and never returned;
// the guard is released on every path. A successful admission clears the
// form before navigating away.
func (c *Controller) Submit(ctx context.Context, nav Navigator) (res Result) {
	c.mu.Lock()
	if c.submitting {
		c.mu.Unlock()
		c.logger.Debug().Msg("Admission already in progress, submit ignored")
		return Result{Outcome: Rejected}
	}
	c.submitting = true
	c.errMsg = ""
	form := c.form
	c.mu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error().Interface("panic", r).Msg("Admitter panicked")
			res = c.fail(ErrAdmitterPanicked)
		}
		c.mu.Lock()
		c.submitting = false
		c.mu.Unlock()
	}()

	draft, err := form.BuildDraft()
	if err != nil {
		return c.fail(err)
	}

	patient, err := c.admitter.Admit(ctx, draft)
	if err != nil {
		return c.fail(err)
	}

	evt := c.logger.Info().Str("specialty", string(draft.Specialty))
	if patient != nil {
		evt = evt.Uint("patient_id", patient.ID)
	}
	evt.Msg("Patient admitted")

	c.mu.Lock()
	c.form = NewForm()
	c.mu.Unlock()

	nav.Navigate(SpecialtiesRoute)
	return Result{Outcome: Admitted}
}

func (c *Controller) fail(err error) Result {
	msg := ErrorMessage(err)

	c.mu.Lock()
	c.errMsg = msg
	c.mu.Unlock()

	c.logger.Warn().Err(err).Msg("Patient admission failed")
	return Result{Outcome: Failed, Error: msg}
}
