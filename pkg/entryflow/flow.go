package entryflow

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
)

// Step names the two screens of the flow.
type Step string

const (
	StepLoanEntry Step = "loan-entry"
	StepVisitForm Step = "visit-form"
)

var loanNumberRe = regexp.MustCompile(`^\d{21}$`)

var (
	ErrLoanNumber     = errors.New("Loan number must be exactly 21 numeric digits")
	ErrLocationNeeded = errors.New("Location access is required to submit visit.")
	ErrPhotoNeeded    = errors.New("At least 1 photo is required.")
	ErrFieldsNeeded   = errors.New("All fields are required.")
	ErrPtpDate        = errors.New("PTP Date is required.")
	ErrPtpAmount      = errors.New("PTP Amount must be a positive number.")
	ErrBusy           = errors.New("a submission is already in flight")
	ErrClosed         = errors.New("flow is closed")
)

// Form holds the editable visit fields. The loan number lives outside it:
// submitting resets the form but keeps the loan.
type Form struct {
	PersonVisited string
	Status        string
	Comments      string
	PtpDate       string
	PtpAmount     float64
}

// Flow drives one agent's visit entry session. All exported methods are safe
// for concurrent use; asynchronous completions that arrive after Close are
// discarded.
type Flow struct {
	mu   sync.Mutex
	wg   sync.WaitGroup
	deps Deps

	closed bool

	step       Step
	loanNumber string

	form   Form
	photos []Photo
	camera CameraStream

	geo    GeoState
	geoSeq int

	pastVisits  []PastVisit
	loadingPast bool

	submitting bool
	lastError  string

	// onChange, when set, fires after every state mutation so a UI layer can
	// re-render. Called without the lock held.
	onChange func()
}

func New(deps Deps) *Flow {
	return &Flow{
		deps: deps,
		step: StepLoanEntry,
		geo:  GeoState{Status: GeoIdle},
	}
}

// OnChange registers the re-render hook.
func (f *Flow) OnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

func (f *Flow) notify() {
	f.mu.Lock()
	fn := f.onChange
	f.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Step reports the current screen.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// LoanNumber reports the accepted loan number ("" on the entry screen).
func (f *Flow) LoanNumber() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loanNumber
}

// EnterLoan validates the typed loan number and moves to the visit form.
// Entering the form kicks off two independent acquisitions: the device
// position (which feeds reverse geocoding) and the agent's past visits for
// this loan.
func (f *Flow) EnterLoan(ctx context.Context, input string) error {
	val := strings.TrimSpace(input)
	if !loanNumberRe.MatchString(val) {
		return ErrLoanNumber
	}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	f.loanNumber = val
	f.step = StepVisitForm
	f.mu.Unlock()
	f.notify()

	f.RequestLocation(ctx)
	f.loadPastVisits(ctx)
	return nil
}

// ChangeLoan returns to the loan entry screen and clears everything tied to
// the previous loan.
func (f *Flow) ChangeLoan() {
	f.mu.Lock()
	f.stopCameraLocked()
	f.step = StepLoanEntry
	f.loanNumber = ""
	f.form = Form{}
	f.photos = nil
	f.geo = GeoState{Status: GeoIdle}
	f.geoSeq++
	f.pastVisits = nil
	f.loadingPast = false
	f.lastError = ""
	f.mu.Unlock()
	f.notify()
}

func (f *Flow) SetPersonVisited(v string) { f.setField(func() { f.form.PersonVisited = v }) }
func (f *Flow) SetStatus(v string)        { f.setField(func() { f.form.Status = v }) }
func (f *Flow) SetComments(v string)      { f.setField(func() { f.form.Comments = v }) }
func (f *Flow) SetPtpDate(v string)       { f.setField(func() { f.form.PtpDate = v }) }
func (f *Flow) SetPtpAmount(v float64)    { f.setField(func() { f.form.PtpAmount = v }) }

func (f *Flow) setField(apply func()) {
	f.mu.Lock()
	apply()
	f.mu.Unlock()
	f.notify()
}

// Form returns a copy of the editable fields.
func (f *Flow) Form() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// LoadingPastVisits reports whether a history load is in flight, for the
// panel's spinner.
func (f *Flow) LoadingPastVisits() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadingPast
}

// PastVisits returns the loaded history for the current loan.
func (f *Flow) PastVisits() []PastVisit {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]PastVisit, len(f.pastVisits))
	copy(out, f.pastVisits)
	return out
}

// LastError is the message shown inline under the form ("" when clear).
func (f *Flow) LastError() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastError
}

// CanSubmit reports whether the submit control is enabled: the position must
// be granted, at least one photo attached, and no submission in flight.
func (f *Flow) CanSubmit() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.geo.Status == GeoGranted && len(f.photos) > 0 && !f.submitting
}

// Submit validates the form, uploads the photos, and posts the visit. On
// success the form fields and photos reset (the loan number and position do
// not) and the past-visit list reloads; on failure the server's message is
// surfaced and nothing resets.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if f.submitting {
		f.mu.Unlock()
		return ErrBusy
	}
	if err := f.validateLocked(); err != nil {
		f.lastError = err.Error()
		f.mu.Unlock()
		f.notify()
		return err
	}

	f.submitting = true
	f.lastError = ""
	sub := Submission{
		LoanNumber:    f.loanNumber,
		PersonVisited: strings.TrimSpace(f.form.PersonVisited),
		Status:        f.form.Status,
		Comments:      strings.TrimSpace(f.form.Comments),
		Latitude:      f.geo.Latitude,
		Longitude:     f.geo.Longitude,
		Address:       f.geo.Address,
	}
	if f.form.Status == "PTP" {
		sub.PtpDate = f.form.PtpDate
		sub.PtpAmount = f.form.PtpAmount
	}
	photos := make([]Photo, len(f.photos))
	copy(photos, f.photos)
	f.mu.Unlock()
	f.notify()

	err := f.doSubmit(ctx, sub, photos)

	f.mu.Lock()
	f.submitting = false
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		f.lastError = err.Error()
		f.mu.Unlock()
		f.notify()
		return err
	}
	f.form = Form{}
	f.photos = nil
	f.mu.Unlock()
	f.notify()

	f.loadPastVisits(ctx)
	return nil
}

func (f *Flow) doSubmit(ctx context.Context, sub Submission, photos []Photo) error {
	urls, err := f.deps.Photos.Upload(ctx, photos)
	if err != nil {
		return err
	}
	sub.PhotoURLs = urls
	return f.deps.Visits.Submit(ctx, sub)
}

// validateLocked mirrors the submit-time checks, first violation wins.
func (f *Flow) validateLocked() error {
	if f.geo.Status != GeoGranted {
		return ErrLocationNeeded
	}
	if len(f.photos) == 0 {
		return ErrPhotoNeeded
	}
	if strings.TrimSpace(f.form.PersonVisited) == "" || f.form.Status == "" || strings.TrimSpace(f.form.Comments) == "" {
		return ErrFieldsNeeded
	}
	if f.form.Status == "PTP" {
		if f.form.PtpDate == "" {
			return ErrPtpDate
		}
		if f.form.PtpAmount <= 0 {
			return ErrPtpAmount
		}
	}
	return nil
}

// loadPastVisits refreshes the history panel. A load failure empties the
// list rather than surfacing an error.
func (f *Flow) loadPastVisits(ctx context.Context) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.loadingPast = true
	loan := f.loanNumber
	f.mu.Unlock()
	f.notify()

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		visits, err := f.deps.Visits.History(ctx, loan)
		if err != nil {
			visits = nil
		}

		f.mu.Lock()
		if f.closed || f.loanNumber != loan {
			f.mu.Unlock()
			return
		}
		f.pastVisits = visits
		f.loadingPast = false
		f.mu.Unlock()
		f.notify()
	}()
}

// Wait blocks until in-flight asynchronous acquisitions have settled.
func (f *Flow) Wait() { f.wg.Wait() }

// Close tears the flow down: the camera stream is released and any late
// asynchronous completions are discarded.
func (f *Flow) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	f.stopCameraLocked()
	f.mu.Unlock()
}
