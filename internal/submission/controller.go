package submission

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"ocr-desk/internal/domain"
	"ocr-desk/internal/ocrclient"
)

// Extractor turns an input into text by calling the OCR service.
type Extractor interface {
	Extract(ctx context.Context, input domain.Input, lang domain.TargetLanguage) (string, error)
}

// Request is a begun submission waiting to be dispatched.
type Request struct {
	ID             string
	Input          domain.Input
	TargetLanguage domain.TargetLanguage
	extractor      Extractor
}

// Controller owns the form state: mode, per-mode inputs and previews,
// target language, and the latest submission outcome.
type Controller struct {
	tracker *Tracker
	newID   func() string

	mu        sync.Mutex
	extractor Extractor
	mode      domain.InputMode
	file      *domain.ImageFile
	url       string
	previews  map[domain.InputMode]string
	target    domain.TargetLanguage
	notice    string
}

// NewController creates a controller in file mode with nothing selected.
func NewController(extractor Extractor) *Controller {
	return &Controller{
		tracker:   NewTracker(),
		newID:     uuid.NewString,
		extractor: extractor,
		mode:      domain.InputModeFile,
		previews:  make(map[domain.InputMode]string, 2),
	}
}

// UseExtractor swaps the collaborator for later submissions.
func (c *Controller) UseExtractor(extractor Extractor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extractor = extractor
}

// SelectMode activates mode and clears the displayed outcome.
// Inputs and previews of both modes are kept.
func (c *Controller) SelectMode(mode domain.InputMode) (domain.Snapshot, error) {
	if !mode.Valid() {
		return c.Snapshot(), ErrUnknownMode
	}

	c.mu.Lock()
	c.mode = mode
	c.notice = ""
	c.tracker.ClearOutcome()
	c.mu.Unlock()

	return c.Snapshot(), nil
}

// SetFileInput stores file as the file-mode input. A nil file is ignored.
func (c *Controller) SetFileInput(file *domain.ImageFile) (domain.Snapshot, error) {
	c.mu.Lock()
	if c.mode != domain.InputModeFile {
		c.mu.Unlock()
		return c.Snapshot(), ErrModeMismatch
	}
	if file != nil {
		c.file = file
		c.previews[domain.InputModeFile] = file.PreviewURL()
	}
	c.mu.Unlock()

	return c.Snapshot(), nil
}

// SetURLInput stores url as the url-mode input and its preview.
func (c *Controller) SetURLInput(url string) (domain.Snapshot, error) {
	c.mu.Lock()
	if c.mode != domain.InputModeURL {
		c.mu.Unlock()
		return c.Snapshot(), ErrModeMismatch
	}
	c.url = url
	c.previews[domain.InputModeURL] = url
	c.mu.Unlock()

	return c.Snapshot(), nil
}

// SetTargetLanguage stores the translation target; "" and "none" disable it.
func (c *Controller) SetTargetLanguage(code string) (domain.Snapshot, error) {
	lang, ok := domain.ParseTargetLanguage(code)
	if !ok {
		return c.Snapshot(), ErrUnsupportedLanguage
	}

	c.mu.Lock()
	c.target = lang
	c.mu.Unlock()

	return c.Snapshot(), nil
}

// ClearPreview drops the active preview after it failed to render.
func (c *Controller) ClearPreview() domain.Snapshot {
	c.mu.Lock()
	c.previews[c.mode] = ""
	c.mu.Unlock()

	return c.Snapshot()
}

// Submit begins a submission and waits for the service to answer.
func (c *Controller) Submit(ctx context.Context) (domain.Snapshot, error) {
	req, err := c.Begin()
	if err != nil {
		return c.Snapshot(), err
	}
	c.Dispatch(ctx, req)
	return c.Snapshot(), nil
}

// Begin validates the active input and moves the state to pending.
// On error nothing but the notice changes.
func (c *Controller) Begin() (Request, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tracker.IsPending() {
		return Request{}, ErrSubmissionPending
	}

	input := c.activeInputLocked()
	if input.Empty() {
		err := &InputError{Mode: c.mode}
		c.notice = err.Error()
		return Request{}, err
	}

	id := c.newID()
	if err := c.tracker.Start(id); err != nil {
		return Request{}, err
	}
	c.notice = ""

	return Request{
		ID:             id,
		Input:          input,
		TargetLanguage: c.target,
		extractor:      c.extractor,
	}, nil
}

// Dispatch performs the single service call for req and returns the
// terminal record it produced.
func (c *Controller) Dispatch(ctx context.Context, req Request) domain.Submission {
	if req.extractor == nil {
		outcome, _ := c.tracker.Fail(req.ID, domain.ErrorKindTransportError, GenericFailureMessage)
		return outcome
	}

	text, err := req.extractor.Extract(ctx, req.Input, req.TargetLanguage)
	if err != nil {
		kind, message := Classify(err)
		outcome, _ := c.tracker.Fail(req.ID, kind, message)
		return outcome
	}
	outcome, _ := c.tracker.Succeed(req.ID, text)
	return outcome
}

// Snapshot returns the current form state.
func (c *Controller) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	sub := c.tracker.Current()
	snap := domain.Snapshot{
		Mode:           c.mode,
		Preview:        c.previews[c.mode],
		TargetLanguage: c.target,
		Submission:     sub,
		Notice:         c.notice,
		CanSubmit:      sub.State != domain.SubmissionStatePending,
	}
	if c.file != nil {
		snap.FileName = c.file.Name
	}
	snap.URL = c.url

	switch {
	case c.notice != "":
		snap.Display, snap.DisplayKind = c.notice, domain.DisplayKindError
	case sub.State == domain.SubmissionStatePending:
		snap.Display, snap.DisplayKind = domain.ProcessingPlaceholder, domain.DisplayKindSuccess
	case sub.State == domain.SubmissionStateFailed:
		snap.Display, snap.DisplayKind = sub.ErrorMessage, domain.DisplayKindError
	case sub.State == domain.SubmissionStateSucceeded && sub.Result != "":
		snap.Display, snap.DisplayKind = sub.Result, domain.DisplayKindSuccess
	}
	return snap
}

func (c *Controller) activeInputLocked() domain.Input {
	if c.mode == domain.InputModeURL {
		return domain.URLInput{URL: c.url}
	}
	return domain.FileInput{File: c.file}
}

// Classify maps a collaborator error to its kind and display message.
func Classify(err error) (domain.ErrorKind, string) {
	var serviceErr *ocrclient.ServiceError
	if errors.As(err, &serviceErr) {
		if serviceErr.Message != "" {
			return domain.ErrorKindServiceError, serviceErr.Message
		}
		return domain.ErrorKindServiceError, GenericFailureMessage
	}
	return domain.ErrorKindTransportError, GenericFailureMessage
}
