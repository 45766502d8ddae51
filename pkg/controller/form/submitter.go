package form

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
)

// Payload is a set of form values that knows how to turn itself into a
// request body and how to check its own required fields. Serialize declares,
// once per type, which optional fields are omitted when absent; it never
// emits nulls, and reference options are reduced to their identity.
type Payload interface {
	Serialize() map[string]any
	Validate() []model.FieldError
}

// Submitter binds a form to a backend collection: it normalizes and submits
// payloads and maps structured validation failures back onto named fields.
// Field errors and focus are owned here; views read, never write.
type Submitter[P Payload] struct {
	transport  interfaces.Transport
	collection string
	hub        *msghub.Hub
	createMsg  string
	updateMsg  string
	onSuccess  func(ctx context.Context, body json.RawMessage)
	onReset    func()

	mu    sync.Mutex
	errs  map[model.FieldPath]model.FieldError
	focus model.FieldPath
	busy  bool
}

type Option[P Payload] func(*Submitter[P])

// WithHub routes global (non-field) messages to the given sink
func WithHub[P Payload](hub *msghub.Hub) Option[P] {
	return func(s *Submitter[P]) {
		s.hub = hub
	}
}

// WithMessages sets the success messages for create and update flows
func WithMessages[P Payload](create, update string) Option[P] {
	return func(s *Submitter[P]) {
		s.createMsg = create
		s.updateMsg = update
	}
}

// WithOnSuccess registers a hook invoked with the response body after a
// successful submission, e.g. to refresh a dependent list.
func WithOnSuccess[P Payload](fn func(ctx context.Context, body json.RawMessage)) Option[P] {
	return func(s *Submitter[P]) {
		s.onSuccess = fn
	}
}

// WithOnReset registers a hook invoked when the form returns to defaults
func WithOnReset[P Payload](fn func()) Option[P] {
	return func(s *Submitter[P]) {
		s.onReset = fn
	}
}

func New[P Payload](transport interfaces.Transport, collection string, opts ...Option[P]) *Submitter[P] {
	s := &Submitter[P]{
		transport:  transport,
		collection: collection,
		createMsg:  "Successfully created",
		updateMsg:  "Successfully updated",
		errs:       make(map[model.FieldPath]model.FieldError),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit creates a new entity from the payload. The returned body is the
// created record. A validation failure returns ErrValidationFailed after
// attaching field errors; it never reaches the message sink.
func (s *Submitter[P]) Submit(ctx context.Context, payload P) (json.RawMessage, error) {
	return s.send(ctx, payload, func(body map[string]any) (*interfaces.Response, error) {
		return s.transport.Post(ctx, s.collection+"/", body)
	}, s.createMsg, true)
}

// Update rewrites an existing entity. The concurrency token must be the one
// obtained when the entity was loaded; a mismatch is surfaced as a distinct
// message, not retried.
func (s *Submitter[P]) Update(ctx context.Context, id int64, etag string, payload P) (json.RawMessage, error) {
	return s.send(ctx, payload, func(body map[string]any) (*interfaces.Response, error) {
		return s.transport.Put(ctx, s.collection+"/"+strconv.FormatInt(id, 10), body, etag)
	}, s.updateMsg, false)
}

func (s *Submitter[P]) send(ctx context.Context, payload P, call func(map[string]any) (*interfaces.Response, error), successMsg string, reset bool) (json.RawMessage, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, goerr.New("submission already in progress", goerr.V("collection", s.collection))
	}
	s.busy = true
	s.errs = make(map[model.FieldPath]model.FieldError)
	s.focus = ""
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	// Client-side required checks stop the submission before any network
	// round-trip.
	if fieldErrs := payload.Validate(); len(fieldErrs) > 0 {
		s.attach(fieldErrs)
		return nil, goerr.Wrap(types.ErrValidationFailed, "client-side validation failed",
			goerr.V("collection", s.collection), goerr.V("fields", len(fieldErrs)))
	}

	body := payload.Serialize()

	resp, err := call(body)
	if err != nil {
		return nil, s.dispatchFailure(err, body)
	}

	s.mu.Lock()
	s.errs = make(map[model.FieldPath]model.FieldError)
	s.focus = ""
	s.mu.Unlock()

	if reset && s.onReset != nil {
		s.onReset()
	}
	if s.hub != nil {
		s.hub.Success(successMsg)
	}
	if s.onSuccess != nil {
		s.onSuccess(ctx, resp.Body)
	}
	return resp.Body, nil
}

// dispatchFailure sorts a submission failure into field errors or a single
// global message per the failure taxonomy.
func (s *Submitter[P]) dispatchFailure(err error, sent map[string]any) error {
	if types.IsCanceled(err) {
		return err
	}

	if verr, ok := types.AsValidation(err); ok {
		s.mapViolations(verr.Violations, sent)
		return goerr.Wrap(types.ErrValidationFailed, "submission rejected",
			goerr.V("collection", s.collection))
	}

	if s.hub != nil {
		switch {
		case errors.Is(err, types.ErrNetworkUnavailable):
			s.hub.Error("Network Error")
		case errors.Is(err, types.ErrNotFound):
			s.hub.Error("Resource Not Found")
		case errors.Is(err, types.ErrPreconditionFailed):
			s.hub.Error("The item was modified elsewhere")
		default:
			s.hub.Error("An unexpected error has occured")
		}
	}
	return err
}

// mapViolations attaches the first reported message of every violated field
// that was actually present in the submitted payload. Fields the server
// mentions but the payload never carried are left alone. Focus lands on the
// first errored field in path order.
func (s *Submitter[P]) mapViolations(violations types.FieldViolations, sent map[string]any) {
	var attached []model.FieldError
	for key := range violations {
		path := model.FieldPath(key)
		if _, ok := sent[path.Root()]; !ok {
			continue
		}
		msg := violations.First(key)
		if msg == "" {
			continue
		}
		attached = append(attached, model.FieldError{
			Field:   path,
			Message: msg,
			Source:  model.ErrorSourceServer,
		})
	}
	s.attach(attached)
}

func (s *Submitter[P]) attach(fieldErrs []model.FieldError) {
	if len(fieldErrs) == 0 {
		return
	}
	sort.Slice(fieldErrs, func(i, j int) bool {
		return fieldErrs[i].Field < fieldErrs[j].Field
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fe := range fieldErrs {
		if _, exists := s.errs[fe.Field]; !exists {
			s.errs[fe.Field] = fe
		}
	}
	if s.focus == "" {
		s.focus = fieldErrs[0].Field
	}
}

// AttachFieldError installs an externally produced field error, e.g. one a
// reference resolver reported against its owning field.
func (s *Submitter[P]) AttachFieldError(fe model.FieldError) {
	s.attach([]model.FieldError{fe})
}

// FieldErrors returns the current field errors in path order
func (s *Submitter[P]) FieldErrors() []model.FieldError {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.FieldError, 0, len(s.errs))
	for _, fe := range s.errs {
		out = append(out, fe)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Field < out[j].Field
	})
	return out
}

// ErrorOn returns the error attached to the given field, if any
func (s *Submitter[P]) ErrorOn(path model.FieldPath) (model.FieldError, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fe, ok := s.errs[path]
	return fe, ok
}

// Focus returns the field that should receive input focus, or ""
func (s *Submitter[P]) Focus() model.FieldPath {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus
}

// Reset clears all field errors and focus, returning the form to defaults
func (s *Submitter[P]) Reset() {
	s.mu.Lock()
	s.errs = make(map[model.FieldPath]model.FieldError)
	s.focus = ""
	s.mu.Unlock()

	if s.onReset != nil {
		s.onReset()
	}
}

// DiscardRowErrors drops errors attached to rows of a list field from the
// given index on. Removing a row changes the identity behind every later
// index, so already-attached errors are discarded rather than remapped.
func (s *Submitter[P]) DiscardRowErrors(field string, from int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for path := range s.errs {
		if path.Root() != field {
			continue
		}
		if idx, ok := path.Index(); ok && idx >= from {
			delete(s.errs, path)
			if s.focus == path {
				s.focus = ""
			}
		}
	}
}
