package reference

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
)

// Phase is the resolver's state. Searching and Creating never overlap for
// the same instance.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseSearching Phase = "searching"
	PhaseCreating  Phase = "creating"
)

var (
	// ErrSuperseded marks a search whose result was outrun by a newer one.
	// Callers drop the result and wait for the newer call to land.
	ErrSuperseded = goerr.New("search superseded by a newer one")

	// ErrBusy is returned when an operation would overlap a pending create.
	ErrBusy = goerr.New("resolver is busy")
)

// Resolver turns partial text into selectable options backed by a lookup
// collection, and can mint a new entity inline when no option matches.
type Resolver struct {
	transport  interfaces.Transport
	collection string
	field      model.FieldPath
	hub        *msghub.Hub

	mu           sync.Mutex
	phase        Phase
	searchGen    uint64
	cancelSearch context.CancelFunc
	value        model.ReferenceOption
}

type Option func(*Resolver)

// WithField names the form field this resolver feeds; create-time validation
// errors are attached to it instead of the whole form.
func WithField(field model.FieldPath) Option {
	return func(r *Resolver) {
		r.field = field
	}
}

// WithHub routes non-validation failures to the given message sink
func WithHub(hub *msghub.Hub) Option {
	return func(r *Resolver) {
		r.hub = hub
	}
}

// New builds a resolver over a lookup collection such as "ingredients" or
// "tags".
func New(transport interfaces.Transport, collection string, opts ...Option) *Resolver {
	r := &Resolver{
		transport:  transport,
		collection: collection,
		field:      model.Field(collection),
		phase:      PhaseIdle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// lookupRecord is the slice element of a lookup collection listing
type lookupRecord struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Search queries the lookup endpoint for options matching text; empty text
// returns the unfiltered head of the collection. Search is re-entrant: a
// newer call cancels the one in flight, and a completion that has been
// outrun returns ErrSuperseded instead of stale options.
func (r *Resolver) Search(ctx context.Context, text string) ([]model.ReferenceOption, error) {
	r.mu.Lock()
	if r.phase == PhaseCreating {
		r.mu.Unlock()
		return nil, goerr.Wrap(ErrBusy, "create in progress", goerr.V("collection", r.collection))
	}
	if r.cancelSearch != nil {
		r.cancelSearch()
	}
	searchCtx, cancel := context.WithCancel(ctx)
	r.cancelSearch = cancel
	r.searchGen++
	gen := r.searchGen
	r.phase = PhaseSearching
	r.mu.Unlock()

	query := url.Values{}
	if text != "" {
		query.Set("name", text)
	}

	resp, err := r.transport.Get(searchCtx, r.collection+"/", query)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.searchGen {
		return nil, ErrSuperseded
	}
	r.phase = PhaseIdle
	r.cancelSearch = nil

	if err != nil {
		if types.IsCanceled(err) {
			return nil, ErrSuperseded
		}
		return nil, goerr.Wrap(err, "lookup search failed", goerr.V("collection", r.collection))
	}

	var records []lookupRecord
	if err := json.Unmarshal(resp.Body, &records); err != nil {
		return nil, goerr.Wrap(err, "failed to decode lookup records", goerr.V("collection", r.collection))
	}

	options := make([]model.ReferenceOption, 0, len(records))
	for _, rec := range records {
		options = append(options, model.ReferenceOption{Value: rec.ID, Label: rec.Name})
	}
	return options, nil
}

// CreateAndResolve posts a new entity with the given display name and, on
// success, wraps it into an option and installs it as the current value. No
// second operation may start while one create is pending; consumers honor
// Busy by disabling input.
func (r *Resolver) CreateAndResolve(ctx context.Context, label string) (model.ReferenceOption, error) {
	r.mu.Lock()
	if r.phase == PhaseCreating {
		r.mu.Unlock()
		return model.ReferenceOption{}, goerr.Wrap(ErrBusy, "create already pending", goerr.V("collection", r.collection))
	}
	// A pending search would race the create; supersede it first.
	if r.cancelSearch != nil {
		r.cancelSearch()
		r.cancelSearch = nil
		r.searchGen++
	}
	r.phase = PhaseCreating
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.phase = PhaseIdle
		r.mu.Unlock()
	}()

	resp, err := r.transport.Post(ctx, r.collection+"/", map[string]any{"name": label})
	if err != nil {
		if verr, ok := types.AsValidation(err); ok {
			// Duplicate names and the like belong to the owning field, not
			// the whole form.
			return model.ReferenceOption{}, model.FieldError{
				Field:   r.field,
				Message: verr.Violations.First("name"),
				Source:  model.ErrorSourceServer,
			}
		}
		if r.hub != nil && errors.Is(err, types.ErrNetworkUnavailable) {
			r.hub.Error("Network Error")
		}
		return model.ReferenceOption{}, goerr.Wrap(err, "failed to create lookup entity",
			goerr.V("collection", r.collection), goerr.V("label", label))
	}

	var rec lookupRecord
	if err := json.Unmarshal(resp.Body, &rec); err != nil {
		return model.ReferenceOption{}, goerr.Wrap(err, "failed to decode created entity",
			goerr.V("collection", r.collection))
	}

	option := model.ReferenceOption{Value: rec.ID, Label: rec.Name}

	r.mu.Lock()
	r.value = option
	r.mu.Unlock()

	return option, nil
}

// Busy reports whether a create is pending
func (r *Resolver) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase == PhaseCreating
}

// CurrentPhase returns the resolver's state
func (r *Resolver) CurrentPhase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Value returns the currently resolved option; zero when nothing is selected
func (r *Resolver) Value() model.ReferenceOption {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.value
}

// SetValue installs an option picked from search results
func (r *Resolver) SetValue(option model.ReferenceOption) {
	r.mu.Lock()
	r.value = option
	r.mu.Unlock()
}

// Clear drops the current selection
func (r *Resolver) Clear() {
	r.SetValue(model.ReferenceOption{})
}
