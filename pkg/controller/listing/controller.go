package listing

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
	"github.com/pantry-lab/sousschef/pkg/utils/async"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
)

const defaultPageSize = 10

// QueryState is a read-only snapshot of the list's query. HasPrev/HasNext
// are recomputed only from the latest accepted server response, never
// guessed locally.
type QueryState struct {
	FilterText  string
	FilterField types.FilterField
	CurrentPage int
	TotalPages  int
	HasPrev     bool
	HasNext     bool
	Loading     bool
}

// Controller drives a searchable, paginated, cancelable list over a remote
// collection. The visible list always corresponds to the most recently
// issued filter/page combination whose request was not superseded: every
// completion compares its captured generation against the current one before
// applying anything (last-issued-wins, not last-arrived-wins).
type Controller[T any] struct {
	transport  interfaces.Transport
	collection string
	noun       string
	ident      func(T) int64
	hub        *msghub.Hub
	pageSize   int
	onChange   func()

	mu          sync.Mutex
	filterText  string
	filterField types.FilterField
	page        int
	info        model.PageInfo
	items       []T
	loading     bool
	selected    *T
	gen         uint64
	cancel      context.CancelFunc
}

type Option[T any] func(*Controller[T])

// WithHub routes global messages to the given sink
func WithHub[T any](hub *msghub.Hub) Option[T] {
	return func(c *Controller[T]) {
		c.hub = hub
	}
}

// WithPageSize overrides the page size requested from the backend
func WithPageSize[T any](n int) Option[T] {
	return func(c *Controller[T]) {
		c.pageSize = n
	}
}

// WithNoun sets the singular noun used in user-facing messages ("recipe")
func WithNoun[T any](noun string) Option[T] {
	return func(c *Controller[T]) {
		c.noun = noun
	}
}

// WithOnChange registers a hook fired after every accepted state change
func WithOnChange[T any](fn func()) Option[T] {
	return func(c *Controller[T]) {
		c.onChange = fn
	}
}

// New builds a controller over a collection. ident extracts an entity's
// identity; it is used for delete pruning and selection tracking.
func New[T any](transport interfaces.Transport, collection string, ident func(T) int64, opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		transport:   transport,
		collection:  collection,
		noun:        collection,
		ident:       ident,
		pageSize:    defaultPageSize,
		filterField: types.FilterByName,
		page:        1,
		info:        model.PageInfo{Page: 1, LastPage: 1},
		loading:     true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetFilter updates the filter from raw input, inferring the field from its
// shape (digit-only means product ID). The page resets to 1 before the
// previous request is canceled and the new fetch is scheduled; the reset
// must come first so a stale page-2 query cannot race the cleared filter.
func (c *Controller[T]) SetFilter(ctx context.Context, text string) {
	c.SetFilterWithField(ctx, text, types.GuessFilterField(text))
}

// SetFilterWithField is SetFilter with an explicit field choice, for callers
// that do not want the digit-only heuristic.
func (c *Controller[T]) SetFilterWithField(ctx context.Context, text string, field types.FilterField) {
	c.mu.Lock()
	c.filterText = text
	c.filterField = field
	c.page = 1
	c.loading = true
	fetchCtx, gen := c.supersedeLocked(ctx)
	c.mu.Unlock()

	c.dispatch(fetchCtx, gen)
}

// TurnPage moves one page forward or back. A move below page 1 is a no-op.
// The in-flight request is canceled before the new one is issued so that
// rapid clicking cannot land responses out of order.
func (c *Controller[T]) TurnPage(ctx context.Context, delta int) {
	c.mu.Lock()
	next := c.page + delta
	if next < 1 {
		c.mu.Unlock()
		return
	}
	c.page = next
	c.loading = true
	fetchCtx, gen := c.supersedeLocked(ctx)
	c.mu.Unlock()

	c.dispatch(fetchCtx, gen)
}

// Refresh re-fetches the current filter/page synchronously. It still runs
// under the generation guard, so a filter change issued meanwhile wins.
func (c *Controller[T]) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.loading = true
	fetchCtx, gen := c.supersedeLocked(ctx)
	c.mu.Unlock()

	return c.fetch(fetchCtx, gen)
}

// supersedeLocked cancels the in-flight request, advances the generation,
// and binds a fresh cancelable context. Callers hold c.mu.
func (c *Controller[T]) supersedeLocked(ctx context.Context) (context.Context, uint64) {
	if c.cancel != nil {
		c.cancel()
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.gen++
	return fetchCtx, c.gen
}

func (c *Controller[T]) dispatch(ctx context.Context, gen uint64) {
	// The fetch stays bound to the cancelable context captured at issue
	// time; Dispatch contributes panic isolation, not its own context.
	async.Dispatch(ctx, func(context.Context) error {
		if err := c.fetch(ctx, gen); err != nil && !types.IsCanceled(err) {
			return err
		}
		return nil
	})
}

// fetch issues the request for the query captured at generation gen and
// applies the result only if gen is still current when the response lands.
func (c *Controller[T]) fetch(ctx context.Context, gen uint64) error {
	c.mu.Lock()
	query := url.Values{}
	if c.filterText != "" {
		query.Set(c.filterField.String(), c.filterText)
	}
	if c.page > 1 {
		query.Set("page", strconv.Itoa(c.page))
		query.Set("page_size", strconv.Itoa(c.pageSize))
	}
	c.mu.Unlock()

	resp, err := c.transport.Get(ctx, c.collection+"/", query)
	if err != nil {
		if types.IsCanceled(err) {
			// A superseded request applies nothing, not even loading=false;
			// the request that superseded it owns the flag now.
			return err
		}
		c.applyFailure(gen, err)
		return err
	}

	var items []T
	if err := json.Unmarshal(resp.Body, &items); err != nil {
		wrapped := goerr.Wrap(err, "failed to decode list response", goerr.V("collection", c.collection))
		c.applyFailure(gen, wrapped)
		return wrapped
	}

	info, err := model.ParsePageInfo(resp.Header.Get(model.PaginationHeader))
	if err != nil {
		c.applyFailure(gen, err)
		return err
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return nil
	}
	c.items = items
	c.info = info
	c.page = info.Page
	c.loading = false
	c.cancel = nil
	c.mu.Unlock()

	c.notify()
	return nil
}

// applyFailure clears the loading flag and reports the failure without
// touching the list. Stale failures are dropped like stale successes.
func (c *Controller[T]) applyFailure(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.loading = false
	c.cancel = nil
	c.mu.Unlock()

	if c.hub != nil {
		switch {
		case errors.Is(err, types.ErrNetworkUnavailable):
			c.hub.Error("Network Error")
		case errors.Is(err, types.ErrNotFound):
			c.hub.Error("Resource Not Found")
		default:
			c.hub.Error("An unexpected error has occured")
		}
	}
	c.notify()
}

// Delete removes the entity after re-fetching its current concurrency token
// and issuing a conditional delete. The two phases are sequential; a failure
// in either aborts with a phase-specific message and no local mutation. On
// success exactly the matching identity is pruned from the in-memory list
// and any matching selection is cleared. Confirmation is the caller's job.
func (c *Controller[T]) Delete(ctx context.Context, entity T) error {
	id := c.ident(entity)
	path := c.collection + "/" + strconv.FormatInt(id, 10)

	single, err := c.transport.Get(ctx, path, nil)
	if err != nil {
		if types.IsCanceled(err) {
			return err
		}
		if c.hub != nil {
			c.hub.Error("There was an error retrieving the " + c.noun + "'s etag")
		}
		return goerr.Wrap(err, "failed to fetch concurrency token",
			goerr.V("collection", c.collection), goerr.V("id", id))
	}

	if _, err := c.transport.Delete(ctx, path, single.ETag()); err != nil {
		if types.IsCanceled(err) {
			return err
		}
		if c.hub != nil {
			if errors.Is(err, types.ErrPreconditionFailed) {
				c.hub.Error("The " + c.noun + " was modified elsewhere")
			} else {
				c.hub.Error("There was an error deleting the " + c.noun)
			}
		}
		return goerr.Wrap(err, "failed to delete entity",
			goerr.V("collection", c.collection), goerr.V("id", id))
	}

	c.mu.Lock()
	kept := c.items[:0]
	for _, it := range c.items {
		if c.ident(it) != id {
			kept = append(kept, it)
		}
	}
	c.items = kept
	if c.selected != nil && c.ident(*c.selected) == id {
		c.selected = nil
	}
	c.mu.Unlock()

	if c.hub != nil {
		c.hub.Success("The " + c.noun + " was successfully deleted")
	}
	c.notify()
	return nil
}

// Select marks an entity as the current detail selection
func (c *Controller[T]) Select(entity T) {
	c.mu.Lock()
	c.selected = &entity
	c.mu.Unlock()
	c.notify()
}

// ClearSelection drops the current selection
func (c *Controller[T]) ClearSelection() {
	c.mu.Lock()
	c.selected = nil
	c.mu.Unlock()
	c.notify()
}

// Selection returns the selected entity, if any
func (c *Controller[T]) Selection() (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		var zero T
		return zero, false
	}
	return *c.selected, true
}

// Items returns a copy of the displayed list; the controller keeps exclusive
// ownership of the backing slice.
func (c *Controller[T]) Items() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// State returns a snapshot of the query state
func (c *Controller[T]) State() QueryState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return QueryState{
		FilterText:  c.filterText,
		FilterField: c.filterField,
		CurrentPage: c.info.Page,
		TotalPages:  c.info.LastPage,
		HasPrev:     c.info.HasPrev(),
		HasNext:     c.info.HasNext(),
		Loading:     c.loading,
	}
}

func (c *Controller[T]) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}
