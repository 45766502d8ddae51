package reference_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/pantry-lab/sousschef/pkg/controller/reference"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
)

type call struct {
	Method string
	Path   string
	Query  url.Values
	Body   any
}

type fakeTransport struct {
	mu      sync.Mutex
	calls   []call
	handler func(ctx context.Context, c call) (*interfaces.Response, error)
}

func (f *fakeTransport) do(ctx context.Context, c call) (*interfaces.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	handler := f.handler
	f.mu.Unlock()
	return handler(ctx, c)
}

func (f *fakeTransport) Get(ctx context.Context, path string, query url.Values) (*interfaces.Response, error) {
	return f.do(ctx, call{Method: "GET", Path: path, Query: query})
}

func (f *fakeTransport) Post(ctx context.Context, path string, body any) (*interfaces.Response, error) {
	return f.do(ctx, call{Method: "POST", Path: path, Body: body})
}

func (f *fakeTransport) Put(ctx context.Context, path string, body any, etag string) (*interfaces.Response, error) {
	return f.do(ctx, call{Method: "PUT", Path: path})
}

func (f *fakeTransport) Delete(ctx context.Context, path string, etag string) (*interfaces.Response, error) {
	return f.do(ctx, call{Method: "DELETE", Path: path})
}

func (f *fakeTransport) recorded() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]call, len(f.calls))
	copy(out, f.calls)
	return out
}

func jsonResponse(status int, body string) *interfaces.Response {
	return &interfaces.Response{StatusCode: status, Body: []byte(body), Header: http.Header{}}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{
		handler: func(ctx context.Context, c call) (*interfaces.Response, error) {
			return jsonResponse(http.StatusOK, `[{"id":3,"name":"Flour"},{"id":7,"name":"Flour, whole grain"}]`), nil
		},
	}

	res := reference.New(transport, "ingredients")

	options := gt.R1(res.Search(ctx, "flour")).NoError(t)
	gt.Array(t, options).Length(2)
	gt.Value(t, options[0]).Equal(model.ReferenceOption{Value: 3, Label: "Flour"})
	gt.Value(t, options[1]).Equal(model.ReferenceOption{Value: 7, Label: "Flour, whole grain"})

	calls := transport.recorded()
	gt.Array(t, calls).Length(1)
	gt.Value(t, calls[0].Path).Equal("ingredients/")
	gt.Value(t, calls[0].Query.Get("name")).Equal("flour")
	gt.Value(t, res.CurrentPhase()).Equal(reference.PhaseIdle)
}

func TestSearchEmptyTextIsUnfiltered(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{
		handler: func(ctx context.Context, c call) (*interfaces.Response, error) {
			return jsonResponse(http.StatusOK, `[]`), nil
		},
	}

	res := reference.New(transport, "tags")

	options := gt.R1(res.Search(ctx, "")).NoError(t)
	gt.Array(t, options).Length(0)

	calls := transport.recorded()
	gt.Array(t, calls).Length(1)
	gt.False(t, calls[0].Query.Has("name"))
}

func TestSearchSuperseded(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	transport := &fakeTransport{
		handler: func(ctx context.Context, c call) (*interfaces.Response, error) {
			if c.Query.Get("name") == "slow" {
				<-release
				return jsonResponse(http.StatusOK, `[{"id":1,"name":"slow"}]`), nil
			}
			return jsonResponse(http.StatusOK, `[{"id":2,"name":"fresh"}]`), nil
		},
	}

	res := reference.New(transport, "ingredients")

	type result struct {
		options []model.ReferenceOption
		err     error
	}
	done := make(chan result, 1)
	go func() {
		options, err := res.Search(ctx, "slow")
		done <- result{options: options, err: err}
	}()

	// Wait for the slow search to reach the transport before outrunning it.
	deadline := time.Now().Add(2 * time.Second)
	for len(transport.recorded()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("slow search never reached the transport")
		}
		time.Sleep(time.Millisecond)
	}

	options := gt.R1(res.Search(ctx, "fresh")).NoError(t)
	gt.Array(t, options).Length(1)
	gt.Value(t, options[0].Label).Equal("fresh")

	close(release)
	stale := <-done
	gt.Error(t, stale.err).Is(reference.ErrSuperseded)
	gt.Array(t, stale.options).Length(0)
}

func TestSearchCanceledMapsToSuperseded(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	transport := &fakeTransport{
		handler: func(ctx context.Context, c call) (*interfaces.Response, error) {
			cancel()
			return nil, goerr.Wrap(ctx.Err(), "request canceled")
		},
	}

	res := reference.New(transport, "ingredients")

	_, err := res.Search(ctx, "doomed")
	gt.Error(t, err).Is(reference.ErrSuperseded)
}

func TestSearchFailure(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{
		handler: func(ctx context.Context, c call) (*interfaces.Response, error) {
			return nil, goerr.Wrap(types.ErrUnexpected, "boom")
		},
	}

	res := reference.New(transport, "ingredients")

	_, err := res.Search(ctx, "flour")
	gt.Error(t, err).Is(types.ErrUnexpected)
	gt.Value(t, res.CurrentPhase()).Equal(reference.PhaseIdle)
}

func TestCreateAndResolve(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{
		handler: func(ctx context.Context, c call) (*interfaces.Response, error) {
			return jsonResponse(http.StatusCreated, `{"id":11,"name":"Saffron"}`), nil
		},
	}

	res := reference.New(transport, "ingredients")

	option := gt.R1(res.CreateAndResolve(ctx, "Saffron")).NoError(t)
	gt.Value(t, option).Equal(model.ReferenceOption{Value: 11, Label: "Saffron"})
	gt.Value(t, res.Value()).Equal(option)
	gt.Value(t, res.CurrentPhase()).Equal(reference.PhaseIdle)

	// The created entity is taken from the response body; no follow-up search.
	calls := transport.recorded()
	gt.Array(t, calls).Length(1)
	gt.Value(t, calls[0].Method).Equal("POST")
	gt.Value(t, calls[0].Path).Equal("ingredients/")
	body := gt.Cast[map[string]any](t, calls[0].Body)
	gt.Value(t, body["name"]).Equal(any("Saffron"))
}

func TestCreateValidationErrorOwnsField(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{
		handler: func(ctx context.Context, c call) (*interfaces.Response, error) {
			return nil, &types.ValidationError{
				Violations: types.FieldViolations{
					"name": {"Name already exists.", "second message is dropped"},
				},
			}
		},
	}

	res := reference.New(transport, "ingredients",
		reference.WithField(model.Indexed("ingredients", 0, "ingredientId")))

	_, err := res.CreateAndResolve(ctx, "Flour")
	gt.Error(t, err)

	var ferr model.FieldError
	gt.True(t, errors.As(err, &ferr))
	gt.Value(t, ferr.Field).Equal(model.Indexed("ingredients", 0, "ingredientId"))
	gt.Value(t, ferr.Message).Equal("Name already exists.")
	gt.Value(t, ferr.Source).Equal(model.ErrorSourceServer)
	gt.True(t, res.Value().IsZero())
}

func TestCreateNetworkErrorReachesHub(t *testing.T) {
	ctx := context.Background()
	transport := &fakeTransport{
		handler: func(ctx context.Context, c call) (*interfaces.Response, error) {
			return nil, goerr.Wrap(types.ErrNetworkUnavailable, "connection refused")
		},
	}

	hub := msghub.New()
	res := reference.New(transport, "ingredients", reference.WithHub(hub))

	_, err := res.CreateAndResolve(ctx, "Flour")
	gt.Error(t, err).Is(types.ErrNetworkUnavailable)

	var ferr model.FieldError
	gt.False(t, errors.As(err, &ferr))
	gt.Value(t, hub.Last()).Equal(msghub.Message{Level: types.MessageError, Text: "Network Error"})
}

func TestBusyDuringCreate(t *testing.T) {
	ctx := context.Background()
	release := make(chan struct{})
	transport := &fakeTransport{
		handler: func(ctx context.Context, c call) (*interfaces.Response, error) {
			<-release
			return jsonResponse(http.StatusCreated, `{"id":5,"name":"Basil"}`), nil
		},
	}

	res := reference.New(transport, "ingredients")

	done := make(chan error, 1)
	go func() {
		_, err := res.CreateAndResolve(ctx, "Basil")
		done <- err
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !res.Busy() {
		if time.Now().After(deadline) {
			t.Fatal("create never became pending")
		}
		time.Sleep(time.Millisecond)
	}
	gt.Value(t, res.CurrentPhase()).Equal(reference.PhaseCreating)

	_, err := res.Search(ctx, "basil")
	gt.Error(t, err).Is(reference.ErrBusy)

	_, err = res.CreateAndResolve(ctx, "Basil again")
	gt.Error(t, err).Is(reference.ErrBusy)

	close(release)
	gt.NoError(t, <-done)
	gt.False(t, res.Busy())
	gt.Value(t, res.Value().Label).Equal("Basil")
}

func TestSetValueAndClear(t *testing.T) {
	res := reference.New(&fakeTransport{}, "tags")

	gt.True(t, res.Value().IsZero())

	res.SetValue(model.ReferenceOption{Value: 2, Label: "vegan"})
	gt.Value(t, res.Value()).Equal(model.ReferenceOption{Value: 2, Label: "vegan"})

	res.Clear()
	gt.True(t, res.Value().IsZero())
}
