package form_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/pantry-lab/sousschef/pkg/controller/form"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
)

type stubTransport struct {
	mu    sync.Mutex
	posts int
	puts  int
	body  map[string]any
	etag  string

	respond func() (*interfaces.Response, error)
}

func (s *stubTransport) Get(ctx context.Context, path string, query url.Values) (*interfaces.Response, error) {
	return nil, goerr.New("unexpected GET")
}

func (s *stubTransport) Post(ctx context.Context, path string, body any) (*interfaces.Response, error) {
	s.mu.Lock()
	s.posts++
	s.body, _ = body.(map[string]any)
	s.mu.Unlock()
	return s.respond()
}

func (s *stubTransport) Put(ctx context.Context, path string, body any, etag string) (*interfaces.Response, error) {
	s.mu.Lock()
	s.puts++
	s.body, _ = body.(map[string]any)
	s.etag = etag
	s.mu.Unlock()
	return s.respond()
}

func (s *stubTransport) Delete(ctx context.Context, path string, etag string) (*interfaces.Response, error) {
	return nil, goerr.New("unexpected DELETE")
}

func ok(body string) func() (*interfaces.Response, error) {
	return func() (*interfaces.Response, error) {
		return &interfaces.Response{StatusCode: http.StatusOK, Body: []byte(body), Header: http.Header{}}, nil
	}
}

func validationFailure(violations types.FieldViolations) func() (*interfaces.Response, error) {
	return func() (*interfaces.Response, error) {
		return nil, &types.ValidationError{Violations: violations}
	}
}

func TestSubmitClientValidation(t *testing.T) {
	ctx := context.Background()
	transport := &stubTransport{respond: ok(`{}`)}
	sub := form.New[form.ItemInput](transport, "items")

	_, err := sub.Submit(ctx, form.ItemInput{})
	gt.Value(t, err).NotNil()
	gt.Error(t, err).Is(types.ErrValidationFailed)

	// Required checks stop the submission before any network round-trip.
	gt.Number(t, transport.posts).Equal(0)

	errs := sub.FieldErrors()
	gt.Array(t, errs).Length(2)
	gt.Value(t, errs[0].Field).Equal(model.Field("amount"))
	gt.Value(t, errs[0].Message).Equal("This field is required")
	gt.Value(t, errs[0].Source).Equal(model.ErrorSourceClient)
	gt.Value(t, errs[1].Field).Equal(model.Field("name"))
	gt.Value(t, sub.Focus()).Equal(model.Field("amount"))
}

func TestSubmitSuccess(t *testing.T) {
	ctx := context.Background()
	hub := msghub.New()
	transport := &stubTransport{respond: ok(`{"id":10,"name":"Rice"}`)}

	var resetCalled bool
	var gotBody json.RawMessage
	sub := form.New[form.ItemInput](transport, "items",
		form.WithHub[form.ItemInput](hub),
		form.WithMessages[form.ItemInput]("Item successfully created", "Item successfully updated"),
		form.WithOnReset[form.ItemInput](func() { resetCalled = true }),
		form.WithOnSuccess[form.ItemInput](func(ctx context.Context, body json.RawMessage) { gotBody = body }),
	)

	body, err := sub.Submit(ctx, form.ItemInput{Name: "Rice", Amount: 3})
	gt.NoError(t, err).Required()
	gt.Value(t, string(body)).Equal(`{"id":10,"name":"Rice"}`)
	gt.Value(t, string(gotBody)).Equal(`{"id":10,"name":"Rice"}`)
	gt.Value(t, resetCalled).Equal(true)
	gt.Value(t, hub.Last().Text).Equal("Item successfully created")
	gt.Array(t, sub.FieldErrors()).Length(0)

	gt.Value(t, transport.body["name"]).Equal("Rice")
	// Optional fields absent from the form are omitted, not sent as null.
	_, hasProduct := transport.body["productId"]
	gt.Value(t, hasProduct).Equal(false)
}

func TestUpdateCarriesConcurrencyToken(t *testing.T) {
	ctx := context.Background()
	hub := msghub.New()
	transport := &stubTransport{respond: ok(`{"id":10}`)}

	var resetCalled bool
	sub := form.New[form.ItemInput](transport, "items",
		form.WithHub[form.ItemInput](hub),
		form.WithMessages[form.ItemInput]("created", "updated"),
		form.WithOnReset[form.ItemInput](func() { resetCalled = true }),
	)

	_, err := sub.Update(ctx, 10, `"v3"`, form.ItemInput{Name: "Rice", Amount: 3})
	gt.NoError(t, err).Required()
	gt.Value(t, transport.etag).Equal(`"v3"`)
	gt.Value(t, hub.Last().Text).Equal("updated")
	// Updates keep the form values for further editing.
	gt.Value(t, resetCalled).Equal(false)
}

func TestServerViolationMapping(t *testing.T) {
	ctx := context.Background()

	t.Run("maps only fields present in the sent payload", func(t *testing.T) {
		transport := &stubTransport{respond: validationFailure(types.FieldViolations{
			"name":      {"Name already exists.", "second message"},
			"productId": {"Not a valid product ID."},
		})}
		sub := form.New[form.ItemInput](transport, "items")

		// ProductID is zero, so the payload never carried productId; the
		// server's complaint about it must be dropped.
		_, err := sub.Submit(ctx, form.ItemInput{Name: "Rice", Amount: 3})
		gt.Error(t, err).Is(types.ErrValidationFailed)

		errs := sub.FieldErrors()
		gt.Array(t, errs).Length(1)
		gt.Value(t, errs[0].Field).Equal(model.Field("name"))
		gt.Value(t, errs[0].Message).Equal("Name already exists.")
		gt.Value(t, errs[0].Source).Equal(model.ErrorSourceServer)
		gt.Value(t, sub.Focus()).Equal(model.Field("name"))
	})

	t.Run("maps row violations onto their rows", func(t *testing.T) {
		transport := &stubTransport{respond: validationFailure(types.FieldViolations{
			"ingredients[1].ingredientId": {"Ingredient does not exist."},
		})}
		sub := form.New[form.RecipeInput](transport, "recipes")

		input := form.RecipeInput{
			Name:  "Stew",
			Steps: "Simmer",
			Ingredients: []form.RecipeRow{
				{Ingredient: model.ReferenceOption{Value: 1, Label: "Onion"}, Amount: 2},
				{Ingredient: model.ReferenceOption{Value: 99, Label: "Ghost"}, Amount: 1},
			},
		}
		_, err := sub.Submit(ctx, input)
		gt.Error(t, err).Is(types.ErrValidationFailed)

		fe, found := sub.ErrorOn(model.Indexed("ingredients", 1, "ingredientId"))
		gt.Value(t, found).Equal(true)
		gt.Value(t, fe.Message).Equal("Ingredient does not exist.")
	})
}

func TestDispatchGlobalMessages(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{name: "network failure", err: goerr.Wrap(types.ErrNetworkUnavailable, "request failed"), expected: "Network Error"},
		{name: "missing resource", err: goerr.Wrap(types.ErrNotFound, "not found"), expected: "Resource Not Found"},
		{name: "concurrency conflict", err: goerr.Wrap(types.ErrPreconditionFailed, "mismatch"), expected: "The item was modified elsewhere"},
		{name: "anything else", err: goerr.Wrap(types.ErrUnexpected, "status 500"), expected: "An unexpected error has occured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := msghub.New()
			transport := &stubTransport{respond: func() (*interfaces.Response, error) { return nil, tt.err }}
			sub := form.New[form.ItemInput](transport, "items", form.WithHub[form.ItemInput](hub))

			_, err := sub.Submit(ctx, form.ItemInput{Name: "Rice", Amount: 3})
			gt.Value(t, err).NotNil()
			gt.Value(t, hub.Last().Text).Equal(tt.expected)
			gt.Array(t, sub.FieldErrors()).Length(0)
		})
	}

	t.Run("cancellation is silent", func(t *testing.T) {
		hub := msghub.New()
		transport := &stubTransport{respond: func() (*interfaces.Response, error) { return nil, context.Canceled }}
		sub := form.New[form.ItemInput](transport, "items", form.WithHub[form.ItemInput](hub))

		_, err := sub.Submit(ctx, form.ItemInput{Name: "Rice", Amount: 3})
		gt.Value(t, types.IsCanceled(err)).Equal(true)
		gt.Value(t, hub.Last().IsZero()).Equal(true)
	})
}

func TestDiscardRowErrors(t *testing.T) {
	ctx := context.Background()
	transport := &stubTransport{respond: validationFailure(types.FieldViolations{
		"name":                        {"Name already exists."},
		"ingredients[0].ingredientId": {"Ingredient does not exist."},
		"ingredients[2].ingredientId": {"Ingredient does not exist."},
	})}
	sub := form.New[form.RecipeInput](transport, "recipes")

	input := form.RecipeInput{
		Name:  "Stew",
		Steps: "Simmer",
		Ingredients: []form.RecipeRow{
			{Ingredient: model.ReferenceOption{Value: 1}, Amount: 1},
			{Ingredient: model.ReferenceOption{Value: 2}, Amount: 1},
			{Ingredient: model.ReferenceOption{Value: 3}, Amount: 1},
		},
	}
	_, err := sub.Submit(ctx, input)
	gt.Error(t, err).Is(types.ErrValidationFailed)
	gt.Array(t, sub.FieldErrors()).Length(3)

	// Removing row 1 invalidates the indices of every row from 1 on; their
	// errors are discarded, never remapped. Row 0 keeps its error.
	sub.DiscardRowErrors("ingredients", 1)

	errs := sub.FieldErrors()
	gt.Array(t, errs).Length(2)
	gt.Value(t, errs[0].Field).Equal(model.Indexed("ingredients", 0, "ingredientId"))
	gt.Value(t, errs[1].Field).Equal(model.Field("name"))
}

func TestAttachFieldError(t *testing.T) {
	transport := &stubTransport{respond: ok(`{}`)}
	sub := form.New[form.ItemInput](transport, "items")

	sub.AttachFieldError(model.FieldError{
		Field:   model.Field("ingredientId"),
		Message: "Name already exists.",
		Source:  model.ErrorSourceServer,
	})

	fe, found := sub.ErrorOn(model.Field("ingredientId"))
	gt.Value(t, found).Equal(true)
	gt.Value(t, fe.Message).Equal("Name already exists.")
	gt.Value(t, sub.Focus()).Equal(model.Field("ingredientId"))
}
