package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/controller/form"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/domain/types"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
)

type ItemUseCase struct {
	transport interfaces.Transport
	hub       *msghub.Hub
	form      *form.Submitter[form.ItemInput]
}

func NewItemUseCase(transport interfaces.Transport, hub *msghub.Hub) *ItemUseCase {
	return &ItemUseCase{
		transport: transport,
		hub:       hub,
		form: form.New(transport, "items",
			form.WithHub[form.ItemInput](hub),
			form.WithMessages[form.ItemInput]("Item successfully created", "Item successfully updated"),
		),
	}
}

// Form exposes the submitter so views can read field errors and focus
func (uc *ItemUseCase) Form() *form.Submitter[form.ItemInput] {
	return uc.form
}

func (uc *ItemUseCase) Create(ctx context.Context, input form.ItemInput) (*model.Item, error) {
	body, err := uc.form.Submit(ctx, input)
	if err != nil {
		return nil, err
	}

	var created model.Item
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to decode created item")
	}
	return &created, nil
}

// Load fetches a single item for editing and returns prefilled form values
// together with the concurrency token required by the later Update.
func (uc *ItemUseCase) Load(ctx context.Context, id int64) (form.ItemInput, string, error) {
	resp, err := uc.transport.Get(ctx, "items/"+strconv.FormatInt(id, 10), nil)
	if err != nil {
		if !types.IsCanceled(err) && uc.hub != nil {
			switch {
			case errors.Is(err, types.ErrNetworkUnavailable):
				uc.hub.Error("Network Error")
			case errors.Is(err, types.ErrNotFound):
				uc.hub.Error("Resource Not Found")
			default:
				uc.hub.Error("An unexpected error has occured")
			}
		}
		return form.ItemInput{}, "", goerr.Wrap(err, "failed to load item", goerr.V("id", id))
	}

	var item model.Item
	if err := json.Unmarshal(resp.Body, &item); err != nil {
		return form.ItemInput{}, "", goerr.Wrap(err, "failed to decode item", goerr.V("id", id))
	}

	input := form.ItemInput{
		Name:   item.Name,
		Amount: item.Amount,
	}
	if item.ProductID != nil {
		input.ProductID = *item.ProductID
	}
	if item.Ingredient != nil {
		input.Ingredient = model.ReferenceOption{Value: item.Ingredient.ID, Label: item.Ingredient.Name}
	}

	return input, resp.ETag(), nil
}

// Update rewrites the item under the concurrency token obtained by Load
func (uc *ItemUseCase) Update(ctx context.Context, id int64, etag string, input form.ItemInput) (*model.Item, error) {
	body, err := uc.form.Update(ctx, id, etag, input)
	if err != nil {
		return nil, err
	}

	var updated model.Item
	if err := json.Unmarshal(body, &updated); err != nil {
		return nil, goerr.Wrap(err, "failed to decode updated item", goerr.V("id", id))
	}
	return &updated, nil
}
