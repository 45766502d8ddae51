package usecase

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/controller/form"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
)

type IngredientUseCase struct {
	transport interfaces.Transport
	hub       *msghub.Hub
	form      *form.Submitter[form.IngredientInput]
	onCreated func(ctx context.Context)
}

func NewIngredientUseCase(transport interfaces.Transport, hub *msghub.Hub) *IngredientUseCase {
	uc := &IngredientUseCase{
		transport: transport,
		hub:       hub,
	}
	uc.form = form.New(transport, "ingredients",
		form.WithHub[form.IngredientInput](hub),
		form.WithMessages[form.IngredientInput]("Ingredient successfully created", "Ingredient successfully updated"),
		form.WithOnSuccess[form.IngredientInput](func(ctx context.Context, _ json.RawMessage) {
			if uc.onCreated != nil {
				uc.onCreated(ctx)
			}
		}),
	)
	return uc
}

// Form exposes the submitter so views can read field errors and focus
func (uc *IngredientUseCase) Form() *form.Submitter[form.IngredientInput] {
	return uc.form
}

// OnCreated registers a hook fired after a successful create, typically a
// dependent list refresh.
func (uc *IngredientUseCase) OnCreated(fn func(ctx context.Context)) {
	uc.onCreated = fn
}

func (uc *IngredientUseCase) Create(ctx context.Context, input form.IngredientInput) (*model.Ingredient, error) {
	body, err := uc.form.Submit(ctx, input)
	if err != nil {
		return nil, err
	}

	var created model.Ingredient
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to decode created ingredient")
	}
	return &created, nil
}
