package usecase

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/controller/form"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/utils/errutil"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
)

type RecipeUseCase struct {
	transport interfaces.Transport
	hub       *msghub.Hub
	form      *form.Submitter[form.RecipeInput]
}

func NewRecipeUseCase(transport interfaces.Transport, hub *msghub.Hub) *RecipeUseCase {
	return &RecipeUseCase{
		transport: transport,
		hub:       hub,
		form: form.New(transport, "recipes",
			form.WithHub[form.RecipeInput](hub),
			form.WithMessages[form.RecipeInput]("Recipe successfully created", "Recipe successfully updated"),
		),
	}
}

// Form exposes the submitter so views can read field errors and focus
func (uc *RecipeUseCase) Form() *form.Submitter[form.RecipeInput] {
	return uc.form
}

// Create submits the recipe and then associates the selected tags as a
// best-effort second step. A tag association failure is reported on its own
// and does not undo or mask the successful creation.
func (uc *RecipeUseCase) Create(ctx context.Context, input form.RecipeInput) (*model.Recipe, error) {
	body, err := uc.form.Submit(ctx, input)
	if err != nil {
		return nil, err
	}

	var created model.Recipe
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, goerr.Wrap(err, "failed to decode created recipe")
	}

	if tagIDs := input.TagIDs(); len(tagIDs) > 0 {
		path := "recipes/" + strconv.FormatInt(created.ID, 10) + "/tags"
		if _, err := uc.transport.Post(ctx, path, map[string]any{"tagIds": tagIDs}); err != nil {
			if uc.hub != nil {
				uc.hub.Error("Error adding tags to recipe")
			}
			errutil.Handle(ctx, err, "failed to associate tags with recipe")
		}
	}

	return &created, nil
}

// Ingredients fetches the ingredient lines of a recipe detail view
func (uc *RecipeUseCase) Ingredients(ctx context.Context, recipeID int64) ([]model.RecipeIngredient, error) {
	path := "recipes/" + strconv.FormatInt(recipeID, 10) + "/ingredients"
	resp, err := uc.transport.Get(ctx, path, nil)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to fetch recipe ingredients", goerr.V("recipe_id", recipeID))
	}

	var lines []model.RecipeIngredient
	if err := json.Unmarshal(resp.Body, &lines); err != nil {
		return nil, goerr.Wrap(err, "failed to decode recipe ingredients", goerr.V("recipe_id", recipeID))
	}
	return lines, nil
}
