package form

import (
	"github.com/pantry-lab/sousschef/pkg/domain/model"
)

// maxProductID caps scannable product IDs at 12 digits (EAN/UPC length)
const maxProductID = 999_999_999_999

// IngredientInput is the payload of the ingredient form
type IngredientInput struct {
	Name string
}

var _ Payload = IngredientInput{}

func (in IngredientInput) Serialize() map[string]any {
	return map[string]any{"name": in.Name}
}

func (in IngredientInput) Validate() []model.FieldError {
	var errs []model.FieldError
	if in.Name == "" {
		errs = append(errs, required("name"))
	}
	return errs
}

// ItemInput is the payload of the item create/edit form. ProductID zero
// means "not set"; Ingredient is a compound reference field reduced to its
// identity on the wire.
type ItemInput struct {
	Name       string
	Amount     int64
	ProductID  int64
	Ingredient model.ReferenceOption
}

var _ Payload = ItemInput{}

func (in ItemInput) Serialize() map[string]any {
	body := map[string]any{
		"name":   in.Name,
		"amount": in.Amount,
	}
	if in.ProductID != 0 {
		body["productId"] = in.ProductID
	}
	if !in.Ingredient.IsZero() {
		body["ingredientId"] = in.Ingredient.Value
	}
	return body
}

func (in ItemInput) Validate() []model.FieldError {
	var errs []model.FieldError
	if in.Name == "" {
		errs = append(errs, required("name"))
	}
	if in.Amount == 0 {
		errs = append(errs, required("amount"))
	}
	if in.ProductID < 0 {
		errs = append(errs, clientError("productId", "must not be negative"))
	}
	if in.ProductID > maxProductID {
		errs = append(errs, clientError("productId", "must be at most 12 digits"))
	}
	return errs
}

// RecipeRow is one entry of the variable-length ingredient list on the
// recipe form
type RecipeRow struct {
	Ingredient model.ReferenceOption
	Amount     int64
	Unit       string
}

// RecipeInput is the payload of the recipe form. Tags are associated in a
// separate best-effort step after creation and are not part of the
// serialized body.
type RecipeInput struct {
	Name        string
	Steps       string
	Notes       string
	Rating      int64
	Ingredients []RecipeRow
	Tags        []model.ReferenceOption
}

var _ Payload = RecipeInput{}

func (in RecipeInput) Serialize() map[string]any {
	body := map[string]any{
		"name":  in.Name,
		"steps": in.Steps,
	}
	if in.Rating != 0 {
		body["rating"] = in.Rating
	}
	if in.Notes != "" {
		body["notes"] = in.Notes
	}
	if len(in.Ingredients) > 0 {
		rows := make([]map[string]any, 0, len(in.Ingredients))
		for _, row := range in.Ingredients {
			rows = append(rows, map[string]any{
				"ingredientId": row.Ingredient.Value,
				"amount":       row.Amount,
				"unit":         row.Unit,
			})
		}
		body["ingredients"] = rows
	}
	return body
}

func (in RecipeInput) Validate() []model.FieldError {
	var errs []model.FieldError
	if in.Name == "" {
		errs = append(errs, required("name"))
	}
	if in.Steps == "" {
		errs = append(errs, required("steps"))
	}
	for i, row := range in.Ingredients {
		if row.Ingredient.IsZero() {
			errs = append(errs, model.FieldError{
				Field:   model.Indexed("ingredients", i, "ingredient"),
				Message: "This field is required",
				Source:  model.ErrorSourceClient,
			})
		}
	}
	return errs
}

// RemoveRow deletes the i-th ingredient row. The caller must also discard
// attached row errors via Submitter.DiscardRowErrors; indices past i now
// address different rows.
func (in *RecipeInput) RemoveRow(i int) {
	if i < 0 || i >= len(in.Ingredients) {
		return
	}
	in.Ingredients = append(in.Ingredients[:i], in.Ingredients[i+1:]...)
}

// AddRow appends an empty ingredient row
func (in *RecipeInput) AddRow() {
	in.Ingredients = append(in.Ingredients, RecipeRow{})
}

// TagIDs returns the identities of the selected tag options
func (in RecipeInput) TagIDs() []int64 {
	if len(in.Tags) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(in.Tags))
	for _, t := range in.Tags {
		ids = append(ids, t.Value)
	}
	return ids
}

func required(field string) model.FieldError {
	return model.FieldError{
		Field:   model.Field(field),
		Message: "This field is required",
		Source:  model.ErrorSourceClient,
	}
}

func clientError(field, msg string) model.FieldError {
	return model.FieldError{
		Field:   model.Field(field),
		Message: msg,
		Source:  model.ErrorSourceClient,
	}
}
