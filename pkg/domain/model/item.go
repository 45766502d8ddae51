package model

import "time"

// Item is a stocked inventory entry, optionally linked to an Ingredient and
// tagged with a scannable product ID.
type Item struct {
	ID           int64       `json:"id"`
	Name         string      `json:"name"`
	Amount       int64       `json:"amount"`
	ProductID    *int64      `json:"productId,omitempty"`
	IngredientID *int64      `json:"ingredientId,omitempty"`
	Ingredient   *Ingredient `json:"ingredient,omitempty"`
	UpdatedAt    time.Time   `json:"updatedAt,omitzero"`
}
