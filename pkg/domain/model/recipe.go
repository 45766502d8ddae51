package model

import "time"

type Recipe struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Steps     string    `json:"steps"`
	Notes     string    `json:"notes,omitempty"`
	Rating    int64     `json:"rating,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
	UpdatedAt time.Time `json:"updatedAt,omitzero"`
}

// RecipeIngredient links a recipe to an ingredient with a quantity
type RecipeIngredient struct {
	IngredientID int64  `json:"ingredientId"`
	Amount       int64  `json:"amount"`
	Unit         string `json:"unit,omitempty"`
}
