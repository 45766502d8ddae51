package usecase

import (
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/utils/msghub"
)

// UseCases bundles the flows of the pantry client. All of them publish
// user-facing messages through the same hub and share one transport.
type UseCases struct {
	transport  interfaces.Transport
	hub        *msghub.Hub
	Ingredient *IngredientUseCase
	Item       *ItemUseCase
	Recipe     *RecipeUseCase
}

func New(transport interfaces.Transport, hub *msghub.Hub) *UseCases {
	return &UseCases{
		transport:  transport,
		hub:        hub,
		Ingredient: NewIngredientUseCase(transport, hub),
		Item:       NewItemUseCase(transport, hub),
		Recipe:     NewRecipeUseCase(transport, hub),
	}
}
