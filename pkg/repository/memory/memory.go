package memory

import (
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
)

// Memory is the in-memory repository backend used for development and tests
type Memory struct {
	ingredient *ingredientRepository
	item       *itemRepository
	recipe     *recipeRepository
	tag        *tagRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	ingredientRepo := newIngredientRepository()
	tagRepo := newTagRepository()
	return &Memory{
		ingredient: ingredientRepo,
		item:       newItemRepository(ingredientRepo),
		recipe:     newRecipeRepository(tagRepo),
		tag:        tagRepo,
	}
}

func (m *Memory) Ingredient() interfaces.IngredientRepository {
	return m.ingredient
}

func (m *Memory) Item() interfaces.ItemRepository {
	return m.item
}

func (m *Memory) Recipe() interfaces.RecipeRepository {
	return m.recipe
}

func (m *Memory) Tag() interfaces.TagRepository {
	return m.tag
}

func (m *Memory) Close() error {
	return nil
}
