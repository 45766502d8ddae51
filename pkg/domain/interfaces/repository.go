package interfaces

import (
	"context"

	"github.com/pantry-lab/sousschef/pkg/domain/model"
)

// ListFilter narrows and pages a collection listing
type ListFilter struct {
	Name      string
	ProductID *int64
	Page      int
	PageSize  int
}

// Repository defines the persistence interface of the dev backend
type Repository interface {
	Ingredient() IngredientRepository
	Item() ItemRepository
	Recipe() RecipeRepository
	Tag() TagRepository
	Close() error
}

type IngredientRepository interface {
	List(ctx context.Context, f ListFilter) ([]*model.Ingredient, model.PageInfo, error)
	Get(ctx context.Context, id int64) (*model.Ingredient, error)
	Create(ctx context.Context, ingredient *model.Ingredient) (*model.Ingredient, error)
	Update(ctx context.Context, ingredient *model.Ingredient) (*model.Ingredient, error)
	Delete(ctx context.Context, id int64) error
}

type ItemRepository interface {
	List(ctx context.Context, f ListFilter) ([]*model.Item, model.PageInfo, error)
	Get(ctx context.Context, id int64) (*model.Item, error)
	Create(ctx context.Context, item *model.Item) (*model.Item, error)
	Update(ctx context.Context, item *model.Item) (*model.Item, error)
	Delete(ctx context.Context, id int64) error
}

type RecipeRepository interface {
	List(ctx context.Context, f ListFilter) ([]*model.Recipe, model.PageInfo, error)
	Get(ctx context.Context, id int64) (*model.Recipe, error)
	Create(ctx context.Context, recipe *model.Recipe, ingredients []model.RecipeIngredient) (*model.Recipe, error)
	Update(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error)
	Delete(ctx context.Context, id int64) error
	Ingredients(ctx context.Context, recipeID int64) ([]model.RecipeIngredient, error)
	SetTags(ctx context.Context, recipeID int64, tagIDs []int64) error
	Tags(ctx context.Context, recipeID int64) ([]*model.Tag, error)
}

type TagRepository interface {
	List(ctx context.Context, f ListFilter) ([]*model.Tag, model.PageInfo, error)
	Get(ctx context.Context, id int64) (*model.Tag, error)
	Create(ctx context.Context, tag *model.Tag) (*model.Tag, error)
	Delete(ctx context.Context, id int64) error
}
