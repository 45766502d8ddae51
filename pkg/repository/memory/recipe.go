package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/repository"
)

type recipeRepository struct {
	mu          sync.RWMutex
	recipes     map[int64]*model.Recipe
	ingredients map[int64][]model.RecipeIngredient
	tags        map[int64][]int64
	nextID      int64
	tagRepo     *tagRepository
}

func newRecipeRepository(tagRepo *tagRepository) *recipeRepository {
	return &recipeRepository{
		recipes:     make(map[int64]*model.Recipe),
		ingredients: make(map[int64][]model.RecipeIngredient),
		tags:        make(map[int64][]int64),
		nextID:      1,
		tagRepo:     tagRepo,
	}
}

func (r *recipeRepository) List(ctx context.Context, f interfaces.ListFilter) ([]*model.Recipe, model.PageInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Recipe, 0, len(r.recipes))
	for _, rec := range r.recipes {
		if f.Name != "" && !strings.Contains(strings.ToLower(rec.Name), strings.ToLower(f.Name)) {
			continue
		}
		// Recipes carry no product ID; a product ID filter matches nothing.
		if f.ProductID != nil {
			continue
		}
		matched = append(matched, copyRecipe(rec))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page, info := repository.Paginate(matched, f)
	return page, info, nil
}

func (r *recipeRepository) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, exists := r.recipes[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "recipe not found", goerr.V("id", id))
	}
	return copyRecipe(rec), nil
}

func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe, ingredients []model.RecipeIngredient) (*model.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	created := &model.Recipe{
		ID:        r.nextID,
		Name:      recipe.Name,
		Steps:     recipe.Steps,
		Notes:     recipe.Notes,
		Rating:    recipe.Rating,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.nextID++
	r.recipes[created.ID] = created
	r.ingredients[created.ID] = append([]model.RecipeIngredient(nil), ingredients...)

	return copyRecipe(created), nil
}

func (r *recipeRepository) Update(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.recipes[recipe.ID]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "recipe not found", goerr.V("id", recipe.ID))
	}

	updated := &model.Recipe{
		ID:        existing.ID,
		Name:      recipe.Name,
		Steps:     recipe.Steps,
		Notes:     recipe.Notes,
		Rating:    recipe.Rating,
		CreatedAt: existing.CreatedAt,
		UpdatedAt: time.Now().UTC(),
	}
	r.recipes[updated.ID] = updated

	return copyRecipe(updated), nil
}

func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.recipes[id]; !exists {
		return goerr.Wrap(repository.ErrNotFound, "recipe not found", goerr.V("id", id))
	}
	delete(r.recipes, id)
	delete(r.ingredients, id)
	delete(r.tags, id)
	return nil
}

func (r *recipeRepository) Ingredients(ctx context.Context, recipeID int64) ([]model.RecipeIngredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.recipes[recipeID]; !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "recipe not found", goerr.V("id", recipeID))
	}
	return append([]model.RecipeIngredient(nil), r.ingredients[recipeID]...), nil
}

func (r *recipeRepository) SetTags(ctx context.Context, recipeID int64, tagIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.recipes[recipeID]; !exists {
		return goerr.Wrap(repository.ErrNotFound, "recipe not found", goerr.V("id", recipeID))
	}
	r.tags[recipeID] = append([]int64(nil), tagIDs...)
	return nil
}

func (r *recipeRepository) Tags(ctx context.Context, recipeID int64) ([]*model.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, exists := r.recipes[recipeID]; !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "recipe not found", goerr.V("id", recipeID))
	}

	ids := r.tags[recipeID]
	out := make([]*model.Tag, 0, len(ids))
	for _, id := range ids {
		if tag := r.tagRepo.get(id); tag != nil {
			out = append(out, tag)
		}
	}
	return out, nil
}

func copyRecipe(rec *model.Recipe) *model.Recipe {
	cp := *rec
	return &cp
}
