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

type ingredientRepository struct {
	mu          sync.RWMutex
	ingredients map[int64]*model.Ingredient
	nextID      int64
}

func newIngredientRepository() *ingredientRepository {
	return &ingredientRepository{
		ingredients: make(map[int64]*model.Ingredient),
		nextID:      1,
	}
}

func (r *ingredientRepository) List(ctx context.Context, f interfaces.ListFilter) ([]*model.Ingredient, model.PageInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Ingredient, 0, len(r.ingredients))
	for _, ing := range r.ingredients {
		if f.Name != "" && !strings.Contains(strings.ToLower(ing.Name), strings.ToLower(f.Name)) {
			continue
		}
		matched = append(matched, copyIngredient(ing))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page, info := repository.Paginate(matched, f)
	return page, info, nil
}

func (r *ingredientRepository) Get(ctx context.Context, id int64) (*model.Ingredient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ing, exists := r.ingredients[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "ingredient not found", goerr.V("id", id))
	}
	return copyIngredient(ing), nil
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *model.Ingredient) (*model.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.ingredients {
		if strings.EqualFold(existing.Name, ingredient.Name) {
			return nil, goerr.Wrap(repository.ErrDuplicateName, "ingredient name already exists",
				goerr.V("name", ingredient.Name))
		}
	}

	created := &model.Ingredient{
		ID:        r.nextID,
		Name:      ingredient.Name,
		UpdatedAt: time.Now().UTC(),
	}
	r.nextID++
	r.ingredients[created.ID] = created

	return copyIngredient(created), nil
}

func (r *ingredientRepository) Update(ctx context.Context, ingredient *model.Ingredient) (*model.Ingredient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ingredients[ingredient.ID]; !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "ingredient not found", goerr.V("id", ingredient.ID))
	}

	updated := &model.Ingredient{
		ID:        ingredient.ID,
		Name:      ingredient.Name,
		UpdatedAt: time.Now().UTC(),
	}
	r.ingredients[updated.ID] = updated

	return copyIngredient(updated), nil
}

func (r *ingredientRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.ingredients[id]; !exists {
		return goerr.Wrap(repository.ErrNotFound, "ingredient not found", goerr.V("id", id))
	}
	delete(r.ingredients, id)
	return nil
}

// get is the lock-free variant used by the item repository to embed
// ingredients into listed items. Callers hold no lock on this repository.
func (r *ingredientRepository) get(id int64) *model.Ingredient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ing, exists := r.ingredients[id]
	if !exists {
		return nil
	}
	return copyIngredient(ing)
}

func copyIngredient(ing *model.Ingredient) *model.Ingredient {
	cp := *ing
	return &cp
}
