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

type itemRepository struct {
	mu          sync.RWMutex
	items       map[int64]*model.Item
	nextID      int64
	ingredients *ingredientRepository
}

func newItemRepository(ingredients *ingredientRepository) *itemRepository {
	return &itemRepository{
		items:       make(map[int64]*model.Item),
		nextID:      1,
		ingredients: ingredients,
	}
}

func (r *itemRepository) List(ctx context.Context, f interfaces.ListFilter) ([]*model.Item, model.PageInfo, error) {
	r.mu.RLock()
	matched := make([]*model.Item, 0, len(r.items))
	for _, item := range r.items {
		if f.Name != "" && !strings.Contains(strings.ToLower(item.Name), strings.ToLower(f.Name)) {
			continue
		}
		if f.ProductID != nil && (item.ProductID == nil || *item.ProductID != *f.ProductID) {
			continue
		}
		matched = append(matched, copyItem(item))
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page, info := repository.Paginate(matched, f)
	for _, item := range page {
		r.embedIngredient(item)
	}
	return page, info, nil
}

func (r *itemRepository) Get(ctx context.Context, id int64) (*model.Item, error) {
	r.mu.RLock()
	item, exists := r.items[id]
	if !exists {
		r.mu.RUnlock()
		return nil, goerr.Wrap(repository.ErrNotFound, "item not found", goerr.V("id", id))
	}
	cp := copyItem(item)
	r.mu.RUnlock()

	r.embedIngredient(cp)
	return cp, nil
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	r.mu.Lock()
	created := &model.Item{
		ID:           r.nextID,
		Name:         item.Name,
		Amount:       item.Amount,
		ProductID:    copyID(item.ProductID),
		IngredientID: copyID(item.IngredientID),
		UpdatedAt:    time.Now().UTC(),
	}
	r.nextID++
	r.items[created.ID] = created
	cp := copyItem(created)
	r.mu.Unlock()

	r.embedIngredient(cp)
	return cp, nil
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) (*model.Item, error) {
	r.mu.Lock()
	if _, exists := r.items[item.ID]; !exists {
		r.mu.Unlock()
		return nil, goerr.Wrap(repository.ErrNotFound, "item not found", goerr.V("id", item.ID))
	}

	updated := &model.Item{
		ID:           item.ID,
		Name:         item.Name,
		Amount:       item.Amount,
		ProductID:    copyID(item.ProductID),
		IngredientID: copyID(item.IngredientID),
		UpdatedAt:    time.Now().UTC(),
	}
	r.items[updated.ID] = updated
	cp := copyItem(updated)
	r.mu.Unlock()

	r.embedIngredient(cp)
	return cp, nil
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[id]; !exists {
		return goerr.Wrap(repository.ErrNotFound, "item not found", goerr.V("id", id))
	}
	delete(r.items, id)
	return nil
}

func (r *itemRepository) embedIngredient(item *model.Item) {
	if item.IngredientID == nil {
		return
	}
	item.Ingredient = r.ingredients.get(*item.IngredientID)
}

func copyItem(item *model.Item) *model.Item {
	cp := *item
	cp.ProductID = copyID(item.ProductID)
	cp.IngredientID = copyID(item.IngredientID)
	cp.Ingredient = nil
	return &cp
}

func copyID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
