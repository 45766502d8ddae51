package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/repository"
)

type tagRepository struct {
	mu     sync.RWMutex
	tags   map[int64]*model.Tag
	nextID int64
}

func newTagRepository() *tagRepository {
	return &tagRepository{
		tags:   make(map[int64]*model.Tag),
		nextID: 1,
	}
}

func (r *tagRepository) List(ctx context.Context, f interfaces.ListFilter) ([]*model.Tag, model.PageInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]*model.Tag, 0, len(r.tags))
	for _, tag := range r.tags {
		if f.Name != "" && !strings.Contains(strings.ToLower(tag.Name), strings.ToLower(f.Name)) {
			continue
		}
		matched = append(matched, copyTag(tag))
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	page, info := repository.Paginate(matched, f)
	return page, info, nil
}

func (r *tagRepository) Get(ctx context.Context, id int64) (*model.Tag, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, exists := r.tags[id]
	if !exists {
		return nil, goerr.Wrap(repository.ErrNotFound, "tag not found", goerr.V("id", id))
	}
	return copyTag(tag), nil
}

func (r *tagRepository) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.tags {
		if strings.EqualFold(existing.Name, tag.Name) {
			return nil, goerr.Wrap(repository.ErrDuplicateName, "tag name already exists",
				goerr.V("name", tag.Name))
		}
	}

	created := &model.Tag{
		ID:   r.nextID,
		Name: tag.Name,
	}
	r.nextID++
	r.tags[created.ID] = created

	return copyTag(created), nil
}

func (r *tagRepository) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tags[id]; !exists {
		return goerr.Wrap(repository.ErrNotFound, "tag not found", goerr.V("id", id))
	}
	delete(r.tags, id)
	return nil
}

// get is the lock-safe variant used by the recipe repository to join tag
// names into association listings
func (r *tagRepository) get(id int64) *model.Tag {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tag, exists := r.tags[id]
	if !exists {
		return nil
	}
	return copyTag(tag)
}

func copyTag(tag *model.Tag) *model.Tag {
	cp := *tag
	return &cp
}
