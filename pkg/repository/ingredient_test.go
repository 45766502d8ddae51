package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/repository"
)

func runIngredientRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create assigns id and timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Ingredient().Create(ctx, &model.Ingredient{Name: "Flour"})
		gt.NoError(t, err).Required()
		gt.Number(t, created.ID).Greater(0)
		gt.Value(t, created.Name).Equal("Flour")
		gt.Bool(t, created.UpdatedAt.IsZero()).False()
	})

	t.Run("Create rejects duplicate names case-insensitively", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Ingredient().Create(ctx, &model.Ingredient{Name: "Sugar"})
		gt.NoError(t, err).Required()

		_, err = repo.Ingredient().Create(ctx, &model.Ingredient{Name: "sugar"})
		gt.Error(t, err).Is(repository.ErrDuplicateName)
	})

	t.Run("Get returns the stored ingredient", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Ingredient().Create(ctx, &model.Ingredient{Name: "Salt"})
		gt.NoError(t, err).Required()

		got, err := repo.Ingredient().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.ID).Equal(created.ID)
		gt.Value(t, got.Name).Equal("Salt")
	})

	t.Run("Get unknown id returns not found", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Ingredient().Get(context.Background(), 404)
		gt.Error(t, err).Is(repository.ErrNotFound)
	})

	t.Run("Update renames and bumps the timestamp", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Ingredient().Create(ctx, &model.Ingredient{Name: "Oregano"})
		gt.NoError(t, err).Required()

		time.Sleep(time.Millisecond)
		updated, err := repo.Ingredient().Update(ctx, &model.Ingredient{ID: created.ID, Name: "Dried oregano"})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Name).Equal("Dried oregano")
		gt.Bool(t, updated.UpdatedAt.After(created.UpdatedAt)).True()

		_, err = repo.Ingredient().Update(ctx, &model.Ingredient{ID: 404, Name: "ghost"})
		gt.Error(t, err).Is(repository.ErrNotFound)
	})

	t.Run("Delete removes the ingredient", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Ingredient().Create(ctx, &model.Ingredient{Name: "Basil"})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Ingredient().Delete(ctx, created.ID))
		_, err = repo.Ingredient().Get(ctx, created.ID)
		gt.Error(t, err).Is(repository.ErrNotFound)

		gt.Error(t, repo.Ingredient().Delete(ctx, created.ID)).Is(repository.ErrNotFound)
	})

	t.Run("List filters by name substring", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, name := range []string{"Whole milk", "Oat milk", "Butter"} {
			_, err := repo.Ingredient().Create(ctx, &model.Ingredient{Name: name})
			gt.NoError(t, err).Required()
		}

		page, info, err := repo.Ingredient().List(ctx, interfaces.ListFilter{Name: "milk"})
		gt.NoError(t, err).Required()
		gt.Array(t, page).Length(2)
		gt.Value(t, page[0].Name).Equal("Whole milk")
		gt.Value(t, page[1].Name).Equal("Oat milk")
		gt.Value(t, info).Equal(modelPageInfo(1, 1))
	})

	t.Run("List pages in id order", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		names := []string{"a", "b", "c", "d", "e"}
		for _, name := range names {
			_, err := repo.Ingredient().Create(ctx, &model.Ingredient{Name: name})
			gt.NoError(t, err).Required()
		}

		page, info, err := repo.Ingredient().List(ctx, interfaces.ListFilter{Page: 2, PageSize: 2})
		gt.NoError(t, err).Required()
		gt.Array(t, page).Length(2)
		gt.Value(t, page[0].Name).Equal("c")
		gt.Value(t, page[1].Name).Equal("d")
		gt.Value(t, info).Equal(modelPageInfo(2, 3))

		page, info, err = repo.Ingredient().List(ctx, interfaces.ListFilter{Page: 9, PageSize: 2})
		gt.NoError(t, err).Required()
		gt.Array(t, page).Length(0)
		gt.Value(t, info).Equal(modelPageInfo(9, 3))
	})
}

func TestMemoryIngredientRepository(t *testing.T) {
	runIngredientRepositoryTest(t, newMemory)
}

func TestSQLiteIngredientRepository(t *testing.T) {
	runIngredientRepositoryTest(t, newSQLite)
}
