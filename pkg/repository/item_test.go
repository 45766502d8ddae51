package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/repository"
)

func int64Ptr(v int64) *int64 { return &v }

func runItemRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Create stores all fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Item().Create(ctx, &model.Item{
			Name:      "Rolled oats 500g",
			Amount:    3,
			ProductID: int64Ptr(4018077687471),
		})
		gt.NoError(t, err).Required()
		gt.Number(t, created.ID).Greater(0)
		gt.Value(t, created.Name).Equal("Rolled oats 500g")
		gt.Value(t, created.Amount).Equal(int64(3))
		gt.Value(t, created.ProductID).NotNil()
		gt.Value(t, *created.ProductID).Equal(int64(4018077687471))
		gt.Value(t, created.IngredientID).Nil()
		gt.Bool(t, created.UpdatedAt.IsZero()).False()
	})

	t.Run("Get embeds the linked ingredient", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ing, err := repo.Ingredient().Create(ctx, &model.Ingredient{Name: "Oats"})
		gt.NoError(t, err).Required()

		created, err := repo.Item().Create(ctx, &model.Item{
			Name:         "Rolled oats 500g",
			Amount:       1,
			IngredientID: int64Ptr(ing.ID),
		})
		gt.NoError(t, err).Required()

		got, err := repo.Item().Get(ctx, created.ID)
		gt.NoError(t, err).Required()
		gt.Value(t, got.Ingredient).NotNil()
		gt.Value(t, got.Ingredient.ID).Equal(ing.ID)
		gt.Value(t, got.Ingredient.Name).Equal("Oats")
	})

	t.Run("List filters by product id", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Item().Create(ctx, &model.Item{Name: "Milk 1l", Amount: 2, ProductID: int64Ptr(111)})
		gt.NoError(t, err).Required()
		_, err = repo.Item().Create(ctx, &model.Item{Name: "Milk 2l", Amount: 1, ProductID: int64Ptr(222)})
		gt.NoError(t, err).Required()
		_, err = repo.Item().Create(ctx, &model.Item{Name: "Jam", Amount: 1})
		gt.NoError(t, err).Required()

		page, info, err := repo.Item().List(ctx, interfaces.ListFilter{ProductID: int64Ptr(222)})
		gt.NoError(t, err).Required()
		gt.Array(t, page).Length(1)
		gt.Value(t, page[0].Name).Equal("Milk 2l")
		gt.Value(t, info).Equal(modelPageInfo(1, 1))
	})

	t.Run("List filters by name substring", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Item().Create(ctx, &model.Item{Name: "Peanut butter", Amount: 1})
		gt.NoError(t, err).Required()
		_, err = repo.Item().Create(ctx, &model.Item{Name: "Butter", Amount: 2})
		gt.NoError(t, err).Required()
		_, err = repo.Item().Create(ctx, &model.Item{Name: "Jam", Amount: 1})
		gt.NoError(t, err).Required()

		page, _, err := repo.Item().List(ctx, interfaces.ListFilter{Name: "butter"})
		gt.NoError(t, err).Required()
		gt.Array(t, page).Length(2)
		gt.Value(t, page[0].Name).Equal("Peanut butter")
		gt.Value(t, page[1].Name).Equal("Butter")
	})

	t.Run("List embeds ingredients into the page", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		ing, err := repo.Ingredient().Create(ctx, &model.Ingredient{Name: "Flour"})
		gt.NoError(t, err).Required()
		_, err = repo.Item().Create(ctx, &model.Item{Name: "Wheat flour 1kg", Amount: 1, IngredientID: int64Ptr(ing.ID)})
		gt.NoError(t, err).Required()

		page, _, err := repo.Item().List(ctx, interfaces.ListFilter{})
		gt.NoError(t, err).Required()
		gt.Array(t, page).Length(1)
		gt.Value(t, page[0].Ingredient).NotNil()
		gt.Value(t, page[0].Ingredient.Name).Equal("Flour")
	})

	t.Run("Update replaces the stored fields", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Item().Create(ctx, &model.Item{Name: "Rice", Amount: 1, ProductID: int64Ptr(333)})
		gt.NoError(t, err).Required()

		updated, err := repo.Item().Update(ctx, &model.Item{ID: created.ID, Name: "Basmati rice", Amount: 4})
		gt.NoError(t, err).Required()
		gt.Value(t, updated.Name).Equal("Basmati rice")
		gt.Value(t, updated.Amount).Equal(int64(4))
		gt.Value(t, updated.ProductID).Nil()

		_, err = repo.Item().Update(ctx, &model.Item{ID: 404, Name: "ghost"})
		gt.Error(t, err).Is(repository.ErrNotFound)
	})

	t.Run("Delete removes the item", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created, err := repo.Item().Create(ctx, &model.Item{Name: "Honey", Amount: 1})
		gt.NoError(t, err).Required()

		gt.NoError(t, repo.Item().Delete(ctx, created.ID))
		_, err = repo.Item().Get(ctx, created.ID)
		gt.Error(t, err).Is(repository.ErrNotFound)

		gt.Error(t, repo.Item().Delete(ctx, 404)).Is(repository.ErrNotFound)
	})
}

func TestMemoryItemRepository(t *testing.T) {
	runItemRepositoryTest(t, newMemory)
}

func TestSQLiteItemRepository(t *testing.T) {
	runItemRepositoryTest(t, newSQLite)
}
