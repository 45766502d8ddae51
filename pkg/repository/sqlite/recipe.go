package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/repository"
)

type recipeRepository struct {
	db *sql.DB
}

func (r *recipeRepository) List(ctx context.Context, f interfaces.ListFilter) ([]*model.Recipe, model.PageInfo, error) {
	f = repository.NormalizeFilter(f)

	// Recipes carry no product ID; a product ID filter matches nothing.
	if f.ProductID != nil {
		return []*model.Recipe{}, model.PageInfo{Page: f.Page, LastPage: 1}, nil
	}

	where := ""
	args := []any{}
	if f.Name != "" {
		where = " WHERE name LIKE ?"
		args = append(args, "%"+f.Name+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipes"+where, args...).Scan(&total); err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to count recipes")
	}

	limit, offset, lastPage := pageWindow(f, total)
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, steps, notes, rating, created_at, updated_at FROM recipes"+where+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to list recipes")
	}
	defer func() { _ = rows.Close() }()

	out := []*model.Recipe{}
	for rows.Next() {
		rec, err := scanRecipe(rows.Scan)
		if err != nil {
			return nil, model.PageInfo{}, wrapSQL(err, "failed to scan recipe")
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to iterate recipes")
	}

	return out, model.PageInfo{Page: f.Page, LastPage: lastPage}, nil
}

func scanRecipe(scan func(dest ...any) error) (*model.Recipe, error) {
	var rec model.Recipe
	var createdAt, updatedAt string
	if err := scan(&rec.ID, &rec.Name, &rec.Steps, &rec.Notes, &rec.Rating, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	rec.CreatedAt = parseTime(createdAt)
	rec.UpdatedAt = parseTime(updatedAt)
	return &rec, nil
}

func (r *recipeRepository) Get(ctx context.Context, id int64) (*model.Recipe, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, name, steps, notes, rating, created_at, updated_at FROM recipes WHERE id = ?", id)
	rec, err := scanRecipe(row.Scan)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(repository.ErrNotFound, "recipe not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, wrapSQL(err, "failed to get recipe")
	}
	return rec, nil
}

func (r *recipeRepository) Create(ctx context.Context, recipe *model.Recipe, ingredients []model.RecipeIngredient) (*model.Recipe, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, wrapSQL(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	now := formatTime(time.Now().UTC())
	res, err := tx.ExecContext(ctx,
		"INSERT INTO recipes (name, steps, notes, rating, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		recipe.Name, recipe.Steps, recipe.Notes, recipe.Rating, now, now)
	if err != nil {
		return nil, wrapSQL(err, "failed to create recipe")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapSQL(err, "failed to read created recipe id")
	}

	for _, line := range ingredients {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO recipe_ingredients (recipe_id, ingredient_id, amount, unit) VALUES (?, ?, ?, ?)",
			id, line.IngredientID, line.Amount, line.Unit); err != nil {
			return nil, wrapSQL(err, "failed to create recipe ingredient line")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, wrapSQL(err, "failed to commit recipe")
	}
	return r.Get(ctx, id)
}

func (r *recipeRepository) Update(ctx context.Context, recipe *model.Recipe) (*model.Recipe, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE recipes SET name = ?, steps = ?, notes = ?, rating = ?, updated_at = ? WHERE id = ?",
		recipe.Name, recipe.Steps, recipe.Notes, recipe.Rating, formatTime(time.Now().UTC()), recipe.ID)
	if err != nil {
		return nil, wrapSQL(err, "failed to update recipe")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, goerr.Wrap(repository.ErrNotFound, "recipe not found", goerr.V("id", recipe.ID))
	}
	return r.Get(ctx, recipe.ID)
}

func (r *recipeRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = ?", id)
	if err != nil {
		return wrapSQL(err, "failed to delete recipe")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(repository.ErrNotFound, "recipe not found", goerr.V("id", id))
	}
	return nil
}

func (r *recipeRepository) Ingredients(ctx context.Context, recipeID int64) ([]model.RecipeIngredient, error) {
	if _, err := r.Get(ctx, recipeID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT ingredient_id, amount, unit FROM recipe_ingredients WHERE recipe_id = ?", recipeID)
	if err != nil {
		return nil, wrapSQL(err, "failed to list recipe ingredients")
	}
	defer func() { _ = rows.Close() }()

	out := []model.RecipeIngredient{}
	for rows.Next() {
		var line model.RecipeIngredient
		if err := rows.Scan(&line.IngredientID, &line.Amount, &line.Unit); err != nil {
			return nil, wrapSQL(err, "failed to scan recipe ingredient line")
		}
		out = append(out, line)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQL(err, "failed to iterate recipe ingredients")
	}
	return out, nil
}

func (r *recipeRepository) SetTags(ctx context.Context, recipeID int64, tagIDs []int64) error {
	if _, err := r.Get(ctx, recipeID); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapSQL(err, "failed to begin transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM recipe_tags WHERE recipe_id = ?", recipeID); err != nil {
		return wrapSQL(err, "failed to clear recipe tags")
	}
	for _, tagID := range tagIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO recipe_tags (recipe_id, tag_id) VALUES (?, ?)", recipeID, tagID); err != nil {
			return wrapSQL(err, "failed to associate tag")
		}
	}

	return wrapSQL(tx.Commit(), "failed to commit recipe tags")
}

func (r *recipeRepository) Tags(ctx context.Context, recipeID int64) ([]*model.Tag, error) {
	if _, err := r.Get(ctx, recipeID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx,
		"SELECT t.id, t.name FROM recipe_tags rt JOIN tags t ON t.id = rt.tag_id WHERE rt.recipe_id = ? ORDER BY t.id",
		recipeID)
	if err != nil {
		return nil, wrapSQL(err, "failed to list recipe tags")
	}
	defer func() { _ = rows.Close() }()

	out := []*model.Tag{}
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, wrapSQL(err, "failed to scan tag")
		}
		out = append(out, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapSQL(err, "failed to iterate tags")
	}
	return out, nil
}
