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

type ingredientRepository struct {
	db *sql.DB
}

func (r *ingredientRepository) List(ctx context.Context, f interfaces.ListFilter) ([]*model.Ingredient, model.PageInfo, error) {
	f = repository.NormalizeFilter(f)

	where := ""
	args := []any{}
	if f.Name != "" {
		where = " WHERE name LIKE ?"
		args = append(args, "%"+f.Name+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM ingredients"+where, args...).Scan(&total); err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to count ingredients")
	}

	limit, offset, lastPage := pageWindow(f, total)
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, updated_at FROM ingredients"+where+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to list ingredients")
	}
	defer func() { _ = rows.Close() }()

	out := []*model.Ingredient{}
	for rows.Next() {
		var ing model.Ingredient
		var updatedAt string
		if err := rows.Scan(&ing.ID, &ing.Name, &updatedAt); err != nil {
			return nil, model.PageInfo{}, wrapSQL(err, "failed to scan ingredient")
		}
		ing.UpdatedAt = parseTime(updatedAt)
		out = append(out, &ing)
	}
	if err := rows.Err(); err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to iterate ingredients")
	}

	return out, model.PageInfo{Page: f.Page, LastPage: lastPage}, nil
}

func (r *ingredientRepository) Get(ctx context.Context, id int64) (*model.Ingredient, error) {
	var ing model.Ingredient
	var updatedAt string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, updated_at FROM ingredients WHERE id = ?", id).
		Scan(&ing.ID, &ing.Name, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(repository.ErrNotFound, "ingredient not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, wrapSQL(err, "failed to get ingredient")
	}
	ing.UpdatedAt = parseTime(updatedAt)
	return &ing, nil
}

func (r *ingredientRepository) Create(ctx context.Context, ingredient *model.Ingredient) (*model.Ingredient, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO ingredients (name, updated_at) VALUES (?, ?)",
		ingredient.Name, formatTime(now))
	if err != nil {
		return nil, wrapSQL(err, "failed to create ingredient")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapSQL(err, "failed to read created ingredient id")
	}
	return &model.Ingredient{ID: id, Name: ingredient.Name, UpdatedAt: now}, nil
}

func (r *ingredientRepository) Update(ctx context.Context, ingredient *model.Ingredient) (*model.Ingredient, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"UPDATE ingredients SET name = ?, updated_at = ? WHERE id = ?",
		ingredient.Name, formatTime(now), ingredient.ID)
	if err != nil {
		return nil, wrapSQL(err, "failed to update ingredient")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, goerr.Wrap(repository.ErrNotFound, "ingredient not found", goerr.V("id", ingredient.ID))
	}
	return &model.Ingredient{ID: ingredient.ID, Name: ingredient.Name, UpdatedAt: now}, nil
}

func (r *ingredientRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM ingredients WHERE id = ?", id)
	if err != nil {
		return wrapSQL(err, "failed to delete ingredient")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(repository.ErrNotFound, "ingredient not found", goerr.V("id", id))
	}
	return nil
}
