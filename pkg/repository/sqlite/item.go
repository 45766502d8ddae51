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

type itemRepository struct {
	db *sql.DB
}

const itemColumns = `i.id, i.name, i.amount, i.product_id, i.ingredient_id, i.updated_at,
	g.id, g.name, g.updated_at`

const itemJoin = ` FROM items i LEFT JOIN ingredients g ON g.id = i.ingredient_id`

func scanItem(scan func(dest ...any) error) (*model.Item, error) {
	var item model.Item
	var updatedAt string
	var ingID sql.NullInt64
	var ingName sql.NullString
	var ingUpdatedAt sql.NullString

	err := scan(&item.ID, &item.Name, &item.Amount, &item.ProductID, &item.IngredientID, &updatedAt,
		&ingID, &ingName, &ingUpdatedAt)
	if err != nil {
		return nil, err
	}

	item.UpdatedAt = parseTime(updatedAt)
	if ingID.Valid {
		item.Ingredient = &model.Ingredient{
			ID:        ingID.Int64,
			Name:      ingName.String,
			UpdatedAt: parseTime(ingUpdatedAt.String),
		}
	}
	return &item, nil
}

func (r *itemRepository) List(ctx context.Context, f interfaces.ListFilter) ([]*model.Item, model.PageInfo, error) {
	f = repository.NormalizeFilter(f)

	where := ""
	args := []any{}
	switch {
	case f.Name != "":
		where = " WHERE i.name LIKE ?"
		args = append(args, "%"+f.Name+"%")
	case f.ProductID != nil:
		where = " WHERE i.product_id = ?"
		args = append(args, *f.ProductID)
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM items i"+where, args...).Scan(&total); err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to count items")
	}

	limit, offset, lastPage := pageWindow(f, total)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+itemColumns+itemJoin+where+" ORDER BY i.id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to list items")
	}
	defer func() { _ = rows.Close() }()

	out := []*model.Item{}
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, model.PageInfo{}, wrapSQL(err, "failed to scan item")
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to iterate items")
	}

	return out, model.PageInfo{Page: f.Page, LastPage: lastPage}, nil
}

func (r *itemRepository) Get(ctx context.Context, id int64) (*model.Item, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+itemColumns+itemJoin+" WHERE i.id = ?", id)
	item, err := scanItem(row.Scan)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(repository.ErrNotFound, "item not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, wrapSQL(err, "failed to get item")
	}
	return item, nil
}

func (r *itemRepository) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO items (name, amount, product_id, ingredient_id, updated_at) VALUES (?, ?, ?, ?, ?)",
		item.Name, item.Amount, item.ProductID, item.IngredientID, formatTime(now))
	if err != nil {
		return nil, wrapSQL(err, "failed to create item")
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapSQL(err, "failed to read created item id")
	}
	return r.Get(ctx, id)
}

func (r *itemRepository) Update(ctx context.Context, item *model.Item) (*model.Item, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE items SET name = ?, amount = ?, product_id = ?, ingredient_id = ?, updated_at = ? WHERE id = ?",
		item.Name, item.Amount, item.ProductID, item.IngredientID, formatTime(time.Now().UTC()), item.ID)
	if err != nil {
		return nil, wrapSQL(err, "failed to update item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, goerr.Wrap(repository.ErrNotFound, "item not found", goerr.V("id", item.ID))
	}
	return r.Get(ctx, item.ID)
}

func (r *itemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return wrapSQL(err, "failed to delete item")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(repository.ErrNotFound, "item not found", goerr.V("id", id))
	}
	return nil
}
