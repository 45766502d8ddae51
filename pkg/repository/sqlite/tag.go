package sqlite

import (
	"context"
	"database/sql"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
	"github.com/pantry-lab/sousschef/pkg/repository"
)

type tagRepository struct {
	db *sql.DB
}

func (r *tagRepository) List(ctx context.Context, f interfaces.ListFilter) ([]*model.Tag, model.PageInfo, error) {
	f = repository.NormalizeFilter(f)

	where := ""
	args := []any{}
	if f.Name != "" {
		where = " WHERE name LIKE ?"
		args = append(args, "%"+f.Name+"%")
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tags"+where, args...).Scan(&total); err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to count tags")
	}

	limit, offset, lastPage := pageWindow(f, total)
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name FROM tags"+where+" ORDER BY id LIMIT ? OFFSET ?",
		append(args, limit, offset)...)
	if err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to list tags")
	}
	defer func() { _ = rows.Close() }()

	out := []*model.Tag{}
	for rows.Next() {
		var tag model.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return nil, model.PageInfo{}, wrapSQL(err, "failed to scan tag")
		}
		out = append(out, &tag)
	}
	if err := rows.Err(); err != nil {
		return nil, model.PageInfo{}, wrapSQL(err, "failed to iterate tags")
	}

	return out, model.PageInfo{Page: f.Page, LastPage: lastPage}, nil
}

func (r *tagRepository) Get(ctx context.Context, id int64) (*model.Tag, error) {
	var tag model.Tag
	err := r.db.QueryRowContext(ctx, "SELECT id, name FROM tags WHERE id = ?", id).Scan(&tag.ID, &tag.Name)
	if err == sql.ErrNoRows {
		return nil, goerr.Wrap(repository.ErrNotFound, "tag not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, wrapSQL(err, "failed to get tag")
	}
	return &tag, nil
}

func (r *tagRepository) Create(ctx context.Context, tag *model.Tag) (*model.Tag, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO tags (name) VALUES (?)", tag.Name)
	if err != nil {
		return nil, wrapSQL(err, "failed to create tag")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, wrapSQL(err, "failed to read created tag id")
	}
	return &model.Tag{ID: id, Name: tag.Name}, nil
}

func (r *tagRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tags WHERE id = ?", id)
	if err != nil {
		return wrapSQL(err, "failed to delete tag")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return goerr.Wrap(repository.ErrNotFound, "tag not found", goerr.V("id", id))
	}
	return nil
}
