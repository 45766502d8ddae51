package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/repository"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS ingredients (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL COLLATE NOCASE UNIQUE,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS items (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	name          TEXT NOT NULL,
	amount        INTEGER NOT NULL,
	product_id    INTEGER,
	ingredient_id INTEGER REFERENCES ingredients(id),
	updated_at    TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS recipes (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       TEXT NOT NULL,
	steps      TEXT NOT NULL,
	notes      TEXT NOT NULL DEFAULT '',
	rating     INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS recipe_ingredients (
	recipe_id     INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	ingredient_id INTEGER NOT NULL,
	amount        INTEGER NOT NULL,
	unit          TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS tags (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL COLLATE NOCASE UNIQUE
);
CREATE TABLE IF NOT EXISTS recipe_tags (
	recipe_id INTEGER NOT NULL REFERENCES recipes(id) ON DELETE CASCADE,
	tag_id    INTEGER NOT NULL REFERENCES tags(id)
);
`

// Store is the SQLite-backed repository used when the dev server should
// survive restarts. It relies on the pure Go driver, so no cgo is needed.
type Store struct {
	db         *sql.DB
	ingredient *ingredientRepository
	item       *itemRepository
	recipe     *recipeRepository
	tag        *tagRepository
}

var _ interfaces.Repository = &Store{}

func New(path string) (*Store, error) {
	if path == "" {
		path = "sousschef.db"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open sqlite database", goerr.V("path", path))
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, goerr.Wrap(err, "failed to create schema", goerr.V("path", path))
	}

	return &Store{
		db:         db,
		ingredient: &ingredientRepository{db: db},
		item:       &itemRepository{db: db},
		recipe:     &recipeRepository{db: db},
		tag:        &tagRepository{db: db},
	}, nil
}

func (s *Store) Ingredient() interfaces.IngredientRepository {
	return s.ingredient
}

func (s *Store) Item() interfaces.ItemRepository {
	return s.item
}

func (s *Store) Recipe() interfaces.RecipeRepository {
	return s.recipe
}

func (s *Store) Tag() interfaces.TagRepository {
	return s.tag
}

func (s *Store) Close() error {
	return s.db.Close()
}

// wrapSQL maps driver errors onto the shared repository sentinels
func wrapSQL(err error, msg string) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return goerr.Wrap(repository.ErrNotFound, msg)
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return goerr.Wrap(repository.ErrDuplicateName, msg)
	}
	return goerr.Wrap(err, msg)
}

// pageWindow converts a normalized filter into LIMIT/OFFSET values and
// computes the last page for the given total.
func pageWindow(f interfaces.ListFilter, total int) (limit, offset, lastPage int) {
	lastPage = (total + f.PageSize - 1) / f.PageSize
	if lastPage < 1 {
		lastPage = 1
	}
	return f.PageSize, (f.Page - 1) * f.PageSize, lastPage
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
