package repository

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/pantry-lab/sousschef/pkg/domain/interfaces"
	"github.com/pantry-lab/sousschef/pkg/domain/model"
)

// Sentinel errors shared by all repository backends
var (
	ErrNotFound      = goerr.New("entity not found")
	ErrDuplicateName = goerr.New("name already exists")
)

const defaultPageSize = 10

// NormalizeFilter fills in the paging defaults of a raw filter
func NormalizeFilter(f interfaces.ListFilter) interfaces.ListFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = defaultPageSize
	}
	return f
}

// Paginate slices one page out of the full result set and describes it.
// The last page is clamped so an overshooting page yields an empty slice
// with honest pagination info.
func Paginate[T any](items []T, f interfaces.ListFilter) ([]T, model.PageInfo) {
	f = NormalizeFilter(f)

	lastPage := (len(items) + f.PageSize - 1) / f.PageSize
	if lastPage < 1 {
		lastPage = 1
	}

	info := model.PageInfo{Page: f.Page, LastPage: lastPage}

	start := (f.Page - 1) * f.PageSize
	if start >= len(items) {
		return []T{}, info
	}
	end := start + f.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], info
}
