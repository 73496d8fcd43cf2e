// Package pagination slices an ordered result set into fixed-size pages
// using a count + limit/offset query pair, so the full set is never
// materialized in memory.
package pagination

import "context"

type CountFunc func(ctx context.Context) (int64, error)

type FetchFunc[T any] func(ctx context.Context, limit int, offset int) ([]T, error)

type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	HasNext     bool  `json:"has_next"`
	HasPrevious bool  `json:"has_previous"`
}

// Paginate clamps requested to [1, totalPages] instead of failing, so an
// out-of-range page number in a URL degrades to the nearest valid page.
// An empty set yields page 1 of 1 with no items.
func Paginate[T any](ctx context.Context, pageSize int, requested int, count CountFunc, fetch FetchFunc[T]) (*Page[T], error) {
	total, err := count(ctx)
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	number := requested
	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	items := []T{}
	if total > 0 {
		offset := (number - 1) * pageSize
		items, err = fetch(ctx, pageSize, offset)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
	}

	return &Page[T]{
		Items: items,
		Number: number,
		TotalPages: totalPages,
		TotalItems: total,
		HasNext: number < totalPages,
		HasPrevious: number > 1,
	}, nil
}
