package services

// Paginate returns the 1-based page of items with the given size, clamped to the slice bounds.
// A page past the end yields an empty slice.
func Paginate[T any](items []T, page, size int) []T {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		return []T{}
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := min(start+size, len(items))
	return items[start:end]
}

// pageOf classifies a paginated listing: an empty listing is notFound, a page beyond a
// non-empty listing is an invalid page.
func pageOf[T any](items []T, page, size int, notFound error) ([]T, error) {
	if len(items) == 0 {
		return nil, notFound
	}
	current := Paginate(items, page, size)
	if len(current) == 0 {
		return nil, &InvalidPageError{Page: page, Total: len(items)}
	}
	return current, nil
}

// filteredPageOf classifies a paginated search or category listing, where a page beyond
// the matches is notFound like an empty listing.
func filteredPageOf[T any](items []T, page, size int, notFound error) ([]T, error) {
	current := Paginate(items, page, size)
	if len(current) == 0 {
		return nil, notFound
	}
	return current, nil
}
