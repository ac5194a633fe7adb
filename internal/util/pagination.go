package util

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Calculate turns a 1-based page number and requested page size into the
// offset/limit pair the search index expects. Nonsense input degrades to the
// first page at the default size rather than erroring, so the endpoints can
// feed query params in unchecked.
func Calculate(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	return (page - 1) * size, size
}
