// Package domain provides shared business logic types.
package domain

// ListFilter contains common filtering options for list operations.
type ListFilter struct {
	// Search performs case-insensitive search on name fields
	Search string

	// IncludeDeleted includes soft-deleted records
	IncludeDeleted bool

	// OrderBy specifies sorting (e.g., "name", "created_at DESC")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// defaultPageSize is the fallback limit for list reads without an explicit
// page size. Overridden at startup from DEFAULT_PAGE_SIZE.
var defaultPageSize = 50

// SetDefaultPageSize overrides the fallback page size for list queries.
// Non-positive values are ignored. Call once during wiring, before serving.
func SetDefaultPageSize(n int) {
	if n > 0 {
		defaultPageSize = n
	}
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   defaultPageSize,
		OrderBy: "name",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}
