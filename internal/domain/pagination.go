package domain

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// SortSpec is one {field, direction} pair of a sort specification.
type SortSpec struct {
	Field string
	Desc  bool
}

// sortableEventFields is the whitelist of event columns a caller may sort by.
// Anything else is dropped before the sort reaches the storage layer.
var sortableEventFields = map[string]struct{}{
	"schedule":  {},
	"title":     {},
	"status":    {},
	"venue":     {},
	"capacity":  {},
	"createdAt": {},
}

// SortableEventField reports whether field may be used in an ORDER BY clause.
func SortableEventField(field string) bool {
	_, ok := sortableEventFields[field]
	return ok
}
