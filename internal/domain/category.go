package domain

import "context"

// Category is reference data for event classification. Read-only from the
// event core's perspective.
// swagger:model Category
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Order int    `json:"order"`
}

// CategoryRepository defines read access to the category reference table.
type CategoryRepository interface {
	ListAll(ctx context.Context) ([]*Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
}

// CategoryService exposes the ordered category list to the delivery layer.
type CategoryService interface {
	ListCategories(ctx context.Context) ([]*Category, error)
}
