package domain

import "context"

// ImageStore is the external image hosting collaborator. The core stores only
// delivery URLs; Delete removes the asset behind one of them. Deletion is
// best-effort from the caller's perspective.
type ImageStore interface {
	Delete(ctx context.Context, url string) error
}
