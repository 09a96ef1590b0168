package resolutions

import "context"

// Repo defines persistence operations for archived documents.
type Repo interface {
	Create(ctx context.Context, r Resolution) error
	GetByID(ctx context.Context, id string) (Resolution, error)
	List(ctx context.Context, limit, offset int) ([]Resolution, error)
}
