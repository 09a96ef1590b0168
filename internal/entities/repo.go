package entities

import "context"

// Repo defines lookups against the entity directory.
type Repo interface {
	Get(ctx context.Context, id string) (Entity, error)
	List(ctx context.Context) ([]Entity, error)
}
