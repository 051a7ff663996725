package directory

import "context"

// Directory describes the lookups the auth core needs. Implementations must
// be safe for concurrent use.
type Directory interface {
	FindByUsername(ctx context.Context, username string) (*Principal, error)
	FindByID(ctx context.Context, id string) (*Principal, error)
}
