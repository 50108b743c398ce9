// Package metadata is the console's local key/value storage. It keeps what
// a browser would keep in cookies and local storage: the session token, the
// session user and the last navigated location.
package metadata

import (
	"context"
)

type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Store is a Repository that can also group writes into one transaction.
type Store interface {
	Repository
	InTx(ctx context.Context, fn func(ctx context.Context, r Repository) error) error
}
