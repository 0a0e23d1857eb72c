package repository

import (
	"context"
	"errors"
	"fmt"
)

// ErrStorageUnavailable wraps every connection or query failure raised by a
// storage backend.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Rows is a forward-only cursor over a query result. Close releases the
// underlying connection and must be called on every path.
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// Querier executes read-only statements against the external user store.
// Cancelling ctx aborts a pending connection acquisition or running query.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
}

// StorageError marks err as a storage failure of op.
func StorageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorageUnavailable, err)
}
