package repositories

import (
	"context"
)

// TransactionManager runs a unit of work inside one store transaction.
// fn's error rolls the transaction back and is returned unchanged; a nil
// error commits.
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx ClosureTx) error) error
}
