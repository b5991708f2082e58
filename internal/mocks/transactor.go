package mocks

import (
	"context"

	"github.com/phrazzld/task-manager-api/internal/store"
)

// Transactor implements store.Transactor by running fn directly with a nil
// transaction. The in-memory store mocks ignore the transaction in WithTx.
type Transactor struct {
	// Err, when set, is returned without running fn.
	Err error
}

var _ store.Transactor = Transactor{}

// WithinTx implements store.Transactor.
func (t Transactor) WithinTx(ctx context.Context, fn store.TxFn) error {
	if t.Err != nil {
		return t.Err
	}
	return fn(ctx, nil)
}
