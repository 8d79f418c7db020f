package sheets

import (
	"context"

	"kopilka/internal/core"
)

// TransactionAppender mirrors ledger records to an external sheet for
// off-app review. Purely additive: failures here never touch the
// ledger itself.
type TransactionAppender interface {
	AppendTransaction(ctx context.Context, tx core.Transaction) (rowRef string, err error)
}
