package ledger

import (
	"context"

	"github.com/movedao/dao-node/pkg/model"
)

// API - read-side ledger operations consumed by assembly and transaction
// construction. Implemented by Client; tests substitute fakes.
type API interface {
	// GetObject fetches a single object with content and owner metadata.
	GetObject(ctx context.Context, id string) (model.Object, error)
	// GetObjects fetches a batch of objects. The result has the same
	// cardinality and order as ids, one slot per id.
	GetObjects(ctx context.Context, ids []string) ([]model.ObjectResult, error)
	// ListTableKeys enumerates the full key set of a dynamic table,
	// hiding pagination. Key order is unspecified.
	ListTableKeys(ctx context.Context, tableID string) ([]string, error)
	// GetOwnedObjects lists the objects owned by an address, with content.
	GetOwnedObjects(ctx context.Context, owner string) ([]model.Object, error)
}
