package ports

import (
	"context"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// NodeService resolves nodes of a loaded dataset session.
type NodeService interface {
	// Node resolves addr by structural lookup.
	// Returns domain.ErrNotFound when the address does not resolve and
	// domain.ErrMalformedPayload when the answer cannot be decoded.
	Node(ctx context.Context, sessionID string, addr domain.Address) (domain.TreeNode, error)

	// DirectNode resolves addr by replaying actions from the root.
	// Returns domain.ErrNotFound when the replay does not reach a node.
	DirectNode(ctx context.Context, sessionID string, addr domain.Address, actions []string) (domain.TreeNode, error)

	// Tree returns the bootstrap snapshot used to seed a new session.
	Tree(ctx context.Context, sessionID string) (TreeSnapshot, error)
}

// TreeSnapshot is the bootstrap view of a dataset. Nodes are ordered so that
// a parent always precedes its children; the first node is the root.
type TreeSnapshot struct {
	Nodes []domain.TreeNode
}
