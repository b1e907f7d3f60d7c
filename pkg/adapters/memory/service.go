package memory

import (
	"context"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/gametree"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
)

// TreeSource yields the parsed game tree of a dataset session.
type TreeSource interface {
	Tree(ctx context.Context, sessionID string) (*gametree.Tree, error)
}

// NodeService implements ports.NodeService in-process over parsed trees,
// without a network hop.
type NodeService struct {
	src        TreeSource
	depth      int
	cardSample int
}

// ServiceOption configures a NodeService.
type ServiceOption func(*NodeService)

// WithSnapshotLimits bounds the bootstrap snapshot.
func WithSnapshotLimits(depth, cardSample int) ServiceOption {
	return func(s *NodeService) {
		s.depth = depth
		s.cardSample = cardSample
	}
}

// NewNodeService creates a node service over src.
func NewNodeService(src TreeSource, opts ...ServiceOption) *NodeService {
	s := &NodeService{src: src}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StaticTrees serves fixed trees by session ID.
type StaticTrees map[string]*gametree.Tree

// Tree returns the tree registered under sessionID.
func (s StaticTrees) Tree(ctx context.Context, sessionID string) (*gametree.Tree, error) {
	t, ok := s[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return t, nil
}

// Node resolves addr by exact lookup.
func (s *NodeService) Node(ctx context.Context, sessionID string, addr domain.Address) (domain.TreeNode, error) {
	t, err := s.src.Tree(ctx, sessionID)
	if err != nil {
		return domain.TreeNode{}, err
	}
	info, err := t.Info(addr)
	if err != nil {
		return domain.TreeNode{}, err
	}
	return info.TreeNode()
}

// DirectNode resolves addr by replaying actions from the root.
func (s *NodeService) DirectNode(ctx context.Context, sessionID string, addr domain.Address, actions []string) (domain.TreeNode, error) {
	t, err := s.src.Tree(ctx, sessionID)
	if err != nil {
		return domain.TreeNode{}, err
	}
	info, err := t.Replay(addr, actions)
	if err != nil {
		return domain.TreeNode{}, err
	}
	return info.TreeNode()
}

// Tree returns the bootstrap snapshot.
func (s *NodeService) Tree(ctx context.Context, sessionID string) (ports.TreeSnapshot, error) {
	t, err := s.src.Tree(ctx, sessionID)
	if err != nil {
		return ports.TreeSnapshot{}, err
	}
	nodes, err := t.Snapshot(s.depth, s.cardSample).Nodes()
	if err != nil {
		return ports.TreeSnapshot{}, err
	}
	return ports.TreeSnapshot{Nodes: nodes}, nil
}
