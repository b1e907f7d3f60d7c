package gametree

import (
	"fmt"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// Snapshot defaults.
const (
	DefaultSnapshotDepth = 15
	DefaultCardSample    = 10
)

// SnapshotNode is one node of the bootstrap tree.
//
// ChildrenKnown is false when Children was cut by the depth limit or by
// card sampling (More counts the omitted cards); the explorer then fetches
// the node when it is expanded.
type SnapshotNode struct {
	Path          string          `json:"path"`
	Name          string          `json:"name"`
	Type          domain.KindTag  `json:"type"`
	NodeType      string          `json:"node_type,omitempty"`
	Player        *int            `json:"player,omitempty"`
	ChildrenKnown bool            `json:"children_known"`
	More          int             `json:"more,omitempty"`
	Children      []*SnapshotNode `json:"children,omitempty"`
}

// Snapshot builds the bootstrap tree down to depth levels below the root,
// listing at most cardSample cards per gate. Non-positive arguments select
// the defaults.
func (t *Tree) Snapshot(depth, cardSample int) *SnapshotNode {
	if depth <= 0 {
		depth = DefaultSnapshotDepth
	}
	if cardSample <= 0 {
		cardSample = DefaultCardSample
	}
	return build(resolved{addr: domain.Root(), raw: t.root}, 0, depth, cardSample)
}

func build(r resolved, depth, maxDepth, cardSample int) *SnapshotNode {
	n := &SnapshotNode{
		Path: r.addr.String(),
		Name: domain.DisplayName(r.addr),
		Type: domain.KindOf(r.addr).Tag(),
	}
	if !r.gate {
		if f, err := decodeFields(r.raw); err == nil {
			n.NodeType = f.NodeType
			n.Player = f.Player
		}
	}
	if depth >= maxDepth {
		return n
	}

	children := r.children()
	if r.gate && len(children) > cardSample {
		n.More = len(children) - cardSample
		children = children[:cardSample]
	}
	n.ChildrenKnown = n.More == 0
	for _, addr := range children {
		child, ok := step(r, lastSegment(addr), matchExact)
		if !ok {
			continue
		}
		child.addr = addr
		n.Children = append(n.Children, build(child, depth+1, maxDepth, cardSample))
	}
	return n
}

func lastSegment(addr domain.Address) domain.Segment {
	seg, _ := addr.Last()
	return seg
}

// Nodes flattens the snapshot into client nodes, parents first.
func (s *SnapshotNode) Nodes() ([]domain.TreeNode, error) {
	var out []domain.TreeNode
	var walk func(*SnapshotNode) error
	walk = func(sn *SnapshotNode) error {
		addr, err := domain.ParseAddress(sn.Path)
		if err != nil {
			return fmt.Errorf("%w: snapshot path %q: %v", domain.ErrMalformedPayload, sn.Path, err)
		}
		n := domain.Placeholder(addr)
		if sn.Name != "" {
			n.DisplayName = sn.Name
		}
		n.Detail.NodeType = sn.NodeType
		n.Detail.Player = sn.Player
		n.ChildrenLoaded = sn.ChildrenKnown
		if n.ChildrenLoaded {
			n.Children = make([]domain.Address, 0, len(sn.Children))
		}
		for _, c := range sn.Children {
			ca, err := domain.ParseAddress(c.Path)
			if err != nil {
				return fmt.Errorf("%w: snapshot path %q: %v", domain.ErrMalformedPayload, c.Path, err)
			}
			if n.ChildrenLoaded {
				n.Children = append(n.Children, ca)
			}
		}
		out = append(out, n)
		for _, c := range sn.Children {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	if s == nil {
		return nil, fmt.Errorf("%w: empty snapshot", domain.ErrMalformedPayload)
	}
	if err := walk(s); err != nil {
		return nil, err
	}
	return out, nil
}
