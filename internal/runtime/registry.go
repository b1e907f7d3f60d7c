package runtime

import "github.com/EricFan2002/GTOJsonExplorer/pkg/domain"

// Registry is the address-indexed store of every node received during a
// session. It is not safe for concurrent use; the Controller serializes
// access.
type Registry struct {
	nodes map[string]*domain.TreeNode
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{nodes: make(map[string]*domain.TreeNode)}
}

// Upsert inserts or replaces the node at n.Address.
//
// A later upsert never forgets what an earlier one established: stored
// actions are kept, and loaded children are not reverted to unknown. When
// the children are known, missing child addresses get placeholder nodes. If
// the parent is present and does not list n, n is appended to its children.
func (r *Registry) Upsert(n domain.TreeNode) {
	n = n.Clone()
	if n.Kind == nil {
		n.Kind = domain.KindOf(n.Address)
	}
	if n.DisplayName == "" {
		n.DisplayName = domain.DisplayName(n.Address)
	}

	key := n.Address.Key()
	if prev, ok := r.nodes[key]; ok {
		if prev.Actions != nil {
			n.Actions = prev.Actions
		}
		if prev.ChildrenLoaded && !n.ChildrenLoaded {
			n.Children = prev.Children
			n.ChildrenLoaded = true
		}
		if n.Detail.NodeType == "" && n.Detail.Player == nil {
			n.Detail = prev.Detail
		}
	}
	r.nodes[key] = &n

	if n.ChildrenLoaded {
		for _, c := range n.Children {
			if _, ok := r.nodes[c.Key()]; !ok {
				p := domain.Placeholder(c)
				r.nodes[c.Key()] = &p
			}
		}
	}

	if parentAddr, ok := n.Address.Parent(); ok {
		if parent, ok := r.nodes[parentAddr.Key()]; ok && !containsAddress(parent.Children, n.Address) {
			parent.Children = append(parent.Children, n.Address)
		}
	}
}

// Get returns a copy of the node at addr.
func (r *Registry) Get(addr domain.Address) (domain.TreeNode, bool) {
	n, ok := r.nodes[addr.Key()]
	if !ok {
		return domain.TreeNode{}, false
	}
	return n.Clone(), true
}

// HasLoadedChildren reports whether the children of addr are known.
func (r *Registry) HasLoadedChildren(addr domain.Address) bool {
	n, ok := r.nodes[addr.Key()]
	return ok && n.ChildrenLoaded
}

// NearestAncestor returns the deepest strict ancestor of addr present in
// the registry.
func (r *Registry) NearestAncestor(addr domain.Address) (domain.TreeNode, bool) {
	ancestors := addr.Ancestors()
	for i := len(ancestors) - 1; i >= 0; i-- {
		if n, ok := r.Get(ancestors[i]); ok {
			return n, true
		}
	}
	return domain.TreeNode{}, false
}

// Len returns the number of nodes.
func (r *Registry) Len() int { return len(r.nodes) }

// node returns the registry-owned node without copying.
func (r *Registry) node(addr domain.Address) (*domain.TreeNode, bool) {
	n, ok := r.nodes[addr.Key()]
	return n, ok
}

func containsAddress(list []domain.Address, addr domain.Address) bool {
	for _, a := range list {
		if a.Equal(addr) {
			return true
		}
	}
	return false
}
