package runtime

import (
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// RenderInput is everything Render reads.
type RenderInput struct {
	Registry     *Registry
	Expansion    *Expansion
	Selection    domain.Address
	HasSelection bool
	Failures     map[string]error
	State        domain.NavState
}

// Render maps the registry and expansion state to the visible tree. It
// never fetches: an expanded node whose children are unknown renders a
// loading row and is listed in Pending, unless it has a recorded failure.
func Render(in RenderInput) domain.RenderTree {
	tree := domain.RenderTree{State: in.State}
	if in.HasSelection {
		tree.Selection = in.Selection.String()
		tree.Selected = true
	}
	tree.Root = renderNode(in, domain.Root(), &tree.Pending)
	return tree
}

func renderNode(in RenderInput, addr domain.Address, pending *[]domain.Address) *domain.RenderNode {
	node, ok := in.Registry.node(addr)
	if !ok {
		p := domain.Placeholder(addr)
		node = &p
	}

	key := addr.Key()
	rn := &domain.RenderNode{
		Address:   addr,
		Path:      addr.String(),
		Label:     node.DisplayName,
		Kind:      node.Kind.Tag(),
		HasToggle: node.HasChildren(),
		Selected:  in.HasSelection && in.Selection.Equal(addr),
	}
	if err, failed := in.Failures[key]; failed {
		rn.Error = err.Error()
	}

	if !in.Expansion.IsExpanded(addr) {
		return rn
	}
	if !node.ChildrenLoaded {
		if rn.Error != "" {
			return rn
		}
		rn.Loading = true
		rn.Children = []*domain.RenderNode{{
			Address:     addr,
			Path:        rn.Path,
			Label:       "Loading…",
			Kind:        domain.KindLoading,
			Placeholder: true,
		}}
		*pending = append(*pending, addr)
		return rn
	}

	rn.Expanded = true
	for _, c := range node.Children {
		rn.Children = append(rn.Children, renderNode(in, c, pending))
	}
	return rn
}

// Line is one row of a flattened render tree.
type Line struct {
	Node   *domain.RenderNode
	Prefix string
	Depth  int
}

// Flatten walks the visible tree depth-first and attaches box-drawing
// prefixes to each row.
func Flatten(tree domain.RenderTree) []Line {
	if tree.Root == nil {
		return nil
	}
	return flattenNode(tree.Root, "", 0, true, nil)
}

func flattenNode(n *domain.RenderNode, parentPrefix string, depth int, last bool, out []Line) []Line {
	prefix := ""
	childPrefix := ""
	if depth > 0 {
		if last {
			prefix = parentPrefix + "└── "
			childPrefix = parentPrefix + "    "
		} else {
			prefix = parentPrefix + "├── "
			childPrefix = parentPrefix + "│   "
		}
	}

	out = append(out, Line{Node: n, Prefix: prefix, Depth: depth})
	for i, c := range n.Children {
		out = flattenNode(c, childPrefix, depth+1, i == len(n.Children)-1, out)
	}
	return out
}

// collapsedVisible lists visible nodes that are collapsed but whose children
// are already loaded, in display order.
func collapsedVisible(tree domain.RenderTree, reg *Registry) []domain.Address {
	var out []domain.Address
	for _, l := range Flatten(tree) {
		n := l.Node
		if n.Placeholder || !n.HasToggle || n.Expanded || n.Loading {
			continue
		}
		if reg.HasLoadedChildren(n.Address) {
			out = append(out, n.Address)
		}
	}
	return out
}
