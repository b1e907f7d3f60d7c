package domain

// Kind is the closed set of node variants: RootKind, ActionKind,
// DealGateKind and CardKind. Code that behaves differently per variant uses
// an exhaustive type switch.
type Kind interface {
	// Tag returns the wire name of the variant.
	Tag() KindTag
	sealed()
}

// KindTag is the wire name of a node kind.
type KindTag string

const (
	TagRoot   KindTag = "root"
	TagAction KindTag = "action"
	TagCards  KindTag = "cards"
	TagCard   KindTag = "card"
)

// RootKind marks the root of the game tree.
type RootKind struct{}

// ActionKind is a node reached by taking Action at its parent.
type ActionKind struct {
	Action string
}

// DealGateKind groups the cards that may be dealt at a chance node.
// CardCount is zero when unknown.
type DealGateKind struct {
	CardCount int
}

// CardKind is a node reached when Card is dealt.
type CardKind struct {
	Card string
}

func (RootKind) Tag() KindTag     { return TagRoot }
func (ActionKind) Tag() KindTag   { return TagAction }
func (DealGateKind) Tag() KindTag { return TagCards }
func (CardKind) Tag() KindTag     { return TagCard }

func (RootKind) sealed()     {}
func (ActionKind) sealed()   {}
func (DealGateKind) sealed() {}
func (CardKind) sealed()     {}

// KindOf derives the node variant from the address shape.
func KindOf(addr Address) Kind {
	last, ok := addr.Last()
	if !ok {
		return RootKind{}
	}
	switch last.Kind {
	case SegmentAction:
		return ActionKind{Action: last.Value}
	case SegmentDealGate:
		return DealGateKind{}
	default:
		return CardKind{Card: last.Value}
	}
}

// DisplayName is the default label of the node at addr.
func DisplayName(addr Address) string {
	switch k := KindOf(addr).(type) {
	case RootKind:
		return "Root"
	case ActionKind:
		return k.Action
	case DealGateKind:
		return "Cards"
	case CardKind:
		return FormatCard(k.Card)
	}
	return addr.String()
}

// NodeDetail carries the solver fields shown alongside a node.
type NodeDetail struct {
	NodeType   string   `json:"node_type,omitempty"`
	Player     *int     `json:"player,omitempty"`
	Board      string   `json:"board,omitempty"`
	Pot        *float64 `json:"pot,omitempty"`
	DealNumber *int     `json:"deal_number,omitempty"`
	DealCards  []string `json:"dealcards,omitempty"`
}

// TreeNode is one decision point known to the client.
//
// ChildrenLoaded is false when the children have not been fetched yet; that
// state is distinct from a loaded node with no children.
type TreeNode struct {
	Address           Address
	DisplayName       string
	Kind              Kind
	Children          []Address
	ChildrenLoaded    bool
	Actions           []string
	StrategyAvailable bool
	Detail            NodeDetail
}

// Placeholder returns a node that only knows its address.
func Placeholder(addr Address) TreeNode {
	return TreeNode{
		Address:     addr,
		DisplayName: DisplayName(addr),
		Kind:        KindOf(addr),
	}
}

// HasChildren reports whether the node is known to have children or might
// have them.
func (n TreeNode) HasChildren() bool {
	return !n.ChildrenLoaded || len(n.Children) > 0
}

// Clone returns a deep copy so callers cannot mutate registry-owned slices.
func (n TreeNode) Clone() TreeNode {
	out := n
	if n.Children != nil {
		out.Children = make([]Address, len(n.Children))
		copy(out.Children, n.Children)
	}
	if n.Actions != nil {
		out.Actions = append([]string(nil), n.Actions...)
	}
	if n.Detail.DealCards != nil {
		out.Detail.DealCards = append([]string(nil), n.Detail.DealCards...)
	}
	return out
}

// Step is one entry of the action sequence log: the action label recorded
// when the user navigated to Address.
type Step struct {
	Address Address
	Action  string
}
