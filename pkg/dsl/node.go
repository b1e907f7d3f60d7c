package dsl

// NodeBuilder provides a fluent API for configuring a solver node.
type NodeBuilder struct {
	raw      map[string]any
	children map[string]*NodeBuilder
	cards    map[string]*NodeBuilder
}

func newNode() *NodeBuilder {
	return &NodeBuilder{
		raw:      map[string]any{"node_type": "action_node"},
		children: make(map[string]*NodeBuilder),
		cards:    make(map[string]*NodeBuilder),
	}
}

// Player sets the acting player.
func (n *NodeBuilder) Player(p int) *NodeBuilder {
	n.raw["player"] = p
	return n
}

// Action declares an action and returns its child. Declaring the same label
// twice returns the existing child.
func (n *NodeBuilder) Action(label string) *NodeBuilder {
	if child, ok := n.children[label]; ok {
		return child
	}
	children, _ := n.raw["childrens"].(map[string]any)
	if children == nil {
		children = make(map[string]any)
		n.raw["childrens"] = children
	}

	n.raw["actions"] = append(n.actions(), label)
	child := newNode()
	children[label] = child.raw
	n.children[label] = child
	return child
}

// Actions declares several terminal actions at once.
func (n *NodeBuilder) Actions(labels ...string) *NodeBuilder {
	for _, l := range labels {
		n.Action(l)
	}
	return n
}

// Deal turns the node into a chance node dealing cards. Each card gets an
// empty action node; use Card to configure it.
func (n *NodeBuilder) Deal(cards ...string) *NodeBuilder {
	n.raw["node_type"] = "chance_node"
	dealt, _ := n.raw["dealcards"].(map[string]any)
	if dealt == nil {
		dealt = make(map[string]any)
		n.raw["dealcards"] = dealt
	}
	for _, c := range cards {
		if _, ok := n.cards[c]; ok {
			continue
		}
		child := newNode()
		dealt[c] = child.raw
		n.cards[c] = child
	}
	n.raw["deal_number"] = len(n.cards)
	return n
}

// Card returns the node reached when card is dealt, dealing it first if
// needed.
func (n *NodeBuilder) Card(card string) *NodeBuilder {
	if _, ok := n.cards[card]; !ok {
		n.Deal(card)
	}
	return n.cards[card]
}

// Strategy records the probabilities a hand plays the declared actions
// with, in declaration order.
func (n *NodeBuilder) Strategy(hand string, probs ...float64) *NodeBuilder {
	s, _ := n.raw["strategy"].(map[string]any)
	if s == nil {
		s = map[string]any{"strategy": make(map[string]any)}
		n.raw["strategy"] = s
	}
	s["actions"] = n.actions()
	s["strategy"].(map[string]any)[hand] = probs
	return n
}

// Field sets an arbitrary solver field.
func (n *NodeBuilder) Field(key string, value any) *NodeBuilder {
	n.raw[key] = value
	return n
}

// Terminal removes every declared action.
func (n *NodeBuilder) Terminal() *NodeBuilder {
	n.raw["actions"] = []string{}
	n.raw["childrens"] = map[string]any{}
	n.children = make(map[string]*NodeBuilder)
	return n
}

func (n *NodeBuilder) actions() []string {
	actions, _ := n.raw["actions"].([]string)
	return actions
}
