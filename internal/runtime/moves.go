package runtime

import (
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// MoveKind classifies a navigation button.
type MoveKind string

const (
	MoveUp     MoveKind = "up"
	MoveAction MoveKind = "action"
	MoveCards  MoveKind = "cards"
	MoveCard   MoveKind = "card"
)

// Move is a navigation button offered at a node. Terminal actions have no
// child node and are not Navigable.
type Move struct {
	Kind      MoveKind
	Label     string
	Target    domain.Address
	Navigable bool
}

// Moves lists the navigation buttons of addr: up, then the cached actions
// in their first-seen order, then the deal gate or the sorted cards.
func (c *Controller) Moves(addr domain.Address) []Move {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sess == nil {
		return nil
	}
	return moves(c.sess, addr)
}

func moves(sess *Session, addr domain.Address) []Move {
	var out []Move
	if parent, ok := addr.Parent(); ok {
		out = append(out, Move{Kind: MoveUp, Label: "Up", Target: parent, Navigable: true})
	}

	node, ok := sess.Registry.node(addr)
	if !ok {
		return out
	}

	actions, cached := sess.Actions.Get(addr)
	if !cached {
		actions = node.Actions
	}
	for _, a := range actions {
		target := addr.Action(a)
		out = append(out, Move{
			Kind:      MoveAction,
			Label:     a,
			Target:    target,
			Navigable: !node.ChildrenLoaded || containsAddress(node.Children, target),
		})
	}

	switch node.Kind.(type) {
	case domain.DealGateKind:
		cards := make([]string, 0, len(node.Children))
		for _, child := range node.Children {
			if k, ok := domain.KindOf(child).(domain.CardKind); ok {
				cards = append(cards, k.Card)
			}
		}
		domain.SortCards(cards)
		for _, card := range cards {
			out = append(out, Move{Kind: MoveCard, Label: domain.FormatCard(card), Target: addr.Card(card), Navigable: true})
		}
	case domain.RootKind, domain.ActionKind, domain.CardKind:
		gate := addr.DealGate()
		if containsAddress(node.Children, gate) {
			out = append(out, Move{Kind: MoveCards, Label: "Cards", Target: gate, Navigable: true})
		}
	}
	return out
}

// Crumb is one element of a breadcrumb trail.
type Crumb struct {
	Label   string
	Address domain.Address
}

// Breadcrumb returns the trail from the root to addr. Deal gates are
// skipped; the card below them names the step.
func Breadcrumb(addr domain.Address) []Crumb {
	out := []Crumb{{Label: domain.DisplayName(domain.Root()), Address: domain.Root()}}
	for i, seg := range addr {
		if seg.Kind == domain.SegmentDealGate {
			continue
		}
		prefix := append(domain.Address(nil), addr[:i+1]...)
		out = append(out, Crumb{Label: domain.DisplayName(prefix), Address: prefix})
	}
	return out
}
