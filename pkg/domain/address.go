package domain

import (
	"fmt"
	"strings"
)

// Gate markers used in the textual form of an Address.
const (
	MarkerChildren  = "childrens"
	MarkerDealCards = "dealcards"
	MarkerCards     = "cards"
)

// SegmentKind classifies one element of an Address.
type SegmentKind int

const (
	// SegmentAction is an action taken at a decision node ("childrens/<ACTION>").
	SegmentAction SegmentKind = iota + 1
	// SegmentDealGate is the chance gate under which dealt cards hang ("dealcards").
	SegmentDealGate
	// SegmentCard is a dealt card below a gate ("dealcards/<CARD>").
	SegmentCard
)

func (k SegmentKind) String() string {
	switch k {
	case SegmentAction:
		return "action"
	case SegmentDealGate:
		return "deal_gate"
	case SegmentCard:
		return "card"
	default:
		return fmt.Sprintf("segment(%d)", int(k))
	}
}

// Segment is a typed address element. Value is empty for SegmentDealGate.
type Segment struct {
	Kind  SegmentKind
	Value string
}

// Address identifies a node of the game tree as an ordered sequence of
// segments. The zero value is the root address.
//
// Addresses are values: every method that derives a new Address returns a
// fresh slice and never aliases the receiver's backing array.
type Address []Segment

// Root returns the root address.
func Root() Address { return Address{} }

// ParseAddress decodes the slash-delimited form used by the node service,
// e.g. "/childrens/BET 2/dealcards/Ah".
//
// Empty tokens are dropped, so "", "/" and "//" all denote the root. "cards"
// is accepted as an alias of the "dealcards" gate.
func ParseAddress(raw string) (Address, error) {
	tokens := make([]string, 0, strings.Count(raw, "/")+1)
	for _, tok := range strings.Split(raw, "/") {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}

	addr := make(Address, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		switch tok := tokens[i]; tok {
		case MarkerChildren:
			if i+1 >= len(tokens) {
				return nil, fmt.Errorf("%w: %q: %q marker without an action", ErrMalformedAddress, raw, tok)
			}
			i++
			addr = append(addr, Segment{Kind: SegmentAction, Value: tokens[i]})
		case MarkerDealCards, MarkerCards:
			addr = append(addr, Segment{Kind: SegmentDealGate})
			if i+1 < len(tokens) && !isMarker(tokens[i+1]) {
				i++
				addr = append(addr, Segment{Kind: SegmentCard, Value: tokens[i]})
			}
		default:
			return nil, fmt.Errorf("%w: %q: card %q has no preceding gate", ErrMalformedAddress, raw, tok)
		}
	}
	return addr, nil
}

// MustParseAddress is like ParseAddress but panics on error. Intended for
// tests and constants.
func MustParseAddress(raw string) Address {
	addr, err := ParseAddress(raw)
	if err != nil {
		panic(err)
	}
	return addr
}

func isMarker(tok string) bool {
	return tok == MarkerChildren || tok == MarkerDealCards || tok == MarkerCards
}

// Display formats the address for messages and logs, where the root
// reads as "/" instead of an empty string.
func (a Address) Display() string {
	if a.IsRoot() {
		return "/"
	}
	return a.String()
}

// String formats the address in its canonical slash form. The root formats
// as the empty string, matching the node service's root path.
func (a Address) String() string {
	var b strings.Builder
	for _, seg := range a {
		switch seg.Kind {
		case SegmentAction:
			b.WriteString("/" + MarkerChildren + "/")
			b.WriteString(seg.Value)
		case SegmentDealGate:
			b.WriteString("/" + MarkerDealCards)
		case SegmentCard:
			b.WriteString("/")
			b.WriteString(seg.Value)
		}
	}
	return b.String()
}

// Key returns the canonical string used to index maps by address.
func (a Address) Key() string { return a.String() }

// Validate reports whether the segment sequence can be formatted and parsed
// back unchanged.
func (a Address) Validate() error {
	for i, seg := range a {
		switch seg.Kind {
		case SegmentAction:
			if seg.Value == "" || strings.Contains(seg.Value, "/") {
				return fmt.Errorf("%w: invalid action %q at %d", ErrMalformedAddress, seg.Value, i)
			}
		case SegmentDealGate:
			if seg.Value != "" {
				return fmt.Errorf("%w: gate carries value %q at %d", ErrMalformedAddress, seg.Value, i)
			}
		case SegmentCard:
			if i == 0 || a[i-1].Kind != SegmentDealGate {
				return fmt.Errorf("%w: card %q has no preceding gate", ErrMalformedAddress, seg.Value)
			}
			if seg.Value == "" || strings.Contains(seg.Value, "/") || isMarker(seg.Value) {
				return fmt.Errorf("%w: invalid card %q at %d", ErrMalformedAddress, seg.Value, i)
			}
		default:
			return fmt.Errorf("%w: unknown segment kind %d at %d", ErrMalformedAddress, seg.Kind, i)
		}
	}
	return nil
}

// IsRoot reports whether a is the root address.
func (a Address) IsRoot() bool { return len(a) == 0 }

// Depth is the number of segments.
func (a Address) Depth() int { return len(a) }

// Equal reports segment-wise equality.
func (a Address) Equal(b Address) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether a is a strict prefix of b.
func (a Address) IsAncestorOf(b Address) bool {
	if len(a) >= len(b) {
		return false
	}
	return a.Equal(b[:len(a)])
}

// Parent returns the address with the last segment removed. The second
// result is false for the root.
func (a Address) Parent() (Address, bool) {
	if len(a) == 0 {
		return nil, false
	}
	return a.clone(len(a) - 1), true
}

// Ancestors returns every strict prefix of a, root first.
func (a Address) Ancestors() []Address {
	out := make([]Address, 0, len(a))
	for i := 0; i < len(a); i++ {
		out = append(out, a.clone(i))
	}
	return out
}

// Last returns the final segment. The second result is false for the root.
func (a Address) Last() (Segment, bool) {
	if len(a) == 0 {
		return Segment{}, false
	}
	return a[len(a)-1], true
}

// Action returns a child address reached by taking action.
func (a Address) Action(action string) Address {
	return a.append(Segment{Kind: SegmentAction, Value: action})
}

// DealGate returns the chance gate below a.
func (a Address) DealGate() Address {
	return a.append(Segment{Kind: SegmentDealGate})
}

// Card returns the card child of a gate address.
func (a Address) Card(card string) Address {
	return a.append(Segment{Kind: SegmentCard, Value: card})
}

// Actions returns the action values along the address, in order.
func (a Address) Actions() []string {
	var out []string
	for _, seg := range a {
		if seg.Kind == SegmentAction {
			out = append(out, seg.Value)
		}
	}
	return out
}

func (a Address) append(seg Segment) Address {
	out := make(Address, len(a), len(a)+1)
	copy(out, a)
	return append(out, seg)
}

func (a Address) clone(n int) Address {
	out := make(Address, n)
	copy(out, a[:n])
	return out
}
