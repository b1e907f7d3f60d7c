package gametree

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	json "github.com/goccy/go-json"
)

const (
	keyActions   = "actions"
	keyChildrens = "childrens"
	keyDealCards = "dealcards"
	keyStrategy  = "strategy"
)

// Tree is a parsed solver game tree. It is safe for concurrent use.
type Tree struct {
	root map[string]any

	mu    sync.RWMutex
	cache map[string]resolved

	infoOnce sync.Once
	info     GameInfo
}

// resolved is a located node. Gate nodes point at the dealcards map of
// their parent instead of a solver node.
type resolved struct {
	addr domain.Address
	raw  map[string]any
	gate bool
}

// Parse decodes a solver JSON document.
func Parse(data []byte) (*Tree, error) {
	var root map[string]any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	if root == nil {
		return nil, fmt.Errorf("%w: document is not an object", domain.ErrMalformedPayload)
	}
	return &Tree{root: root, cache: make(map[string]resolved)}, nil
}

// Load reads and parses a solver JSON document.
func Load(r io.Reader) (*Tree, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read tree: %w", err)
	}
	return Parse(data)
}

// lookup resolves addr by exact structural match.
func (t *Tree) lookup(addr domain.Address) (resolved, error) {
	key := addr.Key()
	t.mu.RLock()
	r, ok := t.cache[key]
	t.mu.RUnlock()
	if ok {
		return r, nil
	}

	r = resolved{raw: t.root}
	for i, seg := range addr {
		next, ok := step(r, seg, matchExact)
		if !ok {
			return resolved{}, fmt.Errorf("%w: %s (segment %d)", domain.ErrNotFound, addr, i)
		}
		r = next
	}
	r.addr = addr

	t.mu.Lock()
	t.cache[key] = r
	t.mu.Unlock()
	return r, nil
}

// matcher picks the key among keys that stands for want.
type matcher func(keys []string, want string) (string, bool)

func matchExact(keys []string, want string) (string, bool) {
	for _, k := range keys {
		if k == want {
			return k, true
		}
	}
	return "", false
}

// step follows one segment from r. Declared actions are matched first; a
// label missing from the actions list still resolves through its childrens
// key.
func step(r resolved, seg domain.Segment, match matcher) (resolved, bool) {
	switch seg.Kind {
	case domain.SegmentAction:
		if r.gate {
			return resolved{}, false
		}
		children, _ := r.raw[keyChildrens].(map[string]any)
		key, ok := match(stringList(r.raw[keyActions]), seg.Value)
		if ok {
			if child, ok := children[key].(map[string]any); ok {
				return resolved{raw: child}, true
			}
		}
		key, ok = match(undeclared(children, nil), seg.Value)
		if !ok {
			return resolved{}, false
		}
		child, ok := children[key].(map[string]any)
		return resolved{raw: child}, ok
	case domain.SegmentDealGate:
		if r.gate {
			return resolved{}, false
		}
		cards, ok := r.raw[keyDealCards].(map[string]any)
		return resolved{raw: cards, gate: true}, ok
	case domain.SegmentCard:
		if !r.gate {
			return resolved{}, false
		}
		key, ok := match(keys(r.raw), seg.Value)
		if !ok {
			return resolved{}, false
		}
		child, ok := r.raw[key].(map[string]any)
		return resolved{raw: child}, ok
	}
	return resolved{}, false
}

// children lists the navigable child addresses of r.
func (r resolved) children() []domain.Address {
	if r.gate {
		cards := sortedKeys(r.raw)
		out := make([]domain.Address, 0, len(cards))
		for _, c := range cards {
			out = append(out, r.addr.Card(c))
		}
		return out
	}

	var out []domain.Address
	if children, ok := r.raw[keyChildrens].(map[string]any); ok {
		actions := stringList(r.raw[keyActions])
		for _, a := range actions {
			if _, ok := children[a].(map[string]any); ok {
				out = append(out, r.addr.Action(a))
			}
		}
		for _, a := range undeclared(children, actions) {
			out = append(out, r.addr.Action(a))
		}
	}
	if _, ok := r.raw[keyDealCards].(map[string]any); ok {
		out = append(out, r.addr.DealGate())
	}
	return out
}

// undeclared returns the sorted childrens keys holding a node that are not
// listed in actions.
func undeclared(children map[string]any, actions []string) []string {
	declared := make(map[string]bool, len(actions))
	for _, a := range actions {
		declared[a] = true
	}
	var out []string
	for k, v := range children {
		if _, ok := v.(map[string]any); ok && !declared[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sortedKeys(m map[string]any) []string {
	out := keys(m)
	domain.SortCards(out)
	return out
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
