package gametree

import (
	"fmt"
	"math"
	"strings"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// fields are the scalar attributes of a solver node. Solvers disagree on
// names and types (pot vs potSize, board as string or list), so they are
// decoded loosely.
type fields struct {
	NodeType   string   `mapstructure:"node_type"`
	Player     *int     `mapstructure:"player"`
	Board      any      `mapstructure:"board"`
	Pot        *float64 `mapstructure:"pot"`
	PotSize    *float64 `mapstructure:"potSize"`
	DealNumber *int     `mapstructure:"deal_number"`
	Actions    []string `mapstructure:"actions"`
}

func decodeFields(raw map[string]any) (fields, error) {
	var f fields
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &f,
	})
	if err != nil {
		return f, err
	}
	if err := dec.Decode(raw); err != nil {
		return f, fmt.Errorf("%w: %v", domain.ErrMalformedPayload, err)
	}
	return f, nil
}

func (f fields) board() string {
	switch b := f.Board.(type) {
	case string:
		return b
	case []any:
		var sb strings.Builder
		for _, c := range b {
			if s, ok := c.(string); ok {
				sb.WriteString(s)
			}
		}
		return sb.String()
	}
	return ""
}

func (f fields) pot() *float64 {
	p := f.Pot
	if p == nil {
		p = f.PotSize
	}
	if p == nil {
		return nil
	}
	v := round2(*p)
	return &v
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

// NodeInfo is the wire shape of a node served to explorers.
type NodeInfo struct {
	Path           string         `json:"path"`
	NodeKind       domain.KindTag `json:"node_kind"`
	DisplayName    string         `json:"display_name"`
	NodeType       string         `json:"node_type,omitempty"`
	Player         *int           `json:"player,omitempty"`
	Board          string         `json:"board,omitempty"`
	Pot            *float64       `json:"pot,omitempty"`
	DealNumber     *int           `json:"deal_number,omitempty"`
	Actions        []string       `json:"actions"`
	DealCards      []string       `json:"dealcards,omitempty"`
	DealCardsCount int            `json:"dealcards_count,omitempty"`
	HasStrategy    bool           `json:"has_strategy"`
	Children       []string       `json:"children"`
	ChildrenKnown  bool           `json:"children_known"`
}

// Info returns the node at addr found by exact lookup.
func (t *Tree) Info(addr domain.Address) (NodeInfo, error) {
	r, err := t.lookup(addr)
	if err != nil {
		return NodeInfo{}, err
	}
	return describe(r)
}

func describe(r resolved) (NodeInfo, error) {
	info := NodeInfo{
		Path:          r.addr.String(),
		NodeKind:      domain.KindOf(r.addr).Tag(),
		DisplayName:   domain.DisplayName(r.addr),
		Actions:       []string{},
		Children:      []string{},
		ChildrenKnown: true,
	}
	for _, c := range r.children() {
		info.Children = append(info.Children, c.String())
	}

	if r.gate {
		info.DealCards = sortedKeys(r.raw)
		info.DealCardsCount = len(info.DealCards)
		return info, nil
	}

	f, err := decodeFields(r.raw)
	if err != nil {
		return NodeInfo{}, err
	}
	info.NodeType = f.NodeType
	info.Player = f.Player
	info.Board = domain.FormatBoard(f.board())
	info.Pot = f.pot()
	info.DealNumber = f.DealNumber
	if f.Actions != nil {
		info.Actions = f.Actions
	}
	if cards, ok := r.raw[keyDealCards].(map[string]any); ok {
		info.DealCards = sortedKeys(cards)
		info.DealCardsCount = len(cards)
	}
	_, info.HasStrategy = r.raw[keyStrategy]
	return info, nil
}

// TreeNode converts the wire shape into the client model.
func (i NodeInfo) TreeNode() (domain.TreeNode, error) {
	addr, err := domain.ParseAddress(i.Path)
	if err != nil {
		return domain.TreeNode{}, err
	}
	n := domain.Placeholder(addr)
	if i.DisplayName != "" {
		n.DisplayName = i.DisplayName
	}
	if dg, ok := n.Kind.(domain.DealGateKind); ok {
		dg.CardCount = i.DealCardsCount
		n.Kind = dg
	}
	n.ChildrenLoaded = i.ChildrenKnown
	for _, raw := range i.Children {
		child, err := domain.ParseAddress(raw)
		if err != nil {
			return domain.TreeNode{}, fmt.Errorf("%w: child %q: %v", domain.ErrMalformedPayload, raw, err)
		}
		n.Children = append(n.Children, child)
	}
	if n.ChildrenLoaded && n.Children == nil {
		n.Children = []domain.Address{}
	}
	n.Actions = i.Actions
	if n.Actions == nil {
		n.Actions = []string{}
	}
	n.StrategyAvailable = i.HasStrategy
	n.Detail = domain.NodeDetail{
		NodeType:   i.NodeType,
		Player:     i.Player,
		Board:      i.Board,
		Pot:        i.Pot,
		DealNumber: i.DealNumber,
		DealCards:  i.DealCards,
	}
	return n, nil
}
