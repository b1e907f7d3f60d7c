package gametree

import (
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
)

// GameInfo summarizes a dataset at upload time.
type GameInfo struct {
	GameType       string   `json:"game_type"`
	Position       string   `json:"position"`
	StartingPlayer *int     `json:"starting_player,omitempty"`
	StartingPot    *float64 `json:"starting_pot,omitempty"`
	Board          string   `json:"board"`
	DecisionPoints int      `json:"decision_points"`
}

// GameInfo returns the dataset summary. It is computed once.
func (t *Tree) GameInfo() GameInfo {
	t.infoOnce.Do(func() {
		f, _ := decodeFields(t.root)
		info := GameInfo{
			GameType:       "No Limit Hold'em",
			Position:       "In Position",
			StartingPlayer: f.Player,
			StartingPot:    f.pot(),
			Board:          "None (Preflop)",
			DecisionPoints: countDecisionPoints(t.root),
		}
		if f.Player != nil && *f.Player != 0 {
			info.Position = "Out of Position"
		}
		if b := f.board(); b != "" {
			info.Board = domain.FormatBoard(b)
		}
		t.info = info
	})
	return t.info
}

// countDecisionPoints counts nodes with actions reachable through childrens
// and dealt cards.
func countDecisionPoints(root map[string]any) int {
	count := 0
	stack := []map[string]any{root}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, ok := node[keyActions]; ok {
			count++
		}
		if children, ok := node[keyChildrens].(map[string]any); ok {
			for _, c := range children {
				if child, ok := c.(map[string]any); ok {
					stack = append(stack, child)
				}
			}
		}
		if cards, ok := node[keyDealCards].(map[string]any); ok {
			for _, c := range cards {
				if child, ok := c.(map[string]any); ok {
					stack = append(stack, child)
				}
			}
		}
	}
	return count
}

// HandComposition counts strategy hands by shape.
type HandComposition struct {
	Pairs   int `json:"pairs"`
	Suited  int `json:"suited"`
	Offsuit int `json:"offsuit"`
	Total   int `json:"total"`
}

// StrategySummary is the aggregated strategy of a node.
type StrategySummary struct {
	HasStrategy       bool               `json:"has_strategy"`
	NodeType          string             `json:"node_type,omitempty"`
	Player            *int               `json:"player,omitempty"`
	Board             string             `json:"board,omitempty"`
	Actions           []string           `json:"actions,omitempty"`
	ActionFrequencies map[string]float64 `json:"action_frequencies,omitempty"`
	HandComposition   *HandComposition   `json:"hand_composition,omitempty"`
}

// Strategy aggregates the per-hand strategy of the node at addr: the mean
// probability of each action in percent, and the shape of the hand range.
func (t *Tree) Strategy(addr domain.Address) (StrategySummary, error) {
	r, err := t.lookup(addr)
	if err != nil {
		return StrategySummary{}, err
	}
	if r.gate {
		return StrategySummary{}, nil
	}
	strat, ok := r.raw[keyStrategy].(map[string]any)
	if !ok {
		return StrategySummary{}, nil
	}

	f, err := decodeFields(r.raw)
	if err != nil {
		return StrategySummary{}, err
	}
	out := StrategySummary{
		HasStrategy: true,
		NodeType:    f.NodeType,
		Player:      f.Player,
		Board:       domain.FormatBoard(f.board()),
		Actions:     stringList(strat[keyActions]),
	}
	hands, ok := strat[keyStrategy].(map[string]any)
	if !ok || len(out.Actions) == 0 {
		return out, nil
	}

	totals := make([]float64, len(out.Actions))
	counts := make([]int, len(out.Actions))
	comp := &HandComposition{}
	for hand, v := range hands {
		probs, _ := v.([]any)
		for i, p := range probs {
			if i >= len(out.Actions) {
				break
			}
			if x, ok := p.(float64); ok {
				totals[i] += x
				counts[i]++
			}
		}
		if len(hand) == 4 {
			switch {
			case hand[0] == hand[2]:
				comp.Pairs++
			case hand[1] == hand[3]:
				comp.Suited++
			default:
				comp.Offsuit++
			}
		}
	}
	comp.Total = comp.Pairs + comp.Suited + comp.Offsuit

	out.ActionFrequencies = make(map[string]float64, len(out.Actions))
	for i, a := range out.Actions {
		if counts[i] > 0 {
			out.ActionFrequencies[a] = round2(totals[i] / float64(counts[i]) * 100)
		} else {
			out.ActionFrequencies[a] = 0
		}
	}
	out.HandComposition = comp
	return out, nil
}
