package dsl

import (
	"fmt"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/gametree"
	json "github.com/goccy/go-json"
)

// Builder manages the tree construction.
type Builder struct {
	root *NodeBuilder
}

// New creates a builder whose root is an empty action node.
func New() *Builder {
	return &Builder{root: newNode()}
}

// Root returns the root node.
func (b *Builder) Root() *NodeBuilder { return b.root }

// Player sets the player acting at the root.
func (b *Builder) Player(p int) *Builder {
	b.root.Player(p)
	return b
}

// Board sets the board cards, e.g. "AhKd7c".
func (b *Builder) Board(cards string) *Builder {
	b.root.Field("board", cards)
	return b
}

// Pot sets the starting pot.
func (b *Builder) Pot(pot float64) *Builder {
	b.root.Field("pot", pot)
	return b
}

// JSON encodes the tree as a solver document.
func (b *Builder) JSON() ([]byte, error) {
	data, err := json.Marshal(b.root.raw)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tree: %w", err)
	}
	return data, nil
}

// Build encodes the tree and parses it back into a gametree.Tree.
func (b *Builder) Build() (*gametree.Tree, error) {
	data, err := b.JSON()
	if err != nil {
		return nil, err
	}
	return gametree.Parse(data)
}
