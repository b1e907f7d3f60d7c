package explorer_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"

	explorer "github.com/EricFan2002/GTOJsonExplorer"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/memory"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/dsl"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/gametree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExplorer(t *testing.T, opts ...explorer.Option) *explorer.Explorer {
	t.Helper()
	data, err := os.ReadFile("pkg/gametree/testdata/flop.json")
	require.NoError(t, err)
	tree, err := gametree.Parse(data)
	require.NoError(t, err)

	svc := memory.NewNodeService(memory.StaticTrees{"flop": tree})
	e := explorer.New(svc, opts...)
	t.Cleanup(e.Close)
	require.NoError(t, e.Load(context.Background(), "flop"))
	e.Wait()
	return e
}

func TestExplorer_LoadAndNavigate(t *testing.T) {
	var commits, loads atomic.Int32
	e := newExplorer(t, explorer.WithLifecycleHooks(domain.LifecycleHooks{
		OnCommit: func(context.Context, *domain.NavigationEvent) { commits.Add(1) },
		OnLoad:   func(context.Context, *domain.NavigationEvent) { loads.Add(1) },
	}))
	ctx := context.Background()

	assert.Equal(t, "flop", e.SessionID())
	assert.GreaterOrEqual(t, loads.Load(), int32(1))

	tree := e.Snapshot()
	require.NotNil(t, tree.Root)
	assert.Equal(t, "Root", tree.Root.Label)
	assert.True(t, tree.Root.Expanded)
	assert.False(t, tree.Selected)

	target := "/childrens/BET 2/childrens/CALL/dealcards/As"
	require.NoError(t, e.GotoPath(ctx, target))
	e.Wait()

	sel, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, target, sel.String())
	assert.Equal(t, domain.StateIdle, e.State())
	assert.Equal(t, int32(1), commits.Load())

	for _, a := range sel.Ancestors() {
		assert.True(t, e.IsExpanded(a), "ancestor %q should be expanded", a)
	}

	var labels []string
	for _, c := range e.Breadcrumb(sel) {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"Root", "BET 2", "CALL", "A♠"}, labels)

	var selectedRows int
	for _, l := range e.Lines() {
		if l.Node.Selected {
			selectedRows++
			assert.Equal(t, "A♠", l.Node.Label)
		}
	}
	assert.Equal(t, 1, selectedRows)
}

func TestExplorer_Moves(t *testing.T) {
	e := newExplorer(t)
	ctx := context.Background()

	require.NoError(t, e.Goto(ctx, domain.Root()))
	var labels []string
	for _, m := range e.Moves(domain.Root()) {
		labels = append(labels, m.Label)
		assert.Equal(t, explorer.MoveAction, m.Kind)
	}
	assert.Equal(t, []string{"CHECK", "BET 2"}, labels)

	gate := domain.MustParseAddress("/childrens/BET 2/childrens/CALL/dealcards")
	require.NoError(t, e.Goto(ctx, gate))
	moves := e.Moves(gate)
	require.NotEmpty(t, moves)
	assert.Equal(t, explorer.MoveUp, moves[0].Kind)

	var cards []string
	for _, m := range moves[1:] {
		assert.Equal(t, explorer.MoveCard, m.Kind)
		cards = append(cards, m.Label)
	}
	assert.Equal(t, []string{"A♠", "T♣", "2♦"}, cards)
}

func TestExplorer_UnknownAddressFails(t *testing.T) {
	e := newExplorer(t)
	addr := domain.MustParseAddress("/childrens/BET 2/childrens/RAISE 9")

	err := e.Goto(context.Background(), addr)
	require.ErrorIs(t, err, domain.ErrRecoveryFailed)
	assert.Equal(t, domain.StateError, e.State())
	assert.Error(t, e.Failure(addr))

	_, selected := e.Selection()
	assert.False(t, selected)
}

func TestExplorer_MalformedPath(t *testing.T) {
	e := newExplorer(t)
	err := e.GotoPath(context.Background(), "/Ah")
	assert.ErrorIs(t, err, domain.ErrMalformedAddress)
}

func TestExplorer_Subscribe(t *testing.T) {
	e := newExplorer(t)
	ch, cancel := e.Subscribe()
	defer cancel()

	require.NoError(t, e.Toggle(context.Background(), domain.MustParseAddress("/childrens/CHECK")))
	select {
	case <-ch:
	default:
		t.Fatal("toggle did not notify subscribers")
	}
}

// deepTree builds a flop, turn and river line where each street deals the
// whole remaining deck.
func deepTree(t *testing.T) *dsl.Builder {
	t.Helper()
	var deck []string
	for _, r := range "23456789TJQKA" {
		for _, s := range "shdc" {
			c := string(r) + string(s)
			if c != "Ah" && c != "Kd" && c != "7c" {
				deck = append(deck, c)
			}
		}
	}

	b := dsl.New().Player(1).Board("AhKd7c").Pot(10)
	turn := b.Root().Action("CHECK").Player(0).Action("CHECK").Deal(deck...)
	river := turn.Card("2s").Player(1).Action("BET 4").Player(0).Action("CALL").Deal(deck[1:]...)
	river.Card("3h").Player(1).Actions("CHECK", "BET 10")
	return b
}

func TestExplorer_DeepJumpAndLargeGate(t *testing.T) {
	tree, err := deepTree(t).Build()
	require.NoError(t, err)

	e := explorer.New(memory.NewNodeService(memory.StaticTrees{"river": tree}))
	t.Cleanup(e.Close)
	ctx := context.Background()
	require.NoError(t, e.Load(ctx, "river"))

	target := "/childrens/CHECK/childrens/CHECK/dealcards/2s/childrens/BET 4/childrens/CALL/dealcards/3h"
	require.NoError(t, e.GotoPath(ctx, target))
	e.Wait()

	sel, ok := e.Selection()
	require.True(t, ok)
	assert.Equal(t, target, sel.String())
	for _, a := range sel.Ancestors() {
		assert.True(t, e.IsExpanded(a), "ancestor %q should be expanded", a)
	}

	gate := domain.MustParseAddress("/childrens/CHECK/childrens/CHECK/dealcards")
	var cards int
	for _, m := range e.Moves(gate) {
		if m.Kind == explorer.MoveCard {
			cards++
		}
	}
	assert.Equal(t, 49, cards)

	var labels []string
	for _, c := range e.Breadcrumb(sel) {
		labels = append(labels, c.Label)
	}
	assert.Equal(t, []string{"Root", "CHECK", "CHECK", "2♠", "BET 4", "CALL", "3♥"}, labels)
}
