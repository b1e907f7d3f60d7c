package gametree_test

import (
	"os"
	"testing"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/gametree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixture(t *testing.T) *gametree.Tree {
	t.Helper()
	f, err := os.Open("testdata/flop.json")
	require.NoError(t, err)
	defer f.Close()

	tree, err := gametree.Load(f)
	require.NoError(t, err)
	return tree
}

func TestParse_Invalid(t *testing.T) {
	_, err := gametree.Parse([]byte(`[1,2,3]`))
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = gametree.Parse([]byte(`null`))
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)

	_, err = gametree.Parse([]byte(`{"actions":`))
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestInfo_Root(t *testing.T) {
	tree := loadFixture(t)

	info, err := tree.Info(domain.Root())
	require.NoError(t, err)

	assert.Equal(t, "", info.Path)
	assert.Equal(t, domain.TagRoot, info.NodeKind)
	assert.Equal(t, "action_node", info.NodeType)
	assert.Equal(t, "A♥ K♦ 7♣", info.Board)
	require.NotNil(t, info.Pot)
	assert.Equal(t, 10.0, *info.Pot)
	assert.Equal(t, []string{"CHECK", "BET 2"}, info.Actions)
	assert.Equal(t, []string{"/childrens/CHECK", "/childrens/BET 2"}, info.Children)
	assert.True(t, info.ChildrenKnown)
	assert.True(t, info.HasStrategy)
}

func TestInfo_SkipsActionsWithoutChild(t *testing.T) {
	tree := loadFixture(t)

	info, err := tree.Info(domain.MustParseAddress("/childrens/BET 2"))
	require.NoError(t, err)

	assert.Equal(t, []string{"FOLD", "CALL", "RAISE 6"}, info.Actions)
	assert.Equal(t, []string{"/childrens/BET 2/childrens/CALL", "/childrens/BET 2/childrens/RAISE 6"}, info.Children)
}

func TestInfo_UndeclaredChildResolves(t *testing.T) {
	tree, err := gametree.Parse([]byte(`{
		"actions": ["CHECK"],
		"childrens": {
			"CHECK": {"actions": []},
			"BET 3": {"actions": ["FOLD"], "childrens": {"FOLD": {"actions": []}}}
		}
	}`))
	require.NoError(t, err)

	root, err := tree.Info(domain.Root())
	require.NoError(t, err)
	assert.Equal(t, []string{"/childrens/CHECK", "/childrens/BET 3"}, root.Children)

	info, err := tree.Info(domain.MustParseAddress("/childrens/BET 3"))
	require.NoError(t, err)
	assert.Equal(t, []string{"FOLD"}, info.Actions)

	_, err = tree.Info(domain.MustParseAddress("/childrens/BET 3/childrens/FOLD"))
	assert.NoError(t, err)

	replayed, err := tree.Replay(domain.MustParseAddress("/childrens/bet 3"), []string{"bet 3"})
	require.NoError(t, err)
	assert.Equal(t, []string{"FOLD"}, replayed.Actions)

	assert.Equal(t, 4, tree.GameInfo().DecisionPoints, "nodes under undeclared childrens count too")
}

func TestInfo_DealGate(t *testing.T) {
	tree := loadFixture(t)

	info, err := tree.Info(domain.MustParseAddress("/childrens/BET 2/childrens/CALL/dealcards"))
	require.NoError(t, err)

	assert.Equal(t, domain.TagCards, info.NodeKind)
	assert.Equal(t, "Cards", info.DisplayName)
	assert.Equal(t, []string{"As", "Tc", "2d"}, info.DealCards)
	assert.Equal(t, 3, info.DealCardsCount)
	assert.Equal(t, []string{
		"/childrens/BET 2/childrens/CALL/dealcards/As",
		"/childrens/BET 2/childrens/CALL/dealcards/Tc",
		"/childrens/BET 2/childrens/CALL/dealcards/2d",
	}, info.Children)
}

func TestInfo_PotSizeFallback(t *testing.T) {
	tree := loadFixture(t)

	info, err := tree.Info(domain.MustParseAddress("/childrens/BET 2/childrens/RAISE 6"))
	require.NoError(t, err)
	require.NotNil(t, info.Pot)
	assert.Equal(t, 14.0, *info.Pot)
	assert.Empty(t, info.Children)
	assert.True(t, info.ChildrenKnown)
}

func TestInfo_NotFound(t *testing.T) {
	tree := loadFixture(t)

	for _, raw := range []string{
		"/childrens/RAISE 100",
		"/childrens/BET 2/childrens/FOLD",
		"/childrens/BET 2/dealcards",
		"/childrens/BET 2/childrens/CALL/dealcards/Ah",
		"/childrens/bet 2",
	} {
		_, err := tree.Info(domain.MustParseAddress(raw))
		assert.ErrorIs(t, err, domain.ErrNotFound, raw)
	}
}

func TestInfo_TreeNode(t *testing.T) {
	tree := loadFixture(t)

	info, err := tree.Info(domain.MustParseAddress("/childrens/CHECK/childrens/CHECK/dealcards"))
	require.NoError(t, err)

	n, err := info.TreeNode()
	require.NoError(t, err)
	assert.Equal(t, domain.DealGateKind{CardCount: 3}, n.Kind)
	assert.True(t, n.ChildrenLoaded)
	require.Len(t, n.Children, 3)
	assert.Equal(t, "/childrens/CHECK/childrens/CHECK/dealcards/Qd", n.Children[0].String())
	assert.Equal(t, []string{}, n.Actions)
}

func TestReplay(t *testing.T) {
	tree := loadFixture(t)

	t.Run("NormalizedCard", func(t *testing.T) {
		addr := domain.MustParseAddress("/childrens/BET 2/childrens/CALL/dealcards/AS")
		_, err := tree.Info(addr)
		require.ErrorIs(t, err, domain.ErrNotFound, "exact lookup is case sensitive")

		info, err := tree.Replay(addr, []string{"BET 2", "CALL"})
		require.NoError(t, err)
		assert.Equal(t, addr.String(), info.Path, "info keeps the requested address")
		assert.Equal(t, []string{"CHECK", "BET 4"}, info.Actions)
	})

	t.Run("ActionsOverrideLabels", func(t *testing.T) {
		addr := domain.MustParseAddress("/childrens/bet 2.0")
		info, err := tree.Replay(addr, []string{"BET 2"})
		require.NoError(t, err)
		assert.Equal(t, []string{"FOLD", "CALL", "RAISE 6"}, info.Actions)
	})

	t.Run("FallsBackToAddressLabels", func(t *testing.T) {
		addr := domain.MustParseAddress("/childrens/CHECK/childrens/bet 5")
		info, err := tree.Replay(addr, nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"FOLD", "CALL"}, info.Actions)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := tree.Replay(domain.MustParseAddress("/childrens/RAISE 9"), []string{"ALL IN"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSnapshot(t *testing.T) {
	tree := loadFixture(t)

	snap := tree.Snapshot(2, 2)
	assert.Equal(t, domain.TagRoot, snap.Type)
	require.Len(t, snap.Children, 2)
	assert.True(t, snap.ChildrenKnown)

	bet := snap.Children[1]
	assert.Equal(t, "/childrens/BET 2", bet.Path)
	require.Len(t, bet.Children, 2)
	call := bet.Children[0]
	assert.False(t, call.ChildrenKnown, "depth limit leaves children unknown")
	assert.Empty(t, call.Children)

	deep := tree.Snapshot(0, 2)
	gate := deep.Children[1].Children[0].Children[0]
	assert.Equal(t, domain.TagCards, gate.Type)
	assert.Len(t, gate.Children, 2)
	assert.Equal(t, 1, gate.More)
	assert.False(t, gate.ChildrenKnown, "sampled cards leave children unknown")

	nodes, err := deep.Nodes()
	require.NoError(t, err)
	assert.True(t, nodes[0].Address.IsRoot())
	seen := map[string]bool{}
	for _, n := range nodes {
		if p, ok := n.Address.Parent(); ok {
			assert.True(t, seen[p.Key()], n.Address.String())
		}
		seen[n.Address.Key()] = true
	}
}

func TestGameInfo(t *testing.T) {
	tree := loadFixture(t)

	info := tree.GameInfo()
	assert.Equal(t, "Out of Position", info.Position)
	require.NotNil(t, info.StartingPlayer)
	assert.Equal(t, 1, *info.StartingPlayer)
	assert.Equal(t, "A♥ K♦ 7♣", info.Board)
	// root, CHECK, BET 2, CHECK/BET 5, BET 2/RAISE 6, three turn nodes per chance node
	assert.Equal(t, 11, info.DecisionPoints)
}

func TestStrategy(t *testing.T) {
	tree := loadFixture(t)

	s, err := tree.Strategy(domain.Root())
	require.NoError(t, err)
	assert.True(t, s.HasStrategy)
	assert.Equal(t, []string{"CHECK", "BET 2"}, s.Actions)
	assert.Equal(t, 60.0, s.ActionFrequencies["CHECK"])
	assert.Equal(t, 40.0, s.ActionFrequencies["BET 2"])
	require.NotNil(t, s.HandComposition)
	assert.Equal(t, gametree.HandComposition{Pairs: 2, Suited: 1, Offsuit: 1, Total: 4}, *s.HandComposition)

	none, err := tree.Strategy(domain.MustParseAddress("/childrens/CHECK"))
	require.NoError(t, err)
	assert.False(t, none.HasStrategy)
}
