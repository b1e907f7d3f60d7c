package dsl_test

import (
	"testing"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_SolverTree(t *testing.T) {
	b := dsl.New().Player(1).Board("AhKd7c").Pot(10)
	root := b.Root()
	root.Action("CHECK").Player(0).Actions("CHECK", "BET 5")
	bet := root.Action("BET 2").Player(0)
	bet.Action("FOLD")
	bet.Action("CALL").Deal("As", "2d").Card("As").Player(1).Action("CHECK")
	root.Strategy("AsAc", 0.5, 0.5)

	tree, err := b.Build()
	require.NoError(t, err)

	info, err := tree.Info(domain.Root())
	require.NoError(t, err)
	assert.Equal(t, []string{"CHECK", "BET 2"}, info.Actions)
	assert.True(t, info.HasStrategy)
	require.NotNil(t, info.Player)
	assert.Equal(t, 1, *info.Player)

	gate, err := tree.Info(domain.MustParseAddress("/childrens/BET 2/childrens/CALL/dealcards"))
	require.NoError(t, err)
	assert.Len(t, gate.DealCards, 2)

	card, err := tree.Info(domain.MustParseAddress("/childrens/BET 2/childrens/CALL/dealcards/As"))
	require.NoError(t, err)
	assert.Equal(t, []string{"CHECK"}, card.Actions)

	assert.Equal(t, 4, tree.GameInfo().DecisionPoints)
}

func TestBuilder_ActionIsIdempotent(t *testing.T) {
	b := dsl.New()
	first := b.Root().Action("CHECK")
	second := b.Root().Action("CHECK")
	assert.Same(t, first, second)

	data, err := b.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"node_type":"action_node","actions":["CHECK"],"childrens":{"CHECK":{"node_type":"action_node"}}}`, string(data))
}

func TestBuilder_Terminal(t *testing.T) {
	b := dsl.New()
	b.Root().Actions("FOLD", "CALL").Terminal()

	tree, err := b.Build()
	require.NoError(t, err)
	info, err := tree.Info(domain.Root())
	require.NoError(t, err)
	assert.Empty(t, info.Actions)
}
