package runtime_test

import (
	"errors"
	"testing"

	"github.com/EricFan2002/GTOJsonExplorer/internal/runtime"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderInput(reg *runtime.Registry, exp *runtime.Expansion) runtime.RenderInput {
	return runtime.RenderInput{Registry: reg, Expansion: exp, Failures: map[string]error{}}
}

func TestRender(t *testing.T) {
	bet := domain.MustParseAddress("/childrens/BET 2")

	t.Run("Collapsed root", func(t *testing.T) {
		reg := runtime.NewRegistry()
		reg.Upsert(loaded("", nil, "/childrens/CHECK"))

		tree := runtime.Render(renderInput(reg, runtime.NewExpansion()))
		require.NotNil(t, tree.Root)
		assert.Equal(t, "Root", tree.Root.Label)
		assert.True(t, tree.Root.HasToggle)
		assert.False(t, tree.Root.Expanded)
		assert.Empty(t, tree.Root.Children)
		assert.Empty(t, tree.Pending)
	})

	t.Run("Expanded unloaded node is pending", func(t *testing.T) {
		reg := runtime.NewRegistry()
		reg.Upsert(loaded("", nil, "/childrens/CHECK", "/childrens/BET 2"))
		exp := runtime.NewExpansion()
		exp.SetExpanded(domain.Root(), true, false)
		exp.SetExpanded(bet, true, true)

		tree := runtime.Render(renderInput(reg, exp))
		require.Len(t, tree.Root.Children, 2)
		betNode := tree.Root.Children[1]
		assert.True(t, betNode.Loading)
		assert.False(t, betNode.Expanded)
		require.Len(t, betNode.Children, 1)
		assert.True(t, betNode.Children[0].Placeholder)
		assert.Equal(t, domain.KindLoading, betNode.Children[0].Kind)
		require.Len(t, tree.Pending, 1)
		assert.True(t, tree.Pending[0].Equal(bet))
	})

	t.Run("Failed node is not pending", func(t *testing.T) {
		reg := runtime.NewRegistry()
		reg.Upsert(loaded("", nil, "/childrens/BET 2"))
		exp := runtime.NewExpansion()
		exp.SetExpanded(domain.Root(), true, false)
		exp.SetExpanded(bet, true, true)
		in := renderInput(reg, exp)
		in.Failures[bet.Key()] = errors.New("boom")

		tree := runtime.Render(in)
		betNode := tree.Root.Children[0]
		assert.Equal(t, "boom", betNode.Error)
		assert.False(t, betNode.Loading)
		assert.Empty(t, tree.Pending)
	})

	t.Run("Selection and leaves", func(t *testing.T) {
		reg := runtime.NewRegistry()
		reg.Upsert(loaded("", nil, "/childrens/BET 2"))
		reg.Upsert(loaded("/childrens/BET 2", nil))
		exp := runtime.NewExpansion()
		exp.SetExpanded(domain.Root(), true, false)
		in := renderInput(reg, exp)
		in.Selection = bet
		in.HasSelection = true

		tree := runtime.Render(in)
		assert.True(t, tree.Selected)
		assert.Equal(t, "/childrens/BET 2", tree.Selection)
		leaf := tree.Root.Children[0]
		assert.True(t, leaf.Selected)
		assert.False(t, leaf.HasToggle)
	})
}

func TestFlatten(t *testing.T) {
	reg := runtime.NewRegistry()
	reg.Upsert(loaded("", nil, "/childrens/CHECK", "/childrens/BET 2"))
	reg.Upsert(loaded("/childrens/CHECK", nil, "/childrens/CHECK/childrens/CHECK"))
	exp := runtime.NewExpansion()
	exp.SetExpanded(domain.Root(), true, false)
	exp.SetExpanded(domain.MustParseAddress("/childrens/CHECK"), true, false)

	lines := runtime.Flatten(runtime.Render(renderInput(reg, exp)))
	require.Len(t, lines, 4)

	var prefixes []string
	for _, l := range lines {
		prefixes = append(prefixes, l.Prefix+l.Node.Label)
	}
	assert.Equal(t, []string{
		"Root",
		"├── CHECK",
		"│   └── CHECK",
		"└── BET 2",
	}, prefixes)
	assert.Equal(t, 2, lines[2].Depth)

	assert.Nil(t, runtime.Flatten(domain.RenderTree{}))
}
