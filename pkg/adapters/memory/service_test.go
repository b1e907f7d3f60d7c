package memory_test

import (
	"context"
	"os"
	"testing"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/memory"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/gametree"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFlop(t *testing.T) *gametree.Tree {
	t.Helper()
	data, err := os.ReadFile("../../gametree/testdata/flop.json")
	require.NoError(t, err)
	tree, err := gametree.Parse(data)
	require.NoError(t, err)
	return tree
}

func TestNodeService_Contract(t *testing.T) {
	svc := memory.NewNodeService(memory.StaticTrees{"flop": loadFlop(t)})
	ports.RunNodeServiceContract(t, svc, "flop")
}

func TestNodeService_SnapshotLimits(t *testing.T) {
	svc := memory.NewNodeService(memory.StaticTrees{"flop": loadFlop(t)}, memory.WithSnapshotLimits(1, 0))

	snap, err := svc.Tree(context.Background(), "flop")
	require.NoError(t, err)
	require.Len(t, snap.Nodes, 3)
	assert.True(t, snap.Nodes[0].ChildrenLoaded)
	assert.False(t, snap.Nodes[1].ChildrenLoaded, "nodes at the depth cut have unknown children")
}

func TestNodeService_UnknownSession(t *testing.T) {
	svc := memory.NewNodeService(memory.StaticTrees{})
	_, err := svc.Node(context.Background(), "x", domain.Root())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
