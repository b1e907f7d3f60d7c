package ports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunDatasetStoreContract runs a suite of tests to verify that a DatasetStore
// implementation adheres to the interface contract.
func RunDatasetStoreContract(t *testing.T, store DatasetStore) {
	ctx := context.Background()
	id := "contract-test-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		d := &Dataset{ID: id, Filename: "flop.json", CreatedAt: time.Now().UTC().Truncate(time.Second), Data: []byte(`{"actions":[]}`)}

		require.NoError(t, store.Save(ctx, d), "Save should not return error")

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, d.ID, loaded.ID)
		assert.Equal(t, d.Filename, loaded.Filename)
		assert.Equal(t, d.Data, loaded.Data)
		assert.True(t, d.CreatedAt.Equal(loaded.CreatedAt))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, &Dataset{ID: id, Data: []byte(`{}`)}))

		require.NoError(t, store.Delete(ctx, id), "Delete should not return error")

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
		assert.NoError(t, store.Delete(ctx, id), "Delete is idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1, id2 := id+"-1", id+"-2"
		_ = store.Save(ctx, &Dataset{ID: id1, Data: []byte(`{}`)})
		_ = store.Save(ctx, &Dataset{ID: id2, Data: []byte(`{}`)})
		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		ids, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, ids, id1)
		assert.Contains(t, ids, id2)
	})
}

// RunNodeServiceContract verifies a NodeService against a loaded session.
// The dataset must have at least one action at the root.
func RunNodeServiceContract(t *testing.T, svc NodeService, sessionID string) {
	ctx := context.Background()

	root, err := svc.Node(ctx, sessionID, domain.Root())
	require.NoError(t, err, "root must resolve")
	require.True(t, root.Address.IsRoot())
	require.True(t, root.ChildrenLoaded, "a resolved node lists its children")
	require.NotEmpty(t, root.Actions, "contract dataset needs root actions")

	t.Run("Node_Child", func(t *testing.T) {
		addr := domain.Root().Action(root.Actions[0])
		n, err := svc.Node(ctx, sessionID, addr)
		require.NoError(t, err)
		assert.True(t, addr.Equal(n.Address))
		assert.Equal(t, domain.TagAction, n.Kind.Tag())
	})

	t.Run("Node_NotFound", func(t *testing.T) {
		_, err := svc.Node(ctx, sessionID, domain.Root().Action("NO SUCH ACTION"))
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Node_UnknownSession", func(t *testing.T) {
		_, err := svc.Node(ctx, "missing-"+sessionID, domain.Root())
		assert.Error(t, err)
	})

	t.Run("DirectNode_Replay", func(t *testing.T) {
		addr := domain.Root().Action(root.Actions[0])
		n, err := svc.DirectNode(ctx, sessionID, addr, []string{root.Actions[0]})
		require.NoError(t, err)
		assert.Equal(t, domain.TagAction, n.Kind.Tag())
	})

	t.Run("DirectNode_NotFound", func(t *testing.T) {
		addr := domain.Root().Action("NO SUCH ACTION")
		_, err := svc.DirectNode(ctx, sessionID, addr, []string{"NO SUCH ACTION"})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Tree", func(t *testing.T) {
		snap, err := svc.Tree(ctx, sessionID)
		require.NoError(t, err)
		require.NotEmpty(t, snap.Nodes)
		assert.True(t, snap.Nodes[0].Address.IsRoot(), "root comes first")

		seen := map[string]bool{}
		for _, n := range snap.Nodes {
			if parent, ok := n.Address.Parent(); ok {
				assert.True(t, seen[parent.Key()], fmt.Sprintf("parent of %s must precede it", n.Address))
			}
			seen[n.Address.Key()] = true
		}
	})
}
