package cli_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/internal/cli"
	"github.com/EricFan2002/GTOJsonExplorer/internal/config"
	"github.com/EricFan2002/GTOJsonExplorer/internal/logging"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/memory"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/domain"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tinyTree = `{"node_type":"action_node","player":0,"actions":["CHECK"],"childrens":{"CHECK":{"node_type":"action_node","actions":[],"childrens":{}}}}`

type recordingLoader struct {
	mu  sync.Mutex
	ids []string
}

func (r *recordingLoader) Load(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ids = append(r.ids, id)
	return nil
}

func (r *recordingLoader) loaded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.ids...)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := cli.NewLogger(config.LogConfig{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)
	logger.Debug("hello", "error", "boom")
	assert.Contains(t, buf.String(), `"err":"boom"`)

	_, err = cli.NewLogger(config.LogConfig{Level: "info", Format: "xml"}, &buf)
	assert.Error(t, err)
	_, err = cli.NewLogger(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
}

func TestNewManager(t *testing.T) {
	ctx := context.Background()
	logger := logging.NewNop()

	t.Run("memory", func(t *testing.T) {
		mgr, closeFn, err := cli.NewManager(ctx, config.RedisConfig{}, logger)
		require.NoError(t, err)
		defer closeFn()
		_, ok := mgr.Store().(*memory.Store)
		assert.True(t, ok)
	})

	t.Run("redis", func(t *testing.T) {
		mr := miniredis.RunT(t)
		mgr, closeFn, err := cli.NewManager(ctx, config.RedisConfig{Addr: mr.Addr(), Prefix: "test:"}, logger)
		require.NoError(t, err)
		defer closeFn()

		ds, err := mgr.Create(ctx, "tiny.json", []byte(tinyTree))
		require.NoError(t, err)
		assert.True(t, mr.Exists("test:"+ds.ID))
	})

	t.Run("redis encrypted", func(t *testing.T) {
		mr := miniredis.RunT(t)
		key := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
		mgr, closeFn, err := cli.NewManager(ctx, config.RedisConfig{Addr: mr.Addr(), Prefix: "enc:", EncryptionKey: key}, logger)
		require.NoError(t, err)
		defer closeFn()

		ds, err := mgr.Create(ctx, "tiny.json", []byte(tinyTree))
		require.NoError(t, err)
		raw, err := mr.Get("enc:" + ds.ID)
		require.NoError(t, err)
		assert.Contains(t, raw, base64.StdEncoding.EncodeToString([]byte("gtox-enc1")), "payload is sealed")

		tree, err := mgr.Tree(ctx, ds.ID)
		require.NoError(t, err)
		assert.NotNil(t, tree)
	})

	t.Run("bad encryption key", func(t *testing.T) {
		mr := miniredis.RunT(t)
		_, _, err := cli.NewManager(ctx, config.RedisConfig{Addr: mr.Addr(), EncryptionKey: "short"}, logger)
		assert.Error(t, err)
	})

	t.Run("redis unreachable", func(t *testing.T) {
		_, _, err := cli.NewManager(ctx, config.RedisConfig{Addr: "127.0.0.1:1"}, logger)
		assert.Error(t, err)
	})
}

func TestLocalDataset_Open(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tiny.json")
	require.NoError(t, os.WriteFile(path, []byte(tinyTree), 0o644))

	mgr := session.NewManager(memory.NewStore())
	ds := cli.NewLocalDataset(mgr, path, logging.NewNop())

	first, err := ds.Open(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, ds.SessionID())

	second, err := ds.Open(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	_, err = mgr.Tree(ctx, first)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound, "previous session is dropped")

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err = ds.Open(ctx)
	assert.Error(t, err)
	assert.Equal(t, second, ds.SessionID(), "a broken file keeps the current session")
}

func TestWatchDataset_ReloadsOnWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tiny.json")
	require.NoError(t, os.WriteFile(path, []byte(tinyTree), 0o644))

	mgr := session.NewManager(memory.NewStore())
	ds := cli.NewLocalDataset(mgr, path, logging.NewNop())
	_, err := ds.Open(ctx)
	require.NoError(t, err)

	changes, err := cli.WatchDataset(ctx, path, 20*time.Millisecond, logging.NewNop())
	require.NoError(t, err)

	loader := &recordingLoader{}
	done := make(chan struct{})
	go func() {
		ds.ReloadOnChange(ctx, changes, loader)
		close(done)
	}()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(path, []byte(tinyTree), 0o644))

	require.Eventually(t, func() bool { return len(loader.loaded()) == 1 }, 3*time.Second, 10*time.Millisecond)
	assert.Equal(t, ds.SessionID(), loader.loaded()[0])

	cancel()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}
