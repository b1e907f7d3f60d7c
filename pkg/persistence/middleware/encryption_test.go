package middleware_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"testing"
	"time"

	"github.com/EricFan2002/GTOJsonExplorer/pkg/adapters/memory"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/persistence/middleware"
	"github.com/EricFan2002/GTOJsonExplorer/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func encrypted(t *testing.T, next ports.DatasetStore, cfg middleware.EncryptionConfig) ports.DatasetStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(next, mw)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	payload := []byte(`{"node_type":"action_node","actions":["CHECK"]}`)
	require.NoError(t, secure.Save(ctx, &ports.Dataset{
		ID: "s1", Filename: "flop.json", CreatedAt: time.Now(), Data: payload,
	}))

	raw, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "flop.json", raw.Filename)
	assert.False(t, bytes.Contains(raw.Data, []byte("action_node")), "payload stored in clear")

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, payload, loaded.Data)

	ids, err := secure.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	old := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, old.Save(ctx, &ports.Dataset{ID: "s1", Data: []byte("old")}))

	rotated := encrypted(t, underlying, middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	d, err := rotated.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), d.Data)

	require.NoError(t, rotated.Save(ctx, &ports.Dataset{ID: "s1", Data: []byte("new")}))
	_, err = old.Load(ctx, "s1")
	assert.Error(t, err, "old key alone must not read data sealed with the new key")
}

func TestEncryptionMiddleware_RejectsPlainPayload(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, &ports.Dataset{ID: "plain", Data: []byte("{}")}))

	secure := encrypted(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := secure.Load(ctx, "plain")
	assert.ErrorContains(t, err, "not encrypted")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.Error(t, err)
}

func TestParseKeys(t *testing.T) {
	active := base64.StdEncoding.EncodeToString(generateKey(t))
	fallback := base64.StdEncoding.EncodeToString(generateKey(t))

	cfg, err := middleware.ParseKeys(active, fallback)
	require.NoError(t, err)
	assert.Len(t, cfg.ActiveKey, 32)
	assert.Len(t, cfg.FallbackKeys, 1)

	_, err = middleware.ParseKeys("not base64!")
	assert.Error(t, err)
	_, err = middleware.ParseKeys(base64.StdEncoding.EncodeToString([]byte("short")))
	assert.Error(t, err)
}
