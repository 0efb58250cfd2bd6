package adapter

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/models"
)

func newTestFSStore(t *testing.T) (*FSBlobStore, string) {
	t.Helper()
	dir := t.TempDir()
	s, err := NewFSBlobStore(dir, "", testKeys, logger.Nop())
	require.NoError(t, err)
	return s, dir
}

func TestFSBlobStore_PutGetList(t *testing.T) {
	s, dir := newTestFSStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "img_2_b", []byte("two")))
	require.NoError(t, s.Put(ctx, "img_1_a", []byte("one")))
	require.NoError(t, s.Put(ctx, testKeys.Manifest, []byte("{}")))
	require.NoError(t, s.PutLock(ctx, models.LockRecord{Operation: models.LockPull}))
	// stray temp file from a crashed writer
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".img_3.tmp-1"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	got, err := s.Get(ctx, "img_1_a")
	require.NoError(t, err)
	assert.Equal(t, []byte("one"), got)

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"img_1_a", "img_2_b"}, keys)

	_, err = s.Get(ctx, "nope")
	require.ErrorIs(t, err, ErrBlobNotFound)
}

func TestFSBlobStore_DeleteMany(t *testing.T) {
	s, _ := newTestFSStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", []byte("1")))
	require.NoError(t, s.Put(ctx, "b", []byte("2")))

	require.NoError(t, s.DeleteMany(ctx, []string{"a", "missing"}))

	keys, err := s.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)

	require.ErrorIs(t, s.DeleteMany(ctx, []string{"../b"}), ErrInvalidKey)
}

func TestFSBlobStore_Lock(t *testing.T) {
	s, dir := newTestFSStore(t)
	ctx := context.Background()

	lock, err := s.GetLock(ctx)
	require.NoError(t, err)
	assert.Nil(t, lock)

	require.NoError(t, s.PutLock(ctx, models.LockRecord{Operation: models.LockPush, Timestamp: "t"}))
	lock, err = s.GetLock(ctx)
	require.NoError(t, err)
	assert.Equal(t, &models.LockRecord{Operation: models.LockPush, Timestamp: "t"}, lock)

	require.NoError(t, os.WriteFile(filepath.Join(dir, testKeys.Lock), []byte(`{"op":"push"}`), 0o600))
	lock, err = s.GetLock(ctx)
	require.NoError(t, err)
	require.NotNil(t, lock)
	assert.False(t, lock.Known())

	require.NoError(t, s.DeleteLock(ctx))
	require.NoError(t, s.DeleteLock(ctx))
	lock, err = s.GetLock(ctx)
	require.NoError(t, err)
	assert.Nil(t, lock)
}

func TestFSBlobStore_Prefix(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	mine, err := NewFSBlobStore(dir, "me_", testKeys, logger.Nop())
	require.NoError(t, err)
	theirs, err := NewFSBlobStore(dir, "you_", testKeys, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, mine.Put(ctx, "k1", []byte("1")))
	require.NoError(t, theirs.Put(ctx, "k2", []byte("2")))

	keys, err := mine.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"k1"}, keys)

	_, err = os.Stat(filepath.Join(dir, "me_k1"))
	require.NoError(t, err)
}

func TestFSBlobStore_Ping(t *testing.T) {
	s, dir := newTestFSStore(t)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, os.RemoveAll(dir))
	require.Error(t, s.Ping(context.Background()))
}

func TestFSBlobStore_WatchReportsManifestChanges(t *testing.T) {
	s, _ := newTestFSStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int32
	done := make(chan error, 1)
	go func() {
		done <- s.Watch(ctx, func() { changes.Add(1) })
	}()

	// give the watcher time to register
	time.Sleep(100 * time.Millisecond)

	require.NoError(t, s.Put(context.Background(), "img_1_a", []byte("asset")))
	require.NoError(t, s.Put(context.Background(), testKeys.Manifest, []byte(`{"version":"2.0"}`)))

	assert.Eventually(t, func() bool { return changes.Load() >= 1 }, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestNewBlobStore(t *testing.T) {
	syncCfg := config.ClientSync{ManifestKey: "m.json", LockKey: "l.json"}

	s, err := NewBlobStore(config.ClientRemote{Backend: config.BackendFS, Dir: t.TempDir()}, syncCfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &FSBlobStore{}, s)

	s, err = NewBlobStore(config.ClientRemote{Backend: config.BackendHTTP, HTTPAddress: "localhost:8080"}, syncCfg, logger.Nop())
	require.NoError(t, err)
	assert.IsType(t, &httpBlobStore{}, s)

	_, err = NewBlobStore(config.ClientRemote{Backend: "ftp"}, syncCfg, logger.Nop())
	require.Error(t, err)
}

func TestValidateKey(t *testing.T) {
	for _, ok := range []string{"img_1_abc", "profile_p-1_icon.webp", "sync_manifest.json", "asset_a b_1.webp"} {
		assert.NoError(t, ValidateKey(ok), ok)
	}
	for _, bad := range []string{"", ".", "..", ".hidden", "a/b", `a\b`, "a\x00b"} {
		assert.ErrorIs(t, ValidateKey(bad), ErrInvalidKey, bad)
	}
}
