package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/config"
	"github.com/marine14f/geminipwa-sub000/internal/logger"
	"github.com/marine14f/geminipwa-sub000/internal/mock"
	"github.com/marine14f/geminipwa-sub000/internal/store"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
	"github.com/marine14f/geminipwa-sub000/models"
)

const (
	testManifestKey = "sync_manifest.json"
	testLockKey     = "sync_lock.json"
)

func testSyncConfig() config.ClientSync {
	return config.ClientSync{
		Mode:               models.SyncModeManual,
		Threshold:          3,
		Debounce:           time.Hour,
		BatchSize:          2,
		ManifestKey:        testManifestKey,
		LockKey:            testLockKey,
		PrivilegedSettings: []string{"apiKey", "syncState"},
	}
}

// seqIDs hands out predictable sync ids.
type seqIDs struct {
	prefix string
	n      atomic.Int64
}

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("%s-%d", g.prefix, g.n.Add(1))
}

type device struct {
	svc     *SyncService
	data    *DataService
	local   store.LocalStore
	reloads atomic.Int64
}

func newTestRemote(t *testing.T) *adapter.FSBlobStore {
	t.Helper()
	remote, err := adapter.NewFSBlobStore(t.TempDir(), "", adapter.Keys{Manifest: testManifestKey, Lock: testLockKey}, logger.Nop())
	require.NoError(t, err)
	return remote
}

func newTestLocal(t *testing.T) store.LocalStore {
	t.Helper()
	storages, err := store.NewClientStorages(context.Background(),
		config.ClientStorage{DB: config.ClientDB{DSN: filepath.Join(t.TempDir(), "local.db")}}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { storages.Close() })
	return storages.LocalStore
}

func newDevice(t *testing.T, name string, remote adapter.BlobStore, notifier tui.Notifier, cfg config.ClientSync) *device {
	t.Helper()
	return newDeviceWithLocal(t, name, newTestLocal(t), remote, notifier, cfg)
}

func newDeviceWithLocal(t *testing.T, name string, local store.LocalStore, remote adapter.BlobStore, notifier tui.Notifier, cfg config.ClientSync) *device {
	t.Helper()

	svc, err := NewSyncService(context.Background(), local, remote, notifier, cfg, logger.Nop())
	require.NoError(t, err)
	svc.ids = &seqIDs{prefix: name}
	t.Cleanup(svc.Close)

	d := &device{svc: svc, local: local}
	d.data = NewDataService(local, svc, &seqIDs{prefix: name + "-rec"}, cfg.PrivilegedSettings)
	svc.OnReload(func() { d.reloads.Add(1) })
	return d
}

// quietNotifier accepts progress and alerts; Confirm must be set up by the
// test.
func quietNotifier(ctrl *gomock.Controller) *mock.MockNotifier {
	n := mock.NewMockNotifier(ctrl)
	n.EXPECT().ShowProgress(gomock.Any()).AnyTimes()
	n.EXPECT().UpdateProgress(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	n.EXPECT().HideProgress().AnyTimes()
	n.EXPECT().Alert(gomock.Any()).AnyTimes()
	return n
}

func rawJSON(v any) json.RawMessage {
	raw, _ := json.Marshal(v)
	return raw
}

func sampleLocalDataset() *models.Dataset {
	created := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	return &models.Dataset{
		Profiles: []models.Profile{
			{ID: "p1", Name: "Cat", SystemPrompt: "meow", Icon: &models.Attachment{MimeType: "image/webp", Data: []byte("icon-bytes")}},
			{ID: "p2", Name: "Dog"},
		},
		Chats: []models.Chat{{
			ID:        "c1",
			ProfileID: "p1",
			Title:     "first",
			Messages: []models.Message{
				{Role: "user", Content: "look", Attachments: []models.Attachment{{MimeType: "image/png", Data: []byte("img-bytes")}}},
				{Role: "model", Content: "nice"},
			},
		}},
		Memories: []models.Memory{{ID: "m1", ProfileID: "p1", Content: "likes fish"}},
		Assets:   []models.Asset{{ID: "a1", Name: "back ground", MimeType: "image/webp", CreatedAt: created, Data: []byte("asset-bytes")}},
		Settings: []models.Setting{
			{Key: "theme", Value: rawJSON("dark")},
			{Key: "apiKey", Value: rawJSON("secret")},
		},
	}
}

func seedLocal(t *testing.T, local store.LocalStore, ds *models.Dataset) {
	t.Helper()
	require.NoError(t, local.WriteDataset(context.Background(), ds))
}

func readRemoteManifest(t *testing.T, remote adapter.BlobStore) *models.Manifest {
	t.Helper()
	raw, err := remote.Get(context.Background(), testManifestKey)
	require.NoError(t, err)
	m, err := ParseManifest(raw)
	require.NoError(t, err)
	return m
}

func settingValue(t *testing.T, local store.LocalStore, key string) (string, bool) {
	t.Helper()
	s, err := store.GetEntity[models.Setting](context.Background(), local.Collection(models.CollectionSettings), key)
	if err != nil {
		return "", false
	}
	var v string
	require.NoError(t, json.Unmarshal(s.Value, &v))
	return v, true
}
