// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/marine14f/geminipwa-sub000/internal/mock"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
	"github.com/marine14f/geminipwa-sub000/models"
)

// A first push creates the remote manifest and adopts
// its syncId.
func TestSyncService_FirstPush(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	d1 := newDevice(t, "d1", remote, &tui.AutoNotifier{}, testSyncConfig())
	seedLocal(t, d1.local, sampleLocalDataset())
	require.NoError(t, d1.svc.MarkDirty(ctx))

	require.NoError(t, d1.svc.Push(ctx))

	m := readRemoteManifest(t, remote)
	assert.Equal(t, "d1-1", m.SyncID)

	st := d1.svc.State()
	assert.Equal(t, "d1-1", st.LastSyncIDValue())
	assert.False(t, st.IsDirty)
	assert.False(t, st.IsSyncing)
	assert.Nil(t, st.LastError)
	assert.NotNil(t, st.LastSyncedAt)

	// every referenced key exists remotely
	keys, err := remote.List(ctx)
	require.NoError(t, err)
	assert.Subset(t, keys, RequiredAssetKeys(m))
	assert.Len(t, keys, 3)

	// privileged settings never leave the device
	for _, s := range m.Data.Settings {
		assert.NotEqual(t, "apiKey", s.Key)
		assert.NotEqual(t, SyncStateKey, s.Key)
	}

	lock, err := remote.GetLock(ctx)
	require.NoError(t, err)
	assert.Nil(t, lock)

	// keys were written back locally
	p, err := d1.data.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "profile_p1_icon.webp", p.Profiles[0].IconAssetKey)
	assert.Equal(t, "asset_back_ground_1768032000000.webp", p.Assets[0].AssetKey)
	assert.NotEmpty(t, p.Chats[0].Messages[0].Attachments[0].AssetKey)

	// the state survives a restart
	again, err := loadSyncState(ctx, d1.local)
	require.NoError(t, err)
	assert.Equal(t, "d1-1", again.LastSyncIDValue())
	assert.False(t, again.IsDirty)
}

// An empty device adopts the remote dataset, and a second
// pull with no remote write does not replace anything.
func TestSyncService_PullAdoptsRemote(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)

	d1 := newDevice(t, "d1", remote, &tui.AutoNotifier{}, testSyncConfig())
	seedLocal(t, d1.local, sampleLocalDataset())
	require.NoError(t, d1.svc.Push(ctx))

	ctrl := gomock.NewController(t)
	d2 := newDevice(t, "d2", remote, quietNotifier(ctrl), testSyncConfig())
	require.NoError(t, d2.data.PutSetting(ctx, "apiKey", rawJSON("d2-secret")))

	require.NoError(t, d2.svc.Pull(ctx))

	want, err := d1.data.Export(ctx)
	require.NoError(t, err)
	got, err := d2.data.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	st := d2.svc.State()
	assert.Equal(t, "d1-1", st.LastSyncIDValue())
	assert.False(t, st.IsDirty)
	assert.EqualValues(t, 1, d2.reloads.Load())

	apiKey, ok := settingValue(t, d2.local, "apiKey")
	require.True(t, ok)
	assert.Equal(t, "d2-secret", apiKey)

	require.NoError(t, d2.svc.Pull(ctx))
	assert.EqualValues(t, 1, d2.reloads.Load())
	assert.Equal(t, "d1-1", d2.svc.State().LastSyncIDValue())
}

// A declined conflict leaves the remote alone and the device
// dirty.
func TestSyncService_PushConflictDeclined(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	ctrl := gomock.NewController(t)

	n1 := quietNotifier(ctrl)
	d1 := newDevice(t, "d1", remote, n1, testSyncConfig())
	seedLocal(t, d1.local, sampleLocalDataset())
	require.NoError(t, d1.svc.Push(ctx))

	d2 := newDevice(t, "d2", remote, quietNotifier(ctrl), testSyncConfig())
	require.NoError(t, d2.svc.Pull(ctx))

	_, err := d1.data.PutMemory(ctx, models.Memory{Content: "local only"})
	require.NoError(t, err)
	assert.True(t, d1.svc.State().IsDirty)

	// structural edit on d2 pushes right away
	require.NoError(t, d2.data.RenameProfile(ctx, "p2", "Puppy"))
	assert.Equal(t, "d2-1", readRemoteManifest(t, remote).SyncID)

	n1.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(false, nil)
	err = d1.svc.Push(ctx)
	require.ErrorIs(t, err, ErrConflictDeclined)

	assert.Equal(t, "d2-1", readRemoteManifest(t, remote).SyncID)
	st := d1.svc.State()
	assert.True(t, st.IsDirty)
	assert.Nil(t, st.LastError)
	assert.Equal(t, "d1-1", st.LastSyncIDValue())

	lock, err := remote.GetLock(ctx)
	require.NoError(t, err)
	assert.Nil(t, lock)
}

func TestSyncService_PushConflictAccepted(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	ctrl := gomock.NewController(t)

	d2 := newDevice(t, "d2", remote, quietNotifier(ctrl), testSyncConfig())
	seedLocal(t, d2.local, &models.Dataset{Memories: []models.Memory{{ID: "m9", Content: "other"}}})
	require.NoError(t, d2.svc.Push(ctx))

	n1 := quietNotifier(ctrl)
	d1 := newDevice(t, "d1", remote, n1, testSyncConfig())
	seedLocal(t, d1.local, sampleLocalDataset())

	n1.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(true, nil)
	require.NoError(t, d1.svc.Push(ctx))

	m := readRemoteManifest(t, remote)
	assert.Equal(t, "d1-1", m.SyncID)
	require.Len(t, m.Data.Memories, 1)
	assert.Equal(t, "m1", m.Data.Memories[0].ID)
}

// Export then import on the same device returns the same entities,
// apart from newly assigned asset keys.
func TestDataService_ExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := newDevice(t, "d1", newTestRemote(t), &tui.AutoNotifier{}, testSyncConfig())

	original := sampleLocalDataset()
	require.NoError(t, d.data.Import(ctx, original))

	exported, err := d.data.Export(ctx)
	require.NoError(t, err)

	// Import pushed, so every binary now carries a key
	assert.NotEmpty(t, exported.Profiles[0].Icon.AssetKey)
	assert.NotEmpty(t, exported.Assets[0].AssetKey)

	stripKeys(exported)
	assert.Equal(t, original.Profiles, exported.Profiles)
	assert.Equal(t, original.Chats, exported.Chats)
	assert.Equal(t, original.Memories, exported.Memories)
	assert.Equal(t, original.Assets, exported.Assets)
	assert.Equal(t, removeSetting(original.Settings, "apiKey"), exported.Settings)
}

func stripKeys(ds *models.Dataset) {
	for i := range ds.Profiles {
		ds.Profiles[i].IconAssetKey = ""
		if ds.Profiles[i].Icon != nil {
			ds.Profiles[i].Icon.AssetKey = ""
		}
	}
	for i := range ds.Chats {
		for j := range ds.Chats[i].Messages {
			for k := range ds.Chats[i].Messages[j].Attachments {
				ds.Chats[i].Messages[j].Attachments[k].AssetKey = ""
			}
		}
	}
	for i := range ds.Assets {
		ds.Assets[i].AssetKey = ""
	}
}

func removeSetting(settings []models.Setting, key string) []models.Setting {
	out := make([]models.Setting, 0, len(settings))
	for _, s := range settings {
		if s.Key != key {
			out = append(out, s)
		}
	}
	return out
}

// A push lock left by a crash is resumed at startup without asking,
// even when the remote moved on.
func TestSyncService_StartupResumesInterruptedPush(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	ctrl := gomock.NewController(t)

	other := newDevice(t, "other", remote, &tui.AutoNotifier{}, testSyncConfig())
	seedLocal(t, other.local, &models.Dataset{Memories: []models.Memory{{ID: "x", Content: "x"}}})
	require.NoError(t, other.svc.Push(ctx))

	// no Confirm expectation: any prompt fails the test
	d1 := newDevice(t, "d1", remote, quietNotifier(ctrl), testSyncConfig())
	seedLocal(t, d1.local, sampleLocalDataset())
	require.NoError(t, remote.PutLock(ctx, models.LockRecord{Operation: models.LockPush, Timestamp: "2026-01-01T00:00:00Z"}))

	require.NoError(t, d1.svc.Startup(ctx))

	assert.Equal(t, "d1-1", readRemoteManifest(t, remote).SyncID)
	st := d1.svc.State()
	assert.False(t, st.IsDirty)
	assert.Equal(t, "d1-1", st.LastSyncIDValue())

	lock, err := remote.GetLock(ctx)
	require.NoError(t, err)
	assert.Nil(t, lock)
}

func TestSyncService_StartupResumesInterruptedPull(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	ctrl := gomock.NewController(t)

	d1 := newDevice(t, "d1", remote, &tui.AutoNotifier{}, testSyncConfig())
	seedLocal(t, d1.local, sampleLocalDataset())
	require.NoError(t, d1.svc.Push(ctx))

	d2 := newDevice(t, "d2", remote, quietNotifier(ctrl), testSyncConfig())
	_, err := d2.data.PutMemory(ctx, models.Memory{Content: "dirty"})
	require.NoError(t, err)
	require.NoError(t, remote.PutLock(ctx, models.LockRecord{Operation: models.LockPull}))

	require.NoError(t, d2.svc.Startup(ctx))

	assert.Equal(t, "d1-1", d2.svc.State().LastSyncIDValue())
	assert.False(t, d2.svc.State().IsDirty)
	assert.EqualValues(t, 1, d2.reloads.Load())
}

func TestSyncService_StartupWithoutLockPulls(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)

	d1 := newDevice(t, "d1", remote, &tui.AutoNotifier{}, testSyncConfig())
	seedLocal(t, d1.local, sampleLocalDataset())
	require.NoError(t, d1.svc.Push(ctx))

	d2 := newDevice(t, "d2", remote, &tui.AutoNotifier{}, testSyncConfig())
	require.NoError(t, d2.svc.Startup(ctx))
	assert.Equal(t, "d1-1", d2.svc.State().LastSyncIDValue())
}

func TestSyncService_StartupUnknownLock(t *testing.T) {
	tests := []struct {
		name        string
		answers     []bool
		wantSyncID  string
		wantRecover error
	}{
		{name: "adopt remote", answers: []bool{true}, wantSyncID: "other-1"},
		{name: "overwrite remote", answers: []bool{false, true}, wantSyncID: "d1-1"},
		{name: "drop lock only", answers: []bool{false, false}, wantSyncID: "", wantRecover: ErrRecoveryDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			remote := newTestRemote(t)
			ctrl := gomock.NewController(t)

			other := newDevice(t, "other", remote, &tui.AutoNotifier{}, testSyncConfig())
			seedLocal(t, other.local, &models.Dataset{Memories: []models.Memory{{ID: "x", Content: "x"}}})
			require.NoError(t, other.svc.Push(ctx))

			n := quietNotifier(ctrl)
			var calls []any
			for _, answer := range tt.answers {
				calls = append(calls, n.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(answer, nil))
			}
			gomock.InOrder(calls...)

			d1 := newDevice(t, "d1", remote, n, testSyncConfig())
			seedLocal(t, d1.local, sampleLocalDataset())
			require.NoError(t, remote.PutLock(ctx, models.LockRecord{Operation: "legacy"}))

			err := d1.svc.Recover(ctx)
			if tt.wantRecover != nil {
				require.ErrorIs(t, err, tt.wantRecover)
				assert.Equal(t, "other-1", readRemoteManifest(t, remote).SyncID)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantSyncID, readRemoteManifest(t, remote).SyncID)
			}
			assert.Equal(t, tt.wantSyncID, d1.svc.State().LastSyncIDValue())

			lock, err := remote.GetLock(ctx)
			require.NoError(t, err)
			assert.Nil(t, lock)
		})
	}
}

func TestSyncService_PullBootstrapsEmptyRemote(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	d1 := newDevice(t, "d1", remote, &tui.AutoNotifier{}, testSyncConfig())
	seedLocal(t, d1.local, sampleLocalDataset())

	require.NoError(t, d1.svc.Pull(ctx))

	assert.Equal(t, "d1-1", readRemoteManifest(t, remote).SyncID)
	assert.Equal(t, "d1-1", d1.svc.State().LastSyncIDValue())
	assert.Zero(t, d1.reloads.Load())
}

func TestSyncService_PullBothEmpty(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	d1 := newDevice(t, "d1", remote, &tui.AutoNotifier{}, testSyncConfig())
	// privileged settings alone do not count as data
	require.NoError(t, d1.data.PutSetting(ctx, "apiKey", rawJSON("k")))

	require.NoError(t, d1.svc.Pull(ctx))

	_, err := remote.Get(ctx, testManifestKey)
	assert.Error(t, err)
	assert.Nil(t, d1.svc.State().LastSyncID)
}

func TestSyncService_PullWhileDirty(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	ctrl := gomock.NewController(t)

	d1 := newDevice(t, "d1", remote, &tui.AutoNotifier{}, testSyncConfig())
	seedLocal(t, d1.local, sampleLocalDataset())
	require.NoError(t, d1.svc.Push(ctx))

	n2 := quietNotifier(ctrl)
	d2 := newDevice(t, "d2", remote, n2, testSyncConfig())
	_, err := d2.data.PutMemory(ctx, models.Memory{ID: "mine", Content: "local"})
	require.NoError(t, err)

	n2.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(false, nil)
	require.ErrorIs(t, d2.svc.Pull(ctx), ErrReplaceDeclined)
	assert.True(t, d2.svc.State().IsDirty)
	assert.Nil(t, d2.svc.State().LastError)
	_, err = d2.local.Collection(models.CollectionMemories).Get(ctx, "mine")
	require.NoError(t, err)

	n2.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(true, nil)
	require.NoError(t, d2.svc.Pull(ctx))
	assert.False(t, d2.svc.State().IsDirty)
	_, err = d2.local.Collection(models.CollectionMemories).Get(ctx, "mine")
	assert.Error(t, err)
}

func TestSyncService_PullCorruptManifest(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	ctrl := gomock.NewController(t)
	require.NoError(t, remote.Put(ctx, testManifestKey, []byte(`{"version":"9.9"}`)))

	n := mock.NewMockNotifier(ctrl)
	n.EXPECT().Alert(gomock.Any())
	d := newDevice(t, "d1", remote, n, testSyncConfig())
	seedLocal(t, d.local, sampleLocalDataset())

	err := d.svc.Pull(ctx)
	require.ErrorIs(t, err, ErrCorruptManifest)

	st := d.svc.State()
	require.NotNil(t, st.LastError)
	assert.Equal(t, models.PhaseError, st.Phase())

	ds, err := d.data.Export(ctx)
	require.NoError(t, err)
	assert.Len(t, ds.Profiles, 2)
}

func TestSyncService_PushOverCorruptManifestAsks(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	ctrl := gomock.NewController(t)
	require.NoError(t, remote.Put(ctx, testManifestKey, []byte(`garbage`)))

	n := quietNotifier(ctrl)
	n.EXPECT().Confirm(gomock.Any(), gomock.Any()).Return(true, nil)
	d := newDevice(t, "d1", remote, n, testSyncConfig())
	seedLocal(t, d.local, sampleLocalDataset())

	require.NoError(t, d.svc.Push(ctx))
	assert.Equal(t, "d1-1", readRemoteManifest(t, remote).SyncID)
}

func TestSyncService_PushDeletesOrphans(t *testing.T) {
	ctx := context.Background()
	remote := newTestRemote(t)
	d := newDevice(t, "d1", remote, &tui.AutoNotifier{}, testSyncConfig())
	seedLocal(t, d.local, sampleLocalDataset())
	require.NoError(t, d.svc.Push(ctx))

	require.NoError(t, d.data.DeleteChat(ctx, "c1"))

	keys, err := remote.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"asset_back_ground_1768032000000.webp", "profile_p1_icon.webp"}, keys)
	assert.Equal(t, "d1-2", d.svc.State().LastSyncIDValue())
}
