package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/mock"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
	"github.com/marine14f/geminipwa-sub000/models"
)

var errNetwork = errors.New("dial tcp 10.0.0.1:443: connect: connection refused")

func notFound(key string) error {
	return fmt.Errorf("%w: %s", adapter.ErrBlobNotFound, key)
}

// When an asset upload fails the manifest is never written, so no
// reader can see a manifest pointing at a missing blob.
func TestSyncService_FailedUploadNeverCommitsManifest(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)
	notifier := quietNotifier(ctrl)

	d := newDevice(t, "d1", remote, notifier, testSyncConfig())
	seedLocal(t, d.local, &models.Dataset{Profiles: []models.Profile{
		{ID: "p1", Name: "Cat", Icon: &models.Attachment{Data: []byte("icon")}},
	}})
	require.NoError(t, d.svc.MarkDirty(ctx))

	remote.EXPECT().PutLock(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, l models.LockRecord) error {
		assert.Equal(t, models.LockPush, l.Operation)
		return nil
	})
	remote.EXPECT().Get(gomock.Any(), testManifestKey).Return(nil, notFound(testManifestKey))
	remote.EXPECT().List(gomock.Any()).Return([]string{}, nil)
	remote.EXPECT().Put(gomock.Any(), "profile_p1_icon.webp", []byte("icon")).Return(errNetwork)
	// no Put of the manifest and no DeleteMany are expected
	remote.EXPECT().DeleteLock(gomock.Any()).Return(nil)

	err := d.svc.Push(ctx)
	require.ErrorIs(t, err, errNetwork)

	st := d.svc.State()
	assert.True(t, st.IsDirty)
	assert.False(t, st.IsSyncing)
	require.NotNil(t, st.LastError)
	assert.Contains(t, st.LastError.Message, "upload assets")
	assert.Nil(t, st.LastSyncID)

	// the assigned key is kept locally anyway
	p, err := d.data.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "profile_p1_icon.webp", p.Profiles[0].IconAssetKey)
}

func TestSyncService_ManifestUploadIsLast(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)

	d := newDevice(t, "d1", remote, quietNotifier(ctrl), testSyncConfig())
	seedLocal(t, d.local, &models.Dataset{Assets: []models.Asset{
		{ID: "a1", Name: "bg", CreatedAt: time.UnixMilli(42).UTC(), Data: []byte("bg")},
	}})

	gomock.InOrder(
		remote.EXPECT().PutLock(gomock.Any(), gomock.Any()).Return(nil),
		remote.EXPECT().Get(gomock.Any(), testManifestKey).Return(nil, notFound(testManifestKey)),
		remote.EXPECT().List(gomock.Any()).Return([]string{"old_orphan"}, nil),
		remote.EXPECT().Put(gomock.Any(), "asset_bg_42.webp", []byte("bg")).Return(nil),
		remote.EXPECT().DeleteMany(gomock.Any(), []string{"old_orphan"}).Return(nil),
		remote.EXPECT().Put(gomock.Any(), testManifestKey, gomock.Any()).DoAndReturn(func(_ context.Context, _ string, raw []byte) error {
			m, err := ParseManifest(raw)
			require.NoError(t, err)
			assert.Equal(t, []string{"asset_bg_42.webp"}, RequiredAssetKeys(m))
			return nil
		}),
		remote.EXPECT().DeleteLock(gomock.Any()).Return(nil),
	)

	require.NoError(t, d.svc.Push(ctx))
	assert.Equal(t, "d1-1", d.svc.State().LastSyncIDValue())
}

func TestSyncService_PushKeepsRemoteOnlyReferencedAssets(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)

	d := newDevice(t, "d1", remote, quietNotifier(ctrl), testSyncConfig())
	// keyed but without a local payload
	seedLocal(t, d.local, &models.Dataset{Profiles: []models.Profile{
		{ID: "p1", Name: "Cat", IconAssetKey: "profile_p1_icon.webp", Icon: &models.Attachment{AssetKey: "profile_p1_icon.webp"}},
	}})

	remote.EXPECT().PutLock(gomock.Any(), gomock.Any()).Return(nil)
	remote.EXPECT().Get(gomock.Any(), testManifestKey).Return(nil, notFound(testManifestKey))
	remote.EXPECT().List(gomock.Any()).Return([]string{"profile_p1_icon.webp"}, nil)
	remote.EXPECT().Put(gomock.Any(), testManifestKey, gomock.Any()).Return(nil)
	remote.EXPECT().DeleteLock(gomock.Any()).Return(nil)

	require.NoError(t, d.svc.Push(ctx))
}

func TestSyncService_PushRefusesDanglingReference(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)

	d := newDevice(t, "d1", remote, quietNotifier(ctrl), testSyncConfig())
	seedLocal(t, d.local, &models.Dataset{Assets: []models.Asset{{ID: "a1", AssetKey: "asset_gone_1.webp"}}})

	remote.EXPECT().PutLock(gomock.Any(), gomock.Any()).Return(nil)
	remote.EXPECT().Get(gomock.Any(), testManifestKey).Return(nil, notFound(testManifestKey))
	remote.EXPECT().List(gomock.Any()).Return([]string{}, nil)
	remote.EXPECT().DeleteLock(gomock.Any()).Return(nil)

	require.ErrorIs(t, d.svc.Push(ctx), ErrInvalidDataProvided)
}

func TestSyncService_LockWriteFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)
	notifier := mock.NewMockNotifier(ctrl)
	notifier.EXPECT().Alert(gomock.Any()).Do(func(msg string) {
		assert.Contains(t, msg, "unreachable")
	})

	d := newDevice(t, "d1", remote, notifier, testSyncConfig())
	remote.EXPECT().PutLock(gomock.Any(), gomock.Any()).Return(errNetwork)

	require.ErrorIs(t, d.svc.Pull(ctx), errNetwork)
	assert.NotNil(t, d.svc.State().LastError)
}

func TestSyncService_DeleteLockFailureDoesNotFailSync(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)

	d := newDevice(t, "d1", remote, quietNotifier(ctrl), testSyncConfig())
	remote.EXPECT().PutLock(gomock.Any(), gomock.Any()).Return(nil)
	remote.EXPECT().Get(gomock.Any(), testManifestKey).Return(nil, notFound(testManifestKey))
	remote.EXPECT().DeleteLock(gomock.Any()).Return(errNetwork)

	require.NoError(t, d.svc.Pull(ctx))
}

func TestSyncService_PullDownloadFailureKeepsLocal(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)

	d := newDevice(t, "d1", remote, quietNotifier(ctrl), testSyncConfig())
	seedLocal(t, d.local, &models.Dataset{Memories: []models.Memory{{ID: "keep", Content: "me"}}})

	raw, err := EncodeManifest(BuildManifest(&models.Dataset{
		Assets: []models.Asset{{ID: "a1", AssetKey: "asset_x_1.webp"}},
	}, "remote-1", time.Now()))
	require.NoError(t, err)

	remote.EXPECT().PutLock(gomock.Any(), gomock.Any()).Return(nil)
	remote.EXPECT().Get(gomock.Any(), testManifestKey).Return(raw, nil)
	remote.EXPECT().Get(gomock.Any(), "asset_x_1.webp").Return(nil, errNetwork)
	remote.EXPECT().DeleteLock(gomock.Any()).Return(nil)

	require.ErrorIs(t, d.svc.Pull(ctx), errNetwork)

	_, err = d.local.Collection(models.CollectionMemories).Get(ctx, "keep")
	require.NoError(t, err)
	assert.Nil(t, d.svc.State().LastSyncID)
}

func TestSyncService_TriggerDroppedWhileSyncing(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	// any remote call fails the test
	d := newDevice(t, "d1", mock.NewMockBlobStore(ctrl), &tui.AutoNotifier{}, testSyncConfig())

	require.NoError(t, d.svc.begin())

	assert.ErrorIs(t, d.svc.Push(ctx), ErrSyncInProgress)
	assert.ErrorIs(t, d.svc.Pull(ctx), ErrSyncInProgress)
	assert.ErrorIs(t, d.svc.ForcePush(ctx), ErrSyncInProgress)

	require.NoError(t, d.svc.MarkDirty(ctx))
	assert.False(t, d.svc.State().IsDirty)
	assert.Equal(t, models.PhaseSyncing, d.svc.State().Phase())

	// the missed mutation is applied once the sync ends
	d.svc.end(ctx)
	assert.True(t, d.svc.State().IsDirty)
	assert.False(t, d.svc.State().IsSyncing)
}

func TestSyncService_OnNetworkRestored(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)
	d := newDevice(t, "d1", remote, quietNotifier(ctrl), testSyncConfig())

	// clean state: nothing to do, no remote calls
	require.NoError(t, d.svc.OnNetworkRestored(ctx))

	require.NoError(t, d.svc.MarkDirty(ctx))
	remote.EXPECT().PutLock(gomock.Any(), gomock.Any()).Return(nil)
	remote.EXPECT().Get(gomock.Any(), testManifestKey).Return(nil, notFound(testManifestKey))
	remote.EXPECT().List(gomock.Any()).Return(nil, nil)
	remote.EXPECT().Put(gomock.Any(), testManifestKey, gomock.Any()).Return(nil)
	remote.EXPECT().DeleteLock(gomock.Any()).Return(nil)

	require.NoError(t, d.svc.OnNetworkRestored(ctx))
	assert.False(t, d.svc.State().IsDirty)
}

func TestSyncService_StartupLockReadFailure(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)
	remote.EXPECT().GetLock(gomock.Any()).Return(nil, errNetwork)

	d := newDevice(t, "d1", remote, &tui.AutoNotifier{}, testSyncConfig())
	require.ErrorIs(t, d.svc.Startup(ctx), errNetwork)
}
