package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/marine14f/geminipwa-sub000/internal/adapter"
	"github.com/marine14f/geminipwa-sub000/internal/mock"
	"github.com/marine14f/geminipwa-sub000/internal/tui"
)

func TestDiffForPush(t *testing.T) {
	tests := []struct {
		name       string
		local      []string
		remote     []string
		wantUpload []string
		wantDelete []string
	}{
		{name: "both empty", wantUpload: []string{}, wantDelete: []string{}},
		{name: "first push", local: []string{"b", "a"}, wantUpload: []string{"a", "b"}, wantDelete: []string{}},
		{name: "orphans", remote: []string{"x"}, wantUpload: []string{}, wantDelete: []string{"x"}},
		{
			name:       "shared keys untouched",
			local:      []string{"a", "shared", "b"},
			remote:     []string{"shared", "old"},
			wantUpload: []string{"a", "b"},
			wantDelete: []string{"old"},
		},
		{name: "duplicates", local: []string{"a", "a"}, remote: []string{"z", "z"}, wantUpload: []string{"a"}, wantDelete: []string{"z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := DiffForPush(tt.local, tt.remote)
			assert.Equal(t, tt.wantUpload, d.ToUpload)
			assert.Equal(t, tt.wantDelete, d.ToDelete)

			for _, key := range d.ToUpload {
				assert.NotContains(t, tt.remote, key)
			}
			for _, key := range d.ToDelete {
				assert.NotContains(t, tt.local, key)
			}
		})
	}
}

func TestDiffForPull(t *testing.T) {
	assert.Equal(t, []string{"c", "d"}, DiffForPull([]string{"d", "a", "c"}, []string{"a", "b"}))
	assert.Empty(t, DiffForPull(nil, []string{"a"}))
}

func TestSetHelpers(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, union([]string{"c", "a"}, []string{"b", "a"}))
	assert.Equal(t, []string{"a", "c"}, intersection([]string{"c", "a", "x"}, []string{"a", "c", "y"}))
}

type memStore struct {
	adapter.BlobStore

	mu    sync.Mutex
	blobs map[string][]byte
	fail  string
	puts  int
}

func (m *memStore) Put(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.puts++
	if key == m.fail {
		return errors.New("boom")
	}
	m.blobs[key] = data
	return nil
}

func (m *memStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if key == m.fail {
		return nil, errors.New("boom")
	}
	data, ok := m.blobs[key]
	if !ok {
		return nil, adapter.ErrBlobNotFound
	}
	return data, nil
}

func TestAssetTransfer_UploadBatchesWithProgress(t *testing.T) {
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockNotifier(ctrl)

	gomock.InOrder(
		notifier.EXPECT().ShowProgress("Uploading assets"),
		notifier.EXPECT().UpdateProgress("Uploading assets", 0, 5),
		notifier.EXPECT().UpdateProgress("Uploading assets", 2, 5),
		notifier.EXPECT().UpdateProgress("Uploading assets", 4, 5),
		notifier.EXPECT().UpdateProgress("Uploading assets", 5, 5),
		notifier.EXPECT().HideProgress(),
	)

	remote := &memStore{blobs: map[string][]byte{}}
	tr := newAssetTransfer(remote, notifier, 2)

	blobs := map[string][]byte{"a": {1}, "b": {2}, "c": {3}, "d": {4}, "e": {5}}
	require.NoError(t, tr.Upload(context.Background(), []string{"a", "b", "c", "d", "e"}, blobs))
	assert.Equal(t, blobs, remote.blobs)
}

func TestAssetTransfer_UploadAbortsOnFirstFailedBatch(t *testing.T) {
	remote := &memStore{blobs: map[string][]byte{}, fail: "b"}
	tr := newAssetTransfer(remote, &tui.AutoNotifier{}, 2)

	blobs := map[string][]byte{"a": {1}, "b": {2}, "c": {3}, "d": {4}}
	err := tr.Upload(context.Background(), []string{"a", "b", "c", "d"}, blobs)
	require.Error(t, err)

	// the second batch never starts
	assert.LessOrEqual(t, remote.puts, 2)
	assert.NotContains(t, remote.blobs, "c")
	assert.NotContains(t, remote.blobs, "d")
}

func TestAssetTransfer_UploadMissingPayload(t *testing.T) {
	tr := newAssetTransfer(&memStore{blobs: map[string][]byte{}}, &tui.AutoNotifier{}, 0)
	err := tr.Upload(context.Background(), []string{"ghost"}, nil)
	assert.ErrorIs(t, err, ErrInvalidDataProvided)
}

func TestAssetTransfer_Download(t *testing.T) {
	remote := &memStore{blobs: map[string][]byte{"a": {1}, "b": {2}, "c": {3}}}
	tr := newAssetTransfer(remote, &tui.AutoNotifier{}, 2)

	got, err := tr.Download(context.Background(), []string{"a", "c"})
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {1}, "c": {3}}, got)

	_, err = tr.Download(context.Background(), []string{"missing"})
	assert.ErrorIs(t, err, adapter.ErrBlobNotFound)
}

func TestAssetTransfer_NothingToDo(t *testing.T) {
	ctrl := gomock.NewController(t)
	// no progress for an empty step
	tr := newAssetTransfer(mock.NewMockBlobStore(ctrl), mock.NewMockNotifier(ctrl), 5)

	require.NoError(t, tr.Upload(context.Background(), nil, nil))
	require.NoError(t, tr.Delete(context.Background(), nil))
}

func TestAssetTransfer_DeleteInBatches(t *testing.T) {
	ctrl := gomock.NewController(t)
	remote := mock.NewMockBlobStore(ctrl)
	gomock.InOrder(
		remote.EXPECT().DeleteMany(gomock.Any(), []string{"a", "b"}).Return(nil),
		remote.EXPECT().DeleteMany(gomock.Any(), []string{"c"}).Return(nil),
	)

	tr := newAssetTransfer(remote, &tui.AutoNotifier{}, 2)
	require.NoError(t, tr.Delete(context.Background(), []string{"a", "b", "c"}))
}
