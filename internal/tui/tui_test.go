package tui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marine14f/geminipwa-sub000/models"
)

func runeKey(r string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(r)}
}

func TestConfirmModel_Update(t *testing.T) {
	tests := []struct {
		name       string
		msg        tea.Msg
		wantAnswer bool
		wantDone   bool
	}{
		{name: "yes", msg: runeKey("y"), wantAnswer: true, wantDone: true},
		{name: "upper yes", msg: runeKey("Y"), wantAnswer: true, wantDone: true},
		{name: "no", msg: runeKey("n"), wantAnswer: false, wantDone: true},
		{name: "esc", msg: tea.KeyMsg{Type: tea.KeyEsc}, wantAnswer: false, wantDone: true},
		{name: "ctrl+c", msg: tea.KeyMsg{Type: tea.KeyCtrlC}, wantAnswer: false, wantDone: true},
		{name: "other key ignored", msg: runeKey("x"), wantDone: false},
		{name: "non key ignored", msg: tea.WindowSizeMsg{Width: 80}, wantDone: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newConfirmModel("Overwrite remote?")
			updated, cmd := m.Update(tt.msg)

			got := updated.(confirmModel)
			assert.Equal(t, tt.wantDone, got.done)
			assert.Equal(t, tt.wantAnswer, got.answer)
			if tt.wantDone {
				require.NotNil(t, cmd)
				assert.IsType(t, tea.QuitMsg{}, cmd())
			} else {
				assert.Nil(t, cmd)
			}
		})
	}
}

func TestConfirmModel_View(t *testing.T) {
	m := newConfirmModel("Overwrite remote?")
	assert.Contains(t, m.View(), "Overwrite remote?")
	assert.Contains(t, m.View(), "y yes")

	m.done = true
	assert.Empty(t, m.View())
}

func TestRenderProgressLine(t *testing.T) {
	bar := progress.New(progress.WithWidth(10))

	line := renderProgressLine(bar, "Uploading", 2, 4)
	assert.True(t, strings.HasPrefix(line, "Uploading "))
	assert.True(t, strings.HasSuffix(line, " 2/4"))
	assert.Contains(t, line, "50%")

	assert.Contains(t, renderProgressLine(bar, "Nothing", 0, 0), "100%")
}

func TestTerminalNotifier_Progress(t *testing.T) {
	var out bytes.Buffer
	n := NewTerminalNotifierWithIO(strings.NewReader(""), &out)

	// ignored before ShowProgress
	n.UpdateProgress("Uploading", 1, 2)
	assert.Empty(t, out.String())

	n.ShowProgress("Uploading assets")
	n.UpdateProgress("Uploading", 1, 2)
	n.HideProgress()
	n.HideProgress()

	s := out.String()
	assert.Contains(t, s, "Uploading assets")
	assert.Contains(t, s, "1/2")
	assert.True(t, strings.HasSuffix(s, "\n"))
}

func TestTerminalNotifier_Alert(t *testing.T) {
	var out bytes.Buffer
	n := NewTerminalNotifierWithIO(strings.NewReader(""), &out)

	n.Alert("remote manifest is corrupt")
	assert.Contains(t, out.String(), "remote manifest is corrupt")
}

func TestAutoNotifier(t *testing.T) {
	yes := &AutoNotifier{Answer: true}
	ok, err := yes.Confirm(context.Background(), "overwrite?")
	require.NoError(t, err)
	assert.True(t, ok)

	no := &AutoNotifier{}
	ok, err = no.Confirm(context.Background(), "overwrite?")
	require.NoError(t, err)
	assert.False(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = yes.Confirm(ctx, "overwrite?")
	require.ErrorIs(t, err, context.Canceled)

	// no panics without a logger
	no.ShowProgress("x")
	no.UpdateProgress("x", 1, 1)
	no.HideProgress()
	no.Alert("x")
}

func TestRenderSyncStatus(t *testing.T) {
	id := "0190-abc"
	synced := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	page := RenderSyncStatus(models.SyncState{LastSyncID: &id, LastSyncedAt: &synced, MutationCount: 3}, models.SyncModeInstant)
	assert.Contains(t, page, "idle")
	assert.Contains(t, page, "0190-abc")
	assert.Contains(t, page, "instant")
	assert.Contains(t, page, "3")
	assert.NotContains(t, page, "Push scheduled")

	page = RenderSyncStatus(models.SyncState{IsDirty: true, PushScheduled: true}, models.SyncModeInstant)
	assert.Contains(t, page, "dirty")
	assert.Contains(t, page, "Push scheduled")

	page = RenderSyncStatus(models.SyncState{IsDirty: true, LastError: &models.SyncError{Message: "boom", Timestamp: synced}}, models.SyncModeManual)
	assert.Contains(t, page, "error")
	assert.Contains(t, page, "boom")
	assert.Contains(t, page, "never")
	assert.Contains(t, page, "N/A")
}

func TestRenderBuildInfo(t *testing.T) {
	page := RenderBuildInfo(models.NewAppBuildInfo("v1.2.0", "", "abc123"))
	assert.Contains(t, page, "v1.2.0")
	assert.Contains(t, page, "abc123")
	assert.Contains(t, page, "N/A")
}

func TestHumanizeError(t *testing.T) {
	assert.Empty(t, HumanizeError(nil))
	assert.Equal(t, "No network or the sync remote is unreachable",
		HumanizeError(errors.New("Put \"http://x\": dial tcp 127.0.0.1:1: connect: connection refused")))
	assert.Equal(t, "boom", HumanizeError(errors.New("boom")))
}
