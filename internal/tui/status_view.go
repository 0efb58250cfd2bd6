package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/marine14f/geminipwa-sub000/models"
)

// RenderSyncStatus renders the sync state page of the status command.
func RenderSyncStatus(state models.SyncState, mode models.SyncMode) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Sync status"))
	b.WriteString("\n\n")

	b.WriteString("State: ")
	b.WriteString(renderPhase(state.Phase()))
	b.WriteString("\n")
	b.WriteString("Mode: ")
	b.WriteString(valueOrNA(string(mode)))
	b.WriteString("\n")
	b.WriteString("Last sync id: ")
	b.WriteString(valueOrNA(state.LastSyncIDValue()))
	b.WriteString("\n")
	b.WriteString("Last synced: ")
	if state.LastSyncedAt != nil {
		b.WriteString(state.LastSyncedAt.Local().Format(time.DateTime))
	} else {
		b.WriteString("never")
	}
	b.WriteString("\n")
	b.WriteString("Pending mutations: ")
	b.WriteString(strconv.Itoa(state.MutationCount))
	if state.PushScheduled {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("Push scheduled"))
	}

	if state.LastError != nil {
		b.WriteString("\n\n")
		b.WriteString(errorStyle.Render("Last error: " + state.LastError.Message))
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(state.LastError.Timestamp.Local().Format(time.DateTime)))
	}

	return overlayBoxStyle.Render(b.String())
}

func renderPhase(phase models.SyncPhase) string {
	switch phase {
	case models.PhaseIdle:
		return okStyle.Render(string(phase))
	case models.PhaseDirty, models.PhaseSyncing:
		return warnStyle.Render(string(phase))
	default:
		return errorStyle.Render(string(phase))
	}
}

func valueOrNA(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return "N/A"
	}
	return v
}
