package tui

import (
	"context"

	"github.com/marine14f/geminipwa-sub000/internal/logger"
)

// AutoNotifier answers every prompt with Answer and sends everything else
// to the log. It backs non-interactive runs such as the daemon or --yes.
type AutoNotifier struct {
	Answer bool
	Logger *logger.Logger
}

func (a *AutoNotifier) log() *logger.Logger {
	if a.Logger == nil {
		return logger.Nop()
	}
	return a.Logger
}

func (a *AutoNotifier) Confirm(ctx context.Context, message string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	a.log().Info().
		Str("func", "AutoNotifier.Confirm").
		Bool("answer", a.Answer).
		Msg(message)
	return a.Answer, nil
}

func (a *AutoNotifier) ShowProgress(message string) {
	a.log().Info().Str("func", "AutoNotifier.ShowProgress").Msg(message)
}

func (a *AutoNotifier) UpdateProgress(message string, current, total int) {
	a.log().Debug().
		Str("func", "AutoNotifier.UpdateProgress").
		Int("current", current).
		Int("total", total).
		Msg(message)
}

func (a *AutoNotifier) HideProgress() {}

func (a *AutoNotifier) Alert(message string) {
	a.log().Warn().Str("func", "AutoNotifier.Alert").Msg(message)
}
