package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/progress"
)

func renderProgressLine(bar progress.Model, message string, current, total int) string {
	percent := 1.0
	if total > 0 {
		percent = float64(current) / float64(total)
	}
	if percent > 1 {
		percent = 1
	}

	return fmt.Sprintf("%s %s %d/%d", message, bar.ViewAs(percent), current, total)
}
