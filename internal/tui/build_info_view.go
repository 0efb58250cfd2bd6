// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"fmt"

	"github.com/marine14f/geminipwa-sub000/models"
)

// RenderBuildInfo renders the version page.
func RenderBuildInfo(info models.AppBuildInfo) string {
	body := fmt.Sprintf("%s\nVersion: %s\nDate: %s\nCommit: %s",
		titleStyle.Render("chatsync"), info.Version, info.Date, info.Commit)
	return overlayBoxStyle.Render(body)
}
