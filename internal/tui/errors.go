// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package tui

import (
	"context"
	"errors"
	"strings"
)

const msgRemoteUnreachable = "No network or the sync remote is unreachable"

var networkFailureMarkers = []string{
	"connection refused",
	"connection reset",
	"dial tcp",
	"no such host",
	"network is unreachable",
	"i/o timeout",
}

// HumanizeError shortens network failures to a message a user can act on.
// Any other error is returned as is.
func HumanizeError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return msgRemoteUnreachable
	}

	msg := strings.ToLower(err.Error())
	for _, marker := range networkFailureMarkers {
		if strings.Contains(msg, marker) {
			return msgRemoteUnreachable
		}
	}
	return err.Error()
}
