// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "strings"

const unknownBuildValue = "N/A"

// AppBuildInfo is the linker-injected build metadata of a binary. Missing
// values read as "N/A".
type AppBuildInfo struct {
	Version string
	Date    string
	Commit  string
}

func NewAppBuildInfo(version, date, commit string) AppBuildInfo {
	return AppBuildInfo{
		Version: orUnknown(version),
		Date:    orUnknown(date),
		Commit:  orUnknown(commit),
	}
}

// String is the one-line form used in logs.
func (a AppBuildInfo) String() string {
	return a.Version + " (" + a.Commit + ", " + a.Date + ")"
}

func orUnknown(v string) string {
	if v = strings.TrimSpace(v); v == "" {
		return unknownBuildValue
	}
	return v
}
