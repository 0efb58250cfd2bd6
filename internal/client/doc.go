// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the runtime of a syncing device.
//
// It wires the local store, the remote blob store, the sync services and
// the background workers into one process lifecycle, and exposes the
// operations the command line drives.
package client
