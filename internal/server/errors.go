// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errNoServersAreCreated is returned by NewServer when the blob server has
// no listen address configured.
var errNoServersAreCreated = errors.New("blob server has no listener configured")
