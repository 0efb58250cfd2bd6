// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// parseEnv fills cfg from the environment using its env/envPrefix tags.
// List values such as SYNC_PRIVILEGED_SETTINGS are comma separated and
// durations use time.ParseDuration syntax.
func parseEnv(cfg any) error {
	if err := env.ParseWithOptions(cfg, env.Options{TagName: "env", PrefixTagName: "envPrefix"}); err != nil {
		return fmt.Errorf("read environment: %w", err)
	}
	return nil
}
