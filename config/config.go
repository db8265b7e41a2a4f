// Package config resolves the toolkit's environment-driven settings
// (spec.md §1 "environment and configuration").
package config

import (
	"os"
	"path/filepath"
)

// HomeEnv is the environment variable naming the toolkit's cache/state
// directory. The file/range handlers do not use it: they resolve paths
// against the process's working directory.
const HomeEnv = "REFINERY_HOME"

// PrefixEnv is ignored at runtime: the original tool used it to prefix
// generated shell entry points, a concern this toolkit's CLI front end
// doesn't carry (spec.md §1 Non-goals: no shell-entry-point generation).
// Load reads it and discards the value without checking it.
const PrefixEnv = "REFINERY_PREFIX"

// Config holds the resolved environment configuration.
type Config struct {
	// Home is the resolved cache/state directory.
	Home string
}

// Load reads the process environment and resolves defaults.
func Load() (*Config, error) {
	home := os.Getenv(HomeEnv)
	if home == "" {
		cacheDir, err := os.UserCacheDir()
		if err != nil {
			return nil, err
		}
		home = filepath.Join(cacheDir, "refinery")
	}
	// REFINERY_PREFIX has no effect on this toolkit; its value is read and
	// discarded.
	_ = os.Getenv(PrefixEnv)

	return &Config{Home: home}, nil
}
