// Package config provides configuration loading, merging, and validation
// facilities for the sync client and the reference blob server.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags
//  4. JSON config file
//
// The main entry points are [GetClientConfig] for the sync client and
// [GetBlobServerConfig] for the blob server.
package config
