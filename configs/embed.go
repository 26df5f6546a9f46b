// Package configs provides the embedded configuration template for nexus.
//
// The template is embedded at build time so 'nexus config init' works from
// any distribution. It must stay loadable by internal/config: every key it
// sets has to exist in config.Config.
package configs

import _ "embed"

// UserConfigTemplate is written by `nexus config init` to
// ~/.config/nexus/config.yaml.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
