// Package main provides the entry point for the nexus launcher.
package main

import (
	"os"

	"github.com/Aman-CERP/nexus/cmd/nexus/cmd"
	"github.com/Aman-CERP/nexus/internal/lifecycle"
)

func main() {
	os.Exit(lifecycle.ExitCode(cmd.Execute()))
}
