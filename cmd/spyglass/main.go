// Spyglass automates exploratory analysis of opaque inputs by
// recursively applying a catalog of transformation units until a flag
// is found.
//
// Usage:
//
//	# Evaluate a file, a string, or a URL
//	spyglass solve ./challenge.bin
//	spyglass solve "aGVsbG8gd29ybGQ=" --timeout 30s
//
//	# Monitor a directory and evaluate files as they appear
//	spyglass watch ./loot -c spyglass.yaml
//
//	# List the unit catalog
//	spyglass units
package main

import (
	"fmt"
	"os"

	"github.com/spyglass-sec/spyglass/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
