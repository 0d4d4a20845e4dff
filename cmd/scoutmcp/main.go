// Package main provides the entry point for the scoutmcp CLI.
package main

import (
	"os"

	"github.com/scoutmcp/scoutmcp/cmd/scoutmcp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
