// Package main is the entry point for the xbsearch CLI.
package main

import (
	"os"

	"github.com/seclorum/xbsearch/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
