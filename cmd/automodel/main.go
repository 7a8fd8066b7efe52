// Package main is the entry point for the automodel CLI.
package main

import (
	"os"

	"github.com/roach88/automodel/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
