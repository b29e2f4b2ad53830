// Package main provides the arbor CLI.
package main

import (
	"os"

	"github.com/mesh-intelligence/arbor/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
