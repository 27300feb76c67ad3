// Package main is the railcat command.
package main

import (
	"os"

	"github.com/tc-opendata/railcat/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
