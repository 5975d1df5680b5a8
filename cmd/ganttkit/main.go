// Package main provides the entry point for the ganttkit CLI.
package main

import (
	"os"

	"github.com/ganttkit/ganttkit/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
