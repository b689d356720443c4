// Package main is the entry point for diff2commit.
package main

import (
	"os"

	"github.com/maadhav-codes/diff2commit/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
