/*
Package main provides the CLI entry point for Mebel.
*/
package main

import (
	"os"

	"github.com/oarkflow/mebel/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
