// Package main provides the einsum CLI.
package main

import (
	"fmt"
	"os"
)

const version = "v0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
