package main

import (
	"os"

	"github.com/kilianp07/cargo-agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
