package main

import (
	"os"

	"github.com/rustyeddy/tailrisk/cmd/tailrisk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
