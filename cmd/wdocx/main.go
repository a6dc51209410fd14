package main

import (
	"os"

	"github.com/tsawler/wdocx/cmd/wdocx/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
