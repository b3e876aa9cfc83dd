package main

import (
	"os"

	"github.com/easyprops/easyprops/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
