package main

import (
	"os"

	"github.com/mirokim/Onion-ring/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
