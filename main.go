package main

import (
	"os"

	"github.com/agorabbs/agora/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
