package main

import (
	"os"

	"github.com/bnema/driftbottle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
