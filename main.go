package main

import (
	"os"

	"github.com/simtai/simtai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
