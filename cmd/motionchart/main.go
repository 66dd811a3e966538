package main

import (
	"os"

	"github.com/comalice/motionchart/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
