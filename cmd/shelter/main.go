package main

import (
	"os"

	"github.com/grazioso/shelter/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
