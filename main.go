package main

import (
	"os"

	"github.com/oakline/baseline/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
