package main

import (
	"os"

	"github.com/not-ani/blockfile/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
