package main

import (
	"os"

	"github.com/ferrovax/mingle/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
