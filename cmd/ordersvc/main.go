package main

import (
	"os"

	"github.com/veggie-dogs/orders/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
