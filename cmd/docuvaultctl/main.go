package main

import (
	"os"

	"github.com/docuvault/docuvault/cmd/docuvaultctl/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
