package main

import (
	"os"

	"github.com/riskgate/riskgate/cmd/riskgate/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
