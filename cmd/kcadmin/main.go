package main

import (
	"os"

	"github.com/m7011e/platform/cmd/kcadmin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
