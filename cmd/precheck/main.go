package main

import (
	"os"

	"github.com/dshills/precheck/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
