package main

import (
	"os"

	"github.com/dshills/gptcommit/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
