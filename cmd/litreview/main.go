package main

import (
	"os"

	"github.com/diogo-cruz/literature-review/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
