package main

import (
	"os"

	"citizen-impact/client/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
