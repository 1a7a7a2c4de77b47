package main

import (
	"os"

	"posctl/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
