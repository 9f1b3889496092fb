package main

import (
	"os"

	"otprelay/cmd/otprelay/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
