package main

import (
	"os"

	"boardline/cmd/boardline/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
