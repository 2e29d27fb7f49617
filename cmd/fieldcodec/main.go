// Package main provides the fieldcodec command-line client.
package main

import (
	"os"

	"github.com/listenupapp/fieldcodec/cmd/fieldcodec/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
