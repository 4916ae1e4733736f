package main

import (
	"os"

	"github.com/Permissionless-Software-Foundation/bch-nostr/cmd/bch-nostr/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
