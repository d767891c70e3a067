package main

import (
	"os"

	"github.com/qihao/futures-insight/cmd/insight/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
