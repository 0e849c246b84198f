package main

import (
	"fmt"
	"os"

	"github.com/goliatone/go-formtags/cmd/formtags/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "formtags: %v\n", err)
		os.Exit(1)
	}
}
