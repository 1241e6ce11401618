// ABOUTME: Command line client for the Quill API
// ABOUTME: Wakes the backend and reads or writes posts through the resilient client

package main

import (
	"errors"
	"os"

	"github.com/jessevdk/go-flags"
)

func main() {
	parser, _ := newCLI(os.Stdout)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
