// cmd/stratum/main.go
//
// This is the entry point for the stratum CLI.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/kingrea/stratum/internal/cli"
)

var version = "dev"

func main() {
	cli.SetVersion(version)

	if err := cli.Execute(); err != nil {
		// A validation FAIL already printed its findings; anything else is
		// a real error worth a line on stderr.
		if !errors.Is(err, cli.ErrValidationFailed) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}
}
