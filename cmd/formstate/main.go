package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/goliatone/go-formstate/internal/cli"
)

// Version information (injected via ldflags at build time)
var version = "dev"

func main() {
	if err := cli.NewRootCommand(version).Execute(); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			if msg := exitErr.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, "formstate:", msg)
			}
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, "formstate:", err)
		os.Exit(cli.ExitUsage)
	}
}
