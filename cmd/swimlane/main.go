// Package main provides the offline swimlane CLI: build, validate and project process graphs
// without a server.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
)

func main() {
	err := newCommand(os.Stdin, os.Stdout).Run(context.Background(), os.Args)
	if err == nil {
		return
	}

	if !errors.Is(err, errFailedChecks) {
		fmt.Fprintln(os.Stderr, err)
	}

	os.Exit(1)
}
