// Package main provides litbookctl, the operator CLI for a LitBook data directory.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/litbook/litbook-server/internal/api"
)

func main() {
	root := newRootCmd()

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(api.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
