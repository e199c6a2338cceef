package main

import (
	"fmt"
	"os"

	"github.com/veilfs/veilfs/internal/cli"
)

//nolint:gochecknoglobals
var Version string

func main() {
	cli.SetVersion(Version)

	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
