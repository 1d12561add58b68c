// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

// Command zplan computes and schedules the production plans of a workshop
// described in a YAML model file.
package main

import (
	"fmt"
	"os"

	"github.com/dalzilio/zudd/internal/cli"
)

func main() {
	cmd := cli.NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "zplan: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}
