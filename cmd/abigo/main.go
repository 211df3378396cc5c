// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Command abigo is a thin demonstration CLI exercising the core
// read/diff/report pipeline end to end. It is not a reimplementation of
// abidiff/abidw: no suppression-file authoring tools, no XML/zip corpus
// serialization, no kernel-module-set diffing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "abigo",
		Short:         "Inspect and compare ELF/DWARF ABI corpora",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newReadCommand())
	root.AddCommand(newDiffCommand())
	return root
}
