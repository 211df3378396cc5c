// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/woodard/libabigail-sub002/pkg/abierrors"
	"github.com/woodard/libabigail-sub002/pkg/abilog"
	"github.com/woodard/libabigail-sub002/pkg/dwarfread"
	"github.com/woodard/libabigail-sub002/pkg/elf"
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

func newReadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "read <elf-path>",
		Short: "Build a corpus from an ELF file and print its exported symbol counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := abilog.NewDevelopment()
			env := ir.NewEnvironment()
			corpus, status, err := readCorpus(env, args[0], log)
			if err != nil {
				return err
			}
			if status != elf.StatusOK {
				log.Warnf("%s: %s", args[0], status)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d exported functions, %d exported variables, %d unreferenced symbols\n",
				corpus.Path, len(corpus.ExportedFunctions), len(corpus.ExportedVariables), len(corpus.UnreferencedSymbols))
			return nil
		},
	}
	return cmd
}

// readCorpus builds a corpus from path into env, the shared environment a
// diff between two corpora requires (spec.md 3: "every corpus compared
// together must share one Environment").
func readCorpus(env *ir.Environment, path string, log abilog.Logger) (*ir.Corpus, elf.Status, error) {
	f, status, err := elf.Open(path)
	if err != nil {
		if abierrors.IsNoSuchFile(err) {
			return nil, elf.StatusNoSuchFile, err
		}
		return nil, elf.StatusUnknown, err
	}
	r, err := dwarfread.NewReader(env, f, log)
	if err != nil {
		return nil, status, err
	}
	corpus, _, err := r.ReadCorpus(path)
	if err != nil {
		return nil, status, err
	}
	return corpus, status, nil
}
