// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/woodard/libabigail-sub002/pkg/abilog"
	"github.com/woodard/libabigail-sub002/pkg/config"
	"github.com/woodard/libabigail-sub002/pkg/diff"
	"github.com/woodard/libabigail-sub002/pkg/ir"
	"github.com/woodard/libabigail-sub002/pkg/report"
	"github.com/woodard/libabigail-sub002/pkg/suppression"
)

// Exit codes returned to driver programs, per spec.md 6.3: combinable by
// bitwise OR.
const (
	exitOK              = 0
	exitError           = 1
	exitABIChange       = 4
	exitABIIncompatible = 8
)

func newDiffCommand() *cobra.Command {
	var suppressionPaths []string
	var leaf bool

	cmd := &cobra.Command{
		Use:   "diff <a> <b>",
		Short: "Diff two ELF/DWARF corpora and report ABI changes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := abilog.NewDevelopment()
			env := ir.NewEnvironment()

			a, _, err := readCorpus(env, args[0], log)
			if err != nil {
				return err
			}
			b, _, err := readCorpus(env, args[1], log)
			if err != nil {
				return err
			}

			cd := diff.DiffCorpora(env, a, b)

			opts := config.NewDiffOptions(
				config.WithLeafMode(leaf),
				config.WithSuppressionPaths(suppressionPaths...),
			)
			if len(opts.SuppressionPaths) > 0 {
				set, err := loadSuppressions(opts.SuppressionPaths, log)
				if err != nil {
					return err
				}
				ApplySuppressionsToCorpusDiff(env, cd, set, args[1], b.SOName)
			}

			mode := report.ModeDefault
			if opts.LeafMode {
				mode = report.ModeLeaf
			}
			repOpts := report.Options{Mode: mode, ShowAffectedLocations: opts.ShowAffectedLocations, AllowedCategories: opts.AllowedCategories}
			if err := report.Report(cmd.OutOrStdout(), env, cd, repOpts); err != nil {
				return err
			}

			os.Exit(exitCodeFor(cd))
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&suppressionPaths, "suppressions", nil, "suppression rule files to apply before reporting")
	cmd.Flags().BoolVar(&leaf, "leaf", false, "only report locally-changed nodes")
	return cmd
}

func loadSuppressions(paths []string, log abilog.Logger) (*suppression.Set, error) {
	merged := &suppression.Set{}
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		set, err := suppression.Load(data, log)
		if err != nil {
			return nil, err
		}
		merged.TypeRules = append(merged.TypeRules, set.TypeRules...)
		merged.FunctionRules = append(merged.FunctionRules, set.FunctionRules...)
		merged.VariableRules = append(merged.VariableRules, set.VariableRules...)
		merged.FileRules = append(merged.FileRules, set.FileRules...)
	}
	return merged, nil
}

// ApplySuppressionsToCorpusDiff applies set to cd in the binary context of
// secondPath/secondSOName (the "after" object a suppression's
// file_name/soname filters match against) and refreshes Stats.
func ApplySuppressionsToCorpusDiff(env *ir.Environment, cd *diff.CorpusDiff, set *suppression.Set, secondPath, secondSOName string) {
	diff.ApplySuppressions(env, cd, set, suppression.BinaryContext{FileName: secondPath, SOName: secondSOName})
	cd.RecomputeStats()
}

// exitCodeFor maps cd's surviving changes onto spec.md 6.3's exit codes.
func exitCodeFor(cd *diff.CorpusDiff) int {
	code := exitOK
	if cd.Stats.FunctionsChanged > 0 || cd.Stats.VariablesChanged > 0 ||
		cd.Stats.FunctionsAdded > 0 || cd.Stats.FunctionsRemoved > 0 ||
		cd.Stats.VariablesAdded > 0 || cd.Stats.VariablesRemoved > 0 {
		code |= exitABIChange
	}
	if hasIncompatibleChange(cd) {
		code |= exitABIIncompatible
	}
	return code
}

func hasIncompatibleChange(cd *diff.CorpusDiff) bool {
	for _, n := range cd.ChangedFunctions {
		if nodeHasIncompatibleChange(n) {
			return true
		}
	}
	for _, n := range cd.ChangedVariables {
		if nodeHasIncompatibleChange(n) {
			return true
		}
	}
	return false
}

func nodeHasIncompatibleChange(n *diff.Node) bool {
	found := false
	n.Walk(func(c *diff.Node) bool {
		if c.Local && c.Categories.Has(diff.CategoryABIIncompatible) && !c.Categories.Has(diff.CategorySuppressed) {
			found = true
		}
		return true
	})
	return found
}
