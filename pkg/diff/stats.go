// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package diff

// Stats summarizes a CorpusDiff's counts for the reporter's leading
// "changes summary" block, per spec.md 4.7's "Stats" step: net
// added/removed functions and variables, net changed functions/variables
// broken down by whether any change survived leaf-mode filtering, and the
// unreferenced-symbol counts.
type Stats struct {
	FunctionsAdded   int
	FunctionsRemoved int
	FunctionsChanged int
	// FunctionsChangedLeaf counts, of FunctionsChanged, how many carry a
	// local (non-suppressed) change at the leaf level rather than only a
	// nested subtype change a reader would otherwise have to dig for.
	FunctionsChangedLeaf int

	VariablesAdded       int
	VariablesRemoved     int
	VariablesChanged     int
	VariablesChangedLeaf int

	UnreferencedSymbolsAdded   int
	UnreferencedSymbolsRemoved int
}

// computeStats derives cd's Stats from its already-populated diff
// results. It must run after suppression has been applied (ApplySuppressions)
// so a fully-suppressed node does not inflate the "changed" counts, per
// spec.md 4.7's note that suppression and categorization precede
// reporting.
func computeStats(cd *CorpusDiff) Stats {
	var s Stats
	s.FunctionsAdded = len(cd.AddedFunctions)
	s.FunctionsRemoved = len(cd.DeletedFunctions)
	for _, n := range cd.ChangedFunctions {
		if !survivesSuppression(n) {
			continue
		}
		s.FunctionsChanged++
		// Detail is set only by a change on the node itself, not by a
		// change propagated up from a child.
		if n.Detail != "" {
			s.FunctionsChangedLeaf++
		}
	}

	s.VariablesAdded = len(cd.AddedVariables)
	s.VariablesRemoved = len(cd.DeletedVariables)
	for _, n := range cd.ChangedVariables {
		if !survivesSuppression(n) {
			continue
		}
		s.VariablesChanged++
		if n.Detail != "" {
			s.VariablesChangedLeaf++
		}
	}

	s.UnreferencedSymbolsAdded = len(cd.UnreferencedSymbolChanges.AddedFunctions) + len(cd.UnreferencedSymbolChanges.AddedVariables)
	s.UnreferencedSymbolsRemoved = len(cd.UnreferencedSymbolChanges.DeletedFunctions) + len(cd.UnreferencedSymbolChanges.DeletedVariables)
	return s
}

// survivesSuppression reports whether n still carries at least one change
// not fully covered by CategorySuppressed, walking into children since a
// root can be marked unsuppressed while every individual change under it
// was suppressed.
func survivesSuppression(n *Node) bool {
	survives := false
	n.Walk(func(c *Node) bool {
		if c.Local && c.Detail != "" && !c.Categories.Has(CategorySuppressed) {
			survives = true
		}
		return true
	})
	return survives
}
