// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package diff

import (
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// CorpusDiff is the top-level result of comparing two corpora sharing
// one environment, per spec.md 4.7 "corpus diff".
type CorpusDiff struct {
	Env *ir.Environment

	First  *ir.Corpus
	Second *ir.Corpus

	// ChangedFunctions/ChangedVariables are function_decl_diff/var_diff
	// nodes for every symbol identity present on both sides whose diff
	// carries a change; unchanged pairs are not listed.
	ChangedFunctions []*Node
	ChangedVariables []*Node

	AddedFunctions   []string
	DeletedFunctions []string
	AddedVariables   []string
	DeletedVariables []string

	UnreferencedSymbolChanges UnreferencedSymbolDiff

	Stats Stats
}

// UnreferencedSymbolDiff tracks spec.md 4.7's "added/deleted/changed
// symbols unreferenced by debug info", keyed by name since an
// unreferenced symbol has no declaration to carry a richer identity.
type UnreferencedSymbolDiff struct {
	AddedFunctions   []string
	DeletedFunctions []string
	AddedVariables   []string
	DeletedVariables []string
}

// DiffCorpora computes the corpus_diff for a and b, which must share env
// (spec.md 3 "every corpus compared together must share one
// Environment"). Function/variable matching is by symbol identity
// (name plus version), per spec.md 4.7.
func DiffCorpora(env *ir.Environment, a, b *ir.Corpus) *CorpusDiff {
	cd := &CorpusDiff{Env: env, First: a, Second: b}

	cd.diffFunctions(a, b)
	cd.diffVariables(a, b)
	cd.diffUnreferencedSymbols(a, b)
	cd.RecomputeStats()
	return cd
}

// RecomputeStats refreshes cd.Stats from its current diff results. Callers
// applying suppressions (ApplySuppressions) must call this again afterward
// so suppressed changes drop out of the counts, per spec.md 4.7.
func (cd *CorpusDiff) RecomputeStats() { cd.Stats = computeStats(cd) }

func (cd *CorpusDiff) diffFunctions(a, b *ir.Corpus) {
	for _, id := range a.SortedExportedFunctionIdentities() {
		fa := a.ExportedFunctions[id]
		if fb, ok := b.ExportedFunctions[id]; ok {
			n := FunctionDeclDiff(cd.Env, fa, fb)
			n.Label = id.String()
			if n.HasChange() {
				cd.ChangedFunctions = append(cd.ChangedFunctions, n)
			}
			continue
		}
		cd.DeletedFunctions = append(cd.DeletedFunctions, id.String())
	}
	for _, id := range b.SortedExportedFunctionIdentities() {
		if _, ok := a.ExportedFunctions[id]; !ok {
			cd.AddedFunctions = append(cd.AddedFunctions, id.String())
		}
	}
}

func (cd *CorpusDiff) diffVariables(a, b *ir.Corpus) {
	for _, id := range a.SortedExportedVariableIdentities() {
		va := a.ExportedVariables[id]
		if vb, ok := b.ExportedVariables[id]; ok {
			n := VarDiff(cd.Env, va, vb)
			n.Label = id.String()
			if n.HasChange() {
				cd.ChangedVariables = append(cd.ChangedVariables, n)
			}
			continue
		}
		cd.DeletedVariables = append(cd.DeletedVariables, id.String())
	}
	for _, id := range b.SortedExportedVariableIdentities() {
		if _, ok := a.ExportedVariables[id]; !ok {
			cd.AddedVariables = append(cd.AddedVariables, id.String())
		}
	}
}

// DiffCorpusGroup computes the corpus_group_diff for g: a CorpusDiff per
// spec.md 4.7's "compute diff(corpus_group, corpus_group, context)". Both
// corpora in g.First/g.Second are compared against their counterpart by
// position.
func DiffCorpusGroup(g *ir.CorpusGroup) *CorpusDiff {
	return DiffCorpora(g.Env, g.First, g.Second)
}

func (cd *CorpusDiff) diffUnreferencedSymbols(a, b *ir.Corpus) {
	key := func(ref ir.SymbolRef) string { return ref.Name }
	inA := map[string]ir.SymbolRef{}
	for _, s := range a.UnreferencedSymbols {
		inA[key(s)] = s
	}
	inB := map[string]ir.SymbolRef{}
	for _, s := range b.UnreferencedSymbols {
		inB[key(s)] = s
	}
	for k, s := range inA {
		if _, ok := inB[k]; !ok {
			if s.IsFunction {
				cd.UnreferencedSymbolChanges.DeletedFunctions = append(cd.UnreferencedSymbolChanges.DeletedFunctions, k)
			} else {
				cd.UnreferencedSymbolChanges.DeletedVariables = append(cd.UnreferencedSymbolChanges.DeletedVariables, k)
			}
		}
	}
	for k, s := range inB {
		if _, ok := inA[k]; !ok {
			if s.IsFunction {
				cd.UnreferencedSymbolChanges.AddedFunctions = append(cd.UnreferencedSymbolChanges.AddedFunctions, k)
			} else {
				cd.UnreferencedSymbolChanges.AddedVariables = append(cd.UnreferencedSymbolChanges.AddedVariables, k)
			}
		}
	}
}
