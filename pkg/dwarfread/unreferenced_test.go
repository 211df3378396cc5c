// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package dwarfread

import (
	"testing"

	"github.com/woodard/libabigail-sub002/pkg/elf"
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// TestCollectUnreferencedSymbolsFindsExportedFunctionWithNoDecl covers
// spec.md 4.7's "symbols unreferenced by debug info": an exported,
// defined function symbol with no bound declaration must surface in
// Corpus.UnreferencedSymbols.
func TestCollectUnreferencedSymbolsFindsExportedFunctionWithNoDecl(t *testing.T) {
	env := ir.NewEnvironment()
	r := newBareReader(env)
	r.corpus = ir.NewCorpus("test")
	r.ef = &elf.File{
		DefinedFunctions: map[string][]*elf.Symbol{
			"no_debug_info": {{Name: "no_debug_info", Binding: elf.BindingGlobal, IsDefined: true}},
		},
		DefinedVariables: map[string][]*elf.Symbol{},
	}

	r.collectUnreferencedSymbols()

	if len(r.corpus.UnreferencedSymbols) != 1 {
		t.Fatalf("UnreferencedSymbols = %+v, want exactly one entry", r.corpus.UnreferencedSymbols)
	}
	got := r.corpus.UnreferencedSymbols[0]
	if got.Name != "no_debug_info" || !got.IsFunction {
		t.Fatalf("got %+v, want {Name: no_debug_info, IsFunction: true}", got)
	}
}

// TestCollectUnreferencedSymbolsSkipsBoundSymbol covers the complement:
// a symbol already indexed into ExportedFunctions (by BuildExportedDecls)
// must not also show up as unreferenced.
func TestCollectUnreferencedSymbolsSkipsBoundSymbol(t *testing.T) {
	env := ir.NewEnvironment()
	r := newBareReader(env)
	r.corpus = ir.NewCorpus("test")
	r.ef = &elf.File{
		DefinedFunctions: map[string][]*elf.Symbol{
			"has_debug_info": {{Name: "has_debug_info", Binding: elf.BindingGlobal, IsDefined: true}},
		},
		DefinedVariables: map[string][]*elf.Symbol{},
	}
	ft := env.NewFunctionType(env.VoidType(), nil, 64, ir.DieOrigin{})
	decl := env.NewFunctionDecl("has_debug_info", ft, ir.NilDeclHandle, ir.SourceLocation{}, false, ir.NilTypeHandle)
	r.corpus.ExportedFunctions[ir.SymbolIdentity{Name: "has_debug_info"}] = decl

	r.collectUnreferencedSymbols()

	if len(r.corpus.UnreferencedSymbols) != 0 {
		t.Fatalf("UnreferencedSymbols = %+v, want none", r.corpus.UnreferencedSymbols)
	}
}

// TestCollectUnreferencedSymbolsSkipsLocalBinding covers the "exported"
// qualifier: a locally-bound defined symbol is never part of the public
// ABI and must not be reported, even with no matching declaration.
func TestCollectUnreferencedSymbolsSkipsLocalBinding(t *testing.T) {
	env := ir.NewEnvironment()
	r := newBareReader(env)
	r.corpus = ir.NewCorpus("test")
	r.ef = &elf.File{
		DefinedFunctions: map[string][]*elf.Symbol{
			"internal_helper": {{Name: "internal_helper", Binding: elf.BindingLocal, IsDefined: true}},
		},
		DefinedVariables: map[string][]*elf.Symbol{},
	}

	r.collectUnreferencedSymbols()

	if len(r.corpus.UnreferencedSymbols) != 0 {
		t.Fatalf("UnreferencedSymbols = %+v, want none for a local-bound symbol", r.corpus.UnreferencedSymbols)
	}
}
