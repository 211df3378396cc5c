// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package ir

import (
	"testing"

	"github.com/woodard/libabigail-sub002/pkg/elf"
)

func declareExportedFunction(t *testing.T, env *Environment, corpus *Corpus, name string, sym *elf.Symbol) DeclHandle {
	t.Helper()
	tu := env.NewTranslationUnit("t.c", 64, LanguageC)
	corpus.AddTranslationUnit(tu)
	tud, ok := env.AsTranslationUnit(tu)
	if !ok {
		t.Fatalf("AsTranslationUnit failed right after NewTranslationUnit")
	}
	ft := env.NewFunctionType(env.VoidType(), nil, 64, DieOrigin{})
	d := env.NewFunctionDecl(name, ft, NilDeclHandle, SourceLocation{}, false, NilTypeHandle)
	env.BindSymbol(d, sym)
	env.AddScopeMember(tud.TopScope, ScopeMember{Decl: d})
	return d
}

// TestBuildExportedDeclsKeysByNameAndVersion covers the maintainer-review
// fix for spec.md 4.7's "symbol identity (name + version)" corpus-diff
// matching rule: two exported functions sharing a base name but carrying
// distinct ELF symbol versions (the standard glibc multi-version .so
// case) must both survive into ExportedFunctions, not collide on a
// bare-name key.
func TestBuildExportedDeclsKeysByNameAndVersion(t *testing.T) {
	env := NewEnvironment()
	corpus := NewCorpus("libc.so.6")

	v1 := declareExportedFunction(t, env, corpus, "realloc", &elf.Symbol{
		Name: "realloc", IsMain: true, IsDefined: true,
		Version: elf.Version{Name: "GLIBC_2.2.5"},
	})
	v2 := declareExportedFunction(t, env, corpus, "realloc", &elf.Symbol{
		Name: "realloc", IsMain: true, IsDefined: true,
		Version: elf.Version{Name: "GLIBC_2.34", IsDefault: true},
	})

	corpus.BuildExportedDecls(env)

	if len(corpus.ExportedFunctions) != 2 {
		t.Fatalf("ExportedFunctions has %d entries, want 2 (one per version): %+v",
			len(corpus.ExportedFunctions), corpus.ExportedFunctions)
	}
	gotV1, ok := corpus.ExportedFunctions[SymbolIdentity{Name: "realloc", Version: "GLIBC_2.2.5"}]
	if !ok || gotV1 != v1 {
		t.Fatalf("ExportedFunctions[realloc@GLIBC_2.2.5] = %v, want %v", gotV1, v1)
	}
	gotV2, ok := corpus.ExportedFunctions[SymbolIdentity{Name: "realloc", Version: "GLIBC_2.34"}]
	if !ok || gotV2 != v2 {
		t.Fatalf("ExportedFunctions[realloc@GLIBC_2.34] = %v, want %v", gotV2, v2)
	}
}

// TestSymbolIdentityString covers the display form diff/report rely on:
// bare name when unversioned, name@version otherwise.
func TestSymbolIdentityString(t *testing.T) {
	if got := (SymbolIdentity{Name: "foo"}).String(); got != "foo" {
		t.Errorf("String() = %q, want %q", got, "foo")
	}
	if got := (SymbolIdentity{Name: "foo", Version: "V1"}).String(); got != "foo@V1" {
		t.Errorf("String() = %q, want %q", got, "foo@V1")
	}
}

// TestSortedExportedFunctionIdentitiesOrdersByNameThenVersion covers
// deterministic iteration order when two identities share a name.
func TestSortedExportedFunctionIdentitiesOrdersByNameThenVersion(t *testing.T) {
	env := NewEnvironment()
	corpus := NewCorpus("libc.so.6")
	declareExportedFunction(t, env, corpus, "realloc", &elf.Symbol{
		Name: "realloc", IsMain: true, IsDefined: true, Version: elf.Version{Name: "GLIBC_2.34"},
	})
	declareExportedFunction(t, env, corpus, "realloc", &elf.Symbol{
		Name: "realloc", IsMain: true, IsDefined: true, Version: elf.Version{Name: "GLIBC_2.2.5"},
	})
	corpus.BuildExportedDecls(env)

	ids := corpus.SortedExportedFunctionIdentities()
	if len(ids) != 2 || ids[0].Version != "GLIBC_2.2.5" || ids[1].Version != "GLIBC_2.34" {
		t.Fatalf("SortedExportedFunctionIdentities = %+v, want GLIBC_2.2.5 before GLIBC_2.34", ids)
	}
}
