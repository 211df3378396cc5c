// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package diff

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodard/libabigail-sub002/pkg/elf"
	"github.com/woodard/libabigail-sub002/pkg/ir"
	"github.com/woodard/libabigail-sub002/pkg/suppression"
)

func newIntType(env *ir.Environment, name string) ir.TypeHandle {
	return env.NewTypeDecl(name, 32, 32, ir.DieOrigin{})
}

func newFuncDecl(env *ir.Environment, name string, ret ir.TypeHandle, paramTypes []ir.TypeHandle, sym *elf.Symbol) ir.DeclHandle {
	var params []ir.FunctionParam
	for _, pt := range paramTypes {
		params = append(params, ir.FunctionParam{Type: pt})
	}
	ft := env.NewFunctionType(ret, params, 64, ir.DieOrigin{})
	d := env.NewFunctionDecl(name, ft, ir.NilDeclHandle, ir.SourceLocation{}, false, ir.NilTypeHandle)
	env.SetDeclQualifiedName(d, name)
	env.BindSymbol(d, sym)
	return d
}

// TestTypeDiffIdenticalIsEmpty covers the round-trip invariant: diffing a
// type against itself produces no change (spec.md 8 invariant 2).
func TestTypeDiffIdenticalIsEmpty(t *testing.T) {
	env := ir.NewEnvironment()
	intT := newIntType(env, "int")

	n := TypeDiff(env, intT, intT)
	assert.True(t, n.IsEmpty())
}

// TestFunctionDeclDiffParameterSubtypeChange covers scenario S1: a
// parameter's type changing (int -> char, still compatible in width but a
// distinct type_decl) surfaces as a subtype change on the function diff.
func TestFunctionDeclDiffParameterSubtypeChange(t *testing.T) {
	env := ir.NewEnvironment()
	intT := newIntType(env, "int")
	charT := newIntType(env, "char")
	voidT := env.VoidType()

	a := newFuncDecl(env, "do_it", voidT, []ir.TypeHandle{intT}, &elf.Symbol{Name: "do_it", IsMain: true})
	b := newFuncDecl(env, "do_it", voidT, []ir.TypeHandle{charT}, &elf.Symbol{Name: "do_it", IsMain: true})

	n := FunctionDeclDiff(env, a, b)
	require.True(t, n.HasChange())
	assert.True(t, n.Categories.Has(CategorySubtypeChange))
}

// TestMemberFunctionVtableOffsetChange covers scenario S5: a virtual
// method whose vtable offset changed between two class definitions must
// be flagged ABI-incompatible with the exact detail text.
func TestMemberFunctionVtableOffsetChange(t *testing.T) {
	env := ir.NewEnvironment()
	voidT := env.VoidType()
	ft := env.NewFunctionType(voidT, nil, 64, ir.DieOrigin{})

	classA := env.NewClassOrUnion(ir.ClassOrUnion{Name: "Widget", IsStruct: false}, 64, 64, ir.DieOrigin{})
	classB := env.NewClassOrUnion(ir.ClassOrUnion{Name: "Widget", IsStruct: false}, 64, 64, ir.DieOrigin{})

	fnA := env.NewFunctionDecl("draw", ft, ir.NilDeclHandle, ir.SourceLocation{}, true, classA)
	env.SetDeclLinkageName(fnA, "_ZN6Widget4drawEv")
	fnB := env.NewFunctionDecl("draw", ft, ir.NilDeclHandle, ir.SourceLocation{}, true, classB)
	env.SetDeclLinkageName(fnB, "_ZN6Widget4drawEv")

	coA, _ := env.AsClassOrUnion(classA)
	coA.MemberFunctions = append(coA.MemberFunctions, ir.MemberFunction{Fn: fnA, IsVirtual: true, VtableOffset: 2})
	coB, _ := env.AsClassOrUnion(classB)
	coB.MemberFunctions = append(coB.MemberFunctions, ir.MemberFunction{Fn: fnB, IsVirtual: true, VtableOffset: 3})

	n := TypeDiff(env, classA, classB)
	require.True(t, n.HasChange())

	var found *Node
	n.Walk(func(c *Node) bool {
		if c.Local && c.Detail != "" {
			found = c
		}
		return true
	})
	require.NotNil(t, found)
	assert.Contains(t, found.Detail, "vtable offset changed from 2 to 3")
	assert.True(t, found.Categories.Has(CategoryABIIncompatible))
}

// TestCorpusDiffEmptyInputSymmetry covers invariant 7: diffing a corpus
// against an empty one reports everything as added, and the reverse
// reports everything as deleted, symmetrically.
func TestCorpusDiffEmptyInputSymmetry(t *testing.T) {
	env := ir.NewEnvironment()
	voidT := env.VoidType()
	fn := newFuncDecl(env, "only_in_b", voidT, nil, &elf.Symbol{Name: "only_in_b", IsMain: true})

	empty := ir.NewCorpus("empty.so")
	withFn := ir.NewCorpus("withfn.so")
	withFn.ExportedFunctions[ir.SymbolIdentity{Name: "only_in_b"}] = fn

	forward := DiffCorpora(env, empty, withFn)
	assert.Equal(t, []string{"only_in_b"}, forward.AddedFunctions)
	assert.Empty(t, forward.DeletedFunctions)

	backward := DiffCorpora(env, withFn, empty)
	assert.Equal(t, []string{"only_in_b"}, backward.DeletedFunctions)
	assert.Empty(t, backward.AddedFunctions)
}

// TestCorpusDiffIdenticalIsEmpty covers invariant 2 at the corpus level:
// diffing a corpus against itself yields no changed/added/deleted
// functions or variables.
func TestCorpusDiffIdenticalIsEmpty(t *testing.T) {
	env := ir.NewEnvironment()
	voidT := env.VoidType()
	fn := newFuncDecl(env, "stable", voidT, nil, &elf.Symbol{Name: "stable", IsMain: true})

	c := ir.NewCorpus("a.so")
	c.ExportedFunctions[ir.SymbolIdentity{Name: "stable"}] = fn

	cd := DiffCorpora(env, c, c)
	assert.Empty(t, cd.AddedFunctions)
	assert.Empty(t, cd.DeletedFunctions)
	assert.Empty(t, cd.ChangedFunctions)
	assert.Equal(t, 0, cd.Stats.FunctionsChanged)
}

// TestCorpusDiffStatsForMixedChangeSet cross-checks computeStats' counters
// against a hand-built expectation, reported with cmp.Diff so a future
// regression names exactly which counter moved.
func TestCorpusDiffStatsForMixedChangeSet(t *testing.T) {
	env := ir.NewEnvironment()
	intT := newIntType(env, "int")
	charT := newIntType(env, "char")
	voidT := env.VoidType()

	changedA := newFuncDecl(env, "changed", voidT, []ir.TypeHandle{intT}, &elf.Symbol{Name: "changed", IsMain: true})
	changedB := newFuncDecl(env, "changed", voidT, []ir.TypeHandle{charT}, &elf.Symbol{Name: "changed", IsMain: true})
	removed := newFuncDecl(env, "removed", voidT, nil, &elf.Symbol{Name: "removed", IsMain: true})
	added := newFuncDecl(env, "added", voidT, nil, &elf.Symbol{Name: "added", IsMain: true})

	corpusA := ir.NewCorpus("a.so")
	corpusA.ExportedFunctions[ir.SymbolIdentity{Name: "changed"}] = changedA
	corpusA.ExportedFunctions[ir.SymbolIdentity{Name: "removed"}] = removed
	corpusB := ir.NewCorpus("b.so")
	corpusB.ExportedFunctions[ir.SymbolIdentity{Name: "changed"}] = changedB
	corpusB.ExportedFunctions[ir.SymbolIdentity{Name: "added"}] = added

	cd := DiffCorpora(env, corpusA, corpusB)

	want := Stats{FunctionsAdded: 1, FunctionsRemoved: 1, FunctionsChanged: 1}
	if diff := cmp.Diff(want, cd.Stats); diff != "" {
		t.Fatalf("Stats mismatch (-want +got):\n%s", diff)
	}
}

// TestApplySuppressionsHidesNamedFunction ensures a [suppress_function]
// rule matching by name marks the matched function_decl_diff suppressed
// and removes it from Stats, per spec.md 4.6.
func TestApplySuppressionsHidesNamedFunction(t *testing.T) {
	env := ir.NewEnvironment()
	intT := newIntType(env, "int")
	charT := newIntType(env, "char")
	voidT := env.VoidType()

	a := newFuncDecl(env, "noisy", voidT, []ir.TypeHandle{intT}, &elf.Symbol{Name: "noisy", IsMain: true})
	b := newFuncDecl(env, "noisy", voidT, []ir.TypeHandle{charT}, &elf.Symbol{Name: "noisy", IsMain: true})

	corpusA := ir.NewCorpus("a.so")
	corpusA.ExportedFunctions[ir.SymbolIdentity{Name: "noisy"}] = a
	corpusB := ir.NewCorpus("b.so")
	corpusB.ExportedFunctions[ir.SymbolIdentity{Name: "noisy"}] = b

	cd := DiffCorpora(env, corpusA, corpusB)
	require.Len(t, cd.ChangedFunctions, 1)
	require.Equal(t, 1, cd.Stats.FunctionsChanged)

	set, err := suppression.Load([]byte("[suppress_function]\nname = noisy\n"), nil)
	require.NoError(t, err)

	ApplySuppressions(env, cd, set, suppression.BinaryContext{FileName: "b.so"})
	cd.RecomputeStats()

	assert.Equal(t, 0, cd.Stats.FunctionsChanged)
	assert.True(t, cd.ChangedFunctions[0].Categories.Has(CategorySuppressed))
}
