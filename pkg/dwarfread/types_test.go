// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package dwarfread

import (
	stddwarf "debug/dwarf"
	"testing"

	"github.com/woodard/libabigail-sub002/pkg/dwarfidx"
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// newBareReader builds a Reader whose DWARF-facing fields are nil: the
// tests below only exercise helpers that resolve types through the
// nodes cache, never touching r.data/r.ef.
func newBareReader(env *ir.Environment) *Reader {
	return &Reader{
		env:          env,
		nodes:        map[dwarfidx.Key]dieNode{},
		funcTypeWIP:  map[dwarfidx.Key]ir.TypeHandle{},
		classWIP:     map[dwarfidx.Key]ir.TypeHandle{},
		anonCounters: map[string]int{},
	}
}

func constTypeEntry(targetOffset stddwarf.Offset) *stddwarf.Entry {
	return &stddwarf.Entry{
		Tag: stddwarf.TagConstType,
		Field: []stddwarf.Field{
			{Attr: stddwarf.AttrType, Val: targetOffset},
		},
	}
}

// TestBuildQualifiedTypeStripsConstOverReference covers spec.md 4.5's
// "strip redundant const on references": a const_type DIE whose
// DW_AT_type points at an already-built reference_type must be re-emitted
// as the bare reference rather than wrapped in a qualified_type.
func TestBuildQualifiedTypeStripsConstOverReference(t *testing.T) {
	env := ir.NewEnvironment()
	r := newBareReader(env)

	i32 := env.NewTypeDecl("int", 32, 32, ir.DieOrigin{})
	ref := env.NewReferenceType(i32, true, 64, 64, ir.DieOrigin{})

	refKey := dwarfidx.Key{Partition: dwarfidx.Main, Offset: 0x10}
	r.nodes[refKey] = dieNode{isType: true, typ: ref}

	entry := constTypeEntry(refKey.Offset)
	key := dwarfidx.Key{Partition: dwarfidx.Main, Offset: 0x20}
	ctx := buildCtx{addrSizeBits: 64}

	got, err := r.buildQualifiedType(entry, key, ir.CVConst, ctx)
	if err != nil {
		t.Fatalf("buildQualifiedType: %v", err)
	}
	if got != ref {
		t.Fatalf("const-over-reference was not stripped: got %+v, want the bare reference handle %+v", got, ref)
	}
	if env.TypeKindOf(got) != ir.KindReference {
		t.Fatalf("stripped result has kind %v, want reference_type", env.TypeKindOf(got))
	}
}

// TestBuildQualifiedTypeKeepsConstOverNonReference covers the negative
// case: const over a plain (non-reference) type is preserved as a
// qualified_type, not stripped.
func TestBuildQualifiedTypeKeepsConstOverNonReference(t *testing.T) {
	env := ir.NewEnvironment()
	r := newBareReader(env)

	i32 := env.NewTypeDecl("int", 32, 32, ir.DieOrigin{})

	intKey := dwarfidx.Key{Partition: dwarfidx.Main, Offset: 0x10}
	r.nodes[intKey] = dieNode{isType: true, typ: i32}

	entry := constTypeEntry(intKey.Offset)
	key := dwarfidx.Key{Partition: dwarfidx.Main, Offset: 0x20}
	ctx := buildCtx{addrSizeBits: 64}

	got, err := r.buildQualifiedType(entry, key, ir.CVConst, ctx)
	if err != nil {
		t.Fatalf("buildQualifiedType: %v", err)
	}
	q, ok := env.AsQualifiedType(got)
	if !ok {
		t.Fatalf("const over a plain type was not wrapped in a qualified_type")
	}
	if q.CV != ir.CVConst || q.Underlying != i32 {
		t.Fatalf("qualified_type = %+v, want CV=CVConst Underlying=%+v", q, i32)
	}
}

// TestBuildQualifiedTypeCollapsesNestedQualifiers covers the CV-merging
// path: const applied on top of an already-volatile type merges into one
// qualified_type rather than nesting two.
func TestBuildQualifiedTypeCollapsesNestedQualifiers(t *testing.T) {
	env := ir.NewEnvironment()
	r := newBareReader(env)

	i32 := env.NewTypeDecl("int", 32, 32, ir.DieOrigin{})
	volatileInt := env.NewQualifiedType(i32, ir.CVVolatile, ir.DieOrigin{})

	volKey := dwarfidx.Key{Partition: dwarfidx.Main, Offset: 0x10}
	r.nodes[volKey] = dieNode{isType: true, typ: volatileInt}

	entry := constTypeEntry(volKey.Offset)
	key := dwarfidx.Key{Partition: dwarfidx.Main, Offset: 0x20}
	ctx := buildCtx{addrSizeBits: 64}

	got, err := r.buildQualifiedType(entry, key, ir.CVConst, ctx)
	if err != nil {
		t.Fatalf("buildQualifiedType: %v", err)
	}
	q, ok := env.AsQualifiedType(got)
	if !ok {
		t.Fatalf("result is not a qualified_type")
	}
	if q.CV != ir.CVConst|ir.CVVolatile {
		t.Fatalf("CV = %v, want const|volatile merged into one qualified_type", q.CV)
	}
	if q.Underlying != i32 {
		t.Fatalf("nested qualifiers were not collapsed onto the same underlying type")
	}
}
