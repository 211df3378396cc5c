// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package dwarfread

import (
	"testing"

	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// TestResolveDeclarationOnlyClassesLinksToDefinition covers spec.md 4.5
// step 5: a declaration-only class DIE (e.g. a forward-declared "struct
// widget;" seen in one translation unit) is linked to a real definition
// of the same qualified name read from another translation unit.
func TestResolveDeclarationOnlyClassesLinksToDefinition(t *testing.T) {
	env := ir.NewEnvironment()
	r := newBareReader(env)
	r.corpus = ir.NewCorpus("test")

	decl := env.NewClassOrUnion(ir.ClassOrUnion{
		Name:              "widget",
		QualifiedName:     "widget",
		IsStruct:          true,
		IsDeclarationOnly: true,
	}, 0, 0, ir.DieOrigin{})
	r.corpus.IndexTypeName("widget", decl)

	def := env.NewClassOrUnion(ir.ClassOrUnion{
		Name:          "widget",
		QualifiedName: "widget",
		IsStruct:      true,
	}, 64, 64, ir.DieOrigin{})
	r.corpus.IndexTypeName("widget", def)

	r.declOnlyClasses = []ir.TypeHandle{decl}
	r.resolveDeclarationOnlyClasses()

	cu, ok := env.AsClassOrUnion(decl)
	if !ok {
		t.Fatalf("decl is no longer a class_or_union")
	}
	if cu.DefinitionOfDeclaration != def {
		t.Fatalf("DefinitionOfDeclaration = %+v, want %+v", cu.DefinitionOfDeclaration, def)
	}
}

// TestResolveDeclarationOnlyClassesLeavesUnresolvedWhenNoDefinitionSeen
// covers the case where no other translation unit ever defines the class:
// the declaration-only class is left untouched rather than pointing at
// itself or another declaration-only instance.
func TestResolveDeclarationOnlyClassesLeavesUnresolvedWhenNoDefinitionSeen(t *testing.T) {
	env := ir.NewEnvironment()
	r := newBareReader(env)
	r.corpus = ir.NewCorpus("test")

	decl := env.NewClassOrUnion(ir.ClassOrUnion{
		Name:              "gadget",
		QualifiedName:     "gadget",
		IsStruct:          true,
		IsDeclarationOnly: true,
	}, 0, 0, ir.DieOrigin{})
	r.corpus.IndexTypeName("gadget", decl)

	otherDecl := env.NewClassOrUnion(ir.ClassOrUnion{
		Name:              "gadget",
		QualifiedName:     "gadget",
		IsStruct:          true,
		IsDeclarationOnly: true,
	}, 0, 0, ir.DieOrigin{})
	r.corpus.IndexTypeName("gadget", otherDecl)

	r.declOnlyClasses = []ir.TypeHandle{decl, otherDecl}
	r.resolveDeclarationOnlyClasses()

	cu, _ := env.AsClassOrUnion(decl)
	if cu.DefinitionOfDeclaration.Valid() {
		t.Fatalf("DefinitionOfDeclaration = %+v, want NilTypeHandle when no real definition exists", cu.DefinitionOfDeclaration)
	}
}
