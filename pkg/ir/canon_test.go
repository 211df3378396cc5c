// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package ir

import "testing"

func TestCanonicalizeIdempotentForIdenticalShapes(t *testing.T) {
	env := NewEnvironment()

	intA := env.NewTypeDecl("int", 32, 32, DieOrigin{})
	intB := env.NewTypeDecl("int", 32, 32, DieOrigin{})
	env.Canonicalize(intA)
	env.Canonicalize(intB)

	ptrA := env.NewPointerType(intA, 64, 64, DieOrigin{})
	ptrB := env.NewPointerType(intB, 64, 64, DieOrigin{})
	ca := env.Canonicalize(ptrA)
	cb := env.Canonicalize(ptrB)

	if ca != cb {
		t.Fatalf("structurally identical pointer types got different canonical handles: %+v vs %+v", ca, cb)
	}
	if env.Canonicalize(ptrA) != ca {
		t.Fatalf("re-canonicalizing an already-canonical handle changed its result")
	}
}

func TestCanonicalizeDistinguishesDifferentShapes(t *testing.T) {
	env := NewEnvironment()

	i32 := env.NewTypeDecl("int", 32, 32, DieOrigin{})
	i64 := env.NewTypeDecl("long", 64, 64, DieOrigin{})
	env.Canonicalize(i32)
	env.Canonicalize(i64)

	ptrToI32 := env.Canonicalize(env.NewPointerType(i32, 64, 64, DieOrigin{}))
	ptrToI64 := env.Canonicalize(env.NewPointerType(i64, 64, 64, DieOrigin{}))
	if ptrToI32 == ptrToI64 {
		t.Fatalf("pointers to differently-shaped pointees canonicalized to the same handle")
	}
}

// buildSelfReferentialStruct builds a struct "node" with one data member
// "next" of type "node*", the classic shape spec.md 4.4 calls risky
// because the pointer's pointee (the class itself) is not yet canonical
// when the pointer is first seen.
func buildSelfReferentialStruct(env *Environment, name string) TypeHandle {
	classHandle := env.NewClassOrUnion(ClassOrUnion{Name: name, IsStruct: true}, 64, 64, DieOrigin{})
	ptrToSelf := env.NewPointerType(classHandle, 64, 64, DieOrigin{})
	nextVar := env.NewVarDecl("next", ptrToSelf, NilDeclHandle, SourceLocation{})

	co, _ := env.AsClassOrUnion(classHandle)
	co.DataMembers = append(co.DataMembers, DataMember{Var: nextVar, LayoutOffsetBits: 0})
	return classHandle
}

func TestLateCanonicalizationCoversRiskyTypes(t *testing.T) {
	env := NewEnvironment()

	class := buildSelfReferentialStruct(env, "node")
	ptr := env.NewPointerType(class, 64, 64, DieOrigin{})

	if got := env.Canonicalize(class); got.Valid() {
		t.Fatalf("self-referential class canonicalized eagerly, want deferral to the late queue")
	}
	if got := env.Canonicalize(ptr); got.Valid() {
		t.Fatalf("pointer to a not-yet-canonical class canonicalized eagerly")
	}

	env.PerformLateTypeCanonicalizing()

	if !env.CanonicalOf(class).Valid() {
		t.Fatalf("class left without a canonical handle after PerformLateTypeCanonicalizing")
	}
	if !env.CanonicalOf(ptr).Valid() {
		t.Fatalf("pointer left without a canonical handle after PerformLateTypeCanonicalizing")
	}
	if !env.CanonicalizationDone() {
		t.Fatalf("PerformLateTypeCanonicalizing did not mark canonicalization done")
	}
}

func TestLateCanonicalizationMergesStructurallyEqualAnonymousStructs(t *testing.T) {
	env := NewEnvironment()

	a := buildSelfReferentialStruct(env, "__anonymous_struct__1")
	b := buildSelfReferentialStruct(env, "__anonymous_struct__2")
	env.Canonicalize(a)
	env.Canonicalize(b)

	env.PerformLateTypeCanonicalizing()

	if env.CanonicalOf(a) != env.CanonicalOf(b) {
		t.Fatalf("two anonymous structs with identical shape but different numeric suffixes did not canonicalize to the same handle")
	}
}

func TestCanonicalAnonymousNameStripsNumericSuffix(t *testing.T) {
	cases := map[string]string{
		"__anonymous_struct__3":        "__anonymous_struct__",
		"__anonymous_union__12":        "__anonymous_union__",
		"__anonymous_enum__1::Nested":  "__anonymous_enum__::Nested",
		"not_anonymous":                "not_anonymous",
	}
	for in, want := range cases {
		if got := canonicalAnonymousName(in); got != want {
			t.Errorf("canonicalAnonymousName(%q) = %q, want %q", in, got, want)
		}
	}
}
