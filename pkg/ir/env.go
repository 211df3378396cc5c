// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Package ir implements component C4: the ABI Internal Representation —
// types, declarations, scopes, translation units, corpora, and the
// environment that owns and canonicalizes them all.
package ir

import "github.com/woodard/libabigail-sub002/pkg/abierrors"

// Partition distinguishes which debug-info file a DIE origin refers to:
// the main object's debug info, or an alternate (.gnu_debugaltlink) file.
// Mirrors pkg/dwarfidx.Partition without creating a dependency on it, so
// pkg/ir has no knowledge of DWARF.
type Partition uint8

// The two recognized partitions.
const (
	PartitionMain Partition = iota
	PartitionAlt
)

// DieOrigin records where in DWARF a type or declaration came from. It is
// retained purely as metadata (spec.md 5: "the IR retains the DIE origin
// offset solely as metadata"); no IR invariant depends on it after
// reading completes.
type DieOrigin struct {
	Partition Partition
	Offset    uint64
	Valid     bool
}

// Environment is the process-wide, resource-owning context described in
// spec.md 3: it owns the string interner, the arenas backing every
// TypeHandle/DeclHandle, the void and variadic-parameter singletons, and
// the canonicalization-done flag. Every corpus compared together must
// share one Environment; Environment is not safe for concurrent use
// (spec.md 5).
type Environment struct {
	interner *Interner

	types []typeSlot
	decls []declSlot

	voidType          TypeHandle
	variadicParamType TypeHandle

	canon     *canonRegistry
	canonDone bool

	lateQueue []TypeHandle
}

type typeSlot struct {
	gen  uint32
	kind TypeKind
	base baseType
	data any
}

type declSlot struct {
	gen  uint32
	kind DeclKind
	base baseDecl
	data any
}

// NewEnvironment constructs an Environment with its singleton types
// installed, ready for a DWARF-to-IR builder to populate.
func NewEnvironment() *Environment {
	env := &Environment{
		interner: newInterner(),
		canon:    newCanonRegistry(),
	}
	// Reserve index 0 in both arenas so NilTypeHandle/NilDeclHandle (the
	// zero value) never aliases a real entry.
	env.types = append(env.types, typeSlot{})
	env.decls = append(env.decls, declSlot{})

	env.voidType = env.newType(KindTypeDecl, baseType{SizeBits: 0, AlignBits: 0}, &TypeDecl{Name: "void", IsBuiltin: true})
	env.variadicParamType = env.newType(KindTypeDecl, baseType{SizeBits: 0, AlignBits: 0}, &TypeDecl{Name: "...", IsBuiltin: true})
	env.MarkCanonical(env.voidType)
	env.MarkCanonical(env.variadicParamType)
	return env
}

// Intern returns the interned handle for s, per spec.md 3 "interned
// string": pointer-equal when content-equal within one environment.
func (env *Environment) Intern(s string) InternedString { return env.interner.intern(s) }

// VoidType returns the environment's singleton void type.
func (env *Environment) VoidType() TypeHandle { return env.voidType }

// VariadicParamType returns the environment's singleton "..." marker type.
func (env *Environment) VariadicParamType() TypeHandle { return env.variadicParamType }

// CanonicalizationDone reports whether PerformLateTypeCanonicalizing (or
// an explicit MarkCanonicalizationDone) has closed the reading phase.
func (env *Environment) CanonicalizationDone() bool { return env.canonDone }

// MarkCanonicalizationNotDone resets the done flag; the DWARF-to-IR
// builder calls this at the start of reading a corpus (spec.md 4.5 step 3).
func (env *Environment) MarkCanonicalizationNotDone() { env.canonDone = false }

// MarkCanonicalizationDone closes the reading phase: from here on,
// structural equality of canonical types reduces to pointer (handle)
// equality, per spec.md 3's terminal-state invariant.
func (env *Environment) MarkCanonicalizationDone() { env.canonDone = true }

func (env *Environment) newType(kind TypeKind, base baseType, data any) TypeHandle {
	base.Kind = kind
	idx := uint32(len(env.types))
	env.types = append(env.types, typeSlot{kind: kind, base: base, data: data})
	return TypeHandle{idx: idx, gen: 0}
}

func (env *Environment) typeSlot(h TypeHandle) *typeSlot {
	abierrors.Invariant(h.idx != 0 && int(h.idx) < len(env.types), "invalid type handle %+v", h)
	return &env.types[h.idx]
}

func (env *Environment) newDecl(kind DeclKind, base baseDecl, data any) DeclHandle {
	base.Kind = kind
	idx := uint32(len(env.decls))
	env.decls = append(env.decls, declSlot{kind: kind, base: base, data: data})
	return DeclHandle{idx: idx, gen: 0}
}

func (env *Environment) declSlot(h DeclHandle) *declSlot {
	abierrors.Invariant(h.idx != 0 && int(h.idx) < len(env.decls), "invalid decl handle %+v", h)
	return &env.decls[h.idx]
}
