// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package ir

// TypeHandle is a generational index into an Environment's type arena.
// Design Notes (spec.md 9) map the source's shared-pointer graph with
// cycles (class <-> member-function type <-> parameter) onto
// arena-owned, index-based handles: a handle is non-owning and
// independent of the arena slice ever being reallocated. Gen exists so a
// future free-list could detect a stale handle referring to a recycled
// slot; this implementation never recycles slots, so Gen is always 0,
// but every comparison and lookup goes through it regardless.
type TypeHandle struct {
	idx uint32
	gen uint32
}

// Valid reports whether h was ever returned by an Environment (the zero
// TypeHandle is never issued: NewEnvironment reserves index 0 as an empty
// slot, so the zero value is NilTypeHandle and the void type lives at a
// later index).
func (h TypeHandle) Valid() bool { return h != NilTypeHandle }

// NilTypeHandle is the distinguished "no type" handle, distinct from any
// handle Environment.newType returns (which start at index 1).
var NilTypeHandle = TypeHandle{idx: 0, gen: 0}

// DeclHandle is a generational index into an Environment's declaration
// arena, following the same discipline as TypeHandle.
type DeclHandle struct {
	idx uint32
	gen uint32
}

// Valid reports whether h refers to a real declaration.
func (h DeclHandle) Valid() bool { return h != NilDeclHandle }

// NilDeclHandle is the distinguished "no declaration" handle.
var NilDeclHandle = DeclHandle{idx: 0, gen: 0}

// ScopeHandle identifies a scope-capable declaration (translation unit,
// namespace, class/union, or function) by its DeclHandle. It exists as a
// distinct type purely for readability at call sites.
type ScopeHandle = DeclHandle
