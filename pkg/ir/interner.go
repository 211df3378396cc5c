// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package ir

// InternedString is a handle for a string whose identity is pointer-equal
// when content-equal within one Environment (spec.md 3). It wraps an
// index into the owning Interner's table rather than a raw string so
// equality is a single integer comparison.
type InternedString struct {
	idx int32
}

// Empty reports whether s is the interner's zero-length string, which is
// always index 0.
func (s InternedString) Empty() bool { return s.idx == 0 }

// Interner is an Environment's string table.
type Interner struct {
	table  map[string]int32
	values []string
}

func newInterner() *Interner {
	in := &Interner{table: map[string]int32{}}
	in.intern("")
	return in
}

func (in *Interner) intern(s string) InternedString {
	if idx, ok := in.table[s]; ok {
		return InternedString{idx: idx}
	}
	idx := int32(len(in.values))
	in.values = append(in.values, s)
	in.table[s] = idx
	return InternedString{idx: idx}
}

func (in *Interner) get(s InternedString) string {
	if int(s.idx) >= len(in.values) {
		return ""
	}
	return in.values[s.idx]
}

// String resolves an interned handle back to its content. It is a method
// on Environment, not InternedString, since the handle alone does not
// carry a reference to its owning table.
func (env *Environment) String(s InternedString) string { return env.interner.get(s) }
