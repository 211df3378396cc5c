// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package elf

// SymbolType classifies an ELF symbol's st_info type nibble.
type SymbolType uint8

// Recognized symbol types, per spec.md 3 "ELF symbol".
const (
	SymbolTypeNone SymbolType = iota
	SymbolTypeObject
	SymbolTypeFunction
	SymbolTypeSection
	SymbolTypeFile
	SymbolTypeCommon
	SymbolTypeTLS
	SymbolTypeGNUIFunc
)

// SymbolBinding classifies an ELF symbol's st_info binding nibble.
type SymbolBinding uint8

// Recognized symbol bindings.
const (
	BindingLocal SymbolBinding = iota
	BindingGlobal
	BindingWeak
	BindingGNUUnique
)

// Version names an ELF symbol's version, attached from GNU_versym /
// GNU_verdef / GNU_verneed.
type Version struct {
	Name      string
	IsDefault bool
}

// Symbol is one entry of a preferred symbol table (.symtab or .dynsym),
// decorated with version info and alias-group membership.
//
// Aliases form a circular singly linked list via Next; exactly one member
// of the group has IsMain set, reachable from any alias by walking Next
// until IsMain is true (or back to the start).
type Symbol struct {
	Name    string
	Version Version
	Type    SymbolType
	Binding SymbolBinding
	Size    uint64
	Value   uint64 // st_value: address, or section-relative offset
	Index   int    // index into the chosen symbol table

	IsDefined bool
	IsCommon  bool

	IsMain bool
	Next   *Symbol // next alias in the circular list; nil until grouped

	// CommonInstances holds additional common-symbol instances sharing
	// this symbol's name, beyond the first one encountered.
	CommonInstances []*Symbol
}

// Aliases returns every symbol in s's alias group, starting with s and
// visiting Next until the walk returns to s. A symbol with no aliases
// returns a single-element slice containing itself.
func (s *Symbol) Aliases() []*Symbol {
	if s == nil {
		return nil
	}
	out := []*Symbol{s}
	for cur := s.Next; cur != nil && cur != s; cur = cur.Next {
		out = append(out, cur)
	}
	return out
}

// Main returns the main alias of s's group, or s itself if ungrouped.
func (s *Symbol) Main() *Symbol {
	if s == nil || s.IsMain {
		return s
	}
	for _, a := range s.Aliases() {
		if a.IsMain {
			return a
		}
	}
	return s
}

// groupAliases links a set of symbols that share an address and type into
// one circular alias group, choosing the global-bound symbol (or the
// first one, if none is global) as main.
func groupAliases(syms []*Symbol) {
	if len(syms) < 2 {
		if len(syms) == 1 {
			syms[0].IsMain = true
		}
		return
	}
	mainIdx := 0
	for i, s := range syms {
		if s.Binding == BindingGlobal {
			mainIdx = i
			break
		}
	}
	for i, s := range syms {
		s.IsMain = i == mainIdx
		s.Next = syms[(i+1)%len(syms)]
	}
}
