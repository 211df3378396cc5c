// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package diff

// Category is a bitset of change classifications a diff node can carry,
// per spec.md 4.7: "a bitset of categories... category assignment is a
// separable post-pass."
type Category uint32

// Recognized categories.
const (
	CategoryNone Category = 0

	CategoryAccessChange             Category = 1 << iota
	CategoryCompatibleTypeChange
	CategoryHarmlessDeclNameChange
	CategoryNonVirtualMemberFnChange
	CategoryStaticDataMemberChange
	CategoryHarmlessEnumChange
	CategoryHarmlessSymbolAliasChange
	CategorySubtypeChange
	CategoryABIIncompatible
	CategoryRedundant
	CategorySuppressed
)

// IsHarmless reports whether every bit set in c is one this package
// considers cosmetic rather than ABI-affecting, used by the default
// filtering context (spec.md 4.7 "a caller-supplied context masks
// categories").
func (c Category) IsHarmless() bool {
	const harmless = CategoryAccessChange | CategoryCompatibleTypeChange |
		CategoryHarmlessDeclNameChange | CategoryNonVirtualMemberFnChange |
		CategoryStaticDataMemberChange | CategoryHarmlessEnumChange |
		CategoryHarmlessSymbolAliasChange
	return c != 0 && c&^harmless == 0
}

// Has reports whether c has every bit of want set.
func (c Category) Has(want Category) bool { return c&want == want }
