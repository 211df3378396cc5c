// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Package diff implements component C7: the structured diff engine that
// compares two ABI corpora (or two types, or two declarations) built in
// the same environment, applying suppressions and change-category
// classification as a separable post-pass.
package diff

import "github.com/woodard/libabigail-sub002/pkg/ir"

// Kind discriminates a diff node's shape, one per IR variant plus the
// distinct/fallback case, per spec.md 4.7.
type Kind int

// Recognized diff-node kinds.
const (
	KindDistinct Kind = iota
	KindTypeDecl
	KindQualified
	KindPointer
	KindReference
	KindArray
	KindEnum
	KindTypedef
	KindClassOrUnion
	KindScope
	KindFnParm
	KindFunctionType
	KindFunctionDecl
	KindVar
	KindTranslationUnit
	KindCorpus
	KindCorpusGroup
)

func (k Kind) String() string {
	switch k {
	case KindDistinct:
		return "distinct_diff"
	case KindTypeDecl:
		return "type_decl_diff"
	case KindQualified:
		return "qualified_type_diff"
	case KindPointer:
		return "pointer_diff"
	case KindReference:
		return "reference_diff"
	case KindArray:
		return "array_diff"
	case KindEnum:
		return "enum_diff"
	case KindTypedef:
		return "typedef_diff"
	case KindClassOrUnion:
		return "class_or_union_diff"
	case KindScope:
		return "scope_diff"
	case KindFnParm:
		return "fn_parm_diff"
	case KindFunctionType:
		return "function_type_diff"
	case KindFunctionDecl:
		return "function_decl_diff"
	case KindVar:
		return "var_diff"
	case KindTranslationUnit:
		return "translation_unit_diff"
	case KindCorpus:
		return "corpus_diff"
	case KindCorpusGroup:
		return "corpus_group_diff"
	default:
		return "unknown_diff"
	}
}

// EditAction classifies one element of an ordered-edit-script comparison
// (data members, member functions, enumerators, parameters), per
// spec.md 4.7 "producing deleted/inserted/changed/subtype-changed lists".
type EditAction int

// Recognized edit actions.
const (
	ActionUnchanged EditAction = iota
	ActionDeleted
	ActionInserted
	ActionChanged
	ActionSubtypeChanged
)

// Node is one vertex of the diff graph mirroring IR structure
// (spec.md 4.7). Not every field is meaningful for every Kind; the
// reporter and suppression matcher inspect Kind before reading the
// kind-specific fields.
type Node struct {
	Kind Kind

	FirstType  ir.TypeHandle
	SecondType ir.TypeHandle

	FirstDecl  ir.DeclHandle
	SecondDecl ir.DeclHandle

	// Label names this node for reporting: a data member/parameter name,
	// an index, or empty for a root-level node.
	Label string

	// Action classifies this node's place in a parent's ordered-edit
	// script; ActionUnchanged for the corpus/translation-unit/top-level
	// type roots, which are not edit-script elements themselves.
	Action EditAction

	// Local is true when this node itself carries a change, and Detail
	// then describes it. Wrapper nodes (pointer, reference, qualified,
	// typedef, array, function type, class, data member, member function,
	// function and variable declarations) also set Local when a child has
	// a change; Detail stays empty unless the node has a change of its own.
	Local bool

	// Detail is a human-readable summary of a local change, consumed
	// verbatim by the reporter (e.g. "the vtable offset changed from 3 to 4").
	Detail string

	Categories Category

	Children []*Node
}

// HasChange reports whether n or any descendant carries a change at all.
func (n *Node) HasChange() bool {
	if n == nil {
		return false
	}
	if n.Local {
		return true
	}
	for _, c := range n.Children {
		if c.HasChange() {
			return true
		}
	}
	return false
}

// IsEmpty reports whether n represents "no diff" — either n is nil, or
// every descendant is unchanged. diff(C, C) must satisfy this for every
// node in the tree (spec.md 8 invariant 2).
func (n *Node) IsEmpty() bool { return !n.HasChange() }

// Walk calls fn for n and every descendant, depth-first pre-order. fn
// returning false skips n's children (used by suppression propagation
// and leaf-mode filtering).
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// addLocal appends detail as a local change with the given categories,
// merging rather than overwriting so a node can accumulate more than one
// locally-observed change (e.g. both inline-ness and linkage name).
func (n *Node) addLocal(categories Category, detail string) {
	n.Local = true
	n.Categories |= categories
	if n.Detail == "" {
		n.Detail = detail
	} else {
		n.Detail += "; " + detail
	}
}
