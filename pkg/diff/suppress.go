// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package diff

import (
	"github.com/woodard/libabigail-sub002/pkg/ir"
	"github.com/woodard/libabigail-sub002/pkg/suppression"
)

// ApplySuppressions walks every function/variable diff in cd and, for each
// one the suppression set matches (spec.md 4.6's suppresses() contract),
// marks every locally-changed node in its subtree CategorySuppressed. It
// also consults the [suppress_type] rules for any class_or_union reached
// while walking a type diff, so a type-level suppression silences a
// change wherever it surfaces (spec.md 4.7: "suppression application...
// is a tree walk"). Call cd.RecomputeStats() afterward to refresh Stats.
func ApplySuppressions(env *ir.Environment, cd *CorpusDiff, set *suppression.Set, bc suppression.BinaryContext) {
	if set == nil {
		return
	}
	for _, n := range cd.ChangedFunctions {
		suppressFunctionDiff(env, n, set, bc)
	}
	for _, n := range cd.ChangedVariables {
		suppressVariableDiff(env, n, set, bc)
	}
}

func suppressFunctionDiff(env *ir.Environment, n *Node, set *suppression.Set, bc suppression.BinaryContext) {
	changeKind := suppression.ChangeKindFunctionSubtypeChange
	desc := describeFunction(env, n.SecondDecl, changeKind)
	if set.SuppressesFunction(bc, desc) {
		markSuppressed(n)
		return
	}
	suppressTypeSubtree(env, n, set, bc, suppression.ReachDirect)
}

func suppressVariableDiff(env *ir.Environment, n *Node, set *suppression.Set, bc suppression.BinaryContext) {
	changeKind := suppression.ChangeKindVariableSubtypeChange
	desc := describeVariable(env, n.SecondDecl, changeKind)
	if set.SuppressesVariable(bc, desc) {
		markSuppressed(n)
		return
	}
	suppressTypeSubtree(env, n, set, bc, suppression.ReachDirect)
}

// suppressTypeSubtree walks n looking for class_or_union-kinded type diff
// nodes and checks each against [suppress_type] rules, tagging the
// surrounding local change CategorySuppressed on a match. reach tracks
// whether the current node was reached through a pointer/reference, per
// spec.md 6.2's accessed_through key.
func suppressTypeSubtree(env *ir.Environment, n *Node, set *suppression.Set, bc suppression.BinaryContext, reach suppression.ReachKind) {
	switch n.Kind {
	case KindPointer:
		reach = suppression.ReachPointer
	case KindReference:
		reach = suppression.ReachReference
	case KindClassOrUnion:
		if n.SecondType.Valid() {
			desc := describeClassOrUnion(env, n.SecondType, reach, nil)
			desc.InsertedMembers = insertedMembersOf(n, desc)
			if set.SuppressesType(bc, desc) {
				markSuppressed(n)
				return
			}
		}
	}
	for _, c := range n.Children {
		suppressTypeSubtree(env, c, set, bc, reach)
	}
}

// insertedMembersOf scans n's direct data-member children for ones the
// edit script marked ActionInserted, resolving each one's bit offset from
// the second class's already-built member-offset table (desc is built
// from n.SecondType, the class the member was inserted into), building
// the has_data_member_inserted_* evaluation input.
func insertedMembersOf(n *Node, desc suppression.TypeDescriptor) []suppression.InsertedMember {
	var out []suppression.InsertedMember
	for _, c := range n.Children {
		if c.Action != ActionInserted || c.Kind != KindVar {
			continue
		}
		off, ok := desc.MemberOffsetsBits[c.Label]
		if !ok {
			continue
		}
		out = append(out, suppression.InsertedMember{Name: c.Label, OffsetBits: off})
	}
	return out
}

// markSuppressed tags n and every locally-changed descendant
// CategorySuppressed, leaving HasChange() semantics untouched: a
// suppressed change is still a change for canonicalization/diff purposes,
// just one the reporter and Stats must not surface (spec.md 4.6: "a
// suppressed change is not reported, but still recorded").
func markSuppressed(n *Node) {
	n.Walk(func(c *Node) bool {
		if c.Local {
			c.Categories |= CategorySuppressed
		}
		return true
	})
}
