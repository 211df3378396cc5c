// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package diff

import (
	"fmt"

	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// kindToDiffKind maps an ir.TypeKind to the Kind its diff node carries.
func kindToDiffKind(k ir.TypeKind) Kind {
	switch k {
	case ir.KindTypeDecl:
		return KindTypeDecl
	case ir.KindQualified:
		return KindQualified
	case ir.KindPointer:
		return KindPointer
	case ir.KindReference:
		return KindReference
	case ir.KindArray:
		return KindArray
	case ir.KindFunction, ir.KindMethod:
		return KindFunctionType
	case ir.KindEnum:
		return KindEnum
	case ir.KindTypedef:
		return KindTypedef
	case ir.KindClassOrUnion:
		return KindClassOrUnion
	default:
		return KindDistinct
	}
}

// TypeDiff computes the diff node for a pair of types in env, per
// spec.md 4.7. A nil env.CanonicalOf shortcut is only taken once
// canonicalization has closed (spec.md 4.7 "canonicalization drives
// efficiency... recognized in O(1) by handle equality").
func TypeDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	if !a.Valid() || !b.Valid() {
		if a == b {
			return &Node{Kind: KindDistinct}
		}
		return &Node{Kind: KindDistinct, FirstType: a, SecondType: b, Local: true, Detail: "type presence changed"}
	}
	if env.CanonicalizationDone() {
		ca, cb := env.CanonicalOf(a), env.CanonicalOf(b)
		if ca.Valid() && ca == cb {
			return &Node{Kind: kindToDiffKind(env.TypeKindOf(a)), FirstType: a, SecondType: b}
		}
	}

	ka, kb := env.TypeKindOf(a), env.TypeKindOf(b)
	if ka != kb {
		return &Node{Kind: KindDistinct, FirstType: a, SecondType: b, Local: true,
			Detail: fmt.Sprintf("type kind changed from %s to %s", ka, kb)}
	}

	switch ka {
	case ir.KindTypeDecl:
		return typeDeclDiff(env, a, b)
	case ir.KindQualified:
		return qualifiedDiff(env, a, b)
	case ir.KindPointer:
		return pointerDiff(env, a, b)
	case ir.KindReference:
		return referenceDiff(env, a, b)
	case ir.KindArray:
		return arrayDiff(env, a, b)
	case ir.KindFunction, ir.KindMethod:
		return functionTypeDiff(env, a, b)
	case ir.KindEnum:
		return enumDiff(env, a, b)
	case ir.KindTypedef:
		return typedefDiff(env, a, b)
	case ir.KindClassOrUnion:
		return classOrUnionDiff(env, a, b)
	default:
		return &Node{Kind: KindDistinct, FirstType: a, SecondType: b}
	}
}

func typeDeclDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	n := &Node{Kind: KindTypeDecl, FirstType: a, SecondType: b}
	da, _ := env.AsTypeDecl(a)
	db, _ := env.AsTypeDecl(b)
	if da.Name != db.Name {
		n.addLocal(CategoryHarmlessDeclNameChange, fmt.Sprintf("name changed from %q to %q", da.Name, db.Name))
	}
	if env.TypeSizeBits(a) != env.TypeSizeBits(b) {
		n.addLocal(CategorySubtypeChange|CategoryABIIncompatible,
			fmt.Sprintf("size changed from %d to %d bits", env.TypeSizeBits(a), env.TypeSizeBits(b)))
	}
	return n
}

func qualifiedDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	qa, _ := env.AsQualifiedType(a)
	qb, _ := env.AsQualifiedType(b)
	child := TypeDiff(env, qa.Underlying, qb.Underlying)
	n := &Node{Kind: KindQualified, FirstType: a, SecondType: b, Children: []*Node{child}}
	if qa.CV != qb.CV {
		n.addLocal(CategoryCompatibleTypeChange, "qualifiers changed")
	}
	if child.HasChange() {
		n.Local = true
	}
	return n
}

func pointerDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	pa, _ := env.AsPointerType(a)
	pb, _ := env.AsPointerType(b)
	child := TypeDiff(env, pa.Pointee, pb.Pointee)
	n := &Node{Kind: KindPointer, FirstType: a, SecondType: b, Children: []*Node{child}}
	if child.HasChange() {
		n.Local = true
		n.Categories |= child.Categories
	}
	return n
}

func referenceDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	ra, _ := env.AsReferenceType(a)
	rb, _ := env.AsReferenceType(b)
	child := TypeDiff(env, ra.Pointee, rb.Pointee)
	n := &Node{Kind: KindReference, FirstType: a, SecondType: b, Children: []*Node{child}}
	if ra.IsLValue != rb.IsLValue {
		n.addLocal(CategorySubtypeChange, "reference value-category changed")
	}
	if child.HasChange() {
		n.Local = true
		n.Categories |= child.Categories
	}
	return n
}

func arrayDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	aa, _ := env.AsArrayType(a)
	ab, _ := env.AsArrayType(b)
	child := TypeDiff(env, aa.Element, ab.Element)
	n := &Node{Kind: KindArray, FirstType: a, SecondType: b, Children: []*Node{child}}
	if len(aa.Subranges) != len(ab.Subranges) {
		n.addLocal(CategorySubtypeChange|CategoryABIIncompatible, "array dimension count changed")
	} else {
		for i := range aa.Subranges {
			if aa.Subranges[i] != ab.Subranges[i] {
				n.addLocal(CategorySubtypeChange|CategoryABIIncompatible, fmt.Sprintf("array dimension %d bounds changed", i))
			}
		}
	}
	if child.HasChange() {
		n.Local = true
		n.Categories |= child.Categories
	}
	return n
}

func typedefDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	ta, _ := env.AsTypedef(a)
	tb, _ := env.AsTypedef(b)
	child := TypeDiff(env, ta.Underlying, tb.Underlying)
	n := &Node{Kind: KindTypedef, FirstType: a, SecondType: b, Children: []*Node{child}}
	if ta.Name != tb.Name {
		n.addLocal(CategoryHarmlessDeclNameChange, fmt.Sprintf("typedef name changed from %q to %q", ta.Name, tb.Name))
	}
	if child.HasChange() {
		n.Local = true
		n.Categories |= child.Categories
	}
	return n
}

func enumDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	ea, _ := env.AsEnumType(a)
	eb, _ := env.AsEnumType(b)
	n := &Node{Kind: KindEnum, FirstType: a, SecondType: b}

	byName := func(es []ir.Enumerator) map[string]int64 {
		m := make(map[string]int64, len(es))
		for _, e := range es {
			m[e.Name] = e.Value
		}
		return m
	}
	ma, mb := byName(ea.Enumerators), byName(eb.Enumerators)
	for name, va := range ma {
		vb, ok := mb[name]
		if !ok {
			n.Children = append(n.Children, &Node{Kind: KindEnum, Label: name, Action: ActionDeleted, Local: true, Categories: CategoryHarmlessEnumChange, Detail: "enumerator deleted"})
			continue
		}
		if va != vb {
			n.Children = append(n.Children, &Node{Kind: KindEnum, Label: name, Action: ActionChanged, Local: true,
				Categories: CategorySubtypeChange | CategoryABIIncompatible,
				Detail:     fmt.Sprintf("enumerator %s value changed from %d to %d", name, va, vb)})
		}
	}
	for name := range mb {
		if _, ok := ma[name]; !ok {
			n.Children = append(n.Children, &Node{Kind: KindEnum, Label: name, Action: ActionInserted, Local: true, Categories: CategoryHarmlessEnumChange, Detail: "enumerator inserted"})
		}
	}
	for _, c := range n.Children {
		n.Categories |= c.Categories
	}
	n.Local = len(n.Children) > 0
	return n
}

func functionTypeDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	fa, isMethodA := env.AsMethodType(a)
	fb, isMethodB := env.AsMethodType(b)
	var pa, pb *ir.FunctionType
	if isMethodA {
		pa = &fa.FunctionType
	} else {
		pa, _ = env.AsFunctionType(a)
	}
	if isMethodB {
		pb = &fb.FunctionType
	} else {
		pb, _ = env.AsFunctionType(b)
	}

	n := &Node{Kind: KindFunctionType, FirstType: a, SecondType: b}
	retDiff := TypeDiff(env, pa.Return, pb.Return)
	retDiff.Label = "return"
	n.Children = append(n.Children, retDiff)

	maxLen := len(pa.Params)
	if len(pb.Params) > maxLen {
		maxLen = len(pb.Params)
	}
	for i := 0; i < maxLen; i++ {
		switch {
		case i >= len(pa.Params):
			n.Children = append(n.Children, &Node{Kind: KindFnParm, Label: fmt.Sprintf("parameter %d", i), Action: ActionInserted,
				Local: true, Categories: CategorySubtypeChange | CategoryABIIncompatible, Detail: "parameter added"})
		case i >= len(pb.Params):
			n.Children = append(n.Children, &Node{Kind: KindFnParm, Label: fmt.Sprintf("parameter %d", i), Action: ActionDeleted,
				Local: true, Categories: CategorySubtypeChange | CategoryABIIncompatible, Detail: "parameter removed"})
		default:
			pd := TypeDiff(env, pa.Params[i].Type, pb.Params[i].Type)
			pd.Label = fmt.Sprintf("parameter %d", i)
			if pd.HasChange() {
				pd.Action = ActionSubtypeChanged
				pd.Categories |= CategorySubtypeChange
			}
			n.Children = append(n.Children, pd)
		}
	}
	for _, c := range n.Children {
		n.Categories |= c.Categories
	}
	n.Local = n.HasLocalChildChange()
	return n
}

// HasLocalChildChange reports whether any direct child of n carries a
// change, used by function_type_diff/class_or_union_diff to decide
// whether the wrapping node itself should be marked Local even though
// its own fields (besides the child list) never change directly.
func (n *Node) HasLocalChildChange() bool {
	for _, c := range n.Children {
		if c.HasChange() {
			return true
		}
	}
	return false
}

func classOrUnionDiff(env *ir.Environment, a, b ir.TypeHandle) *Node {
	ca, _ := env.AsClassOrUnion(a)
	cb, _ := env.AsClassOrUnion(b)
	n := &Node{Kind: KindClassOrUnion, FirstType: a, SecondType: b}

	n.Children = append(n.Children, diffBases(env, ca, cb)...)
	n.Children = append(n.Children, diffDataMembers(env, ca, cb)...)
	n.Children = append(n.Children, diffMemberFunctions(env, ca, cb)...)

	if ca.IsStruct != cb.IsStruct || ca.IsUnion != cb.IsUnion {
		n.addLocal(CategorySubtypeChange|CategoryABIIncompatible, "struct/union/class kind changed")
	}
	for _, c := range n.Children {
		n.Categories |= c.Categories
	}
	if n.HasLocalChildChange() {
		n.Local = true
	}
	return n
}

func diffBases(env *ir.Environment, ca, cb *ir.ClassOrUnion) []*Node {
	// Bases are keyed by their canonical base type, per spec.md 4.7 "diff
	// base specifiers by canonical base type".
	keyOf := func(h ir.TypeHandle) ir.TypeHandle {
		if env.CanonicalizationDone() {
			if c := env.CanonicalOf(h); c.Valid() {
				return c
			}
		}
		return h
	}
	byKeyA := map[ir.TypeHandle]ir.BaseSpecifier{}
	for _, base := range ca.Bases {
		byKeyA[keyOf(base.Base)] = base
	}
	byKeyB := map[ir.TypeHandle]ir.BaseSpecifier{}
	for _, base := range cb.Bases {
		byKeyB[keyOf(base.Base)] = base
	}

	var nodes []*Node
	for key, basea := range byKeyA {
		baseb, ok := byKeyB[key]
		if !ok {
			nodes = append(nodes, &Node{Kind: KindClassOrUnion, Label: "base", Action: ActionDeleted,
				Local: true, Categories: CategorySubtypeChange | CategoryABIIncompatible, Detail: "base class removed"})
			continue
		}
		n := &Node{Kind: KindClassOrUnion, Label: "base", Action: ActionUnchanged}
		if basea.Access != baseb.Access {
			n.addLocal(CategoryAccessChange, "base class access changed")
		}
		if basea.OffsetBits != baseb.OffsetBits || basea.IsVirtual != baseb.IsVirtual {
			n.addLocal(CategorySubtypeChange|CategoryABIIncompatible, "base class layout changed")
		}
		if n.Local {
			n.Action = ActionChanged
			nodes = append(nodes, n)
		}
	}
	for key, baseb := range byKeyB {
		if _, ok := byKeyA[key]; !ok {
			_ = baseb
			nodes = append(nodes, &Node{Kind: KindClassOrUnion, Label: "base", Action: ActionInserted,
				Local: true, Categories: CategorySubtypeChange | CategoryABIIncompatible, Detail: "base class added"})
		}
	}
	return nodes
}

func diffDataMembers(env *ir.Environment, ca, cb *ir.ClassOrUnion) []*Node {
	byNameA := map[string]ir.DataMember{}
	orderA := make([]string, 0, len(ca.DataMembers))
	for _, dm := range ca.DataMembers {
		name := env.DeclName(dm.Var)
		byNameA[name] = dm
		orderA = append(orderA, name)
	}
	byNameB := map[string]ir.DataMember{}
	for _, dm := range cb.DataMembers {
		byNameB[env.DeclName(dm.Var)] = dm
	}

	var nodes []*Node
	seen := map[string]bool{}
	for _, name := range orderA {
		seen[name] = true
		dma := byNameA[name]
		dmb, ok := byNameB[name]
		if !ok {
			nodes = append(nodes, &Node{Kind: KindVar, Label: name, Action: ActionDeleted,
				Local: true, Categories: CategorySubtypeChange | CategoryABIIncompatible, Detail: "data member removed"})
			continue
		}
		va, _ := env.AsVarDecl(dma.Var)
		vb, _ := env.AsVarDecl(dmb.Var)
		sub := TypeDiff(env, va.Type, vb.Type)
		sub.Label = name
		n := &Node{Kind: KindVar, Label: name, Children: []*Node{sub}}
		if dma.Access != dmb.Access {
			n.addLocal(CategoryAccessChange, "access changed")
		}
		if dma.LayoutOffsetBits != dmb.LayoutOffsetBits {
			n.addLocal(CategorySubtypeChange|CategoryABIIncompatible, fmt.Sprintf("offset changed from %d to %d bits", dma.LayoutOffsetBits, dmb.LayoutOffsetBits))
		}
		if dma.IsStatic != dmb.IsStatic {
			n.addLocal(CategoryStaticDataMemberChange, "static-ness changed")
		}
		if sub.HasChange() {
			n.Local = true
			n.Action = ActionSubtypeChanged
			n.Categories |= CategorySubtypeChange
		}
		if n.Local && n.Action == ActionUnchanged {
			n.Action = ActionChanged
		}
		if n.Local {
			nodes = append(nodes, n)
		}
	}
	for _, dm := range cb.DataMembers {
		name := env.DeclName(dm.Var)
		if !seen[name] {
			nodes = append(nodes, &Node{Kind: KindVar, Label: name, Action: ActionInserted,
				Local: true, Categories: CategorySubtypeChange | CategoryABIIncompatible, Detail: "data member inserted"})
		}
	}
	return nodes
}

// memberFunctionKey is a member function's mangled signature, per
// spec.md 4.7 "keyed by mangled signature". A function without a
// linkage name (common for inline-only definitions DWARF never mangled)
// falls back to its unqualified name, which is still stable within one
// class.
func memberFunctionKey(env *ir.Environment, fn ir.DeclHandle) string {
	if ln := env.DeclLinkageName(fn); ln != "" {
		return ln
	}
	return env.DeclName(fn)
}

func diffMemberFunctions(env *ir.Environment, ca, cb *ir.ClassOrUnion) []*Node {
	byKeyA := map[string]ir.MemberFunction{}
	orderA := make([]string, 0, len(ca.MemberFunctions))
	for _, mf := range ca.MemberFunctions {
		key := memberFunctionKey(env, mf.Fn)
		byKeyA[key] = mf
		orderA = append(orderA, key)
	}
	byKeyB := map[string]ir.MemberFunction{}
	for _, mf := range cb.MemberFunctions {
		byKeyB[memberFunctionKey(env, mf.Fn)] = mf
	}

	var nodes []*Node
	seen := map[string]bool{}
	for _, key := range orderA {
		seen[key] = true
		mfa := byKeyA[key]
		mfb, ok := byKeyB[key]
		if !ok {
			nodes = append(nodes, &Node{Kind: KindFunctionDecl, Label: key, Action: ActionDeleted,
				Local: true, Categories: CategorySubtypeChange | CategoryABIIncompatible, Detail: "member function removed"})
			continue
		}
		n := memberFunctionDiff(env, mfa, mfb)
		n.Label = key
		if n.Local {
			nodes = append(nodes, n)
		}
	}
	for key, mf := range byKeyB {
		if !seen[key] {
			_ = mf
			nodes = append(nodes, &Node{Kind: KindFunctionDecl, Label: key, Action: ActionInserted,
				Local: true, Categories: CategorySubtypeChange | CategoryABIIncompatible, Detail: "member function inserted"})
		}
	}
	return nodes
}

// memberFunctionDiff implements scenario S5 (spec.md 8): a vtable_offset
// change is reported explicitly and flags the enclosing class diff as
// ABI-incompatible.
func memberFunctionDiff(env *ir.Environment, a, b ir.MemberFunction) *Node {
	n := &Node{Kind: KindFunctionDecl}
	if a.Access != b.Access {
		n.addLocal(CategoryAccessChange, "access changed")
	}
	if a.IsVirtual != b.IsVirtual {
		n.addLocal(CategorySubtypeChange|CategoryABIIncompatible, "virtuality changed")
	}
	if a.IsVirtual && b.IsVirtual && a.VtableOffset != b.VtableOffset {
		n.addLocal(CategoryABIIncompatible, fmt.Sprintf("the vtable offset changed from %d to %d", a.VtableOffset, b.VtableOffset))
	}
	fda, _ := env.AsFunctionDecl(a.Fn)
	fdb, _ := env.AsFunctionDecl(b.Fn)
	if fda != nil && fdb != nil {
		sub := TypeDiff(env, fda.Type, fdb.Type)
		if sub.HasChange() {
			n.Children = []*Node{sub}
			n.Local = true
			n.Categories |= CategorySubtypeChange | sub.Categories
		}
	}
	// A change confined to a non-virtual member function's signature does
	// not itself break ABI the way a vtable slot change does, per
	// spec.md 4.7's "non-virtual-member-fn change" category.
	if n.Local && !a.IsVirtual && !b.IsVirtual {
		n.Categories |= CategoryNonVirtualMemberFnChange
	}
	return n
}
