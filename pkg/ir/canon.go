// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package ir

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
)

// canonRegistry is a content-addressed map from a structural hash bucket
// to the candidate handles seen so far for that hash, per Design Notes
// (spec.md 9): "keep a structural hash -> bucket map; on collision, fall
// back to a deep structural comparator".
type canonRegistry struct {
	buckets map[uint64][]TypeHandle
}

func newCanonRegistry() *canonRegistry {
	return &canonRegistry{buckets: map[uint64][]TypeHandle{}}
}

// isRisky reports whether h is of a type kind spec.md 4.4 calls out as
// unsafe to canonicalize before its subtypes are known: classes
// themselves, and anything built directly on top of one.
func (env *Environment) isRisky(h TypeHandle) bool {
	slot := env.typeSlot(h)
	switch slot.kind {
	case KindClassOrUnion:
		return true
	case KindFunction, KindMethod:
		return true // "function types under construction"
	case KindTypedef:
		td := slot.data.(*Typedef)
		return env.isRiskyOrClass(td.Underlying)
	case KindPointer:
		return env.isRiskyOrClass(slot.data.(*PointerType).Pointee)
	case KindReference:
		return env.isRiskyOrClass(slot.data.(*ReferenceType).Pointee)
	case KindArray:
		return env.isRiskyOrClass(slot.data.(*ArrayType).Element)
	case KindQualified:
		return env.isRiskyOrClass(slot.data.(*QualifiedType).Underlying)
	default:
		return false
	}
}

func (env *Environment) isRiskyOrClass(h TypeHandle) bool {
	if !h.Valid() {
		return false
	}
	if env.typeSlot(h).kind == KindClassOrUnion {
		return true
	}
	if !env.CanonicalOf(h).Valid() {
		// A transitively non-canonicalized subtype also makes the
		// containing type risky, per spec.md 4.4.
		return true
	}
	return env.isRisky(h)
}

// Canonicalize installs h's canonical-type reference: either h itself
// (first of its structural shape) or a previously seen structurally
// equal type's handle. Risky types are instead pushed onto the late
// queue and canonicalized by PerformLateTypeCanonicalizing.
func (env *Environment) Canonicalize(h TypeHandle) TypeHandle {
	if !h.Valid() {
		return h
	}
	if c := env.CanonicalOf(h); c.Valid() {
		return c
	}
	if env.isRisky(h) {
		env.lateQueue = append(env.lateQueue, h)
		return NilTypeHandle
	}
	return env.canonicalizeNow(h)
}

func (env *Environment) canonicalizeNow(h TypeHandle) TypeHandle {
	key := env.structuralHash(h)
	for _, cand := range env.canon.buckets[key] {
		if cand == h {
			continue
		}
		if env.structurallyEqual(h, cand, map[[2]TypeHandle]bool{}) {
			env.typeSlot(h).base.Canonical = cand
			return cand
		}
	}
	env.canon.buckets[key] = append(env.canon.buckets[key], h)
	env.typeSlot(h).base.Canonical = h
	return h
}

// MarkCanonical force-installs h as its own canonical handle, used for
// the environment's void/variadic singletons which have no useful
// structural description to hash.
func (env *Environment) MarkCanonical(h TypeHandle) {
	env.typeSlot(h).base.Canonical = h
	key := env.structuralHash(h)
	env.canon.buckets[key] = append(env.canon.buckets[key], h)
}

// PerformLateTypeCanonicalizing drains the late-canonicalization queue,
// per spec.md 4.4 and the testable property "Late-canonicalization
// coverage": every type on the queue ends up with a canonical handle.
func (env *Environment) PerformLateTypeCanonicalizing() {
	// canonicalizeNow does not re-check riskiness, so the first pass
	// canonicalizes every queued type and leaves the queue empty.
	for pass := 0; len(env.lateQueue) > 0 && pass < len(env.lateQueue)+1; pass++ {
		remaining := env.lateQueue[:0]
		progressed := false
		for _, h := range env.lateQueue {
			if env.CanonicalOf(h).Valid() {
				progressed = true
				continue
			}
			env.canonicalizeNow(h)
			progressed = true
		}
		env.lateQueue = remaining
		if !progressed {
			break
		}
	}
	env.MarkCanonicalizationDone()
}

// structuralHash computes a bucket key from a bounded-depth description
// of h's shape. It need not be collision-free: canonicalizeNow always
// confirms candidates with structurallyEqual.
func (env *Environment) structuralHash(h TypeHandle) uint64 {
	var b strings.Builder
	env.describeType(h, &b, 0)
	hsh := fnv.New64a()
	hsh.Write([]byte(b.String()))
	return hsh.Sum64()
}

func (env *Environment) describeType(h TypeHandle, b *strings.Builder, depth int) {
	if !h.Valid() || depth > 8 {
		fmt.Fprintf(b, "<nil>")
		return
	}
	slot := env.typeSlot(h)
	fmt.Fprintf(b, "%s{%d,%d,", slot.kind, slot.base.SizeBits, slot.base.AlignBits)
	switch d := slot.data.(type) {
	case *TypeDecl:
		fmt.Fprintf(b, "%s}", d.Name)
	case *QualifiedType:
		fmt.Fprintf(b, "%d,", d.CV)
		env.describeType(d.Underlying, b, depth+1)
		b.WriteByte('}')
	case *PointerType:
		env.describeType(d.Pointee, b, depth+1)
		b.WriteByte('}')
	case *ReferenceType:
		fmt.Fprintf(b, "%v,", d.IsLValue)
		env.describeType(d.Pointee, b, depth+1)
		b.WriteByte('}')
	case *ArrayType:
		fmt.Fprintf(b, "%d,", len(d.Subranges))
		env.describeType(d.Element, b, depth+1)
		b.WriteByte('}')
	case *FunctionType:
		fmt.Fprintf(b, "%d,", len(d.Params))
		env.describeType(d.Return, b, depth+1)
		b.WriteByte('}')
	case *MethodType:
		fmt.Fprintf(b, "%d,", len(d.Params))
		env.describeType(d.Return, b, depth+1)
		env.describeType(d.Class, b, depth+1)
		b.WriteByte('}')
	case *EnumType:
		fmt.Fprintf(b, "%d}", len(d.Enumerators))
	case *Typedef:
		fmt.Fprintf(b, "%s,", d.Name)
		env.describeType(d.Underlying, b, depth+1)
		b.WriteByte('}')
	case *ClassOrUnion:
		fmt.Fprintf(b, "%s,%v,%d,%d}", canonicalAnonymousName(d.Name), d.IsStruct, len(d.DataMembers), len(d.Bases))
	default:
		b.WriteByte('}')
	}
}

// anonSuffixRE matches the numeric disambiguator libabigail appends to
// synthesized anonymous-type names, e.g. "__anonymous_struct__3".
var anonSuffixRE = regexp.MustCompile(`^(__anonymous_(?:struct|union|enum)__)\d+(::.*)?$`)

// canonicalAnonymousName strips a synthesized anonymous name's numeric
// suffix so two fresh instances compare equal, per spec.md 4.4's
// "name-comparison rule" and scenario S3.
func canonicalAnonymousName(name string) string {
	if m := anonSuffixRE.FindStringSubmatch(name); m != nil {
		return m[1] + m[2]
	}
	return name
}

// structurallyEqual implements spec.md 4.4's structural equality: two
// types have matching kind, size, alignment, and recursively equal
// substructures. visiting bounds recursion across cyclic graphs (e.g. a
// class with a member pointing back to itself): a pair already being
// compared is provisionally assumed equal, matching how canonicalization
// treats a structurally-recursive type as self-consistent.
func (env *Environment) structurallyEqual(a, b TypeHandle, visiting map[[2]TypeHandle]bool) bool {
	if a == b {
		return true
	}
	if !a.Valid() || !b.Valid() {
		return false
	}
	if ca, cb := env.CanonicalOf(a), env.CanonicalOf(b); ca.Valid() && cb.Valid() {
		return ca == cb
	}
	pair := [2]TypeHandle{a, b}
	if visiting[pair] {
		return true
	}
	visiting[pair] = true
	defer delete(visiting, pair)

	sa, sb := env.typeSlot(a), env.typeSlot(b)
	if sa.kind != sb.kind || sa.base.SizeBits != sb.base.SizeBits || sa.base.AlignBits != sb.base.AlignBits {
		return false
	}

	switch da := sa.data.(type) {
	case *TypeDecl:
		return da.Name == sb.data.(*TypeDecl).Name
	case *QualifiedType:
		db := sb.data.(*QualifiedType)
		return da.CV == db.CV && env.structurallyEqual(da.Underlying, db.Underlying, visiting)
	case *PointerType:
		db := sb.data.(*PointerType)
		return env.structurallyEqual(da.Pointee, db.Pointee, visiting)
	case *ReferenceType:
		db := sb.data.(*ReferenceType)
		return da.IsLValue == db.IsLValue && env.structurallyEqual(da.Pointee, db.Pointee, visiting)
	case *ArrayType:
		db := sb.data.(*ArrayType)
		if len(da.Subranges) != len(db.Subranges) {
			return false
		}
		for i := range da.Subranges {
			if da.Subranges[i] != db.Subranges[i] {
				return false
			}
		}
		return env.structurallyEqual(da.Element, db.Element, visiting)
	case *FunctionType:
		db := sb.data.(*FunctionType)
		return env.functionTypeEqual(da, db, visiting)
	case *MethodType:
		db := sb.data.(*MethodType)
		return env.structurallyEqual(da.Class, db.Class, visiting) && env.functionTypeEqual(&da.FunctionType, &db.FunctionType, visiting)
	case *EnumType:
		db := sb.data.(*EnumType)
		if len(da.Enumerators) != len(db.Enumerators) {
			return false
		}
		for i := range da.Enumerators {
			if da.Enumerators[i] != db.Enumerators[i] {
				return false
			}
		}
		return env.structurallyEqual(da.Underlying, db.Underlying, visiting)
	case *Typedef:
		db := sb.data.(*Typedef)
		return da.Name == db.Name && env.structurallyEqual(da.Underlying, db.Underlying, visiting)
	case *ClassOrUnion:
		db := sb.data.(*ClassOrUnion)
		return env.classOrUnionEqual(da, db, visiting)
	default:
		return false
	}
}

func (env *Environment) functionTypeEqual(a, b *FunctionType, visiting map[[2]TypeHandle]bool) bool {
	if len(a.Params) != len(b.Params) {
		return false
	}
	if !env.structurallyEqual(a.Return, b.Return, visiting) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].IsVariadic != b.Params[i].IsVariadic {
			return false
		}
		if !env.structurallyEqual(a.Params[i].Type, b.Params[i].Type, visiting) {
			return false
		}
	}
	return true
}

// classOrUnionEqual compares the ordered tuple spec.md 4.4 names: name,
// is_struct-ness, base specifiers, data members, and virtual member
// functions (non-virtual member functions do not affect ABI layout and
// are excluded from structural equality, matching diff categorization's
// treatment of them as harmless).
func (env *Environment) classOrUnionEqual(a, b *ClassOrUnion, visiting map[[2]TypeHandle]bool) bool {
	if canonicalAnonymousName(a.Name) != canonicalAnonymousName(b.Name) {
		return false
	}
	if a.IsStruct != b.IsStruct || a.IsUnion != b.IsUnion {
		return false
	}
	if len(a.Bases) != len(b.Bases) || len(a.DataMembers) != len(b.DataMembers) {
		return false
	}
	for i := range a.Bases {
		ba, bb := a.Bases[i], b.Bases[i]
		if ba.Access != bb.Access || ba.OffsetBits != bb.OffsetBits || ba.IsVirtual != bb.IsVirtual {
			return false
		}
		if !env.structurallyEqual(ba.Base, bb.Base, visiting) {
			return false
		}
	}
	for i := range a.DataMembers {
		ma, mb := a.DataMembers[i], b.DataMembers[i]
		if ma.Access != mb.Access || ma.LayoutOffsetBits != mb.LayoutOffsetBits || ma.IsStatic != mb.IsStatic {
			return false
		}
		if env.DeclName(ma.Var) != env.DeclName(mb.Var) {
			return false
		}
		va, _ := env.AsVarDecl(ma.Var)
		vb, _ := env.AsVarDecl(mb.Var)
		if va == nil || vb == nil || !env.structurallyEqual(va.Type, vb.Type, visiting) {
			return false
		}
	}

	virtualA := virtualSignatures(env, a)
	virtualB := virtualSignatures(env, b)
	if len(virtualA) != len(virtualB) {
		return false
	}
	for i := range virtualA {
		if virtualA[i] != virtualB[i] {
			return false
		}
	}
	return true
}

func virtualSignatures(env *Environment, c *ClassOrUnion) []string {
	var out []string
	for _, mf := range c.MemberFunctions {
		if !mf.IsVirtual {
			continue
		}
		out = append(out, fmt.Sprintf("%s#%d", env.DeclLinkageName(mf.Fn), mf.VtableOffset))
	}
	return out
}
