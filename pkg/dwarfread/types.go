// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package dwarfread

import (
	stddwarf "debug/dwarf"
	"fmt"

	"github.com/woodard/libabigail-sub002/pkg/dwarfidx"
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// buildCtx carries the ambient TU-level facts a type builder needs that
// are not themselves attributes of the type's own DIE: the enclosing
// translation unit's address size (for a pointer/reference missing
// DW_AT_byte_size) and source language (for an array's default lower
// bound).
type buildCtx struct {
	tu           ir.DeclHandle
	lang         ir.Language
	addrSizeBits uint64
}

// origin converts a dwarfidx.Key into the ir.DieOrigin metadata stored on
// every type/decl this builder creates.
func origin(key dwarfidx.Key) ir.DieOrigin {
	return ir.DieOrigin{
		Partition: ir.Partition(key.Partition),
		Offset:    uint64(key.Offset),
		Valid:     true,
	}
}

// buildType resolves key to a type handle, building it on first visit and
// returning the cached handle on every subsequent call, per spec.md 4.5's
// DIE-offset to IR-node map.
func (r *Reader) buildType(key dwarfidx.Key, ctx buildCtx) (ir.TypeHandle, error) {
	if n, ok := r.nodes[key]; ok && n.isType {
		return n.typ, nil
	}
	if h, ok := r.funcTypeWIP[key]; ok {
		return h, nil
	}
	if h, ok := r.classWIP[key]; ok {
		return h, nil
	}

	rdr, entry, err := r.seekEntry(key)
	if err != nil {
		return ir.NilTypeHandle, err
	}

	h, err := r.dispatchType(rdr, entry, key, ctx)
	if err != nil {
		return ir.NilTypeHandle, err
	}
	r.nodes[key] = dieNode{isType: true, typ: h}
	return h, nil
}

// buildOptionalType resolves a type attribute that may be absent,
// returning the environment's void singleton when it is.
func (r *Reader) buildOptionalType(entry *stddwarf.Entry, attr stddwarf.Attr, part dwarfidx.Partition, ctx buildCtx) (ir.TypeHandle, error) {
	key, ok := attrTypeKey(entry, attr, part)
	if !ok {
		return r.env.VoidType(), nil
	}
	return r.buildType(key, ctx)
}

func (r *Reader) dispatchType(rdr *stddwarf.Reader, entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx) (ir.TypeHandle, error) {
	switch entry.Tag {
	case stddwarf.TagBaseType:
		return r.buildBaseType(entry, key), nil
	case stddwarf.TagConstType:
		return r.buildQualifiedType(entry, key, ir.CVConst, ctx)
	case stddwarf.TagVolatileType:
		return r.buildQualifiedType(entry, key, ir.CVVolatile, ctx)
	case stddwarf.TagRestrictType:
		return r.buildQualifiedType(entry, key, ir.CVRestrict, ctx)
	case stddwarf.TagPointerType:
		return r.buildPointerType(entry, key, ctx)
	case stddwarf.TagReferenceType:
		return r.buildReferenceType(entry, key, ctx, true)
	case stddwarf.TagRvalueReferenceType:
		return r.buildReferenceType(entry, key, ctx, false)
	case stddwarf.TagArrayType:
		return r.buildArrayType(rdr, entry, key, ctx)
	case stddwarf.TagEnumerationType:
		return r.buildEnumType(rdr, entry, key, ctx)
	case stddwarf.TagTypedef:
		return r.buildTypedef(entry, key, ctx)
	case stddwarf.TagClassType, stddwarf.TagStructType, stddwarf.TagUnionType:
		return r.buildClassOrUnion(rdr, entry, key, ctx)
	case stddwarf.TagSubroutineType:
		return r.buildFunctionTypeDIE(rdr, entry, key, ctx)
	case stddwarf.TagUnspecifiedType:
		return r.buildBaseType(entry, key), nil
	default:
		r.log.Warnf("unrecognized type tag %v at %#x, treating as opaque", entry.Tag, entry.Offset)
		return r.buildBaseType(entry, key), nil
	}
}

// buildTypeInline dispatches a type DIE the caller has already stepped
// onto via rdr.Next() (a class member type, an array subrange's sibling,
// ...), avoiding a redundant Seek. If key was already built, the entry's
// children (if any) are skipped to keep rdr's cursor in sync.
func (r *Reader) buildTypeInline(rdr *stddwarf.Reader, entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx) (ir.TypeHandle, error) {
	if n, ok := r.nodes[key]; ok && n.isType {
		if entry.Children {
			rdr.SkipChildren()
		}
		return n.typ, nil
	}
	h, err := r.dispatchType(rdr, entry, key, ctx)
	if err != nil {
		return ir.NilTypeHandle, err
	}
	r.nodes[key] = dieNode{isType: true, typ: h}
	return h, nil
}

func (r *Reader) buildBaseType(entry *stddwarf.Entry, key dwarfidx.Key) ir.TypeHandle {
	name := dieName(entry)
	if name == "" {
		name = fmt.Sprintf("__unknown_type__%d", r.nextAnon("unknown_type"))
	}
	byteSize, _ := attrUint(entry, stddwarf.AttrByteSize)
	h := r.env.NewTypeDecl(name, byteSize*8, byteSize*8, origin(key))
	r.corpus.IndexTypeName(name, h)
	return h
}

// buildQualifiedType implements spec.md 4.5's "strip redundant const on
// references": a const_type whose immediate child is a reference_type is
// re-emitted as the bare reference, since a C++ reference is already
// immutable at the binding level and DWARF compilers inconsistently emit
// the wrapping const_type.
func (r *Reader) buildQualifiedType(entry *stddwarf.Entry, key dwarfidx.Key, cv ir.CVQualifiers, ctx buildCtx) (ir.TypeHandle, error) {
	underlying, err := r.buildOptionalType(entry, stddwarf.AttrType, key.Partition, ctx)
	if err != nil {
		return ir.NilTypeHandle, err
	}
	if cv == ir.CVConst && r.env.TypeKindOf(underlying) == ir.KindReference {
		return underlying, nil
	}
	existingCV := ir.CVQualifiers(0)
	if q, ok := r.env.AsQualifiedType(underlying); ok {
		existingCV = q.CV
		underlying = q.Underlying
	}
	return r.env.NewQualifiedType(underlying, existingCV|cv, origin(key)), nil
}

func (r *Reader) buildPointerType(entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx) (ir.TypeHandle, error) {
	pointee, err := r.buildOptionalType(entry, stddwarf.AttrType, key.Partition, ctx)
	if err != nil {
		return ir.NilTypeHandle, err
	}
	bits := ctx.addrSizeBits
	if v, ok := attrUint(entry, stddwarf.AttrByteSize); ok {
		bits = v * 8
	}
	return r.env.NewPointerType(pointee, bits, bits, origin(key)), nil
}

func (r *Reader) buildReferenceType(entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx, isLValue bool) (ir.TypeHandle, error) {
	pointee, err := r.buildOptionalType(entry, stddwarf.AttrType, key.Partition, ctx)
	if err != nil {
		return ir.NilTypeHandle, err
	}
	bits := ctx.addrSizeBits
	if v, ok := attrUint(entry, stddwarf.AttrByteSize); ok {
		bits = v * 8
	}
	return r.env.NewReferenceType(pointee, isLValue, bits, bits, origin(key)), nil
}

func (r *Reader) buildArrayType(rdr *stddwarf.Reader, entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx) (ir.TypeHandle, error) {
	element, err := r.buildOptionalType(entry, stddwarf.AttrType, key.Partition, ctx)
	if err != nil {
		return ir.NilTypeHandle, err
	}

	var subranges []ir.ArraySubrange
	if entry.Children {
		for {
			child, err := rdr.Next()
			if err != nil {
				return ir.NilTypeHandle, err
			}
			if child == nil || child.Tag == 0 {
				break
			}
			if child.Tag != stddwarf.TagSubrangeType {
				rdr.SkipChildren()
				continue
			}
			subranges = append(subranges, r.buildSubrange(child, ctx))
		}
	}
	if len(subranges) == 0 {
		subranges = []ir.ArraySubrange{{LowerBound: ctx.lang.DefaultArrayLowerBound(), HasUpperBound: false}}
	}

	elemBits := r.env.TypeSizeBits(element)
	var totalBits uint64
	if elemBits > 0 {
		totalBits = elemBits
		for _, sr := range subranges {
			if !sr.HasUpperBound {
				totalBits = 0
				break
			}
			count := uint64(sr.UpperBound-sr.LowerBound) + 1
			totalBits *= count
		}
	}
	alignBits := r.env.TypeAlignBits(element)
	return r.env.NewArrayType(element, subranges, totalBits, alignBits, origin(key)), nil
}

// buildSubrange implements spec.md 4.5's array bound contract:
// DW_AT_lower_bound / DW_AT_upper_bound directly, or
// upper_bound = lower_bound + count - 1 when only DW_AT_count is given.
func (r *Reader) buildSubrange(entry *stddwarf.Entry, ctx buildCtx) ir.ArraySubrange {
	lower := ctx.lang.DefaultArrayLowerBound()
	if v, ok := attrInt(entry, stddwarf.AttrLowerBound); ok {
		lower = v
	}
	if upper, ok := attrInt(entry, stddwarf.AttrUpperBound); ok {
		return ir.ArraySubrange{LowerBound: lower, UpperBound: upper, HasUpperBound: true}
	}
	if count, ok := attrInt(entry, stddwarf.AttrCount); ok {
		return ir.ArraySubrange{LowerBound: lower, UpperBound: lower + count - 1, HasUpperBound: true}
	}
	return ir.ArraySubrange{LowerBound: lower, HasUpperBound: false}
}

func (r *Reader) buildEnumType(rdr *stddwarf.Reader, entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx) (ir.TypeHandle, error) {
	byteSize, _ := attrUint(entry, stddwarf.AttrByteSize)
	underlying, err := r.buildOptionalType(entry, stddwarf.AttrType, key.Partition, ctx)
	if err != nil {
		return ir.NilTypeHandle, err
	}
	if underlying == r.env.VoidType() {
		// spec.md 4.5: "if no underlying type is provided by DWARF,
		// synthesize an anonymous integer type_decl of the declared size
		// and add it to the TU global scope."
		name := fmt.Sprintf("__synthesized_enum_underlying_type__%d", r.nextAnon("enum_underlying"))
		underlying = r.env.NewTypeDecl(name, byteSize*8, byteSize*8, ir.DieOrigin{})
		if sc, ok := r.env.AsTranslationUnit(ctx.tu); ok {
			r.env.AddScopeMember(sc.TopScope, ir.ScopeMember{IsType: true, Type: underlying})
		}
	}

	var enumerators []ir.Enumerator
	if entry.Children {
		for {
			child, err := rdr.Next()
			if err != nil {
				return ir.NilTypeHandle, err
			}
			if child == nil || child.Tag == 0 {
				break
			}
			if child.Tag != stddwarf.TagEnumerator {
				rdr.SkipChildren()
				continue
			}
			val, _ := attrInt(child, stddwarf.AttrConstValue)
			enumerators = append(enumerators, ir.Enumerator{Name: dieName(child), Value: val})
		}
	}

	name := dieName(entry)
	if name == "" {
		name = fmt.Sprintf("__anonymous_enum__%d", r.nextAnon("anon_enum"))
	}
	sz := byteSize * 8
	if sz == 0 {
		sz = r.env.TypeSizeBits(underlying)
	}
	h := r.env.NewEnumType(underlying, enumerators, sz, sz, origin(key))
	r.corpus.IndexTypeName(name, h)
	return h, nil
}

func (r *Reader) buildTypedef(entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx) (ir.TypeHandle, error) {
	underlying, err := r.buildOptionalType(entry, stddwarf.AttrType, key.Partition, ctx)
	if err != nil {
		return ir.NilTypeHandle, err
	}
	name := dieName(entry)
	h := r.env.NewTypedef(name, underlying, origin(key))
	r.corpus.IndexTypeName(name, h)
	return h, nil
}

// buildFunctionTypeDIE builds a DW_TAG_subroutine_type used as a type in
// its own right (e.g. the pointee of a function pointer), as opposed to
// DW_TAG_subprogram which produces a function_decl (see decls.go).
func (r *Reader) buildFunctionTypeDIE(rdr *stddwarf.Reader, entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx) (ir.TypeHandle, error) {
	// Placed on the work-in-progress map before parameters are built, per
	// spec.md 4.5: "the function type is created and placed on the
	// work-in-progress map before its parameters are built — any cyclic
	// reference through a parameter resolves to the same in-flight type."
	placeholder := r.env.NewFunctionType(r.env.VoidType(), nil, ctx.addrSizeBits, origin(key))
	r.funcTypeWIP[key] = placeholder

	ret, err := r.buildOptionalType(entry, stddwarf.AttrType, key.Partition, ctx)
	if err != nil {
		delete(r.funcTypeWIP, key)
		return ir.NilTypeHandle, err
	}

	var params []ir.FunctionParam
	if entry.Children {
		for {
			child, err := rdr.Next()
			if err != nil {
				delete(r.funcTypeWIP, key)
				return ir.NilTypeHandle, err
			}
			if child == nil || child.Tag == 0 {
				break
			}
			switch child.Tag {
			case stddwarf.TagFormalParameter:
				pt, err := r.buildOptionalType(child, stddwarf.AttrType, key.Partition, ctx)
				if err != nil {
					delete(r.funcTypeWIP, key)
					return ir.NilTypeHandle, err
				}
				params = append(params, ir.FunctionParam{Type: pt, Name: dieName(child), IsArtificial: attrBool(child, stddwarf.AttrArtificial)})
			case stddwarf.TagUnspecifiedParameters:
				params = append(params, ir.FunctionParam{Type: r.env.VariadicParamType(), IsVariadic: true})
			default:
				rdr.SkipChildren()
			}
		}
	}

	ft, _ := r.env.AsFunctionType(placeholder)
	ft.Return = ret
	ft.Params = params
	delete(r.funcTypeWIP, key)
	return placeholder, nil
}
