// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package dwarfread

import (
	stddwarf "debug/dwarf"
	"fmt"
	"sort"
	"strings"

	"github.com/woodard/libabigail-sub002/pkg/dwarfexpr"
	"github.com/woodard/libabigail-sub002/pkg/dwarfidx"
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// buildClassOrUnion implements spec.md 4.5's class field recognition:
// DW_TAG_inheritance as a base specifier, DW_TAG_member/DW_TAG_variable
// as a data member, DW_TAG_subprogram as a member function finished by
// finishMemberFunction, and nested type tags as member types.
func (r *Reader) buildClassOrUnion(rdr *stddwarf.Reader, entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx) (ir.TypeHandle, error) {
	isUnion := entry.Tag == stddwarf.TagUnionType
	isStruct := entry.Tag == stddwarf.TagStructType
	name := dieName(entry)
	isAnon := name == ""
	if isAnon {
		word := "struct"
		if isUnion {
			word = "union"
		} else if !isStruct {
			word = "class"
		}
		name = fmt.Sprintf("__anonymous_%s__%d", word, r.nextAnon("anon_"+word))
	}

	byteSize, _ := attrUint(entry, stddwarf.AttrByteSize)
	cu := ir.ClassOrUnion{
		Name:              name,
		IsStruct:          isStruct,
		IsUnion:           isUnion,
		IsAnonymous:       isAnon,
		IsDeclarationOnly: attrBool(entry, stddwarf.AttrDeclaration),
		QualifiedName:     name,
	}
	h := r.env.NewClassOrUnion(cu, byteSize*8, byteSize*8, origin(key))
	// Registered before members are read so a pointer-to-self member
	// resolves to this same handle instead of recursing forever.
	r.classWIP[key] = h
	r.corpus.IndexTypeName(name, h)

	cuPtr, _ := r.env.AsClassOrUnion(h)

	if entry.Children {
		for {
			child, err := rdr.Next()
			if err != nil {
				delete(r.classWIP, key)
				return ir.NilTypeHandle, err
			}
			if child == nil || child.Tag == 0 {
				break
			}
			switch child.Tag {
			case stddwarf.TagInheritance:
				base, err := r.buildInheritance(child, key, ctx)
				if err != nil {
					delete(r.classWIP, key)
					return ir.NilTypeHandle, err
				}
				cuPtr.Bases = append(cuPtr.Bases, base)
			case stddwarf.TagMember, stddwarf.TagVariable:
				mname := dieName(child)
				if isVtablePointerMember(mname) {
					rdr.SkipChildren()
					continue
				}
				dm, err := r.buildDataMember(child, key, ctx, cuPtr.QualifiedName)
				if err != nil {
					delete(r.classWIP, key)
					return ir.NilTypeHandle, err
				}
				cuPtr.DataMembers = append(cuPtr.DataMembers, dm)
				if dm.IsLaidOut {
					end := dm.LayoutOffsetBits + r.env.TypeSizeBits(mustVarType(r.env, dm.Var))
					if end > r.env.TypeSizeBits(h) {
						r.env.SetTypeSizeBits(h, end)
					}
				}
			case stddwarf.TagSubprogram:
				mf, err := r.buildMemberFunction(rdr, child, key, h, ctx, cuPtr)
				if err != nil {
					delete(r.classWIP, key)
					return ir.NilTypeHandle, err
				}
				cuPtr.MemberFunctions = append(cuPtr.MemberFunctions, mf)
			case stddwarf.TagClassType, stddwarf.TagStructType, stddwarf.TagUnionType,
				stddwarf.TagEnumerationType, stddwarf.TagTypedef:
				childKey := dwarfidx.Key{Partition: key.Partition, Offset: child.Offset}
				nested, err := r.buildTypeInline(rdr, child, childKey, ctx)
				if err != nil {
					delete(r.classWIP, key)
					return ir.NilTypeHandle, err
				}
				cuPtr.MemberTypes = append(cuPtr.MemberTypes, nested)
			default:
				rdr.SkipChildren()
			}
		}
	}

	// spec.md 4.5: "A class with any non-static data member cannot remain
	// declaration-only, regardless of what DWARF claims."
	for _, dm := range cuPtr.DataMembers {
		if !dm.IsStatic {
			cuPtr.IsDeclarationOnly = false
			break
		}
	}

	sortVirtualMemberFunctions(cuPtr)
	if cuPtr.IsDeclarationOnly {
		r.declOnlyClasses = append(r.declOnlyClasses, h)
	}
	delete(r.classWIP, key)
	return h, nil
}

func mustVarType(env *ir.Environment, d ir.DeclHandle) ir.TypeHandle {
	v, ok := env.AsVarDecl(d)
	if !ok {
		return ir.NilTypeHandle
	}
	return v.Type
}

func (r *Reader) buildInheritance(entry *stddwarf.Entry, classKey dwarfidx.Key, ctx buildCtx) (ir.BaseSpecifier, error) {
	base, err := r.buildOptionalType(entry, stddwarf.AttrType, classKey.Partition, ctx)
	if err != nil {
		return ir.BaseSpecifier{}, err
	}
	offsetBits, _ := r.memberOffsetBits(entry, ctx)
	virtuality, _ := attrUint(entry, stddwarf.AttrVirtuality)
	return ir.BaseSpecifier{
		Base:       base,
		Access:     accessOf(entry, false),
		OffsetBits: offsetBits,
		IsVirtual:  virtuality != 0,
	}, nil
}

func (r *Reader) buildDataMember(entry *stddwarf.Entry, classKey dwarfidx.Key, ctx buildCtx, className string) (ir.DataMember, error) {
	name := dieName(entry)
	typ, err := r.buildOptionalType(entry, stddwarf.AttrType, classKey.Partition, ctx)
	if err != nil {
		return ir.DataMember{}, err
	}
	offsetBits, isLaidOut := r.memberOffsetBits(entry, ctx)

	qn := name
	if className != "" && name != "" {
		qn = className + "::" + name
	}
	v := r.env.NewVarDecl(name, typ, ir.NilDeclHandle, ir.SourceLocation{})
	r.env.SetDeclQualifiedName(v, qn)

	return ir.DataMember{
		Var:              v,
		Access:           accessOf(entry, true),
		LayoutOffsetBits: offsetBits,
		IsStatic:         !isLaidOut,
		IsLaidOut:        isLaidOut,
	}, nil
}

// memberOffsetBits evaluates DW_AT_data_member_location, which DWARF
// encodes either as a plain integer byte offset or as a location
// expression (historically `DW_OP_plus_uconst <n>`); spec.md 4.5 calls
// this "die_member_offset". Absence means the member is not laid out
// (a static data member).
func (r *Reader) memberOffsetBits(entry *stddwarf.Entry, ctx buildCtx) (uint64, bool) {
	val := entry.Val(stddwarf.AttrDataMemberLoc)
	switch v := val.(type) {
	case int64:
		return uint64(v) * 8, true
	case uint64:
		return v * 8, true
	case []byte:
		res := dwarfexpr.Eval(v, int(ctx.addrSizeBits/8))
		return uint64(res.Value) * 8, true
	default:
		return 0, false
	}
}

// buildMemberFunction builds the function_decl for a DW_TAG_subprogram
// member and runs finishMemberFunction over it, per spec.md 4.5's "member
// function finish pass".
func (r *Reader) buildMemberFunction(rdr *stddwarf.Reader, entry *stddwarf.Entry, classKey dwarfidx.Key, class ir.TypeHandle, ctx buildCtx, cuPtr *ir.ClassOrUnion) (ir.MemberFunction, error) {
	key := dwarfidx.Key{Partition: classKey.Partition, Offset: entry.Offset}
	fn, err := r.buildFunctionDeclFromEntry(rdr, entry, key, ctx, true, class)
	if err != nil {
		return ir.MemberFunction{}, err
	}
	return r.finishMemberFunction(fn, entry, cuPtr.Name, ctx), nil
}

// finishMemberFunction implements spec.md 4.5's post-processing: is_ctor,
// is_dtor, is_virtual, vtable index, access, and is_static.
func (r *Reader) finishMemberFunction(fn ir.DeclHandle, entry *stddwarf.Entry, className string, ctx buildCtx) ir.MemberFunction {
	name := r.env.DeclName(fn)
	isCtor := name == className
	isDtor := strings.HasPrefix(name, "~")

	virtuality, _ := attrUint(entry, stddwarf.AttrVirtuality)
	isVirtual := virtuality != 0
	vtableOffset := int64(-1)
	if isVirtual {
		if raw, ok := entry.Val(stddwarf.AttrVtableElemLoc).([]byte); ok {
			vtableOffset = dwarfexpr.Eval(raw, int(ctx.addrSizeBits/8)).Value
		}
	}

	fd, _ := r.env.AsFunctionDecl(fn)
	isStatic := true
	if fd != nil {
		if mt, ok := r.env.AsMethodType(fd.Type); ok {
			if len(mt.Params) > 0 {
				first := mt.Params[0]
				isStatic = !(first.IsArtificial)
			}
		} else if ft, ok := r.env.AsFunctionType(fd.Type); ok && len(ft.Params) > 0 {
			isStatic = !ft.Params[0].IsArtificial
		}
	}

	return ir.MemberFunction{
		Fn:           fn,
		Access:       accessOf(entry, false),
		IsVirtual:    isVirtual,
		VtableOffset: vtableOffset,
		IsCtor:       isCtor,
		IsDtor:       isDtor,
		IsConst:      false,
		IsStatic:     isStatic,
	}
}

// sortVirtualMemberFunctions re-sorts a class's virtual member functions
// by vtable offset, per spec.md 4.5: "triggers a resort of the class's
// virtual member function vector."
func sortVirtualMemberFunctions(cuPtr *ir.ClassOrUnion) {
	sort.SliceStable(cuPtr.MemberFunctions, func(i, j int) bool {
		a, b := cuPtr.MemberFunctions[i], cuPtr.MemberFunctions[j]
		if a.IsVirtual != b.IsVirtual {
			return a.IsVirtual && !b.IsVirtual
		}
		if a.IsVirtual && b.IsVirtual {
			return a.VtableOffset < b.VtableOffset
		}
		return false
	})
}
