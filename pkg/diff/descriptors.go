// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package diff

import (
	"github.com/woodard/libabigail-sub002/pkg/ir"
	"github.com/woodard/libabigail-sub002/pkg/suppression"
)

// typeKindFilterOf maps an ir.TypeKind onto the suppression package's
// coarser type_kind vocabulary (spec.md 6.2's type_kind key distinguishes
// struct/union/class at the source-language level, which class_or_union
// alone doesn't carry; IsStruct/IsUnion resolve it).
func typeKindFilterOf(env *ir.Environment, h ir.TypeHandle) suppression.TypeKindFilter {
	switch env.TypeKindOf(h) {
	case ir.KindClassOrUnion:
		co, _ := env.AsClassOrUnion(h)
		switch {
		case co.IsUnion:
			return suppression.KindUnion
		case co.IsStruct:
			return suppression.KindStruct
		default:
			return suppression.KindClass
		}
	case ir.KindEnum:
		return suppression.KindEnum
	case ir.KindArray:
		return suppression.KindArray
	case ir.KindTypedef:
		return suppression.KindTypedef
	case ir.KindTypeDecl:
		return suppression.KindBuiltin
	default:
		return suppression.KindAny
	}
}

// describeClassOrUnion builds the TypeDescriptor a [suppress_type] rule is
// matched against for a class_or_union diff node, per spec.md 4.6.
func describeClassOrUnion(env *ir.Environment, h ir.TypeHandle, reach suppression.ReachKind, inserted []suppression.InsertedMember) suppression.TypeDescriptor {
	co, ok := env.AsClassOrUnion(h)
	if !ok {
		return suppression.TypeDescriptor{}
	}
	offsets := map[string]uint64{}
	sizes := map[string]uint64{}
	for _, m := range co.DataMembers {
		name := env.DeclName(m.Var)
		offsets[name] = m.LayoutOffsetBits
		if vd, ok := env.AsVarDecl(m.Var); ok {
			sizes[name] = env.TypeSizeBits(vd.Type)
		}
	}
	var loc ir.SourceLocation
	if first := firstMemberDecl(co); first.Valid() {
		loc = env.DeclLocation(first)
	}
	return suppression.TypeDescriptor{
		Name:              co.Name,
		QualifiedName:     co.QualifiedName,
		Kind:              typeKindFilterOf(env, h),
		ReachedThrough:    reach,
		SourceFile:        loc.File,
		MemberOffsetsBits: offsets,
		MemberSizeBits:    sizes,
		SizeBits:          env.TypeSizeBits(h),
		InsertedMembers:   inserted,
	}
}

func firstMemberDecl(co *ir.ClassOrUnion) ir.DeclHandle {
	if len(co.DataMembers) == 0 {
		return ir.NilDeclHandle
	}
	return co.DataMembers[0].Var
}

// describeFunction builds the FunctionDescriptor a [suppress_function]
// rule is matched against for a function_decl_diff, per spec.md 4.6.
func describeFunction(env *ir.Environment, h ir.DeclHandle, changeKind suppression.ChangeKind) suppression.FunctionDescriptor {
	fd, ok := env.AsFunctionDecl(h)
	if !ok {
		return suppression.FunctionDescriptor{}
	}
	ft, _ := env.AsFunctionType(fd.Type)
	if ft == nil {
		if mt, ok := env.AsMethodType(fd.Type); ok {
			ft = &mt.FunctionType
		}
	}
	var returnTypeName string
	var params []string
	if ft != nil {
		returnTypeName = TypeName(env, ft.Return)
		for _, p := range ft.Params {
			params = append(params, TypeName(env, p.Type))
		}
	}
	sym := env.DeclSymbol(h)
	var symName, symVersion string
	var aliases []string
	if sym != nil {
		main := sym.Main()
		symName, symVersion = main.Name, main.Version.Name
		for _, a := range main.Aliases() {
			aliases = append(aliases, a.Name)
		}
	}
	return suppression.FunctionDescriptor{
		Name:           env.DeclName(h),
		QualifiedName:  env.DeclQualifiedName(h),
		ReturnTypeName: returnTypeName,
		Parameters:     params,
		SymbolName:     symName,
		SymbolVersion:  symVersion,
		AliasNames:     aliases,
		ChangeKind:     changeKind,
	}
}

// describeVariable builds the VariableDescriptor a [suppress_variable]
// rule is matched against for a var_diff, per spec.md 4.6.
func describeVariable(env *ir.Environment, h ir.DeclHandle, changeKind suppression.ChangeKind) suppression.VariableDescriptor {
	vd, ok := env.AsVarDecl(h)
	if !ok {
		return suppression.VariableDescriptor{}
	}
	sym := env.DeclSymbol(h)
	var symName, symVersion string
	var aliases []string
	if sym != nil {
		main := sym.Main()
		symName, symVersion = main.Name, main.Version.Name
		for _, a := range main.Aliases() {
			aliases = append(aliases, a.Name)
		}
	}
	return suppression.VariableDescriptor{
		Name:          env.DeclName(h),
		QualifiedName: env.DeclQualifiedName(h),
		TypeName:      TypeName(env, vd.Type),
		SymbolName:    symName,
		SymbolVersion: symVersion,
		AliasNames:    aliases,
		ChangeKind:    changeKind,
	}
}
