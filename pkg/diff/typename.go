// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package diff

import (
	"strings"

	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// TypeName renders h as a human-readable, roughly C-syntax type name,
// used for reporting and for the suppression descriptors' *_name fields
// (spec.md 6.2's type_name/return_type_name/parameter type-name keys).
func TypeName(env *ir.Environment, h ir.TypeHandle) string {
	if !h.Valid() {
		return "void"
	}
	switch env.TypeKindOf(h) {
	case ir.KindTypeDecl:
		td, _ := env.AsTypeDecl(h)
		return td.Name
	case ir.KindQualified:
		qt, _ := env.AsQualifiedType(h)
		var prefix []string
		if qt.CV&ir.CVConst != 0 {
			prefix = append(prefix, "const")
		}
		if qt.CV&ir.CVVolatile != 0 {
			prefix = append(prefix, "volatile")
		}
		if qt.CV&ir.CVRestrict != 0 {
			prefix = append(prefix, "restrict")
		}
		prefix = append(prefix, TypeName(env, qt.Underlying))
		return strings.Join(prefix, " ")
	case ir.KindPointer:
		pt, _ := env.AsPointerType(h)
		return TypeName(env, pt.Pointee) + "*"
	case ir.KindReference:
		rt, _ := env.AsReferenceType(h)
		if rt.IsLValue {
			return TypeName(env, rt.Pointee) + "&"
		}
		return TypeName(env, rt.Pointee) + "&&"
	case ir.KindArray:
		at, _ := env.AsArrayType(h)
		var dims strings.Builder
		for _, sr := range at.Subranges {
			if sr.HasUpperBound {
				dims.WriteByte('[')
				dims.WriteString(itoa(sr.UpperBound - sr.LowerBound + 1))
				dims.WriteByte(']')
			} else {
				dims.WriteString("[]")
			}
		}
		return TypeName(env, at.Element) + dims.String()
	case ir.KindFunction, ir.KindMethod:
		ft, _ := env.AsFunctionType(h)
		if ft == nil {
			mt, _ := env.AsMethodType(h)
			ft = &mt.FunctionType
		}
		var params []string
		for _, p := range ft.Params {
			params = append(params, TypeName(env, p.Type))
		}
		return TypeName(env, ft.Return) + "(" + strings.Join(params, ", ") + ")"
	case ir.KindEnum:
		// ir.EnumType carries no name, so every enum renders as the bare
		// word "enum"; neither a name nor the enumerator count is shown.
		return "enum"
	case ir.KindTypedef:
		td, _ := env.AsTypedef(h)
		return td.Name
	case ir.KindClassOrUnion:
		co, _ := env.AsClassOrUnion(h)
		if co.QualifiedName != "" {
			return co.QualifiedName
		}
		return co.Name
	default:
		return "<unknown>"
	}
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
