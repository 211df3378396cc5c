// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package dwarfread

import (
	stddwarf "debug/dwarf"

	"github.com/woodard/libabigail-sub002/pkg/dwarfexpr"
	"github.com/woodard/libabigail-sub002/pkg/dwarfidx"
	"github.com/woodard/libabigail-sub002/pkg/elf"
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// buildCompileUnit implements spec.md 4.5 step 4: builds a translation
// unit from a DW_TAG_compile_unit entry and recursively builds every
// child DIE that is a type, function, variable, namespace, or nested
// type.
func (r *Reader) buildCompileUnit(rdr *stddwarf.Reader, entry *stddwarf.Entry, part dwarfidx.Partition) error {
	lang := languageOf(entry)
	tu := r.env.NewTranslationUnit(dieName(entry), int(r.addrSizeBits()/8), lang)
	r.corpus.AddTranslationUnit(tu)

	ctx := buildCtx{tu: tu, lang: lang, addrSizeBits: r.addrSizeBits()}
	tud, _ := r.env.AsTranslationUnit(tu)

	return r.buildScopeBody(rdr, ctx, tud.TopScope, part)
}

// buildScopeBody consumes entries from rdr until the terminator closing
// the current nesting level, attaching each recognized declaration or
// type to scope.
func (r *Reader) buildScopeBody(rdr *stddwarf.Reader, ctx buildCtx, scope ir.DeclHandle, part dwarfidx.Partition) error {
	for {
		entry, err := rdr.Next()
		if err != nil {
			return err
		}
		if entry == nil || entry.Tag == 0 {
			return nil
		}

		key := dwarfidx.Key{Partition: part, Offset: entry.Offset}

		switch entry.Tag {
		case stddwarf.TagSubprogram:
			fn, err := r.buildFunctionDeclFromEntry(rdr, entry, key, ctx, false, ir.NilTypeHandle)
			if err != nil {
				return err
			}
			r.env.AddScopeMember(scope, ir.ScopeMember{Decl: fn})

		case stddwarf.TagVariable:
			v, err := r.buildVariableFromEntry(rdr, entry, key, ctx)
			if err != nil {
				return err
			}
			r.env.AddScopeMember(scope, ir.ScopeMember{Decl: v})

		case stddwarf.TagNamespace, stddwarf.TagModule:
			ns := r.env.NewNamespaceDecl(dieName(entry), scope)
			if entry.Children {
				if err := r.buildScopeBody(rdr, ctx, ns, part); err != nil {
					return err
				}
			}
			r.env.AddScopeMember(scope, ir.ScopeMember{Decl: ns})

		case stddwarf.TagLexDwarfBlock:
			if entry.Children {
				if err := r.buildScopeBody(rdr, ctx, scope, part); err != nil {
					return err
				}
			}

		case stddwarf.TagClassType, stddwarf.TagStructType, stddwarf.TagUnionType,
			stddwarf.TagEnumerationType, stddwarf.TagTypedef, stddwarf.TagBaseType,
			stddwarf.TagPointerType, stddwarf.TagConstType, stddwarf.TagVolatileType,
			stddwarf.TagArrayType, stddwarf.TagSubroutineType:
			h, err := r.buildTypeInline(rdr, entry, key, ctx)
			if err != nil {
				return err
			}
			r.env.AddScopeMember(scope, ir.ScopeMember{IsType: true, Type: h})

		default:
			if entry.Children {
				rdr.SkipChildren()
			}
		}
	}
}

// originKey resolves a DW_AT_specification or DW_AT_abstract_origin
// attribute to the Key of the declaration it extends, per spec.md 4.5's
// "followed transitively" contract.
func originKey(entry *stddwarf.Entry, part dwarfidx.Partition) (dwarfidx.Key, bool) {
	if k, ok := attrTypeKey(entry, stddwarf.AttrSpecification, part); ok {
		return k, true
	}
	return attrTypeKey(entry, stddwarf.AttrAbstractOrigin, part)
}

// buildDeclAt random-access resolves a specification/abstract_origin
// target, building it (if not already cached) exactly as if the top-level
// walk had reached it directly.
func (r *Reader) buildDeclAt(key dwarfidx.Key, ctx buildCtx) (ir.DeclHandle, error) {
	if n, ok := r.nodes[key]; ok && !n.isType {
		return n.decl, nil
	}
	rdr, entry, err := r.seekEntry(key)
	if err != nil {
		return ir.NilDeclHandle, err
	}
	switch entry.Tag {
	case stddwarf.TagSubprogram:
		return r.buildFunctionDeclFromEntry(rdr, entry, key, ctx, false, ir.NilTypeHandle)
	case stddwarf.TagVariable:
		return r.buildVariableFromEntry(rdr, entry, key, ctx)
	default:
		return ir.NilDeclHandle, abiUnexpectedTag(entry.Offset)
	}
}

// buildFunctionDeclFromEntry implements spec.md 4.5's per-DIE dispatch
// for DW_TAG_subprogram: a DW_AT_specification/DW_AT_abstract_origin
// target is built first; the current DIE extends it directly, unless its
// linkage name differs from the origin's, in which case it is cloned (the
// inline-instance case).
func (r *Reader) buildFunctionDeclFromEntry(rdr *stddwarf.Reader, entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx, isMethod bool, owningClass ir.TypeHandle) (ir.DeclHandle, error) {
	if n, ok := r.nodes[key]; ok && !n.isType {
		if entry.Children {
			rdr.SkipChildren()
		}
		return n.decl, nil
	}

	name := dieName(entry)
	linkageName := attrString(entry, stddwarf.AttrLinkageName)

	var originDecl ir.DeclHandle
	if sk, ok := originKey(entry, key.Partition); ok {
		if od, err := r.buildDeclAt(sk, ctx); err == nil {
			originDecl = od
		}
	}

	var fn ir.DeclHandle
	var fd *ir.FunctionDecl

	switch {
	case originDecl.Valid() && (linkageName == "" || r.env.DeclLinkageName(originDecl) == "" || linkageName == r.env.DeclLinkageName(originDecl)):
		// Extend the origin directly: this DIE just adds location/
		// binding information to the same logical function.
		if entry.Children {
			rdr.SkipChildren()
		}
		fn = originDecl
		fd, _ = r.env.AsFunctionDecl(fn)

	case originDecl.Valid():
		// Clone: an inline-instance DIE whose linkage name diverges from
		// the out-of-line definition it was inlined from.
		if entry.Children {
			rdr.SkipChildren()
		}
		origFD, _ := r.env.AsFunctionDecl(originDecl)
		typ := ir.NilTypeHandle
		if origFD != nil {
			typ = origFD.Type
		}
		if name == "" {
			name = r.env.DeclName(originDecl)
		}
		fn = r.env.NewFunctionDecl(name, typ, ir.NilDeclHandle, ir.SourceLocation{}, isMethod, owningClass)
		fd, _ = r.env.AsFunctionDecl(fn)

	default:
		ftHandle, err := r.buildSubprogramType(rdr, entry, key, ctx, isMethod, owningClass)
		if err != nil {
			return ir.NilDeclHandle, err
		}
		fn = r.env.NewFunctionDecl(name, ftHandle, ir.NilDeclHandle, ir.SourceLocation{}, isMethod, owningClass)
		fd, _ = r.env.AsFunctionDecl(fn)
	}

	if linkageName != "" {
		r.env.SetDeclLinkageName(fn, linkageName)
	}
	if fd != nil {
		fd.IsDeclarationOnly = attrBool(entry, stddwarf.AttrDeclaration)
		fd.IsInline = isInlineAttr(entry)
	}

	r.bindFunctionSymbol(fn)

	r.nodes[key] = dieNode{decl: fn}
	return fn, nil
}

// buildSubprogramType builds the function_type (or method_type, for a
// member function) a DW_TAG_subprogram entry implies from its own return
// type and formal parameters, placed on the work-in-progress map before
// parameters are built so a parameter referring back to the enclosing
// class (by pointer) resolves to the same in-flight type (spec.md 4.5).
func (r *Reader) buildSubprogramType(rdr *stddwarf.Reader, entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx, isMethod bool, owningClass ir.TypeHandle) (ir.TypeHandle, error) {
	var placeholder ir.TypeHandle
	if isMethod {
		placeholder = r.env.NewMethodType(r.env.VoidType(), nil, owningClass, ctx.addrSizeBits, origin(key))
	} else {
		placeholder = r.env.NewFunctionType(r.env.VoidType(), nil, ctx.addrSizeBits, origin(key))
	}
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
				params = append(params, ir.FunctionParam{
					Type:         pt,
					Name:         dieName(child),
					IsArtificial: attrBool(child, stddwarf.AttrArtificial),
				})
			case stddwarf.TagUnspecifiedParameters:
				params = append(params, ir.FunctionParam{Type: r.env.VariadicParamType(), IsVariadic: true})
			default:
				if child.Children {
					rdr.SkipChildren()
				}
			}
		}
	}

	if isMethod {
		mt, _ := r.env.AsMethodType(placeholder)
		mt.Return = ret
		mt.Params = params
	} else {
		ft, _ := r.env.AsFunctionType(placeholder)
		ft.Return = ret
		ft.Params = params
	}
	delete(r.funcTypeWIP, key)
	return placeholder, nil
}

func isInlineAttr(entry *stddwarf.Entry) bool {
	v, ok := attrUint(entry, stddwarf.AttrInline)
	return ok && v != 0
}

// bindFunctionSymbol implements spec.md 4.5's function binding pattern:
// bind a matching defined-function symbol now, or schedule a fixup to
// retry after every translation unit has been read.
func (r *Reader) bindFunctionSymbol(fn ir.DeclHandle) {
	linkage := r.env.DeclLinkageName(fn)
	if linkage == "" {
		linkage = r.env.DeclName(fn)
	}
	if linkage == "" {
		return
	}
	if syms := r.ef.LookupDefinedFunctionSymbolByName(linkage); len(syms) > 0 {
		r.env.BindSymbol(fn, syms[0])
		if r.env.DeclLinkageName(fn) == "" {
			r.env.SetDeclLinkageName(fn, linkage)
		}
		return
	}
	r.fixups = append(r.fixups, fixupEntry{fn: fn, linkageName: linkage})
}

// buildVariableFromEntry implements spec.md 4.5's variable binding
// pattern: resolve the symbol by address first (the normal case for a
// DW_TAG_variable carrying DW_OP_addr), falling back to a name lookup,
// and overwrite a missing or stale linkage name from the bound symbol.
func (r *Reader) buildVariableFromEntry(rdr *stddwarf.Reader, entry *stddwarf.Entry, key dwarfidx.Key, ctx buildCtx) (ir.DeclHandle, error) {
	if n, ok := r.nodes[key]; ok && !n.isType {
		if entry.Children {
			rdr.SkipChildren()
		}
		return n.decl, nil
	}

	name := dieName(entry)
	typ, err := r.buildOptionalType(entry, stddwarf.AttrType, key.Partition, ctx)
	if err != nil {
		return ir.NilDeclHandle, err
	}
	if entry.Children {
		rdr.SkipChildren()
	}

	v := r.env.NewVarDecl(name, typ, ir.NilDeclHandle, ir.SourceLocation{})
	linkage := attrString(entry, stddwarf.AttrLinkageName)
	if linkage != "" {
		r.env.SetDeclLinkageName(v, linkage)
	}

	sym := r.lookupVariableSymbol(entry, ctx, linkage, name)
	if sym != nil {
		r.env.BindSymbol(v, sym)
		if linkage == "" || linkage != sym.Name {
			r.env.SetDeclLinkageName(v, sym.Name)
		}
	}

	r.nodes[key] = dieNode{decl: v}
	return v, nil
}

func (r *Reader) lookupVariableSymbol(entry *stddwarf.Entry, ctx buildCtx, linkage, name string) *elf.Symbol {
	if addr, isTLS, ok := variableAddress(entry, ctx); ok {
		normalized := r.ef.NormalizeVariableAddress(addr, r.dwarfLoadAddress, isTLS)
		if sym := r.ef.LookupSymbolByAddress(normalized, false); sym != nil {
			return sym
		}
	}
	if linkage != "" {
		if syms := r.ef.LookupDefinedVariableSymbolByName(linkage); len(syms) > 0 {
			return syms[0]
		}
	}
	if name != "" {
		if syms := r.ef.LookupDefinedVariableSymbolByName(name); len(syms) > 0 {
			return syms[0]
		}
	}
	return nil
}

// variableAddress extracts a DW_AT_location expression's leading
// DW_OP_addr (or reports a thread-local marker), the common shapes for a
// file-scope variable's location.
func variableAddress(entry *stddwarf.Entry, ctx buildCtx) (addr uint64, isTLS bool, ok bool) {
	raw, isBlock := entry.Val(stddwarf.AttrLocation).([]byte)
	if !isBlock || len(raw) == 0 {
		return 0, false, false
	}
	res := dwarfexpr.Eval(raw, int(ctx.addrSizeBits/8))
	if res.IsTLS {
		return uint64(res.Value), true, true
	}
	if raw[0] == 0x03 { // DW_OP_addr
		return uint64(res.Value), false, true
	}
	return 0, false, false
}
