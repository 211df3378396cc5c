// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package ir

import "github.com/woodard/libabigail-sub002/pkg/elf"

// DeclKind discriminates the concrete variant stored behind a DeclHandle.
type DeclKind int

// Recognized declaration kinds, per spec.md 3 "Declaration (abstract)".
const (
	KindVarDecl DeclKind = iota
	KindFunctionDecl
	KindNamespaceDecl
	KindScopeDecl
	KindTranslationUnit
)

// SourceLocation is a file/line/column triple resolved through a
// translation unit's LocationManager.
type SourceLocation struct {
	File   string
	Line   uint32
	Column uint32
	Valid  bool
}

// baseDecl holds the fields every declaration variant carries, per
// spec.md 3 "Declaration (abstract)".
type baseDecl struct {
	Kind         DeclKind
	Name         InternedString
	QualifiedName string
	LinkageName  string
	Location     SourceLocation
	Scope        ScopeHandle

	Symbol              *elf.Symbol
	InPublicSymbolTable bool
}

// VarDecl is spec.md 3's var_decl.
type VarDecl struct {
	Type TypeHandle
}

// FunctionDecl is spec.md 3's function_decl, also standing in for
// method_decl (a function_decl that happens to live inside a class) —
// IsMethod and OwningClass distinguish the two without duplicating the
// rest of the struct, since every other field behaves identically.
type FunctionDecl struct {
	Type              TypeHandle // a function_type or method_type handle
	IsDeclarationOnly bool
	IsInline          bool
	IsMethod          bool
	OwningClass       TypeHandle
}

// ScopeMember is one direct child of a scope: either a type or a decl.
type ScopeMember struct {
	IsType bool
	Type   TypeHandle
	Decl   DeclHandle
}

// ScopeDecl is a generic scope (a translation unit's global scope, or a
// lexical block) holding an ordered list of direct children.
type ScopeDecl struct {
	Members []ScopeMember
}

// NamespaceDecl is a named scope.
type NamespaceDecl struct {
	ScopeDecl
}

// Language enumerates DW_AT_language values relevant to array lower
// bound defaults and other language-sensitive decisions (spec.md 4.5).
type Language int

// Recognized languages; Other covers every DW_AT_language value the core
// does not special-case.
const (
	LanguageOther Language = iota
	LanguageC
	LanguageCPlusPlus
	LanguageFortran
	LanguageAda
	LanguagePascal
	LanguageCobol
	LanguagePL1
)

// DefaultArrayLowerBound implements spec.md 4.5's per-language default:
// 0 for C-family, 1 for Fortran/Ada/Pascal/Cobol/PL1.
func (l Language) DefaultArrayLowerBound() int64 {
	switch l {
	case LanguageFortran, LanguageAda, LanguagePascal, LanguageCobol, LanguagePL1:
		return 1
	default:
		return 0
	}
}

// TranslationUnit is spec.md 3's "Translation unit".
type TranslationUnit struct {
	Path     string
	AddrSize int
	Language Language

	Locations *LocationManager

	TopScope DeclHandle // a ScopeDecl

	// AnonFunctionTypes owns every anonymous/synthesized function type
	// created while reading this TU (spec.md 3).
	AnonFunctionTypes []TypeHandle
}

// NewVarDecl installs a var_decl.
func (env *Environment) NewVarDecl(name string, typ TypeHandle, scope ScopeHandle, loc SourceLocation) DeclHandle {
	base := baseDecl{Name: env.Intern(name), Location: loc, Scope: scope}
	return env.newDecl(KindVarDecl, base, &VarDecl{Type: typ})
}

// NewFunctionDecl installs a function_decl (or method_decl, when
// isMethod is true).
func (env *Environment) NewFunctionDecl(name string, typ TypeHandle, scope ScopeHandle, loc SourceLocation, isMethod bool, owningClass TypeHandle) DeclHandle {
	base := baseDecl{Name: env.Intern(name), Location: loc, Scope: scope}
	return env.newDecl(KindFunctionDecl, base, &FunctionDecl{Type: typ, IsMethod: isMethod, OwningClass: owningClass})
}

// NewNamespaceDecl installs a namespace_decl.
func (env *Environment) NewNamespaceDecl(name string, scope ScopeHandle) DeclHandle {
	base := baseDecl{Name: env.Intern(name), Scope: scope}
	return env.newDecl(KindNamespaceDecl, base, &NamespaceDecl{})
}

// NewScopeDecl installs a generic scope_decl (used for a translation
// unit's global scope and for lexical blocks).
func (env *Environment) NewScopeDecl(scope ScopeHandle) DeclHandle {
	base := baseDecl{Scope: scope}
	return env.newDecl(KindScopeDecl, base, &ScopeDecl{})
}

// NewTranslationUnit installs a translation_unit and its (parentless)
// global scope.
func (env *Environment) NewTranslationUnit(path string, addrSize int, lang Language) DeclHandle {
	tuHandle := env.newDecl(KindTranslationUnit, baseDecl{}, &TranslationUnit{
		Path:      path,
		AddrSize:  addrSize,
		Language:  lang,
		Locations: newLocationManager(),
	})
	top := env.NewScopeDecl(NilDeclHandle)
	env.declSlot(tuHandle).data.(*TranslationUnit).TopScope = top
	return tuHandle
}

// DeclKindOf returns h's discriminant.
func (env *Environment) DeclKindOf(h DeclHandle) DeclKind { return env.declSlot(h).kind }

// DeclName returns h's (unqualified) interned name.
func (env *Environment) DeclName(h DeclHandle) string { return env.String(env.declSlot(h).base.Name) }

// DeclQualifiedName returns h's fully qualified name.
func (env *Environment) DeclQualifiedName(h DeclHandle) string { return env.declSlot(h).base.QualifiedName }

// SetDeclQualifiedName sets h's fully qualified name, computed by the
// builder once h's enclosing scopes are known.
func (env *Environment) SetDeclQualifiedName(h DeclHandle, qn string) {
	env.declSlot(h).base.QualifiedName = qn
}

// DeclLinkageName returns h's linkage (mangled) name, or "" if none.
func (env *Environment) DeclLinkageName(h DeclHandle) string { return env.declSlot(h).base.LinkageName }

// SetDeclLinkageName sets h's linkage name.
func (env *Environment) SetDeclLinkageName(h DeclHandle, name string) {
	env.declSlot(h).base.LinkageName = name
}

// DeclLocation returns h's source location.
func (env *Environment) DeclLocation(h DeclHandle) SourceLocation { return env.declSlot(h).base.Location }

// DeclScope returns h's enclosing scope, or NilDeclHandle for a
// translation unit's global scope.
func (env *Environment) DeclScope(h DeclHandle) ScopeHandle { return env.declSlot(h).base.Scope }

// DeclSymbol returns h's bound ELF symbol, or nil if unbound.
func (env *Environment) DeclSymbol(h DeclHandle) *elf.Symbol { return env.declSlot(h).base.Symbol }

// BindSymbol attaches sym to h and marks it as present in the public
// symbol table, per spec.md 4.5's variable/function binding contract.
func (env *Environment) BindSymbol(h DeclHandle, sym *elf.Symbol) {
	slot := env.declSlot(h)
	slot.base.Symbol = sym
	slot.base.InPublicSymbolTable = sym != nil
}

// InPublicSymbolTable reports whether h is bound to a symbol.
func (env *Environment) InPublicSymbolTable(h DeclHandle) bool { return env.declSlot(h).base.InPublicSymbolTable }

// AsVarDecl returns h's payload if it is a var_decl.
func (env *Environment) AsVarDecl(h DeclHandle) (*VarDecl, bool) {
	return asDecl[*VarDecl](env, h, KindVarDecl)
}

// AsFunctionDecl returns h's payload if it is a function_decl.
func (env *Environment) AsFunctionDecl(h DeclHandle) (*FunctionDecl, bool) {
	return asDecl[*FunctionDecl](env, h, KindFunctionDecl)
}

// AsNamespaceDecl returns h's payload if it is a namespace_decl.
func (env *Environment) AsNamespaceDecl(h DeclHandle) (*NamespaceDecl, bool) {
	return asDecl[*NamespaceDecl](env, h, KindNamespaceDecl)
}

// AsScopeDecl returns h's payload if it is a scope_decl.
func (env *Environment) AsScopeDecl(h DeclHandle) (*ScopeDecl, bool) {
	return asDecl[*ScopeDecl](env, h, KindScopeDecl)
}

// AsTranslationUnit returns h's payload if it is a translation_unit.
func (env *Environment) AsTranslationUnit(h DeclHandle) (*TranslationUnit, bool) {
	return asDecl[*TranslationUnit](env, h, KindTranslationUnit)
}

func asDecl[T any](env *Environment, h DeclHandle, want DeclKind) (T, bool) {
	var zero T
	if !h.Valid() {
		return zero, false
	}
	slot := env.declSlot(h)
	if slot.kind != want {
		return zero, false
	}
	return slot.data.(T), true
}

// AddScopeMember appends member to the scope at h, which must be a
// scope_decl or namespace_decl.
func (env *Environment) AddScopeMember(h DeclHandle, member ScopeMember) {
	slot := env.declSlot(h)
	switch d := slot.data.(type) {
	case *ScopeDecl:
		d.Members = append(d.Members, member)
	case *NamespaceDecl:
		d.Members = append(d.Members, member)
	default:
		panic("AddScopeMember: not a scope")
	}
}

// ScopeMembersOf returns the direct children of the scope at h.
func (env *Environment) ScopeMembersOf(h DeclHandle) []ScopeMember {
	switch d := env.declSlot(h).data.(type) {
	case *ScopeDecl:
		return d.Members
	case *NamespaceDecl:
		return d.Members
	default:
		return nil
	}
}
