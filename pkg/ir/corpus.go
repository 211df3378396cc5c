// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package ir

import "sort"

// Corpus is spec.md 3's "ABI corpus": the translation units read out of
// one ELF file, plus the lookup tables a diff needs to match declarations
// by symbol identity rather than by DIE offset.
type Corpus struct {
	Path string

	// SOName is the object's DT_SONAME, when it carries one. Suppression
	// rules match it via soname_regexp/soname_not_regexp (spec.md 3, 6.2).
	SOName string

	TranslationUnits []DeclHandle // each a KindTranslationUnit

	// ExportedFunctions/ExportedVariables are keyed by symbol identity
	// (name plus version, per spec.md 4.7's corpus-diff matching rule): the
	// function/variable declarations bound to a defined, exported symbol
	// (spec.md 4.6 "exported_decls_builder"). Keying by name alone would
	// collide two versioned symbols sharing a base name.
	ExportedFunctions map[SymbolIdentity]DeclHandle
	ExportedVariables map[SymbolIdentity]DeclHandle

	// UnreferencedSymbols holds exported symbols with no corresponding
	// debug-info declaration (spec.md 4.6, summarized by pkg/report under
	// "Function/Variable symbols not referenced by debug info").
	UnreferencedSymbols []SymbolRef

	// typeNameIndex maps a type's qualified name to every TypeHandle
	// sharing it, one of the nine lookup maps spec.md 4.6 calls for.
	typeNameIndex map[string][]TypeHandle
}

// SymbolIdentity is the (name, version) pair spec.md 4.7 matches exported
// functions/variables by across two corpora. Version is empty for an
// unversioned symbol, so an unversioned name behaves exactly as a
// bare-name key would.
type SymbolIdentity struct {
	Name    string
	Version string
}

// String renders id the way reports and diff labels display it:
// name@version when versioned, bare name otherwise.
func (id SymbolIdentity) String() string {
	if id.Version == "" {
		return id.Name
	}
	return id.Name + "@" + id.Version
}

// SymbolRef names an ELF symbol by its exported identity, used for
// corpus members that have no debug-info-derived declaration.
type SymbolRef struct {
	Name       string
	IsFunction bool
}

// NewCorpus creates an empty corpus rooted at path.
func NewCorpus(path string) *Corpus {
	return &Corpus{
		Path:              path,
		ExportedFunctions: map[SymbolIdentity]DeclHandle{},
		ExportedVariables: map[SymbolIdentity]DeclHandle{},
		typeNameIndex:     map[string][]TypeHandle{},
	}
}

// AddTranslationUnit registers tu as a member of the corpus.
func (c *Corpus) AddTranslationUnit(tu DeclHandle) {
	c.TranslationUnits = append(c.TranslationUnits, tu)
}

// IndexTypeName records that h is reachable under qualifiedName, building
// spec.md 4.6's type-name lookup tables incrementally as the builder
// creates types, rather than as a single post-pass sweep.
func (c *Corpus) IndexTypeName(qualifiedName string, h TypeHandle) {
	if qualifiedName == "" {
		return
	}
	c.typeNameIndex[qualifiedName] = append(c.typeNameIndex[qualifiedName], h)
}

// TypesNamed returns every type registered under qualifiedName, used by
// pkg/suppression's type-name matching and by declaration-only class
// resolution (spec.md 4.4).
func (c *Corpus) TypesNamed(qualifiedName string) []TypeHandle {
	return c.typeNameIndex[qualifiedName]
}

// BuildExportedDecls walks every translation unit's scope tree and
// records function/variable declarations bound to a defined, exported
// ELF symbol into ExportedFunctions/ExportedVariables, per spec.md 4.6's
// exported_decls_builder contract. It must run after BindSymbol has been
// called for every declaration the DWARF reader could match.
func (c *Corpus) BuildExportedDecls(env *Environment) {
	for _, tu := range c.TranslationUnits {
		tud, ok := env.AsTranslationUnit(tu)
		if !ok {
			continue
		}
		c.walkScope(env, tud.TopScope)
	}
}

func (c *Corpus) walkScope(env *Environment, scope DeclHandle) {
	if !scope.Valid() {
		return
	}
	for _, m := range env.ScopeMembersOf(scope) {
		if m.IsType {
			continue
		}
		d := m.Decl
		switch env.DeclKindOf(d) {
		case KindScopeDecl, KindNamespaceDecl:
			c.walkScope(env, d)
			continue
		}
		if !env.InPublicSymbolTable(d) {
			continue
		}
		sym := env.DeclSymbol(d).Main()
		id := SymbolIdentity{Name: sym.Name, Version: sym.Version.Name}
		switch env.DeclKindOf(d) {
		case KindFunctionDecl:
			if _, exists := c.ExportedFunctions[id]; !exists {
				c.ExportedFunctions[id] = d
			}
		case KindVarDecl:
			if _, exists := c.ExportedVariables[id]; !exists {
				c.ExportedVariables[id] = d
			}
		}
	}
}

// SortedExportedFunctionIdentities returns ExportedFunctions' keys in
// sorted order (by name, then version), for deterministic corpus-diff
// iteration and reporting.
func (c *Corpus) SortedExportedFunctionIdentities() []SymbolIdentity {
	return sortedIdentities(c.ExportedFunctions)
}

// SortedExportedVariableIdentities returns ExportedVariables' keys in
// sorted order.
func (c *Corpus) SortedExportedVariableIdentities() []SymbolIdentity {
	return sortedIdentities(c.ExportedVariables)
}

func sortedIdentities(m map[SymbolIdentity]DeclHandle) []SymbolIdentity {
	ids := make([]SymbolIdentity, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Name != ids[j].Name {
			return ids[i].Name < ids[j].Name
		}
		return ids[i].Version < ids[j].Version
	})
	return ids
}

// CorpusGroup is a pair of corpora compared together, sharing one
// Environment so their canonical type handles are directly comparable
// (spec.md 3, 4.7).
type CorpusGroup struct {
	Env    *Environment
	First  *Corpus
	Second *Corpus
}
