// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Package elf implements the ELF access layer (component C1): opening a
// binary, locating its preferred symbol table, resolving versioned
// symbols, and normalizing addresses for the DWARF-to-IR builder.
package elf

import (
	stdelf "debug/elf"
	"os"
	"sort"
	"strings"

	"github.com/woodard/libabigail-sub002/pkg/abierrors"
)

// dataSectionNames lists the sections against which a relocatable
// object's variable addresses are normalized, per spec.md 4.1.
var dataSectionNames = []string{".bss", ".data", ".data1", ".rodata"}

// File is an opened ELF object together with everything C1 precomputes
// from it: the chosen symbol table, version info, address maps, and
// binary classification.
type File struct {
	Path string
	ef   *stdelf.File

	Kind BinaryKind

	SOName  string
	Needed  []string

	symtabName string
	allSymbols []*Symbol

	DefinedFunctions   map[string][]*Symbol
	DefinedVariables   map[string][]*Symbol
	UndefinedFunctions map[string][]*Symbol
	UndefinedVariables map[string][]*Symbol

	addrToFunction map[uint64]*Symbol
	addrToVariable map[uint64]*Symbol

	loadAddress uint64
	hasLoadAddr bool

	AltDebugLinkPath string
	AltBuildID       []byte
}

// Open reads path as an ELF object and builds its symbol tables. It
// never returns a nil *File together with a nil error. A path that does
// not exist, cannot be opened, or is not ELF yields a nil File and an
// error; otherwise a missing symbol table, debug info, or alternate debug
// info file is reported in the Status alongside a best-effort File
// (possibly with empty tables).
func Open(path string) (*File, Status, error) {
	raw, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, abierrors.NewNoSuchFile(path)
		}
		return nil, 0, abierrors.Wrapf(err, "open %s", path)
	}
	defer raw.Close()

	ef, err := stdelf.NewFile(raw)
	if err != nil {
		return nil, 0, abierrors.Wrapf(abierrors.ErrNotELF, "%s: %v", path, err)
	}

	f := &File{
		Path:               path,
		ef:                 ef,
		DefinedFunctions:   map[string][]*Symbol{},
		DefinedVariables:   map[string][]*Symbol{},
		UndefinedFunctions: map[string][]*Symbol{},
		UndefinedVariables: map[string][]*Symbol{},
		addrToFunction:     map[uint64]*Symbol{},
		addrToVariable:     map[uint64]*Symbol{},
	}

	f.classify()
	f.readDynamic()
	f.computeLoadAddress()
	f.readAltDebugLink()

	var status Status
	if err := f.buildSymbolTables(); err != nil {
		status |= StatusNoSymbols
	}
	if !f.hasDebugInfo() {
		status |= StatusNoDebugInfo
	}
	if f.AltDebugLinkPath != "" {
		if _, statErr := os.Stat(f.AltDebugLinkPath); statErr != nil {
			status |= StatusNoAltDebugInfo
		}
	}
	return f, status, nil
}

// Raw exposes the underlying debug/elf handle for callers (the DWARF
// reader) that need direct access to DWARF sections.
func (f *File) Raw() *stdelf.File { return f.ef }

func (f *File) classify() {
	switch f.ef.Type {
	case stdelf.ET_EXEC:
		f.Kind = KindExecutable
	case stdelf.ET_DYN:
		f.Kind = KindSharedObject
	case stdelf.ET_REL:
		f.Kind = KindRelocatable
	default:
		f.Kind = KindUnknown
	}
}

func (f *File) readDynamic() {
	soname, err := f.ef.DynString(stdelf.DT_SONAME)
	if err == nil && len(soname) == 1 {
		f.SOName = soname[0]
	}
	needed, err := f.ef.DynString(stdelf.DT_NEEDED)
	if err == nil {
		f.Needed = needed
	}
}

// computeLoadAddress finds the first PT_LOAD segment with zero file
// offset, per spec.md 4.1 "compute binary load address".
func (f *File) computeLoadAddress() {
	for _, p := range f.ef.Progs {
		if p.Type == stdelf.PT_LOAD && p.Off == 0 {
			f.loadAddress = p.Vaddr
			f.hasLoadAddr = true
			return
		}
	}
}

func (f *File) readAltDebugLink() {
	sec := f.ef.Section(".gnu_debugaltlink")
	if sec == nil {
		return
	}
	data, err := sec.Data()
	if err != nil || len(data) == 0 {
		return
	}
	nul := strings.IndexByte(string(data), 0)
	if nul < 0 {
		return
	}
	f.AltDebugLinkPath = string(data[:nul])
	if nul+1 < len(data) {
		f.AltBuildID = append([]byte(nil), data[nul+1:]...)
	}
}

func (f *File) hasDebugInfo() bool {
	for _, name := range []string{".debug_info", ".zdebug_info"} {
		if f.ef.Section(name) != nil {
			return true
		}
	}
	return false
}

// HasAltDebugInfo reports whether a .gnu_debugaltlink section was found
// and names the path it points to, per spec.md 4.1.
func (f *File) HasAltDebugInfo() (bool, string) {
	return f.AltDebugLinkPath != "", f.AltDebugLinkPath
}

// Section looks up a section by name, exposing debug/elf's Section
// without forcing every caller to import debug/elf directly.
func (f *File) Section(name string) *stdelf.Section { return f.ef.Section(name) }

// SectionContaining returns the name of the section whose address range
// contains addr, or "" if none does. Only sections with SHF_ALLOC are
// considered, matching the sections spec.md 4.1 names for variable
// address normalization.
func (f *File) SectionContaining(addr uint64) string {
	for _, s := range f.ef.Sections {
		if s.Flags&stdelf.SHF_ALLOC == 0 || s.Size == 0 {
			continue
		}
		if addr >= s.Addr && addr < s.Addr+s.Size {
			return s.Name
		}
	}
	return ""
}

// buildSymbolTables selects the preferred symbol table (.symtab for
// relocatable/executable files, .dynsym for shared objects, falling back
// to the other when the preferred one is absent), decorates entries with
// version info, groups aliases and common instances, and indexes
// everything by name and address.
func (f *File) buildSymbolTables() error {
	preferDynamic := f.Kind == KindSharedObject

	primary, primaryName, err1 := f.rawSymbols(preferDynamic)
	secondary, secondaryName, err2 := f.rawSymbols(!preferDynamic)

	var chosen []stdelf.Symbol
	if err1 == nil && len(primary) > 0 {
		chosen = primary
		f.symtabName = primaryName
	} else if err2 == nil && len(secondary) > 0 {
		chosen = secondary
		f.symtabName = secondaryName
	} else {
		return abierrors.ErrNoSymbols
	}

	versions := f.decodeVersions()

	byAddrGroup := map[uint64][]*Symbol{}
	commonByName := map[string]*Symbol{}

	for i, raw := range chosen {
		sym := f.convertSymbol(raw, i, versions)
		f.allSymbols = append(f.allSymbols, sym)

		if sym.IsCommon {
			if main, ok := commonByName[sym.Name]; ok {
				main.CommonInstances = append(main.CommonInstances, sym)
				continue
			}
			commonByName[sym.Name] = sym
		}

		key := addrGroupKey(sym)
		if key != 0 {
			byAddrGroup[key] = append(byAddrGroup[key], sym)
		}

		f.indexSymbol(sym)
	}

	for _, group := range byAddrGroup {
		groupAliases(group)
	}
	for _, sym := range f.allSymbols {
		if sym.Next == nil && !sym.IsMain {
			sym.IsMain = true
		}
	}
	return nil
}

// addrGroupKey returns a non-zero key for symbols eligible for alias
// grouping: defined function/object symbols at the same address.
func addrGroupKey(s *Symbol) uint64 {
	if !s.IsDefined || s.Value == 0 {
		return 0
	}
	if s.Type != SymbolTypeFunction && s.Type != SymbolTypeObject {
		return 0
	}
	return s.Value
}

func (f *File) rawSymbols(dynamic bool) ([]stdelf.Symbol, string, error) {
	if dynamic {
		syms, err := f.ef.DynamicSymbols()
		return syms, ".dynsym", err
	}
	syms, err := f.ef.Symbols()
	return syms, ".symtab", err
}

func (f *File) convertSymbol(raw stdelf.Symbol, index int, versions map[uint16]Version) *Symbol {
	sym := &Symbol{
		Name:      raw.Name,
		Size:      raw.Size,
		Value:     raw.Value,
		Index:     index,
		IsDefined: raw.Section != stdelf.SHN_UNDEF,
	}
	sym.Type, sym.Binding = classifySymbolInfo(raw.Info)
	if raw.Section == stdelf.SHN_COMMON {
		sym.IsCommon = true
		sym.Type = SymbolTypeCommon
	}
	// versions is keyed by raw .dynsym index, which counts the null entry
	// at index 0 that the chosen slice (and so index) leaves out.
	if v, ok := versions[uint16(index+1)]; ok && f.symtabName == ".dynsym" {
		sym.Version = v
	} else if raw.Version != "" {
		sym.Version = Version{Name: raw.Version, IsDefault: !strings.Contains(raw.Library, "@")}
	}
	return sym
}

func classifySymbolInfo(info uint8) (SymbolType, SymbolBinding) {
	typ := stdelf.ST_TYPE(info)
	bind := stdelf.ST_BIND(info)

	var t SymbolType
	switch typ {
	case stdelf.STT_OBJECT:
		t = SymbolTypeObject
	case stdelf.STT_FUNC:
		t = SymbolTypeFunction
	case stdelf.STT_SECTION:
		t = SymbolTypeSection
	case stdelf.STT_FILE:
		t = SymbolTypeFile
	case stdelf.STT_COMMON:
		t = SymbolTypeCommon
	case stdelf.STT_TLS:
		t = SymbolTypeTLS
	case stdelf.STT_GNU_IFUNC:
		t = SymbolTypeGNUIFunc
	default:
		t = SymbolTypeNone
	}

	var b SymbolBinding
	switch bind {
	case stdelf.STB_GLOBAL:
		b = BindingGlobal
	case stdelf.STB_WEAK:
		b = BindingWeak
	case stdelf.STB_GNU_UNIQUE:
		b = BindingGNUUnique
	default:
		b = BindingLocal
	}
	return t, b
}

func (f *File) indexSymbol(sym *Symbol) {
	if sym.Name == "" {
		return
	}
	var table map[string][]*Symbol
	switch {
	case sym.Type == SymbolTypeFunction && sym.IsDefined:
		table = f.DefinedFunctions
		f.addrToFunction[sym.Value] = sym
	case sym.Type == SymbolTypeFunction && !sym.IsDefined:
		table = f.UndefinedFunctions
	case (sym.Type == SymbolTypeObject || sym.Type == SymbolTypeCommon || sym.Type == SymbolTypeTLS) && sym.IsDefined:
		table = f.DefinedVariables
		f.addrToVariable[sym.Value] = sym
	case (sym.Type == SymbolTypeObject || sym.Type == SymbolTypeTLS) && !sym.IsDefined:
		table = f.UndefinedVariables
	default:
		return
	}
	table[sym.Name] = append(table[sym.Name], sym)
}

// LookupDefinedFunctionSymbolByName returns every defined function
// symbol with the given name (normally one, more if aliased).
func (f *File) LookupDefinedFunctionSymbolByName(name string) []*Symbol {
	return f.DefinedFunctions[name]
}

// LookupDefinedVariableSymbolByName returns every defined variable (or
// common) symbol with the given name.
func (f *File) LookupDefinedVariableSymbolByName(name string) []*Symbol {
	return f.DefinedVariables[name]
}

// LookupSymbolByAddress returns the function or variable symbol located
// at addr, depending on wantFunction.
func (f *File) LookupSymbolByAddress(addr uint64, wantFunction bool) *Symbol {
	if wantFunction {
		return f.addrToFunction[addr]
	}
	return f.addrToVariable[addr]
}

// SortedExportedNames returns the deterministic, sorted list of names
// across both defined-function and defined-variable tables; used by
// reporting and tests that need stable iteration order.
func (f *File) SortedExportedNames() []string {
	seen := map[string]struct{}{}
	for n := range f.DefinedFunctions {
		seen[n] = struct{}{}
	}
	for n := range f.DefinedVariables {
		seen[n] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
