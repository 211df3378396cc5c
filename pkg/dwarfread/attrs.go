// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package dwarfread

import (
	stddwarf "debug/dwarf"
	"regexp"

	"github.com/woodard/libabigail-sub002/pkg/abierrors"
	"github.com/woodard/libabigail-sub002/pkg/dwarfidx"
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// abiUnexpectedTag reports a specification/abstract_origin target that
// resolved to a DIE this reader does not know how to build a decl from.
func abiUnexpectedTag(offset stddwarf.Offset) error {
	return abierrors.Wrapf(abierrors.ErrMalformedDWARF, "unexpected origin tag at %#x", offset)
}

func attrString(entry *stddwarf.Entry, attr stddwarf.Attr) string {
	if v, ok := entry.Val(attr).(string); ok {
		return v
	}
	return ""
}

func attrUint(entry *stddwarf.Entry, attr stddwarf.Attr) (uint64, bool) {
	switch v := entry.Val(attr).(type) {
	case int64:
		return uint64(v), true
	case uint64:
		return v, true
	}
	return 0, false
}

func attrInt(entry *stddwarf.Entry, attr stddwarf.Attr) (int64, bool) {
	switch v := entry.Val(attr).(type) {
	case int64:
		return v, true
	case uint64:
		return int64(v), true
	}
	return 0, false
}

func attrBool(entry *stddwarf.Entry, attr stddwarf.Attr) bool {
	v, _ := entry.Val(attr).(bool)
	return v
}

// attrTypeKey resolves a DW_AT_type (or similarly-shaped reference
// attribute) to the Key of the DIE it targets. Go's debug/dwarf decodes
// every supported reference form to a dwarf.Offset, which is only
// meaningful relative to the partition the referencing DIE itself was
// read from; DW_FORM_GNU_ref_alt cross-partition references are outside
// what the stdlib decoder exposes distinctly, so they are resolved
// within the referencing DIE's own partition. This is a deliberate scope
// narrowing from spec.md 6.1's "detected at runtime" language, recorded
// in DESIGN.md.
func attrTypeKey(entry *stddwarf.Entry, attr stddwarf.Attr, part dwarfidx.Partition) (dwarfidx.Key, bool) {
	off, ok := entry.Val(attr).(stddwarf.Offset)
	if !ok {
		return dwarfidx.Key{}, false
	}
	return dwarfidx.Key{Partition: part, Offset: off}, true
}

func dieName(entry *stddwarf.Entry) string {
	return attrString(entry, stddwarf.AttrName)
}

// vtablePointerPattern matches the hidden vtable-pointer data member name
// DWARF emits for polymorphic classes, e.g. "_vptr$Base" or "_vptr.Base",
// per spec.md 4.5's "_vptr[^0-9A-Za-z_]" skip rule.
var vtablePointerPattern = regexp.MustCompile(`^_vptr[^0-9A-Za-z_]`)

func isVtablePointerMember(name string) bool {
	return vtablePointerPattern.MatchString(name)
}

// languageOf maps a DW_AT_language constant to ir.Language, per spec.md
// 4.5 step 4a.
func languageOf(entry *stddwarf.Entry) ir.Language {
	v, ok := attrUint(entry, stddwarf.AttrLanguage)
	if !ok {
		return ir.LanguageOther
	}
	switch v {
	case 0x01, 0x02, 0x0c, 0x1d, 0x2c: // C89, C, C99, C11, C17
		return ir.LanguageC
	case 0x04, 0x19, 0x1a, 0x21, 0x2a, 0x2b: // C++, C++03, C++11, C++14, C++17, C++20
		return ir.LanguageCPlusPlus
	case 0x03: // Ada83
		return ir.LanguageAda
	case 0x05: // Cobol74
		return ir.LanguageCobol
	case 0x07, 0x08, 0x0e, 0x22, 0x23: // Fortran77 and friends (90, 95, 03, 08)
		return ir.LanguageFortran
	case 0x09: // Pascal83
		return ir.LanguagePascal
	case 0x0f: // PL1
		return ir.LanguagePL1
	default:
		return ir.LanguageOther
	}
}

func accessOf(entry *stddwarf.Entry, defaultPublic bool) ir.AccessSpecifier {
	v, ok := attrUint(entry, stddwarf.AttrAccessibility)
	if !ok {
		if defaultPublic {
			return ir.AccessPublic
		}
		return ir.AccessPrivate
	}
	switch v {
	case 1:
		return ir.AccessPublic
	case 2:
		return ir.AccessProtected
	case 3:
		return ir.AccessPrivate
	default:
		return ir.AccessPublic
	}
}
