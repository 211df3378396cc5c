// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Package dwarfidx implements component C3: a one-pass index over every
// compilation unit of the main and alternate debug info, recording each
// DIE's physical parent and every DW_TAG_imported_unit import point, so
// the DWARF-to-IR builder can resolve a DIE's *logical* parent even when
// it is physically nested in a shared partial_unit.
package dwarfidx

import (
	"debug/dwarf"
	"sort"
)

// Partition distinguishes the main debug info from an optional alternate
// debug info file (.gnu_debugaltlink), per spec.md 3 "DIE origin".
type Partition uint8

// The two recognized partitions.
const (
	Main Partition = iota
	Alt
)

// Key is a tagged-union DIE identity: a DWARF offset is only meaningful
// together with the partition it was read from (spec.md 9, Design
// Notes: "Map to a single map keyed by a tagged-union key").
type Key struct {
	Partition Partition
	Offset    dwarf.Offset
}

// ImportPoint records one DW_TAG_imported_unit: the offset of the import
// DIE itself, the partial_unit it imports, the CU that partial unit
// belongs to, and the offset of that CU's first child.
type ImportPoint struct {
	OffsetOfImport           dwarf.Offset
	ImportedDieOffset        dwarf.Offset
	ImportedCUOffset         dwarf.Offset
	ImportedFirstChildOffset dwarf.Offset
	FromAlt                  bool
}

// Index is the parent map and import-point table built by Build.
type Index struct {
	parent map[Key]Key
	tag    map[Key]dwarf.Tag
	cuOf   map[Key]Key

	// importPointsByTarget groups import points by the partial_unit
	// offset they import (within the partition that partial_unit lives
	// in), sorted ascending by OffsetOfImport — this is what
	// LogicalParent binary-searches, per spec.md 4.3 step 1.
	importPointsByTarget map[Key][]ImportPoint

	// altRefs records DW_AT_import offsets that dwarfread has identified
	// as using DW_FORM_GNU_ref_alt (pointing into the alternate
	// partition), since Go's debug/dwarf package does not preserve the
	// original form once it decodes a reference attribute.
	altRefs map[dwarf.Offset]bool
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		parent:               map[Key]Key{},
		tag:                  map[Key]dwarf.Tag{},
		cuOf:                 map[Key]Key{},
		importPointsByTarget: map[Key][]ImportPoint{},
		altRefs:              map[dwarf.Offset]bool{},
	}
}

// MarkAltReference tells the index that a DW_AT_import value of offset
// refers into the alternate debug info partition.
func (idx *Index) MarkAltReference(offset dwarf.Offset) {
	idx.altRefs[offset] = true
}

// Build walks every compilation unit in data (and, if altData is
// non-nil, in the alternate debug info too), recording parent links and
// DW_TAG_imported_unit import points. altRefs lists the DW_AT_import
// offsets known (from their original form) to cross partitions; Build
// copies them into the new Index before walking, so cross-partition
// import points are classified correctly.
func Build(data *dwarf.Data, altData *dwarf.Data, altRefs map[dwarf.Offset]bool) (*Index, error) {
	idx := New()
	for off := range altRefs {
		idx.altRefs[off] = true
	}
	if err := idx.walk(data, Main); err != nil {
		return nil, err
	}
	if altData != nil {
		if err := idx.walk(altData, Alt); err != nil {
			return nil, err
		}
	}
	for k, pts := range idx.importPointsByTarget {
		sort.Slice(pts, func(i, j int) bool { return pts[i].OffsetOfImport < pts[j].OffsetOfImport })
		idx.importPointsByTarget[k] = pts
	}
	return idx, nil
}

func (idx *Index) walk(data *dwarf.Data, part Partition) error {
	r := data.Reader()
	var stack []Key
	var curCU Key

	for {
		entry, err := r.Next()
		if err != nil {
			return err
		}
		if entry == nil {
			return nil
		}
		if entry.Tag == 0 {
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
			continue
		}

		key := Key{Partition: part, Offset: entry.Offset}
		idx.tag[key] = entry.Tag

		if len(stack) == 0 {
			curCU = key
		} else {
			idx.parent[key] = stack[len(stack)-1]
		}
		idx.cuOf[key] = curCU

		if entry.Tag == dwarf.TagImportedUnit {
			idx.recordImportPoint(entry, part)
		}

		if entry.Children {
			stack = append(stack, key)
		}
	}
}

func (idx *Index) recordImportPoint(entry *dwarf.Entry, part Partition) {
	importedField := entry.AttrField(dwarf.AttrImport)
	if importedField == nil {
		return
	}
	importedOffset, ok := importedField.Val.(dwarf.Offset)
	if !ok {
		return
	}
	fromAlt := idx.altRefs[importedOffset]
	targetPart := part
	if fromAlt {
		targetPart = Alt
	}
	targetKey := Key{Partition: targetPart, Offset: importedOffset}

	pt := ImportPoint{
		OffsetOfImport:    entry.Offset,
		ImportedDieOffset: importedOffset,
		FromAlt:           fromAlt,
	}
	if cu, ok := idx.cuOf[targetKey]; ok {
		pt.ImportedCUOffset = cu.Offset
	}
	idx.importPointsByTarget[targetKey] = append(idx.importPointsByTarget[targetKey], pt)
}

// ParentOf returns the physical parent of key, and whether one exists
// (false for a unit's top-level DIE).
func (idx *Index) ParentOf(key Key) (Key, bool) {
	p, ok := idx.parent[key]
	return p, ok
}

// TagOf returns the DWARF tag recorded for key.
func (idx *Index) TagOf(key Key) (dwarf.Tag, bool) {
	t, ok := idx.tag[key]
	return t, ok
}

// CUOf returns the unit-level DIE enclosing key (for a partial_unit's
// descendants, this is the partial_unit DIE itself, since a partial unit
// is its own DWARF unit).
func (idx *Index) CUOf(key Key) (Key, bool) {
	cu, ok := idx.cuOf[key]
	return cu, ok
}

// ImportPointsImporting returns the sorted import points that import the
// partial_unit identified by target.
func (idx *Index) ImportPointsImporting(target Key) []ImportPoint {
	return idx.importPointsByTarget[target]
}

// LogicalParent implements spec.md 4.3's logical parent resolution: given
// a DIE and the "where" offset marking the point of reference, it walks
// through partial_unit import indirection to find the DIE's true logical
// parent.
//
//  1. If die's physical parent is not a partial_unit, that parent *is*
//     the logical parent. Parent links are recorded during a single
//     partition's walk, so this parent is always in die's own partition.
//  2. Otherwise, find the latest import point importing that
//     partial_unit with OffsetOfImport <= where. Its own logical parent
//     (found by recursing on the import DIE, using the import's offset
//     as the new "where") is die's logical parent.
//  3. If no such import point exists, die's logical parent is its unit's
//     top-level DIE.
func (idx *Index) LogicalParent(die Key, where dwarf.Offset) (Key, bool) {
	parent, ok := idx.ParentOf(die)
	if !ok {
		return Key{}, false
	}
	if tag, _ := idx.TagOf(parent); tag != dwarf.TagPartialUnit {
		return parent, true
	}

	cu, ok := idx.CUOf(die)
	if !ok {
		cu = parent
	}
	pts := idx.ImportPointsImporting(cu)
	imp, found := latestImportPointBefore(pts, where)
	if !found {
		return cu, true
	}

	importDiePartition := die.Partition
	if imp.FromAlt {
		// The import statement itself lives in the opposite partition
		// from the thing it imports.
		if die.Partition == Alt {
			importDiePartition = Main
		}
	}
	importKey := Key{Partition: importDiePartition, Offset: imp.OffsetOfImport}
	return idx.LogicalParent(importKey, imp.OffsetOfImport)
}

// latestImportPointBefore binary-searches the sorted import points for
// the last one with OffsetOfImport <= where.
func latestImportPointBefore(pts []ImportPoint, where dwarf.Offset) (ImportPoint, bool) {
	i := sort.Search(len(pts), func(i int) bool { return pts[i].OffsetOfImport > where })
	if i == 0 {
		return ImportPoint{}, false
	}
	return pts[i-1], true
}
