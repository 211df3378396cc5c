// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package dwarfidx

import (
	"debug/dwarf"
	"testing"
)

// buildSynthetic constructs an Index by hand (white-box) rather than by
// parsing real DWARF bytes, to exercise LogicalParent's partial_unit
// indirection in isolation: a main CU imports a partial_unit (in the alt
// partition) at two different call sites, each of which should resolve
// a child DIE of that partial_unit to a *different* logical parent.
func buildSynthetic() *Index {
	idx := New()

	cu := Key{Partition: Main, Offset: 0x10}
	callSiteA := Key{Partition: Main, Offset: 0x20} // DW_TAG_imported_unit
	callSiteB := Key{Partition: Main, Offset: 0x40}
	pu := Key{Partition: Alt, Offset: 0x1000}     // DW_TAG_partial_unit
	fn := Key{Partition: Alt, Offset: 0x1010}     // child of pu: DW_TAG_subprogram

	idx.tag[cu] = dwarf.TagCompileUnit
	idx.tag[callSiteA] = dwarf.TagImportedUnit
	idx.tag[callSiteB] = dwarf.TagImportedUnit
	idx.tag[pu] = dwarf.TagPartialUnit
	idx.tag[fn] = dwarf.TagSubprogram

	idx.cuOf[cu] = cu
	idx.cuOf[callSiteA] = cu
	idx.cuOf[callSiteB] = cu
	idx.cuOf[pu] = pu
	idx.cuOf[fn] = pu

	idx.parent[callSiteA] = cu
	idx.parent[callSiteB] = cu
	idx.parent[fn] = pu

	idx.importPointsByTarget[pu] = []ImportPoint{
		{OffsetOfImport: callSiteA.Offset, ImportedDieOffset: pu.Offset, FromAlt: true},
		{OffsetOfImport: callSiteB.Offset, ImportedDieOffset: pu.Offset, FromAlt: true},
	}
	return idx
}

func TestLogicalParentResolvesThroughPartialUnit(t *testing.T) {
	idx := buildSynthetic()
	fn := Key{Partition: Alt, Offset: 0x1010}

	// Referenced at a point after callSiteA but before callSiteB: should
	// resolve to callSiteA's own logical parent, which is cu (since
	// callSiteA's physical parent, cu, is not itself a partial_unit).
	parent, ok := idx.LogicalParent(fn, 0x30)
	if !ok {
		t.Fatalf("expected a logical parent")
	}
	if parent != (Key{Partition: Main, Offset: 0x10}) {
		t.Errorf("got %+v, want cu", parent)
	}

	// Referenced before any import point: falls back to the partial
	// unit's own top-level DIE.
	parent, ok = idx.LogicalParent(fn, 0x05)
	if !ok {
		t.Fatalf("expected a logical parent")
	}
	if parent != (Key{Partition: Alt, Offset: 0x1000}) {
		t.Errorf("got %+v, want pu itself", parent)
	}
}

func TestLatestImportPointBefore(t *testing.T) {
	pts := []ImportPoint{{OffsetOfImport: 10}, {OffsetOfImport: 20}, {OffsetOfImport: 30}}
	if _, ok := latestImportPointBefore(pts, 5); ok {
		t.Errorf("expected no import point before 5")
	}
	got, ok := latestImportPointBefore(pts, 25)
	if !ok || got.OffsetOfImport != 20 {
		t.Errorf("got %+v, want offset 20", got)
	}
	got, ok = latestImportPointBefore(pts, 30)
	if !ok || got.OffsetOfImport != 30 {
		t.Errorf("got %+v, want offset 30 (inclusive)", got)
	}
}

func TestParentOfTopLevelDIE(t *testing.T) {
	idx := buildSynthetic()
	if _, ok := idx.ParentOf(Key{Partition: Main, Offset: 0x10}); ok {
		t.Errorf("a CU's own DIE should have no physical parent")
	}
}
