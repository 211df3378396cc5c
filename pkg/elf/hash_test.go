// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package elf

import "testing"

func TestElfHashKnownValues(t *testing.T) {
	// Values taken from the System V ABI's elf_hash worked example.
	cases := map[string]uint32{
		"":        0x0,
		"main":    0x737fe,
		"printf":  0x77905a6,
	}
	for name, want := range cases {
		if got := ElfHash(name); got != want {
			t.Errorf("ElfHash(%q) = %#x, want %#x", name, got, want)
		}
	}
}

func TestGNUHashMatchesDJB2Variant(t *testing.T) {
	h := GNUHash("printf")
	h2 := GNUHash("printf")
	if h != h2 {
		t.Fatalf("GNUHash not deterministic: %#x vs %#x", h, h2)
	}
	if GNUHash("") != 5381 {
		t.Errorf("GNUHash(\"\") = %#x, want 5381", GNUHash(""))
	}
}

func TestGroupAliasesPicksGlobalAsMain(t *testing.T) {
	local := &Symbol{Name: "f", Binding: BindingLocal, IsDefined: true}
	global := &Symbol{Name: "f_alias", Binding: BindingGlobal, IsDefined: true}
	groupAliases([]*Symbol{local, global})

	if !global.IsMain {
		t.Errorf("expected global-bound symbol to be main")
	}
	if local.IsMain {
		t.Errorf("expected local-bound symbol to not be main")
	}
	aliases := local.Aliases()
	if len(aliases) != 2 {
		t.Fatalf("expected 2 aliases, got %d", len(aliases))
	}
	if local.Main() != global {
		t.Errorf("Main() did not resolve to the global alias")
	}
}

func TestGroupAliasesSingleton(t *testing.T) {
	s := &Symbol{Name: "only"}
	groupAliases([]*Symbol{s})
	if !s.IsMain {
		t.Errorf("a singleton group must be its own main")
	}
	if len(s.Aliases()) != 1 {
		t.Errorf("singleton group should report exactly one alias")
	}
}

func TestClassifySymbolInfo(t *testing.T) {
	typ, bind := classifySymbolInfo(symbolInfo(1, 2)) // STB_GLOBAL=1, STT_FUNC=2
	if typ != SymbolTypeFunction {
		t.Errorf("type = %v, want SymbolTypeFunction", typ)
	}
	if bind != BindingGlobal {
		t.Errorf("binding = %v, want BindingGlobal", bind)
	}
}

func symbolInfo(bind, typ uint8) uint8 {
	return bind<<4 | (typ & 0xf)
}
