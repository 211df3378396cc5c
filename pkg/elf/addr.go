// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package elf

// NormalizeFunctionAddress implements spec.md 4.1's function address
// contract: in relocatable objects, subtract the .text section base; in
// executables/DSOs, shift by (executable load address - DWARF-file load
// address) when debug info is split across files. dwarfLoadAddress is
// the load address recorded in the (possibly separate) file that carries
// the DWARF; pass f.LoadAddress() when debug info is not split.
func (f *File) NormalizeFunctionAddress(addr uint64, dwarfLoadAddress uint64) uint64 {
	if f.Kind == KindRelocatable {
		if text := f.ef.Section(".text"); text != nil {
			return addr - text.Addr
		}
		return addr
	}
	return addr + (f.LoadAddress() - dwarfLoadAddress)
}

// NormalizeVariableAddress implements spec.md 4.1's variable address
// contract: in relocatable objects, subtract the base of whichever data
// section the address falls into; in executables/DSOs, apply the same
// split-file shift as functions. Thread-local addresses are never
// shifted, since TLS offsets are not absolute addresses.
func (f *File) NormalizeVariableAddress(addr uint64, dwarfLoadAddress uint64, isTLS bool) uint64 {
	if isTLS {
		return addr
	}
	if f.Kind == KindRelocatable {
		for _, name := range dataSectionNames {
			if sec := f.ef.Section(name); sec != nil && addr >= sec.Addr && addr < sec.Addr+sec.Size {
				return addr - sec.Addr
			}
		}
		return addr
	}
	return addr + (f.LoadAddress() - dwarfLoadAddress)
}

// LoadAddress returns the binary's computed load address: the vaddr of
// the first PT_LOAD segment with zero file offset, or 0 if none exists
// (e.g. relocatable objects have no PT_LOAD segments at all).
func (f *File) LoadAddress() uint64 {
	if !f.hasLoadAddr {
		return 0
	}
	return f.loadAddress
}
