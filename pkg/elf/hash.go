// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package elf

import stdelf "debug/elf"

// ElfHash computes the classic SysV `.hash` bucket function (the
// original `elf_hash` from the System V ABI).
func ElfHash(name string) uint32 {
	var h, g uint32
	for i := 0; i < len(name); i++ {
		h = (h << 4) + uint32(name[i])
		g = h & 0xf0000000
		if g != 0 {
			h ^= g >> 24
		}
		h &^= g
	}
	return h
}

// GNUHash computes the GNU `.gnu.hash` bucket function (djb2 variant).
func GNUHash(name string) uint32 {
	h := uint32(5381)
	for i := 0; i < len(name); i++ {
		h = h*33 + uint32(name[i])
	}
	return h
}

// HashKind names which hash table style, if any, a File exposes.
type HashKind uint8

// Recognized hash table kinds.
const (
	HashNone HashKind = iota
	HashSysV
	HashGNU
)

// HashKind reports which hash section(s) are present, preferring GNU
// when both exist (it is the faster, more complete of the two on
// contemporary glibc-linked objects).
func (f *File) HashKind() HashKind {
	if f.ef.Section(".gnu.hash") != nil {
		return HashGNU
	}
	if f.ef.Section(".hash") != nil {
		return HashSysV
	}
	return HashNone
}

// LookupByHash resolves name to a symbol by walking whichever hash table
// the binary exposes (spec.md 4.1 "recognize GNU and SysV hash tables
// and support lookup through either"), falling back to a linear scan of
// the chosen symbol table when neither .hash nor .gnu.hash is present, or
// when the hash section turns out to be malformed or keyed to a symbol
// table other than the one File chose.
func (f *File) LookupByHash(name string) *Symbol {
	switch f.HashKind() {
	case HashGNU:
		if s := f.lookupGNUHash(name); s != nil {
			return s
		}
		return f.linearScan(name)
	case HashSysV:
		if s := f.lookupSysVHash(name); s != nil {
			return s
		}
		return f.linearScan(name)
	default:
		return f.linearScan(name)
	}
}

func (f *File) linearScan(name string) *Symbol {
	for _, s := range f.allSymbols {
		if s.Name == name {
			return s
		}
	}
	return nil
}

// symbolAtDynsymIndex maps a raw symbol-table index, as used by both hash
// table formats, back to the Symbol File built for it. Both .hash and
// .gnu.hash index into .dynsym including its leading null entry at index
// 0; f.allSymbols holds the chosen table with that null entry already
// dropped, so raw index i lands at allSymbols[i-1].
func (f *File) symbolAtDynsymIndex(rawIndex uint32) *Symbol {
	if f.symtabName != ".dynsym" || rawIndex == 0 {
		return nil
	}
	i := int(rawIndex) - 1
	if i < 0 || i >= len(f.allSymbols) {
		return nil
	}
	return f.allSymbols[i]
}

// lookupSysVHash walks a classic `.hash` section's bucket/chain arrays:
// nbucket and nchain header words followed by two uint32 arrays, all in
// the object's native byte order (System V ABI, "Hash Table Section").
func (f *File) lookupSysVHash(name string) *Symbol {
	sec := f.ef.Section(".hash")
	if sec == nil {
		return nil
	}
	data, err := sec.Data()
	if err != nil || len(data) < 8 {
		return nil
	}
	bo := f.ef.ByteOrder

	nbucket := bo.Uint32(data[0:4])
	nchain := bo.Uint32(data[4:8])
	if nbucket == 0 {
		return nil
	}
	bucketOff := 8
	chainOff := bucketOff + int(nbucket)*4
	if chainOff+int(nchain)*4 > len(data) {
		return nil
	}

	h := ElfHash(name)
	y := bo.Uint32(data[bucketOff+int(h%nbucket)*4:])
	for y != 0 {
		if y >= nchain {
			return nil
		}
		if sym := f.symbolAtDynsymIndex(y); sym != nil && sym.Name == name {
			return sym
		}
		y = bo.Uint32(data[chainOff+int(y)*4:])
	}
	return nil
}

// lookupGNUHash walks a `.gnu.hash` section: header (nbuckets, symoffset,
// bloom word count, bloom shift), a bloom filter of native-word-sized
// entries, a bucket array, then a chain array covering symbols
// [symoffset, nsyms) whose low bit flags the last entry of its bucket.
func (f *File) lookupGNUHash(name string) *Symbol {
	sec := f.ef.Section(".gnu.hash")
	if sec == nil {
		return nil
	}
	data, err := sec.Data()
	if err != nil || len(data) < 16 {
		return nil
	}
	bo := f.ef.ByteOrder

	nbuckets := bo.Uint32(data[0:4])
	symoffset := bo.Uint32(data[4:8])
	bloomSize := bo.Uint32(data[8:12])
	bloomShift := bo.Uint32(data[12:16])
	if nbuckets == 0 || bloomSize == 0 {
		return nil
	}

	wordBytes := 4
	if f.ef.Class == stdelf.ELFCLASS64 {
		wordBytes = 8
	}
	bloomOff := 16
	bucketsOff := bloomOff + int(bloomSize)*wordBytes
	chainOff := bucketsOff + int(nbuckets)*4
	if bucketsOff > len(data) || chainOff > len(data) {
		return nil
	}

	h1 := GNUHash(name)
	bitsPerWord := uint32(wordBytes * 8)
	wordIdx := (h1 / bitsPerWord) % bloomSize
	var word uint64
	if wordBytes == 8 {
		if bloomOff+int(wordIdx)*8+8 > len(data) {
			return nil
		}
		word = bo.Uint64(data[bloomOff+int(wordIdx)*8:])
	} else {
		if bloomOff+int(wordIdx)*4+4 > len(data) {
			return nil
		}
		word = uint64(bo.Uint32(data[bloomOff+int(wordIdx)*4:]))
	}
	h2 := h1 >> bloomShift
	bit1 := uint64(1) << (h1 % bitsPerWord)
	bit2 := uint64(1) << (h2 % bitsPerWord)
	if word&bit1 == 0 || word&bit2 == 0 {
		return nil
	}

	idx := bo.Uint32(data[bucketsOff+int(h1%nbuckets)*4:])
	if idx < symoffset {
		return nil
	}
	for {
		chainEntryOff := chainOff + int(idx-symoffset)*4
		if chainEntryOff+4 > len(data) {
			return nil
		}
		chainVal := bo.Uint32(data[chainEntryOff:])
		if (chainVal|1) == (h1|1) {
			if sym := f.symbolAtDynsymIndex(idx); sym != nil && sym.Name == name {
				return sym
			}
		}
		if chainVal&1 != 0 {
			return nil
		}
		idx++
	}
}
