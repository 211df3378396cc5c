// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package elf

import (
	"encoding/binary"
	stdelf "debug/elf"
)

// versionIndex bits, mirroring the ELF gABI's VERSYM layout.
const (
	versymHidden = 0x8000
	versymIndexMask = 0x7fff
	versymLocal     = 0 // VER_NDX_LOCAL
	versymGlobal    = 1 // VER_NDX_GLOBAL
)

// decodeVersions decodes .gnu.version against .gnu.version_d and
// .gnu.version_r, returning a map from symbol-table index to Version.
// Symbols with no entry, or whose index denotes the local/global
// pseudo-versions, are simply absent from the map (convertSymbol then
// falls back to stdlib's own Version/Library fields).
func (f *File) decodeVersions() map[uint16]Version {
	result := map[uint16]Version{}

	versymSec := f.ef.Section(".gnu.version")
	if versymSec == nil {
		return result
	}
	versymData, err := versymSec.Data()
	if err != nil || len(versymData) < 2 {
		return result
	}

	order := f.ef.ByteOrder
	defs := f.decodeVerdef(order)
	needs := f.decodeVerneed(order)

	n := len(versymData) / 2
	for i := 0; i < n; i++ {
		raw := order.Uint16(versymData[i*2 : i*2+2])
		idx := raw & versymIndexMask
		hidden := raw&versymHidden != 0
		if idx == versymLocal || idx == versymGlobal {
			continue
		}
		if v, ok := defs[idx]; ok {
			result[uint16(i)] = Version{Name: v, IsDefault: !hidden}
			continue
		}
		if v, ok := needs[idx]; ok {
			result[uint16(i)] = Version{Name: v, IsDefault: !hidden}
		}
	}
	return result
}

// decodeVerdef walks .gnu.version_d, mapping each definition's
// vd_ndx to its first (vda_name) auxiliary name.
func (f *File) decodeVerdef(order binary.ByteOrder) map[uint16]string {
	out := map[uint16]string{}
	sec := f.ef.Section(".gnu.version_d")
	if sec == nil {
		return out
	}
	data, err := sec.Data()
	if err != nil {
		return out
	}
	off := 0
	for off+20 <= len(data) {
		vdVersion := order.Uint16(data[off:])
		_ = vdVersion
		vdNdx := order.Uint16(data[off+4:])
		vdAux := order.Uint32(data[off+12:])
		vdNext := order.Uint32(data[off+16:])

		auxOff := off + int(vdAux)
		if auxOff+8 <= len(data) {
			vdaName := order.Uint32(data[auxOff:])
			out[vdNdx] = cstringAt(data, int(vdaName), f.ef)
		}
		if vdNext == 0 {
			break
		}
		off += int(vdNext)
	}
	return out
}

// decodeVerneed walks .gnu.version_r, mapping each required version's
// vna_other index to its vna_name.
func (f *File) decodeVerneed(order binary.ByteOrder) map[uint16]string {
	out := map[uint16]string{}
	sec := f.ef.Section(".gnu.version_r")
	if sec == nil {
		return out
	}
	data, err := sec.Data()
	if err != nil {
		return out
	}
	off := 0
	for off+16 <= len(data) {
		vnAux := order.Uint32(data[off+8:])
		vnNext := order.Uint32(data[off+12:])

		auxOff := off + int(vnAux)
		for auxOff+16 <= len(data) {
			vnaName := order.Uint32(data[auxOff+8:])
			vnaOther := order.Uint16(data[auxOff+6:])
			vnaNext := order.Uint32(data[auxOff+12:])
			out[vnaOther] = cstringAt(data, int(vnaName), f.ef)
			if vnaNext == 0 {
				break
			}
			auxOff += int(vnaNext)
		}
		if vnNext == 0 {
			break
		}
		off += int(vnNext)
	}
	return out
}

// cstringAt reads a NUL-terminated string at offset strOff within the
// dynamic string table (.dynstr), since verdef/verneed name offsets are
// relative to that table, not to the containing section.
func cstringAt(_ []byte, strOff int, ef *stdelf.File) string {
	dynstr := ef.Section(".dynstr")
	if dynstr == nil {
		return ""
	}
	data, err := dynstr.Data()
	if err != nil || strOff < 0 || strOff >= len(data) {
		return ""
	}
	end := strOff
	for end < len(data) && data[end] != 0 {
		end++
	}
	return string(data[strOff:end])
}
