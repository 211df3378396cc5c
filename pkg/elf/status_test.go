// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package elf

import "testing"

func TestStatusStringOK(t *testing.T) {
	if got := StatusOK.String(); got != "OK" {
		t.Fatalf("StatusOK.String() = %q, want %q", got, "OK")
	}
}

func TestStatusStringSingleBit(t *testing.T) {
	if got := StatusNoSymbols.String(); got != "NO_SYMBOLS_FOUND" {
		t.Fatalf("StatusNoSymbols.String() = %q, want %q", got, "NO_SYMBOLS_FOUND")
	}
}

func TestStatusStringCombinesBits(t *testing.T) {
	s := StatusNoDebugInfo | StatusNoAltDebugInfo
	want := "DEBUG_INFO_NOT_FOUND|ALT_DEBUG_INFO_NOT_FOUND"
	if got := s.String(); got != want {
		t.Fatalf("combined Status.String() = %q, want %q", got, want)
	}
}

func TestStatusStringAllBits(t *testing.T) {
	s := StatusNoSymbols | StatusNoDebugInfo | StatusNoAltDebugInfo | StatusNoSuchFile | StatusUnknown
	want := "NO_SYMBOLS_FOUND|DEBUG_INFO_NOT_FOUND|ALT_DEBUG_INFO_NOT_FOUND|NO_SUCH_FILE|UNKNOWN"
	if got := s.String(); got != want {
		t.Fatalf("all-bits Status.String() = %q, want %q", got, want)
	}
}
