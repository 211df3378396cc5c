// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package dwarfexpr

import "testing"

func TestEvalLiteral(t *testing.T) {
	// DW_OP_lit5
	r := Eval([]byte{opLit0 + 5}, 8)
	if !r.IsConstant || r.Value != 5 || r.IsTLS {
		t.Fatalf("got %+v", r)
	}
}

func TestEvalConstuPlusUconst(t *testing.T) {
	// DW_OP_constu 10, DW_OP_plus_uconst 4 -> 14
	expr := []byte{opConstu, 10, opPlusUconst, 4}
	r := Eval(expr, 8)
	if !r.IsConstant || r.Value != 14 {
		t.Fatalf("got %+v", r)
	}
}

func TestEvalMemberOffsetExample(t *testing.T) {
	// DW_OP_plus_uconst 16 alone (common DW_AT_data_member_location form).
	expr := []byte{opPlusUconst, 16}
	r := Eval(expr, 8)
	if !r.IsConstant || r.Value != 16 {
		t.Fatalf("got %+v", r)
	}
}

func TestEvalFbregIsNonConstant(t *testing.T) {
	// DW_OP_fbreg -8 (SLEB128 for -8 is 0x78)
	expr := []byte{opFbreg, 0x78}
	r := Eval(expr, 8)
	if r.IsConstant {
		t.Fatalf("expected non-constant, got %+v", r)
	}
}

func TestEvalAddrTLSMarker(t *testing.T) {
	expr := []byte{opConstu, 0x10, opGNUPushTLSAddress}
	r := Eval(expr, 8)
	if !r.IsTLS {
		t.Fatalf("expected IsTLS, got %+v", r)
	}
	if r.IsConstant {
		t.Fatalf("TLS address should not be reported constant")
	}
}

func TestEvalArithmetic(t *testing.T) {
	// 3 4 DW_OP_mul DW_OP_lit2 DW_OP_minus -> 3*4-2 = 10
	expr := []byte{opLit0 + 3, opLit0 + 4, opMul, opLit0 + 2, opMinus}
	r := Eval(expr, 8)
	if !r.IsConstant || r.Value != 10 {
		t.Fatalf("got %+v", r)
	}
}

func TestUlebSlebRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 127, 128, 300, 1 << 20}
	for _, c := range cases {
		b := encodeUleb(c)
		v, n := uleb128(b)
		if v != c || n != len(b) {
			t.Errorf("uleb128 round trip failed for %d: got %d, n=%d", c, v, n)
		}
	}
}

// encodeUleb is a minimal encoder used only to exercise uleb128 in tests.
func encodeUleb(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			break
		}
	}
	return out
}
