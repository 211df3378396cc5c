// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package suppression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/woodard/libabigail-sub002/pkg/abilog"
)

// TestLoadTypeSuppression exercises scenario S2's suppression rule
// (spec.md 8): a class gaining a trailing data member is suppressed by
// has_data_member_inserted_at = end.
func TestLoadTypeSuppression(t *testing.T) {
	data := []byte(`
[suppress_type]
label = S2
name = S
has_data_member_inserted_at = end
`)
	set, err := Load(data, abilog.NewNop())
	require.NoError(t, err)
	require.Len(t, set.TypeRules, 1)

	desc := TypeDescriptor{
		Name:              "S",
		QualifiedName:     "S",
		SizeBits:          32, // class S { int a; } before the insertion
		MemberOffsetsBits: map[string]uint64{"a": 0},
		MemberSizeBits:    map[string]uint64{"a": 32},
		InsertedMembers:   []InsertedMember{{Name: "b", OffsetBits: 32}},
	}
	require.True(t, set.SuppressesType(BinaryContext{}, desc))

	// A member inserted in the middle, not at the end, must not match.
	desc.InsertedMembers = []InsertedMember{{Name: "b", OffsetBits: 16}}
	require.False(t, set.SuppressesType(BinaryContext{}, desc))
}

func TestLoadTypeSuppressionRangeList(t *testing.T) {
	data := []byte(`
[suppress_type]
label = ranges
name = T
has_data_members_inserted_between = {{offset_of(a), offset_after(a)}, {64, end}}
`)
	set, err := Load(data, abilog.NewNop())
	require.NoError(t, err)
	require.Len(t, set.TypeRules, 1)
	require.Len(t, set.TypeRules[0].InsertRanges, 2)
}

func TestFunctionSuppressionChangeKindAndParams(t *testing.T) {
	data := []byte(`
[suppress_function]
label = fn
name = f
change_kind = function-subtype-change
parameter = 0 int
`)
	set, err := Load(data, abilog.NewNop())
	require.NoError(t, err)
	require.Len(t, set.FunctionRules, 1)

	desc := FunctionDescriptor{
		Name:       "f",
		Parameters: []string{"int"},
		ChangeKind: ChangeKindFunctionSubtypeChange,
	}
	require.True(t, set.SuppressesFunction(BinaryContext{}, desc))

	desc.ChangeKind = ChangeKindAddedFunction
	require.False(t, set.SuppressesFunction(BinaryContext{}, desc))

	desc.ChangeKind = ChangeKindFunctionSubtypeChange
	desc.Parameters = []string{"long"}
	require.False(t, set.SuppressesFunction(BinaryContext{}, desc))
}

// TestAliasTransparency exercises spec.md 8 invariant 4: with
// allow_other_aliases = false, a name-regexp rule only matches a symbol
// if every one of its aliases also matches the regexp.
func TestAliasTransparency(t *testing.T) {
	data := []byte(`
[suppress_function]
label = aliases
symbol_name_regexp = ^f$
`)
	set, err := Load(data, abilog.NewNop())
	require.NoError(t, err)

	desc := FunctionDescriptor{SymbolName: "f", AliasNames: []string{"f", "g"}}
	require.False(t, set.SuppressesFunction(BinaryContext{}, desc))

	desc.AliasNames = []string{"f"}
	require.True(t, set.SuppressesFunction(BinaryContext{}, desc))

	set.FunctionRules[0].AllowOtherAliases = true
	desc.AliasNames = []string{"f", "g"}
	require.True(t, set.SuppressesFunction(BinaryContext{}, desc))
}

func TestMalformedRuleDropped(t *testing.T) {
	data := []byte(`
[suppress_type]
label = bad
name_regexp = (unterminated
`)
	set, err := Load(data, abilog.NewNop())
	require.NoError(t, err)
	require.Empty(t, set.TypeRules)
}

func TestFileSuppression(t *testing.T) {
	data := []byte(`
[suppress_file]
label = skip
file_name_regexp = \.so\.1$
`)
	set, err := Load(data, abilog.NewNop())
	require.NoError(t, err)
	require.True(t, set.SuppressesFile(BinaryContext{FileName: "libfoo.so.1"}))
	require.False(t, set.SuppressesFile(BinaryContext{FileName: "libfoo.so.2"}))
}
