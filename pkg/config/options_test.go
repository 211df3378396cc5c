// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/woodard/libabigail-sub002/pkg/diff"
)

func TestNewReadOptionsDefaultsStrict(t *testing.T) {
	ro := NewReadOptions()
	assert.False(t, ro.AllowMissingDebugInfo)
	assert.False(t, ro.AllowMissingAltDebugInfo)
}

func TestNewReadOptionsApplied(t *testing.T) {
	ro := NewReadOptions(WithAllowMissingDebugInfo(true), WithAllowMissingAltDebugInfo(true))
	assert.True(t, ro.AllowMissingDebugInfo)
	assert.True(t, ro.AllowMissingAltDebugInfo)
}

func TestNewDiffOptionsDefaultShowsAffectedLocations(t *testing.T) {
	do := NewDiffOptions()
	assert.True(t, do.ShowAffectedLocations)
	assert.False(t, do.LeafMode)
	assert.Empty(t, do.SuppressionPaths)
	assert.Equal(t, diff.Category(0), do.AllowedCategories)
}

func TestNewDiffOptionsApplied(t *testing.T) {
	do := NewDiffOptions(
		WithShowAffectedLocations(false),
		WithLeafMode(true),
		WithAllowedCategories(diff.CategoryABIIncompatible),
		WithSuppressionPaths("a.ini", "b.ini"),
	)
	assert.False(t, do.ShowAffectedLocations)
	assert.True(t, do.LeafMode)
	assert.Equal(t, diff.CategoryABIIncompatible, do.AllowedCategories)
	assert.Equal(t, []string{"a.ini", "b.ini"}, do.SuppressionPaths)
}
