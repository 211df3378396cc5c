// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package abierrors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesSentinelIdentity(t *testing.T) {
	err := NewNoSuchFile("/tmp/missing.so")
	assert.True(t, IsNoSuchFile(err))
	assert.False(t, IsNoDebugInfo(err))
	assert.Contains(t, err.Error(), "/tmp/missing.so")
}

func TestWrapNilIsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
}

func TestWrapfPreservesSentinelIdentity(t *testing.T) {
	err := Wrapf(ErrMalformedDWARF, "offset %#x", 0x10)
	assert.True(t, Is(err, ErrMalformedDWARF))
	assert.Contains(t, err.Error(), "0x10")
}

func TestNewMalformedSuppressionMessage(t *testing.T) {
	err := NewMalformedSuppression("suppress_type", "missing name field")
	require.Error(t, err)
	assert.True(t, Is(err, ErrMalformedSuppression))
	assert.Contains(t, err.Error(), "suppress_type")
	assert.Contains(t, err.Error(), "missing name field")
}

func TestInvariantPassesWithoutPanic(t *testing.T) {
	assert.NotPanics(t, func() {
		Invariant(true, "unreachable")
	})
}

func TestInvariantPanicsWithWrappedSentinel(t *testing.T) {
	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok, "panic payload must be an error")
		assert.True(t, Is(err, ErrInvariant))
		assert.Contains(t, err.Error(), "DIE offset 0x42 has no parent")
	}()
	Invariant(false, "DIE offset %#x has no parent", 0x42)
}
