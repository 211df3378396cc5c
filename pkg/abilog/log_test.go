// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package abilog

import "testing"

// TestConstructorsSatisfyLogger exercises every exported constructor
// against the full Logger interface, catching a signature drift that
// would otherwise only surface at the call sites in pkg/dwarfread or
// pkg/diff.
func TestConstructorsSatisfyLogger(t *testing.T) {
	for name, l := range map[string]Logger{
		"New":            New(),
		"NewDevelopment": NewDevelopment(),
		"NewNop":         NewNop(),
	} {
		if l == nil {
			t.Fatalf("%s returned a nil Logger", name)
		}
		l.Debugf("debug %s", name)
		l.Infof("info %s", name)
		l.Warnf("warn %s", name)
		l.Errorf("error %s", name)
	}
}

func TestNopLoggerDiscardsSilently(t *testing.T) {
	l := NewNop()
	// No assertion beyond "does not panic": nopLogger's whole contract is
	// silence.
	l.Errorf("should never reach stderr: %d", 1)
}
