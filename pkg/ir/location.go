// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package ir

// LocationManager is a translation unit's globally unique file/line/
// column table (spec.md 3). It exists so SourceLocation values can be
// compared cheaply while the underlying file path strings are stored
// once per TU rather than once per declaration.
type LocationManager struct {
	files []string
	index map[string]int
}

func newLocationManager() *LocationManager {
	return &LocationManager{index: map[string]int{}}
}

// Resolve returns a SourceLocation for (file, line, column), interning
// file into this TU's file table.
func (lm *LocationManager) Resolve(file string, line, column uint32) SourceLocation {
	if file == "" {
		return SourceLocation{}
	}
	if _, ok := lm.index[file]; !ok {
		lm.index[file] = len(lm.files)
		lm.files = append(lm.files, file)
	}
	return SourceLocation{File: file, Line: line, Column: column, Valid: true}
}

// Files returns every distinct file path this manager has seen, in
// first-seen order.
func (lm *LocationManager) Files() []string {
	return lm.files
}
