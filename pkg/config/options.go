// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Package config shapes the in-process option structs the core's two
// entry points (reading a corpus, diffing two corpora) accept, built with
// the general Go functional-options convention. There is no file-based
// configuration in this package's scope: a CLI driver built on top of the
// core owns loading option values from flags or a config file.
package config

import "github.com/woodard/libabigail-sub002/pkg/diff"

// ReadOptions shapes how a corpus is built from an ELF file.
type ReadOptions struct {
	// AllowMissingDebugInfo lets ReadCorpus succeed on a binary with no
	// .debug_info section instead of returning abierrors.ErrNoDebugInfo,
	// producing a corpus with only its unreferenced-symbol lists
	// populated (spec.md 4.5's NO_DEBUG_INFO status is non-fatal by
	// itself; this option controls whether the caller treats it that way).
	AllowMissingDebugInfo bool

	// AllowMissingAltDebugInfo tolerates a .gnu_debugaltlink pointing at
	// a file that cannot be opened, reading as much as the main debug
	// info alone permits.
	AllowMissingAltDebugInfo bool
}

// ReadOption mutates a ReadOptions being built.
type ReadOption func(*ReadOptions)

// WithAllowMissingDebugInfo sets ReadOptions.AllowMissingDebugInfo.
func WithAllowMissingDebugInfo(allow bool) ReadOption {
	return func(o *ReadOptions) { o.AllowMissingDebugInfo = allow }
}

// WithAllowMissingAltDebugInfo sets ReadOptions.AllowMissingAltDebugInfo.
func WithAllowMissingAltDebugInfo(allow bool) ReadOption {
	return func(o *ReadOptions) { o.AllowMissingAltDebugInfo = allow }
}

// NewReadOptions builds a ReadOptions from zero or more ReadOption
// functions, starting from zero values, under which neither missing debug
// info nor missing alternate debug info is allowed.
func NewReadOptions(opts ...ReadOption) ReadOptions {
	var ro ReadOptions
	for _, opt := range opts {
		opt(&ro)
	}
	return ro
}

// DiffOptions shapes how a corpus_diff is computed and reported.
type DiffOptions struct {
	// ShowAffectedLocations prints a function/variable's source location
	// alongside its name in the report (spec.md 4.8).
	ShowAffectedLocations bool

	// AllowedCategories restricts which diff.Category bits are allowed to
	// surface in the report; zero means no restriction. Leaf mode and
	// this mask compose: leaf mode narrows to locally-changed nodes,
	// the mask further narrows which of those are shown.
	AllowedCategories diff.Category

	// LeafMode selects report.ModeLeaf over the default full-tree mode.
	LeafMode bool

	// SuppressionPaths lists suppression-rule files to load and apply
	// before reporting, in order.
	SuppressionPaths []string
}

// DiffOption mutates a DiffOptions being built.
type DiffOption func(*DiffOptions)

// WithShowAffectedLocations sets DiffOptions.ShowAffectedLocations.
func WithShowAffectedLocations(show bool) DiffOption {
	return func(o *DiffOptions) { o.ShowAffectedLocations = show }
}

// WithAllowedCategories sets DiffOptions.AllowedCategories.
func WithAllowedCategories(categories diff.Category) DiffOption {
	return func(o *DiffOptions) { o.AllowedCategories = categories }
}

// WithLeafMode sets DiffOptions.LeafMode.
func WithLeafMode(leaf bool) DiffOption {
	return func(o *DiffOptions) { o.LeafMode = leaf }
}

// WithSuppressionPaths sets DiffOptions.SuppressionPaths.
func WithSuppressionPaths(paths ...string) DiffOption {
	return func(o *DiffOptions) { o.SuppressionPaths = paths }
}

// NewDiffOptions builds a DiffOptions from zero or more DiffOption
// functions. ShowAffectedLocations defaults on, matching the reporter's
// own DefaultOptions().
func NewDiffOptions(opts ...DiffOption) DiffOptions {
	do := DiffOptions{ShowAffectedLocations: true}
	for _, opt := range opts {
		opt(&do)
	}
	return do
}
