// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Package report implements component C8: it walks a corpus_diff and
// writes a human-readable report, in either default (everything not
// filtered out) or leaf (only locally-changed nodes, aggregated
// otherwise) mode, per spec.md 4.8.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/woodard/libabigail-sub002/pkg/diff"
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

// Mode selects how much of the diff tree is printed.
type Mode int

// Recognized modes.
const (
	// ModeDefault prints every node not filtered out by AllowedCategories.
	ModeDefault Mode = iota
	// ModeLeaf prints only nodes carrying a local change, omitting the
	// structural path down to them; everything else is folded into the
	// summary counts.
	ModeLeaf
)

// Options controls Report's output, per spec.md 4.7's "caller-supplied
// context masks categories" and 4.8's two report modes.
type Options struct {
	Mode Mode

	// ShowAffectedLocations prints the function/variable's source
	// location line when true.
	ShowAffectedLocations bool

	// AllowedCategories, when non-zero, restricts printed local changes
	// to ones carrying at least one of these category bits. Zero means
	// no restriction beyond the always-applied CategorySuppressed filter.
	AllowedCategories diff.Category
}

// WithShowAffectedLocations and WithAllowedCategories follow
// pkg/config's functional-option convention for callers that build
// Options incrementally; Report itself just takes a value.
func DefaultOptions() Options { return Options{Mode: ModeDefault, ShowAffectedLocations: true} }

// Report writes cd's report to w.
func Report(w io.Writer, env *ir.Environment, cd *diff.CorpusDiff, opts Options) error {
	r := &reporter{w: w, env: env, opts: opts}
	r.printf("Functions changes summary: %d Removed, %d Changed, %d Added\n",
		cd.Stats.FunctionsRemoved, cd.Stats.FunctionsChanged, cd.Stats.FunctionsAdded)
	r.printf("Variables changes summary: %d Removed, %d Changed, %d Added\n",
		cd.Stats.VariablesRemoved, cd.Stats.VariablesChanged, cd.Stats.VariablesAdded)
	r.printf("Function symbols not referenced by debug info changes summary: %d Removed, %d Added\n",
		len(cd.UnreferencedSymbolChanges.DeletedFunctions), len(cd.UnreferencedSymbolChanges.AddedFunctions))
	r.printf("Variable symbols not referenced by debug info changes summary: %d Removed, %d Added\n",
		len(cd.UnreferencedSymbolChanges.DeletedVariables), len(cd.UnreferencedSymbolChanges.AddedVariables))
	r.printf("\n")

	r.reportRemovedFunctions(cd)
	r.reportChangedFunctions(cd)
	r.reportAddedFunctions(cd)
	r.reportRemovedVariables(cd)
	r.reportChangedVariables(cd)
	r.reportAddedVariables(cd)
	r.reportUnreferencedSymbols(cd)
	return r.err
}

type reporter struct {
	w    io.Writer
	env  *ir.Environment
	opts Options
	err  error
}

func (r *reporter) printf(format string, args ...any) {
	if r.err != nil {
		return
	}
	_, err := fmt.Fprintf(r.w, format, args...)
	if err != nil {
		r.err = err
	}
}

func indent(depth int) string { return strings.Repeat("  ", depth) }

func (r *reporter) reportRemovedFunctions(cd *diff.CorpusDiff) {
	names := sortedCopy(cd.DeletedFunctions)
	for _, name := range names {
		r.printf("  [D] '%s' {%s}\n", name, name)
	}
}

func (r *reporter) reportAddedFunctions(cd *diff.CorpusDiff) {
	names := sortedCopy(cd.AddedFunctions)
	for _, name := range names {
		r.printf("  [A] '%s' {%s}\n", name, name)
	}
}

func (r *reporter) reportRemovedVariables(cd *diff.CorpusDiff) {
	for _, name := range sortedCopy(cd.DeletedVariables) {
		r.printf("  [D] '%s'\n", name)
	}
}

func (r *reporter) reportAddedVariables(cd *diff.CorpusDiff) {
	for _, name := range sortedCopy(cd.AddedVariables) {
		r.printf("  [A] '%s'\n", name)
	}
}

func (r *reporter) reportChangedFunctions(cd *diff.CorpusDiff) {
	for _, n := range byLabel(cd.ChangedFunctions) {
		if !r.shouldShow(n) {
			continue
		}
		r.printf("  [C] '%s' -> '%s'\n", n.Label, n.Label)
		r.reportDeclHeader(n, 2)
		r.reportNode(n, 2)
	}
}

func (r *reporter) reportChangedVariables(cd *diff.CorpusDiff) {
	for _, n := range byLabel(cd.ChangedVariables) {
		if !r.shouldShow(n) {
			continue
		}
		r.printf("  [C] '%s' -> '%s'\n", n.Label, n.Label)
		r.reportDeclHeader(n, 2)
		r.reportNode(n, 2)
	}
}

func (r *reporter) reportDeclHeader(n *diff.Node, depth int) {
	if !r.opts.ShowAffectedLocations || !n.SecondDecl.Valid() {
		return
	}
	qn := r.env.DeclQualifiedName(n.SecondDecl)
	if qn == "" {
		qn = r.env.DeclName(n.SecondDecl)
	}
	loc := r.env.DeclLocation(n.SecondDecl)
	if loc.Valid {
		r.printf("%sname: '%s', at %s:%d\n", indent(depth), qn, loc.File, loc.Line)
	}
	if ln := r.env.DeclLinkageName(n.SecondDecl); ln != "" {
		r.printf("%slinkage name: '%s'\n", indent(depth), ln)
	}
}

func (r *reporter) reportUnreferencedSymbols(cd *diff.CorpusDiff) {
	u := cd.UnreferencedSymbolChanges
	for _, name := range sortedCopy(u.DeletedFunctions) {
		r.printf("  [D] function symbol '%s'\n", name)
	}
	for _, name := range sortedCopy(u.AddedFunctions) {
		r.printf("  [A] function symbol '%s'\n", name)
	}
	for _, name := range sortedCopy(u.DeletedVariables) {
		r.printf("  [D] variable symbol '%s'\n", name)
	}
	for _, name := range sortedCopy(u.AddedVariables) {
		r.printf("  [A] variable symbol '%s'\n", name)
	}
}

// shouldShow reports whether n survives category filtering: suppressed
// changes never show, and an explicit AllowedCategories mask (when set)
// requires at least one overlapping bit somewhere in n's subtree.
func (r *reporter) shouldShow(n *diff.Node) bool {
	survives := false
	n.Walk(func(c *diff.Node) bool {
		if !c.Local || c.Detail == "" || c.Categories.Has(diff.CategorySuppressed) {
			return true
		}
		if r.opts.AllowedCategories == 0 || c.Categories&r.opts.AllowedCategories != 0 {
			survives = true
		}
		return true
	})
	return survives
}

// reportNode passes each of n's children to reportOne, which prints the
// child's local change (if any, and not filtered) and then recurses into
// its children. In leaf mode, a node with no local change of its own is
// not printed, but its children are still visited so their local changes
// surface at their own depth.
func (r *reporter) reportNode(n *diff.Node, depth int) {
	for _, c := range n.Children {
		r.reportOne(c, depth)
	}
}

func (r *reporter) reportOne(n *diff.Node, depth int) {
	if n.Categories.Has(diff.CategorySuppressed) {
		return
	}
	print := n.Local && n.Detail != "" && (r.opts.AllowedCategories == 0 || n.Categories&r.opts.AllowedCategories != 0)
	if r.opts.Mode == ModeDefault {
		print = print || !n.IsEmpty()
	}
	if print && n.Local {
		label := n.Label
		if label == "" {
			label = n.Kind.String()
		}
		abi := ""
		if n.Categories.Has(diff.CategoryABIIncompatible) {
			abi = " (ABI incompatible)"
		}
		r.printf("%s%s: %s%s\n", indent(depth), label, n.Detail, abi)
	}
	r.reportNode(n, depth+1)
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

func byLabel(nodes []*diff.Node) []*diff.Node {
	out := append([]*diff.Node(nil), nodes...)
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}
