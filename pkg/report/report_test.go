// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/woodard/libabigail-sub002/pkg/diff"
	"github.com/woodard/libabigail-sub002/pkg/elf"
	"github.com/woodard/libabigail-sub002/pkg/ir"
)

func buildSimpleCorpusDiff(t *testing.T) (*ir.Environment, *diff.CorpusDiff) {
	t.Helper()
	env := ir.NewEnvironment()
	intT := env.NewTypeDecl("int", 32, 32, ir.DieOrigin{})
	charT := env.NewTypeDecl("char", 8, 8, ir.DieOrigin{})
	voidT := env.VoidType()

	ftA := env.NewFunctionType(voidT, []ir.FunctionParam{{Type: intT}}, 64, ir.DieOrigin{})
	ftB := env.NewFunctionType(voidT, []ir.FunctionParam{{Type: charT}}, 64, ir.DieOrigin{})
	fa := env.NewFunctionDecl("frobnicate", ftA, ir.NilDeclHandle, ir.SourceLocation{File: "frob.c", Line: 10, Valid: true}, false, ir.NilTypeHandle)
	fb := env.NewFunctionDecl("frobnicate", ftB, ir.NilDeclHandle, ir.SourceLocation{File: "frob.c", Line: 10, Valid: true}, false, ir.NilTypeHandle)
	env.SetDeclQualifiedName(fa, "frobnicate")
	env.SetDeclQualifiedName(fb, "frobnicate")
	env.BindSymbol(fa, &elf.Symbol{Name: "frobnicate", IsMain: true})
	env.BindSymbol(fb, &elf.Symbol{Name: "frobnicate", IsMain: true})

	a := ir.NewCorpus("a.so")
	a.ExportedFunctions[ir.SymbolIdentity{Name: "frobnicate"}] = fa
	b := ir.NewCorpus("b.so")
	b.ExportedFunctions[ir.SymbolIdentity{Name: "frobnicate"}] = fb

	return env, diff.DiffCorpora(env, a, b)
}

func TestReportDefaultModeShowsSummaryAndDetail(t *testing.T) {
	env, cd := buildSimpleCorpusDiff(t)
	var buf bytes.Buffer
	err := Report(&buf, env, cd, DefaultOptions())
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Functions changes summary: 0 Removed, 1 Changed, 0 Added")
	assert.Contains(t, out, "frobnicate")
	assert.True(t, strings.Contains(out, "parameter") || strings.Contains(out, "type kind changed"))
}

func TestReportEmptyDiffIsJustSummary(t *testing.T) {
	env := ir.NewEnvironment()
	voidT := env.VoidType()
	fn := env.NewFunctionDecl("stable", env.NewFunctionType(voidT, nil, 64, ir.DieOrigin{}), ir.NilDeclHandle, ir.SourceLocation{}, false, ir.NilTypeHandle)
	c := ir.NewCorpus("a.so")
	c.ExportedFunctions[ir.SymbolIdentity{Name: "stable"}] = fn

	cd := diff.DiffCorpora(env, c, c)
	var buf bytes.Buffer
	require.NoError(t, Report(&buf, env, cd, DefaultOptions()))

	out := buf.String()
	assert.Contains(t, out, "Functions changes summary: 0 Removed, 0 Changed, 0 Added")
	assert.NotContains(t, out, "stable")
}
