// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

package suppression

import (
	"regexp"
	"sync"
)

// lazyRegexp defers POSIX-extended compilation of a suppression pattern
// until first use, per Design Notes (spec.md 9): "lazy field with
// interior mutability" in place of the source's mutable-on-first-match
// regex member. A suppression file may define hundreds of rules for a
// single diff run that only exercises a handful of types; compiling
// every pattern eagerly would be wasted work on the common path.
type lazyRegexp struct {
	raw  string
	once sync.Once
	re   *regexp.Regexp
	err  error
}

func newLazyRegexp(raw string) *lazyRegexp {
	return &lazyRegexp{raw: raw}
}

func (l *lazyRegexp) compile() {
	l.once.Do(func() {
		l.re, l.err = regexp.CompilePOSIX(l.raw)
	})
}

// MatchString reports whether s matches the pattern. A pattern that
// fails to compile matches nothing, rather than panicking the evaluation
// of unrelated rules; the load path already logged and would have
// dropped a rule whose *mandatory* pattern failed to compile, so this
// only guards secondary/defensive use.
func (l *lazyRegexp) MatchString(s string) bool {
	if l == nil {
		return true
	}
	l.compile()
	if l.err != nil {
		return false
	}
	return l.re.MatchString(s)
}

// Valid reports whether the pattern compiles, forcing compilation now.
// Used at load time so a malformed regex drops its rule immediately
// (spec.md 7 "malformed suppression... offending rule is dropped").
func (l *lazyRegexp) Valid() bool {
	l.compile()
	return l.err == nil
}
