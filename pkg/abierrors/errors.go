// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Package abierrors defines the sentinel error taxonomy shared by every
// core package: ELF/DWARF reading, suppression parsing, and diffing.
package abierrors

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Sentinel errors. Callers compare against these with Is, never with
// equality, since a returned error is usually wrapped with context.
var (
	// ErrNoSuchFile is returned when the path given to a reader does not exist.
	ErrNoSuchFile = errors.New("no such file")
	// ErrNotELF is returned when the file is not a valid ELF object.
	ErrNotELF = errors.New("not an ELF file")
	// ErrNoSymbols is returned when neither .symtab nor .dynsym is present.
	ErrNoSymbols = errors.New("no symbol table found")
	// ErrNoDebugInfo is returned when no DWARF debug sections are present.
	ErrNoDebugInfo = errors.New("no debug info found")
	// ErrNoAltDebugInfo is returned when .gnu_debugaltlink points at a file
	// that could not be opened.
	ErrNoAltDebugInfo = errors.New("alternate debug info not found")
	// ErrMalformedDWARF is returned when DWARF data violates structural
	// expectations (truncated forms, dangling references, ...).
	ErrMalformedDWARF = errors.New("malformed DWARF data")
	// ErrMalformedSuppression is returned for an individual suppression
	// rule that could not be parsed; the caller drops the rule and
	// continues with the rest of the file.
	ErrMalformedSuppression = errors.New("malformed suppression specification")
	// ErrInvariant marks a violated internal invariant. It is only ever
	// surfaced through Invariant, which panics; packages outside
	// abierrors should not construct it directly.
	ErrInvariant = errors.New("internal invariant violation")
)

// Is reports whether err is, or wraps, sentinel.
func Is(err, sentinel error) bool {
	return errors.Is(err, sentinel)
}

// Wrap attaches msg as context to err without discarding its identity,
// so a later Is(result, ErrNoDebugInfo) still succeeds.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessage(err, msg)
}

// Wrapf is Wrap with a format string.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return pkgerrors.WithMessage(err, fmt.Sprintf(format, args...))
}

// NewNoSuchFile returns ErrNoSuchFile annotated with path.
func NewNoSuchFile(path string) error {
	return Wrapf(ErrNoSuchFile, "%s", path)
}

// NewMalformedSuppression returns ErrMalformedSuppression annotated with
// the offending section label and reason.
func NewMalformedSuppression(label, reason string) error {
	return Wrapf(ErrMalformedSuppression, "%s: %s", label, reason)
}

// IsNoSuchFile reports whether err wraps ErrNoSuchFile.
func IsNoSuchFile(err error) bool { return Is(err, ErrNoSuchFile) }

// IsNoDebugInfo reports whether err wraps ErrNoDebugInfo.
func IsNoDebugInfo(err error) bool { return Is(err, ErrNoDebugInfo) }

// IsNoSymbols reports whether err wraps ErrNoSymbols.
func IsNoSymbols(err error) bool { return Is(err, ErrNoSymbols) }

// invariantError wraps ErrInvariant with a formatted message, and is the
// panic payload raised by Invariant.
type invariantError struct {
	msg string
}

func (e *invariantError) Error() string { return e.msg }
func (e *invariantError) Unwrap() error { return ErrInvariant }

// Invariant panics with a wrapped ErrInvariant when cond is false. It is
// reserved for conditions the core treats as programmer errors: a DIE
// parent map inconsistent with a DIE offset known to exist, a canonical
// registry returning two handles for one structural key, and similar.
func Invariant(cond bool, format string, args ...any) {
	if cond {
		return
	}
	panic(&invariantError{msg: fmt.Sprintf(format, args...)})
}
