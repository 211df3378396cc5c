// Unless explicitly stated otherwise all files in this repository are licensed
// under the Apache License Version 2.0.
// This product is an independent reimplementation inspired by libabigail.
// Copyright 2026-present the libabigail-go authors.

// Package abilog provides the leveled logger used across the core: DWARF
// reading, suppression parsing, and diffing all log through a Logger
// rather than importing zap directly.
package abilog

import "go.uber.org/zap"

// Logger is the narrow logging surface the core depends on. It is
// satisfied by *zapLogger (the default) and by NewNop's no-op
// implementation, which tests use to assert on zero log side effects.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type zapLogger struct {
	sugar *zap.SugaredLogger
}

// New builds a Logger backed by a production zap configuration.
func New() Logger {
	l, err := zap.NewProduction()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.Sugar()}
}

// NewDevelopment builds a Logger backed by a human-readable development
// zap configuration, used by cmd/abigo.
func NewDevelopment() Logger {
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	return &zapLogger{sugar: l.Sugar()}
}

func (z *zapLogger) Debugf(format string, args ...any) { z.sugar.Debugf(format, args...) }
func (z *zapLogger) Infof(format string, args ...any)  { z.sugar.Infof(format, args...) }
func (z *zapLogger) Warnf(format string, args ...any)  { z.sugar.Warnf(format, args...) }
func (z *zapLogger) Errorf(format string, args ...any) { z.sugar.Errorf(format, args...) }

type nopLogger struct{}

// NewNop returns a Logger that discards everything. Core packages default
// to this when constructed without an explicit logger, so library callers
// never see unsolicited output on stderr.
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debugf(string, ...any) {}
func (nopLogger) Infof(string, ...any)  {}
func (nopLogger) Warnf(string, ...any)  {}
func (nopLogger) Errorf(string, ...any) {}
