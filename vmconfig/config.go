//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package vmconfig holds the tunables shared by the vm and ledger
// packages (snapshot cadence, call-stack depth, log level), configured
// through the functional-options idiom the teacher uses throughout
// server/agui (options.go) rather than a bare exported struct callers
// fill in by hand.
package vmconfig

import "github.com/derekmerck/storytangl-sub001/vmlog"

// Config holds the narrative VM's runtime tunables (spec.md §2 "Config").
type Config struct {
	// SnapshotCadence is the step interval at which MaybePushSnapshot
	// writes a Snapshot record (spec.md §4.7).
	SnapshotCadence int
	// MaxCallStackDepth bounds Frame.FollowEdge's call-edge stack (spec.md
	// §4.4 "Overflow protection").
	MaxCallStackDepth int
	// LogLevel sets vmlog's atomic level at startup.
	LogLevel string
}

// Option configures a Config.
type Option func(*Config)

// New builds a Config from defaults overridden by opts.
func New(opts ...Option) *Config {
	c := &Config{
		SnapshotCadence:   20,
		MaxCallStackDepth: 50,
		LogLevel:          vmlog.LevelInfo,
	}
	for _, o := range opts {
		o(c)
	}
	vmlog.SetLevel(c.LogLevel)
	return c
}

// WithSnapshotCadence overrides the default snapshot cadence.
func WithSnapshotCadence(steps int) Option {
	return func(c *Config) { c.SnapshotCadence = steps }
}

// WithMaxCallStackDepth overrides the default call-stack depth limit.
func WithMaxCallStackDepth(depth int) Option {
	return func(c *Config) { c.MaxCallStackDepth = depth }
}

// WithLogLevel overrides the default log level (vmlog.Level* constants).
func WithLogLevel(level string) Option {
	return func(c *Config) { c.LogLevel = level }
}
