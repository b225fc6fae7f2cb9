//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package vmerrors defines the error kinds raised by the narrative VM core,
// matching the error-handling design table of the specification: each kind
// is a sentinel that call sites wrap with github.com/pkg/errors so that a
// failure propagated up through several handler/phase layers still carries
// a stack trace to its origin.
package vmerrors

import "github.com/pkg/errors"

// Sentinel error kinds. Use errors.Is against these after unwrapping a
// wrapped error returned from the core packages.
var (
	// ErrInvalidCursor is raised when VALIDATE returns non-truthy for a
	// proposed cursor.
	ErrInvalidCursor = errors.New("invalid cursor")
	// ErrDanglingEdge is raised when follow_edge is called on an edge with
	// a missing endpoint.
	ErrDanglingEdge = errors.New("dangling edge")
	// ErrCycleDetected is raised when a subgraph membership change would
	// form a containment cycle.
	ErrCycleDetected = errors.New("cycle detected in subgraph membership")
	// ErrDuplicateIdentity is raised by Graph.Add when a uid is already
	// bound to a different item.
	ErrDuplicateIdentity = errors.New("duplicate identity")
	// ErrStateHashMismatch is raised by Patch.Apply against the wrong
	// baseline graph.
	ErrStateHashMismatch = errors.New("state hash mismatch")
	// ErrStackOverflow is raised when the call stack would exceed its
	// configured maximum depth.
	ErrStackOverflow = errors.New("call stack overflow")
	// ErrNotFound is raised by lookups that require a resolvable item.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousLabel is raised when a label lookup matches more than
	// one item and the caller did not ask for a tolerant search.
	ErrAmbiguousLabel = errors.New("ambiguous label")
	// ErrNoSnapshot is raised by recovery when the record stream has no
	// snapshot record to rebuild from.
	ErrNoSnapshot = errors.New("no snapshot found in record stream")
)

// Wrap annotates err with a message and stack trace, preserving the
// sentinel for errors.Is. Returns nil if err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, message)
}

// Wrapf is the formatted variant of Wrap.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return errors.Wrapf(err, format, args...)
}

// Is reports whether err matches target anywhere in its wrap chain.
func Is(err, target error) bool { return errors.Is(err, target) }
