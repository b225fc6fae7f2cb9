//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package handler implements the scope-aware, priority-ordered, multi-layer
// behavior registry (spec.md §4.2 "Handler & Dispatch"). It deliberately
// depends on nothing above identity/entity/ns: the concrete domain state a
// handler closure needs travels through the stdlib context.Context it is
// given, the same way the teacher's graph.NodeFunc carries execution state
// through a plain context rather than a concrete struct, so that handler
// does not need to import the package that defines that state and create a
// cycle (see DESIGN.md, section "domain").
package handler

import (
	"context"
	"sync/atomic"

	"github.com/derekmerck/storytangl-sub001/criteria"
	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/ns"
)

// Type names the binding pattern of a Handler (spec.md §4.2). Go has no
// open class hierarchy to dispatch methods against, so each pattern is
// just a tag the invoker switches on to decide which entity.Entity to pass
// as the handler's "self" at call time.
type Type int

const (
	// Static is a free function: no receiver is substituted.
	Static Type = iota
	// InstanceOnCaller receives the caller itself as a bound-method stand-in.
	InstanceOnCaller
	// ClassOnCaller receives the caller's Kind rather than the instance; in
	// this Go model the distinction from InstanceOnCaller is bookkeeping
	// only (the caller entity is still what travels through the context).
	ClassOnCaller
	// InstanceOnOwner receives a separately registered Owner as "self".
	InstanceOnOwner
	// ClassOnOwner is the classmethod-on-owner analogue of InstanceOnOwner.
	ClassOnOwner
)

// typeRank implements sort key 6, "handler_type (static < class < instance)".
func (t Type) typeRank() int {
	switch t {
	case Static:
		return 0
	case ClassOnCaller, ClassOnOwner:
		return 1
	default:
		return 2
	}
}

// ownerBound reports whether Type substitutes a registered Owner for the
// dispatch-time caller.
func (t Type) ownerBound() bool {
	return t == InstanceOnOwner || t == ClassOnOwner
}

// Priority is the coarse FIRST..LAST ordering slot a handler registers
// into (spec.md §4.2); lower values run earlier.
type Priority int

const (
	FIRST Priority = 1
	EARLY Priority = 25
	NORMAL Priority = 50
	LATER Priority = 75
	LAST  Priority = 100
)

// Layer is the discovery precedence a handler was registered at (spec.md
// §4.2); lower layers are discovered first, INLINE included (it sorts
// last, like any other layer value).
type Layer int

const (
	GLOBAL Layer = iota
	APPLICATION
	AUTHOR
	LOCAL
	INLINE
)

// Selector narrows which callers a Handler activates for. A zero Selector
// matches any caller for the handler's Task.
type Selector struct {
	// CallerKind restricts activation to callers of this Kind; empty
	// matches any Kind (the "class" half of caller_cls).
	CallerKind identity.Kind
	// Identifier, if set, requires an exact caller label/uid match and
	// alone determines specificity=100 regardless of the other fields.
	Identifier string
	// Tags requires every listed tag to be present on the caller.
	Tags []string
	// Attrs requires named caller fields to equal the given values.
	Attrs map[string]any
	// Predicate is an arbitrary escape-hatch match over the caller.
	Predicate func(caller entity.Entity) bool
}

// matches reports whether caller satisfies every configured constraint.
func (s Selector) matches(caller entity.Entity) bool {
	if s.CallerKind != "" && (caller == nil || caller.GetKind() != s.CallerKind) {
		return false
	}
	if s.Identifier != "" {
		if caller == nil {
			return false
		}
		if s.Identifier != caller.GetLabel() && s.Identifier != caller.GetUID().String() {
			return false
		}
	}
	if len(s.Tags) > 0 && (caller == nil || !caller.GetTags().HasAll(s.Tags...)) {
		return false
	}
	if len(s.Attrs) > 0 && !criteria.MatchAttrs(caller, s.Attrs) {
		return false
	}
	if s.Predicate != nil && !s.Predicate(caller) {
		return false
	}
	return true
}

// specificity implements sort key 3: handlers with an identifier selector
// count as 100; otherwise specificity is the number of selection criteria
// configured (CallerKind, Tags, Attrs, Predicate each count once).
func (s Selector) specificity() int {
	if s.Identifier != "" {
		return 100
	}
	n := 0
	if s.CallerKind != "" {
		n++
	}
	if len(s.Tags) > 0 {
		n++
	}
	if len(s.Attrs) > 0 {
		n++
	}
	if s.Predicate != nil {
		n++
	}
	return n
}

// mroDistance implements sort key 5 over this Go model's flat Kind tags:
// an exact CallerKind match is "nearer" (0) than a wildcard selector (1).
// Collaborators with a real variant lattice may layer a finer distance on
// top by preferring Attrs/Predicate specificity, which sort_key already
// rewards via specificity.
func (s Selector) mroDistance() int {
	if s.CallerKind != "" {
		return 0
	}
	return 1
}

// Func is the callable a Handler wraps. ctx carries the ambient domain
// context (via the domain package's WithContext/FromContext helpers);
// caller is whichever entity.Entity this dispatch bound as "self" for the
// handler's Type; n is the caller's namespace at dispatch time.
type Func func(ctx context.Context, caller entity.Entity, n *ns.NS, args ...any) (any, error)

// Handler wraps a callable with the metadata spec.md §4.2 requires for
// selection and ordering.
type Handler struct {
	ID       identity.UUID
	Type     Type
	Owner    entity.Entity // set for InstanceOnOwner/ClassOnOwner
	Task     string
	Priority Priority
	Layer    Layer
	Selector Selector
	Seq      int64
	Fn       Func
}

// seqCounter is the process-wide monotonic registration counter backing
// Handler.Seq (sort key 7, "earlier registration wins on tie").
var seqCounter int64

func nextSeq() int64 { return atomic.AddInt64(&seqCounter, 1) }

// Invoke calls the handler's function, substituting Owner for caller when
// Type is one of the owner-bound patterns (spec.md's Design Note
// "owner-bound handlers carry a strong reference to the owner; caller-
// bound handlers receive the caller at dispatch time").
func (h *Handler) Invoke(ctx context.Context, caller entity.Entity, n *ns.NS, args ...any) (any, error) {
	self := caller
	if h.Type.ownerBound() {
		self = h.Owner
	}
	return h.Fn(ctx, self, n, args...)
}

// CallReceipt is the result of one dispatched Handler invocation (spec.md
// §4.2, "wraps the return in a CallReceipt").
type CallReceipt struct {
	HandlerID identity.UUID
	Task      string
	Result    any
	Err       error
}
