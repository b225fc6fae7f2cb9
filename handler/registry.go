//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package handler

import (
	"context"
	"sort"
	"sync"

	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/ns"
)

// Registry stores Handlers and selects/sorts/dispatches them for a task
// (spec.md §4.2 "HandlerRegistry").
type Registry struct {
	mu       sync.Mutex
	handlers []*Handler
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds h to the registry, assigning it a fresh identity and
// registration sequence if unset, and returns it for chaining (mirroring
// the teacher's NodeCallbacks.RegisterX builder idiom in graph/callbacks.go).
func (r *Registry) Register(h *Handler) *Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h.ID == identity.Nil {
		h.ID = identity.NewUUID()
	}
	h.Seq = nextSeq()
	r.handlers = append(r.handlers, h)
	return h
}

// candidate pairs a matching Handler with the origin distance of the
// registry it came from, the only sort input that is not a property of
// the Handler itself (sort key 4, spec.md §4.2).
type candidate struct {
	h              *Handler
	originDistance int
}

// FindAll returns every handler registered for task whose selector matches
// caller. The result carries no origin-distance annotation.
func (r *Registry) FindAll(caller entity.Entity, task string) []*Handler {
	return r.findAllWithCriteria(caller, task, nil)
}

// findAllWithCriteria additionally requires extra (if non-nil) to match,
// letting callers layer dispatch-time criteria (e.g. by tag) on top of a
// handler's own Selector.
func (r *Registry) findAllWithCriteria(caller entity.Entity, task string, extra func(*Handler) bool) []*Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Handler
	for _, h := range r.handlers {
		if h.Task != task {
			continue
		}
		if !h.Selector.matches(caller) {
			continue
		}
		if extra != nil && !extra(h) {
			continue
		}
		out = append(out, h)
	}
	return out
}

// sortCandidates orders candidates by the exact 7-key precedence of
// spec.md §4.2: layer, priority, specificity (descending), origin
// distance, MRO distance, handler_type rank, then registration seq.
func sortCandidates(cands []candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.h.Layer != b.h.Layer {
			return a.h.Layer < b.h.Layer
		}
		if a.h.Priority != b.h.Priority {
			return a.h.Priority < b.h.Priority
		}
		as, bs := a.h.Selector.specificity(), b.h.Selector.specificity()
		if as != bs {
			return as > bs
		}
		if a.originDistance != b.originDistance {
			return a.originDistance < b.originDistance
		}
		am, bm := a.h.Selector.mroDistance(), b.h.Selector.mroDistance()
		if am != bm {
			return am < bm
		}
		at, bt := a.h.Type.typeRank(), b.h.Type.typeRank()
		if at != bt {
			return at < bt
		}
		return a.h.Seq < b.h.Seq
	})
}

// Dispatch selects every handler registered for task whose selector
// matches caller, sorts them per the canonical key, invokes each in order,
// and returns their CallReceipts (spec.md §4.2 "Dispatch").
func (r *Registry) Dispatch(ctx context.Context, caller entity.Entity, task string, n *ns.NS, args ...any) []CallReceipt {
	cands := make([]candidate, 0)
	for _, h := range r.FindAll(caller, task) {
		cands = append(cands, candidate{h: h, originDistance: 0})
	}
	sortCandidates(cands)
	out := make([]CallReceipt, 0, len(cands))
	for _, c := range cands {
		result, err := c.h.Invoke(ctx, caller, n, args...)
		out = append(out, CallReceipt{HandlerID: c.h.ID, Task: task, Result: result, Err: err})
	}
	return out
}

// ChainDispatch concatenates the matching handlers from every registry in
// registries (registries[i] has origin distance i, nearest first) before
// sorting, so precedence stays consistent across a scope's ancestor chain
// (spec.md §4.2 "Chained dispatch").
func ChainDispatch(ctx context.Context, caller entity.Entity, task string, n *ns.NS, registries []*Registry, args ...any) []CallReceipt {
	var cands []candidate
	for dist, reg := range registries {
		for _, h := range reg.FindAll(caller, task) {
			cands = append(cands, candidate{h: h, originDistance: dist})
		}
	}
	sortCandidates(cands)
	out := make([]CallReceipt, 0, len(cands))
	for _, c := range cands {
		result, err := c.h.Invoke(ctx, caller, n, args...)
		out = append(out, CallReceipt{HandlerID: c.h.ID, Task: task, Result: result, Err: err})
	}
	return out
}
