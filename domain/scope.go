//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package domain implements the Scope/namespace layer (spec.md §4.3) and
// the ambient domain Context threaded through handler dispatch. Scope's
// namespace is a real layered ChainMap (package ns), generalized from the
// teacher's flat graph.State (graph/state.go) because the spec requires
// shadowing precedence a flat map cannot express.
package domain

import (
	"context"

	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/handler"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/ns"
)

// TaskGetNS is the handler task name dispatched up the containment chain
// to build a scope's namespace (spec.md §4.3).
const TaskGetNS = "get_ns"

// Scope is a frozen composition (graph, anchor_node_id, attached domain
// registries) per spec.md §4.3. It is re-created per frame tick rather
// than cached across mutations, so its namespace is always rebuilt from
// current graph state.
type Scope struct {
	Graph      *graph.Graph
	AnchorID   identity.UUID
	Registries []*handler.Registry
}

// NewScope constructs a Scope anchored at anchor, chaining registries in
// nearest-first order (registries[0] is the anchor's own local registry).
func NewScope(g *graph.Graph, anchor identity.UUID, registries ...*handler.Registry) *Scope {
	return &Scope{Graph: g, AnchorID: anchor, Registries: registries}
}

// Anchor resolves the scope's anchor node.
func (s *Scope) Anchor() *graph.Node {
	item := s.Graph.Get(s.AnchorID)
	switch v := item.(type) {
	case *graph.Node:
		return v
	case *graph.Subgraph:
		return &v.Node
	default:
		return nil
	}
}

// chain returns the anchor-to-root ancestor path, root-most last (the
// same order graph.Node.Ancestors returns), with the anchor itself
// prepended so NS() can fold every level uniformly.
func (s *Scope) chain() []*graph.Node {
	anchor := s.Anchor()
	if anchor == nil {
		return nil
	}
	out := []*graph.Node{anchor}
	for _, sg := range anchor.Ancestors(s.Graph) {
		out = append(out, &sg.Node)
	}
	return out
}

// NS builds the scope's namespace: dispatches TaskGetNS up the
// containment chain (root contributes first, so nearer nodes shadow it),
// merges in satisfied-dependency projections for the anchor, and layers
// extra (frame-provided bindings: cursor, epoch, phase, rand) on top as
// the nearest, most-shadowing layer.
func (s *Scope) NS(ctx context.Context, extra map[string]any) *ns.NS {
	chain := s.chain()

	var cur *ns.NS
	for i := len(chain) - 1; i >= 0; i-- {
		node := chain[i]
		layer := map[string]any{}
		for _, receipt := range handler.ChainDispatch(ctx, node, TaskGetNS, cur, s.Registries) {
			if m, ok := receipt.Result.(map[string]any); ok {
				for k, v := range m {
					layer[k] = v
				}
			}
		}
		if cur == nil {
			cur = ns.New(layer)
		} else {
			cur = cur.NewChild(layer)
		}
	}
	if cur == nil {
		cur = ns.New(nil)
	}

	if anchor := s.Anchor(); anchor != nil {
		depLayer := map[string]any{}
		for _, e := range anchor.EdgesOut(s.Graph, func(e graph.EdgeLike) bool {
			_, ok := e.(*graph.Dependency)
			return ok
		}) {
			dep := e.(*graph.Dependency)
			for k, v := range dep.Requirement.ProjectNS() {
				depLayer[k] = v
			}
		}
		cur = cur.NewChild(depLayer)
	}

	if len(extra) > 0 {
		cur = cur.NewChild(extra)
	}
	return cur
}

// HasDomain reports whether item satisfies the criteria-style
// {"has_domain": kind} selector: a handler registered for the
// "has_domain:<kind>" task on item returning boolean true (spec.md §4.3,
// "@has_domain").
func HasDomain(ctx context.Context, reg *handler.Registry, item entity.Entity, domainKind string) bool {
	for _, r := range reg.Dispatch(ctx, item, "has_domain:"+domainKind, nil) {
		if b, ok := r.Result.(bool); ok && b {
			return true
		}
	}
	return false
}
