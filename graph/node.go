//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/identity"
)

// Node is a vertex in the graph. It may be a member of at most one
// Subgraph (its parent); ParentID stores that relationship by uid only,
// per DESIGN.md "Cyclic graph issue" — live references are always resolved
// through the owning Graph, never held directly.
type Node struct {
	entity.Base

	// ParentID is the uid of the subgraph this node belongs to, or nil at
	// the root level.
	ParentID *identity.UUID `json:"parent_id,omitempty" mapstructure:"parent_id,omitempty"`

	// Locals is the node's own namespace layer (spec.md §3 "Namespace").
	Locals map[string]any `json:"locals,omitempty" mapstructure:"locals,omitempty"`
}

// NewNode constructs a Node with a fresh identity.
func NewNode(label identity.Label, tags ...string) *Node {
	return &Node{
		Base:   entity.NewBase(identity.KindNode, label, tags...),
		Locals: map[string]any{},
	}
}

// Parent resolves the node's parent Subgraph through g, or nil if it is a
// root-level node or its parent has been removed (a dangling reference is
// permitted; it simply surfaces as "no parent").
func (n *Node) Parent(g *Graph) *Subgraph {
	if n.ParentID == nil {
		return nil
	}
	item := g.Get(*n.ParentID)
	sg, _ := item.(*Subgraph)
	return sg
}

// Ancestors returns the chain of containing subgraphs from nearest to the
// root, resolved through g.
func (n *Node) Ancestors(g *Graph) []*Subgraph {
	var out []*Subgraph
	cur := n.Parent(g)
	seen := map[identity.UUID]bool{}
	for cur != nil && !seen[cur.UID] {
		out = append(out, cur)
		seen[cur.UID] = true
		cur = cur.Node.Parent(g)
	}
	return out
}

// Path renders the dotted ancestor-label path "root.child. ... .node"
// (spec.md §3 "Invariants").
func (n *Node) Path(g *Graph) string {
	ancestors := n.Ancestors(g)
	path := n.labelOrUID()
	for _, a := range ancestors {
		path = a.labelOrUID() + "." + path
	}
	return path
}

func (n *Node) labelOrUID() string {
	if n.Label != "" {
		return n.Label
	}
	return n.UID.String()
}

// EdgesOut returns every Edge (of any kind) sourced at this node and
// matching filter (nil filter matches everything).
func (n *Node) EdgesOut(g *Graph, filter func(EdgeLike) bool) []EdgeLike {
	var out []EdgeLike
	for _, e := range g.allEdges() {
		if e.Core().SourceID != n.UID {
			continue
		}
		if filter == nil || filter(e) {
			out = append(out, e)
		}
	}
	return out
}

// EdgesIn returns every Edge (of any kind) whose destination is this node
// and matching filter (nil filter matches everything).
func (n *Node) EdgesIn(g *Graph, filter func(EdgeLike) bool) []EdgeLike {
	var out []EdgeLike
	for _, e := range g.allEdges() {
		dest := e.Core().DestinationID
		if dest == nil || *dest != n.UID {
			continue
		}
		if filter == nil || filter(e) {
			out = append(out, e)
		}
	}
	return out
}
