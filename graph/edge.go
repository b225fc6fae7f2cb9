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
	"github.com/derekmerck/storytangl-sub001/ns"
	"github.com/derekmerck/storytangl-sub001/phase"
	"github.com/derekmerck/storytangl-sub001/require"
)

// EdgeCore holds the fields common to every edge variant. Endpoints are
// stored by uid only (DESIGN.md "Cyclic graph issue"); destination may be
// unresolved (nil) during construction.
type EdgeCore struct {
	entity.Base

	SourceID      identity.UUID  `json:"source_id" mapstructure:"source_id"`
	DestinationID *identity.UUID `json:"destination_id,omitempty" mapstructure:"destination_id,omitempty"`
	Payload       map[string]any `json:"payload,omitempty" mapstructure:"payload,omitempty"`
}

// Core returns the shared edge fields; it lets Node.EdgesIn/EdgesOut walk a
// heterogeneous slice of edge kinds without a type switch on every access.
func (e *EdgeCore) Core() *EdgeCore { return e }

// EdgeLike is satisfied by every edge kind (Edge, ChoiceEdge, Dependency,
// Affordance, CallEdge).
type EdgeLike interface {
	entity.Entity
	Core() *EdgeCore
}

// Edge is a plain labeled connection between two nodes.
type Edge struct {
	EdgeCore
}

// NewEdge constructs a plain Edge. destination may be identity.Nil to
// leave it unresolved for now.
func NewEdge(label identity.Label, source, destination identity.UUID, tags ...string) *Edge {
	e := &Edge{EdgeCore{Base: entity.NewBase(identity.KindEdge, label, tags...), SourceID: source}}
	if destination != identity.Nil {
		e.DestinationID = &destination
	}
	return e
}

// Predicate is a narrow, deterministic condition evaluated against the
// current namespace. Per DESIGN.md's open question on ChoiceEdge
// predicates, the core restricts this to a plain Go closure over the
// exposed NS rather than an arbitrary host callable with side effects;
// collaborators compose richer DSLs on top of this signature if needed.
type Predicate func(n *ns.NS) bool

// ChoiceEdge is an edge selectable by the cursor, with an optional
// predicate and an optional auto-fire trigger phase.
type ChoiceEdge struct {
	EdgeCore

	Predicate    Predicate          `json:"-" mapstructure:"-"`
	TriggerPhase *phase.TriggerPhase `json:"trigger_phase,omitempty" mapstructure:"trigger_phase,omitempty"`
}

// NewChoiceEdge constructs a ChoiceEdge.
func NewChoiceEdge(label identity.Label, source, destination identity.UUID, tags ...string) *ChoiceEdge {
	ce := &ChoiceEdge{EdgeCore: EdgeCore{Base: entity.NewBase(identity.KindChoice, label, tags...), SourceID: source}}
	if destination != identity.Nil {
		ce.DestinationID = &destination
	}
	return ce
}

// Available reports whether the edge may be followed in the given
// namespace: true if there is no predicate, or the predicate holds.
func (ce *ChoiceEdge) Available(n *ns.NS) bool {
	if ce.Predicate == nil {
		return true
	}
	return ce.Predicate(n)
}

// AutoFires reports whether this edge should be automatically followed
// during the given phase.
func (ce *ChoiceEdge) AutoFires(p phase.Phase, n *ns.NS) bool {
	if ce.TriggerPhase == nil || *ce.TriggerPhase != p {
		return false
	}
	return ce.Available(n)
}

// Dependency is an edge sourced at the dependent node, carrying a
// Requirement; its destination is filled in by planning once satisfied.
type Dependency struct {
	EdgeCore
	Requirement *require.Requirement `json:"requirement,omitempty" mapstructure:"requirement,omitempty"`
}

// NewDependency constructs a Dependency edge sourced at `source`.
func NewDependency(label identity.Label, source identity.UUID, req *require.Requirement) *Dependency {
	return &Dependency{
		EdgeCore:    EdgeCore{Base: entity.NewBase(identity.KindDependent, label), SourceID: source},
		Requirement: req,
	}
}

// SatisfiedBy delegates to the underlying Requirement, then (on success)
// binds both the requirement's provider and this edge's destination.
func (d *Dependency) SatisfiedBy(node entity.Entity) bool {
	return d.Requirement != nil && d.Requirement.SatisfiedBy(node)
}

// Bind satisfies the dependency with provider: sets the requirement's
// provider and this edge's destination uid.
func (d *Dependency) Bind(provider entity.Entity) {
	if d.Requirement != nil {
		d.Requirement.SetProvider(provider)
	}
	id := provider.GetUID()
	d.DestinationID = &id
}

// Affordance is a Requirement published by a provider node toward a
// destination: the requirement "offers" something to the destination.
type Affordance struct {
	EdgeCore
	Requirement *require.Requirement `json:"requirement,omitempty" mapstructure:"requirement,omitempty"`
}

// NewAffordance constructs an Affordance edge sourced at the provider.
func NewAffordance(label identity.Label, provider identity.UUID, req *require.Requirement) *Affordance {
	return &Affordance{
		EdgeCore:    EdgeCore{Base: entity.NewBase(identity.KindAfford, label), SourceID: provider},
		Requirement: req,
	}
}

// Bind satisfies the affordance's requirement against destination: sets
// the requirement's provider and this edge's destination uid.
func (a *Affordance) Bind(destination entity.Entity) {
	if a.Requirement != nil {
		a.Requirement.SetProvider(destination)
	}
	id := destination.GetUID()
	a.DestinationID = &id
}

// CallType names the semantic category of a Call edge (e.g. "subroutine",
// "interrupt"); collaborators may use arbitrary values.
type CallType string

// CallEdge is a ChoiceEdge with IsCall=true: following it pushes a stack
// frame recording the return cursor.
type CallEdge struct {
	ChoiceEdge
	IsCall   bool     `json:"is_call" mapstructure:"is_call"`
	CallType CallType `json:"call_type,omitempty" mapstructure:"call_type,omitempty"`
}

// NewCallEdge constructs a CallEdge.
func NewCallEdge(label identity.Label, source, destination identity.UUID, callType CallType) *CallEdge {
	ce := &CallEdge{
		ChoiceEdge: ChoiceEdge{EdgeCore: EdgeCore{Base: entity.NewBase(identity.KindCall, label), SourceID: source}},
		IsCall:     true,
		CallType:   callType,
	}
	if destination != identity.Nil {
		ce.DestinationID = &destination
	}
	return ce
}
