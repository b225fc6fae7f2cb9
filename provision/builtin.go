//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package provision

import (
	"sync/atomic"

	"github.com/derekmerck/storytangl-sub001/criteria"
	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/require"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// regIndexCounter backs RegistrationIndex for offers minted by the
// built-in provisioners, giving earliest-registration-wins a stable,
// monotonic tiebreaker (spec.md §4.5 "Deduplication"/"LATE").
var regIndexCounter int64

func nextRegIndex() int64 { return atomic.AddInt64(&regIndexCounter, 1) }

// GraphProvisioner returns EXISTING offers for nodes already in the graph
// matching a requirement's criteria (spec.md §4.5 "GraphProvisioner").
type GraphProvisioner struct{}

func (GraphProvisioner) Offers(req *require.Requirement, g *graph.Graph, frontier []*graph.Node) []Offer {
	if req.Policy != require.PolicyExisting && req.Policy != require.PolicyAny {
		return nil
	}
	var out []Offer
	var from *graph.Node
	if len(frontier) > 0 {
		from = frontier[0]
	}
	for _, item := range g.FindAll(req.Criteria) {
		node, ok := item.(*graph.Node)
		if !ok {
			continue
		}
		if !req.SatisfiedBy(node) {
			continue
		}
		prox := ProximityBetween(g, from, node)
		provider := node
		out = append(out, &DependencyOffer{
			ReqID:      req.UID,
			Op:         require.PolicyExisting,
			CostValue:  Cost(require.PolicyExisting, prox),
			Prox:       prox,
			RegIndex:   nextRegIndex(),
			ProviderID: node.UID,
			AcceptFn:   func() (entity.Entity, error) { return provider, nil },
		})
	}
	return out
}

// TemplateRegistry resolves a named template to its field map, backing
// TemplateProvisioner's scope-anchored template lookup (spec.md §4.5
// "TemplateProvisioner").
type TemplateRegistry interface {
	Template(ref string) (map[string]any, bool)
}

// TemplateProvisioner returns CREATE offers backed by a template
// registry, either the requirement's own inline Template or one resolved
// by TemplateRef.
type TemplateProvisioner struct {
	Templates TemplateRegistry
}

func (p TemplateProvisioner) Offers(req *require.Requirement, g *graph.Graph, frontier []*graph.Node) []Offer {
	if req.Policy != require.PolicyCreate && req.Policy != require.PolicyAny {
		return nil
	}
	tmpl := req.Template
	prox := ProximityDistant
	if tmpl == nil && req.TemplateRef != "" && p.Templates != nil {
		if t, ok := p.Templates.Template(req.TemplateRef); ok {
			tmpl = t
			prox = ProximitySameSubgraph // scope-anchored lookups score closer than ancestor scopes
		}
	}
	if tmpl == nil {
		return nil
	}
	var parent *graph.Subgraph
	if len(frontier) > 0 {
		parent = frontier[0].Parent(g)
	}
	return []Offer{&DependencyOffer{
		ReqID:     req.UID,
		Op:        require.PolicyCreate,
		CostValue: Cost(require.PolicyCreate, prox),
		Prox:      prox,
		RegIndex:  nextRegIndex(),
		AcceptFn: func() (entity.Entity, error) {
			label, _ := tmpl["label"].(string)
			var tags []string
			if raw, ok := tmpl["tags"].([]string); ok {
				tags = raw
			}
			node := g.AddNode(label, tags...)
			if locals, ok := tmpl["locals"].(map[string]any); ok {
				node.Locals = locals
			}
			if parent != nil {
				_ = g.Attach(node, parent)
			}
			return node, nil
		},
	}}
}

// UpdatingProvisioner returns UPDATE offers for matched nodes that can be
// mutated (by merging the requirement's template fields into Locals) to
// qualify (spec.md §4.5 "UpdatingProvisioner").
type UpdatingProvisioner struct{}

func (UpdatingProvisioner) Offers(req *require.Requirement, g *graph.Graph, frontier []*graph.Node) []Offer {
	if req.Policy != require.PolicyUpdate && req.Policy != require.PolicyAny {
		return nil
	}
	if req.Template == nil {
		return nil
	}
	relaxed := criteria.Criteria{Kind: req.Criteria.Kind, Label: req.Criteria.Label}
	var out []Offer
	var from *graph.Node
	if len(frontier) > 0 {
		from = frontier[0]
	}
	for _, item := range g.FindAll(relaxed) {
		node, ok := item.(*graph.Node)
		if !ok || req.SatisfiedBy(node) {
			continue // already satisfied, nothing to update
		}
		prox := ProximityBetween(g, from, node)
		target := node
		out = append(out, &DependencyOffer{
			ReqID:      req.UID,
			Op:         require.PolicyUpdate,
			CostValue:  Cost(require.PolicyUpdate, prox),
			Prox:       prox,
			RegIndex:   nextRegIndex(),
			ProviderID: node.UID,
			AcceptFn: func() (entity.Entity, error) {
				if target.Locals == nil {
					target.Locals = map[string]any{}
				}
				for k, v := range req.Template {
					target.Locals[k] = v
				}
				target.Tags = target.Tags.Add(req.Criteria.Tags...)
				return target, nil
			},
		})
	}
	return out
}

// CloningProvisioner returns a CLONE offer when the requirement's
// ReferenceID resolves to an existing node (spec.md §4.5
// "CloningProvisioner").
type CloningProvisioner struct{}

func (CloningProvisioner) Offers(req *require.Requirement, g *graph.Graph, frontier []*graph.Node) []Offer {
	if req.Policy != require.PolicyClone {
		return nil
	}
	if req.ReferenceID == identity.Nil {
		return nil
	}
	ref := g.Get(req.ReferenceID)
	refNode, ok := ref.(*graph.Node)
	if !ok {
		return nil
	}
	var from *graph.Node
	if len(frontier) > 0 {
		from = frontier[0]
	}
	prox := ProximityBetween(g, from, refNode)
	return []Offer{&DependencyOffer{
		ReqID:     req.UID,
		Op:        require.PolicyClone,
		CostValue: Cost(require.PolicyClone, prox),
		Prox:      prox,
		RegIndex:  nextRegIndex(),
		AcceptFn: func() (entity.Entity, error) {
			clone := g.CloneNode(refNode)
			if clone == nil {
				return nil, vmerrors.Wrapf(vmerrors.ErrNotFound, "clone source %s vanished", refNode.UID)
			}
			return clone, nil
		},
	}}
}
