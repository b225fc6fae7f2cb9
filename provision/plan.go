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
	"sort"

	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/vmlog"
)

// Input is everything one PLANNING-phase pass needs (spec.md §4.5).
type Input struct {
	Graph        *graph.Graph
	Frontier     []*graph.Node
	Provisioners []Provisioner
}

// Plan runs the four-stage EARLY/NORMAL/LATE/LAST pipeline against in and
// returns the resulting PlanningReceipt. It is invoked once per PLANNING
// phase (spec.md §4.4's phase table); the frame supplies the frontier
// (the nodes reached by the step just taken).
func Plan(in Input) *PlanningReceipt {
	receipt := &PlanningReceipt{}

	deps := frontierDependencies(in.Graph, in.Frontier)
	affs := allAffordances(in.Graph)

	// EARLY: collect and deduplicate offers per unbound dependency.
	offersByReq := map[string][]Offer{}
	for _, dep := range deps {
		if dep.Requirement == nil || dep.Requirement.Satisfied() {
			continue
		}
		var raw []Offer
		for _, p := range in.Provisioners {
			raw = append(raw, p.Offers(dep.Requirement, in.Graph, frontierNodeFirst(in.Graph, dep))...)
		}
		offersByReq[dep.Requirement.UID.String()] = Deduplicate(raw)
	}

	// NORMAL: link affordances against the frontier.
	usedLabels := map[string]map[string]bool{} // node uid -> label -> used
	for _, node := range in.Frontier {
		usedLabels[node.UID.String()] = existingIncomingLabels(in.Graph, node)
	}
	for _, aff := range affs {
		if aff.Requirement == nil || aff.Requirement.Satisfied() {
			continue
		}
		for _, node := range in.Frontier {
			if !affordanceTargets(aff, node) {
				continue
			}
			if usedLabels[node.UID.String()][aff.Label] {
				continue
			}
			aff.Bind(node)
			usedLabels[node.UID.String()][aff.Label] = true
			receipt.summarize(BuildReceipt{
				RequirementID: aff.Requirement.UID,
				Policy:        aff.Requirement.Policy,
				Provider:      node,
				Success:       true,
			})
			break // an affordance satisfies at most one destination per pass
		}
	}

	// LATE: try every offer for each remaining dependency, cheapest first,
	// falling through to the next candidate on an Accept() failure.
	// Unresolvable is only set once every offer has been tried and failed
	// (spec.md §4.5 "on failure of all offers, set requirement.is_unresolvable").
	for _, dep := range deps {
		req := dep.Requirement
		if req == nil || req.Satisfied() {
			continue
		}
		offers := sortedOffers(offersByReq[req.UID.String()])
		if len(offers) == 0 {
			if req.HardRequirement {
				req.IsUnresolvable = true
				receipt.summarize(BuildReceipt{RequirementID: req.UID, Policy: req.Policy, Success: false, HardFailure: true})
			} else {
				req.Waive()
				receipt.summarize(BuildReceipt{RequirementID: req.UID, Policy: req.Policy, Success: false})
			}
			continue
		}

		var (
			provider entity.Entity
			accepted Offer
			lastErr  error
		)
		for _, offer := range offers {
			p, err := offer.Accept()
			if err != nil {
				lastErr = err
				continue
			}
			provider, accepted = p, offer
			break
		}
		if accepted == nil {
			if req.HardRequirement {
				req.IsUnresolvable = true
				receipt.summarize(BuildReceipt{RequirementID: req.UID, Policy: req.Policy, Success: false, HardFailure: true, Err: lastErr})
			} else {
				req.Waive()
				receipt.summarize(BuildReceipt{RequirementID: req.UID, Policy: req.Policy, Success: false, Err: lastErr})
			}
			continue
		}
		dep.Bind(provider)
		receipt.summarize(BuildReceipt{RequirementID: req.UID, Policy: accepted.Policy(), Provider: provider, Success: true})
		bindSatisfiedSiblings(deps, dep, provider)
	}

	// LAST: summarize.
	receipt.SoftlockDetected = len(receipt.UnresolvedHardRequirements) > 0
	if receipt.SoftlockDetected {
		vmlog.Warnf("plan: softlock detected, %d unresolved hard requirement(s)", len(receipt.UnresolvedHardRequirements))
	} else {
		vmlog.Debugf("plan: attached=%d created=%d updated=%d waived=%d", receipt.Attached, receipt.Created, receipt.Updated, len(receipt.WaivedSoftRequirements))
	}
	return receipt
}

func frontierDependencies(g *graph.Graph, frontier []*graph.Node) []*graph.Dependency {
	var out []*graph.Dependency
	for _, node := range frontier {
		for _, e := range node.EdgesOut(g, func(e graph.EdgeLike) bool {
			_, ok := e.(*graph.Dependency)
			return ok
		}) {
			out = append(out, e.(*graph.Dependency))
		}
	}
	return out
}

func allAffordances(g *graph.Graph) []*graph.Affordance {
	var out []*graph.Affordance
	for _, e := range g.Edges() {
		if aff, ok := e.(*graph.Affordance); ok {
			out = append(out, aff)
		}
	}
	return out
}

// frontierNodeFirst resolves the node a Dependency is sourced at, wrapped
// as the single-element frontier Provisioner.Offers expects for proximity
// scoring.
func frontierNodeFirst(g *graph.Graph, dep *graph.Dependency) []*graph.Node {
	item := g.Get(dep.SourceID)
	node, ok := item.(*graph.Node)
	if !ok {
		return nil
	}
	return []*graph.Node{node}
}

// affordanceTargets reports whether an Affordance addresses node: its
// target tags (carried on the requirement's criteria, since Affordance
// itself has no separate tag list in this model) match node's tags.
func affordanceTargets(aff *graph.Affordance, node entity.Entity) bool {
	if aff.Requirement == nil {
		return false
	}
	return aff.Requirement.Criteria.Match(node)
}

// existingIncomingLabels collects the labels of Affordance/Dependency
// edges already terminating at node, so NORMAL does not double-bind a
// label (spec.md §4.5 "whose label is not already used at that
// destination").
func existingIncomingLabels(g *graph.Graph, node *graph.Node) map[string]bool {
	used := map[string]bool{}
	for _, e := range node.EdgesIn(g, nil) {
		if e.GetLabel() != "" {
			used[e.GetLabel()] = true
		}
	}
	return used
}

// bindSatisfiedSiblings binds every other unsatisfied Dependency sourced
// at the same node as dep whose criteria is already satisfied by
// provider, the LATE-stage sibling-binding optimization (spec.md §4.5).
func bindSatisfiedSiblings(deps []*graph.Dependency, dep *graph.Dependency, provider entity.Entity) {
	for _, sib := range deps {
		if sib == dep || sib.SourceID != dep.SourceID {
			continue
		}
		if sib.Requirement == nil || sib.Requirement.Satisfied() {
			continue
		}
		if sib.SatisfiedBy(provider) {
			sib.Bind(provider)
		}
	}
}
