//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package provision

import "github.com/derekmerck/storytangl-sub001/graph"

// ProximityBetween computes the spec.md §4.5 "Cost model" proximity band
// between the dependent node and a candidate provider: 0 for the same
// node, 5 for the same immediate subgraph, 10 for the same grandparent
// subgraph, 20 otherwise.
func ProximityBetween(g *graph.Graph, from, to *graph.Node) Proximity {
	if from == nil || to == nil {
		return ProximityDistant
	}
	if from.UID == to.UID {
		return ProximitySameNode
	}
	fromParent := from.Parent(g)
	toParent := to.Parent(g)
	if fromParent != nil && toParent != nil && fromParent.UID == toParent.UID {
		return ProximitySameSubgraph
	}
	fromAncestors := from.Ancestors(g)
	toAncestors := to.Ancestors(g)
	if len(fromAncestors) > 1 && len(toAncestors) > 1 && fromAncestors[1].UID == toAncestors[1].UID {
		return ProximitySameGrandparent
	}
	return ProximityDistant
}
