//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package provision implements the planning pipeline (spec.md §4.5):
// Offers, the cost model, deduplication, offer selection, and the four
// built-in Provisioners. Grounded directly on
// original_source/engine/src/tangl/vm/dispatch/planning_v372.py's
// EARLY/NORMAL/LATE/LAST stage pipeline, with the Go control-flow idiom
// (explicit step functions rather than generators) loosely following the
// teacher's planner/ package multi-step cost-free planning loop.
package provision

import "github.com/derekmerck/storytangl-sub001/require"

// Proximity names how far a candidate provider sits from the requirement
// it would satisfy (spec.md §4.5 "Cost model").
type Proximity int

const (
	ProximitySameNode      Proximity = 0
	ProximitySameSubgraph  Proximity = 5
	ProximitySameGrandparent Proximity = 10
	ProximityDistant       Proximity = 20
)

// baseCost implements `base_cost(policy)`.
func baseCost(policy require.Policy) int {
	switch policy {
	case require.PolicyExisting, require.PolicyAny:
		return 0 // DIRECT
	case require.PolicyUpdate:
		return 10 // LIGHT_INDIRECT
	case require.PolicyClone:
		return 50 // HEAVY_INDIRECT
	case require.PolicyCreate:
		return 100 // CREATE
	default:
		return 100
	}
}

// Cost computes `cost = base_cost(policy) + proximity_penalty`.
func Cost(policy require.Policy, proximity Proximity) int {
	return baseCost(policy) + int(proximity)
}
