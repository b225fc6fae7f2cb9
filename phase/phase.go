//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package phase defines the fixed resolution-phase enum shared by the
// graph package (ChoiceEdge.TriggerPhase) and the vm package (the frame's
// phase pipeline), kept separate from both so neither has to import the
// other just to name a phase (spec.md §2, §4.4).
package phase

// Phase is one step in the ordered resolution pipeline run once per
// Frame.FollowEdge call.
type Phase int

// Phases in execution order. INIT is a sentinel and never runs.
const (
	INIT Phase = iota
	DISCOVER
	VALIDATE
	PLANNING
	PREREQS
	UPDATE
	JOURNAL
	FINALIZE
	POSTREQS
)

var names = map[Phase]string{
	INIT:     "INIT",
	DISCOVER: "DISCOVER",
	VALIDATE: "VALIDATE",
	PLANNING: "PLANNING",
	PREREQS:  "PREREQS",
	UPDATE:   "UPDATE",
	JOURNAL:  "JOURNAL",
	FINALIZE: "FINALIZE",
	POSTREQS: "POSTREQS",
}

// String renders the phase name, used as the Handler.Task key for
// phase-bound handlers.
func (p Phase) String() string {
	if n, ok := names[p]; ok {
		return n
	}
	return "UNKNOWN"
}

// Ordered returns every runnable phase (excluding INIT) in execution order.
func Ordered() []Phase {
	return []Phase{DISCOVER, VALIDATE, PLANNING, PREREQS, UPDATE, JOURNAL, FINALIZE, POSTREQS}
}

// Aggregator names the reduction policy a phase uses to fold CallReceipts
// into a single outcome (spec.md §4.4 table).
type Aggregator int

const (
	// AggAllTrue requires every receipt to be truthy; identity is true.
	AggAllTrue Aggregator = iota
	// AggGather collects every receipt result into a slice.
	AggGather
	// AggFirst returns the first non-nil result.
	AggFirst
	// AggLast returns the last non-nil result.
	AggLast
)

// AggregatorFor reports the aggregation policy for a phase, matching the
// table in spec.md §4.4.
func AggregatorFor(p Phase) Aggregator {
	switch p {
	case VALIDATE:
		return AggAllTrue
	case PLANNING, JOURNAL, FINALIZE:
		return AggLast
	case PREREQS, POSTREQS:
		return AggFirst
	default: // DISCOVER, UPDATE
		return AggGather
	}
}

// TriggerPhase restricts ChoiceEdge auto-firing to PREREQS or POSTREQS
// (spec.md §3 "Edges in detail").
type TriggerPhase = Phase

// ValidTrigger reports whether p is a legal ChoiceEdge trigger phase.
func ValidTrigger(p Phase) bool {
	return p == PREREQS || p == POSTREQS
}
