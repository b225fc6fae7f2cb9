//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package replay implements the event-sourcing primitives of spec.md §4.6
// ("Events, Patches, Watchers"): a single mutation is captured as an Event,
// a step's events are canonicalized and grouped into a Patch, and a point
// in time can be captured whole as a Snapshot. Grounded on
// original_source/engine/src/tangl/vm/events.py, reimplemented without
// attribute interception (Go has none — see DESIGN.md "Watched proxies vs
// immutable updates"): callers emit Events explicitly through a Recorder
// rather than through a transparent proxy.
package replay

import (
	"github.com/google/uuid"

	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// Type names the kind of mutation an Event records.
type Type string

const (
	Create Type = "create"
	Read   Type = "read"
	Update Type = "update"
	Delete Type = "delete"
)

// Event captures one mutation against a Graph (spec.md "Events & Patches").
// For Create/node-level Delete, SourceID is the *graph's* uid and the
// mutated entity's uid travels inside Value (a CREATE's Value is the
// unstructured item tree, a node-level DELETE's Value is the uid); for
// Update/attribute Delete, SourceID is the mutated entity's own uid and
// Name carries the attribute.
type Event struct {
	SourceID identity.UUID `json:"source_id"`
	Type     Type          `json:"event_type"`
	Name     string        `json:"name,omitempty"`
	Value    any           `json:"value"`
	OldValue any           `json:"old_value,omitempty"`
}

// Apply replays the event against g. CREATE always targets the graph
// itself (the only Registry in this model); UPDATE/DELETE target the
// entity named by SourceID (or, for a node-level DELETE, by Value).
func (e Event) Apply(g *graph.Graph) error {
	switch e.Type {
	case Create:
		tree, ok := e.Value.(map[string]any)
		if !ok {
			return vmerrors.Wrapf(vmerrors.ErrNotFound, "create event: value is %T, want map[string]any", e.Value)
		}
		_, err := g.AddFromTree(tree)
		return err
	case Read:
		return nil
	case Update:
		item := g.Get(e.SourceID)
		if item == nil {
			return vmerrors.Wrapf(vmerrors.ErrNotFound, "update event: %s not in graph", e.SourceID)
		}
		_, err := entity.SetAttr(item, e.Name, e.Value)
		return err
	case Delete:
		if e.Name != "" {
			item := g.Get(e.SourceID)
			if item == nil {
				return vmerrors.Wrapf(vmerrors.ErrNotFound, "delete event: %s not in graph", e.SourceID)
			}
			_, err := entity.DeleteAttr(item, e.Name)
			return err
		}
		uid, ok := parseUID(e.Value)
		if !ok {
			return vmerrors.Wrapf(vmerrors.ErrNotFound, "delete event: value %v is not a uid", e.Value)
		}
		if err := g.Remove(uid); err == nil {
			return nil
		}
		return g.RemoveEdge(uid)
	default:
		return vmerrors.Wrapf(vmerrors.ErrNotFound, "unknown event type %q", e.Type)
	}
}

// parseUID accepts a value already typed identity.UUID or its string form
// (the shape it arrives in once an Event has round-tripped through JSON).
func parseUID(v any) (identity.UUID, bool) {
	switch t := v.(type) {
	case identity.UUID:
		return t, true
	case string:
		id, err := uuid.Parse(t)
		if err != nil {
			return identity.Nil, false
		}
		return id, true
	default:
		return identity.Nil, false
	}
}

// entityKey returns the uid of the entity e targets, used to group events
// for canonicalization: for CREATE it is the uid embedded in the created
// tree; for a node-level DELETE it is e.Value; otherwise it is e.SourceID.
func entityKey(e Event) (identity.UUID, bool) {
	switch e.Type {
	case Create:
		tree, ok := e.Value.(map[string]any)
		if !ok {
			return identity.Nil, false
		}
		return parseUID(tree["uid"])
	case Delete:
		if e.Name == "" {
			return parseUID(e.Value)
		}
		return e.SourceID, true
	default:
		return e.SourceID, true
	}
}

// isStructural reports whether e is a CREATE or a node-level DELETE (as
// opposed to an attribute UPDATE or attribute DELETE).
func isStructural(e Event) bool {
	return e.Type == Create || (e.Type == Delete && e.Name == "")
}

// CanonicalizeEvents reduces a raw event list to the minimal set that
// reproduces the same final state, per spec.md §4.6 "Event
// canonicalization":
//
//   - Per entity uid, the structural CREATE/DELETE subsequence collapses to
//     at most a leading DELETE (kept only if the very first structural
//     token for that uid is itself a DELETE — i.e. the entity existed
//     before this patch) and a trailing CREATE (kept only if the entity
//     exists at the end of the patch).
//   - Attribute UPDATE/DELETE events before the kept CREATE are dropped (the
//     entity did not exist yet); if the entity does not exist at the end,
//     every attribute event for it is dropped.
//   - Remaining attribute events collapse per (uid, name) to the last one
//     (an UPDATE or a DELETE, whichever came last).
//
// Output preserves original relative order.
func CanonicalizeEvents(events []Event) []Event {
	type grouped struct {
		structural []int // indices into events, structural tokens only
		attrs      []int // indices into events, attribute tokens only
	}
	groups := map[identity.UUID]*grouped{}
	order := []identity.UUID{}
	for i, e := range events {
		key, ok := entityKey(e)
		if !ok {
			continue
		}
		g, seen := groups[key]
		if !seen {
			g = &grouped{}
			groups[key] = g
			order = append(order, key)
		}
		if isStructural(e) {
			g.structural = append(g.structural, i)
		} else {
			g.attrs = append(g.attrs, i)
		}
	}

	keep := make(map[int]bool, len(events))
	for _, key := range order {
		g := groups[key]
		existsAfter := true
		lastCreateIdx := -1
		if len(g.structural) > 0 {
			first := events[g.structural[0]]
			last := events[g.structural[len(g.structural)-1]]
			if first.Type == Delete {
				keep[g.structural[0]] = true
			}
			existsAfter = last.Type == Create
			if existsAfter {
				lastCreateIdx = g.structural[len(g.structural)-1]
				keep[lastCreateIdx] = true
			}
		}
		if !existsAfter {
			continue // drop every attribute event for this uid
		}
		bestByName := map[string]int{}
		var nameOrder []string
		for _, idx := range g.attrs {
			if idx < lastCreateIdx {
				continue // existed only after the kept create
			}
			name := events[idx].Name
			if _, seen := bestByName[name]; !seen {
				nameOrder = append(nameOrder, name)
			}
			bestByName[name] = idx // later index always wins: last write
		}
		for _, name := range nameOrder {
			keep[bestByName[name]] = true
		}
	}

	out := make([]Event, 0, len(keep))
	for i, e := range events {
		if keep[i] {
			out = append(out, e)
		}
	}
	return out
}
