//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package replay

import (
	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// Patch is an ordered, canonicalized list of events tagged with the
// baseline graph's uid and (optionally) its pre-application state-hash
// (spec.md "Events & Patches" / §4.6 "Patch application").
type Patch struct {
	RegistryID        identity.UUID `json:"registry_id"`
	RegistryStateHash string        `json:"registry_state_hash,omitempty"`
	Events            []Event       `json:"events"`
}

// NewPatch canonicalizes events and wraps them into a Patch against
// baseline (whose current state-hash is recorded for Apply's mismatch
// check).
func NewPatch(baseline *graph.Graph, events []Event) (*Patch, error) {
	hash, err := baseline.StateHash()
	if err != nil {
		return nil, vmerrors.Wrap(err, "patch: hash baseline")
	}
	return &Patch{
		RegistryID:        baseline.UID,
		RegistryStateHash: hash,
		Events:            CanonicalizeEvents(events),
	}, nil
}

// Apply deep-copies baseline, verifies RegistryStateHash (if set) against
// the copy's current state-hash, then replays Events in order, returning
// the mutated copy. Apply is idempotent against a fresh copy of baseline:
// it never mutates its argument.
func (p *Patch) Apply(baseline *graph.Graph) (*graph.Graph, error) {
	g := baseline.Clone()
	if p.RegistryStateHash != "" {
		hash, err := g.StateHash()
		if err != nil {
			return nil, vmerrors.Wrap(err, "patch apply: hash baseline copy")
		}
		if hash != p.RegistryStateHash {
			return nil, vmerrors.Wrapf(vmerrors.ErrStateHashMismatch, "patch %s: baseline is %s, patch expects %s", p.RegistryID, hash, p.RegistryStateHash)
		}
	}
	for i, e := range p.Events {
		if err := e.Apply(g); err != nil {
			return nil, vmerrors.Wrapf(err, "patch apply: event %d", i)
		}
	}
	return g, nil
}

// Snapshot is an encoded copy of a Graph at a point in time (spec.md
// "Events & Patches").
type Snapshot struct {
	Item map[string]any `json:"item"`
}

// NewSnapshot unstructures g into a Snapshot.
func NewSnapshot(g *graph.Graph) (*Snapshot, error) {
	tree, err := g.Unstructure()
	if err != nil {
		return nil, vmerrors.Wrap(err, "snapshot: unstructure graph")
	}
	return &Snapshot{Item: tree}, nil
}

// Restore reconstructs the Graph the snapshot captured.
func (s *Snapshot) Restore() (*graph.Graph, error) {
	return graph.Structure(s.Item)
}
