//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package identity provides the stable identity primitives shared by every
// persistent value in the narrative VM: UUIDs, short labels, tag sets, and
// the Kind discriminator used in place of Python-style subclassing (see
// DESIGN.md, "Dynamic dispatch without inheritance").
package identity

import (
	"encoding/json"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// UUID is the stable identity of an Entity. It is a type alias for
// google/uuid.UUID, so the two are interchangeable; core packages name it
// through this package so they need not import google/uuid directly.
type UUID = uuid.UUID

// NewUUID generates a new random identity.
func NewUUID() UUID { return uuid.New() }

// Nil is the zero-value UUID, used as a sentinel (e.g. BuildReceipt for an
// affordance that is not tied to a single requirement).
var Nil = uuid.Nil

// Label is an optional short human-readable name for an entity. Label
// uniqueness is not globally enforced by the graph (see spec.md §3); it is
// only claimed by Singletons and by a subgraph's member-list author.
type Label = string

// Kind tags the polymorphic "class" of an Entity. The reference
// implementation uses Python subclassing for dispatch; Go has no open class
// hierarchy, so every polymorphic Entity variant carries an explicit Kind
// used both for (class, uid, state-hash) comparability and as the class
// half of a Singleton's (class, label) identity.
type Kind string

// Core kinds used by the graph and VM packages. Collaborators may define
// their own Kind values for narrative-domain concept classes.
const (
	KindNode      Kind = "node"
	KindEdge      Kind = "edge"
	KindSubgraph  Kind = "subgraph"
	KindChoice    Kind = "choice_edge"
	KindDependent Kind = "dependency"
	KindAfford    Kind = "affordance"
	KindCall      Kind = "call_edge"
	KindRequirement Kind = "requirement"
)

// TagSet is an unordered set of string tags attached to an entity.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from a list of tags.
func NewTagSet(tags ...string) TagSet {
	ts := make(TagSet, len(tags))
	for _, t := range tags {
		ts[t] = struct{}{}
	}
	return ts
}

// Has reports whether tag is present.
func (ts TagSet) Has(tag string) bool {
	if ts == nil {
		return false
	}
	_, ok := ts[tag]
	return ok
}

// HasAll reports whether every tag in tags is present.
func (ts TagSet) HasAll(tags ...string) bool {
	for _, t := range tags {
		if !ts.Has(t) {
			return false
		}
	}
	return true
}

// HasAny reports whether any tag in tags is present.
func (ts TagSet) HasAny(tags ...string) bool {
	for _, t := range tags {
		if ts.Has(t) {
			return true
		}
	}
	return false
}

// Add inserts tags into the set, returning the (possibly newly allocated)
// set so Add can be used on a nil TagSet.
func (ts TagSet) Add(tags ...string) TagSet {
	if ts == nil {
		ts = make(TagSet, len(tags))
	}
	for _, t := range tags {
		ts[t] = struct{}{}
	}
	return ts
}

// Remove deletes tags from the set.
func (ts TagSet) Remove(tags ...string) {
	for _, t := range tags {
		delete(ts, t)
	}
}

// Sorted returns the tags in deterministic (lexicographic) order, used by
// StateHash and serialization so output is stable across runs.
func (ts TagSet) Sorted() []string {
	out := make([]string, 0, len(ts))
	for t := range ts {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the set.
func (ts TagSet) Clone() TagSet {
	out := make(TagSet, len(ts))
	for t := range ts {
		out[t] = struct{}{}
	}
	return out
}

// String renders the set as a sorted, comma-joined list (debug/log use).
func (ts TagSet) String() string {
	return strings.Join(ts.Sorted(), ",")
}

// MarshalJSON renders the set as a sorted JSON array of strings so it reads
// naturally in persisted graph/record payloads (spec.md §6).
func (ts TagSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(ts.Sorted())
}

// UnmarshalJSON accepts a JSON array of strings.
func (ts *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*ts = NewTagSet(tags...)
	return nil
}

// DecodeHook is a mapstructure.DecodeHookFunc that turns a []any (as
// produced by Structure's intermediate map) into a TagSet.
func DecodeHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(TagSet(nil)) {
		return data, nil
	}
	switch v := data.(type) {
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
		return NewTagSet(tags...), nil
	case []string:
		return NewTagSet(v...), nil
	case nil:
		return TagSet{}, nil
	default:
		return data, nil
	}
}
