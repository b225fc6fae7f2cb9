//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package entity defines the base record type embedded by every persistent
// value in the narrative VM: a stable identity (UUID), an optional short
// label, a tag set, and a Kind discriminator used for dispatch instead of
// Python-style subclassing (spec.md §3 "Entities").
package entity

import (
	"encoding/json"
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// Entity is satisfied by any value embedding Base. Comparability is by
// (Kind, UID, state-hash) per spec.md §3; Entity exposes the first two,
// callers compute state-hash where it matters (graph-level, not per-entity,
// since mutable attributes live on the concrete type).
type Entity interface {
	GetUID() identity.UUID
	GetKind() identity.Kind
	GetLabel() identity.Label
	GetTags() identity.TagSet
}

// Base is embedded by every GraphItem, Requirement-bearing edge, Record,
// and other persistent value in the VM.
type Base struct {
	UID   identity.UUID  `json:"uid" mapstructure:"uid"`
	Kind  identity.Kind  `json:"obj_cls" mapstructure:"obj_cls"`
	Label identity.Label `json:"label,omitempty" mapstructure:"label,omitempty"`
	Tags  identity.TagSet `json:"tags,omitempty" mapstructure:"tags,omitempty"`
}

// NewBase constructs a Base with a fresh UUID for the given kind.
func NewBase(kind identity.Kind, label identity.Label, tags ...string) Base {
	return Base{
		UID:   identity.NewUUID(),
		Kind:  kind,
		Label: label,
		Tags:  identity.NewTagSet(tags...),
	}
}

// GetUID implements Entity.
func (b Base) GetUID() identity.UUID { return b.UID }

// GetKind implements Entity.
func (b Base) GetKind() identity.Kind { return b.Kind }

// GetLabel implements Entity.
func (b Base) GetLabel() identity.Label { return b.Label }

// GetTags implements Entity.
func (b Base) GetTags() identity.TagSet { return b.Tags }

// Unstructure renders v into the deterministic serializable tree described
// by spec.md §6 ("Graph serialization"): a plain map[string]any keyed the
// same way the struct's json tags name its fields. It round-trips through
// encoding/json rather than hand-rolled reflection so nested Entities,
// slices, and maps all serialize consistently with the rest of the VM.
func Unstructure(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, vmerrors.Wrap(err, "unstructure: marshal")
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, vmerrors.Wrap(err, "unstructure: unmarshal to map")
	}
	return out, nil
}

// Structure reconstructs a typed value of type T from an unstructured tree
// produced by Unstructure (or decoded from a persisted payload), resolving
// nested maps into the destination struct's fields via mapstructure. This
// is the reference counterpart of spec.md's `Entity.structure(...)`.
func Structure[T any](tree map[string]any) (T, error) {
	var out T
	// uidHook turns a uid string (its JSON form) back into identity.UUID.
	uidHook := func(from, to reflect.Type, data any) (any, error) {
		s, ok := data.(string)
		if !ok || to != reflect.TypeOf(identity.Nil) {
			return data, nil
		}
		var id identity.UUID
		if err := id.UnmarshalText([]byte(s)); err != nil {
			return nil, err
		}
		return id, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Squash:           true, // embedded Base etc. share the parent's keys
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(identity.DecodeHook, uidHook),
	})
	if err != nil {
		return out, vmerrors.Wrap(err, "structure: build decoder")
	}
	if err := decoder.Decode(tree); err != nil {
		return out, vmerrors.Wrap(err, "structure: decode")
	}
	return out, nil
}
