//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package criteria implements the arbitrary-attribute search predicate
// shared by Graph.find_all/find_one (spec.md §4.1) and
// Requirement.satisfied_by (spec.md §3 "Requirement"): tag matches,
// attribute equalities, an is-instance (Kind) check, and an escape hatch
// callable predicate.
package criteria

import (
	"reflect"
	"strings"

	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/identity"
)

// Criteria is a structured match evaluated against an entity.Entity. A zero
// Criteria matches everything.
type Criteria struct {
	// Kind restricts matches to a single entity Kind ("is_instance").
	Kind identity.Kind `json:"kind,omitempty" mapstructure:"kind,omitempty"`
	// Tags requires every listed tag to be present ("has_tags").
	Tags []string `json:"tags,omitempty" mapstructure:"tags,omitempty"`
	// Label, if non-empty, requires an exact label match.
	Label identity.Label `json:"label,omitempty" mapstructure:"label,omitempty"`
	// Attrs requires exported struct fields (matched by name, case
	// insensitive, or by json tag) to equal the given values.
	Attrs map[string]any `json:"attrs,omitempty" mapstructure:"attrs,omitempty"`
	// Predicate is an arbitrary escape-hatch callable; not serializable.
	Predicate func(item entity.Entity) bool `json:"-" mapstructure:"-"`
}

// Match reports whether item satisfies every configured constraint.
func (c Criteria) Match(item entity.Entity) bool {
	if item == nil {
		return false
	}
	if c.Kind != "" && item.GetKind() != c.Kind {
		return false
	}
	if c.Label != "" && item.GetLabel() != c.Label {
		return false
	}
	if len(c.Tags) > 0 && !item.GetTags().HasAll(c.Tags...) {
		return false
	}
	if len(c.Attrs) > 0 && !MatchAttrs(item, c.Attrs) {
		return false
	}
	if c.Predicate != nil && !c.Predicate(item) {
		return false
	}
	return true
}

// MatchAttrs compares named struct fields of item (following any pointer
// indirection) against the expected values in want, using each
// field's json tag (falling back to its Go name) as the lookup key. It is
// exported so other selection predicates (e.g. handler.Selector) reuse the
// same attribute-matching rule rather than reimplementing the reflection.
func MatchAttrs(item entity.Entity, want map[string]any) bool {
	v := reflect.ValueOf(item)
	for v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return false
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return false
	}
	fields := fieldsByKey(v.Type())
	for key, want := range want {
		idx, ok := fields[strings.ToLower(key)]
		if !ok {
			return false
		}
		got := v.FieldByIndex(idx).Interface()
		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

// fieldsByKey indexes a struct type's exported fields (recursing through
// embedded structs) by lower-cased json tag name and by lower-cased Go
// field name.
func fieldsByKey(t reflect.Type) map[string][]int {
	out := map[string][]int{}
	var walk func(t reflect.Type, prefix []int)
	walk = func(t reflect.Type, prefix []int) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			idx := append(append([]int{}, prefix...), i)
			if f.Anonymous && f.Type.Kind() == reflect.Struct {
				walk(f.Type, idx)
				continue
			}
			if f.PkgPath != "" {
				continue
			}
			out[strings.ToLower(f.Name)] = idx
			if tag, ok := f.Tag.Lookup("json"); ok {
				name := strings.Split(tag, ",")[0]
				if name != "" && name != "-" {
					out[strings.ToLower(name)] = idx
				}
			}
		}
	}
	walk(t, nil)
	return out
}
