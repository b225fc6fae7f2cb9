//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package ns implements the layered ChainMap-style namespace used to
// compose scope lookups (spec.md §3 "Namespace (NS)"): nearer layers shadow
// farther ones, and a namespace can be extended with NewChild without
// mutating its parent.
package ns

// NS is a layered, read-through mapping: Get checks the nearest layer
// first, then each parent in turn. It has no dependency on the graph or
// handler packages so it can sit at the bottom of the import graph and be
// shared by both.
type NS struct {
	layer  map[string]any
	parent *NS
}

// New creates a root namespace from a single layer (may be nil).
func New(layer map[string]any) *NS {
	if layer == nil {
		layer = map[string]any{}
	}
	return &NS{layer: layer}
}

// NewChild returns a new namespace with layer nearer than ns, so entries in
// layer shadow anything ns (or its ancestors) defines for the same key.
func (parent *NS) NewChild(layer map[string]any) *NS {
	if layer == nil {
		layer = map[string]any{}
	}
	return &NS{layer: layer, parent: parent}
}

// Get walks from the nearest layer outward, returning the first binding
// found for key.
func (n *NS) Get(key string) (any, bool) {
	for cur := n; cur != nil; cur = cur.parent {
		if v, ok := cur.layer[key]; ok {
			return v, true
		}
	}
	return nil, false
}

// MustGet returns the bound value or nil if key is unbound.
func (n *NS) MustGet(key string) any {
	v, _ := n.Get(key)
	return v
}

// Set binds key in the nearest (local) layer only.
func (n *NS) Set(key string, value any) {
	n.layer[key] = value
}

// Flatten merges every layer into a single map, nearest layers winning,
// for callers (tests, debug dumps) that want a plain map[string]any view.
func (n *NS) Flatten() map[string]any {
	out := map[string]any{}
	var layers []*NS
	for cur := n; cur != nil; cur = cur.parent {
		layers = append(layers, cur)
	}
	for i := len(layers) - 1; i >= 0; i-- {
		for k, v := range layers[i].layer {
			out[k] = v
		}
	}
	return out
}

// Depth reports how many layers deep n is (1 for a root namespace).
func (n *NS) Depth() int {
	d := 0
	for cur := n; cur != nil; cur = cur.parent {
		d++
	}
	return d
}
