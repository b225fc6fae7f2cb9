//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekmerck/storytangl-sub001/identity"
)

func TestBaseGetters(t *testing.T) {
	b := NewBase(identity.KindNode, "hero", "player", "protagonist")
	assert.NotEqual(t, identity.Nil, b.GetUID())
	assert.Equal(t, identity.KindNode, b.GetKind())
	assert.Equal(t, identity.Label("hero"), b.GetLabel())
	assert.True(t, b.GetTags().HasAll("player", "protagonist"))
}

func TestUnstructureKeysByJSONTag(t *testing.T) {
	f := newFixture()
	f.Label = "n"
	tree, err := Unstructure(f)
	require.NoError(t, err)
	assert.Equal(t, "n", tree["label"])
	assert.Equal(t, string(identity.KindNode), tree["obj_cls"])
}

func TestStructureRoundTripsThroughUnstructure(t *testing.T) {
	f := newFixture()
	f.Locals["score"] = 3
	tree, err := Unstructure(f)
	require.NoError(t, err)

	out, err := Structure[fixture](tree)
	require.NoError(t, err)
	assert.Equal(t, f.UID, out.UID)
	assert.Equal(t, f.Kind, out.Kind)
}

func TestSingletonRegistryGetOrCreateIsIdempotent(t *testing.T) {
	r := NewSingletonRegistry[int]()
	calls := 0
	create := func() int {
		calls++
		return 7
	}

	first := r.GetOrCreate(identity.KindNode, "world-map", create)
	second := r.GetOrCreate(identity.KindNode, "world-map", create)

	assert.Equal(t, 7, first)
	assert.Equal(t, 7, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, r.Len())
}

func TestSingletonRegistryRegisterOverwrites(t *testing.T) {
	r := NewSingletonRegistry[int]()
	r.Register(identity.KindNode, "world-map", 1)
	r.Register(identity.KindNode, "world-map", 2)

	v, ok := r.Get(identity.KindNode, "world-map")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSingletonRegistryDistinguishesKindAndLabel(t *testing.T) {
	r := NewSingletonRegistry[int]()
	r.Register(identity.KindNode, "x", 1)
	r.Register(identity.KindEdge, "x", 2)

	_, ok := r.Get(identity.KindNode, "y")
	assert.False(t, ok)

	v, ok := r.Get(identity.KindEdge, "x")
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestSingletonRegistryResetForTests(t *testing.T) {
	r := NewSingletonRegistry[int]()
	r.Register(identity.KindNode, "x", 1)
	r.ResetForTests()
	assert.Equal(t, 0, r.Len())
}
