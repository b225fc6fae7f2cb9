//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package provision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekmerck/storytangl-sub001/graph"
)

func TestProximityBetweenSameNodeIsZero(t *testing.T) {
	g := graph.New("g")
	a := graph.NewNode("a")
	require.NoError(t, g.Add(a))
	assert.Equal(t, ProximitySameNode, ProximityBetween(g, a, a))
}

func TestProximityBetweenSameImmediateSubgraph(t *testing.T) {
	g := graph.New("g")
	room := graph.NewSubgraph("room")
	require.NoError(t, g.Add(room))
	a := graph.NewNode("a")
	a.ParentID = &room.UID
	require.NoError(t, g.Add(a))
	b := graph.NewNode("b")
	b.ParentID = &room.UID
	require.NoError(t, g.Add(b))

	assert.Equal(t, ProximitySameSubgraph, ProximityBetween(g, a, b))
}

func TestProximityBetweenSameGrandparentSubgraph(t *testing.T) {
	g := graph.New("g")
	wing := graph.NewSubgraph("wing")
	require.NoError(t, g.Add(wing))
	roomA := graph.NewSubgraph("room-a")
	roomA.ParentID = &wing.UID
	require.NoError(t, g.Add(roomA))
	roomB := graph.NewSubgraph("room-b")
	roomB.ParentID = &wing.UID
	require.NoError(t, g.Add(roomB))
	a := graph.NewNode("a")
	a.ParentID = &roomA.UID
	require.NoError(t, g.Add(a))
	b := graph.NewNode("b")
	b.ParentID = &roomB.UID
	require.NoError(t, g.Add(b))

	assert.Equal(t, ProximitySameGrandparent, ProximityBetween(g, a, b))
}

func TestProximityBetweenUnrelatedNodesIsDistant(t *testing.T) {
	g := graph.New("g")
	a := graph.NewNode("a")
	require.NoError(t, g.Add(a))
	b := graph.NewNode("b")
	require.NoError(t, g.Add(b))

	assert.Equal(t, ProximityDistant, ProximityBetween(g, a, b))
}

func TestProximityBetweenNilEndpointsIsDistant(t *testing.T) {
	assert.Equal(t, ProximityDistant, ProximityBetween(graph.New("g"), nil, nil))
}
