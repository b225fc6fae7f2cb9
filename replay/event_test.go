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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/identity"
)

func TestApplyCreateEvent(t *testing.T) {
	g := graph.New("root")
	n := graph.NewNode("new-node")
	tree, err := entity.Unstructure(n)
	require.NoError(t, err)

	ev := Event{Type: Create, SourceID: g.UID, Value: tree}
	require.NoError(t, ev.Apply(g))

	got := g.Get(n.UID)
	require.NotNil(t, got)
	assert.Equal(t, identity.Label("new-node"), got.GetLabel())
}

func TestApplyUpdateEvent(t *testing.T) {
	g := graph.New("root")
	n := graph.NewNode("n")
	require.NoError(t, g.Add(n))

	ev := Event{Type: Update, SourceID: n.UID, Name: "label", Value: "renamed"}
	require.NoError(t, ev.Apply(g))

	got := g.Get(n.UID).(*graph.Node)
	assert.Equal(t, identity.Label("renamed"), got.Label)
}

func TestApplyDeleteAttrEvent(t *testing.T) {
	g := graph.New("root")
	n := graph.NewNode("n")
	n.Locals["score"] = 3
	require.NoError(t, g.Add(n))

	ev := Event{Type: Delete, SourceID: n.UID, Name: "score"}
	require.NoError(t, ev.Apply(g))

	got := g.Get(n.UID).(*graph.Node)
	_, ok := got.Locals["score"]
	assert.False(t, ok)
}

func TestApplyDeleteNodeEvent(t *testing.T) {
	g := graph.New("root")
	n := graph.NewNode("n")
	require.NoError(t, g.Add(n))

	ev := Event{Type: Delete, SourceID: g.UID, Value: n.UID}
	require.NoError(t, ev.Apply(g))

	assert.Nil(t, g.Get(n.UID))
}

func TestApplyUnknownEventTypeErrors(t *testing.T) {
	g := graph.New("root")
	err := Event{Type: "bogus"}.Apply(g)
	assert.Error(t, err)
}

func mkCreate(uid identity.UUID) Event {
	return Event{Type: Create, Value: map[string]any{"uid": uid, "obj_cls": "node"}}
}

func mkDeleteNode(uid identity.UUID) Event {
	return Event{Type: Delete, Value: uid}
}

func mkUpdate(uid identity.UUID, name string, value any) Event {
	return Event{Type: Update, SourceID: uid, Name: name, Value: value}
}

func mkDeleteAttr(uid identity.UUID, name string) Event {
	return Event{Type: Delete, SourceID: uid, Name: name}
}

func TestCanonicalizeNoStructuralEventsKeepsLastWritePerAttr(t *testing.T) {
	uid := identity.NewUUID()
	events := []Event{
		mkUpdate(uid, "a", 1),
		mkUpdate(uid, "a", 2),
		mkUpdate(uid, "b", "x"),
	}
	out := CanonicalizeEvents(events)
	require.Len(t, out, 2)
	assert.Equal(t, 2, out[0].Value)
	assert.Equal(t, "x", out[1].Value)
}

func TestCanonicalizeCreateThenDeleteDropsEverything(t *testing.T) {
	uid := identity.NewUUID()
	events := []Event{
		mkCreate(uid),
		mkUpdate(uid, "a", 1),
		mkDeleteNode(uid),
	}
	out := CanonicalizeEvents(events)
	assert.Empty(t, out)
}

func TestCanonicalizeDeleteThenCreateKeepsBothStructuralTokens(t *testing.T) {
	uid := identity.NewUUID()
	events := []Event{
		mkDeleteNode(uid),
		mkCreate(uid),
	}
	out := CanonicalizeEvents(events)
	require.Len(t, out, 2)
	assert.Equal(t, Delete, out[0].Type)
	assert.Equal(t, Create, out[1].Type)
}

func TestCanonicalizeAttrsBeforeCreateAreDropped(t *testing.T) {
	uid := identity.NewUUID()
	events := []Event{
		mkUpdate(uid, "a", "stale"),
		mkCreate(uid),
		mkUpdate(uid, "a", "fresh"),
	}
	out := CanonicalizeEvents(events)
	require.Len(t, out, 2)
	assert.Equal(t, Create, out[0].Type)
	assert.Equal(t, "fresh", out[1].Value)
}

func TestCanonicalizeDeleteAttrWinsOverEarlierUpdate(t *testing.T) {
	uid := identity.NewUUID()
	events := []Event{
		mkUpdate(uid, "a", 1),
		mkDeleteAttr(uid, "a"),
	}
	out := CanonicalizeEvents(events)
	require.Len(t, out, 1)
	assert.Equal(t, Delete, out[0].Type)
}

func TestCanonicalizePreservesRelativeOrderAcrossEntities(t *testing.T) {
	u1, u2 := identity.NewUUID(), identity.NewUUID()
	events := []Event{
		mkUpdate(u1, "a", 1),
		mkUpdate(u2, "b", 2),
		mkUpdate(u1, "a", 3),
	}
	out := CanonicalizeEvents(events)
	require.Len(t, out, 2)
	assert.Equal(t, u2, out[0].SourceID)
	assert.Equal(t, u1, out[1].SourceID)
	assert.Equal(t, 3, out[1].Value)
}

func TestPatchApplyIsIdempotentAgainstBaseline(t *testing.T) {
	g := graph.New("root")
	n := graph.NewNode("n")
	require.NoError(t, g.Add(n))

	patch, err := NewPatch(g, []Event{mkUpdate(n.UID, "label", "renamed")})
	require.NoError(t, err)

	g1, err := patch.Apply(g)
	require.NoError(t, err)
	g2, err := patch.Apply(g)
	require.NoError(t, err)

	assert.Equal(t, identity.Label("n"), g.Get(n.UID).(*graph.Node).Label)
	assert.Equal(t, identity.Label("renamed"), g1.Get(n.UID).(*graph.Node).Label)
	assert.Equal(t, identity.Label("renamed"), g2.Get(n.UID).(*graph.Node).Label)
}

func TestPatchApplyRejectsWrongBaseline(t *testing.T) {
	g := graph.New("root")
	n := graph.NewNode("n")
	require.NoError(t, g.Add(n))

	patch, err := NewPatch(g, []Event{mkUpdate(n.UID, "label", "renamed")})
	require.NoError(t, err)

	other := graph.New("root")
	require.NoError(t, other.Add(graph.NewNode("n")))
	_, err = patch.Apply(other)
	assert.Error(t, err)
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := graph.New("root")
	n := graph.NewNode("n")
	require.NoError(t, g.Add(n))

	snap, err := NewSnapshot(g)
	require.NoError(t, err)

	restored, err := snap.Restore()
	require.NoError(t, err)
	assert.NotNil(t, restored.Get(n.UID))
}

func TestRecorderReplayDoesNotMutateSource(t *testing.T) {
	g := graph.New("root")
	n := graph.NewNode("n")
	require.NoError(t, g.Add(n))

	r := NewRecorder()
	r.Submit(mkUpdate(n.UID, "label", "changed"))

	preview, err := r.Replay(g)
	require.NoError(t, err)
	assert.Equal(t, identity.Label("n"), g.Get(n.UID).(*graph.Node).Label)
	assert.Equal(t, identity.Label("changed"), preview.Get(n.UID).(*graph.Node).Label)
}

func TestWatchedListEmitsOneUpdatePerAppend(t *testing.T) {
	uid := identity.NewUUID()
	r := NewRecorder()
	wl := NewWatchedList[int](uid, "items", nil, r)

	wl.Append(1)
	wl.Append(2)

	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, []int{1}, events[0].Value)
	assert.Equal(t, []int{1, 2}, events[1].Value)
}

func TestWatchedDictEmitsSnapshotOnSet(t *testing.T) {
	uid := identity.NewUUID()
	r := NewRecorder()
	wd := NewWatchedDict[string, int](uid, "counts", nil, r)

	wd.Set("a", 1)
	wd.Set("b", 2)

	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, map[string]int{"a": 1}, events[0].Value)
	assert.Equal(t, map[string]int{"a": 1, "b": 2}, events[1].Value)
}

func TestWatchedSetEmitsSnapshotOnAdd(t *testing.T) {
	uid := identity.NewUUID()
	r := NewRecorder()
	ws := NewWatchedSet[string](uid, "tags", nil, r)

	ws.Add("red")
	ws.Add("blue")

	events := r.Events()
	require.Len(t, events, 2)
	assert.Equal(t, map[string]struct{}{"red": {}}, events[0].Value)
	assert.Equal(t, map[string]struct{}{"red": {}, "blue": {}}, events[1].Value)
	assert.True(t, ws.Contains("red"))
	assert.ElementsMatch(t, []string{"red", "blue"}, ws.Items())
}

func TestWatchedSetAddIsIdempotent(t *testing.T) {
	uid := identity.NewUUID()
	r := NewRecorder()
	ws := NewWatchedSet[string](uid, "tags", []string{"red"}, r)

	ws.Add("red")

	assert.Empty(t, r.Events())
}

func TestWatchedSetRemoveEmitsSnapshot(t *testing.T) {
	uid := identity.NewUUID()
	r := NewRecorder()
	ws := NewWatchedSet[string](uid, "tags", []string{"red", "blue"}, r)

	ws.Remove("red")

	events := r.Events()
	require.Len(t, events, 1)
	assert.Equal(t, map[string]struct{}{"blue": {}}, events[0].Value)
	assert.False(t, ws.Contains("red"))
}

func TestWatchedSetRemoveMissingIsNoop(t *testing.T) {
	uid := identity.NewUUID()
	r := NewRecorder()
	ws := NewWatchedSet[string](uid, "tags", nil, r)

	ws.Remove("absent")

	assert.Empty(t, r.Events())
}
