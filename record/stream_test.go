//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddRecordAssignsMonotonicSeq(t *testing.T) {
	s := NewStream()
	s.AddRecord(New(TypeFragment, nil))
	s.AddRecord(New(TypeFragment, nil))

	items := s.FindAll(nil)
	require.Len(t, items, 2)
	assert.Equal(t, int64(0), items[0].Seq)
	assert.Equal(t, int64(1), items[1].Seq)
	assert.Equal(t, int64(1), s.MaxSeq())
}

func TestPushRecordsSetsMarkerAndReturnsInclusiveBounds(t *testing.T) {
	s := NewStream()
	a := New(TypeFragment, nil, "channel:journal")
	b := New(TypePatch, nil)
	c := New(TypeFragment, nil, "channel:journal")

	start, end, err := s.PushRecords("e1", a, b, c)
	require.NoError(t, err)
	assert.Equal(t, end-start, int64(2))

	sec, err := s.GetSection("e1", "")
	require.NoError(t, err)
	require.Len(t, sec, 3)
}

func TestAdjacentSectionsDoNotOverlap(t *testing.T) {
	s := NewStream()
	_, _, err := s.PushRecords("e1", New(TypeFragment, nil), New(TypeFragment, nil))
	require.NoError(t, err)
	_, _, err = s.PushRecords("e2", New(TypeFragment, nil))
	require.NoError(t, err)

	sec1, err := s.GetSection("e1", "")
	require.NoError(t, err)
	sec2, err := s.GetSection("e2", "")
	require.NoError(t, err)

	assert.Len(t, sec1, 2)
	assert.Len(t, sec2, 1)
	assert.NotEqual(t, sec1[len(sec1)-1].Seq, sec2[0].Seq)
}

func TestGetSectionMissingMarkerErrors(t *testing.T) {
	s := NewStream()
	_, err := s.GetSection("nope", "")
	require.Error(t, err)
}

func TestGetSliceWithPredicate(t *testing.T) {
	s := NewStream()
	a := New(TypeFragment, nil, "channel:journal")
	b := New(TypePatch, nil, "channel:ops")
	c := New(TypeFragment, nil, "channel:journal")
	_, _, err := s.PushRecords("e", a, b, c)
	require.NoError(t, err)

	onlyJournal := s.GetSlice(0, s.MaxSeq()+1, func(r Record) bool { return r.HasChannel("journal") })
	require.Len(t, onlyJournal, 2)
}

func TestIterChannelAndLast(t *testing.T) {
	s := NewStream()
	s.AddRecord(New(TypeFragment, nil, "channel:journal"))
	s.AddRecord(New(TypePatch, nil, "channel:ops"))
	s.AddRecord(New(TypeFragment, nil, "channel:journal"))

	ch := s.IterChannel("journal")
	require.Len(t, ch, 2)

	last, ok := s.Last("journal")
	require.True(t, ok)
	assert.Equal(t, ch[1].Seq, last.Seq)
}

func TestPushMarkerDuplicateErrors(t *testing.T) {
	s := NewStream()
	require.NoError(t, s.PushMarker("chapter1"))
	assert.Error(t, s.PushMarker("chapter1"))
}

func TestEmptyStream(t *testing.T) {
	s := NewStream()
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.FindAll(nil))
	_, err := s.GetSection("notfound", "")
	assert.Error(t, err)
}

func TestHasChannelMatchesTypeAndTag(t *testing.T) {
	r := New(TypePatch, nil, "channel:journal")
	assert.True(t, r.HasChannel("patch"))
	assert.True(t, r.HasChannel("journal"))
	assert.False(t, r.HasChannel("audit"))
}
