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

// fixture is a minimal Entity with both a struct field (Label, via the
// embedded Base) and a Locals map, the same shape graph.Node exposes to
// GetAttr/SetAttr/DeleteAttr.
type fixture struct {
	Base
	Locals map[string]any
}

func newFixture() *fixture {
	return &fixture{Base: NewBase(identity.KindNode, "n"), Locals: map[string]any{}}
}

func TestGetAttrReadsStructField(t *testing.T) {
	f := newFixture()
	v, ok := GetAttr(f, "label")
	require.True(t, ok)
	assert.Equal(t, identity.Label("n"), v)
}

func TestGetAttrReadsLocalsFallback(t *testing.T) {
	f := newFixture()
	f.Locals["score"] = 3
	v, ok := GetAttr(f, "score")
	require.True(t, ok)
	assert.Equal(t, 3, v)
}

func TestGetAttrMissingReturnsFalse(t *testing.T) {
	f := newFixture()
	_, ok := GetAttr(f, "nonexistent")
	assert.False(t, ok)
}

func TestSetAttrMutatesStructField(t *testing.T) {
	f := newFixture()
	old, err := SetAttr(f, "label", "renamed")
	require.NoError(t, err)
	assert.Equal(t, identity.Label("n"), old)
	assert.Equal(t, identity.Label("renamed"), f.Label)
}

func TestSetAttrMutatesLocalsFallback(t *testing.T) {
	f := newFixture()
	old, err := SetAttr(f, "score", 5)
	require.NoError(t, err)
	assert.Nil(t, old)
	assert.Equal(t, 5, f.Locals["score"])

	old, err = SetAttr(f, "score", 9)
	require.NoError(t, err)
	assert.Equal(t, 5, old)
	assert.Equal(t, 9, f.Locals["score"])
}

func TestSetAttrRejectsUnconvertibleValue(t *testing.T) {
	f := newFixture()
	_, err := SetAttr(f, "label", []int{1, 2, 3})
	assert.Error(t, err)
}

func TestSetAttrOnNilPointerErrors(t *testing.T) {
	var f *fixture
	_, err := SetAttr(f, "label", "x")
	assert.Error(t, err)
}

func TestDeleteAttrRemovesLocalsEntry(t *testing.T) {
	f := newFixture()
	f.Locals["score"] = 3
	old, err := DeleteAttr(f, "score")
	require.NoError(t, err)
	assert.Equal(t, 3, old)
	_, ok := f.Locals["score"]
	assert.False(t, ok)
}

func TestDeleteAttrMissingKeyErrors(t *testing.T) {
	f := newFixture()
	_, err := DeleteAttr(f, "score")
	assert.Error(t, err)
}

func TestDeleteAttrStructFieldErrors(t *testing.T) {
	f := newFixture()
	_, err := DeleteAttr(f, "label")
	assert.Error(t, err)
}
