//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package domain

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/phase"
)

func TestFrameBindingsRendersTheFourFrameKeys(t *testing.T) {
	cursor := identity.NewUUID()
	dc := NewContext(nil, cursor, 3, phase.UPDATE, rand.New(rand.NewSource(1)))

	bindings := dc.FrameBindings()
	assert.Equal(t, cursor, bindings["cursor"])
	assert.Equal(t, 3, bindings["epoch"])
	assert.Equal(t, phase.UPDATE.String(), bindings["phase"])
	assert.NotNil(t, bindings["rand"])
}

func TestWithContextAndFromContextRoundTrip(t *testing.T) {
	dc := NewContext(nil, identity.NewUUID(), 0, phase.VALIDATE, rand.New(rand.NewSource(1)))
	ctx := WithContext(context.Background(), dc)

	assert.Same(t, dc, FromContext(ctx))
}

func TestFromContextWithoutEmbeddedContextReturnsNil(t *testing.T) {
	assert.Nil(t, FromContext(context.Background()))
}
