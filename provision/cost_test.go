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

	"github.com/derekmerck/storytangl-sub001/require"
)

func TestCostAddsBaseCostAndProximityPenalty(t *testing.T) {
	assert.Equal(t, 0, Cost(require.PolicyExisting, ProximitySameNode))
	assert.Equal(t, 5, Cost(require.PolicyExisting, ProximitySameSubgraph))
	assert.Equal(t, 10, Cost(require.PolicyUpdate, ProximitySameNode))
	assert.Equal(t, 55, Cost(require.PolicyClone, ProximitySameSubgraph))
	assert.Equal(t, 120, Cost(require.PolicyCreate, ProximityDistant))
}

func TestCostDefaultsUnknownPolicyToCreateBand(t *testing.T) {
	assert.Equal(t, 100, Cost(require.Policy("BOGUS"), ProximitySameNode))
}
