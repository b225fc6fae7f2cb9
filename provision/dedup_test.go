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

	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/require"
)

func existingOffer(providerID identity.UUID, cost int, reg int64) *DependencyOffer {
	return &DependencyOffer{
		ReqID:      identity.NewUUID(),
		Op:         require.PolicyExisting,
		CostValue:  cost,
		Prox:       ProximitySameNode,
		RegIndex:   reg,
		ProviderID: providerID,
		AcceptFn:   func() (entity.Entity, error) { return nil, nil },
	}
}

func TestDeduplicateCollapsesSameProviderToCheapest(t *testing.T) {
	pid := identity.NewUUID()
	cheap := existingOffer(pid, 5, 2)
	expensive := existingOffer(pid, 20, 1)

	out := Deduplicate([]Offer{expensive, cheap})
	assert.Len(t, out, 1)
	assert.Same(t, cheap, out[0])
}

func TestDeduplicateNeverCollapsesCreateOffers(t *testing.T) {
	a := &DependencyOffer{ReqID: identity.NewUUID(), Op: require.PolicyCreate, CostValue: 100, AcceptFn: func() (entity.Entity, error) { return nil, nil }}
	b := &DependencyOffer{ReqID: identity.NewUUID(), Op: require.PolicyCreate, CostValue: 100, AcceptFn: func() (entity.Entity, error) { return nil, nil }}

	out := Deduplicate([]Offer{a, b})
	assert.Len(t, out, 2)
}

func TestSelectBestOrdersByCostThenProximityThenRegistrationIndex(t *testing.T) {
	cheapest := &DependencyOffer{CostValue: 0, Prox: ProximitySameNode, RegIndex: 5, AcceptFn: func() (entity.Entity, error) { return nil, nil }}
	costTie1 := &DependencyOffer{CostValue: 10, Prox: ProximitySameSubgraph, RegIndex: 9, AcceptFn: func() (entity.Entity, error) { return nil, nil }}
	costTie2 := &DependencyOffer{CostValue: 10, Prox: ProximitySameSubgraph, RegIndex: 1, AcceptFn: func() (entity.Entity, error) { return nil, nil }}

	assert.Same(t, cheapest, SelectBest([]Offer{costTie1, cheapest, costTie2}))
	assert.Same(t, costTie2, SelectBest([]Offer{costTie1, costTie2}))
}

func TestSelectBestEmptyReturnsNil(t *testing.T) {
	assert.Nil(t, SelectBest(nil))
}
