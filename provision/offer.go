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
	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/require"
)

// Acceptor materializes an Offer into a bound provider: EXISTING/UPDATE
// return the matched node (mutated in place for UPDATE); CREATE
// instantiates from a template; CLONE deep-copies a referenced node. It
// is supplied by the Provisioner that made the offer, since only that
// provisioner knows how to realize its own policy.
type Acceptor func() (entity.Entity, error)

// Offer is implemented by DependencyOffer and AffordanceOffer.
type Offer interface {
	// RequirementID names the Requirement this offer would satisfy.
	RequirementID() identity.UUID
	// Policy is the requirement-satisfying policy this offer commits to.
	Policy() require.Policy
	// Cost is this offer's total cost (spec.md §4.5 "Cost model").
	Cost() int
	// Proximity is this offer's distance component of Cost.
	Proximity() Proximity
	// RegistrationIndex is the provisioner-assigned tiebreaker (earliest
	// registration wins a cost tie).
	RegistrationIndex() int64
	// Accept realizes the offer, returning the bound provider.
	Accept() (entity.Entity, error)
}

// DependencyOffer carries (requirement_id, operation, cost, proximity,
// acceptor) for a Dependency (spec.md §4.5).
type DependencyOffer struct {
	ReqID     identity.UUID
	Op        require.Policy
	CostValue int
	Prox      Proximity
	RegIndex  int64
	AcceptFn  Acceptor

	// ProviderID identifies the candidate provider for EXISTING offers,
	// used by deduplication ("identical provider_id").
	ProviderID identity.UUID
}

func (o *DependencyOffer) RequirementID() identity.UUID   { return o.ReqID }
func (o *DependencyOffer) Policy() require.Policy          { return o.Op }
func (o *DependencyOffer) Cost() int                       { return o.CostValue }
func (o *DependencyOffer) Proximity() Proximity            { return o.Prox }
func (o *DependencyOffer) RegistrationIndex() int64        { return o.RegIndex }
func (o *DependencyOffer) Accept() (entity.Entity, error)  { return o.AcceptFn() }

// AffordanceOffer carries (affordance_id, requirement_id, cost, proximity,
// acceptor, target_tags) addressing every frontier node matching
// target_tags (spec.md §4.5).
type AffordanceOffer struct {
	AffordanceID identity.UUID
	ReqID        identity.UUID
	Op           require.Policy
	CostValue    int
	Prox         Proximity
	RegIndex     int64
	AcceptFn     Acceptor
	TargetTags   []string

	ProviderID identity.UUID
}

func (o *AffordanceOffer) RequirementID() identity.UUID  { return o.ReqID }
func (o *AffordanceOffer) Policy() require.Policy         { return o.Op }
func (o *AffordanceOffer) Cost() int                      { return o.CostValue }
func (o *AffordanceOffer) Proximity() Proximity           { return o.Prox }
func (o *AffordanceOffer) RegistrationIndex() int64       { return o.RegIndex }
func (o *AffordanceOffer) Accept() (entity.Entity, error) { return o.AcceptFn() }

// Matches reports whether the offer's target_tags are satisfied by node's
// tags (spec.md §4.5 "NORMAL — link affordances").
func (o *AffordanceOffer) Matches(node entity.Entity) bool {
	if len(o.TargetTags) == 0 {
		return true
	}
	return node.GetTags().HasAll(o.TargetTags...)
}
