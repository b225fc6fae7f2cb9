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

	"github.com/derekmerck/storytangl-sub001/criteria"
	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/graph"
	reqmod "github.com/derekmerck/storytangl-sub001/require"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// failThenSucceedProvisioner offers a cheap, failing candidate ahead of a
// pricier one that accepts cleanly, so LATE must fall through rather than
// give up after the first Accept() error.
type failThenSucceedProvisioner struct {
	failing  *graph.Node
	fallback *graph.Node
}

func (p failThenSucceedProvisioner) Offers(req *reqmod.Requirement, g *graph.Graph, frontier []*graph.Node) []Offer {
	return []Offer{
		&DependencyOffer{
			ReqID:      req.UID,
			Op:         reqmod.PolicyExisting,
			CostValue:  0,
			ProviderID: p.failing.UID,
			AcceptFn: func() (entity.Entity, error) {
				return nil, vmerrors.Wrap(assert.AnError, "provider rejected acceptance")
			},
		},
		&DependencyOffer{
			ReqID:      req.UID,
			Op:         reqmod.PolicyExisting,
			CostValue:  10,
			ProviderID: p.fallback.UID,
			AcceptFn: func() (entity.Entity, error) {
				return p.fallback, nil
			},
		},
	}
}

func TestPlanAttachesExistingProviderToFrontierDependency(t *testing.T) {
	g := graph.New("g")
	hero := graph.NewNode("hero")
	require.NoError(t, g.Add(hero))
	sword := graph.NewNode("sword", "weapon")
	require.NoError(t, g.Add(sword))

	req := reqmod.NewRequirement("weapon", reqmod.PolicyExisting, true)
	req.Criteria = criteria.Criteria{Label: "sword"}
	dep := graph.NewDependency("weapon_dep", hero.UID, req)
	require.NoError(t, g.AddEdge(dep))

	receipt := Plan(Input{Graph: g, Frontier: []*graph.Node{hero}, Provisioners: []Provisioner{GraphProvisioner{}}})

	assert.Equal(t, 1, receipt.Attached)
	assert.True(t, req.Satisfied())
	assert.Equal(t, sword, req.Provider)
}

func TestPlanRecordsHardFailureWhenNoOfferSatisfiesRequirement(t *testing.T) {
	g := graph.New("g")
	hero := graph.NewNode("hero")
	require.NoError(t, g.Add(hero))

	req := reqmod.NewRequirement("weapon", reqmod.PolicyExisting, true)
	req.Criteria = criteria.Criteria{Label: "sword"}
	dep := graph.NewDependency("weapon_dep", hero.UID, req)
	require.NoError(t, g.AddEdge(dep))

	receipt := Plan(Input{Graph: g, Frontier: []*graph.Node{hero}, Provisioners: []Provisioner{GraphProvisioner{}}})

	assert.True(t, receipt.SoftlockDetected)
	assert.Contains(t, receipt.UnresolvedHardRequirements, req.UID)
	assert.True(t, req.IsUnresolvable)
}

func TestPlanWaivesUnsatisfiedSoftRequirement(t *testing.T) {
	g := graph.New("g")
	hero := graph.NewNode("hero")
	require.NoError(t, g.Add(hero))

	req := reqmod.NewRequirement("trinket", reqmod.PolicyExisting, false)
	req.Criteria = criteria.Criteria{Label: "trinket"}
	dep := graph.NewDependency("trinket_dep", hero.UID, req)
	require.NoError(t, g.AddEdge(dep))

	receipt := Plan(Input{Graph: g, Frontier: []*graph.Node{hero}, Provisioners: []Provisioner{GraphProvisioner{}}})

	assert.False(t, receipt.SoftlockDetected)
	assert.Contains(t, receipt.WaivedSoftRequirements, req.UID)
	assert.True(t, req.IsUnresolvable)
}

func TestPlanBindsAffordanceToMatchingFrontierNode(t *testing.T) {
	g := graph.New("g")
	hero := graph.NewNode("hero", "player")
	require.NoError(t, g.Add(hero))
	shrine := graph.NewNode("shrine")
	require.NoError(t, g.Add(shrine))

	req := reqmod.NewRequirement("blessing", reqmod.PolicyExisting, false)
	req.Criteria = criteria.Criteria{Tags: []string{"player"}}
	aff := graph.NewAffordance("blesses", shrine.UID, req)
	require.NoError(t, g.AddEdge(aff))

	receipt := Plan(Input{Graph: g, Frontier: []*graph.Node{hero}})

	assert.Equal(t, 1, receipt.Attached)
	assert.True(t, req.Satisfied())
	assert.Equal(t, hero, req.Provider)
}

func TestPlanFallsThroughToNextOfferWhenCheapestAcceptFails(t *testing.T) {
	g := graph.New("g")
	hero := graph.NewNode("hero")
	require.NoError(t, g.Add(hero))
	rejectedProvider := graph.NewNode("broken-sword")
	require.NoError(t, g.Add(rejectedProvider))
	goodProvider := graph.NewNode("sword")
	require.NoError(t, g.Add(goodProvider))

	req := reqmod.NewRequirement("weapon", reqmod.PolicyExisting, true)
	dep := graph.NewDependency("weapon_dep", hero.UID, req)
	require.NoError(t, g.AddEdge(dep))

	provisioner := failThenSucceedProvisioner{failing: rejectedProvider, fallback: goodProvider}
	receipt := Plan(Input{Graph: g, Frontier: []*graph.Node{hero}, Provisioners: []Provisioner{provisioner}})

	require.True(t, req.Satisfied())
	assert.Equal(t, goodProvider, req.Provider)
	assert.False(t, req.IsUnresolvable)
	assert.Empty(t, receipt.UnresolvedHardRequirements)
	assert.Equal(t, 1, receipt.Attached)
}

func TestPlanCreatesProviderAndCountsCreated(t *testing.T) {
	g := graph.New("g")
	hero := graph.NewNode("hero")
	require.NoError(t, g.Add(hero))

	req := reqmod.NewRequirement("dagger", reqmod.PolicyCreate, true)
	req.Template = map[string]any{"label": "dagger"}
	dep := graph.NewDependency("dagger_dep", hero.UID, req)
	require.NoError(t, g.AddEdge(dep))

	receipt := Plan(Input{Graph: g, Frontier: []*graph.Node{hero}, Provisioners: []Provisioner{TemplateProvisioner{}}})

	assert.Equal(t, 1, receipt.Created)
	require.True(t, req.Satisfied())
	assert.Equal(t, "dagger", req.Provider.GetLabel())
}
