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

// BuildReceipt records the outcome of accepting (or failing to accept)
// one offer for one Requirement (spec.md §4.5, "a BuildReceipt is emitted
// per acceptance").
type BuildReceipt struct {
	RequirementID identity.UUID
	Policy        require.Policy
	Provider      entity.Entity
	Success       bool
	HardFailure   bool
	Err           error
}

// PlanningReceipt summarizes a whole LATE/LAST planning pass (spec.md
// §4.5 "LAST — summarize").
type PlanningReceipt struct {
	Attached                  int
	Created                   int
	Updated                   int
	WaivedSoftRequirements     []identity.UUID
	UnresolvedHardRequirements []identity.UUID
	SoftlockDetected           bool
	Receipts                  []BuildReceipt
}

// summarize folds a BuildReceipt into the running PlanningReceipt counts.
func (pr *PlanningReceipt) summarize(br BuildReceipt) {
	pr.Receipts = append(pr.Receipts, br)
	if !br.Success {
		if br.HardFailure {
			pr.UnresolvedHardRequirements = append(pr.UnresolvedHardRequirements, br.RequirementID)
		} else {
			pr.WaivedSoftRequirements = append(pr.WaivedSoftRequirements, br.RequirementID)
		}
		return
	}
	pr.Attached++
	switch br.Policy {
	case require.PolicyCreate:
		pr.Created++
	case require.PolicyUpdate:
		pr.Updated++
	}
}
