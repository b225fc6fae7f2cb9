//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package require implements the Requirement type: the declarative
// statement of what a Dependency or Affordance edge needs, and the policy
// under which planning may satisfy it (spec.md §3 "Requirement").
package require

import (
	"github.com/derekmerck/storytangl-sub001/criteria"
	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/identity"
)

// Policy names how planning may go about satisfying a Requirement.
type Policy string

const (
	// PolicyExisting requires planning to find an existing provider.
	PolicyExisting Policy = "EXISTING"
	// PolicyCreate requires planning to materialize a new provider.
	PolicyCreate Policy = "CREATE"
	// PolicyUpdate finds an existing node then mutates it to qualify.
	PolicyUpdate Policy = "UPDATE"
	// PolicyClone copies a referenced node to produce a new provider.
	PolicyClone Policy = "CLONE"
	// PolicyAny prefers an existing provider, creating one if absent.
	PolicyAny Policy = "ANY"
	// PolicyNoop never resolves on its own (used for synthetic offers).
	PolicyNoop Policy = "NOOP"
)

// Requirement names what a Dependency or Affordance edge needs.
type Requirement struct {
	entity.Base

	// Identifier is an optional label or UUID of a desired provider.
	Identifier string `json:"identifier,omitempty" mapstructure:"identifier,omitempty"`
	// Criteria is the structured match a candidate provider must satisfy.
	Criteria criteria.Criteria `json:"criteria,omitempty" mapstructure:"criteria,omitempty"`
	// Template is an inline template used by CREATE policy; when set it
	// takes precedence over TemplateRef. Collaborators define its shape,
	// the core treats it as an opaque payload materialized by a
	// TemplateProvisioner.
	Template map[string]any `json:"template,omitempty" mapstructure:"template,omitempty"`
	// TemplateRef names a registered template (for scope-anchored lookup),
	// consulted only when Template is nil.
	TemplateRef string `json:"template_ref,omitempty" mapstructure:"template_ref,omitempty"`
	// TokenRef and ReferenceID back CLONE and token instantiation.
	TokenRef    string        `json:"token_ref,omitempty" mapstructure:"token_ref,omitempty"`
	ReferenceID identity.UUID `json:"reference_id,omitempty" mapstructure:"reference_id,omitempty"`

	// Policy controls how planning may satisfy this requirement.
	Policy Policy `json:"policy" mapstructure:"policy"`
	// HardRequirement: failure to satisfy is a planning error when true;
	// when false the requirement may be waived.
	HardRequirement bool `json:"hard_requirement" mapstructure:"hard_requirement"`

	// Provider is set once satisfied. Not serialized directly: a
	// persisted graph resolves providers by uid on structure (see
	// graph.Structure), since Requirement cannot hold a live pointer
	// without reintroducing the ownership cycle (DESIGN.md "Cyclic
	// graph issue").
	Provider entity.Entity `json:"-" mapstructure:"-"`
	// ProviderID mirrors Provider's uid for serialization.
	ProviderID identity.UUID `json:"provider_id,omitempty" mapstructure:"provider_id,omitempty"`
	// IsUnresolvable is a sticky flag set when planning could not satisfy
	// the requirement: a hard one directly, a soft one through Waive.
	IsUnresolvable bool `json:"is_unresolvable,omitempty" mapstructure:"is_unresolvable,omitempty"`
}

// NewRequirement constructs a Requirement with a fresh identity.
func NewRequirement(label identity.Label, policy Policy, hard bool) *Requirement {
	r := &Requirement{
		Base:            entity.NewBase(identity.KindRequirement, label),
		Policy:          policy,
		HardRequirement: hard,
	}
	return r
}

// SatisfiedBy reports whether node satisfies this requirement: the
// identifier (if set) must match node's UID or Label, all criteria must
// match, and for CLONE the ReferenceID must be resolvable (checked by the
// caller, since Requirement has no graph reference — see DESIGN.md
// "Cyclic graph issue").
func (r *Requirement) SatisfiedBy(node entity.Entity) bool {
	if node == nil {
		return false
	}
	if r.Identifier != "" {
		if r.Identifier != node.GetLabel() && r.Identifier != node.GetUID().String() {
			return false
		}
	}
	if !r.Criteria.Match(node) {
		return false
	}
	if r.Policy == PolicyClone && r.ReferenceID == identity.Nil {
		return false
	}
	return true
}

// Satisfied reports whether this requirement already has a bound provider.
func (r *Requirement) Satisfied() bool { return r.Provider != nil }

// SetProvider binds the requirement to provider, keeping ProviderID in
// sync for serialization.
func (r *Requirement) SetProvider(provider entity.Entity) {
	r.Provider = provider
	if provider != nil {
		r.ProviderID = provider.GetUID()
	}
}

// Waive marks a soft requirement as waived without raising, recording the
// fact that no provider could be found (spec.md §7 "UnresolvedSoftRequirement").
func (r *Requirement) Waive() {
	if !r.HardRequirement {
		r.IsUnresolvable = true
	}
}

// ProjectNS returns the namespace entries a satisfied requirement
// contributes to its source node's namespace: {label: provider,
// "{label}_satisfied": bool} (spec.md §3 "Namespace").
func (r *Requirement) ProjectNS() map[string]any {
	if r.Label == "" {
		return nil
	}
	return map[string]any{
		r.Label:            r.Provider,
		r.Label + "_satisfied": r.Satisfied(),
	}
}
