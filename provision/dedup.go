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
	"sort"

	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/require"
)

// Deduplicate collapses EXISTING offers that share a provider_id down to
// the single cheapest one (smallest (cost, proximity, registration_index)
// lexicographically); CREATE/UPDATE/CLONE offers are never deduplicated,
// since each produces a materially distinct result (spec.md §4.5
// "Deduplication").
func Deduplicate(offers []Offer) []Offer {
	best := map[identity.UUID]Offer{}
	var out []Offer
	for _, o := range offers {
		if o.Policy() != require.PolicyExisting {
			out = append(out, o)
			continue
		}
		providerID := providerIDOf(o)
		existing, ok := best[providerID]
		if !ok || less(o, existing) {
			best[providerID] = o
		}
	}
	for _, o := range best {
		out = append(out, o)
	}
	return out
}

func providerIDOf(o Offer) identity.UUID {
	switch v := o.(type) {
	case *DependencyOffer:
		return v.ProviderID
	case *AffordanceOffer:
		return v.ProviderID
	default:
		return identity.Nil
	}
}

// less orders offers by (cost, proximity, registration_index) ascending,
// the tiebreak spec.md §4.5 names for both deduplication and LATE
// selection.
func less(a, b Offer) bool {
	if a.Cost() != b.Cost() {
		return a.Cost() < b.Cost()
	}
	if a.Proximity() != b.Proximity() {
		return a.Proximity() < b.Proximity()
	}
	return a.RegistrationIndex() < b.RegistrationIndex()
}

// SelectBest returns the cheapest offer in offers by the same (cost,
// proximity, registration_index) order, or nil if offers is empty
// (spec.md §4.5 "LATE — link dependencies").
func SelectBest(offers []Offer) Offer {
	if len(offers) == 0 {
		return nil
	}
	best := offers[0]
	for _, o := range offers[1:] {
		if less(o, best) {
			best = o
		}
	}
	return best
}

// sortedOffers returns a copy of offers ordered cheapest-first by the same
// (cost, proximity, registration_index) tiebreak as less/SelectBest, for
// LATE's offer-fallback loop: when the cheapest offer's Accept() fails, the
// next-cheapest is tried before giving up (spec.md §4.5 "on failure of all
// offers, set requirement.is_unresolvable").
func sortedOffers(offers []Offer) []Offer {
	out := make([]Offer, len(offers))
	copy(out, offers)
	sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}
