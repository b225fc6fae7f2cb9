//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package handler

// GatherResults returns every receipt's Result, in dispatch order
// (spec.md §4.2 "gather_results").
func GatherResults(receipts []CallReceipt) []any {
	out := make([]any, 0, len(receipts))
	for _, r := range receipts {
		out = append(out, r.Result)
	}
	return out
}

// MergeResults ChainMaps every receipt's map[string]any Result, nearer
// (earlier-dispatched, i.e. higher precedence) results shadowing farther
// ones (spec.md §4.2 "merge_results"). Non-map results are skipped.
func MergeResults(receipts []CallReceipt) map[string]any {
	out := map[string]any{}
	// Later (lower-precedence) receipts are merged first so that an
	// earlier, higher-precedence receipt's keys win on conflict.
	for i := len(receipts) - 1; i >= 0; i-- {
		m, ok := receipts[i].Result.(map[string]any)
		if !ok {
			continue
		}
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// FirstResult returns the first receipt's Result, or nil if receipts is
// empty (spec.md §4.2 "first_result").
func FirstResult(receipts []CallReceipt) any {
	if len(receipts) == 0 {
		return nil
	}
	return receipts[0].Result
}

// LastResult returns the last receipt's Result, or nil if receipts is
// empty (spec.md §4.2 "last_result").
func LastResult(receipts []CallReceipt) any {
	if len(receipts) == 0 {
		return nil
	}
	return receipts[len(receipts)-1].Result
}

// AnyTrue reports whether any receipt's Result is boolean true, short-
// circuiting at the first such receipt (spec.md §4.2 "any_true").
func AnyTrue(receipts []CallReceipt) bool {
	for _, r := range receipts {
		if b, ok := r.Result.(bool); ok && b {
			return true
		}
	}
	return false
}

// AllTrue reports whether every receipt's Result is boolean true,
// short-circuiting at the first false/non-bool receipt (spec.md §4.2
// "all_true"). An empty receipt set is vacuously true.
func AllTrue(receipts []CallReceipt) bool {
	for _, r := range receipts {
		b, ok := r.Result.(bool)
		if !ok || !b {
			return false
		}
	}
	return true
}
