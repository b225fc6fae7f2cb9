//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package phase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhaseStringNames(t *testing.T) {
	assert.Equal(t, "VALIDATE", VALIDATE.String())
	assert.Equal(t, "POSTREQS", POSTREQS.String())
}

func TestPhaseStringUnknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", Phase(999).String())
}

func TestOrderedExcludesINIT(t *testing.T) {
	got := Ordered()
	assert.NotContains(t, got, INIT)
	assert.Equal(t, []Phase{DISCOVER, VALIDATE, PLANNING, PREREQS, UPDATE, JOURNAL, FINALIZE, POSTREQS}, got)
}

func TestAggregatorForMatchesSpecTable(t *testing.T) {
	cases := []struct {
		phase Phase
		want  Aggregator
	}{
		{VALIDATE, AggAllTrue},
		{PLANNING, AggLast},
		{JOURNAL, AggLast},
		{FINALIZE, AggLast},
		{PREREQS, AggFirst},
		{POSTREQS, AggFirst},
		{DISCOVER, AggGather},
		{UPDATE, AggGather},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, AggregatorFor(c.phase), c.phase.String())
	}
}

func TestValidTriggerOnlyPrereqsAndPostreqs(t *testing.T) {
	assert.True(t, ValidTrigger(PREREQS))
	assert.True(t, ValidTrigger(POSTREQS))
	assert.False(t, ValidTrigger(VALIDATE))
	assert.False(t, ValidTrigger(UPDATE))
}
