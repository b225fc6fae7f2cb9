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
	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/require"
)

// TaskGetProvisioners is the handler task dispatched by scope to discover
// Provisioners for the EARLY planning stage (spec.md §4.5 "EARLY").
const TaskGetProvisioners = "get_provisioners"

// Provisioner proposes Offers for a Requirement against the current
// graph. frontier is the set of nodes planning currently considers (the
// dependent/affordance-bearing nodes reached this step).
type Provisioner interface {
	Offers(req *require.Requirement, g *graph.Graph, frontier []*graph.Node) []Offer
}
