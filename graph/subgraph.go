//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package graph

import (
	"github.com/derekmerck/storytangl-sub001/identity"
)

// Subgraph is a Node that also owns an ordered list of member node ids.
// Subgraphs nest, forming a containment tree (spec.md §3 "Graph").
type Subgraph struct {
	Node
	MemberIDs []identity.UUID `json:"member_ids,omitempty" mapstructure:"member_ids,omitempty"`
}

// NewSubgraph constructs an empty Subgraph.
func NewSubgraph(label identity.Label, tags ...string) *Subgraph {
	sg := &Subgraph{Node: *NewNode(label, tags...)}
	sg.Kind = identity.KindSubgraph
	return sg
}

func (sg *Subgraph) labelOrUID() string { return sg.Node.labelOrUID() }

// HasMember reports whether id is already a member.
func (sg *Subgraph) HasMember(id identity.UUID) bool {
	for _, m := range sg.MemberIDs {
		if m == id {
			return true
		}
	}
	return false
}

// removeMember deletes id from the member list, if present.
func (sg *Subgraph) removeMember(id identity.UUID) {
	for i, m := range sg.MemberIDs {
		if m == id {
			sg.MemberIDs = append(sg.MemberIDs[:i], sg.MemberIDs[i+1:]...)
			return
		}
	}
}
