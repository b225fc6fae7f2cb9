//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package graph implements the entity graph: nodes, subgraphs, and the
// edge family (Edge, ChoiceEdge, Dependency, Affordance, CallEdge), plus
// the Graph registry that owns them all by uid (spec.md §3 "Graph", §4.1
// "Graph operations"). Ownership is uid-only throughout: nothing in this
// package holds a live pointer across an entity boundary, so the Graph can
// always be serialized, cloned, or torn down without chasing cycles
// (DESIGN.md "Cyclic graph issue").
package graph

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/mohae/deepcopy"

	"github.com/derekmerck/storytangl-sub001/criteria"
	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/require"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// Graph owns every Node, Subgraph and edge by uid. It is itself an entity
// (it has a uid and a label) so it can be nested inside a larger registry
// (the Ledger) and referenced the same way as anything else it contains.
type Graph struct {
	entity.Base

	items map[identity.UUID]entity.Entity // Node and Subgraph, keyed by uid
	edges map[identity.UUID]EdgeLike       // Edge and its variants, keyed by uid
	byTag map[identity.Label][]identity.UUID
}

// New constructs an empty Graph.
func New(label identity.Label, tags ...string) *Graph {
	return &Graph{
		Base:  entity.NewBase(identity.KindSubgraph, label, tags...),
		items: map[identity.UUID]entity.Entity{},
		edges: map[identity.UUID]EdgeLike{},
		byTag: map[identity.Label][]identity.UUID{},
	}
}

// Add registers an existing Node or Subgraph with the graph.
func (g *Graph) Add(item entity.Entity) error {
	switch item.(type) {
	case *Node, *Subgraph:
	default:
		return vmerrors.Wrapf(vmerrors.ErrNotFound, "graph.Add: %T is not a Node or Subgraph", item)
	}
	if existing, ok := g.items[item.GetUID()]; ok && existing != item {
		return vmerrors.Wrapf(vmerrors.ErrDuplicateIdentity, "graph.Add: uid %s already bound to a different item", item.GetUID())
	}
	g.items[item.GetUID()] = item
	if item.GetLabel() != "" {
		g.byTag[item.GetLabel()] = append(g.byTag[item.GetLabel()], item.GetUID())
	}
	return nil
}

// AddEdge registers any edge-family value (Edge, ChoiceEdge, Dependency,
// Affordance, CallEdge) with the graph. The source must already be in the
// graph; a destination that does not resolve is accepted, and following
// such an edge fails with ErrDanglingEdge.
func (g *Graph) AddEdge(e EdgeLike) error {
	if _, ok := g.items[e.Core().SourceID]; !ok {
		return vmerrors.Wrapf(vmerrors.ErrDanglingEdge, "edge %s source %s not in graph", e.GetUID(), e.Core().SourceID)
	}
	g.edges[e.GetUID()] = e
	return nil
}

// RemoveEdge deletes an edge by uid.
func (g *Graph) RemoveEdge(uid identity.UUID) error {
	if _, ok := g.edges[uid]; !ok {
		return vmerrors.Wrapf(vmerrors.ErrNotFound, "edge %s not in graph", uid)
	}
	delete(g.edges, uid)
	return nil
}

// AddFromTree structures a single item or edge from an unstructured map
// (obj_cls discriminated, as produced by entity.Unstructure) and inserts it
// into the graph, re-resolving its Requirement's provider if one is
// already bound by ProviderID. This is the single-entity counterpart of
// Structure, used by replay.Event.Apply to realize a CREATE event (spec.md
// §4.6) without requiring the whole graph to be reloaded.
func (g *Graph) AddFromTree(m map[string]any) (entity.Entity, error) {
	kind, _ := m["obj_cls"].(string)
	switch identity.Kind(kind) {
	case identity.KindEdge, identity.KindChoice, identity.KindCall, identity.KindDependent, identity.KindAfford:
		e, err := structureEdge(m)
		if err != nil {
			return nil, err
		}
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
		if req := edgeRequirement(e); req != nil && req.ProviderID != identity.Nil {
			req.SetProvider(g.items[req.ProviderID])
		}
		return e, nil
	default:
		item, err := structureItem(m)
		if err != nil {
			return nil, err
		}
		if err := g.Add(item); err != nil {
			return nil, err
		}
		return item, nil
	}
}

// AddNode constructs and registers a Node.
func (g *Graph) AddNode(label identity.Label, tags ...string) *Node {
	n := NewNode(label, tags...)
	_ = g.Add(n)
	return n
}

// AddSubgraph constructs and registers a Subgraph, optionally nested under
// parent.
func (g *Graph) AddSubgraph(label identity.Label, parent *Subgraph, tags ...string) *Subgraph {
	sg := NewSubgraph(label, tags...)
	_ = g.Add(sg)
	if parent != nil {
		g.attach(sg, parent)
	}
	return sg
}

// attach assigns child's ParentID and records it in parent's member list,
// refusing to create a containment cycle.
func (g *Graph) attach(child *Node, parent *Subgraph) error {
	if parent == nil {
		child.ParentID = nil
		return nil
	}
	if parent.UID == child.UID {
		return vmerrors.ErrCycleDetected
	}
	for _, anc := range parent.Ancestors(g) {
		if anc.UID == child.UID {
			return vmerrors.ErrCycleDetected
		}
	}
	if old := child.Parent(g); old != nil {
		old.removeMember(child.UID)
	}
	id := parent.UID
	child.ParentID = &id
	if !parent.HasMember(child.UID) {
		parent.MemberIDs = append(parent.MemberIDs, child.UID)
	}
	return nil
}

// Attach is the exported form of attach, for callers outside this package
// building or rearranging the containment tree.
func (g *Graph) Attach(child *Node, parent *Subgraph) error { return g.attach(child, parent) }

// Get resolves any node-family item by uid, or nil if absent.
func (g *Graph) Get(uid identity.UUID) entity.Entity {
	return g.items[uid]
}

// GetEdge resolves any edge-family item by uid, or nil if absent.
func (g *Graph) GetEdge(uid identity.UUID) EdgeLike {
	return g.edges[uid]
}

// GetByLabel resolves a single node-family item by label. Ambiguous or
// absent labels are errors (spec.md §4.1).
func (g *Graph) GetByLabel(label identity.Label) (entity.Entity, error) {
	ids := g.byTag[label]
	switch len(ids) {
	case 0:
		return nil, vmerrors.Wrapf(vmerrors.ErrNotFound, "no item labeled %q", label)
	case 1:
		return g.items[ids[0]], nil
	default:
		return nil, vmerrors.Wrapf(vmerrors.ErrAmbiguousLabel, "label %q matches %d items", label, len(ids))
	}
}

// Edges returns every registered edge, in deterministic (uid-sorted)
// order, for collaborators (e.g. package provision) that need to scan the
// whole edge set rather than one node's incident edges.
func (g *Graph) Edges() []EdgeLike { return g.allEdges() }

// allEdges returns every registered edge, in a stable (sorted by uid
// string) order so traversal is deterministic.
func (g *Graph) allEdges() []EdgeLike {
	out := make([]EdgeLike, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetUID().String() < out[j].GetUID().String() })
	return out
}

// allItems returns every registered node-family item, sorted by uid for
// determinism.
func (g *Graph) allItems() []entity.Entity {
	out := make([]entity.Entity, 0, len(g.items))
	for _, it := range g.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].GetUID().String() < out[j].GetUID().String() })
	return out
}

// FindAll returns every node-family item matching c, in deterministic
// (uid-sorted) order.
func (g *Graph) FindAll(c criteria.Criteria) []entity.Entity {
	var out []entity.Entity
	for _, it := range g.allItems() {
		if c.Match(it) {
			out = append(out, it)
		}
	}
	return out
}

// FindOne returns the first match for c (by the same deterministic order
// as FindAll), or an error if none match.
func (g *Graph) FindOne(c criteria.Criteria) (entity.Entity, error) {
	all := g.FindAll(c)
	if len(all) == 0 {
		return nil, vmerrors.ErrNotFound
	}
	return all[0], nil
}

// Remove deletes a node-family item and every edge touching it.
func (g *Graph) Remove(uid identity.UUID) error {
	item, ok := g.items[uid]
	if !ok {
		return vmerrors.Wrapf(vmerrors.ErrNotFound, "item %s not in graph", uid)
	}
	if sg, ok := item.(*Subgraph); ok {
		for _, memberID := range append([]identity.UUID{}, sg.MemberIDs...) {
			if member, ok := g.items[memberID].(*Node); ok {
				member.ParentID = nil
			}
		}
	}
	if n, ok := item.(*Node); ok {
		if parent := n.Parent(g); parent != nil {
			parent.removeMember(uid)
		}
	}
	for id, e := range g.edges {
		if e.Core().SourceID == uid || (e.Core().DestinationID != nil && *e.Core().DestinationID == uid) {
			delete(g.edges, id)
		}
	}
	delete(g.items, uid)
	if label := item.GetLabel(); label != "" {
		ids := g.byTag[label]
		for i, id := range ids {
			if id == uid {
				g.byTag[label] = append(ids[:i], ids[i+1:]...)
				break
			}
		}
	}
	return nil
}

// Clone returns a deep copy of the graph, independent of the original.
// mohae/deepcopy only walks exported fields (it skips anything whose
// reflect.StructField.PkgPath is non-empty), so copying *Graph directly
// would silently drop its unexported registries; instead each contained
// item/edge (all of whose fields are exported) is deep-copied individually
// and the registries are rebuilt around the copies.
func (g *Graph) Clone() *Graph {
	out := &Graph{
		Base:  g.Base,
		items: make(map[identity.UUID]entity.Entity, len(g.items)),
		edges: make(map[identity.UUID]EdgeLike, len(g.edges)),
		byTag: make(map[identity.Label][]identity.UUID, len(g.byTag)),
	}
	for id, it := range g.items {
		out.items[id] = deepcopy.Copy(it).(entity.Entity)
	}
	for id, e := range g.edges {
		out.edges[id] = deepcopy.Copy(e).(EdgeLike)
	}
	for label, ids := range g.byTag {
		out.byTag[label] = append([]identity.UUID{}, ids...)
	}
	for _, e := range out.edges {
		if req := edgeRequirement(e); req != nil && req.Provider != nil {
			req.Provider = out.items[req.Provider.GetUID()]
		}
	}
	return out
}

// CloneNode deep-copies an existing Node (a fresh uid, independent
// Locals/Tags) and registers the copy in the same subgraph as the
// original, for CloningProvisioner's CLONE policy (spec.md §4.5
// "CloningProvisioner").
func (g *Graph) CloneNode(n *Node) *Node {
	if n == nil {
		return nil
	}
	cp := deepcopy.Copy(n).(*Node)
	cp.UID = identity.NewUUID()
	cp.ParentID = nil
	_ = g.Add(cp)
	if parent := n.Parent(g); parent != nil {
		_ = g.attach(cp, parent)
	}
	return cp
}

// tree is the on-the-wire shape of a Graph (spec.md §6 "Serialization"):
// one list of items and one list of edges, each element kind-discriminated
// by its "obj_cls".
type tree struct {
	ObjCls string           `json:"obj_cls"`
	UID    identity.UUID    `json:"uid"`
	Label  identity.Label   `json:"label,omitempty"`
	Tags   identity.TagSet  `json:"tags,omitempty"`
	Items  []map[string]any `json:"items"`
	Edges  []map[string]any `json:"edges"`
}

// Unstructure renders the graph to the plain-map wire format shared by the
// rest of the core (entity.Unstructure), suitable for json.Marshal or for
// embedding inside a Ledger snapshot.
func (g *Graph) Unstructure() (map[string]any, error) {
	t := tree{ObjCls: string(identity.KindSubgraph), UID: g.UID, Label: g.Label, Tags: g.Tags}
	for _, it := range g.allItems() {
		m, err := entity.Unstructure(it)
		if err != nil {
			return nil, vmerrors.Wrapf(err, "unstructure item %s", it.GetUID())
		}
		t.Items = append(t.Items, m)
	}
	for _, e := range g.allEdges() {
		m, err := entity.Unstructure(e)
		if err != nil {
			return nil, vmerrors.Wrapf(err, "unstructure edge %s", e.GetUID())
		}
		t.Edges = append(t.Edges, m)
	}
	return entity.Unstructure(t)
}

// Structure rebuilds a Graph from the wire format produced by Unstructure,
// dispatching each item/edge by its "obj_cls" tag and re-resolving every
// Requirement's Provider by ProviderID once all items are loaded.
func Structure(tr map[string]any) (*Graph, error) {
	raw, err := json.Marshal(tr)
	if err != nil {
		return nil, vmerrors.Wrap(err, "marshal graph tree")
	}
	var t tree
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, vmerrors.Wrap(err, "unmarshal graph tree")
	}

	g := New(t.Label)
	g.UID = t.UID
	g.Tags = t.Tags

	for _, im := range t.Items {
		item, err := structureItem(im)
		if err != nil {
			return nil, err
		}
		g.items[item.GetUID()] = item
		if item.GetLabel() != "" {
			g.byTag[item.GetLabel()] = append(g.byTag[item.GetLabel()], item.GetUID())
		}
	}
	for _, em := range t.Edges {
		e, err := structureEdge(em)
		if err != nil {
			return nil, err
		}
		g.edges[e.GetUID()] = e
	}

	for _, e := range g.edges {
		if req := edgeRequirement(e); req != nil && req.ProviderID != identity.Nil {
			req.SetProvider(g.items[req.ProviderID])
		}
	}
	return g, nil
}

func edgeRequirement(e EdgeLike) *require.Requirement {
	switch v := e.(type) {
	case *Dependency:
		return v.Requirement
	case *Affordance:
		return v.Requirement
	default:
		return nil
	}
}

func structureItem(m map[string]any) (entity.Entity, error) {
	kind, _ := m["obj_cls"].(string)
	switch identity.Kind(kind) {
	case identity.KindSubgraph:
		return entity.Structure[*Subgraph](m)
	default:
		return entity.Structure[*Node](m)
	}
}

func structureEdge(m map[string]any) (EdgeLike, error) {
	kind, _ := m["obj_cls"].(string)
	switch identity.Kind(kind) {
	case identity.KindChoice:
		return entity.Structure[*ChoiceEdge](m)
	case identity.KindCall:
		return entity.Structure[*CallEdge](m)
	case identity.KindDependent:
		return entity.Structure[*Dependency](m)
	case identity.KindAfford:
		return entity.Structure[*Affordance](m)
	default:
		return entity.Structure[*Edge](m)
	}
}

// StateHash returns a deterministic, order-independent digest of the
// graph's current content: sha256 over each item/edge's canonical JSON
// encoding, combined by XOR so registration order never affects the
// result (spec.md §4.6 "Replay/determinism").
func (g *Graph) StateHash() (string, error) {
	acc := make([]byte, sha256.Size)
	mix := func(v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return err
		}
		sum := sha256.Sum256(b)
		for i := range acc {
			acc[i] ^= sum[i]
		}
		return nil
	}
	for _, it := range g.allItems() {
		m, err := entity.Unstructure(it)
		if err != nil {
			return "", err
		}
		if err := mix(m); err != nil {
			return "", err
		}
	}
	for _, e := range g.allEdges() {
		m, err := entity.Unstructure(e)
		if err != nil {
			return "", err
		}
		if err := mix(m); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(acc), nil
}
