//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package vm implements the Resolution Frame (spec.md §4.4): the
// ephemeral evaluator that advances a cursor one edge at a time, running
// the fixed VALIDATE/PLANNING/PREREQS/UPDATE/JOURNAL/FINALIZE/POSTREQS
// pipeline and committing a Patch per step when event-sourcing is
// enabled. Grounded on original_source/engine/src/tangl/vm/frame.py for
// the phase sequence and on the teacher's graph/executor.go superstep
// loop for the Go control-flow idiom (an explicit loop over a
// trampolined redirect rather than Python's generator-based step).
package vm

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math/rand"

	"github.com/derekmerck/storytangl-sub001/domain"
	"github.com/derekmerck/storytangl-sub001/entity"
	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/handler"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/journal"
	"github.com/derekmerck/storytangl-sub001/phase"
	"github.com/derekmerck/storytangl-sub001/provision"
	"github.com/derekmerck/storytangl-sub001/record"
	"github.com/derekmerck/storytangl-sub001/replay"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
	"github.com/derekmerck/storytangl-sub001/vmlog"
)

// DefaultMaxCallStackDepth is the call-stack bound FollowEdge enforces
// when Frame.MaxCallStackDepth is left at zero (spec.md §4.4 "Overflow
// protection").
const DefaultMaxCallStackDepth = 50

// CallFrame records one pushed call, restored when the callee eventually
// returns (spec.md §3 "CallEdge").
type CallFrame struct {
	ReturnCursorID identity.UUID
	CallType       graph.CallType
}

// Frame is the ephemeral per-step evaluator (spec.md §4.4 "State").
type Frame struct {
	Graph             *graph.Graph
	CursorID          identity.UUID
	Step              int
	CallStack         []CallFrame
	CursorHistory     []identity.UUID
	DomainRegistries  []*handler.Registry
	Records           *record.Stream
	LocalBehaviors    *handler.Registry
	EventSourced      bool
	EventWatcher      *replay.Recorder
	Provisioners      []provision.Provisioner
	MaxCallStackDepth int

	// workingGraph is the disposable preview graph VALIDATE/PLANNING/
	// PREREQS/UPDATE run against while EventSourced is true (spec.md §5
	// "Transaction discipline"): a deep copy of Graph, built fresh each
	// step by replaying the (empty, just-cleared) event buffer onto a
	// clone. Handlers read and mutate this copy, never Graph itself, so a
	// HandlerFailure mid-step leaves Graph untouched; Graph is swapped for
	// the preview only once FINALIZE succeeds and the Patch is committed.
	workingGraph *graph.Graph
}

// NewFrame constructs a Frame positioned at cursor, recording into
// records and dispatching handlers through registries (nearest first).
func NewFrame(g *graph.Graph, cursor identity.UUID, records *record.Stream, registries ...*handler.Registry) *Frame {
	return &Frame{
		Graph:             g,
		CursorID:          cursor,
		CursorHistory:     []identity.UUID{cursor},
		DomainRegistries:  registries,
		Records:           records,
		LocalBehaviors:    handler.NewRegistry(),
		EventWatcher:      replay.NewRecorder(),
		MaxCallStackDepth: DefaultMaxCallStackDepth,
	}
}

// registries returns every registry this frame dispatches through,
// nearest first, with LocalBehaviors (the ad-hoc inline registry) always
// consulted last.
func (f *Frame) registries() []*handler.Registry {
	return append(append([]*handler.Registry{}, f.DomainRegistries...), f.LocalBehaviors)
}

// rng seeds the frame's deterministic generator from hash(graph.uid,
// step, cursor.uid), guaranteeing replay equivalence across runs
// (spec.md §4.4 "Determinism").
func (f *Frame) rng() *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(f.Graph.UID.String()))
	var step [8]byte
	binary.BigEndian.PutUint64(step[:], uint64(f.Step))
	h.Write(step[:])
	h.Write([]byte(f.CursorID.String()))
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// activeGraph returns the graph the current step dispatches handlers
// against: the disposable preview while one is under construction
// (EventSourced steps), or the committed Graph directly otherwise.
func (f *Frame) activeGraph() *graph.Graph {
	if f.workingGraph != nil {
		return f.workingGraph
	}
	return f.Graph
}

// cursorNode resolves the current cursor to its underlying Node (a
// Subgraph's embedded Node, if the cursor sits on one) within activeGraph.
func (f *Frame) cursorNode() *graph.Node {
	switch v := f.activeGraph().Get(f.CursorID).(type) {
	case *graph.Node:
		return v
	case *graph.Subgraph:
		return &v.Node
	default:
		return nil
	}
}

func (f *Frame) scope() *domain.Scope {
	return domain.NewScope(f.activeGraph(), f.CursorID, f.registries()...)
}

// dispatch runs every handler bound to p's phase name across the
// frame's registries, scoped by the current cursor's namespace chain,
// and reduces the resulting CallReceipts per phase.AggregatorFor(p).
// args are appended after the standard (ctx, caller, ns) signature so a
// phase can hand its handlers extra context (e.g. PLANNING's receipt).
func (f *Frame) dispatch(ctx context.Context, p phase.Phase, args ...any) (any, error) {
	sc := f.scope()
	dc := domain.NewContext(sc, f.CursorID, f.Step, p, f.rng())
	stdctx := domain.WithContext(ctx, dc)
	n := sc.NS(stdctx, dc.FrameBindings())

	receipts := handler.ChainDispatch(stdctx, f.cursorNode(), p.String(), n, f.registries(), args...)
	for _, r := range receipts {
		if r.Err != nil {
			return nil, vmerrors.Wrapf(r.Err, "phase %s: handler %s", p, r.HandlerID)
		}
	}
	return reduce(phase.AggregatorFor(p), receipts), nil
}

func reduce(agg phase.Aggregator, receipts []handler.CallReceipt) any {
	switch agg {
	case phase.AggAllTrue:
		for _, r := range receipts {
			if b, ok := r.Result.(bool); ok && !b {
				return false
			}
		}
		return true
	case phase.AggGather:
		out := make([]any, 0, len(receipts))
		for _, r := range receipts {
			if r.Result != nil {
				out = append(out, r.Result)
			}
		}
		return out
	case phase.AggFirst:
		for _, r := range receipts {
			if r.Result != nil {
				return r.Result
			}
		}
		return nil
	case phase.AggLast:
		var last any
		for _, r := range receipts {
			if r.Result != nil {
				last = r.Result
			}
		}
		return last
	default:
		return nil
	}
}

func (f *Frame) maxCallStackDepth() int {
	if f.MaxCallStackDepth > 0 {
		return f.MaxCallStackDepth
	}
	return DefaultMaxCallStackDepth
}

// StepMarker renders the record-stream marker name for step (spec.md §6
// "Marker record", "step-NNNN" zero-padded).
func StepMarker(step int) string { return fmt.Sprintf("step-%04d", step) }

func (f *Frame) stepMarker() string { return StepMarker(f.Step) }

// FollowEdge advances the cursor across edge and runs one full phase
// pipeline, returning a redirect edge if PREREQS or POSTREQS produced
// one (spec.md §4.4 "Edge-following loop").
func (f *Frame) FollowEdge(ctx context.Context, edge graph.EdgeLike) (graph.EdgeLike, error) {
	dest := edge.Core().DestinationID
	if dest == nil || f.Graph.Get(*dest) == nil {
		return nil, vmerrors.Wrapf(vmerrors.ErrDanglingEdge, "edge %s has a missing destination", edge.GetUID())
	}

	if ce, ok := edge.(*graph.CallEdge); ok && ce.IsCall {
		if len(f.CallStack) >= f.maxCallStackDepth() {
			return nil, vmerrors.Wrapf(vmerrors.ErrStackOverflow, "call stack exceeds %d frames", f.maxCallStackDepth())
		}
		f.CallStack = append(f.CallStack, CallFrame{ReturnCursorID: f.CursorID, CallType: ce.CallType})
	}

	f.Step++
	f.CursorID = *dest
	f.CursorHistory = append(f.CursorHistory, f.CursorID)
	f.EventWatcher.Clear()
	vmlog.Debugf("follow_edge: step %d cursor -> %s via %s", f.Step, f.CursorID, edge.GetUID())

	preStateHash, err := f.Graph.StateHash()
	if err != nil {
		return nil, vmerrors.Wrap(err, "follow_edge: hash pre-step graph")
	}
	if err := f.Records.PushMarker(f.stepMarker()); err != nil {
		return nil, vmerrors.Wrap(err, "follow_edge: mark step")
	}

	if f.EventSourced {
		preview, err := f.EventWatcher.Replay(f.Graph)
		if err != nil {
			return nil, vmerrors.Wrap(err, "follow_edge: build preview graph")
		}
		f.workingGraph = preview
	}
	// From here, every dispatch runs against activeGraph (the preview when
	// EventSourced, f.Graph directly otherwise). An early return below
	// leaves f.Graph untouched: the preview is only ever committed in
	// place of f.Graph after FINALIZE succeeds, below.
	defer func() { f.workingGraph = nil }()

	valid, err := f.dispatch(ctx, phase.VALIDATE)
	if err != nil {
		return nil, err
	}
	if ok, _ := valid.(bool); !ok {
		vmlog.Warnf("follow_edge: cursor %s rejected by VALIDATE", f.CursorID)
		return nil, vmerrors.Wrapf(vmerrors.ErrInvalidCursor, "cursor %s rejected by VALIDATE", f.CursorID)
	}

	var frontier []*graph.Node
	if n := f.cursorNode(); n != nil {
		frontier = append(frontier, n)
	}
	planReceipt := provision.Plan(provision.Input{Graph: f.activeGraph(), Frontier: frontier, Provisioners: f.Provisioners})
	if _, err := f.dispatch(ctx, phase.PLANNING, planReceipt); err != nil {
		return nil, err
	}

	if redirect, err := f.redirectPhase(ctx, phase.PREREQS); redirect != nil || err != nil {
		return redirect, err
	}

	if _, err := f.dispatch(ctx, phase.UPDATE); err != nil {
		return nil, err
	}

	fragOutcome, err := f.dispatch(ctx, phase.JOURNAL)
	if err != nil {
		return nil, err
	}
	f.pushJournal(fragOutcome)

	if _, err := f.dispatch(ctx, phase.FINALIZE); err != nil {
		return nil, err
	}
	if f.EventSourced {
		if err := f.commitPatch(preStateHash); err != nil {
			return nil, err
		}
		// Commit: the preview becomes the new canonical graph. Only
		// reachable once every phase above has returned without error.
		f.Graph = f.workingGraph
		vmlog.Debugf("follow_edge: step %d committed patch (%d events)", f.Step, len(f.EventWatcher.Events()))
	}

	return f.redirectPhase(ctx, phase.POSTREQS)
}

// redirectPhase runs p (PREREQS or POSTREQS) and type-asserts its
// outcome to an EdgeLike redirect, the shape both phases share.
func (f *Frame) redirectPhase(ctx context.Context, p phase.Phase) (graph.EdgeLike, error) {
	outcome, err := f.dispatch(ctx, p)
	if err != nil {
		return nil, err
	}
	redirect, _ := outcome.(graph.EdgeLike)
	return redirect, nil
}

// ResolveChoice trampolines FollowEdge until it returns no further
// redirect (spec.md §4.4 "resolve_choice").
func (f *Frame) ResolveChoice(ctx context.Context, edge graph.EdgeLike) error {
	next := edge
	for next != nil {
		var err error
		next, err = f.FollowEdge(ctx, next)
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *Frame) pushJournal(outcome any) {
	frags, _ := outcome.([]journal.Fragment)
	for _, frag := range frags {
		payload, err := entity.Unstructure(frag)
		if err != nil {
			continue
		}
		f.Records.AddRecord(record.New(record.TypeFragment, payload, frag.Tags.Sorted()...))
	}
}

func (f *Frame) commitPatch(preStateHash string) error {
	events := replay.CanonicalizeEvents(f.EventWatcher.Events())
	p := &replay.Patch{RegistryID: f.Graph.UID, RegistryStateHash: preStateHash, Events: events}
	payload, err := entity.Unstructure(p)
	if err != nil {
		return vmerrors.Wrap(err, "commit patch: unstructure")
	}
	f.Records.AddRecord(record.New(record.TypePatch, payload, "channel:patch"))
	return nil
}
