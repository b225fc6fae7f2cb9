//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package ledger

import (
	"encoding/json"

	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/record"
	"github.com/derekmerck/storytangl-sub001/replay"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// decodePayload round-trips a record's already-unstructured payload back
// into T through encoding/json, the inverse of entity.Unstructure (which
// produced the payload the same way). T's fields are addressed by their
// json tags, not mapstructure tags, so this stays a plain json round
// trip rather than entity.Structure's mapstructure decode.
func decodePayload[T any](m map[string]any) (T, error) {
	var out T
	b, err := json.Marshal(m)
	if err != nil {
		return out, vmerrors.Wrap(err, "decode payload: marshal")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, vmerrors.Wrap(err, "decode payload: unmarshal")
	}
	return out, nil
}

// RecoverGraphFromStream rebuilds a Graph from stream's most recent
// Snapshot followed by every later Patch in seq order (spec.md §4.7
// "recover_graph_from_stream").
func RecoverGraphFromStream(stream *record.Stream) (*graph.Graph, error) {
	snapRec, ok := stream.Last("snapshot")
	if !ok {
		return nil, vmerrors.ErrNoSnapshot
	}
	tree, _ := snapRec.Payload["item"].(map[string]any)
	snap := &replay.Snapshot{Item: tree}
	g, err := snap.Restore()
	if err != nil {
		return nil, vmerrors.Wrap(err, "recover: restore snapshot")
	}

	patches := stream.FindAll(func(r record.Record) bool {
		return r.Type == record.TypePatch && r.Seq > snapRec.Seq
	})
	for _, rec := range patches {
		p, err := decodePayload[replay.Patch](rec.Payload)
		if err != nil {
			return nil, vmerrors.Wrapf(err, "recover: decode patch at seq %d", rec.Seq)
		}
		g, err = p.Apply(g)
		if err != nil {
			return nil, vmerrors.Wrapf(err, "recover: apply patch at seq %d", rec.Seq)
		}
	}
	return g, nil
}
