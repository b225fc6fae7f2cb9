//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package record implements the append-only record stream a Ledger uses to
// persist snapshots, patches, and journal fragments in one strictly
// monotonic sequence (spec.md "Record stream & Ledger").
package record

import (
	"time"

	"github.com/derekmerck/storytangl-sub001/identity"
)

// Type names the kind of payload a Record carries. A Record's own Type
// also counts as a channel name, so HasChannel("patch") matches both
// Type == TypePatch and an explicit "channel:patch" tag.
type Type string

const (
	TypeSnapshot Type = "snapshot"
	TypePatch    Type = "patch"
	TypeFragment Type = "fragment"
	TypeFrame    Type = "frame"
)

// Record is an immutable, sequenced stream entry. Seq is assigned by the
// owning Stream on insertion and must not be set by callers.
type Record struct {
	Seq       int64           `json:"seq"`
	Type      Type            `json:"type"`
	Label     string          `json:"label,omitempty"`
	Tags      identity.TagSet `json:"tags,omitempty"`
	Payload   map[string]any  `json:"payload,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// New constructs a Record of the given type with an optional payload. Seq
// is left zero; AddRecord assigns it.
func New(t Type, payload map[string]any, tags ...string) Record {
	return Record{
		Type:      t,
		Tags:      identity.NewTagSet(tags...),
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// HasChannel reports whether the record belongs to channel, either because
// its Type matches (a record's type is always its own default channel) or
// because it carries an explicit "channel:<channel>" tag.
func (r Record) HasChannel(channel string) bool {
	if string(r.Type) == channel {
		return true
	}
	return r.Tags.Has("channel:" + channel)
}
