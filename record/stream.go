//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package record

import (
	"sort"
	"sync"

	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// Stream is the append-only, monotonically-sequenced record log backing a
// Ledger (spec.md "Record stream & Ledger" / §4.7). Markers bookmark a seq
// so a later section of the stream (e.g. one resolution step's fragments)
// can be retrieved as a half-open range; markers are bookkeeping only and
// do not themselves consume a seq or occupy a Record slot.
type Stream struct {
	mu      sync.Mutex
	records []Record
	nextSeq int64

	// Markers maps a bookmark name to the seq of the first record that
	// follows it, the lower (inclusive) bound of its section.
	Markers map[string]int64
}

// NewStream constructs an empty record stream.
func NewStream() *Stream {
	return &Stream{Markers: map[string]int64{}}
}

// AddRecord appends r, assigning it the next monotonic seq, and returns the
// stored copy (with Seq populated).
func (s *Stream) AddRecord(r Record) Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(r)
}

func (s *Stream) addLocked(r Record) Record {
	r.Seq = s.nextSeq
	s.nextSeq++
	s.records = append(s.records, r)
	return r
}

// Len reports how many records the stream holds.
func (s *Stream) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// MaxSeq returns the seq of the most recently added record, or -1 if empty.
func (s *Stream) MaxSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.records) == 0 {
		return -1
	}
	return s.records[len(s.records)-1].Seq
}

// PushMarker bookmarks name at the seq of the next record to be added.
// Re-using an existing marker name is an error (spec.md's markers are
// write-once bookmarks, matching the teacher corpus's immutable-record
// discipline).
func (s *Stream) PushMarker(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Markers[name]; exists {
		return vmerrors.Wrapf(vmerrors.ErrDuplicateIdentity, "marker %q already set", name)
	}
	s.Markers[name] = s.nextSeq
	return nil
}

// PushRecords bookmarks markerName at the first of recs, then appends every
// record in recs, returning the inclusive [start, end] seq bounds of the
// section it just wrote.
func (s *Stream) PushRecords(markerName string, recs ...Record) (start, end int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.Markers[markerName]; exists {
		return 0, 0, vmerrors.Wrapf(vmerrors.ErrDuplicateIdentity, "marker %q already set", markerName)
	}
	start = s.nextSeq
	s.Markers[markerName] = start
	for _, r := range recs {
		s.addLocked(r)
	}
	end = s.nextSeq - 1
	return start, end, nil
}

// GetSection returns every record in the half-open range bookmarked by
// markerName: from its seq up to (but excluding) the seq of the next
// marker in stream order, or the end of the stream if none follows.
// channel, if non-empty, additionally filters by Record.HasChannel.
func (s *Stream) GetSection(markerName, channel string) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start, ok := s.Markers[markerName]
	if !ok {
		return nil, vmerrors.Wrapf(vmerrors.ErrNotFound, "marker %q", markerName)
	}
	end := s.nextSeq
	for _, seq := range s.Markers {
		if seq > start && seq < end {
			end = seq
		}
	}
	return s.sliceLocked(start, end, channel), nil
}

// GetSlice returns every record with startSeq <= seq < endSeq, additionally
// filtered by predicate if non-nil.
func (s *Stream) GetSlice(startSeq, endSeq int64, predicate func(Record) bool) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if r.Seq < startSeq || r.Seq >= endSeq {
			continue
		}
		if predicate != nil && !predicate(r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func (s *Stream) sliceLocked(startSeq, endSeq int64, channel string) []Record {
	var out []Record
	for _, r := range s.records {
		if r.Seq < startSeq || r.Seq >= endSeq {
			continue
		}
		if channel != "" && !r.HasChannel(channel) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// FindAll returns every record matching predicate (nil matches all),
// sorted by seq ascending.
func (s *Stream) FindAll(predicate func(Record) bool) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Record
	for _, r := range s.records {
		if predicate == nil || predicate(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out
}

// IterChannel returns every record belonging to channel, in seq order.
func (s *Stream) IterChannel(channel string) []Record {
	return s.FindAll(func(r Record) bool { return r.HasChannel(channel) })
}

// Last returns the most recent record in channel (or the stream's last
// record if channel is empty), and false if none match.
func (s *Stream) Last(channel string) (Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.records) - 1; i >= 0; i-- {
		r := s.records[i]
		if channel == "" || r.HasChannel(channel) {
			return r, true
		}
	}
	return Record{}, false
}
