//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package replay

import (
	"github.com/mohae/deepcopy"

	"github.com/derekmerck/storytangl-sub001/graph"
	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// Recorder collects Events emitted while a step's UPDATE phase runs, the
// Go analogue of the reference implementation's ReplayWatcher
// (events.py). The reference proxies attribute assignment transparently;
// Go has no such interception (DESIGN.md "Watched proxies vs immutable
// updates"), so handlers submit explicitly, either directly or through a
// WatchedList/WatchedDict wrapper.
type Recorder struct {
	events []Event
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Submit appends e to the recorded event buffer.
func (r *Recorder) Submit(e Event) { r.events = append(r.events, e) }

// Events returns a copy of the events recorded so far, in submission
// order.
func (r *Recorder) Events() []Event {
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Clear empties the event buffer (used between steps).
func (r *Recorder) Clear() { r.events = nil }

// Replay deep-copies g and applies every recorded event in submission
// order, returning the resulting preview graph without mutating g (spec.md
// §4.4 "get_preview_graph" / §5 "Transaction discipline").
func (r *Recorder) Replay(g *graph.Graph) (*graph.Graph, error) {
	preview := g.Clone()
	for i, e := range r.events {
		if err := e.Apply(preview); err != nil {
			return nil, vmerrors.Wrapf(err, "recorder replay: event %d", i)
		}
	}
	return preview, nil
}

// WatchedList wraps a mutable slice-valued attribute so every mutating
// operation emits a single UPDATE event carrying a deep snapshot of the
// whole slice (spec.md §4.6 "WatchedList emits a single UPDATE per
// mutating operation with a deep snapshot of the top-level attribute
// value").
type WatchedList[T any] struct {
	sourceID identity.UUID
	name     string
	items    []T
	recorder *Recorder
}

// NewWatchedList wraps initial as the Name attribute of the entity
// identified by sourceID.
func NewWatchedList[T any](sourceID identity.UUID, name string, initial []T, r *Recorder) *WatchedList[T] {
	return &WatchedList[T]{sourceID: sourceID, name: name, items: initial, recorder: r}
}

// Items returns the current slice value.
func (w *WatchedList[T]) Items() []T { return w.items }

// Append adds item and emits one UPDATE snapshotting the new slice.
func (w *WatchedList[T]) Append(item T) {
	old := w.snapshot()
	w.items = append(w.items, item)
	w.emit(old)
}

// Remove deletes the element at index and emits one UPDATE.
func (w *WatchedList[T]) Remove(index int) {
	if index < 0 || index >= len(w.items) {
		return
	}
	old := w.snapshot()
	w.items = append(w.items[:index], w.items[index+1:]...)
	w.emit(old)
}

// Set replaces the whole slice and emits one UPDATE.
func (w *WatchedList[T]) Set(items []T) {
	old := w.snapshot()
	w.items = items
	w.emit(old)
}

func (w *WatchedList[T]) snapshot() any {
	return deepcopy.Copy(w.items)
}

func (w *WatchedList[T]) emit(old any) {
	if w.recorder == nil {
		return
	}
	w.recorder.Submit(Event{SourceID: w.sourceID, Type: Update, Name: w.name, Value: w.snapshot(), OldValue: old})
}

// WatchedDict wraps a mutable map-valued attribute so every mutating
// operation emits a single UPDATE event carrying a deep snapshot of the
// whole map (spec.md §4.6 "WatchedDict").
type WatchedDict[K comparable, V any] struct {
	sourceID identity.UUID
	name     string
	items    map[K]V
	recorder *Recorder
}

// NewWatchedDict wraps initial as the Name attribute of the entity
// identified by sourceID.
func NewWatchedDict[K comparable, V any](sourceID identity.UUID, name string, initial map[K]V, r *Recorder) *WatchedDict[K, V] {
	if initial == nil {
		initial = map[K]V{}
	}
	return &WatchedDict[K, V]{sourceID: sourceID, name: name, items: initial, recorder: r}
}

// Items returns the current map value.
func (w *WatchedDict[K, V]) Items() map[K]V { return w.items }

// Set binds key to value and emits one UPDATE.
func (w *WatchedDict[K, V]) Set(key K, value V) {
	old := w.snapshot()
	w.items[key] = value
	w.emit(old)
}

// Delete removes key and emits one UPDATE.
func (w *WatchedDict[K, V]) Delete(key K) {
	if _, ok := w.items[key]; !ok {
		return
	}
	old := w.snapshot()
	delete(w.items, key)
	w.emit(old)
}

func (w *WatchedDict[K, V]) snapshot() any {
	return deepcopy.Copy(w.items)
}

func (w *WatchedDict[K, V]) emit(old any) {
	if w.recorder == nil {
		return
	}
	w.recorder.Submit(Event{SourceID: w.sourceID, Type: Update, Name: w.name, Value: w.snapshot(), OldValue: old})
}

// WatchedSet wraps a mutable set-valued attribute so every mutating
// operation emits a single UPDATE event carrying a deep snapshot of the
// whole set (spec.md §4.6 "WatchedSet").
type WatchedSet[T comparable] struct {
	sourceID identity.UUID
	name     string
	items    map[T]struct{}
	recorder *Recorder
}

// NewWatchedSet wraps initial as the Name attribute of the entity
// identified by sourceID.
func NewWatchedSet[T comparable](sourceID identity.UUID, name string, initial []T, r *Recorder) *WatchedSet[T] {
	items := make(map[T]struct{}, len(initial))
	for _, v := range initial {
		items[v] = struct{}{}
	}
	return &WatchedSet[T]{sourceID: sourceID, name: name, items: items, recorder: r}
}

// Items returns the current set members in no particular order.
func (w *WatchedSet[T]) Items() []T {
	out := make([]T, 0, len(w.items))
	for v := range w.items {
		out = append(out, v)
	}
	return out
}

// Contains reports whether value is a member of the set.
func (w *WatchedSet[T]) Contains(value T) bool {
	_, ok := w.items[value]
	return ok
}

// Add inserts value and emits one UPDATE, or does nothing if value is
// already a member.
func (w *WatchedSet[T]) Add(value T) {
	if _, ok := w.items[value]; ok {
		return
	}
	old := w.snapshot()
	w.items[value] = struct{}{}
	w.emit(old)
}

// Remove deletes value and emits one UPDATE, or does nothing if value is
// not a member.
func (w *WatchedSet[T]) Remove(value T) {
	if _, ok := w.items[value]; !ok {
		return
	}
	old := w.snapshot()
	delete(w.items, value)
	w.emit(old)
}

func (w *WatchedSet[T]) snapshot() any {
	return deepcopy.Copy(w.items)
}

func (w *WatchedSet[T]) emit(old any) {
	if w.recorder == nil {
		return
	}
	w.recorder.Submit(Event{SourceID: w.sourceID, Type: Update, Name: w.name, Value: w.snapshot(), OldValue: old})
}
