//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package entity

import (
	"sync"

	"github.com/derekmerck/storytangl-sub001/identity"
)

// singletonKey is the (class, label) identity of a Singleton (spec.md §3).
type singletonKey struct {
	kind  identity.Kind
	label identity.Label
}

// SingletonRegistry is a process-wide, lazily-initialized registry mapping
// (Kind, Label) to a single instance of T. The reference implementation
// relies on Python class-level dictionaries populated implicitly on class
// definition; per DESIGN.md "Global singletons" that becomes an explicit,
// lazily-initialized static map with explicit registration.
type SingletonRegistry[T any] struct {
	mu        sync.RWMutex
	instances map[singletonKey]T
}

// NewSingletonRegistry constructs an empty registry.
func NewSingletonRegistry[T any]() *SingletonRegistry[T] {
	return &SingletonRegistry[T]{instances: make(map[singletonKey]T)}
}

// Get returns the instance registered for (kind, label), if any.
func (r *SingletonRegistry[T]) Get(kind identity.Kind, label identity.Label) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.instances[singletonKey{kind, label}]
	return v, ok
}

// GetOrCreate returns the existing instance for (kind, label), or calls
// create and registers its result. Two singletons with the same label
// within a class are the same entity: create is never invoked twice for a
// key that already has an instance.
func (r *SingletonRegistry[T]) GetOrCreate(kind identity.Kind, label identity.Label, create func() T) T {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := singletonKey{kind, label}
	if v, ok := r.instances[key]; ok {
		return v
	}
	v := create()
	r.instances[key] = v
	return v
}

// Register explicitly binds an instance to (kind, label), overwriting any
// prior binding. Concurrent instantiation under the same key is not
// supported (spec.md §5 "Shared resources"); callers must serialize
// registration of a given label themselves.
func (r *SingletonRegistry[T]) Register(kind identity.Kind, label identity.Label, v T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances[singletonKey{kind, label}] = v
}

// ResetForTests clears all registered instances. Reproducible test suites
// should call this in a test's setup/teardown (DESIGN.md "Global
// singletons").
func (r *SingletonRegistry[T]) ResetForTests() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.instances = make(map[singletonKey]T)
}

// Len reports the number of registered instances (test/debug helper).
func (r *SingletonRegistry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.instances)
}
