//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package domain

import (
	"context"
	"math/rand"

	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/phase"
)

// Context is the ambient, per-tick domain state handlers need: the frame's
// current Scope plus the frame-provided bindings (cursor, epoch, phase, a
// seeded rand) and an open Extra bag for ephemeral planning state
// (provision_offers/provision_builds in the reference design) that would
// otherwise force this package and package provision to import each
// other.
type Context struct {
	Scope  *Scope
	Cursor identity.UUID
	Epoch  int
	Phase  phase.Phase
	Rand   *rand.Rand

	// Extra holds ephemeral, phase-scoped data set and read by collaborator
	// packages (e.g. provision) via plain map access and type assertions,
	// keeping this package free of a dependency on theirs.
	Extra map[string]any
}

// NewContext constructs a Context for one frame tick.
func NewContext(scope *Scope, cursor identity.UUID, epoch int, p phase.Phase, rng *rand.Rand) *Context {
	return &Context{Scope: scope, Cursor: cursor, Epoch: epoch, Phase: p, Rand: rng, Extra: map[string]any{}}
}

// FrameBindings renders the frame-provided NS layer described in spec.md
// §4.3: {"cursor", "epoch", "phase", "rand"}.
func (c *Context) FrameBindings() map[string]any {
	return map[string]any{
		"cursor": c.Cursor,
		"epoch":  c.Epoch,
		"phase":  c.Phase.String(),
		"rand":   c.Rand,
	}
}

// contextKey is an unexported type so no other package's context values
// can collide with this one (standard context.Context idiom).
type contextKey struct{}

// WithContext embeds dc into std, retrievable by FromContext. Handler
// closures registered by packages that already import domain (provision,
// vm) use this pair to reach the concrete Context without the handler
// package itself depending on domain — mirroring the teacher's
// graph.NodeFunc(ctx context.Context, state State), which carries
// execution state through an opaque context rather than a concrete type
// handler.Func would otherwise have to import.
func WithContext(std context.Context, dc *Context) context.Context {
	return context.WithValue(std, contextKey{}, dc)
}

// FromContext retrieves the Context embedded by WithContext, or nil if
// none was set.
func FromContext(std context.Context) *Context {
	dc, _ := std.Value(contextKey{}).(*Context)
	return dc
}
