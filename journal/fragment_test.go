//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derekmerck/storytangl-sub001/identity"
)

func TestNewAlwaysTagsFragmentChannel(t *testing.T) {
	src := identity.NewUUID()
	f := New("hello", src, "narrator", "narration")

	assert.True(t, f.Tags.Has("channel:fragment"))
	assert.Equal(t, []string{"channel:fragment"}, f.Tags.Sorted())
	assert.Equal(t, src, f.SourceID)
	assert.Equal(t, identity.Label("narrator"), f.SourceLabel)
	assert.Equal(t, "narration", f.FragmentType)
}

func TestNewAppendsExtraTagsAlongsideChannel(t *testing.T) {
	f := New("hi", identity.NewUUID(), "", "", "mood:tense", "pov:b")

	assert.True(t, f.Tags.Has("channel:fragment"))
	assert.True(t, f.Tags.Has("mood:tense"))
	assert.True(t, f.Tags.Has("pov:b"))
}

func TestRenderHTMLConvertsMarkdownPerFragmentInOrder(t *testing.T) {
	frags := []Fragment{
		New("# Scene One", identity.NewUUID(), "", "narration"),
		New("*emphasis*", identity.NewUUID(), "", "narration"),
	}

	html, err := RenderHTML(frags)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Scene One</h1>")
	assert.Contains(t, html, "<em>emphasis</em>")
	assert.Less(t, indexOf(html, "Scene One"), indexOf(html, "emphasis"))
}

func TestRenderHTMLEmptyInputYieldsEmptyOutput(t *testing.T) {
	html, err := RenderHTML(nil)
	require.NoError(t, err)
	assert.Empty(t, html)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
