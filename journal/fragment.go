//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package journal renders the user-visible narrative entries a Frame's
// JOURNAL phase produces (spec.md §4.4, §6 "Fragment record payload").
// Markdown-to-HTML rendering is grounded on the teacher's use of
// github.com/yuin/goldmark wherever user- or model-authored text needs
// safe, deterministic rendering.
package journal

import (
	"bytes"

	"github.com/yuin/goldmark"

	"github.com/derekmerck/storytangl-sub001/identity"
	"github.com/derekmerck/storytangl-sub001/vmerrors"
)

// Fragment is one piece of journal content emitted by a JOURNAL-phase
// handler (spec.md §6, "A Fragment record payload").
type Fragment struct {
	Content      string         `json:"content"`
	SourceID     identity.UUID  `json:"source_id"`
	SourceLabel  identity.Label `json:"source_label,omitempty"`
	FragmentType string         `json:"fragment_type,omitempty"`
	Tags         identity.TagSet `json:"tags,omitempty"`
}

// New constructs a Fragment authored by source, tagged "channel:fragment"
// alongside any extra tags supplied.
func New(content string, sourceID identity.UUID, sourceLabel identity.Label, fragmentType string, extraTags ...string) Fragment {
	tags := append([]string{"channel:fragment"}, extraTags...)
	return Fragment{
		Content:      content,
		SourceID:     sourceID,
		SourceLabel:  sourceLabel,
		FragmentType: fragmentType,
		Tags:         identity.NewTagSet(tags...),
	}
}

// RenderHTML renders a sequence of Fragments' markdown content to a
// single HTML document, one block per fragment in order.
func RenderHTML(fragments []Fragment) (string, error) {
	var out bytes.Buffer
	md := goldmark.New()
	for i, f := range fragments {
		if i > 0 {
			out.WriteString("\n")
		}
		if err := md.Convert([]byte(f.Content), &out); err != nil {
			return "", vmerrors.Wrapf(err, "render fragment %d", i)
		}
	}
	return out.String(), nil
}
