// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

// maxRenderCache bounds the number of rendered bot messages kept.
const maxRenderCache = 256

// markdownRenderer renders finalized bot messages with glamour and caches the
// output per text. Held by pointer so Model copies share the cache.
type markdownRenderer struct {
	mu       sync.Mutex
	enabled  bool
	style    string
	width    int
	renderer *glamour.TermRenderer
	cache    map[string]string
}

func newMarkdownRenderer(style string, enabled bool) *markdownRenderer {
	return &markdownRenderer{enabled: enabled, style: style, cache: make(map[string]string)}
}

// configure changes the style or width, dropping the cache when either differs.
func (r *markdownRenderer) configure(style string, width int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if style == r.style && width == r.width && r.renderer != nil {
		return
	}
	r.style = style
	r.width = width
	r.renderer = nil
	r.cache = make(map[string]string)
}

// Render returns text as styled Markdown, or unchanged when rendering is
// disabled or fails.
func (r *markdownRenderer) Render(text string) string {
	if !r.enabled || strings.TrimSpace(text) == "" {
		return text
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if out, ok := r.cache[text]; ok {
		return out
	}
	if r.renderer == nil {
		opts := []glamour.TermRendererOption{glamour.WithStandardStyle(r.style)}
		if r.width > 0 {
			opts = append(opts, glamour.WithWordWrap(r.width))
		}
		tr, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			log.Printf("ui: markdown renderer unavailable: %v", err)
			r.enabled = false
			return text
		}
		r.renderer = tr
	}

	out, err := r.renderer.Render(text)
	if err != nil {
		log.Printf("ui: markdown render failed: %v", err)
		return text
	}
	out = strings.Trim(out, "\n")
	if len(r.cache) >= maxRenderCache {
		r.cache = make(map[string]string)
	}
	r.cache[text] = out
	return out
}
