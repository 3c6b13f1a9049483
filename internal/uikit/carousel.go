// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package uikit

// Carousel is the index state of a slideshow or lightbox over Len slides.
// The zero value is an empty carousel; every operation on it is a no-op.
type Carousel struct {
	Len    int
	Index  int
	Paused bool
}

// NewCarousel returns a carousel over n slides showing slide i, normalised
// into range.
func NewCarousel(n, i int) Carousel {
	return Carousel{Len: n}.Go(i)
}

// Next moves to the following slide, wrapping from the last to the first.
func (c Carousel) Next() Carousel {
	return c.Go(c.Index + 1)
}

// Prev moves to the preceding slide, wrapping from the first to the last.
func (c Carousel) Prev() Carousel {
	return c.Go(c.Index - 1)
}

// Go jumps to slide i modulo Len. Negative indexes count back from the end.
func (c Carousel) Go(i int) Carousel {
	if c.Len <= 0 {
		c.Index = 0
		return c
	}
	c.Index = ((i % c.Len) + c.Len) % c.Len
	return c
}

// Tick is one auto-advance step: it moves to the next slide unless paused.
func (c Carousel) Tick() Carousel {
	if c.Paused {
		return c
	}
	return c.Next()
}

// Pause stops auto-advance, e.g. while the pointer is over the slide.
func (c Carousel) Pause() Carousel {
	c.Paused = true
	return c
}

// Resume restarts auto-advance.
func (c Carousel) Resume() Carousel {
	c.Paused = false
	return c
}

// NextIndex is the index Next would move to.
func (c Carousel) NextIndex() int { return c.Next().Index }

// PrevIndex is the index Prev would move to.
func (c Carousel) PrevIndex() int { return c.Prev().Index }

// Position is the 1-based slide number shown in "3 / 7" captions.
func (c Carousel) Position() int {
	if c.Len == 0 {
		return 0
	}
	return c.Index + 1
}

// Multiple reports whether navigation controls are worth rendering.
func (c Carousel) Multiple() bool {
	return c.Len > 1
}
