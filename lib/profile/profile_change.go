//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

// Changes buffers the profile increments of one fragment before they are
// applied.
type Changes struct {
	Idxs    []int
	Counts  []float32
	LastIdx int
}

func NewChanges(size int) *Changes {
	c := Changes{LastIdx: -1}
	c.Idxs = make([]int, size)
	c.Counts = make([]float32, size)
	return &c
}

func (c *Changes) Write(i int, v float32) {
	c.LastIdx++
	if len(c.Idxs) <= c.LastIdx {
		c.Grow(2)
	}
	c.Idxs[c.LastIdx] = i
	c.Counts[c.LastIdx] = v
}

func (c *Changes) Grow(factor int) {
	size := max(1, len(c.Idxs)*factor)
	n := make([]int, size)
	copy(n, c.Idxs)
	c.Idxs = n
	m := make([]float32, size)
	copy(m, c.Counts)
	c.Counts = m
}

// Len returns the number of buffered changes.
func (c *Changes) Len() int { return c.LastIdx + 1 }

// Reset empties the buffer keeping its capacity.
func (c *Changes) Reset() { c.LastIdx = -1 }

func (c *Changes) has(from, i int) bool {
	for id := from; id <= c.LastIdx; id++ {
		if c.Idxs[id] == i {
			return true
		}
	}
	return false
}
