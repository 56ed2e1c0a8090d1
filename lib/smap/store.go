//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

import (
	"git.sr.ht/~vejnar/GeneMap/lib/cmapper"
)

// Store is the object-store collaborator read by the builder and the
// sequence assembler.
type Store interface {
	// Children returns the placement of every child of key in key's frame.
	Children(key Key) ([]Child, error)
	// Length returns the extent of key's frame.
	Length(key Key) (int, error)
	// RawLength returns the number of raw letters stored for key, 0 if none.
	RawLength(key Key) (int, error)
	// Letters returns the raw letters of key in [start,end] (1-based).
	Letters(key Key, start, end int) ([]byte, error)
	// Alignments returns the homology data carried by key.
	Alignments(key Key) ([]AlignmentTags, error)
	// Parent returns the object key is placed in.
	Parent(key Key) (Key, bool, error)
}

// Child places an object in its parent's frame.
type Child struct {
	Key Key
	// Start and End are in the parent's frame; Start > End places the child
	// on the reverse strand.
	Start, End int
	// Exons are 1-based offsets from Start along the child's strand. The
	// child's own frame is the spliced sequence.
	Exons [][]int
	// Blocks give the child-to-parent placement explicitly, as pieces whose
	// virtual side is the parent frame. When set, Start, End and Exons are
	// ignored.
	Blocks []Piece
}

// Placement returns the pieces mapping the child's frame into its parent's.
func (c Child) Placement() []Piece {
	if len(c.Blocks) > 0 {
		return append([]Piece(nil), c.Blocks...)
	}
	if c.Start <= 0 || c.End <= 0 {
		return nil
	}
	if len(c.Exons) == 0 {
		return []Piece{{LStart: 1, LEnd: abs(c.End-c.Start) + 1, VStart: c.Start, VEnd: c.End}}
	}
	cm := cmapper.FromPlacement(c.Start, c.End, c.Exons)
	var pieces []Piece
	for _, b := range cm.Blocks() {
		pieces = append(pieces, Piece{LStart: b.LStart, LEnd: b.LEnd, VStart: b.PStart, VEnd: b.PEnd})
	}
	return pieces
}

// AlignmentTags is one homology hit carried by an object. Ref coordinates
// are in the carrying object's frame.
type AlignmentTags struct {
	Target               Key
	RefStart, RefEnd     int
	MatchStart, MatchEnd int
	Score                float64
	// Gaps, or AlignString in Format, describe the gapped alignment.
	Gaps        []GapBlock
	Format      AlignFormat
	AlignString string
	// Ratio is the number of reference bases per match unit (3 for peptides).
	Ratio int
}

// Request returns the alignment request for the hit.
func (at AlignmentTags) Request() AlignRequest {
	return AlignRequest{
		RefStart:    at.RefStart,
		RefEnd:      at.RefEnd,
		MatchStart:  at.MatchStart,
		MatchEnd:    at.MatchEnd,
		Gaps:        at.Gaps,
		Format:      at.Format,
		AlignString: at.AlignString,
		Ratio:       at.Ratio,
	}
}

// Cache keeps store answers for one session. It is owned by the caller and
// must not be shared between goroutines.
type Cache struct {
	children map[Key][]Child
	lengths  map[Key]int
	raw      map[Key]int
}

func NewCache() *Cache {
	return &Cache{
		children: make(map[Key][]Child),
		lengths:  make(map[Key]int),
		raw:      make(map[Key]int),
	}
}

func (c *Cache) Children(s Store, key Key) ([]Child, error) {
	if cs, ok := c.children[key]; ok {
		return cs, nil
	}
	cs, err := s.Children(key)
	if err != nil {
		return nil, err
	}
	c.children[key] = cs
	return cs, nil
}

func (c *Cache) Length(s Store, key Key) (int, error) {
	if l, ok := c.lengths[key]; ok {
		return l, nil
	}
	l, err := s.Length(key)
	if err != nil {
		return 0, err
	}
	c.lengths[key] = l
	return l, nil
}

func (c *Cache) RawLength(s Store, key Key) (int, error) {
	if l, ok := c.raw[key]; ok {
		return l, nil
	}
	l, err := s.RawLength(key)
	if err != nil {
		return 0, err
	}
	c.raw[key] = l
	return l, nil
}

// Len returns the number of objects whose children are cached.
func (c *Cache) Len() int { return len(c.children) }

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
