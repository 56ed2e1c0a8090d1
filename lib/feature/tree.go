//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"sort"

	"github.com/biogo/store/interval"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

// Overlap is the number of bases shared with the feature at Index.
type Overlap struct {
	Index  int
	Length int
}

// Tree indexes the blocks of features by strand.
type Tree struct {
	Features []Feature
	trees    map[smap.Strand]*interval.IntTree
}

// blocks returns the virtual ranges covered by feat.
func blocks(feat Feature) [][]int {
	switch {
	case feat.Transcript != nil && len(feat.Transcript.Exons) > 0:
		return feat.Transcript.Exons
	case feat.Match != nil && len(feat.Match.Gaps) > 0:
		bs := make([][]int, len(feat.Match.Gaps))
		for i, g := range feat.Match.Gaps {
			bs[i] = []int{g.RStart, g.REnd}
		}
		return bs
	}
	return [][]int{{feat.Start, feat.End}}
}

// BuildTree builds a tree of features: each block (i.e. exon) of each
// feature is added to the tree of its strand.
func BuildTree(features []Feature) (*Tree, error) {
	t := &Tree{
		Features: features,
		trees: map[smap.Strand]*interval.IntTree{
			smap.Forward: {},
			smap.Reverse: {},
		},
	}
	var uid uintptr
	for i, feat := range features {
		strand := feat.Strand
		if strand != smap.Reverse {
			strand = smap.Forward
		}
		for _, b := range blocks(feat) {
			if err := t.trees[strand].Insert(newIntInterval(b[0], b[1], uid, i), false); err != nil {
				return nil, err
			}
			uid++
		}
	}
	for _, tree := range t.trees {
		tree.AdjustRanges()
	}
	return t, nil
}

// Overlapping returns the features overlapping [start,end] on strand, both
// strands if strand is 0, ordered by index.
func (t *Tree) Overlapping(start, end int, strand smap.Strand) []Overlap {
	return t.overlapBlocks([][]int{{start, end}}, strand)
}

// OverlapAlignment returns the features overlapping the aligned blocks of am.
func (t *Tree) OverlapAlignment(am smap.AlignmentMap, strand smap.Strand) []Overlap {
	bs := make([][]int, len(am.Gaps))
	for i, g := range am.Gaps {
		bs[i] = []int{g.RStart, g.REnd}
	}
	return t.overlapBlocks(bs, strand)
}

func (t *Tree) overlapBlocks(bs [][]int, strand smap.Strand) []Overlap {
	strands := []smap.Strand{smap.Forward, smap.Reverse}
	if strand != 0 {
		strands = []smap.Strand{strand}
	}
	lengths := make(map[int]int)
	for _, b := range bs {
		q := newIntInterval(b[0], b[1], 0, -1)
		for _, s := range strands {
			for _, iv := range t.trees[s].Get(q) {
				fiv := iv.(IntInterval)
				lengths[fiv.Index] += fiv.OverlapLength(q.Range())
			}
		}
	}
	overlaps := make([]Overlap, 0, len(lengths))
	for i, l := range lengths {
		overlaps = append(overlaps, Overlap{Index: i, Length: l})
	}
	sort.Slice(overlaps, func(i, j int) bool { return overlaps[i].Index < overlaps[j].Index })
	return overlaps
}

// Len returns the number of indexed blocks.
func (t *Tree) Len() int {
	return t.trees[smap.Forward].Len() + t.trees[smap.Reverse].Len()
}
