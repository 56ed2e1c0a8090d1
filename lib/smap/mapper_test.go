//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

import (
	"strings"
	"testing"

	qt "github.com/frankban/quicktest"
)

func gappedInfo() *KeyInfo {
	return NewKeyInfo(Key{"Sequence", "gapped"}, []Piece{
		{LStart: 1, LEnd: 10, VStart: 1, VEnd: 10},
		{LStart: 11, LEnd: 20, VStart: 31, VEnd: 40},
	})
}

// Two pieces with a local gap between them.
func splitInfo() *KeyInfo {
	return NewKeyInfo(Key{"Sequence", "split"}, []Piece{
		{LStart: 1, LEnd: 10, VStart: 101, VEnd: 110},
		{LStart: 21, LEnd: 30, VStart: 121, VEnd: 130},
	})
}

func TestMapDecisionTable(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		name   string
		x1, x2 int
		want   Mapping
	}{
		{"perfect", 2, 8, Mapping{Status: PerfectMap, Y1: 102, Y2: 108, X1: 2, X2: 8}},
		{"boundary", 10, 21, Mapping{Status: InternalGaps, Y1: 110, Y2: 121, X1: 10, X2: 21}},
		{"before", -5, 0, Mapping{Status: NoOverlapExternal, X1: -5, X2: 0, Side: -1}},
		{"after", 31, 40, Mapping{Status: NoOverlapExternal, X1: 31, X2: 40, Side: 1}},
		{"same gap", 12, 18, Mapping{Status: NoOverlapInternal, X1: 12, X2: 18}},
		{"x1 external", -5, 5, Mapping{Status: X1ExternalClip, Y1: 101, Y2: 105, X1: 1, X2: 5}},
		{"x2 external", 25, 50, Mapping{Status: X2ExternalClip, Y1: 125, Y2: 130, X1: 25, X2: 30}},
		{"x1 internal", 15, 25, Mapping{Status: X1InternalClip, Y1: 121, Y2: 125, X1: 21, X2: 25}},
		{"x2 internal", 5, 15, Mapping{Status: X2InternalClip, Y1: 105, Y2: 110, X1: 5, X2: 10}},
		{"both external", 0, 100, Mapping{Status: X1ExternalClip | X2ExternalClip | InternalGaps, Y1: 101, Y2: 130, X1: 1, X2: 30}},
		{"swapped", 25, -5, Mapping{Status: X2ExternalClip | InternalGaps, Y1: 125, Y2: 101, X1: 25, X2: 1}},
	}
	ki := splitInfo()
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			c.Assert(ki.Map(test.x1, test.x2), qt.DeepEquals, test.want)
		})
	}
}

func TestMapGapDetection(t *testing.T) {
	c := qt.New(t)
	m := gappedInfo().Map(5, 15)
	c.Assert(m.Status.Has(InternalGaps), qt.IsTrue)
	c.Assert(m.Status.Clipped(), qt.IsFalse)
	c.Assert(m.Y1, qt.Equals, 5)
	c.Assert(m.Y2, qt.Equals, 35)
}

func TestMapContiguousPiecesHaveNoGap(t *testing.T) {
	c := qt.New(t)
	ki := NewKeyInfo(Key{"Sequence", "contig"}, []Piece{
		{LStart: 1, LEnd: 10, VStart: 1, VEnd: 10},
		{LStart: 11, LEnd: 20, VStart: 11, VEnd: 20},
	})
	m := ki.Map(5, 15)
	c.Assert(m.Status, qt.Equals, PerfectMap)
	c.Assert(m.Y2, qt.Equals, 15)
}

func TestMapRoundTrip(t *testing.T) {
	c := qt.New(t)
	kis := []*KeyInfo{
		gappedInfo(),
		splitInfo(),
		NewKeyInfo(Key{"Sequence", "rev"}, []Piece{
			{LStart: 1, LEnd: 50, VStart: 200, VEnd: 151},
			{LStart: 51, LEnd: 80, VStart: 120, VEnd: 91},
		}),
	}
	for _, ki := range kis {
		for _, p := range ki.Pieces {
			for x1 := p.LStart; x1 <= p.LEnd; x1 += 3 {
				for x2 := x1; x2 <= p.LEnd; x2 += 4 {
					m := ki.Map(x1, x2)
					c.Assert(m.Status, qt.Equals, PerfectMap)
					back := ki.InverseMap(m.Y1, m.Y2)
					c.Assert(back.Status, qt.Equals, PerfectMap)
					c.Assert([]int{back.Y1, back.Y2}, qt.DeepEquals, []int{x1, x2}, qt.Commentf("%s %d-%d", ki.Key, x1, x2))
				}
			}
		}
	}
}

func TestMapReverseStrand(t *testing.T) {
	c := qt.New(t)
	ki := NewKeyInfo(Key{"Sequence", "CloneA"}, []Piece{{LStart: 1, LEnd: 500, VStart: 599, VEnd: 100}})
	m := ki.Map(1, 500)
	c.Assert(m.Status, qt.Equals, PerfectMap)
	c.Assert(m.Y1, qt.Equals, 599)
	c.Assert(m.Y2, qt.Equals, 100)
	c.Assert(ki.Strand(), qt.Equals, Reverse)
}

func TestStrandSingleBasePiece(t *testing.T) {
	c := qt.New(t)
	ki := NewKeyInfo(seqKey("Read"), []Piece{{1, 1, 50, 50}, {2, 10, 40, 32}})
	c.Assert(ki.Strand(), qt.Equals, Reverse)
	ki = NewKeyInfo(seqKey("Read"), []Piece{{1, 1, 50, 50}, {2, 2, 40, 40}})
	c.Assert(ki.Strand(), qt.Equals, Reverse)
	ki = NewKeyInfo(seqKey("Read"), []Piece{{1, 1, 50, 50}})
	c.Assert(ki.Strand(), qt.Equals, Forward)

	// Composed with a one base first block
	s := newTestStore()
	s.add(seqKey("Contig"), 200, "")
	s.add(seqKey("Read"), 50, strings.Repeat("a", 50))
	s.place(seqKey("Contig"), Child{Key: seqKey("Read"), Blocks: []Piece{
		{LStart: 1, LEnd: 1, VStart: 100, VEnd: 100},
		{LStart: 2, LEnd: 50, VStart: 90, VEnd: 42},
	}})
	vm, st := NewBuilder(s, nil).Build(seqKey("Contig"), 0, 0)
	c.Assert(st, qt.Equals, PerfectMap)
	read, _ := vm.Lookup(seqKey("Read"))
	c.Assert(read.Pieces[0].Len(), qt.Equals, 1)
	c.Assert(read.Strand(), qt.Equals, Reverse)
	asm, st := NewAssembly(vm, s)
	c.Assert(st, qt.Equals, PerfectMap)
	c.Assert(asm.Leaves[0].Strand, qt.Equals, Reverse)
}

func TestMapClipStaysOnBoundary(t *testing.T) {
	c := qt.New(t)
	ki := splitInfo()
	for x1 := -10; x1 <= 40; x1++ {
		for x2 := x1; x2 <= 40; x2++ {
			m := ki.Map(x1, x2)
			if !m.Status.Overlaps() {
				c.Assert([]int{m.X1, m.X2}, qt.DeepEquals, []int{x1, x2})
				continue
			}
			if m.Status&(X1ExternalClip|X1InternalClip) != 0 {
				c.Assert(m.X1 > x1, qt.IsTrue)
				c.Assert(m.X1 == 1 || m.X1 == 21, qt.IsTrue)
			} else {
				c.Assert(m.X1, qt.Equals, x1)
			}
			if m.Status&(X2ExternalClip|X2InternalClip) != 0 {
				c.Assert(m.X2 < x2, qt.IsTrue)
				c.Assert(m.X2 == 10 || m.X2 == 30, qt.IsTrue)
			} else {
				c.Assert(m.X2, qt.Equals, x2)
			}
			c.Assert(m.Y1 >= 101 && m.Y2 <= 130, qt.IsTrue)
		}
	}
}

func TestMapEmpty(t *testing.T) {
	c := qt.New(t)
	ki := NewKeyInfo(Key{"Sequence", "empty"}, nil)
	c.Assert(ki.Map(1, 2).Status, qt.Equals, NoData)
}

func TestStatusString(t *testing.T) {
	c := qt.New(t)
	c.Assert(PerfectMap.String(), qt.Equals, "PerfectMap")
	c.Assert((X1ExternalClip | InternalGaps).String(), qt.Equals, "InternalGaps|X1ExternalClip")
	c.Assert(X1InternalClip.swapClips(), qt.Equals, X2InternalClip)
	c.Assert((X2ExternalClip | Misalign).swapClips(), qt.Equals, X1ExternalClip|Misalign)
	c.Assert(NoData.Failed(), qt.IsTrue)
	c.Assert(NoOverlapInternal.Overlaps(), qt.IsFalse)
}
