//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"
)

// Leaf is one object with raw letters contributing to the virtual sequence.
type Leaf struct {
	Key    Key
	Strand Strand
	// Length is the number of raw letters of the object.
	Length int
	// Segments are the contributing pieces, clipped to the raw letters and to
	// the virtual range, in virtual order.
	Segments []Piece
}

// Contribution is one segment of one leaf.
type Contribution struct {
	Key Key
	Piece
}

// Assembly reports which leaves make up a virtual map.
type Assembly struct {
	Start, End int
	Leaves     []Leaf

	tree interval.IntTree
}

// contribInterval indexes a contribution with half-open virtual coordinates.
type contribInterval struct {
	Start, End int
	UID        uintptr
	Contrib    Contribution
}

func (i contribInterval) Overlap(b interval.IntRange) bool {
	return i.End > b.Start && i.Start < b.End
}

func (i contribInterval) ID() uintptr { return i.UID }

func (i contribInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

func (i contribInterval) String() string {
	return fmt.Sprintf("[%d,%d)#%d-%s", i.Start, i.End, i.UID, i.Contrib.Key)
}

// NewAssembly returns the assembly of vm. Objects with raw letters are
// leaves.
func NewAssembly(vm *VirtualMap, s Store) (*Assembly, Status) {
	return newAssembly(vm, s, nil)
}

func newAssembly(vm *VirtualMap, s Store, c *Cache) (*Assembly, Status) {
	if c == nil {
		c = NewCache()
	}
	asm := &Assembly{Start: vm.Start, End: vm.End}
	for i := 0; i < vm.Len(); i++ {
		ki := vm.At(i)
		raw, err := c.RawLength(s, ki.Key)
		if err != nil {
			return nil, Error
		}
		if raw <= 0 {
			continue
		}
		leaf := Leaf{Key: ki.Key, Strand: ki.Strand(), Length: raw}
		for _, p := range ki.Pieces {
			if cp, ok := clipPiece(p, 1, raw, vm.Start, vm.End); ok {
				leaf.Segments = append(leaf.Segments, cp)
			}
		}
		if len(leaf.Segments) == 0 {
			continue
		}
		sort.Slice(leaf.Segments, func(i, j int) bool { return leaf.Segments[i].VMin() < leaf.Segments[j].VMin() })
		asm.Leaves = append(asm.Leaves, leaf)
	}
	if len(asm.Leaves) == 0 {
		return asm, NoData
	}
	sort.SliceStable(asm.Leaves, func(i, j int) bool {
		return asm.Leaves[i].Segments[0].VMin() < asm.Leaves[j].Segments[0].VMin()
	})
	// Index
	var uid uintptr
	for _, leaf := range asm.Leaves {
		for _, seg := range leaf.Segments {
			iv := contribInterval{Start: seg.VMin(), End: seg.VMax() + 1, UID: uid, Contrib: Contribution{Key: leaf.Key, Piece: seg}}
			if err := asm.tree.Insert(iv, false); err != nil {
				return nil, Error
			}
			uid++
		}
	}
	asm.tree.AdjustRanges()
	return asm, PerfectMap
}

// clipPiece restricts p to local [llo,lhi] and virtual [vlo,vhi].
func clipPiece(p Piece, llo, lhi, vlo, vhi int) (Piece, bool) {
	lo, hi := max(p.LStart, llo), min(p.LEnd, lhi)
	if lo > hi {
		return p, false
	}
	// Local range of the virtual window
	a, b := p.localOf(vlo), p.localOf(vhi)
	if a > b {
		a, b = b, a
	}
	lo, hi = max(lo, a), min(hi, b)
	if lo > hi {
		return p, false
	}
	return Piece{LStart: lo, LEnd: hi, VStart: p.At(lo), VEnd: p.At(hi)}, true
}

// Covering returns the contributions overlapping the virtual range
// [start,end], in virtual order.
func (asm *Assembly) Covering(start, end int) []Contribution {
	if start > end {
		start, end = end, start
	}
	var contribs []Contribution
	for _, iv := range asm.tree.Get(contribInterval{Start: start, End: end + 1}) {
		contribs = append(contribs, iv.(contribInterval).Contrib)
	}
	sort.Slice(contribs, func(i, j int) bool {
		if contribs[i].VMin() == contribs[j].VMin() {
			return contribs[i].Key.String() < contribs[j].Key.String()
		}
		return contribs[i].VMin() < contribs[j].VMin()
	})
	return contribs
}

// Gaps returns the virtual ranges covered by no leaf.
func (asm *Assembly) Gaps() (gaps [][]int) {
	next := asm.Start
	for _, c := range asm.Covering(asm.Start, asm.End) {
		if c.VMin() > next {
			gaps = append(gaps, []int{next, c.VMin() - 1})
		}
		if c.VMax()+1 > next {
			next = c.VMax() + 1
		}
	}
	if next <= asm.End {
		gaps = append(gaps, []int{next, asm.End})
	}
	return
}

// Len returns the number of contributions.
func (asm *Assembly) Len() int { return asm.tree.Len() }
