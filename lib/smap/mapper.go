//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

import (
	"sort"
)

// Mapping is the result of mapping the range [X1,X2] of one frame into
// another. X1 and X2 hold the input coordinates after clipping.
type Mapping struct {
	Status Status
	Y1, Y2 int
	X1, X2 int
	// Side is -1 (before) or 1 (after) for an external no-overlap, 0 otherwise.
	Side int
}

// segment maps [a0,a1] onto b0+dir*(x-a0).
type segment struct {
	a0, a1 int
	b0     int
	dir    int
}

func (s segment) at(x int) int { return s.b0 + s.dir*(x-s.a0) }

// segments are sorted by a0 and never overlap.
type segments []segment

func forwardSegments(pieces []Piece) segments {
	segs := make(segments, len(pieces))
	for i, p := range pieces {
		segs[i] = segment{a0: p.LStart, a1: p.LEnd, b0: p.VStart, dir: int(p.Strand())}
	}
	return segs
}

func inverseSegments(pieces []Piece) segments {
	segs := make(segments, len(pieces))
	for i, p := range pieces {
		if p.Strand() == Reverse {
			segs[i] = segment{a0: p.VEnd, a1: p.VStart, b0: p.LEnd, dir: -1}
		} else {
			segs[i] = segment{a0: p.VStart, a1: p.VEnd, b0: p.LStart, dir: 1}
		}
	}
	sort.Slice(segs, func(i, j int) bool { return segs[i].a0 < segs[j].a0 })
	return segs
}

// locate returns the index of the first segment ending at or after x and
// whether x lies inside it. A coordinate on a segment boundary is inside.
func (segs segments) locate(x int) (int, bool) {
	i := sort.Search(len(segs), func(i int) bool { return segs[i].a1 >= x })
	return i, i < len(segs) && segs[i].a0 <= x
}

// contiguous reports whether segments k and k+1 join without a gap in either
// frame.
func (segs segments) contiguous(k int) bool {
	s, n := segs[k], segs[k+1]
	return s.a1+1 == n.a0 && s.dir == n.dir && s.at(s.a1)+s.dir == n.b0
}

func (segs segments) gapBetween(i, j int) bool {
	for k := i; k < j; k++ {
		if !segs.contiguous(k) {
			return true
		}
	}
	return false
}

func (segs segments) mapRange(x1, x2 int) (m Mapping) {
	if len(segs) == 0 {
		m.Status = NoData
		m.X1, m.X2 = x1, x2
		return
	}
	swapped := x1 > x2
	if swapped {
		x1, x2 = x2, x1
	}
	n := len(segs)
	i, in1 := segs.locate(x1)
	j, in2 := segs.locate(x2)
	if !in1 && !in2 && i == j {
		switch i {
		case 0:
			m.Status, m.Side = NoOverlapExternal, -1
		case n:
			m.Status, m.Side = NoOverlapExternal, 1
		default:
			m.Status = NoOverlapInternal
		}
		m.X1, m.X2 = x1, x2
	} else {
		if !in1 {
			x1 = segs[i].a0
			if i == 0 {
				m.Status |= X1ExternalClip
			} else {
				m.Status |= X1InternalClip
			}
		}
		if !in2 {
			j--
			x2 = segs[j].a1
			if j == n-1 {
				m.Status |= X2ExternalClip
			} else {
				m.Status |= X2InternalClip
			}
		}
		if segs.gapBetween(i, j) {
			m.Status |= InternalGaps
		}
		m.X1, m.X2 = x1, x2
		m.Y1, m.Y2 = segs[i].at(x1), segs[j].at(x2)
	}
	if swapped {
		m.X1, m.X2 = m.X2, m.X1
		m.Y1, m.Y2 = m.Y2, m.Y1
		m.Status = m.Status.swapClips()
	}
	return
}

// Map converts the local range [x1,x2] of ki into the virtual frame.
func (ki *KeyInfo) Map(x1, x2 int) Mapping {
	return ki.pieces.mapRange(x1, x2)
}

// InverseMap converts the virtual range [y1,y2] into the local frame of ki.
func (ki *KeyInfo) InverseMap(y1, y2 int) Mapping {
	return ki.inv.mapRange(y1, y2)
}

// MapParent converts the local range [x1,x2] of ki into its parent's frame.
func (ki *KeyInfo) MapParent(x1, x2 int) Mapping {
	return ki.local.mapRange(x1, x2)
}

// Map converts [x1,x2] in the frame of key into the virtual frame using the
// first KeyInfo of key.
func (vm *VirtualMap) Map(key Key, x1, x2 int) Mapping {
	ki, ok := vm.Lookup(key)
	if !ok {
		return Mapping{Status: BadArgs, X1: x1, X2: x2}
	}
	return ki.Map(x1, x2)
}

// InverseMap converts the virtual range [y1,y2] into the frame of key.
func (vm *VirtualMap) InverseMap(key Key, y1, y2 int) Mapping {
	ki, ok := vm.Lookup(key)
	if !ok {
		return Mapping{Status: BadArgs, X1: y1, X2: y2}
	}
	return ki.InverseMap(y1, y2)
}

// MapChain converts [x1,x2] one level at a time up the parent chain of ki.
// Status bits accumulate; any no-overlap stops the chain.
func (vm *VirtualMap) MapChain(ki *KeyInfo, x1, x2 int) Mapping {
	var status Status
	y1, y2 := x1, x2
	for cur := ki; cur != nil; cur = vm.ParentOf(cur) {
		m := cur.MapParent(y1, y2)
		if !m.Status.Overlaps() {
			m.X1, m.X2 = x1, x2
			return m
		}
		status |= m.Status
		y1, y2 = m.Y1, m.Y2
	}
	m := Mapping{Status: status, Y1: y1, Y2: y2, X1: x1, X2: x2}
	// A clip upstream may fall in a gap of ki: snap both ends back onto it
	if status.Clipped() {
		if back := ki.InverseMap(y1, y2); back.Status.Overlaps() {
			m.X1, m.X2 = back.Y1, back.Y2
			if fwd := ki.Map(m.X1, m.X2); fwd.Status.Overlaps() {
				m.Y1, m.Y2 = fwd.Y1, fwd.Y2
			}
		}
	}
	return m
}

// RootCoord converts a virtual coordinate into the root object's frame.
func (vm *VirtualMap) RootCoord(v int) int {
	if vm.Reversed {
		return vm.Start + vm.End - v
	}
	return v
}
