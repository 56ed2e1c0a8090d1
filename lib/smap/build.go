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

	"gopkg.in/fatih/set.v0"
)

const DefaultMaxDepth = 64

// Builder composes virtual maps from a store.
type Builder struct {
	Store Store
	Cache *Cache
	// Unclipped keeps every object touching the range with its full extent.
	Unclipped bool
	MaxDepth  int

	err error
}

func NewBuilder(s Store, c *Cache) *Builder {
	if c == nil {
		c = NewCache()
	}
	return &Builder{Store: s, Cache: c, MaxDepth: DefaultMaxDepth}
}

// Err returns the reason of the last Error status.
func (b *Builder) Err() error { return b.err }

// Build walks the object graph from root and returns the virtual map of
// [start,end] in root's frame. start = end = 0 selects the whole root;
// start > end builds the reverse-complemented map. The returned status
// carries the external clip bits when the range was clamped to the root.
// For a root without letters, an explicit range is further clamped to the
// span of its mapped descendants, or widened to it when Unclipped.
func (b *Builder) Build(root Key, start, end int) (*VirtualMap, Status) {
	b.err = nil
	if b.Cache == nil {
		b.Cache = NewCache()
	}
	if b.MaxDepth <= 0 {
		b.MaxDepth = DefaultMaxDepth
	}
	length, err := b.Cache.Length(b.Store, root)
	if err != nil {
		b.err = err
		return nil, Error
	}
	if length <= 0 {
		return nil, NoData
	}
	// Range
	explicit := start != 0 || end != 0
	if !explicit {
		start, end = 1, length
	}
	reverse := start > end
	if reverse {
		start, end = end, start
	}
	if end < 1 || start > length {
		return nil, BadArgs
	}
	var status Status
	if start < 1 {
		start = 1
		status |= X1ExternalClip
	}
	if end > length {
		end = length
		status |= X2ExternalClip
	}

	// Root
	vm := &VirtualMap{Root: root, Start: start, End: end, Unclipped: b.Unclipped}
	rootPiece := Piece{LStart: start, LEnd: end, VStart: start, VEnd: end}
	if b.Unclipped {
		rootPiece = Piece{LStart: 1, LEnd: length, VStart: 1, VEnd: length}
	}
	vm.add(KeyInfo{Key: root, Parent: -1, Local: []Piece{rootPiece}, Pieces: []Piece{rootPiece}})

	// Children
	path := set.New(set.NonThreadSafe)
	path.Add(root)
	if st := b.descend(vm, 0, path); st != PerfectMap {
		return nil, st
	}

	// A root without letters spans its descendants within the range
	if explicit {
		raw, err := b.Cache.RawLength(b.Store, root)
		if err != nil {
			b.err = err
			return nil, Error
		}
		if raw == 0 {
			lo, hi, ok := vm.descendantExtent()
			if !ok {
				return nil, NoData
			}
			if !b.Unclipped {
				lo, hi = max(lo, start), min(hi, end)
			}
			lo, hi = max(lo, 1), min(hi, length)
			if lo > start {
				status |= X1ExternalClip
			}
			if hi < end {
				status |= X2ExternalClip
			}
			vm.Start, vm.End = lo, hi
			if !b.Unclipped {
				ri := &vm.infos[0]
				ri.Local = []Piece{{LStart: lo, LEnd: hi, VStart: lo, VEnd: hi}}
				ri.Pieces = []Piece{{LStart: lo, LEnd: hi, VStart: lo, VEnd: hi}}
				ri.index()
			}
		}
	}

	if reverse {
		vm.RevComp()
		status = status.swapClips()
	}
	return vm, status
}

// descendantExtent returns the virtual span covered by the nodes below the
// root. ok is false without any.
func (vm *VirtualMap) descendantExtent() (lo, hi int, ok bool) {
	for i := 1; i < len(vm.infos); i++ {
		for _, p := range vm.infos[i].Pieces {
			if !ok || p.VMin() < lo {
				lo = p.VMin()
			}
			if !ok || p.VMax() > hi {
				hi = p.VMax()
			}
			ok = true
		}
	}
	return
}

// descend adds the children of the node at idx. path holds the keys of the
// current branch.
func (b *Builder) descend(vm *VirtualMap, idx int, path set.Interface) Status {
	// vm.infos may grow below, copy what is needed
	key, depth, parentSegs := vm.infos[idx].Key, vm.infos[idx].Depth, vm.infos[idx].pieces
	if depth >= b.MaxDepth {
		b.err = fmt.Errorf("smap: depth %d reached at %s", depth, key)
		return Error
	}
	children, err := b.Cache.Children(b.Store, key)
	if err != nil {
		b.err = err
		return Error
	}
	for _, c := range children {
		if path.Has(c.Key) {
			b.err = fmt.Errorf("smap: cycle through %s in %s", c.Key, key)
			return Error
		}
		local := c.Placement()
		if len(local) == 0 {
			continue
		}
		pieces := compose(local, parentSegs)
		if !overlapsRange(pieces, vm.Start, vm.End) {
			continue
		}
		ci := vm.add(KeyInfo{Key: c.Key, Parent: idx, Depth: depth + 1, Local: local, Pieces: pieces})
		path.Add(c.Key)
		st := b.descend(vm, ci, path)
		path.Remove(c.Key)
		if st != PerfectMap {
			return st
		}
	}
	return PerfectMap
}

// compose maps child pieces placed in the parent frame through the parent's
// own virtual pieces. Parts of the child falling in parent gaps are dropped.
func compose(local []Piece, parent segments) []Piece {
	var pieces []Piece
	for _, cp := range local {
		pmin, pmax := cp.VMin(), cp.VMax()
		i, _ := parent.locate(pmin)
		for ; i < len(parent) && parent[i].a0 <= pmax; i++ {
			pp := parent[i]
			a, b := max(pmin, pp.a0), min(pmax, pp.a1)
			if a > b {
				continue
			}
			la, lb := cp.localOf(a), cp.localOf(b)
			va, vb := pp.at(a), pp.at(b)
			if la <= lb {
				pieces = append(pieces, Piece{LStart: la, LEnd: lb, VStart: va, VEnd: vb})
			} else {
				pieces = append(pieces, Piece{LStart: lb, LEnd: la, VStart: vb, VEnd: va})
			}
		}
	}
	sort.Slice(pieces, func(i, j int) bool { return pieces[i].LStart < pieces[j].LStart })
	return mergePieces(pieces)
}

// localOf returns the local coordinate placed at v.
func (p Piece) localOf(v int) int {
	if p.VStart > p.VEnd {
		return p.LStart + (p.VStart - v)
	}
	return p.LStart + (v - p.VStart)
}

// mergePieces joins consecutive pieces contiguous in both frames.
func mergePieces(pieces []Piece) []Piece {
	if len(pieces) < 2 {
		return pieces
	}
	merged := pieces[:1]
	for _, q := range pieces[1:] {
		p := &merged[len(merged)-1]
		dir := int(p.Strand())
		if p.LEnd+1 == q.LStart && q.Strand() == p.Strand() && p.VEnd+dir == q.VStart {
			p.LEnd, p.VEnd = q.LEnd, q.VEnd
			continue
		}
		// Single base pieces have no strand of their own
		if p.LEnd+1 == q.LStart && p.LStart == p.LEnd && q.LStart == q.LEnd && abs(q.VStart-p.VEnd) == 1 {
			p.LEnd, p.VEnd = q.LEnd, q.VEnd
			continue
		}
		merged = append(merged, q)
	}
	return merged
}

func overlapsRange(pieces []Piece, start, end int) bool {
	for _, p := range pieces {
		if p.VMax() >= start && p.VMin() <= end {
			return true
		}
	}
	return false
}

// FindRoot follows Parent links from key to the enclosing root object.
func FindRoot(s Store, key Key) (Key, Status) {
	visited := set.New(set.NonThreadSafe)
	for {
		if visited.Has(key) {
			return key, Error
		}
		visited.Add(key)
		parent, ok, err := s.Parent(key)
		if err != nil {
			return key, Error
		}
		if !ok {
			return key, PerfectMap
		}
		key = parent
	}
}
