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

	"github.com/biogo/biogo/seq/linear"
)

// Key identifies an object of the store by class and name.
type Key struct {
	Class string
	Name  string
}

func (k Key) String() string {
	if k.Class == "" {
		return k.Name
	}
	return k.Class + ":" + k.Name
}

// ParseKey parses "Class:Name". Without a class, defaultClass is used.
func ParseKey(s, defaultClass string) Key {
	for i := 0; i < len(s); i++ {
		if s[i] == ':' {
			return Key{Class: s[:i], Name: s[i+1:]}
		}
	}
	return Key{Class: defaultClass, Name: s}
}

type Strand int8

const (
	Forward Strand = 1
	Reverse Strand = -1
)

func (s Strand) String() string {
	if s == Reverse {
		return "-"
	}
	return "+"
}

// Piece maps the local range [LStart,LEnd] linearly onto the virtual range
// from VStart (virtual position of LStart) to VEnd (virtual position of LEnd).
// Coordinates are 1-based and inclusive.
type Piece struct {
	LStart, LEnd int
	VStart, VEnd int
}

// Strand returns Reverse when virtual coordinates decrease with local ones.
func (p Piece) Strand() Strand {
	if p.VStart > p.VEnd {
		return Reverse
	}
	return Forward
}

// Len returns the number of bases covered by the piece.
func (p Piece) Len() int { return p.LEnd - p.LStart + 1 }

// VMin returns the lowest virtual coordinate of the piece.
func (p Piece) VMin() int { return min(p.VStart, p.VEnd) }

// VMax returns the highest virtual coordinate of the piece.
func (p Piece) VMax() int { return max(p.VStart, p.VEnd) }

// At returns the virtual coordinate of local coordinate x.
func (p Piece) At(x int) int {
	if p.VStart > p.VEnd {
		return p.VStart - (x - p.LStart)
	}
	return p.VStart + (x - p.LStart)
}

func (p Piece) String() string {
	return fmt.Sprintf("[%d,%d]->[%d,%d]", p.LStart, p.LEnd, p.VStart, p.VEnd)
}

// KeyInfo is the mapping record of one node of the composition.
type KeyInfo struct {
	Key Key
	// Parent is the index of the parent KeyInfo in the map, -1 for the root.
	Parent int
	Depth  int
	// Local maps this object's frame into its parent's frame (the virtual
	// frame for the root).
	Local []Piece
	// Pieces maps this object's frame into the virtual frame.
	Pieces []Piece

	local, pieces segments
	inv           segments
}

// NewKeyInfo returns a standalone KeyInfo over pieces (which must not
// overlap). It has no parent.
func NewKeyInfo(key Key, pieces []Piece) *KeyInfo {
	ki := &KeyInfo{Key: key, Parent: -1}
	ki.Pieces = append([]Piece(nil), pieces...)
	ki.Local = append([]Piece(nil), pieces...)
	ki.index()
	return ki
}

// index sorts pieces and precomputes the forward and inverse search tables.
func (ki *KeyInfo) index() {
	sort.Slice(ki.Pieces, func(i, j int) bool { return ki.Pieces[i].LStart < ki.Pieces[j].LStart })
	sort.Slice(ki.Local, func(i, j int) bool { return ki.Local[i].LStart < ki.Local[j].LStart })
	ki.pieces = forwardSegments(ki.Pieces)
	ki.local = forwardSegments(ki.Local)
	ki.inv = inverseSegments(ki.Pieces)
}

// Strand returns the strand of the first piece longer than one base. Single
// base pieces take the strand given by their order.
func (ki *KeyInfo) Strand() Strand {
	for _, p := range ki.Pieces {
		if p.Len() > 1 {
			return p.Strand()
		}
	}
	if len(ki.Pieces) > 1 && ki.Pieces[1].VStart < ki.Pieces[0].VEnd {
		return Reverse
	}
	return Forward
}

// Span returns the lowest and highest virtual coordinates covered.
func (ki *KeyInfo) Span() (vmin, vmax int) {
	for i, p := range ki.Pieces {
		if i == 0 || p.VMin() < vmin {
			vmin = p.VMin()
		}
		if i == 0 || p.VMax() > vmax {
			vmax = p.VMax()
		}
	}
	return
}

// MappedLength returns the number of local bases mapped.
func (ki *KeyInfo) MappedLength() (length int) {
	for _, p := range ki.Pieces {
		length += p.Len()
	}
	return
}

// VirtualMap is a virtual sequence built from a root object. The virtual frame
// is the root frame restricted to [Start,End].
type VirtualMap struct {
	Root       Key
	Start, End int
	// Reversed is true when the map has been reverse-complemented an odd
	// number of times.
	Reversed  bool
	Unclipped bool

	infos  []KeyInfo
	byKey  map[Key][]int
	dnaFwd *linear.Seq
	dnaRev *linear.Seq
}

// Length returns the length of the virtual sequence.
func (vm *VirtualMap) Length() int { return vm.End - vm.Start + 1 }

// Len returns the number of KeyInfo in the map.
func (vm *VirtualMap) Len() int { return len(vm.infos) }

// At returns the i-th KeyInfo. The root is at index 0.
func (vm *VirtualMap) At(i int) *KeyInfo { return &vm.infos[i] }

// RootInfo returns the KeyInfo of the root.
func (vm *VirtualMap) RootInfo() *KeyInfo { return &vm.infos[0] }

// Lookup returns the first KeyInfo describing key.
func (vm *VirtualMap) Lookup(key Key) (*KeyInfo, bool) {
	if idx, ok := vm.byKey[key]; ok {
		return &vm.infos[idx[0]], true
	}
	return nil, false
}

// LookupAll returns every KeyInfo describing key; an object may be composed
// more than once.
func (vm *VirtualMap) LookupAll(key Key) []*KeyInfo {
	var kis []*KeyInfo
	for _, i := range vm.byKey[key] {
		kis = append(kis, &vm.infos[i])
	}
	return kis
}

// ParentOf returns the parent KeyInfo or nil for the root.
func (vm *VirtualMap) ParentOf(ki *KeyInfo) *KeyInfo {
	if ki.Parent < 0 {
		return nil
	}
	return &vm.infos[ki.Parent]
}

// Children returns the indices of the KeyInfo whose parent is index i.
func (vm *VirtualMap) Children(i int) (children []int) {
	for j := i + 1; j < len(vm.infos); j++ {
		if vm.infos[j].Parent == i {
			children = append(children, j)
		}
	}
	return
}

func (vm *VirtualMap) add(ki KeyInfo) int {
	ki.index()
	vm.infos = append(vm.infos, ki)
	idx := len(vm.infos) - 1
	if vm.byKey == nil {
		vm.byKey = make(map[Key][]int)
	}
	vm.byKey[ki.Key] = append(vm.byKey[ki.Key], idx)
	return idx
}

// CacheDNA keeps materialised sequences of the current (fwd) and opposite
// (rev) orientation. Either may be nil.
func (vm *VirtualMap) CacheDNA(fwd, rev *linear.Seq) {
	vm.dnaFwd, vm.dnaRev = fwd, rev
}

// CachedDNA returns the cached sequences.
func (vm *VirtualMap) CachedDNA() (fwd, rev *linear.Seq) {
	return vm.dnaFwd, vm.dnaRev
}
