//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

import (
	"testing"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
	qt "github.com/frankban/quicktest"
)

type points []int

func (p points) Reflect(axis int) {
	for i := range p {
		p[i] = axis - p[i]
	}
}

func snapshot(vm *VirtualMap) [][]Piece {
	var all [][]Piece
	for i := 0; i < vm.Len(); i++ {
		ki := vm.At(i)
		all = append(all, append([]Piece(nil), ki.Pieces...), append([]Piece(nil), ki.Local...))
	}
	return all
}

func TestRevCompTwiceIsIdentity(t *testing.T) {
	c := qt.New(t)
	vm, st := NewBuilder(chrSeqStore(), nil).Build(seqKey("Chr"), 1, 900)
	c.Assert(st, qt.Equals, PerfectMap)
	before := snapshot(vm)

	pts := points{1, 450, 900}
	tx, _ := vm.Lookup(Key{"Transcript", "Tx"})
	am, st := vm.MapAlignment(tx, AlignRequest{RefStart: 1, RefEnd: 20, MatchStart: 1, MatchEnd: 20})
	c.Assert(st, qt.Equals, PerfectMap)

	vm.RevComp(pts, &am)
	c.Assert(vm.Reversed, qt.IsTrue)
	c.Assert(pts, qt.DeepEquals, points{900, 451, 1})
	c.Assert(am.RefStrand, qt.Equals, Forward)
	c.Assert([]int{am.RefStart, am.RefEnd}, qt.DeepEquals, []int{601, 620})

	m := tx.Map(1, 80)
	c.Assert(m.Status, qt.Equals, InternalGaps)
	c.Assert([]int{m.Y1, m.Y2}, qt.DeepEquals, []int{601, 750})
	c.Assert(vm.RootCoord(601), qt.Equals, 300)

	vm.RevComp(pts, &am)
	c.Assert(vm.Reversed, qt.IsFalse)
	c.Assert(snapshot(vm), qt.DeepEquals, before)
	c.Assert(pts, qt.DeepEquals, points{1, 450, 900})
	c.Assert([]int{am.RefStart, am.RefEnd}, qt.DeepEquals, []int{300, 281})
	c.Assert(am.RefStrand, qt.Equals, Reverse)
}

func TestBuildReverseRange(t *testing.T) {
	c := qt.New(t)
	vm, st := NewBuilder(chrSeqStore(), nil).Build(seqKey("Chr"), 250, 1)
	c.Assert(st, qt.Equals, PerfectMap)
	c.Assert(vm.Reversed, qt.IsTrue)
	clone, _ := vm.Lookup(seqKey("Clone"))
	c.Assert(clone.Pieces, qt.DeepEquals, []Piece{{1, 150, 150, 1}})
	c.Assert(vm.RootInfo().Pieces, qt.DeepEquals, []Piece{{1, 250, 250, 1}})
}

func TestRevCompDNACache(t *testing.T) {
	c := qt.New(t)
	vm, _ := NewBuilder(chrStore(), nil).Build(seqKey("Chr"), 0, 0)
	mk := func(s string) *linear.Seq {
		return linear.NewSeq("Chr", alphabet.BytesToLetters([]byte(s)), Alphabet)
	}
	str := func(sq *linear.Seq) string {
		if sq == nil {
			return ""
		}
		return string(alphabet.LettersToBytes(sq.Seq))
	}

	vm.CacheDNA(mk("aacg"), nil)
	vm.RevComp()
	fwd, rev := vm.CachedDNA()
	c.Assert(str(fwd), qt.Equals, "cgtt")
	c.Assert(rev, qt.IsNil)

	vm.CacheDNA(mk("aacg"), mk("cgtt"))
	vm.RevComp()
	fwd, rev = vm.CachedDNA()
	c.Assert([]string{str(fwd), str(rev)}, qt.DeepEquals, []string{"cgtt", "aacg"})

	vm.CacheDNA(nil, mk("cgtt"))
	vm.RevComp()
	fwd, rev = vm.CachedDNA()
	c.Assert(str(fwd), qt.Equals, "cgtt")
	c.Assert(rev, qt.IsNil)
}

func TestReflectRange(t *testing.T) {
	c := qt.New(t)
	s, e := ReflectRange(10, 20, 101)
	c.Assert([]int{s, e}, qt.DeepEquals, []int{81, 91})
}
