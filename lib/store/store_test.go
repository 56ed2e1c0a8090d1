//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package store

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/biogo/biogo/alphabet"
	qt "github.com/frankban/quicktest"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

const testSON = `{
  "son_version": 1,
  "objects": [
    {"name": "ChrX", "length": 1000,
     "children": [
       {"name": "CloneA", "start": 599, "end": 100},
       {"class": "Transcript", "name": "Tx1", "start": 101, "end": 200, "exons": [[1, 10], [51, 100]]}
     ]},
    {"name": "CloneA", "length": 500,
     "alignments": [
       {"class": "Protein", "name": "P1", "ref_start": 1, "ref_end": 30, "match_start": 1, "match_end": 10, "ratio": 3, "score": 42.5},
       {"name": "EST1", "ref_start": 11, "ref_end": 40, "match_start": 1, "match_end": 25, "format": "cigar", "align": "10M5D15M"}
     ]},
    {"class": "Transcript", "name": "Tx1", "length": 60},
    {"name": "Contig", "length": 13, "children": [{"name": "Read", "blocks": [[1, 4, 1, 4], [5, 8, 10, 13]]}]},
    {"name": "Read", "dna": "acgtacgt"}
  ]
}`

func loadTest(c *qt.C) *MemStore {
	ms := NewMemStore()
	c.Assert(ms.LoadSON(strings.NewReader(testSON)), qt.IsNil)
	c.Assert(ms.Link(), qt.IsNil)
	return ms
}

func TestLoadSON(t *testing.T) {
	c := qt.New(t)
	ms := loadTest(c)
	c.Assert(ms.Len(), qt.Equals, 5)
	c.Assert(ms.Roots(), qt.DeepEquals, []smap.Key{{Class: "Sequence", Name: "ChrX"}, {Class: "Sequence", Name: "Contig"}})

	parent, ok, err := ms.Parent(smap.Key{Class: "Transcript", Name: "Tx1"})
	c.Assert(err, qt.IsNil)
	c.Assert(ok, qt.IsTrue)
	c.Assert(parent, qt.Equals, smap.Key{Class: "Sequence", Name: "ChrX"})

	aligns, err := ms.Alignments(smap.Key{Class: "Sequence", Name: "CloneA"})
	c.Assert(err, qt.IsNil)
	c.Assert(aligns, qt.HasLen, 2)
	c.Assert(aligns[0].Target, qt.Equals, smap.Key{Class: "Protein", Name: "P1"})
	c.Assert(aligns[0].Ratio, qt.Equals, 3)
	c.Assert(aligns[1].Format, qt.Equals, smap.Cigar)

	children, err := ms.Children(smap.Key{Class: "Sequence", Name: "Contig"})
	c.Assert(err, qt.IsNil)
	c.Assert(children[0].Blocks, qt.DeepEquals, []smap.Piece{{LStart: 1, LEnd: 4, VStart: 1, VEnd: 4}, {LStart: 5, LEnd: 8, VStart: 10, VEnd: 13}})

	// Length from letters
	l, err := ms.Length(smap.Key{Class: "Sequence", Name: "Read"})
	c.Assert(err, qt.IsNil)
	c.Assert(l, qt.Equals, 8)
}

func TestLoadSONErrors(t *testing.T) {
	c := qt.New(t)
	ms := NewMemStore()
	c.Assert(ms.LoadSON(strings.NewReader(`{"son_version": 2}`)), qt.ErrorMatches, "Unknown SON version 2")
	c.Assert(ms.LoadSON(strings.NewReader(`{`)), qt.ErrorMatches, "Error while parsing JSON object file: .*")
	err := ms.LoadSON(strings.NewReader(`{"son_version": 1, "objects": [{"name": "A", "children": [{"name": "B", "blocks": [[1, 2]]}]}]}`))
	c.Assert(err, qt.ErrorMatches, `Sequence:A > Sequence:B: block 0: 4 coordinates expected, got 2`)

	ms = NewMemStore()
	c.Assert(ms.LoadSON(strings.NewReader(`{"son_version": 1, "objects": [{"name": "A", "children": [{"name": "B", "start": 1, "end": 2}]}]}`)), qt.IsNil)
	c.Assert(errors.Is(ms.Link(), ErrNotFound), qt.IsTrue)
}

func TestMemStoreBuild(t *testing.T) {
	c := qt.New(t)
	ms := loadTest(c)
	vm, st := smap.NewBuilder(ms, nil).Build(smap.Key{Class: "Sequence", Name: "ChrX"}, 50, 700)
	c.Assert(st, qt.Equals, smap.X1ExternalClip|smap.X2ExternalClip)
	c.Assert([]int{vm.Start, vm.End}, qt.DeepEquals, []int{100, 599})
	m := vm.Map(smap.Key{Class: "Sequence", Name: "CloneA"}, 1, 500)
	c.Assert([]int{m.Y1, m.Y2}, qt.DeepEquals, []int{599, 100})
	m = vm.Map(smap.Key{Class: "Transcript", Name: "Tx1"}, 1, 60)
	c.Assert(m.Status, qt.Equals, smap.InternalGaps)
	c.Assert([]int{m.Y1, m.Y2}, qt.DeepEquals, []int{101, 200})

	vm, _ = smap.NewBuilder(ms, nil).Build(smap.Key{Class: "Sequence", Name: "Contig"}, 1, 13)
	sq, st := vm.DNA(ms, nil)
	c.Assert(st, qt.Equals, smap.PerfectMap)
	c.Assert(string(alphabet.LettersToBytes(sq.Seq)), qt.Equals, "acgtnnnnnacgt")
}

func TestLetters(t *testing.T) {
	c := qt.New(t)
	ms := loadTest(c)
	l, err := ms.Letters(smap.Key{Class: "Sequence", Name: "Read"}, 2, 4)
	c.Assert(err, qt.IsNil)
	c.Assert(string(l), qt.Equals, "cgt")
	_, err = ms.Letters(smap.Key{Class: "Sequence", Name: "Read"}, 2, 40)
	c.Assert(err, qt.ErrorMatches, "Sequence:Read: range 2-40 outside 1-8")
	_, err = ms.Letters(smap.Key{Class: "Sequence", Name: "ChrX"}, 1, 4)
	c.Assert(errors.Is(err, ErrNoSequence), qt.IsTrue)
	_, err = ms.Letters(smap.Key{Class: "Sequence", Name: "Nope"}, 1, 4)
	c.Assert(errors.Is(err, ErrNotFound), qt.IsTrue)
}

func TestLoadFASTA(t *testing.T) {
	c := qt.New(t)
	ms := loadTest(c)
	// Sequence:Tx1 is a new object, distinct from Transcript:Tx1
	n, err := ms.LoadFASTA(strings.NewReader(">Tx1 spliced\n"+strings.Repeat("a", 30)+"\n"+strings.Repeat("c", 30)+"\n>New\nACGT\n"), "")
	c.Assert(err, qt.IsNil)
	c.Assert(n, qt.Equals, 2)
	raw, _ := ms.RawLength(smap.Key{Class: "Sequence", Name: "Tx1"})
	c.Assert(raw, qt.Equals, 60)
	l, _ := ms.Length(smap.Key{Class: "Sequence", Name: "New"})
	c.Assert(l, qt.Equals, 4)

	_, err = ms.LoadFASTA(strings.NewReader(">Tx1\nacgt\n"), "Transcript")
	c.Assert(err, qt.ErrorMatches, "Transcript:Tx1: 4 letters for length 60")
}

func TestOpenCompressed(t *testing.T) {
	c := qt.New(t)
	dir := t.TempDir()

	// gzip
	gzPath := filepath.Join(dir, "objects.json.gz")
	f, err := os.Create(gzPath)
	c.Assert(err, qt.IsNil)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(testSON))
	c.Assert(err, qt.IsNil)
	c.Assert(zw.Close(), qt.IsNil)
	c.Assert(f.Close(), qt.IsNil)

	// lz4
	lzPath := filepath.Join(dir, "letters.fa.lz4")
	f, err = os.Create(lzPath)
	c.Assert(err, qt.IsNil)
	lw := lz4.NewWriter(f)
	_, err = lw.Write([]byte(">CloneA\n" + strings.Repeat("g", 500) + "\n"))
	c.Assert(err, qt.IsNil)
	c.Assert(lw.Close(), qt.IsNil)
	c.Assert(f.Close(), qt.IsNil)

	ms, err := OpenSON(gzPath)
	c.Assert(err, qt.IsNil)
	c.Assert(ms.Len(), qt.Equals, 5)
	c.Assert(ms.OpenFASTA("", lzPath), qt.IsNil)
	raw, _ := ms.RawLength(smap.Key{Class: "Sequence", Name: "CloneA"})
	c.Assert(raw, qt.Equals, 500)
}
