//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

import (
	"bytes"
	"encoding/binary"
	"hash/adler32"
	"io"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"

	"git.sr.ht/~vejnar/GeneMap/lib/feature"
	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

func changed(ch *Changes) []int {
	return append([]int{}, ch.Idxs[:ch.Len()]...)
}

func span(from, to int) (idxs []int) {
	for i := from; i <= to; i++ {
		idxs = append(idxs, i)
	}
	return
}

var forwardRead = smap.AlignmentMap{
	RefStrand: smap.Forward, MatchStrand: smap.Forward,
	Gaps: []smap.GapBlock{{RStart: 11, REnd: 20, MStart: 1, MEnd: 10}, {RStart: 31, REnd: 40, MStart: 11, MEnd: 20}},
}

func TestParseType(t *testing.T) {
	c := qt.New(t)
	for i, n := range typeNames {
		tp, err := ParseType(n)
		c.Assert(err, qt.IsNil)
		c.Assert(tp, qt.Equals, Type(i))
		c.Assert(tp.String(), qt.Equals, n)
	}
	tp, err := ParseType("")
	c.Assert(err, qt.IsNil)
	c.Assert(tp, qt.Equals, TypeNone)
	_, err = ParseType("middle")
	c.Assert(err, qt.ErrorMatches, "Unknown profile type middle")
}

func TestAddForward(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []int
	}{
		{"first", Options{Type: TypeFirst}, []int{10}},
		{"last", Options{Type: TypeLast}, []int{39}},
		{"first-last", Options{Type: TypeFirstLast}, []int{10, 39}},
		{"position", Options{Type: TypePosition, PositionFraction: 0.5}, []int{25}},
		{"all", Options{Type: TypeAll}, span(10, 39)},
		{"splice", Options{Type: TypeSplice}, append(span(10, 19), span(30, 39)...)},
		{"extension", Options{Type: TypeExtension, ExtensionLength: 50}, span(10, 59)},
	}
	c := qt.New(t)
	for _, test := range tests {
		c.Run(test.name, func(c *qt.C) {
			p := New("F", smap.Forward, [][]int{{1, 100}}, 0)
			ch := NewChanges(0)
			c.Assert(p.Add(Fragment{Reads: []smap.AlignmentMap{forwardRead}}, 1, test.opts, ch), qt.IsTrue)
			c.Assert(changed(ch), qt.DeepEquals, test.want)
			p.Apply(ch)
			var sum float32
			for _, v := range p.Values {
				sum += v
			}
			c.Assert(sum, qt.Equals, float32(len(test.want)))
		})
	}
}

func TestAddReverseTranscript(t *testing.T) {
	c := qt.New(t)
	// Exons 101-110 and 151-200 read from 200
	p := New("Tx", smap.Reverse, [][]int{{101, 110}, {151, 200}}, 0)
	c.Assert(p.Len(), qt.Equals, 60)
	read := smap.AlignmentMap{
		RefStrand: smap.Forward, MatchStrand: smap.Forward,
		Gaps: []smap.GapBlock{{RStart: 105, REnd: 110, MStart: 1, MEnd: 6}, {RStart: 151, REnd: 160, MStart: 7, MEnd: 16}},
	}
	frag := Fragment{Reads: []smap.AlignmentMap{read}}

	ch := NewChanges(4)
	c.Assert(p.Add(frag, 1, Options{Type: TypeFirst}, ch), qt.IsTrue)
	c.Assert(changed(ch), qt.DeepEquals, []int{40})

	ch.Reset()
	c.Assert(p.Add(frag, 1, Options{Type: TypeLast}, ch), qt.IsTrue)
	c.Assert(changed(ch), qt.DeepEquals, []int{55})

	ch.Reset()
	c.Assert(p.Add(frag, 1, Options{Type: TypeAll}, ch), qt.IsTrue)
	c.Assert(changed(ch), qt.DeepEquals, span(40, 55))

	ch.Reset()
	c.Assert(p.Add(frag, 1, Options{Type: TypeSplice}, ch), qt.IsTrue)
	c.Assert(changed(ch), qt.DeepEquals, append([]int{55, 54, 53, 52, 51, 50}, []int{49, 48, 47, 46, 45, 44, 43, 42, 41, 40}...))

	start, end, ok := p.Span(frag)
	c.Assert(ok, qt.IsTrue)
	c.Assert([]int{start, end}, qt.DeepEquals, []int{40, 56})

	// Intron only
	ch.Reset()
	intronic := Fragment{Reads: []smap.AlignmentMap{{Gaps: []smap.GapBlock{{RStart: 120, REnd: 140, MStart: 1, MEnd: 21}}}}}
	c.Assert(p.Overlaps(intronic), qt.DeepEquals, []bool{false})
	c.Assert(p.Add(intronic, 1, Options{Type: TypeAll}, ch), qt.IsFalse)
	c.Assert(ch.Len(), qt.Equals, 0)
}

func TestSpliceMates(t *testing.T) {
	c := qt.New(t)
	p := New("F", smap.Forward, [][]int{{1, 100}}, 0)
	mate := smap.AlignmentMap{
		RefStrand: smap.Forward, MatchStrand: smap.Reverse,
		Gaps: []smap.GapBlock{{RStart: 35, REnd: 45, MStart: 11, MEnd: 1}},
	}
	ch := NewChanges(2)
	c.Assert(p.Add(Fragment{Reads: []smap.AlignmentMap{forwardRead, mate}}, 0.5, Options{Type: TypeSplice, Paired: true}, ch), qt.IsTrue)
	c.Assert(changed(ch), qt.DeepEquals, append(span(10, 19), span(30, 44)...))
	p.Apply(ch)
	c.Assert(p.Values[34], qt.Equals, float32(0.5))
}

func TestExtensionReverseRead(t *testing.T) {
	c := qt.New(t)
	p := New("F", smap.Forward, [][]int{{1, 100}}, 0)
	read := smap.AlignmentMap{
		RefStrand: smap.Forward, MatchStrand: smap.Reverse,
		Gaps: []smap.GapBlock{{RStart: 11, REnd: 20, MStart: 10, MEnd: 1}},
	}
	ch := NewChanges(0)
	c.Assert(p.Add(Fragment{Reads: []smap.AlignmentMap{read}}, 1, Options{Type: TypeExtension, ExtensionLength: 30}, ch), qt.IsTrue)
	c.Assert(changed(ch), qt.DeepEquals, span(0, 19))
}

func TestReadOrder(t *testing.T) {
	c := qt.New(t)
	two := Fragment{Reads: make([]smap.AlignmentMap, 2)}
	r1 := Fragment{Reads: make([]smap.AlignmentMap, 1), OnlyRead1: true}
	r2 := Fragment{Reads: make([]smap.AlignmentMap, 1)}
	fwd := Options{Paired: true, R1Strand: smap.Forward}
	rev := Options{Paired: true, R1Strand: smap.Reverse}

	c.Assert([]int{firstRead(two, fwd), lastRead(two, fwd)}, qt.DeepEquals, []int{0, 1})
	c.Assert([]int{firstRead(two, rev), lastRead(two, rev)}, qt.DeepEquals, []int{1, 0})
	c.Assert([]int{firstRead(r1, fwd), lastRead(r1, fwd)}, qt.DeepEquals, []int{0, -1})
	c.Assert([]int{firstRead(r2, fwd), lastRead(r2, fwd)}, qt.DeepEquals, []int{-1, 0})
	c.Assert([]int{firstRead(r1, rev), lastRead(r1, rev)}, qt.DeepEquals, []int{-1, 0})
	c.Assert([]int{firstRead(r2, rev), lastRead(r2, rev)}, qt.DeepEquals, []int{0, -1})
	c.Assert([]int{firstRead(r2, Options{}), lastRead(r2, Options{})}, qt.DeepEquals, []int{0, 0})
}

func TestFromFeature(t *testing.T) {
	c := qt.New(t)
	p := FromFeature(feature.Feature{
		Name: "Tx", Strand: smap.Reverse, Start: 201, End: 300,
		Transcript: &feature.TranscriptData{Exons: [][]int{{300, 281}, {240, 201}}},
	}, 5)
	c.Assert(p.Mapper.CoordsParent, qt.DeepEquals, [][]int{{196, 240}, {281, 305}})
	c.Assert(p.Len(), qt.Equals, 70)
	idx, in := p.index(305)
	c.Assert(in, qt.IsTrue)
	c.Assert(idx, qt.Equals, 0)

	p = FromFeature(feature.Feature{Name: "R", Strand: smap.Forward, Start: 3, End: 12}, 5)
	c.Assert(p.Mapper.CoordsParent, qt.DeepEquals, [][]int{{1, 17}})
}

func testProfiles() []*Profile {
	return []*Profile{
		{Name: "F", Values: []float32{0, 1, 1, 0, 2}},
		{Name: "G", Values: []float32{0.5}},
	}
}

func TestWrite(t *testing.T) {
	c := qt.New(t)
	var buf bytes.Buffer
	c.Assert(Write(&buf, testProfiles(), "bedgraph", feature.NameMapping{"G": "gene-g"}), qt.IsNil)
	c.Assert(buf.String(), qt.Equals, "F\t1\t3\t1.000000\nF\t4\t5\t2.000000\ngene-g\t0\t1\t0.500000\n")

	buf.Reset()
	c.Assert(Write(&buf, testProfiles(), "csv", nil), qt.IsNil)
	c.Assert(buf.String(), qt.Equals, "F,5,0 1 1 0 2\nG,1,0.5\n")

	buf.Reset()
	c.Assert(Write(&buf, testProfiles(), "binary", nil), qt.IsNil)
	var header struct {
		Version  uint8
		Length   uint32
		Checksum uint32
	}
	c.Assert(binary.Read(&buf, binary.LittleEndian, &header), qt.IsNil)
	lengths := new(bytes.Buffer)
	binary.Write(lengths, binary.LittleEndian, []uint32{5, 1})
	c.Assert(header.Version, qt.Equals, uint8(3))
	c.Assert(header.Length, qt.Equals, uint32(6))
	c.Assert(header.Checksum, qt.Equals, adler32.Checksum(lengths.Bytes()))
	values := make([]float32, 6)
	c.Assert(binary.Read(&buf, binary.LittleEndian, values), qt.IsNil)
	c.Assert(values, qt.DeepEquals, []float32{0, 1, 1, 0, 2, 0.5})

	c.Assert(Write(&buf, testProfiles(), "wig", nil), qt.ErrorMatches, "Unknown profile format wig")
}

func TestWriteFile(t *testing.T) {
	c := qt.New(t)
	dir := c.TempDir()

	path := filepath.Join(dir, "p.bedgraph.gz")
	c.Assert(WriteFile(path, testProfiles(), "bedgraph+gz", nil, false), qt.IsNil)
	f, err := os.Open(path)
	c.Assert(err, qt.IsNil)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	c.Assert(err, qt.IsNil)
	data, err := io.ReadAll(zr)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "F\t1\t3\t1.000000\nF\t4\t5\t2.000000\nG\t0\t1\t0.500000\n")

	path = filepath.Join(dir, "p.csv.lz4")
	c.Assert(WriteFile(path, testProfiles(), "csv+lz4hc", nil, false), qt.IsNil)
	f2, err := os.Open(path)
	c.Assert(err, qt.IsNil)
	defer f2.Close()
	data, err = io.ReadAll(lz4.NewReader(f2))
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "F,5,0 1 1 0 2\nG,1,0.5\n")

	// Append
	path = filepath.Join(dir, "p.csv")
	c.Assert(WriteFile(path, testProfiles()[:1], "csv", nil, false), qt.IsNil)
	c.Assert(WriteFile(path, testProfiles()[1:], "csv", nil, true), qt.IsNil)
	data, err = os.ReadFile(path)
	c.Assert(err, qt.IsNil)
	c.Assert(string(data), qt.Equals, "F,5,0 1 1 0 2\nG,1,0.5\n")

	c.Assert(WriteFile(path, testProfiles(), "csv+zip", nil, false), qt.ErrorMatches, "Unknown profile compression zip")
}
