//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package gffout writes features of a virtual map as GFF.
package gffout

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/biogo/biogo/io/featio/gff"
	"github.com/biogo/biogo/seq"

	"git.sr.ht/~vejnar/GeneMap/lib/feature"
	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

const DefaultSource = "genemap"

// Writer writes GFF lines in the virtual frame of one map.
type Writer struct {
	bw      *bufio.Writer
	gw      *gff.Writer
	seqName string
	Source  string
	Mapping feature.NameMapping
}

// NewWriter returns a writer of features on the sequence seqName.
func NewWriter(w io.Writer, seqName string) *Writer {
	bw := bufio.NewWriter(w)
	return &Writer{bw: bw, gw: gff.NewWriter(bw, 60, true), seqName: seqName, Source: DefaultSource}
}

// WriteHeader writes the sequence region of vm and, with asm, one comment
// per leaf segment.
func (w *Writer) WriteHeader(vm *smap.VirtualMap, asm *smap.Assembly) error {
	if _, err := fmt.Fprintf(w.bw, "##sequence-region %s %d %d\n", w.seqName, vm.Start, vm.End); err != nil {
		return err
	}
	if asm == nil {
		return nil
	}
	for _, leaf := range asm.Leaves {
		for _, p := range leaf.Segments {
			c := fmt.Sprintf("assembly %s %d-%d %s %d-%d", w.seqName, p.VMin(), p.VMax(), leaf.Key, p.LStart, p.LEnd)
			if p.Strand() == smap.Reverse {
				c += " reverse"
			}
			if _, err := w.gw.WriteComment(c); err != nil {
				return err
			}
		}
	}
	for _, g := range asm.Gaps() {
		if _, err := w.gw.WriteComment(fmt.Sprintf("gap %s %d-%d", w.seqName, g[0], g[1])); err != nil {
			return err
		}
	}
	return nil
}

func gffStrand(s smap.Strand) seq.Strand {
	switch s {
	case smap.Forward:
		return seq.Plus
	case smap.Reverse:
		return seq.Minus
	}
	return seq.None
}

func (w *Writer) line(kind string, start, end int, strand smap.Strand, score *float64, attrs gff.Attributes) error {
	_, err := w.gw.Write(&gff.Feature{
		SeqName:        w.seqName,
		Source:         w.Source,
		Feature:        kind,
		FeatStart:      min(start, end) - 1,
		FeatEnd:        max(start, end),
		FeatScore:      score,
		FeatStrand:     gffStrand(strand),
		FeatFrame:      gff.NoFrame,
		FeatAttributes: attrs,
	})
	return err
}

// WriteFeature writes f, its exons for transcripts and its aligned blocks
// for matches.
func (w *Writer) WriteFeature(f feature.Feature) error {
	name := w.Mapping.MapName(f.Name)
	attrs := gff.Attributes{
		{Tag: "ID", Value: strconv.Quote(name)},
		{Tag: "Class", Value: strconv.Quote(f.Key.Class)},
	}
	if f.Status != smap.PerfectMap {
		attrs = append(attrs, gff.Attribute{Tag: "Status", Value: strconv.Quote(f.Status.String())})
	}
	var score *float64
	if f.Match != nil {
		attrs = append(attrs, gff.Attribute{Tag: "Target", Value: strconv.Quote(fmt.Sprintf("%s %d %d", f.Match.Target.Name, f.Match.MatchStart, f.Match.MatchEnd))})
		if f.Match.AlignString != "" {
			attrs = append(attrs, gff.Attribute{Tag: "Gap", Value: strconv.Quote(f.Match.AlignString)})
		}
		if f.Match.Score != 0 {
			s := f.Match.Score
			score = &s
		}
	}
	if err := w.line(f.Kind.String(), f.Start, f.End, f.Strand, score, attrs); err != nil {
		return err
	}
	parent := gff.Attributes{{Tag: "Parent", Value: strconv.Quote(name)}}
	switch {
	case f.Transcript != nil:
		for _, ex := range f.Transcript.Exons {
			if err := w.line("exon", ex[0], ex[1], f.Strand, nil, parent); err != nil {
				return err
			}
		}
	case f.Match != nil:
		for _, b := range f.Match.Gaps {
			attrs := append(parent[:1:1], gff.Attribute{Tag: "Target", Value: strconv.Quote(fmt.Sprintf("%s %d %d", f.Match.Target.Name, b.MStart, b.MEnd))})
			if err := w.line("match_part", b.RStart, b.REnd, f.Strand, nil, attrs); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFeatures writes all features in order.
func (w *Writer) WriteFeatures(features feature.List) error {
	for _, f := range features {
		if err := w.WriteFeature(f); err != nil {
			return err
		}
	}
	return nil
}

// Flush writes buffered lines to the underlying writer.
func (w *Writer) Flush() error { return w.bw.Flush() }
