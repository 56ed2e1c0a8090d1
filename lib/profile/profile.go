//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

import (
	"fmt"
	"math"

	"git.sr.ht/~vejnar/GeneMap/lib/cmapper"
	"git.sr.ht/~vejnar/GeneMap/lib/feature"
	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

type Type int

const (
	TypeNone Type = iota
	TypeFirst
	TypeLast
	TypeFirstLast
	TypePosition
	TypeAll
	TypeSplice
	TypeExtension
)

var typeNames = []string{"none", "first", "last", "first-last", "position", "all", "all-splice", "all-extension"}

func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("Type(%d)", int(t))
	}
	return typeNames[t]
}

// ParseType returns the profile type named s; empty is TypeNone.
func ParseType(s string) (Type, error) {
	if s == "" {
		return TypeNone, nil
	}
	for i, n := range typeNames {
		if n == s {
			return Type(i), nil
		}
	}
	return TypeNone, fmt.Errorf("Unknown profile type %s", s)
}

// Options set how a fragment is added to a profile.
type Options struct {
	Type Type
	// Paired fragments list read 1 before read 2.
	Paired bool
	// R1Strand is the strand of read 1 relative to the transcript, 0 if unstranded.
	R1Strand         smap.Strand
	PositionFraction float64
	ExtensionLength  int
}

// Fragment is one read or one pair of reads placed in the virtual frame.
type Fragment struct {
	Reads []smap.AlignmentMap
	// OnlyRead1 is set when a single mapped read of a pair is read 1.
	OnlyRead1 bool
}

// Profile is the per-base coverage of one feature in its own orientation.
type Profile struct {
	Name   string
	Mapper *cmapper.CoordMapper
	Values []float32
}

// New returns an empty profile over exons, given in virtual coordinates, on
// strand. overhang is added on both sides.
func New(name string, strand smap.Strand, exons [][]int, overhang int) *Profile {
	cm := &cmapper.CoordMapper{Strand: 1}
	if strand == smap.Reverse {
		cm.Strand = -1
	}
	for _, ex := range exons {
		cm.CoordsParent = append(cm.CoordsParent, []int{min(ex[0], ex[1]), max(ex[0], ex[1])})
	}
	if n := len(cm.CoordsParent); n > 0 {
		cm.CoordsParent[0][0] = max(1, cm.CoordsParent[0][0]-overhang)
		cm.CoordsParent[n-1][1] += overhang
	}
	cm.Init()
	return &Profile{Name: name, Mapper: cm, Values: make([]float32, cm.Length)}
}

// FromFeature returns the empty profile of f, spliced for transcripts.
func FromFeature(f feature.Feature, overhang int) *Profile {
	exons := [][]int{{f.Start, f.End}}
	if f.Transcript != nil && len(f.Transcript.Exons) > 0 {
		exons = make([][]int, len(f.Transcript.Exons))
		for i, ex := range f.Transcript.Exons {
			exons[i] = []int{ex[0], ex[1]}
		}
		if exons[0][0] > exons[len(exons)-1][0] {
			for i, j := 0, len(exons)-1; i < j; i, j = i+1, j-1 {
				exons[i], exons[j] = exons[j], exons[i]
			}
		}
	}
	return New(f.Name, f.Strand, exons, overhang)
}

// Len returns the profile length.
func (p *Profile) Len() int { return len(p.Values) }

// index returns the 0-based profile index of virtual coordinate v.
func (p *Profile) index(v int) (int, bool) {
	lc, within := p.Mapper.Parent2Local(v)
	return lc - 1, within
}

// Overlaps reports which reads of frag have an aligned base in the profile.
func (p *Profile) Overlaps(frag Fragment) []bool {
	overlap := make([]bool, len(frag.Reads))
	for i, am := range frag.Reads {
	blocks:
		for _, b := range am.Gaps {
			lo, hi := min(b.RStart, b.REnd), max(b.RStart, b.REnd)
			for _, ex := range p.Mapper.CoordsParent {
				if lo <= ex[1] && hi >= ex[0] {
					overlap[i] = true
					break blocks
				}
			}
		}
	}
	return overlap
}

// Add records frag with weight count in ch according to opts. ok is false
// when frag contributes no position to the profile. Call Apply to commit.
func (p *Profile) Add(frag Fragment, count float32, opts Options, ch *Changes) (ok bool) {
	overlap := p.Overlaps(frag)
	switch opts.Type {
	case TypeFirst:
		ok = p.first(frag, overlap, opts, count, ch)
	case TypeLast:
		ok = p.last(frag, overlap, opts, count, ch)
	case TypeFirstLast:
		ok = p.firstLast(frag, overlap, count, ch)
	case TypePosition:
		ok = p.position(frag, overlap, opts.PositionFraction, count, ch)
	case TypeAll:
		ok = p.all(frag, overlap, count, ch)
	case TypeSplice:
		ok = p.splice(frag, overlap, count, ch)
	case TypeExtension:
		ok = p.extension(frag, overlap, opts.ExtensionLength, count, ch)
	}
	return
}

// Apply adds the changes of ch to the profile.
func (p *Profile) Apply(ch *Changes) {
	for i := 0; i <= ch.LastIdx; i++ {
		if idx := ch.Idxs[i]; idx >= 0 && idx < len(p.Values) {
			p.Values[idx] += ch.Counts[i]
		}
	}
}

// Scale multiplies all values by f.
func (p *Profile) Scale(f float32) {
	for i := range p.Values {
		p.Values[i] *= f
	}
}

// Span returns the half-open profile interval covered by the overlapping
// reads of frag.
func (p *Profile) Span(frag Fragment) (start, end int, ok bool) {
	return p.fragmentCoords(frag, p.Overlaps(frag))
}

func (p *Profile) fragmentCoords(frag Fragment, overlap []bool) (start, end int, ok bool) {
	first, last := math.MaxInt, math.MinInt
	for i, am := range frag.Reads {
		if !overlap[i] {
			continue
		}
		for _, b := range am.Gaps {
			lo, hi := min(b.RStart, b.REnd), max(b.RStart, b.REnd)
			for v := lo; v <= hi && v < first; v++ {
				if _, in := p.index(v); in {
					first = v
					break
				}
			}
			for v := hi; v >= lo && v > last; v-- {
				if _, in := p.index(v); in {
					last = v
					break
				}
			}
		}
	}
	if first > last {
		return 0, 0, false
	}
	start, _ = p.index(first)
	end, _ = p.index(last)
	if start > end {
		start, end = end, start
	}
	return start, end + 1, true
}

func readSpan(am smap.AlignmentMap) (lo, hi int) {
	lo, hi = math.MaxInt, math.MinInt
	for _, b := range am.Gaps {
		lo = min(lo, b.RStart, b.REnd)
		hi = max(hi, b.RStart, b.REnd)
	}
	return
}

func readStrand(am smap.AlignmentMap) smap.Strand {
	return am.RefStrand * am.MatchStrand
}
