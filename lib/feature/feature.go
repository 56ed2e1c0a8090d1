//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

// Kind tags the variant data carried by a Feature.
type Kind int

const (
	Basic Kind = iota
	Sequence
	Transcript
	Match
)

var kindNames = []string{"region", "sequence", "transcript", "match"}

func (k Kind) String() string { return kindNames[k] }

// MatchData is carried by Match features.
type MatchData struct {
	Target               smap.Key
	MatchStart, MatchEnd int
	Score                float64
	Gaps                 []smap.GapBlock
	Format               smap.AlignFormat
	AlignString          string
}

// TranscriptData is carried by Transcript features.
type TranscriptData struct {
	// Exons in virtual coordinates, in transcript order.
	Exons [][]int
}

// Feature is an object or a hit placed in the virtual frame. Start and End
// are virtual coordinates with Start <= End.
type Feature struct {
	ID         uint32
	Kind       Kind
	Key        smap.Key
	Name       string
	Strand     smap.Strand
	Start, End int
	Status     smap.Status

	Match      *MatchData
	Transcript *TranscriptData
}

// Length returns the virtual span of the feature.
func (feat Feature) Length() int { return feat.End - feat.Start + 1 }

// Reflect applies the reverse-complement transform of axis.
func (feat *Feature) Reflect(axis int) {
	feat.Start, feat.End = smap.ReflectRange(feat.Start, feat.End, axis)
	feat.Strand = -feat.Strand
	if feat.Transcript != nil {
		for _, ex := range feat.Transcript.Exons {
			ex[0], ex[1] = axis-ex[0], axis-ex[1]
		}
	}
	if feat.Match != nil {
		for i := range feat.Match.Gaps {
			g := &feat.Match.Gaps[i]
			g.RStart, g.REnd = axis-g.RStart, axis-g.REnd
		}
	}
}

// List is a Reflector over features.
type List []Feature

func (l List) Reflect(axis int) {
	for i := range l {
		l[i].Reflect(axis)
	}
}

// Sorting functions: By Name
// Use it with: sort.Sort(feature.ByName(features))
type ByName []Feature

func (f ByName) Len() int           { return len(f) }
func (f ByName) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }
func (f ByName) Less(i, j int) bool { return f[i].Name < f[j].Name }

// Sorting functions: By Start
type ByStart []Feature

func (f ByStart) Len() int      { return len(f) }
func (f ByStart) Swap(i, j int) { f[i], f[j] = f[j], f[i] }
func (f ByStart) Less(i, j int) bool {
	if f[i].Start == f[j].Start {
		return f[i].End < f[j].End
	}
	return f[i].Start < f[j].Start
}

// Region is a basic feature given in the frame of an object.
type Region struct {
	Key        smap.Key
	Start, End int
	Strand     smap.Strand
	Name       string
}

// ParseStrand accepts "+", "1", "+1", "-" and "-1".
func ParseStrand(raw string) smap.Strand {
	if raw == "-" || raw == "-1" {
		return smap.Reverse
	}
	return smap.Forward
}

// ReadTAB parses tabulated regions: object, start, end, strand, name. The
// name column is optional.
func ReadTAB(r io.Reader, defaultClass string) (regions []Region, err error) {
	tscanner := bufio.NewScanner(r)
	line := 0
	for tscanner.Scan() {
		line++
		text := tscanner.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		fields := strings.Split(text, "\t")
		if len(fields) < 4 {
			return nil, fmt.Errorf("Line %d: 4 columns expected, got %d", line, len(fields))
		}
		rg := Region{Key: smap.ParseKey(fields[0], defaultClass), Strand: ParseStrand(fields[3])}
		if rg.Start, err = strconv.Atoi(fields[1]); err != nil {
			return nil, fmt.Errorf("Line %d: %w", line, err)
		}
		if rg.End, err = strconv.Atoi(fields[2]); err != nil {
			return nil, fmt.Errorf("Line %d: %w", line, err)
		}
		if len(fields) > 4 {
			rg.Name = fields[4]
		} else {
			rg.Name = fmt.Sprintf("%s:%d-%d", rg.Key.Name, rg.Start, rg.End)
		}
		regions = append(regions, rg)
	}
	if err = tscanner.Err(); err != nil {
		return nil, err
	}
	return regions, nil
}
