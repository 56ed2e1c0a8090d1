//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

// GapBlock is one ungapped block of a pairwise alignment. Reference and
// match coordinates are 1-based and inclusive; End < Start on a reverse
// strand.
type GapBlock struct {
	RStart, REnd int
	MStart, MEnd int
}

// RefLen returns the reference length of the block.
func (g GapBlock) RefLen() int { return abs(g.REnd-g.RStart) + 1 }

// MatchLen returns the match length of the block.
func (g GapBlock) MatchLen() int { return abs(g.MEnd-g.MStart) + 1 }

// AlignRequest describes an alignment in the frame of one KeyInfo.
type AlignRequest struct {
	RefStart, RefEnd     int
	MatchStart, MatchEnd int
	// Gaps, when set, take precedence over AlignString.
	Gaps        []GapBlock
	Format      AlignFormat
	AlignString string
	// Ratio is the number of reference units per match unit, 1 if unset.
	Ratio         int
	AllowMisalign bool
	// Output selects the string representation returned, none if NoFormat.
	// Peptide and misaligned alignments only carry Gaps.
	Output AlignFormat
}

// AlignmentMap is an alignment with its reference side in the virtual frame.
type AlignmentMap struct {
	RefStrand, MatchStrand Strand
	RefStart, RefEnd       int
	MatchStart, MatchEnd   int
	Gaps                   []GapBlock
	Format                 AlignFormat
	AlignString            string
}

// Reflect applies the reverse-complement transform of axis to the reference
// side of the alignment.
func (am *AlignmentMap) Reflect(axis int) {
	am.RefStart, am.RefEnd = axis-am.RefStart, axis-am.RefEnd
	for i := range am.Gaps {
		am.Gaps[i].RStart, am.Gaps[i].REnd = axis-am.Gaps[i].RStart, axis-am.Gaps[i].REnd
	}
	am.RefStrand = -am.RefStrand
}

func direction(start, end int) int {
	if end < start {
		return -1
	}
	return 1
}

// MapAlignment places the alignment req, whose reference coordinates are in
// the frame of ki, in the virtual frame.
func (vm *VirtualMap) MapAlignment(ki *KeyInfo, req AlignRequest) (AlignmentMap, Status) {
	var am AlignmentMap
	if req.RefStart <= 0 || req.RefEnd <= 0 || req.MatchStart <= 0 || req.MatchEnd <= 0 {
		return am, BadArgs
	}
	ratio := req.Ratio
	if ratio <= 0 {
		ratio = 1
	}
	rdir, mdir := direction(req.RefStart, req.RefEnd), direction(req.MatchStart, req.MatchEnd)

	// Blocks
	var blocks []GapBlock
	switch {
	case len(req.Gaps) > 0:
		blocks = req.Gaps
	case req.AlignString != "":
		var err error
		blocks, err = DecodeAlign(req.Format, req.AlignString, req.RefStart, rdir, req.MatchStart, mdir)
		if err != nil {
			return am, BadArgs
		}
	default:
		blocks = []GapBlock{{RStart: req.RefStart, REnd: req.RefEnd, MStart: req.MatchStart, MEnd: req.MatchEnd}}
	}
	var status Status
	misaligned := false
	for _, b := range blocks {
		if b.RefLen() != b.MatchLen()*ratio {
			if !req.AllowMisalign {
				return am, Misalign
			}
			misaligned = true
		}
	}

	// Whole alignment
	whole := ki.Map(req.RefStart, req.RefEnd)
	if !whole.Status.Overlaps() {
		return am, whole.Status
	}
	status |= whole.Status

	// Each block
	for _, b := range blocks {
		m := ki.Map(b.RStart, b.REnd)
		if !m.Status.Overlaps() {
			status |= InternalGaps
			continue
		}
		status |= m.Status & InternalGaps
		bdir := direction(b.MStart, b.MEnd)
		ms := b.MStart + bdir*(abs(m.X1-b.RStart)/ratio)
		me := b.MEnd - bdir*(abs(b.REnd-m.X2)/ratio)
		am.Gaps = append(am.Gaps, GapBlock{RStart: m.Y1, REnd: m.Y2, MStart: ms, MEnd: me})
	}
	if len(am.Gaps) == 0 {
		return am, NoOverlapInternal
	}

	am.RefStart, am.RefEnd = whole.Y1, whole.Y2
	am.MatchStart, am.MatchEnd = am.Gaps[0].MStart, am.Gaps[len(am.Gaps)-1].MEnd
	am.RefStrand = Strand(direction(whole.Y1, whole.Y2))
	if whole.Y1 == whole.Y2 {
		am.RefStrand = ki.Strand() * Strand(rdir)
	}
	am.MatchStrand = Strand(mdir)

	// Export; string formats only describe 1:1 aligned blocks
	if req.Output != NoFormat && ratio == 1 && !misaligned {
		s, err := EncodeAlign(req.Output, am.Gaps)
		if err != nil {
			return am, BadArgs
		}
		am.Format, am.AlignString = req.Output, s
	}
	return am, status
}
