//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"sort"
	"strings"

	"gopkg.in/fatih/set.v0"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

// TranscriptClass is the class of objects extracted as transcripts.
const TranscriptClass = "Transcript"

// Options selects what Extract dumps.
type Options struct {
	// Classes restricts objects to these classes; all if empty.
	Classes    []string
	Alignments bool
	// AllowMisalign keeps hits whose blocks do not align.
	AllowMisalign bool
	// Output selects the alignment string of Match features.
	Output  smap.AlignFormat
	Regions []Region
}

// Extract dumps the objects of vm, their homology hits and regions as
// features in the virtual frame, sorted by start.
func Extract(vm *smap.VirtualMap, s smap.Store, opts Options) (List, error) {
	var features List
	classes := set.New(set.NonThreadSafe)
	for _, c := range opts.Classes {
		classes.Add(c)
	}

	for i := 1; i < vm.Len(); i++ {
		ki := vm.At(i)
		if !classes.IsEmpty() && !classes.Has(ki.Key.Class) {
			continue
		}
		// Object
		if feat, ok := objectFeature(ki); ok {
			features = append(features, feat)
		}
		// Homology
		if !opts.Alignments {
			continue
		}
		hits, err := s.Alignments(ki.Key)
		if err != nil {
			return nil, err
		}
		for _, at := range hits {
			req := at.Request()
			req.AllowMisalign = opts.AllowMisalign
			req.Output = opts.Output
			am, st := vm.MapAlignment(ki, req)
			if !st.Overlaps() || len(am.Gaps) == 0 {
				continue
			}
			start, end := am.RefStart, am.RefEnd
			if start > end {
				start, end = end, start
			}
			features = append(features, Feature{
				Kind:   Match,
				Key:    at.Target,
				Name:   at.Target.Name,
				Strand: am.RefStrand * am.MatchStrand,
				Start:  start,
				End:    end,
				Status: st,
				Match: &MatchData{
					Target:      at.Target,
					MatchStart:  am.MatchStart,
					MatchEnd:    am.MatchEnd,
					Score:       at.Score,
					Gaps:        am.Gaps,
					Format:      am.Format,
					AlignString: am.AlignString,
				},
			})
		}
	}

	// Regions
	for _, rg := range opts.Regions {
		for _, ki := range vm.LookupAll(rg.Key) {
			m := ki.Map(rg.Start, rg.End)
			if !m.Status.Overlaps() {
				continue
			}
			dir := ki.Strand()
			if m.Y1 != m.Y2 {
				dir = smap.Forward
				if (m.Y1 > m.Y2) != (rg.Start > rg.End) {
					dir = smap.Reverse
				}
			}
			features = append(features, Feature{
				Kind:   Basic,
				Key:    rg.Key,
				Name:   rg.Name,
				Strand: rg.Strand * dir,
				Start:  min(m.Y1, m.Y2),
				End:    max(m.Y1, m.Y2),
				Status: m.Status,
			})
		}
	}

	sort.Stable(ByStart(features))
	for i := range features {
		features[i].ID = uint32(i)
	}
	return features, nil
}

func objectFeature(ki *smap.KeyInfo) (Feature, bool) {
	if len(ki.Pieces) == 0 {
		return Feature{}, false
	}
	lmin, lmax := ki.Pieces[0].LStart, ki.Pieces[len(ki.Pieces)-1].LEnd
	m := ki.Map(lmin, lmax)
	if !m.Status.Overlaps() {
		return Feature{}, false
	}
	feat := Feature{
		Kind:   Sequence,
		Key:    ki.Key,
		Name:   ki.Key.Name,
		Strand: ki.Strand(),
		Start:  min(m.Y1, m.Y2),
		End:    max(m.Y1, m.Y2),
		Status: m.Status,
	}
	if len(ki.Pieces) > 1 || strings.EqualFold(ki.Key.Class, TranscriptClass) {
		feat.Kind = Transcript
		exons := make([][]int, len(ki.Pieces))
		for i, p := range ki.Pieces {
			exons[i] = []int{p.VStart, p.VEnd}
		}
		feat.Transcript = &TranscriptData{Exons: exons}
	}
	return feat, true
}
