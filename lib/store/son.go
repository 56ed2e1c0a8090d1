//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package store

import (
	"encoding/json"
	"fmt"
	"io"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

// DefaultClass is used for keys given without class.
const DefaultClass = "Sequence"

type sonChild struct {
	Class  string  `json:"class"`
	Name   string  `json:"name"`
	Start  int     `json:"start"`
	End    int     `json:"end"`
	Exons  [][]int `json:"exons"`
	Blocks [][]int `json:"blocks"`
}

type sonAlignment struct {
	Class      string  `json:"class"`
	Name       string  `json:"name"`
	RefStart   int     `json:"ref_start"`
	RefEnd     int     `json:"ref_end"`
	MatchStart int     `json:"match_start"`
	MatchEnd   int     `json:"match_end"`
	Score      float64 `json:"score"`
	Format     string  `json:"format"`
	Align      string  `json:"align"`
	Gaps       [][]int `json:"gaps"`
	Ratio      int     `json:"ratio"`
}

type sonObject struct {
	Class      string         `json:"class"`
	Name       string         `json:"name"`
	Length     int            `json:"length"`
	DNA        string         `json:"dna"`
	Children   []sonChild     `json:"children"`
	Alignments []sonAlignment `json:"alignments"`
}

type son struct {
	Version int         `json:"son_version"`
	Objects []sonObject `json:"objects"`
}

func sonKey(class, name string) smap.Key {
	if class == "" {
		class = DefaultClass
	}
	return smap.Key{Class: class, Name: name}
}

func quad(q []int, what string, i int) ([]int, error) {
	if len(q) != 4 {
		return nil, fmt.Errorf("%s %d: 4 coordinates expected, got %d", what, i, len(q))
	}
	return q, nil
}

// LoadSON reads objects written in "Sequence Object Notation" into ms.
func (ms *MemStore) LoadSON(r io.Reader) error {
	d := json.NewDecoder(r)
	var doc son
	if err := d.Decode(&doc); err != nil {
		return fmt.Errorf("Error while parsing JSON object file: %w", err)
	}
	if doc.Version != 1 {
		return fmt.Errorf("Unknown SON version %d", doc.Version)
	}
	for _, so := range doc.Objects {
		o := &Object{Key: sonKey(so.Class, so.Name), Length: so.Length, DNA: []byte(so.DNA)}
		// Children
		for _, sc := range so.Children {
			c := smap.Child{Key: sonKey(sc.Class, sc.Name), Start: sc.Start, End: sc.End, Exons: sc.Exons}
			for i, b := range sc.Blocks {
				q, err := quad(b, "block", i)
				if err != nil {
					return fmt.Errorf("%s > %s: %w", o.Key, c.Key, err)
				}
				c.Blocks = append(c.Blocks, smap.Piece{LStart: q[0], LEnd: q[1], VStart: q[2], VEnd: q[3]})
			}
			o.Children = append(o.Children, c)
		}
		// Alignments
		for _, sa := range so.Alignments {
			at := smap.AlignmentTags{
				Target:      sonKey(sa.Class, sa.Name),
				RefStart:    sa.RefStart,
				RefEnd:      sa.RefEnd,
				MatchStart:  sa.MatchStart,
				MatchEnd:    sa.MatchEnd,
				Score:       sa.Score,
				AlignString: sa.Align,
				Ratio:       sa.Ratio,
			}
			if sa.Format != "" {
				f, err := smap.ParseAlignFormat(sa.Format)
				if err != nil {
					return fmt.Errorf("%s: %w", o.Key, err)
				}
				at.Format = f
			}
			for i, g := range sa.Gaps {
				q, err := quad(g, "gap", i)
				if err != nil {
					return fmt.Errorf("%s > %s: %w", o.Key, at.Target, err)
				}
				at.Gaps = append(at.Gaps, smap.GapBlock{RStart: q[0], REnd: q[1], MStart: q[2], MEnd: q[3]})
			}
			o.Alignments = append(o.Alignments, at)
		}
		ms.Add(o)
	}
	return nil
}

// OpenSON loads the object files at paths and links them.
func OpenSON(paths ...string) (*MemStore, error) {
	ms := NewMemStore()
	for _, p := range paths {
		rc, err := Open(p)
		if err != nil {
			return nil, err
		}
		err = ms.LoadSON(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if err := ms.Link(); err != nil {
		return nil, err
	}
	return ms, nil
}
