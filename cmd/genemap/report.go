//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"encoding/json"
	"io"
	"os"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

type segmentReport struct {
	LocalStart   int `json:"local_start"`
	LocalEnd     int `json:"local_end"`
	VirtualStart int `json:"virtual_start"`
	VirtualEnd   int `json:"virtual_end"`
}

type leafReport struct {
	Key      string          `json:"key"`
	Strand   string          `json:"strand"`
	Length   int             `json:"length"`
	Segments []segmentReport `json:"segments"`
}

type assemblyReport struct {
	Root     string       `json:"root"`
	Start    int          `json:"start"`
	End      int          `json:"end"`
	Length   int          `json:"length"`
	Reversed bool         `json:"reversed,omitempty"`
	Status   string       `json:"status"`
	Objects  int          `json:"objects"`
	Leaves   []leafReport `json:"leaves"`
	Gaps     [][]int      `json:"gaps"`
}

func newAssemblyReport(vm *smap.VirtualMap, asm *smap.Assembly, st smap.Status) assemblyReport {
	r := assemblyReport{
		Root:     vm.Root.String(),
		Start:    vm.Start,
		End:      vm.End,
		Length:   vm.Length(),
		Reversed: vm.Reversed,
		Status:   st.String(),
		Objects:  vm.Len(),
		Leaves:   []leafReport{},
		Gaps:     [][]int{},
	}
	if asm == nil {
		return r
	}
	for _, leaf := range asm.Leaves {
		lr := leafReport{Key: leaf.Key.String(), Strand: leaf.Strand.String(), Length: leaf.Length}
		for _, p := range leaf.Segments {
			lr.Segments = append(lr.Segments, segmentReport{LocalStart: p.LStart, LocalEnd: p.LEnd, VirtualStart: p.VStart, VirtualEnd: p.VEnd})
		}
		r.Leaves = append(r.Leaves, lr)
	}
	if gaps := asm.Gaps(); len(gaps) > 0 {
		r.Gaps = gaps
	}
	return r
}

// readCountReport summarises the reads counted per multiplicity.
type readCountReport struct {
	Input       float64 `json:"input"`
	AlignUnique float64 `json:"align_unique"`
	AlignMulti  float64 `json:"align_multi"`
}

func newReadCountReport(inputCount float64, countMultis []int, multisCounts []float64) readCountReport {
	r := readCountReport{Input: inputCount}
	for i := 0; i < len(countMultis); i++ {
		if countMultis[i] == 1 {
			r.AlignUnique = multisCounts[i]
		} else {
			r.AlignMulti += multisCounts[i]
		}
	}
	return r
}

// WriteReport writes report as JSON to pathReport, w with "-".
func WriteReport(pathReport string, w io.Writer, report any) error {
	b, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	b = append(b, '\n')
	if pathReport != "-" {
		return os.WriteFile(pathReport, b, 0666)
	}
	_, err = w.Write(b)
	return err
}
