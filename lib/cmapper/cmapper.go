//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.
//

package cmapper

import (
	"sort"
)

// CoordMapper maps between a parent frame and the spliced frame of an object
// made of exons. Coordinates are 1-based and inclusive.
type CoordMapper struct {
	CoordsParent, CoordsLocal [][]int
	Strand                    int8
	Length                    int
}

// Block is one exon: local [LStart,LEnd] placed at PStart (parent position of
// LStart) to PEnd.
type Block struct {
	LStart, LEnd int
	PStart, PEnd int
}

// FromPlacement returns the mapper of an object placed at start..end in its
// parent (start > end for reverse strand) with exons given as 1-based offsets
// from start along the object's strand.
func FromPlacement(start, end int, exons [][]int) *CoordMapper {
	cm := &CoordMapper{Strand: 1}
	if start > end {
		cm.Strand = -1
	}
	for _, ex := range exons {
		o1, o2 := ex[0], ex[1]
		if o1 > o2 {
			o1, o2 = o2, o1
		}
		if cm.Strand == 1 {
			cm.CoordsParent = append(cm.CoordsParent, []int{start + o1 - 1, start + o2 - 1})
		} else {
			cm.CoordsParent = append(cm.CoordsParent, []int{start - o2 + 1, start - o1 + 1})
		}
	}
	sort.Slice(cm.CoordsParent, func(i, j int) bool { return cm.CoordsParent[i][0] < cm.CoordsParent[j][0] })
	cm.Init()
	return cm
}

// Init.
func (cm *CoordMapper) Init() {
	// CoordsLocal
	cm.CoordsLocal = cm.CoordsLocal[:0]
	lcoord := 1
	if cm.Strand == 1 {
		for i := 0; i < len(cm.CoordsParent); i++ {
			exonLength := cm.CoordsParent[i][1] - cm.CoordsParent[i][0] + 1
			cm.CoordsLocal = append(cm.CoordsLocal, []int{lcoord, lcoord + exonLength - 1})
			lcoord += exonLength
		}
	} else if cm.Strand == -1 {
		for i := len(cm.CoordsParent) - 1; i >= 0; i-- {
			exonLength := cm.CoordsParent[i][1] - cm.CoordsParent[i][0] + 1
			cm.CoordsLocal = append(cm.CoordsLocal, []int{lcoord, lcoord + exonLength - 1})
			lcoord += exonLength
		}
	}
	// Length
	cm.Length = cm.GetLength()
}

// GetLength returns mapper length.
func (cm *CoordMapper) GetLength() (length int) {
	for _, iv := range cm.CoordsParent {
		length += iv[1] - iv[0] + 1
	}
	return
}

// Parent2Local translates a coordinate from the parent to the spliced system.
func (cm *CoordMapper) Parent2Local(coord int) (lcoord int, within bool) {
	exonIth := -1
	for i := 0; i < len(cm.CoordsParent); i++ {
		if coord >= cm.CoordsParent[i][0] && coord <= cm.CoordsParent[i][1] {
			exonIth = i
			break
		}
	}
	if exonIth != -1 {
		if cm.Strand == 1 {
			lcoord = cm.CoordsLocal[exonIth][0] + (coord - cm.CoordsParent[exonIth][0])
		} else if cm.Strand == -1 {
			lcoord = cm.CoordsLocal[len(cm.CoordsLocal)-1-exonIth][1] - (coord - cm.CoordsParent[exonIth][0])
		}
		within = true
	}
	return
}

// Local2Parent translates a coordinate from the spliced to the parent system.
func (cm *CoordMapper) Local2Parent(lcoord int) (coord int, within bool) {
	for i := 0; i < len(cm.CoordsLocal); i++ {
		if lcoord >= cm.CoordsLocal[i][0] && lcoord <= cm.CoordsLocal[i][1] {
			if cm.Strand == 1 {
				return cm.CoordsParent[i][0] + (lcoord - cm.CoordsLocal[i][0]), true
			}
			return cm.CoordsParent[len(cm.CoordsParent)-1-i][1] - (lcoord - cm.CoordsLocal[i][0]), true
		}
	}
	return
}

// Blocks returns one block per exon in local order.
func (cm *CoordMapper) Blocks() []Block {
	blocks := make([]Block, len(cm.CoordsLocal))
	for i, lc := range cm.CoordsLocal {
		b := Block{LStart: lc[0], LEnd: lc[1]}
		if cm.Strand == 1 {
			b.PStart, b.PEnd = cm.CoordsParent[i][0], cm.CoordsParent[i][1]
		} else {
			pc := cm.CoordsParent[len(cm.CoordsParent)-1-i]
			b.PStart, b.PEnd = pc[1], pc[0]
		}
		blocks[i] = b
	}
	return blocks
}
