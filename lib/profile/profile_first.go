//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

import (
	"math"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

// firstRead returns the index of the read sequenced first, -1 if it is not
// in frag.
func firstRead(frag Fragment, opts Options) int {
	if !opts.Paired {
		return 0
	}
	switch {
	case opts.R1Strand == smap.Forward && (frag.OnlyRead1 || len(frag.Reads) == 2):
		return 0
	case opts.R1Strand == smap.Reverse && len(frag.Reads) == 2:
		return 1
	case opts.R1Strand == smap.Reverse && len(frag.Reads) == 1 && !frag.OnlyRead1:
		return 0
	}
	return -1
}

func (p *Profile) first(frag Fragment, overlap []bool, opts Options, count float32, ch *Changes) bool {
	iRead := firstRead(frag, opts)
	if iRead == -1 || iRead >= len(frag.Reads) || !overlap[iRead] {
		return false
	}
	// 5' end in the profile orientation
	lo, hi := readSpan(frag.Reads[iRead])
	v := lo
	if p.Mapper.Strand == -1 {
		v = hi
	}
	idx, inside := p.index(v)
	if inside {
		ch.Write(idx, count)
	}
	return inside
}

func (p *Profile) firstLast(frag Fragment, overlap []bool, count float32, ch *Changes) bool {
	start, end, ok := p.fragmentCoords(frag, overlap)
	if !ok {
		return false
	}
	ch.Write(start, count)
	ch.Write(end-1, count)
	return true
}

func (p *Profile) position(frag Fragment, overlap []bool, fraction float64, count float32, ch *Changes) bool {
	start, end, ok := p.fragmentCoords(frag, overlap)
	if !ok {
		return false
	}
	ch.Write(start+int(math.Round(float64(end-1-start)*fraction)), count)
	return true
}
