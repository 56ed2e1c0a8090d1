//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

import (
	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

// lastRead returns the index of the read sequenced last, -1 if it is not in
// frag.
func lastRead(frag Fragment, opts Options) int {
	if !opts.Paired {
		return 0
	}
	switch {
	case opts.R1Strand == smap.Forward && len(frag.Reads) == 1 && !frag.OnlyRead1:
		return 0
	case opts.R1Strand == smap.Forward && len(frag.Reads) == 2:
		return 1
	case opts.R1Strand == smap.Reverse && (frag.OnlyRead1 || len(frag.Reads) == 2):
		return 0
	}
	return -1
}

func (p *Profile) last(frag Fragment, overlap []bool, opts Options, count float32, ch *Changes) bool {
	iRead := lastRead(frag, opts)
	if iRead == -1 || iRead >= len(frag.Reads) || !overlap[iRead] {
		return false
	}
	// 3' end in the profile orientation
	lo, hi := readSpan(frag.Reads[iRead])
	v := hi
	if p.Mapper.Strand == -1 {
		v = lo
	}
	idx, inside := p.index(v)
	if inside {
		ch.Write(idx, count)
	}
	return inside
}
