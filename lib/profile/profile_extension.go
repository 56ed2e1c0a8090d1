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

// extension extends the first read to length along its own strand. It is
// designed for unstranded single-end sequencing, so read 2 and R1Strand are
// ignored.
func (p *Profile) extension(frag Fragment, overlap []bool, length int, count float32, ch *Changes) bool {
	if len(frag.Reads) == 0 || !overlap[0] {
		return false
	}
	am := frag.Reads[0]
	lo, hi := readSpan(am)
	if readStrand(am) == smap.Forward {
		// Coordinate must not go beyond feature end
		hi = min(p.Mapper.CoordsParent[len(p.Mapper.CoordsParent)-1][1], lo+length-1)
	} else {
		lo = max(p.Mapper.CoordsParent[0][0], hi-length+1)
	}
	var inside bool
	for v := lo; v <= hi; v++ {
		if idx, in := p.index(v); in {
			ch.Write(idx, count)
			inside = true
		}
	}
	return inside
}
