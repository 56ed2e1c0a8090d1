//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

// splice adds every aligned base once, skipping gaps and the bases covered
// by both mates.
func (p *Profile) splice(frag Fragment, overlap []bool, count float32, ch *Changes) bool {
	var inside bool
	from := ch.LastIdx + 1
	for ir, am := range frag.Reads {
		if !overlap[ir] {
			continue
		}
		for _, b := range am.Gaps {
			lo, hi := min(b.RStart, b.REnd), max(b.RStart, b.REnd)
			for v := lo; v <= hi; v++ {
				idx, in := p.index(v)
				if !in || ch.has(from, idx) {
					continue
				}
				ch.Write(idx, count)
				inside = true
			}
		}
	}
	return inside
}
