//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

func (p *Profile) all(frag Fragment, overlap []bool, count float32, ch *Changes) bool {
	start, end, ok := p.fragmentCoords(frag, overlap)
	if !ok {
		return false
	}
	for ip := start; ip < end; ip++ {
		ch.Write(ip, count)
	}
	return true
}
