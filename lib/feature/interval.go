//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"fmt"

	"github.com/biogo/store/interval"
)

// Integer-specific intervals over virtual coordinates. The inclusive range
// [a,b] is stored half-open as [a,b+1).

type IntInterval struct {
	Start, End int
	UID        uintptr
	Index      int
}

func newIntInterval(start, end int, uid uintptr, index int) IntInterval {
	if start > end {
		start, end = end, start
	}
	return IntInterval{Start: start, End: end + 1, UID: uid, Index: index}
}

// OverlapLength returns the number of bases shared with b.
func (i IntInterval) OverlapLength(b interval.IntRange) int {
	return max(0, min(i.End, b.End)-max(i.Start, b.Start))
}

func (i IntInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return i.End > b.Start && i.Start < b.End
}

func (i IntInterval) ID() uintptr {
	return i.UID
}

func (i IntInterval) Range() interval.IntRange {
	return interval.IntRange{Start: i.Start, End: i.End}
}

func (i IntInterval) String() string {
	return fmt.Sprintf("[%d,%d)#%d-%d", i.Start, i.End, i.UID, i.Index)
}
