//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

func TestParseTarget(t *testing.T) {
	c := qt.New(t)
	tests := []struct {
		in         string
		key        smap.Key
		start, end int
	}{
		{"Chr", smap.Key{Class: "Sequence", Name: "Chr"}, 0, 0},
		{"Chr:5-20", smap.Key{Class: "Sequence", Name: "Chr"}, 5, 20},
		{"Chr:20-5", smap.Key{Class: "Sequence", Name: "Chr"}, 20, 5},
		{"Clone:C1", smap.Key{Class: "Clone", Name: "C1"}, 0, 0},
		{"Clone:C1:1-100", smap.Key{Class: "Clone", Name: "C1"}, 1, 100},
		{"Clone:C-1", smap.Key{Class: "Clone", Name: "C-1"}, 0, 0},
	}
	for _, test := range tests {
		c.Run(test.in, func(c *qt.C) {
			tg, err := parseTarget(test.in, "Sequence")
			c.Assert(err, qt.IsNil)
			c.Assert(tg.Key, qt.Equals, test.key)
			c.Assert(tg.Start, qt.Equals, test.start)
			c.Assert(tg.End, qt.Equals, test.end)
			c.Assert(tg.Label, qt.Equals, test.in)
		})
	}
}

func TestParseTargetErrors(t *testing.T) {
	c := qt.New(t)
	_, err := parseTarget("Chr:0-10", "Sequence")
	c.Assert(err, qt.ErrorMatches, ".*range must be positive")
	_, err = parseTarget(":1-10", "Sequence")
	c.Assert(err, qt.ErrorMatches, ".*empty root")
}

func TestAddCommas(t *testing.T) {
	c := qt.New(t)
	c.Assert(AddCommas("12"), qt.Equals, "12")
	c.Assert(AddCommas("1234567"), qt.Equals, "1,234,567")
}
