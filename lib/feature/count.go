//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// Counts holds, per feature, its length followed by a count and an RPKM per
// read multiplicity.
type Counts struct {
	Multis []int
	Values [][]float64
	Totals []float64
}

// NewCounts returns zero counts for features at multiplicities multis.
func NewCounts(features List, multis []int) *Counts {
	c := &Counts{Multis: multis, Values: make([][]float64, len(features)), Totals: make([]float64, 1+len(multis)*2)}
	for i, f := range features {
		c.Values[i] = make([]float64, 1+len(multis)*2)
		if f.Transcript != nil {
			for _, ex := range f.Transcript.Exons {
				c.Values[i][0] += float64(max(ex[0], ex[1]) - min(ex[0], ex[1]) + 1)
			}
		} else {
			c.Values[i][0] = float64(f.Length())
		}
	}
	return c
}

// Add counts weight for feature i in every multiplicity column accepting
// multi. It returns false if none does.
func (c *Counts) Add(i int, multi int, weight float64) (counted bool) {
	for icm, cm := range c.Multis {
		if multi <= cm {
			c.Values[i][1+2*icm] += weight
			counted = true
		}
	}
	return
}

// Normalize computes RPKM columns from the count totals. totals gives one
// total per multiplicity.
func (c *Counts) Normalize(totals []float64) {
	c.Totals[0] = 0
	for _, v := range c.Values {
		c.Totals[0] += v[0]
	}
	for icm := range c.Multis {
		col := 1 + 2*icm
		c.Totals[col] = totals[icm]
		if totals[icm] <= 0. {
			continue
		}
		for _, v := range c.Values {
			if v[0] > 0 {
				v[col+1] = v[col] * (1000. / v[0]) * (1000000. / totals[icm])
			}
		}
		c.Totals[col+1] = totals[icm] * (1000. / c.Totals[0]) * (1000000. / totals[icm])
	}
}

// WriteCounts writes counts as CSV with a total line.
func WriteCounts(w io.Writer, features List, c *Counts, mapping NameMapping) error {
	bw := bufio.NewWriter(w)
	// Header
	bw.WriteString("\"name\",\"length\"")
	for _, cm := range c.Multis {
		fmt.Fprintf(bw, ",\"count_%d\",\"rpkm_%d\"", cm, cm)
	}
	bw.WriteString("\n")
	// Totals
	bw.WriteString("\"total\"")
	for _, t := range c.Totals {
		bw.WriteString(",")
		bw.WriteString(strconv.FormatFloat(t, 'f', -1, 64))
	}
	bw.WriteString("\n")
	// Counts
	for i, f := range features {
		fmt.Fprintf(bw, "\"%s\"", mapping.MapName(f.Name))
		for _, v := range c.Values[i] {
			bw.WriteString(",")
			bw.WriteString(strconv.FormatFloat(v, 'f', -1, 32))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}
