//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/biogo/hts/sam"
)

// AlignFormat names a textual gapped-alignment representation.
type AlignFormat int

const (
	NoFormat AlignFormat = iota
	// Cigar is the SAM CIGAR ("10M2I5M").
	Cigar
	// ExonerateCigar is the exonerate CIGAR ("M 10 I 2 M 5").
	ExonerateCigar
	// Ensembl is the Ensembl CIGAR, counts of 1 are omitted ("10M2IM").
	Ensembl
)

var formatNames = []string{"gaps", "cigar", "exonerate_cigar", "ensembl"}

func (f AlignFormat) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return "unknown"
	}
	return formatNames[f]
}

// ParseAlignFormat returns the format named s.
func ParseAlignFormat(s string) (AlignFormat, error) {
	for i, n := range formatNames {
		if strings.EqualFold(s, n) {
			return AlignFormat(i), nil
		}
	}
	return NoFormat, fmt.Errorf("Unknown alignment format %s", s)
}

// Alignment operations
const (
	opMatch  = 'M'
	opInsert = 'I'
	opDelete = 'D'
)

type alignOp struct {
	op byte
	n  int
}

// blocksToOps returns the operations describing blocks. Blocks must be
// aligned (equal lengths) and ordered along both strands.
func blocksToOps(blocks []GapBlock) ([]alignOp, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("No block")
	}
	rdir, mdir := blockDirs(blocks)
	var ops []alignOp
	for i, b := range blocks {
		if b.RefLen() != b.MatchLen() {
			return nil, fmt.Errorf("Misaligned block %d", i)
		}
		if direction(b.RStart, b.REnd) != rdir && b.RStart != b.REnd {
			return nil, fmt.Errorf("Block %d on wrong reference strand", i)
		}
		if i > 0 {
			p := blocks[i-1]
			rg := (b.RStart-p.REnd)*rdir - 1
			mg := (b.MStart-p.MEnd)*mdir - 1
			if rg < 0 || mg < 0 {
				return nil, fmt.Errorf("Block %d overlaps block %d", i, i-1)
			}
			if rg > 0 {
				ops = append(ops, alignOp{opDelete, rg})
			}
			if mg > 0 {
				ops = append(ops, alignOp{opInsert, mg})
			}
			if rg == 0 && mg == 0 {
				ops[len(ops)-1].n += b.RefLen()
				continue
			}
		}
		ops = append(ops, alignOp{opMatch, b.RefLen()})
	}
	return ops, nil
}

func blockDirs(blocks []GapBlock) (rdir, mdir int) {
	rdir, mdir = 1, 1
	first, last := blocks[0], blocks[len(blocks)-1]
	if first.RStart != last.REnd {
		rdir = direction(first.RStart, last.REnd)
	}
	if first.MStart != last.MEnd {
		mdir = direction(first.MStart, last.MEnd)
	}
	return
}

// opsToBlocks rebuilds blocks from operations starting at refStart and
// matchStart.
func opsToBlocks(ops []alignOp, refStart, rdir, matchStart, mdir int) []GapBlock {
	var blocks []GapBlock
	r, m := refStart, matchStart
	lastMatch := false
	for _, o := range ops {
		switch o.op {
		case opMatch:
			if lastMatch {
				b := &blocks[len(blocks)-1]
				b.REnd += rdir * o.n
				b.MEnd += mdir * o.n
			} else {
				blocks = append(blocks, GapBlock{RStart: r, REnd: r + rdir*(o.n-1), MStart: m, MEnd: m + mdir*(o.n-1)})
			}
			r += rdir * o.n
			m += mdir * o.n
			lastMatch = true
		case opInsert:
			m += mdir * o.n
			lastMatch = false
		case opDelete:
			r += rdir * o.n
			lastMatch = false
		}
	}
	return blocks
}

// EncodeAlign returns blocks in format.
func EncodeAlign(format AlignFormat, blocks []GapBlock) (string, error) {
	ops, err := blocksToOps(blocks)
	if err != nil {
		return "", err
	}
	switch format {
	case Cigar:
		cigar := make(sam.Cigar, len(ops))
		for i, o := range ops {
			var t sam.CigarOpType
			switch o.op {
			case opMatch:
				t = sam.CigarMatch
			case opInsert:
				t = sam.CigarInsertion
			case opDelete:
				t = sam.CigarDeletion
			}
			cigar[i] = sam.NewCigarOp(t, o.n)
		}
		return cigar.String(), nil
	case ExonerateCigar:
		fields := make([]string, 0, 2*len(ops))
		for _, o := range ops {
			fields = append(fields, string(o.op), strconv.Itoa(o.n))
		}
		return strings.Join(fields, " "), nil
	case Ensembl:
		var sb strings.Builder
		for _, o := range ops {
			if o.n > 1 {
				sb.WriteString(strconv.Itoa(o.n))
			}
			sb.WriteByte(o.op)
		}
		return sb.String(), nil
	}
	return "", fmt.Errorf("Unknown alignment format %d", format)
}

// DecodeAlign parses s in format into blocks placed from refStart and
// matchStart, moving along rdir and mdir (1 or -1).
func DecodeAlign(format AlignFormat, s string, refStart, rdir, matchStart, mdir int) ([]GapBlock, error) {
	var ops []alignOp
	switch format {
	case Cigar:
		cigar, err := sam.ParseCigar([]byte(s))
		if err != nil {
			return nil, err
		}
		for _, co := range cigar {
			con := co.Type().Consumes()
			switch {
			case con.Query == 1 && con.Reference == 1:
				ops = append(ops, alignOp{opMatch, co.Len()})
			case con.Query == 1:
				ops = append(ops, alignOp{opInsert, co.Len()})
			case con.Reference == 1:
				ops = append(ops, alignOp{opDelete, co.Len()})
			}
		}
	case ExonerateCigar:
		fields := strings.Fields(s)
		if len(fields)%2 != 0 {
			return nil, fmt.Errorf("Odd number of fields in %q", s)
		}
		for i := 0; i < len(fields); i += 2 {
			n, err := strconv.Atoi(fields[i+1])
			if err != nil {
				return nil, err
			}
			o, err := parseOp(fields[i])
			if err != nil {
				return nil, err
			}
			ops = append(ops, alignOp{o, n})
		}
	case Ensembl:
		n := -1
		for _, c := range s {
			if c >= '0' && c <= '9' {
				if n < 0 {
					n = 0
				}
				n = n*10 + int(c-'0')
				continue
			}
			o, err := parseOp(string(c))
			if err != nil {
				return nil, err
			}
			if n < 0 {
				n = 1
			}
			ops = append(ops, alignOp{o, n})
			n = -1
		}
		if n >= 0 {
			return nil, fmt.Errorf("Trailing count in %q", s)
		}
	default:
		return nil, fmt.Errorf("Unknown alignment format %d", format)
	}
	if len(ops) == 0 {
		return nil, fmt.Errorf("Empty alignment %q", s)
	}
	for _, o := range ops {
		if o.n < 1 {
			return nil, fmt.Errorf("Bad count %d in %q", o.n, s)
		}
	}
	return opsToBlocks(ops, refStart, rdir, matchStart, mdir), nil
}

func parseOp(s string) (byte, error) {
	switch strings.ToUpper(s) {
	case "M", "=", "X":
		return opMatch, nil
	case "I":
		return opInsert, nil
	case "D", "N":
		return opDelete, nil
	}
	return 0, fmt.Errorf("Unknown alignment operation %q", s)
}
