//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package esam

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

// PathSAM stores Path to SAM (Binary=false) or BAM (Binary=true) file.
type PathSAM struct {
	Path   string
	Binary bool
}

// Reader reads the records of one SAM or BAM input.
type Reader struct {
	sam.RecordReader
	header  *sam.Header
	closers []io.Closer
	cmd     *exec.Cmd
}

// Open opens a SAM/BAM file. With cmd, a SAM file is read from the output
// of cmd run with the path appended (a decompressor for example).
func Open(p PathSAM, cmd []string, nWorker int) (*Reader, error) {
	rd := &Reader{}
	var in io.Reader
	if len(cmd) > 0 && !p.Binary {
		c := exec.Command(cmd[0], append(cmd[1:], p.Path)...)
		pp, err := c.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if err = c.Start(); err != nil {
			return nil, err
		}
		in, rd.cmd = pp, c
		// Closing the pipe first unblocks a command still writing
		rd.closers = append(rd.closers, pp)
	} else {
		f, err := os.Open(p.Path)
		if err != nil {
			return nil, err
		}
		in = f
		rd.closers = append(rd.closers, f)
	}
	if p.Binary {
		br, err := bam.NewReader(in, nWorker)
		if err != nil {
			rd.Close()
			return nil, err
		}
		rd.RecordReader, rd.header = br, br.Header()
		rd.closers = append(rd.closers, br)
	} else {
		sr, err := sam.NewReader(in)
		if err != nil {
			rd.Close()
			return nil, err
		}
		rd.RecordReader, rd.header = sr, sr.Header()
	}
	return rd, nil
}

// Header returns the header of the input.
func (rd *Reader) Header() *sam.Header { return rd.header }

// Close releases the input and waits for the command if any.
func (rd *Reader) Close() (err error) {
	for i := len(rd.closers) - 1; i >= 0; i-- {
		if e := rd.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	if rd.cmd != nil {
		if e := rd.cmd.Wait(); e != nil && err == nil {
			err = e
		}
	}
	return
}

// Blocks returns the aligned blocks of r. Reference coordinates are 1-based;
// match coordinates are along the original read, decreasing for reads
// aligned on the reverse strand.
func Blocks(r *sam.Record) []smap.GapBlock {
	var qlen int
	for _, co := range r.Cigar {
		qlen += co.Len() * co.Type().Consumes().Query
	}
	step := 1
	if r.Flags&sam.Reverse != 0 {
		step = -1
	}
	readPos := func(q int) int {
		if step < 0 {
			return qlen - q + 1
		}
		return q
	}
	var blocks []smap.GapBlock
	ref, q := r.Pos+1, 1
	for _, co := range r.Cigar {
		con := co.Type().Consumes()
		n := co.Len()
		if con.Query == 1 && con.Reference == 1 {
			b := smap.GapBlock{RStart: ref, REnd: ref + n - 1, MStart: readPos(q), MEnd: readPos(q + n - 1)}
			// =/X runs are one block
			if k := len(blocks) - 1; k >= 0 && blocks[k].REnd+1 == b.RStart && blocks[k].MEnd+step == b.MStart {
				blocks[k].REnd, blocks[k].MEnd = b.REnd, b.MEnd
			} else {
				blocks = append(blocks, b)
			}
		}
		ref += n * con.Reference
		q += n * con.Query
	}
	return blocks
}

// Request returns the alignment request placing r, whose reference is an
// object of the store, in a virtual map.
func Request(r *sam.Record) (smap.AlignRequest, error) {
	blocks := Blocks(r)
	if len(blocks) == 0 {
		return smap.AlignRequest{}, fmt.Errorf("%s: no aligned block", r.Name)
	}
	first, last := blocks[0], blocks[len(blocks)-1]
	return smap.AlignRequest{
		RefStart:   first.RStart,
		RefEnd:     last.REnd,
		MatchStart: first.MStart,
		MatchEnd:   last.MEnd,
		Gaps:       blocks,
	}, nil
}

// Overlap returns the number of aligned bases of r within [start,end]
// (1-based).
func Overlap(r *sam.Record, start, end int) (overlap int) {
	for _, b := range Blocks(r) {
		if o := min(b.REnd, end) - max(b.RStart, start) + 1; o > 0 {
			overlap += o
		}
	}
	return
}
