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
	"strconv"

	"github.com/biogo/hts/sam"
)

const (
	MDDeletion = iota
	MDMismatch
	MDSkip
)

type TagMDOp struct {
	Op     int
	Length int
	Seq    []byte
}

func isBase(l byte) bool { return (l >= 'A' && l <= 'Z') || (l >= 'a' && l <= 'z') }

// ParseTagMD parses the MD attribute to blocks.
func ParseTagMD(rawTag string) (blocks []TagMDOp, err error) {
	i := 0
	for i < len(rawTag) {
		switch l := rawTag[i]; {
		case l == '^':
			j := i + 1
			for j < len(rawTag) && isBase(rawTag[j]) {
				j++
			}
			if j == i+1 {
				return blocks, fmt.Errorf("MD %s: empty deletion at %d", rawTag, i)
			}
			blocks = append(blocks, TagMDOp{Op: MDDeletion, Length: j - i - 1, Seq: []byte(rawTag[i+1 : j])})
			i = j
		case isBase(l):
			blocks = append(blocks, TagMDOp{Op: MDMismatch, Length: 1, Seq: []byte{l}})
			i++
		default:
			j := i
			for j < len(rawTag) && rawTag[j] >= '0' && rawTag[j] <= '9' {
				j++
			}
			step, err := strconv.Atoi(rawTag[i:j])
			if err != nil {
				return blocks, fmt.Errorf("MD %s: %w", rawTag, err)
			}
			if step > 0 {
				blocks = append(blocks, TagMDOp{Op: MDSkip, Length: step})
			}
			i = j
		}
	}
	return blocks, nil
}

// Mismatches returns the number of mismatched and deleted reference bases
// of r according to its MD tag. found is false without MD tag.
func Mismatches(r *sam.Record) (n int, found bool, err error) {
	tag, found := r.Tag([]byte("MD"))
	if !found {
		return 0, false, nil
	}
	md, ok := tag.Value().(string)
	if !ok {
		return 0, true, fmt.Errorf("%s: MD tag is not a string", r.Name)
	}
	blocks, err := ParseTagMD(md)
	if err != nil {
		return 0, true, err
	}
	for _, b := range blocks {
		if b.Op != MDSkip {
			n += b.Length
		}
	}
	return n, true, nil
}
