//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

import (
	"bytes"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/seq/linear"
)

// Verdict is the answer of a MismatchFunc.
type Verdict int

const (
	// Fail aborts materialisation with Error.
	Fail Verdict = iota
	// Continue keeps the first letter and keeps reporting.
	Continue
	// Silent keeps the first letter and stops reporting.
	Silent
	// ContinueFail continues but the final status is Error.
	ContinueFail
)

// MismatchFunc is called when two leaves disagree at virtual position pos.
// have is the letter already placed, got the letter of key.
type MismatchFunc func(key Key, pos int, have, got byte) Verdict

// Mismatch handling states
const (
	propagate = iota
	continueSilently
	abort
)

type mismatchPolicy struct {
	fn         MismatchFunc
	state      int
	forceError bool
}

// mismatch records a mismatch and reports whether to go on.
func (mp *mismatchPolicy) mismatch(key Key, pos int, have, got byte) bool {
	if mp.state != propagate || mp.fn == nil {
		return mp.state != abort
	}
	switch mp.fn(key, pos, have, got) {
	case Fail:
		mp.state = abort
	case Silent:
		mp.state = continueSilently
	case ContinueFail:
		mp.forceError = true
	}
	return mp.state != abort
}

// Alphabet is used for materialised sequences.
var Alphabet = alphabet.DNAredundant

// DNA materialises the virtual sequence from the raw letters of the leaves.
// Positions covered by no leaf are 'n'. A nil onMismatch continues on every
// mismatch.
func (vm *VirtualMap) DNA(s Store, onMismatch MismatchFunc) (*linear.Seq, Status) {
	asm, st := NewAssembly(vm, s)
	if st.Failed() {
		return nil, st
	}
	buf := bytes.Repeat([]byte{'n'}, vm.Length())
	written := make([]bool, len(buf))
	policy := &mismatchPolicy{fn: onMismatch}
	for _, leaf := range asm.Leaves {
		for _, seg := range leaf.Segments {
			letters, err := s.Letters(leaf.Key, seg.LStart, seg.LEnd)
			if err != nil || len(letters) != seg.Len() {
				return nil, Error
			}
			if seg.Strand() == Reverse {
				letters = revComp(letters)
			}
			off := seg.VMin() - vm.Start
			for i, l := range letters {
				p := off + i
				if p < 0 || p >= len(buf) {
					continue
				}
				if written[p] {
					if !equalFold(buf[p], l) && !policy.mismatch(leaf.Key, vm.Start+p, buf[p], l) {
						return nil, Error
					}
					continue
				}
				buf[p] = l
				written[p] = true
			}
		}
	}
	sq := linear.NewSeq(vm.Root.String(), alphabet.BytesToLetters(buf), Alphabet)
	if policy.forceError {
		return sq, Error
	}
	return sq, PerfectMap
}

// revComp returns the reverse complement of letters.
func revComp(letters []byte) []byte {
	sq := linear.NewSeq("", alphabet.BytesToLetters(append([]byte(nil), letters...)), Alphabet)
	sq.RevComp()
	return alphabet.LettersToBytes(sq.Seq)
}

func equalFold(a, b byte) bool {
	return a == b || a|0x20 == b|0x20
}
