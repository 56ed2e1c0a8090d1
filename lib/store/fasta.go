//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package store

import (
	"fmt"
	"io"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

// LoadFASTA sets the raw letters of the objects named in r. Unknown names
// become new objects of class.
func (ms *MemStore) LoadFASTA(r io.Reader, class string) (n int, err error) {
	if class == "" {
		class = DefaultClass
	}
	sc := seqio.NewScanner(fasta.NewReader(r, linear.NewSeq("", nil, alphabet.DNAredundant)))
	for sc.Next() {
		s := sc.Seq().(*linear.Seq)
		key := smap.Key{Class: class, Name: s.Name()}
		letters := alphabet.LettersToBytes(s.Seq)
		if o, ok := ms.objects[key]; ok {
			if o.Length != 0 && o.Length != len(letters) {
				return n, fmt.Errorf("%s: %d letters for length %d", key, len(letters), o.Length)
			}
			o.DNA = letters
			if o.Length == 0 {
				o.Length = len(letters)
			}
		} else {
			ms.Add(&Object{Key: key, DNA: letters})
		}
		n++
	}
	return n, sc.Error()
}

// OpenFASTA loads the FASTA files at paths into ms.
func (ms *MemStore) OpenFASTA(class string, paths ...string) error {
	for _, p := range paths {
		rc, err := Open(p)
		if err != nil {
			return err
		}
		_, err = ms.LoadFASTA(rc, class)
		rc.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}
