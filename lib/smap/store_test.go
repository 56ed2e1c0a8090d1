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
	"strings"
)

type testObject struct {
	length   int
	dna      string
	children []Child
	aligns   []AlignmentTags
	parent   *Key
}

// testStore is a minimal Store over a map.
type testStore struct {
	objects map[Key]*testObject
	calls   int
}

func newTestStore() *testStore {
	return &testStore{objects: make(map[Key]*testObject)}
}

func seqKey(name string) Key { return Key{Class: "Sequence", Name: name} }

func (s *testStore) add(key Key, length int, dna string) *testObject {
	o := &testObject{length: length, dna: dna}
	s.objects[key] = o
	return o
}

func (s *testStore) place(parent Key, c Child) {
	s.objects[parent].children = append(s.objects[parent].children, c)
	p := parent
	if o, ok := s.objects[c.Key]; ok {
		o.parent = &p
	}
}

func (s *testStore) get(key Key) (*testObject, error) {
	o, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s not found", key)
	}
	return o, nil
}

func (s *testStore) Children(key Key) ([]Child, error) {
	s.calls++
	o, err := s.get(key)
	if err != nil {
		return nil, err
	}
	return o.children, nil
}

func (s *testStore) Length(key Key) (int, error) {
	o, err := s.get(key)
	if err != nil {
		return 0, err
	}
	return o.length, nil
}

func (s *testStore) RawLength(key Key) (int, error) {
	o, err := s.get(key)
	if err != nil {
		return 0, err
	}
	return len(o.dna), nil
}

func (s *testStore) Letters(key Key, start, end int) ([]byte, error) {
	o, err := s.get(key)
	if err != nil {
		return nil, err
	}
	if start < 1 || end > len(o.dna) || start > end {
		return nil, fmt.Errorf("%s: bad range %d-%d", key, start, end)
	}
	return []byte(o.dna[start-1 : end]), nil
}

func (s *testStore) Alignments(key Key) ([]AlignmentTags, error) {
	o, err := s.get(key)
	if err != nil {
		return nil, err
	}
	return o.aligns, nil
}

func (s *testStore) Parent(key Key) (Key, bool, error) {
	o, err := s.get(key)
	if err != nil {
		return Key{}, false, err
	}
	if o.parent == nil {
		return Key{}, false, nil
	}
	return *o.parent, true, nil
}

// chrStore is Chr (1000) > Clone (101..600) > Tx (clone 200..51, 3 exons).
func chrStore() *testStore {
	s := newTestStore()
	s.add(seqKey("Chr"), 1000, "")
	s.add(seqKey("Clone"), 500, "")
	s.add(Key{"Transcript", "Tx"}, 150, "")
	s.place(seqKey("Chr"), Child{Key: seqKey("Clone"), Start: 101, End: 600})
	s.place(seqKey("Clone"), Child{Key: Key{"Transcript", "Tx"}, Start: 200, End: 51, Exons: [][]int{{1, 20}, {61, 100}, {131, 150}}})
	return s
}

// chrSeqStore is chrStore with letters on Chr.
func chrSeqStore() *testStore {
	s := chrStore()
	s.objects[seqKey("Chr")].dna = strings.Repeat("a", 1000)
	return s
}
