//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package store

import (
	"errors"
	"fmt"
	"sort"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

var (
	ErrNotFound   = errors.New("object not found")
	ErrNoSequence = errors.New("no sequence")
)

// Object is one record of the store.
type Object struct {
	Key    smap.Key
	Length int
	DNA    []byte

	Children   []smap.Child
	Alignments []smap.AlignmentTags

	parent    smap.Key
	hasParent bool
}

// MemStore keeps every object in memory. It is safe for concurrent reads once
// loaded.
type MemStore struct {
	objects map[smap.Key]*Object
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[smap.Key]*Object)}
}

// Add inserts or replaces an object.
func (ms *MemStore) Add(o *Object) {
	if o.Length == 0 {
		o.Length = len(o.DNA)
	}
	ms.objects[o.Key] = o
}

// Object returns the object of key.
func (ms *MemStore) Object(key smap.Key) (*Object, error) {
	o, ok := ms.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return o, nil
}

// Keys returns all keys sorted by class then name.
func (ms *MemStore) Keys() []smap.Key {
	keys := make([]smap.Key, 0, len(ms.objects))
	for k := range ms.objects {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Class == keys[j].Class {
			return keys[i].Name < keys[j].Name
		}
		return keys[i].Class < keys[j].Class
	})
	return keys
}

// Len returns the number of objects.
func (ms *MemStore) Len() int { return len(ms.objects) }

// Link sets the parent of every child. It must be called after loading.
func (ms *MemStore) Link() error {
	for _, o := range ms.objects {
		o.hasParent = false
	}
	for _, k := range ms.Keys() {
		o := ms.objects[k]
		for _, c := range o.Children {
			co, ok := ms.objects[c.Key]
			if !ok {
				return fmt.Errorf("child %s of %s: %w", c.Key, k, ErrNotFound)
			}
			if !co.hasParent {
				co.parent, co.hasParent = k, true
			}
		}
	}
	return nil
}

// Roots returns the objects without parent.
func (ms *MemStore) Roots() (roots []smap.Key) {
	for _, k := range ms.Keys() {
		if !ms.objects[k].hasParent {
			roots = append(roots, k)
		}
	}
	return
}

func (ms *MemStore) Children(key smap.Key) ([]smap.Child, error) {
	o, err := ms.Object(key)
	if err != nil {
		return nil, err
	}
	return o.Children, nil
}

func (ms *MemStore) Length(key smap.Key) (int, error) {
	o, err := ms.Object(key)
	if err != nil {
		return 0, err
	}
	return o.Length, nil
}

func (ms *MemStore) RawLength(key smap.Key) (int, error) {
	o, err := ms.Object(key)
	if err != nil {
		return 0, err
	}
	return len(o.DNA), nil
}

func (ms *MemStore) Letters(key smap.Key, start, end int) ([]byte, error) {
	o, err := ms.Object(key)
	if err != nil {
		return nil, err
	}
	if len(o.DNA) == 0 {
		return nil, fmt.Errorf("%s: %w", key, ErrNoSequence)
	}
	if start < 1 || end > len(o.DNA) || start > end {
		return nil, fmt.Errorf("%s: range %d-%d outside 1-%d", key, start, end, len(o.DNA))
	}
	return o.DNA[start-1 : end], nil
}

func (ms *MemStore) Alignments(key smap.Key) ([]smap.AlignmentTags, error) {
	o, err := ms.Object(key)
	if err != nil {
		return nil, err
	}
	return o.Alignments, nil
}

func (ms *MemStore) Parent(key smap.Key) (smap.Key, bool, error) {
	o, err := ms.Object(key)
	if err != nil {
		return smap.Key{}, false, err
	}
	return o.parent, o.hasParent, nil
}
