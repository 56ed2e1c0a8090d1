//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

// target is a root object and an optional range in its frame.
type target struct {
	Key        smap.Key
	Start, End int
	Label      string
}

// parseTarget parses ROOT[:START-END]. ROOT may be CLASS:NAME. START > END
// selects the reverse-complemented map.
func parseTarget(s, defaultClass string) (target, error) {
	t := target{Label: s}
	root := s
	if i := strings.LastIndex(s, ":"); i != -1 {
		if a, b, ok := strings.Cut(s[i+1:], "-"); ok {
			start, err1 := strconv.Atoi(a)
			end, err2 := strconv.Atoi(b)
			if err1 == nil && err2 == nil {
				if start <= 0 || end <= 0 {
					return t, fmt.Errorf("%s: range must be positive", s)
				}
				t.Start, t.End = start, end
				root = s[:i]
			}
		}
	}
	if root == "" {
		return t, fmt.Errorf("%s: empty root", s)
	}
	t.Key = smap.ParseKey(root, defaultClass)
	return t, nil
}

func parseTargets(args []string) ([]target, error) {
	targets := make([]target, len(args))
	for i, a := range args {
		t, err := parseTarget(a, cfg.DefaultClass)
		if err != nil {
			return nil, err
		}
		targets[i] = t
	}
	return targets, nil
}

// build returns the virtual map of t.
func (t target) build(b *smap.Builder) (*smap.VirtualMap, error) {
	vm, st := b.Build(t.Key, t.Start, t.End)
	if st.Failed() {
		if err := b.Err(); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", t.Label, st, err)
		}
		return nil, fmt.Errorf("%s: %s", t.Label, st)
	}
	if st.Clipped() {
		logf("%s clipped to %d-%d (%s)\n", t.Label, vm.Start, vm.End, st)
	}
	return vm, nil
}

// forEachTarget builds the maps of targets concurrently and runs fn on each.
// Results are indexed by target.
func forEachTarget(ctx context.Context, s smap.Store, targets []target, fn func(i int, vm *smap.VirtualMap) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.NumWorker)
	for i := range targets {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// Builders and their cache are not shared
			vm, err := targets[i].build(cfg.NewBuilder(s))
			if err != nil {
				return err
			}
			logf("Built %s: %d objects\n", targets[i].Label, vm.Len())
			return fn(i, vm)
		})
	}
	return g.Wait()
}

type statusError struct {
	label  string
	status smap.Status
}

func (e *statusError) Error() string { return fmt.Sprintf("%s: %s", e.label, e.status) }
