//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

var (
	mapInverse bool
	mapChain   bool
)

var mapCmd = &cobra.Command{
	Use:   "map [ROOT[:START-END]] KEY X1 X2",
	Short: "Map a range of an object into the virtual frame",
	Long: `Map a range of an object into the virtual frame

Prints the object, the range after clipping, the mapped range and the status.
With --inverse, X1 and X2 are virtual coordinates mapped into the object.
With --chain, the range is mapped one parent at a time.
Without ROOT, the map is built on the root enclosing KEY.`,
	Args: cobra.RangeArgs(3, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		if mapInverse && mapChain {
			return fmt.Errorf("--inverse and --chain are exclusive")
		}
		var rootArg string
		if len(args) == 4 {
			rootArg, args = args[0], args[1:]
		}
		key := smap.ParseKey(args[0], cfg.DefaultClass)
		x1, err := strconv.Atoi(args[1])
		if err != nil {
			return err
		}
		x2, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		ms, err := cfg.OpenStore()
		if err != nil {
			return err
		}
		var t target
		if rootArg == "" {
			root, st := smap.FindRoot(ms, key)
			if st.Failed() {
				return &statusError{key.String(), st}
			}
			t = target{Key: root, Label: root.String()}
		} else if t, err = parseTarget(rootArg, cfg.DefaultClass); err != nil {
			return err
		}
		vm, err := t.build(cfg.NewBuilder(ms))
		if err != nil {
			return err
		}
		var m smap.Mapping
		switch {
		case mapInverse:
			m = vm.InverseMap(key, x1, x2)
		case mapChain:
			ki, ok := vm.Lookup(key)
			if !ok {
				return fmt.Errorf("%s not in %s", key, t.Label)
			}
			m = vm.MapChain(ki, x1, x2)
		default:
			m = vm.Map(key, x1, x2)
		}
		_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\t%d\t%d\t%d\t%s\n", key, m.X1, m.X2, m.Y1, m.Y2, m.Status)
		return err
	},
}

func init() {
	rootCmd.AddCommand(mapCmd)
	mapCmd.Flags().BoolVar(&mapInverse, "inverse", false, "Map virtual coordinates into the object")
	mapCmd.Flags().BoolVar(&mapChain, "chain", false, "Map one parent at a time")
}
