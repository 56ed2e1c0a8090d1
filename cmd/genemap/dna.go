//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"os"

	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
	"github.com/spf13/cobra"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

var (
	dnaRevComp bool
	dnaWidth   int
)

var dnaCmd = &cobra.Command{
	Use:   "dna ROOT[:START-END]...",
	Short: "Write the DNA of virtual sequences as FASTA",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := parseTargets(args)
		if err != nil {
			return err
		}
		ms, err := cfg.OpenStore()
		if err != nil {
			return err
		}
		seqs := make([]*linear.Seq, len(targets))
		failed := make([]smap.Status, len(targets))
		onMismatch := cfg.MismatchFunc(os.Stderr)
		err = forEachTarget(cmd.Context(), ms, targets, func(i int, vm *smap.VirtualMap) error {
			sq, st := vm.DNA(ms, onMismatch)
			if sq == nil {
				return &statusError{targets[i].Label, st}
			}
			failed[i] = st
			vm.CacheDNA(sq, nil)
			if dnaRevComp {
				vm.RevComp()
				sq, _ = vm.CachedDNA()
			}
			sq.ID = targets[i].Label
			seqs[i] = sq
			return nil
		})
		if err != nil {
			return err
		}
		w := fasta.NewWriter(cmd.OutOrStdout(), dnaWidth)
		for i, sq := range seqs {
			if _, err := w.Write(sq); err != nil {
				return err
			}
			if failed[i].Failed() {
				return &statusError{targets[i].Label, failed[i]}
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dnaCmd)
	dnaCmd.Flags().BoolVar(&dnaRevComp, "revcomp", false, "Reverse-complement the virtual sequences")
	dnaCmd.Flags().IntVar(&dnaWidth, "width", 60, "FASTA line width")
}
