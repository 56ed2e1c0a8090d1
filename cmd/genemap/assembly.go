//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"github.com/spf13/cobra"

	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

var assemblyReportPath string

var assemblyCmd = &cobra.Command{
	Use:   "assembly ROOT[:START-END]...",
	Short: "Report the leaves and gaps making up virtual sequences (JSON)",
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
		reports := make([]assemblyReport, len(targets))
		err = forEachTarget(cmd.Context(), ms, targets, func(i int, vm *smap.VirtualMap) error {
			asm, st := smap.NewAssembly(vm, ms)
			if st.Failed() && st != smap.NoData {
				return &statusError{targets[i].Label, st}
			}
			reports[i] = newAssemblyReport(vm, asm, st)
			return nil
		})
		if err != nil {
			return err
		}
		return WriteReport(assemblyReportPath, cmd.OutOrStdout(), reports)
	},
}

func init() {
	rootCmd.AddCommand(assemblyCmd)
	assemblyCmd.Flags().StringVar(&assemblyReportPath, "path_report", "-", "Write report to path (stdout with -)")
}
