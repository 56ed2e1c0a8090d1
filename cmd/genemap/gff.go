//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package main

import (
	"sort"

	"github.com/spf13/cobra"

	"git.sr.ht/~vejnar/GeneMap/lib/feature"
	"git.sr.ht/~vejnar/GeneMap/lib/gffout"
	"git.sr.ht/~vejnar/GeneMap/lib/smap"
	"git.sr.ht/~vejnar/GeneMap/lib/store"
)

// featureFlags select the features extracted from a map.
type featureFlags struct {
	classes       []string
	alignments    bool
	allowMisalign bool
	alignFormat   string
	pathRegions   string
}

func (ff *featureFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&ff.classes, "classes", nil, "Object classes to extract (all if empty)")
	cmd.Flags().StringVar(&ff.pathRegions, "path_regions", "", "Path to regions (tabulated: object, start, end, strand, name)")
}

func (ff *featureFlags) options() (feature.Options, error) {
	opts := feature.Options{Classes: ff.classes, Alignments: ff.alignments, AllowMisalign: ff.allowMisalign}
	if ff.alignFormat != "" {
		f, err := smap.ParseAlignFormat(ff.alignFormat)
		if err != nil {
			return opts, err
		}
		opts.Output = f
	}
	if ff.pathRegions != "" {
		rc, err := store.Open(ff.pathRegions)
		if err != nil {
			return opts, err
		}
		defer rc.Close()
		if opts.Regions, err = feature.ReadTAB(rc, cfg.DefaultClass); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

var (
	gffFlags    featureFlags
	gffAssembly bool
	gffRevComp  bool
)

var gffCmd = &cobra.Command{
	Use:   "gff ROOT[:START-END]...",
	Short: "Write the objects, homologies and regions of virtual sequences as GFF",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		targets, err := parseTargets(args)
		if err != nil {
			return err
		}
		opts, err := gffFlags.options()
		if err != nil {
			return err
		}
		mapping, err := cfg.NameMapping()
		if err != nil {
			return err
		}
		ms, err := cfg.OpenStore()
		if err != nil {
			return err
		}
		type result struct {
			vm       *smap.VirtualMap
			asm      *smap.Assembly
			features feature.List
		}
		results := make([]result, len(targets))
		err = forEachTarget(cmd.Context(), ms, targets, func(i int, vm *smap.VirtualMap) error {
			features, err := feature.Extract(vm, ms, opts)
			if err != nil {
				return err
			}
			var asm *smap.Assembly
			if gffAssembly {
				var st smap.Status
				if asm, st = smap.NewAssembly(vm, ms); st.Failed() && st != smap.NoData {
					return &statusError{targets[i].Label, st}
				}
			}
			if gffRevComp {
				// The assembly is rebuilt on the reversed map
				vm.RevComp(features)
				sort.Stable(feature.ByStart(features))
				for j := range features {
					features[j].ID = uint32(j)
				}
				if asm != nil {
					asm, _ = smap.NewAssembly(vm, ms)
				}
			}
			logf("%s: %d features\n", targets[i].Label, len(features))
			results[i] = result{vm, asm, features}
			return nil
		})
		if err != nil {
			return err
		}
		for i, r := range results {
			w := gffout.NewWriter(cmd.OutOrStdout(), targets[i].Label)
			w.Mapping = mapping
			if err := w.WriteHeader(r.vm, r.asm); err != nil {
				return err
			}
			if err := w.WriteFeatures(r.features); err != nil {
				return err
			}
			if err := w.Flush(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(gffCmd)
	gffFlags.register(gffCmd)
	gffCmd.Flags().BoolVar(&gffFlags.alignments, "alignments", false, "Extract homologies")
	gffCmd.Flags().BoolVar(&gffFlags.allowMisalign, "allow_misalign", false, "Keep homologies whose blocks do not align")
	gffCmd.Flags().StringVar(&gffFlags.alignFormat, "align_format", "cigar", "Homology alignment format: 'cigar', 'exonerate_cigar', 'ensembl' or 'gaps'")
	gffCmd.Flags().BoolVar(&gffAssembly, "assembly", false, "Write leaves and gaps as comments")
	gffCmd.Flags().BoolVar(&gffRevComp, "revcomp", false, "Reverse-complement the virtual sequences")
}
