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
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"git.sr.ht/~vejnar/GeneMap/lib/config"
	"git.sr.ht/~vejnar/GeneMap/lib/smap"
	"git.sr.ht/~vejnar/GeneMap/lib/store"
)

var version = "DEV"

var (
	v         = viper.New()
	cfg       config.Config
	cfgFile   string
	timeStart = time.Now()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use: "genemap",
	Short: `Build virtual sequences from nested objects (sequences, clones, transcripts).
Map coordinates, DNA, features and reads into the virtual frame`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfgFile != "" {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return err
			}
		}
		var err error
		cfg, err = config.New(v)
		return err
	},
}

var globalFlags = []string{"store", "fasta", "fasta_class", "default_class", "unclipped", "max_depth", "mismatch", "mapping", "num_worker", "verbose"}

func init() {
	config.SetDefaults(v)
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "Path to config file (YAML, JSON or TOML)")
	pf.StringSlice("store", nil, "Path to object file(s) (.gz and .lz4 are decompressed)")
	pf.StringSlice("fasta", nil, "Path to FASTA file(s) with raw letters")
	pf.String("fasta_class", store.DefaultClass, "Class of FASTA objects")
	pf.String("default_class", store.DefaultClass, "Class of keys given without class")
	pf.Bool("unclipped", false, "Keep objects touching the range with their full extent")
	pf.Int("max_depth", smap.DefaultMaxDepth, "Maximum object nesting depth")
	pf.String("mismatch", config.MismatchContinue, "Letter mismatch policy: 'fail', 'continue', 'silent' or 'continue-fail'")
	pf.String("mapping", "", "Path to feature name(s) mapping (tabulated file)")
	pf.Int("num_worker", 1, "Number of worker(s)")
	pf.Bool("verbose", false, "Verbose")
	// Bind the parameters to viper
	for _, name := range globalFlags {
		v.BindPFlag(name, pf.Lookup(name))
	}
}

// logf prints a progress line when verbose.
func logf(format string, a ...any) {
	if cfg.Verbose {
		fmt.Fprintf(os.Stderr, "%.1fmin - "+format, append([]any{time.Since(timeStart).Minutes()}, a...)...)
	}
}

// AddCommas adds commas after every 3 characters.
func AddCommas(s string) string {
	if len(s) <= 3 {
		return s
	}
	return AddCommas(s[0:len(s)-3]) + "," + s[len(s)-3:]
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}
