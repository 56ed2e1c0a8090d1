//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package config holds the settings shared by all commands, unmarshalled
// from viper (flags and optional config file).
package config

import (
	"fmt"
	"io"

	"github.com/spf13/viper"

	"git.sr.ht/~vejnar/GeneMap/lib/feature"
	"git.sr.ht/~vejnar/GeneMap/lib/smap"
	"git.sr.ht/~vejnar/GeneMap/lib/store"
)

// Mismatch policies
const (
	MismatchFail         = "fail"
	MismatchContinue     = "continue"
	MismatchSilent       = "silent"
	MismatchContinueFail = "continue-fail"
)

// Config is the root-level settings struct.
type Config struct {
	// object files (SON)
	Store []string `mapstructure:"store"`
	// FASTA files of raw letters
	FASTA      []string `mapstructure:"fasta"`
	FASTAClass string   `mapstructure:"fasta_class"`
	// class of keys given without one
	DefaultClass string `mapstructure:"default_class"`

	Unclipped bool   `mapstructure:"unclipped"`
	MaxDepth  int    `mapstructure:"max_depth"`
	Mismatch  string `mapstructure:"mismatch"`

	ProfileFormat string `mapstructure:"profile_format"`
	// feature name mapping (tabulated file)
	Mapping   string `mapstructure:"mapping"`
	NumWorker int    `mapstructure:"num_worker"`
	Verbose   bool   `mapstructure:"verbose"`
}

// SetDefaults registers the default of every setting in v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("fasta_class", store.DefaultClass)
	v.SetDefault("default_class", store.DefaultClass)
	v.SetDefault("max_depth", smap.DefaultMaxDepth)
	v.SetDefault("mismatch", MismatchContinue)
	v.SetDefault("profile_format", "bedgraph")
	v.SetDefault("num_worker", 1)
}

// New returns the Config populated by v.
func New(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("unable to decode into struct, %w", err)
	}
	switch c.Mismatch {
	case MismatchFail, MismatchContinue, MismatchSilent, MismatchContinueFail:
	default:
		return c, fmt.Errorf("Unknown mismatch policy %s", c.Mismatch)
	}
	if c.NumWorker < 1 {
		c.NumWorker = 1
	}
	return c, nil
}

// MismatchFunc returns the mismatch callback of the policy. Reported
// mismatches are written to w. With the silent policy, only the first one is
// reported as the assembler stops calling back.
func (c Config) MismatchFunc(w io.Writer) smap.MismatchFunc {
	var verdict smap.Verdict
	switch c.Mismatch {
	case MismatchFail:
		verdict = smap.Fail
	case MismatchSilent:
		verdict = smap.Silent
	case MismatchContinueFail:
		verdict = smap.ContinueFail
	default:
		verdict = smap.Continue
	}
	return func(key smap.Key, pos int, have, got byte) smap.Verdict {
		fmt.Fprintf(w, "Mismatch at %d: %c, %s has %c\n", pos, have, key, got)
		return verdict
	}
}

// OpenStore loads the object and FASTA files.
func (c Config) OpenStore() (*store.MemStore, error) {
	if len(c.Store) == 0 && len(c.FASTA) == 0 {
		return nil, fmt.Errorf("No object or FASTA input")
	}
	ms, err := store.OpenSON(c.Store...)
	if err != nil {
		return nil, err
	}
	if err = ms.OpenFASTA(c.FASTAClass, c.FASTA...); err != nil {
		return nil, err
	}
	return ms, nil
}

// NewBuilder returns a builder over s with the map settings.
func (c Config) NewBuilder(s smap.Store) *smap.Builder {
	b := smap.NewBuilder(s, nil)
	b.Unclipped = c.Unclipped
	if c.MaxDepth > 0 {
		b.MaxDepth = c.MaxDepth
	}
	return b
}

// NameMapping reads the mapping file if set.
func (c Config) NameMapping() (feature.NameMapping, error) {
	if c.Mapping == "" {
		return nil, nil
	}
	return feature.OpenMapping(c.Mapping)
}
