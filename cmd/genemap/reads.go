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
	"io"
	"os"
	"strconv"
	"time"

	"github.com/biogo/hts/sam"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"git.sr.ht/~vejnar/GeneMap/lib/esam"
	"git.sr.ht/~vejnar/GeneMap/lib/feature"
	"git.sr.ht/~vejnar/GeneMap/lib/profile"
	"git.sr.ht/~vejnar/GeneMap/lib/smap"
)

const (
	cacheLength        = 2
	cacheProfileLength = 100
	sPairLength        = 10
)

// Packet is the contribution of one fragment to one feature.
type Packet struct {
	ID             int
	Counts         []float64
	ProfileChanges *profile.Changes
}

// Cache is the buffer a worker fills from one batch of pairs.
type Cache struct {
	Packets     []Packet
	LastPacket  int
	InputCount  float64
	MultiCounts []float64
}

func NewCache(size int, nMulti int) *Cache {
	c := Cache{}
	c.MultiCounts = make([]float64, nMulti)
	c.Packets = make([]Packet, size)
	for i := 0; i < size; i++ {
		c.Packets[i].Counts = make([]float64, nMulti)
		c.Packets[i].ProfileChanges = profile.NewChanges(cacheProfileLength)
	}
	return &c
}

func (c *Cache) Grow() {
	osize := len(c.Packets)
	nsize := max(osize+1, int(float64(osize)*1.5))
	c.Packets = append(c.Packets, make([]Packet, nsize-osize)...)
	for i := osize; i < nsize; i++ {
		c.Packets[i].Counts = make([]float64, len(c.MultiCounts))
		c.Packets[i].ProfileChanges = profile.NewChanges(cacheProfileLength)
	}
}

// Pair is a read or both mapped reads of a pair, read 1 first.
type Pair struct {
	Reads     []*sam.Record
	OnlyRead1 bool
}

// readsOptions are the settings of the reads command.
type readsOptions struct {
	pathSAMs, pathBAMs []string
	samCommand         []string
	readClass          string
	paired             bool
	readStrand         string
	ignoreNHTag        bool
	inProperPair       bool
	minMappingQuality  uint8
	maxMismatch        int
	minOverlap         int

	countMultis    []int
	countTotals    []float64
	countInProfile bool
	pathCount      string

	profileType             string
	profileMulti            int
	profileOverhang         int
	profilePositionFraction float64
	profileExtensionLength  int
	profileNorm             bool
	profilePaths            []string
	profileFormats          []string

	appendOutput bool
	pathReport   string
}

func (o readsOptions) inputs() []esam.PathSAM {
	var ps []esam.PathSAM
	for _, p := range o.pathSAMs {
		ps = append(ps, esam.PathSAM{Path: p})
	}
	for _, p := range o.pathBAMs {
		ps = append(ps, esam.PathSAM{Path: p, Binary: true})
	}
	return ps
}

var (
	readsOpts  readsOptions
	readsFlags featureFlags
)

// readsCounter maps reads into one virtual map and accumulates counts and
// profiles per feature.
type readsCounter struct {
	opts        readsOptions
	vm          *smap.VirtualMap
	features    feature.List
	tree        *feature.Tree
	profiles    []*profile.Profile
	profileOpts profile.Options
	counts      *feature.Counts

	inputCount   float64
	multisCounts []float64
}

func newReadsCounter(vm *smap.VirtualMap, features feature.List, opts readsOptions) (*readsCounter, error) {
	rc := &readsCounter{opts: opts, vm: vm, features: features}
	var err error
	if rc.tree, err = feature.BuildTree(features); err != nil {
		return nil, err
	}
	// Profile
	pt, err := profile.ParseType(opts.profileType)
	if err != nil {
		return nil, err
	}
	rc.profileOpts = profile.Options{
		Type:             pt,
		Paired:           opts.paired,
		R1Strand:         parseReadStrand(opts.readStrand),
		PositionFraction: opts.profilePositionFraction,
		ExtensionLength:  opts.profileExtensionLength,
	}
	if (pt == profile.TypeFirst || pt == profile.TypeLast) && rc.profileOpts.R1Strand == 0 {
		return nil, fmt.Errorf("Profile type %s requires --read_strand", pt)
	}
	if pt != profile.TypeNone {
		rc.profiles = make([]*profile.Profile, len(features))
		for i, f := range features {
			rc.profiles[i] = profile.FromFeature(f, opts.profileOverhang)
		}
	}
	rc.counts = feature.NewCounts(features, opts.countMultis)
	rc.multisCounts = make([]float64, len(opts.countMultis))
	return rc, nil
}

func parseReadStrand(s string) smap.Strand {
	switch s {
	case "+", "1", "+1":
		return smap.Forward
	case "-", "-1":
		return smap.Reverse
	}
	return 0
}

// readPairs sends the pairs of all inputs to ch by batches.
func (rc *readsCounter) readPairs(ctx context.Context, ch chan<- []*Pair, nWorker int) (nAlign uint64, err error) {
	timeLog := time.Now()
	for _, pathSAM := range rc.opts.inputs() {
		logf("Opening %s\n", pathSAM.Path)
		rd, err := esam.Open(pathSAM, rc.opts.samCommand, nWorker)
		if err != nil {
			return nAlign, err
		}
		var iPair int
		sPair := make([]*Pair, sPairLength)
		for {
			pair, err := nextPair(rd, rc.opts.paired)
			if err == io.EOF {
				break
			} else if err != nil {
				rd.Close()
				return nAlign, err
			}
			if len(pair.Reads) == 0 {
				continue
			}
			sPair[iPair] = pair
			if iPair == sPairLength-1 {
				select {
				case <-ctx.Done():
					rd.Close()
					return nAlign, ctx.Err()
				case ch <- sPair:
				}
				sPair = make([]*Pair, sPairLength)
				iPair = -1
			}
			iPair++
			nAlign++
			if timeNow := time.Now(); timeNow.Sub(timeLog).Minutes() > 1. {
				logf("%s align. - %.2f Ma/hr\n", AddCommas(strconv.FormatUint(nAlign, 10)), (float64(nAlign)/timeNow.Sub(timeStart).Hours())/1000000.)
				timeLog = timeNow
			}
		}
		// Send last packet
		if iPair > 0 {
			select {
			case <-ctx.Done():
				rd.Close()
				return nAlign, ctx.Err()
			case ch <- sPair[:iPair]:
			}
		}
		if err = rd.Close(); err != nil {
			return nAlign, err
		}
	}
	return nAlign, nil
}

// nextPair reads the next read, and its mate if paired. Unmapped reads and
// supplementary alignments are left out of the pair.
func nextPair(rd *esam.Reader, paired bool) (*Pair, error) {
	var pair Pair
	aread, err := rd.Read()
	if err != nil {
		return nil, err
	}
	if aread.Flags&sam.Supplementary != 0 {
		return &pair, nil
	}
	readMapped := aread.Flags&sam.Unmapped == 0
	if !paired {
		if readMapped {
			pair.Reads = append(pair.Reads, aread)
		}
		return &pair, nil
	}
	var mate *sam.Record
	if aread.Flags&sam.MateUnmapped == 0 {
		for {
			mate, err = rd.Read()
			if err != nil {
				if err == io.EOF {
					return nil, fmt.Errorf("Missing mate of %s", aread.Name)
				}
				return nil, err
			}
			if mate.Flags&sam.Supplementary == 0 {
				break
			}
		}
		if aread.Name != mate.Name {
			return nil, fmt.Errorf("Differerent names for Read1 %s and Read2 %s", aread.Name, mate.Name)
		}
	}
	isRead1First := aread.Flags&sam.Read1 != 0
	switch {
	case readMapped && mate != nil:
		if isRead1First {
			pair.Reads = append(pair.Reads, aread, mate)
		} else {
			pair.Reads = append(pair.Reads, mate, aread)
		}
	case readMapped:
		pair.Reads = append(pair.Reads, aread)
		pair.OnlyRead1 = isRead1First
	case mate != nil:
		pair.Reads = append(pair.Reads, mate)
		pair.OnlyRead1 = !isRead1First
	}
	return &pair, nil
}

// multiplicity returns the NH tag of the first read.
func (rc *readsCounter) multiplicity(pair *Pair) (int, error) {
	if rc.opts.ignoreNHTag {
		return 1, nil
	}
	tag, found := pair.Reads[0].Tag([]byte{'N', 'H'})
	if !found {
		return 0, fmt.Errorf("%s: missing NH tag", pair.Reads[0].Name)
	}
	switch v := tag.Value().(type) {
	case uint8:
		return int(v), nil
	case int8:
		return int(v), nil
	case uint16:
		return int(v), nil
	case int16:
		return int(v), nil
	case uint32:
		return int(v), nil
	case int32:
		return int(v), nil
	}
	return 0, fmt.Errorf("%s: NH tag is not an integer", pair.Reads[0].Name)
}

// keep applies the read filters to pair.
func (rc *readsCounter) keep(pair *Pair) (bool, error) {
	for _, aread := range pair.Reads {
		if rc.opts.inProperPair && aread.Flags&sam.ProperPair == 0 {
			return false, nil
		}
		if aread.MapQ < rc.opts.minMappingQuality {
			return false, nil
		}
		if rc.opts.maxMismatch >= 0 {
			n, found, err := esam.Mismatches(aread)
			if err != nil {
				return false, err
			}
			if found && n > rc.opts.maxMismatch {
				return false, nil
			}
		}
	}
	return true, nil
}

// fragments places pair in the virtual frame, once per placement of the
// reference object of its reads.
func (rc *readsCounter) fragments(pair *Pair) ([]profile.Fragment, error) {
	var ref string
	for _, aread := range pair.Reads {
		if aread.Ref == nil {
			return nil, nil
		}
		if ref != "" && aread.Ref.Name() != ref {
			// Mates on different objects
			return nil, nil
		}
		ref = aread.Ref.Name()
	}
	reqs := make([]smap.AlignRequest, len(pair.Reads))
	for i, aread := range pair.Reads {
		req, err := esam.Request(aread)
		if err != nil {
			return nil, err
		}
		reqs[i] = req
	}
	var frags []profile.Fragment
	for _, ki := range rc.vm.LookupAll(smap.Key{Class: rc.opts.readClass, Name: ref}) {
		frag := profile.Fragment{OnlyRead1: pair.OnlyRead1}
		var mapped []int
		for i, req := range reqs {
			am, st := rc.vm.MapAlignment(ki, req)
			if !st.Overlaps() {
				continue
			}
			frag.Reads = append(frag.Reads, am)
			mapped = append(mapped, i)
		}
		// A pair partly outside the map keeps its mapped read
		if len(reqs) == 2 && len(mapped) == 1 {
			frag.OnlyRead1 = mapped[0] == 0
		}
		if len(frag.Reads) > 0 {
			frags = append(frags, frag)
		}
	}
	return frags, nil
}

// overlaps returns the aligned length of frag on each feature, by feature
// index. Reads are matched to features on the strand set by R1Strand.
func (rc *readsCounter) overlaps(frag profile.Fragment) []feature.Overlap {
	lengths := make(map[int]int)
	var order []int
	for i, am := range frag.Reads {
		var strand smap.Strand
		if r1 := rc.profileOpts.R1Strand; r1 != 0 {
			strand = am.RefStrand * am.MatchStrand * r1
			isRead2 := rc.opts.paired && (i == 1 || (len(frag.Reads) == 1 && !frag.OnlyRead1))
			if isRead2 {
				strand = -strand
			}
		}
		for _, o := range rc.tree.OverlapAlignment(am, strand) {
			if _, ok := lengths[o.Index]; !ok {
				order = append(order, o.Index)
			}
			lengths[o.Index] += o.Length
		}
	}
	overlaps := make([]feature.Overlap, 0, len(order))
	for _, i := range order {
		overlaps = append(overlaps, feature.Overlap{Index: i, Length: lengths[i]})
	}
	return overlaps
}

// addPair counts pair in c.
func (rc *readsCounter) addPair(pair *Pair, c *Cache) error {
	pairMulti, err := rc.multiplicity(pair)
	if err != nil {
		return err
	}
	if pairMulti < 1 {
		pairMulti = 1
	}
	c.InputCount += 1. / float64(pairMulti)
	if ok, err := rc.keep(pair); err != nil || !ok {
		return err
	}
	frags, err := rc.fragments(pair)
	if err != nil || len(frags) == 0 {
		return err
	}
	// Each placement of the reference object is one more hit
	multi := pairMulti * len(frags)
	pairCount := 1. / float32(multi)

	var pairKeep bool
	for _, frag := range frags {
		for _, overlap := range rc.overlaps(frag) {
			if overlap.Length < rc.opts.minOverlap {
				continue
			}
			if len(c.Packets) <= c.LastPacket {
				c.Grow()
			}
			pk := &c.Packets[c.LastPacket]
			pk.ID = overlap.Index
			var inside bool
			if rc.profiles != nil && multi <= rc.opts.profileMulti {
				inside = rc.profiles[overlap.Index].Add(frag, pairCount, rc.profileOpts, pk.ProfileChanges)
				if inside {
					pairKeep = true
				}
			}
			if !rc.opts.countInProfile || inside {
				for icm, cm := range rc.opts.countMultis {
					if multi <= cm {
						pairKeep = true
						pk.Counts[icm] += 1. / float64(multi)
					}
				}
			}
			c.LastPacket++
		}
	}
	if pairKeep {
		for icm, cm := range rc.opts.countMultis {
			if pairMulti <= cm {
				c.MultiCounts[icm] += 1. / float64(pairMulti)
				break
			}
		}
	}
	return nil
}

// combine merges the contributions buffered in c.
func (rc *readsCounter) combine(c *Cache) {
	for i := 0; i < c.LastPacket; i++ {
		pk := &c.Packets[i]
		for j := range pk.Counts {
			rc.counts.Values[pk.ID][1+2*j] += pk.Counts[j]
			pk.Counts[j] = 0
		}
		if rc.profiles != nil {
			rc.profiles[pk.ID].Apply(pk.ProfileChanges)
		}
		pk.ProfileChanges.Reset()
	}
	for i := range c.MultiCounts {
		rc.multisCounts[i] += c.MultiCounts[i]
		c.MultiCounts[i] = 0.
	}
	rc.inputCount += c.InputCount
	c.InputCount = 0.
	c.LastPacket = 0
}

// run counts the reads of all inputs with nWorker workers.
func (rc *readsCounter) run(ctx context.Context, nWorker int) (nAlign uint64, err error) {
	nWorker1 := max(1, nWorker/2)
	nWorker2 := max(1, nWorker-nWorker1)
	nMulti := len(rc.opts.countMultis)

	g, gctx := errgroup.WithContext(ctx)
	chFinal := make(chan *Cache, nWorker*10)
	chAln := make(chan []*Pair, nWorker*10)

	g.Go(func() error {
		defer close(chAln)
		var err error
		nAlign, err = rc.readPairs(gctx, chAln, nWorker1)
		return err
	})

	// Cache pool
	pool := make(chan *Cache, nWorker2*2)
	for i := 0; i < cap(pool); i++ {
		pool <- NewCache(cacheLength, nMulti)
	}

	g.Go(func() error {
		defer close(chFinal)
		wg, wgctx := errgroup.WithContext(gctx)
		for i := 0; i < nWorker2; i++ {
			wg.Go(func() error {
				for sPair := range chAln {
					var c *Cache
					select {
					case <-wgctx.Done():
						return wgctx.Err()
					case c = <-pool:
					}
					for _, pair := range sPair {
						if err := rc.addPair(pair, c); err != nil {
							return err
						}
					}
					select {
					case <-wgctx.Done():
						return wgctx.Err()
					case chFinal <- c:
					}
				}
				return nil
			})
		}
		return wg.Wait()
	})

	// Combine data from workers
	for c := range chFinal {
		rc.combine(c)
		pool <- c
	}
	if err = g.Wait(); err != nil {
		return nAlign, err
	}
	return nAlign, nil
}

// totals returns the normalisation total per multiplicity: the given
// totals, or the cumulative counted reads.
func (rc *readsCounter) totals() []float64 {
	totals := make([]float64, len(rc.opts.countMultis))
	if len(rc.opts.countTotals) > 0 {
		copy(totals, rc.opts.countTotals)
		return totals
	}
	var p float64
	for icm := range rc.opts.countMultis {
		p += rc.multisCounts[icm]
		totals[icm] = p
	}
	return totals
}

// write normalises and writes counts, profiles and report.
func (rc *readsCounter) write(cmd *cobra.Command, mapping feature.NameMapping) error {
	totals := rc.totals()
	rc.counts.Normalize(totals)

	if rc.profiles != nil && rc.opts.profileNorm {
		var total float64
		for icm, cm := range rc.opts.countMultis {
			if cm == rc.opts.profileMulti {
				total = totals[icm]
			}
		}
		if total > 0 {
			normFactor := float32(1000000. / total)
			logf("Profile norm. factor: %f\n", normFactor)
			for _, p := range rc.profiles {
				p.Scale(normFactor)
			}
		}
	}

	// Counts
	if rc.opts.pathCount != "" {
		if rc.opts.pathCount == "-" {
			if err := feature.WriteCounts(cmd.OutOrStdout(), rc.features, rc.counts, mapping); err != nil {
				return err
			}
		} else {
			fg := os.O_RDWR | os.O_CREATE | os.O_TRUNC
			if rc.opts.appendOutput {
				fg = os.O_APPEND | os.O_CREATE | os.O_WRONLY
			}
			f, err := os.OpenFile(rc.opts.pathCount, fg, 0666)
			if err != nil {
				return err
			}
			if err = feature.WriteCounts(f, rc.features, rc.counts, mapping); err != nil {
				f.Close()
				return err
			}
			if err = f.Close(); err != nil {
				return err
			}
		}
	}
	// Profiles
	if rc.profiles != nil {
		for ip, path := range rc.opts.profilePaths {
			format := rc.opts.profileFormats[ip]
			logf("Writing %s output in %s\n", format, path)
			if err := profile.WriteFile(path, rc.profiles, format, mapping, rc.opts.appendOutput); err != nil {
				return err
			}
		}
	}
	// Report
	if rc.opts.pathReport != "" {
		return WriteReport(rc.opts.pathReport, cmd.OutOrStdout(), newReadCountReport(rc.inputCount, rc.opts.countMultis, rc.multisCounts))
	}
	return nil
}

var readsCmd = &cobra.Command{
	Use:   "reads ROOT[:START-END]",
	Short: "Count and profile reads, aligned on objects, along the features of a virtual sequence",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := readsOpts
		if len(opts.pathSAMs)+len(opts.pathBAMs) == 0 {
			return fmt.Errorf("No SAM or BAM input")
		}
		if opts.readClass == "" {
			opts.readClass = cfg.DefaultClass
		}
		if len(opts.countMultis) == 0 {
			return fmt.Errorf("No count multiplicity")
		}
		if len(opts.countTotals) > 0 && len(opts.countTotals) != len(opts.countMultis) {
			return fmt.Errorf("%d totals for %d multiplicities", len(opts.countTotals), len(opts.countMultis))
		}
		if opts.profileType != "" && opts.profileType != profile.TypeNone.String() {
			// The profile multiplicity is always counted
			found := false
			for _, cm := range opts.countMultis {
				found = found || cm == opts.profileMulti
			}
			if !found {
				opts.countMultis = append(opts.countMultis, opts.profileMulti)
				if len(opts.countTotals) > 0 {
					opts.countTotals = append(opts.countTotals, 0)
				}
			}
		}
		if len(opts.profileFormats) == 0 {
			for range opts.profilePaths {
				opts.profileFormats = append(opts.profileFormats, cfg.ProfileFormat)
			}
		}
		if len(opts.profileFormats) != len(opts.profilePaths) {
			return fmt.Errorf("%d profile formats for %d paths", len(opts.profileFormats), len(opts.profilePaths))
		}
		for _, f := range opts.profileFormats {
			if _, _, err := profile.SplitFormat(f); err != nil {
				return err
			}
		}

		t, err := parseTarget(args[0], cfg.DefaultClass)
		if err != nil {
			return err
		}
		fopts, err := readsFlags.options()
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
		vm, err := t.build(cfg.NewBuilder(ms))
		if err != nil {
			return err
		}
		features, err := feature.Extract(vm, ms, fopts)
		if err != nil {
			return err
		}
		logf("%s: %d features\n", t.Label, len(features))

		rc, err := newReadsCounter(vm, features, opts)
		if err != nil {
			return err
		}
		nAlign, err := rc.run(cmd.Context(), cfg.NumWorker)
		if err != nil {
			return err
		}
		logf("Parsed %s alignments\n", AddCommas(strconv.FormatUint(nAlign, 10)))
		return rc.write(cmd, mapping)
	},
}

func init() {
	rootCmd.AddCommand(readsCmd)
	readsFlags.register(readsCmd)
	f := readsCmd.Flags()
	f.BoolVar(&readsFlags.alignments, "alignments", false, "Count reads on homologies")
	f.StringSliceVar(&readsOpts.pathSAMs, "path_sam", nil, "Path to SAM input(s)")
	f.StringSliceVar(&readsOpts.pathBAMs, "path_bam", nil, "Path to BAM input(s)")
	f.StringSliceVar(&readsOpts.samCommand, "sam_command", nil, "Command reading SAM input (i.e. 'samtools,view,-h')")
	f.StringVar(&readsOpts.readClass, "read_class", "", "Class of the objects reads are aligned on (default_class if empty)")
	f.BoolVar(&readsOpts.paired, "paired", false, "Paired-end reads")
	f.StringVar(&readsOpts.readStrand, "read_strand", "", "Strand of read 1 relative to features: '+', '-' or unstranded if empty")
	f.BoolVar(&readsOpts.ignoreNHTag, "ignore_nh_tag", false, "Ignore NH tag (multiplicity 1)")
	f.BoolVar(&readsOpts.inProperPair, "in_proper_pair", false, "Keep reads in proper pair only")
	f.Uint8Var(&readsOpts.minMappingQuality, "min_mapq", 0, "Minimum mapping quality")
	f.IntVar(&readsOpts.maxMismatch, "read_max_mismatch", -1, "Maximum mismatches per read (MD tag), no limit if negative")
	f.IntVar(&readsOpts.minOverlap, "read_min_overlap", 1, "Minimum aligned bases on a feature")
	f.IntSliceVar(&readsOpts.countMultis, "count_multis", []int{1, 900}, "Maximum multiplicity of each count column")
	f.Float64SliceVar(&readsOpts.countTotals, "count_totals", nil, "Totals (i.e. library size) per multiplicity for normalization")
	f.BoolVar(&readsOpts.countInProfile, "count_in_profile", false, "Count reads inside profiles only")
	f.StringVar(&readsOpts.pathCount, "path_count", "-", "Path to counts output ('-' for stdout, empty for none)")
	f.StringVar(&readsOpts.profileType, "profile_type", "", "Profile type: 'first', 'last', 'first-last', 'position', 'all', 'all-splice' or 'all-extension'")
	f.IntVar(&readsOpts.profileMulti, "profile_multi", 900, "Maximum multiplicity of reads in profiles")
	f.IntVar(&readsOpts.profileOverhang, "profile_overhang", 0, "Bases added on both sides of profiles")
	f.Float64Var(&readsOpts.profilePositionFraction, "profile_position_fraction", 0.5, "Fragment fraction of 'position' profiles")
	f.IntVar(&readsOpts.profileExtensionLength, "profile_extension_length", 0, "Read extension of 'all-extension' profiles")
	f.BoolVar(&readsOpts.profileNorm, "profile_norm", false, "Normalize profiles to RPM")
	f.StringSliceVar(&readsOpts.profilePaths, "path_profile", nil, "Path to profile output(s)")
	f.StringSliceVar(&readsOpts.profileFormats, "profile_formats", nil, "Profile format(s) (i.e. 'bedgraph+lz4'); profile_format if empty")
	f.BoolVar(&readsOpts.appendOutput, "append", false, "Append to outputs")
	f.StringVar(&readsOpts.pathReport, "path_report", "", "Path to report ('-' for stdout)")
}
