//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package profile

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/adler32"
	"io"
	"math"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"

	"git.sr.ht/~vejnar/GeneMap/lib/feature"
)

const (
	bedGraphPrecision = 0.000001
	binaryVersion     = 3
)

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// SplitFormat splits "format+compression".
func SplitFormat(s string) (format, zip string, err error) {
	format, zip, _ = strings.Cut(s, "+")
	switch format {
	case "bedgraph", "binary", "csv":
	default:
		return "", "", fmt.Errorf("Unknown profile format %s", format)
	}
	switch zip {
	case "", "lz4", "lz4hc", "gz":
	default:
		return "", "", fmt.Errorf("Unknown profile compression %s", zip)
	}
	return
}

// NewWriter wraps w with the compression zip.
func NewWriter(w io.Writer, zip string) io.WriteCloser {
	switch zip {
	case "lz4":
		return lz4.NewWriter(w)
	case "lz4hc":
		lzWriter := lz4.NewWriter(w)
		lzWriter.Header = lz4.Header{CompressionLevel: 9}
		return lzWriter
	case "gz":
		return gzip.NewWriter(w)
	}
	return nopCloser{w}
}

// WriteFile writes profiles to path in format, e.g. "bedgraph+lz4".
func WriteFile(path string, profiles []*Profile, format string, mapping feature.NameMapping, appendOutput bool) error {
	format, zip, err := SplitFormat(format)
	if err != nil {
		return err
	}
	// Append or Create flag
	var fg int
	if appendOutput {
		fg = os.O_APPEND | os.O_CREATE | os.O_WRONLY
	} else {
		fg = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	f, err := os.OpenFile(path, fg, 0666)
	if err != nil {
		return err
	}
	zw := NewWriter(f, zip)
	if err = Write(zw, profiles, format, mapping); err != nil {
		zw.Close()
		f.Close()
		return err
	}
	if err = zw.Close(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write writes profiles in format: bedgraph, binary or csv.
func Write(w io.Writer, profiles []*Profile, format string, mapping feature.NameMapping) error {
	bw := bufio.NewWriter(w)
	switch format {
	case "bedgraph":
		for _, p := range profiles {
			name := mapping.MapName(p.Name)
			var stepStart int
			var stepValue float32
			for ip := 0; ip <= len(p.Values); ip++ {
				var currentValue float32
				if ip < len(p.Values) {
					currentValue = p.Values[ip]
				}
				if math.Abs(float64(currentValue-stepValue)) > bedGraphPrecision || ip == len(p.Values) {
					if stepValue != 0. {
						fmt.Fprintf(bw, "%s\t%d\t%d\t%f\n", name, stepStart, ip, stepValue)
					}
					stepStart = ip
					stepValue = currentValue
				}
			}
		}
	case "binary":
		// Version
		if err := binary.Write(bw, binary.LittleEndian, uint8(binaryVersion)); err != nil {
			return err
		}
		// Profiles and total lengths
		var totalLength uint32
		bufChecksum := new(bytes.Buffer)
		for _, p := range profiles {
			l := uint32(p.Len())
			if err := binary.Write(bufChecksum, binary.LittleEndian, l); err != nil {
				return err
			}
			totalLength += l
		}
		if err := binary.Write(bw, binary.LittleEndian, totalLength); err != nil {
			return err
		}
		// Checksum
		if err := binary.Write(bw, binary.LittleEndian, adler32.Checksum(bufChecksum.Bytes())); err != nil {
			return err
		}
		for _, p := range profiles {
			if err := binary.Write(bw, binary.LittleEndian, p.Values); err != nil {
				return err
			}
		}
	case "csv":
		for _, p := range profiles {
			fprofile := fmt.Sprintf("%v", p.Values)
			fmt.Fprintf(bw, "%s,%d,%s\n", mapping.MapName(p.Name), p.Len(), fprofile[1:len(fprofile)-1])
		}
	default:
		return fmt.Errorf("Unknown profile format %s", format)
	}
	return bw.Flush()
}
