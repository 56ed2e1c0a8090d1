//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package store

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() (err error) {
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if e := rc.closers[i].Close(); e != nil && err == nil {
			err = e
		}
	}
	return
}

// Open opens path for reading, decompressing .gz and .lz4 files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc := &readCloser{Reader: f, closers: []io.Closer{f}}
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		rc.Reader = zr
		rc.closers = append(rc.closers, zr)
	case strings.HasSuffix(path, ".lz4"):
		rc.Reader = lz4.NewReader(f)
	}
	return rc, nil
}
