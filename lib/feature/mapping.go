//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package feature

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// NameMapping renames features on output.
type NameMapping map[string]string

// ReadMapping parses a two column tabulated mapping: name, new name.
func ReadMapping(r io.Reader) (NameMapping, error) {
	m := make(NameMapping)
	tscanner := bufio.NewScanner(r)
	line := 0
	for tscanner.Scan() {
		line++
		if tscanner.Text() == "" {
			continue
		}
		fields := strings.Split(tscanner.Text(), "\t")
		if len(fields) < 2 {
			return m, fmt.Errorf("Line %d: 2 columns expected", line)
		}
		m[fields[0]] = fields[1]
	}
	if err := tscanner.Err(); err != nil {
		return m, err
	}
	return m, nil
}

func OpenMapping(mpath string) (NameMapping, error) {
	mfos, err := os.Open(mpath)
	if err != nil {
		return nil, err
	}
	defer mfos.Close()
	return ReadMapping(mfos)
}

// MapName returns the new name of name, or name itself. A nil mapping is
// the identity.
func (m NameMapping) MapName(name string) string {
	if nn, ok := m[name]; ok {
		return nn
	}
	return name
}
