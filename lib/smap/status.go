//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

import (
	"strings"
)

// Status is the result of every mapping operation. Error, BadArgs and NoData
// are exclusive and appear alone; all other bits combine.
type Status uint32

const (
	PerfectMap Status = 0x0
	Error      Status = 0x1
	BadArgs    Status = 0x2
	NoData     Status = 0x4

	InternalGaps Status = 0x8
	OutsideArea  Status = 0x10
	Misalign     Status = 0x20

	X1ExternalClip Status = 0x100
	X1InternalClip Status = 0x200
	X2ExternalClip Status = 0x400
	X2InternalClip Status = 0x800

	NoOverlapExternal = OutsideArea | X1ExternalClip | X2ExternalClip
	NoOverlapInternal = OutsideArea | X1InternalClip | X2InternalClip

	failMask = Error | BadArgs | NoData
	clipMask = X1ExternalClip | X1InternalClip | X2ExternalClip | X2InternalClip
)

var statusNames = []struct {
	s    Status
	name string
}{
	{Error, "Error"},
	{BadArgs, "BadArgs"},
	{NoData, "NoData"},
	{InternalGaps, "InternalGaps"},
	{OutsideArea, "OutsideArea"},
	{Misalign, "Misalign"},
	{X1ExternalClip, "X1ExternalClip"},
	{X1InternalClip, "X1InternalClip"},
	{X2ExternalClip, "X2ExternalClip"},
	{X2InternalClip, "X2InternalClip"},
}

// Failed reports whether s is one of the exclusive no-result codes.
func (s Status) Failed() bool { return s&failMask != 0 }

// Overlaps reports whether the mapped range overlaps the map at all.
func (s Status) Overlaps() bool { return !s.Failed() && s&OutsideArea == 0 }

// Clipped reports whether any clip bit is set.
func (s Status) Clipped() bool { return s&clipMask != 0 }

// Has reports whether all bits of b are set in s.
func (s Status) Has(b Status) bool { return s&b == b }

// swapClips exchanges the X1 and X2 clip bits.
func (s Status) swapClips() Status {
	x1 := s & (X1ExternalClip | X1InternalClip)
	x2 := s & (X2ExternalClip | X2InternalClip)
	return s&^clipMask | x1<<2 | x2>>2
}

func (s Status) String() string {
	if s == PerfectMap {
		return "PerfectMap"
	}
	var names []string
	for _, sn := range statusNames {
		if s&sn.s != 0 {
			names = append(names, sn.name)
		}
	}
	return strings.Join(names, "|")
}
