//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

package smap

// Reflector is implemented by records holding virtual coordinates outside
// the map. Reflect must replace every virtual coordinate v by axis-v.
type Reflector interface {
	Reflect(axis int)
}

// ReflectRange reflects the ordered range [start,end] and keeps it ordered.
func ReflectRange(start, end, axis int) (int, int) {
	return axis - end, axis - start
}

// Axis returns the reflection axis of the map: v' = Axis()-v.
func (vm *VirtualMap) Axis() int { return vm.Start + vm.End }

// RevComp reverse-complements the map in place together with the dependent
// records deps. Applying it twice restores the exact coordinates.
func (vm *VirtualMap) RevComp(deps ...Reflector) {
	axis := vm.Axis()
	for i := range vm.infos {
		ki := &vm.infos[i]
		reflectPieces(ki.Pieces, axis)
		// Only the root's parent frame is the virtual frame
		if ki.Parent < 0 {
			reflectPieces(ki.Local, axis)
		}
		ki.index()
	}
	for _, d := range deps {
		d.Reflect(axis)
	}
	// DNA buffers
	switch {
	case vm.dnaFwd != nil && vm.dnaRev != nil:
		vm.dnaFwd, vm.dnaRev = vm.dnaRev, vm.dnaFwd
	case vm.dnaFwd != nil:
		vm.dnaFwd.RevComp()
	case vm.dnaRev != nil:
		vm.dnaFwd, vm.dnaRev = vm.dnaRev, nil
	}
	vm.Reversed = !vm.Reversed
}

func reflectPieces(pieces []Piece, axis int) {
	for i := range pieces {
		pieces[i].VStart = axis - pieces[i].VStart
		pieces[i].VEnd = axis - pieces[i].VEnd
	}
}
