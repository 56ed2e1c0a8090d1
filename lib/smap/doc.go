//
// Copyright (C) 2015-2023 Charles E. Vejnar
//
// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://www.mozilla.org/MPL/2.0/.
//

// Package smap builds virtual sequences out of a tree of store objects and
// maps coordinates between the frame of any object and the virtual frame.
//
// A Builder walks the children of a root object once and returns an
// immutable VirtualMap. Every object reached gets a KeyInfo holding sorted
// pieces; Map and InverseMap binary-search them and return a Status bitmask
// describing clipping, gaps and overlap. Gapped alignments are placed with
// MapAlignment, the map and its dependents are reverse-complemented with
// RevComp and the virtual DNA is assembled from raw letters with DNA.
//
// Lookups and mappings only read a VirtualMap and may run concurrently.
// RevComp and CacheDNA modify it.
package smap
