// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// RemapRange represents an inclusive address range translated by a fixed
// offset.
type RemapRange struct {
	Begin  uint32
	End    uint32
	Offset uint32
}

// Contains returns whether an address falls within the range.
func (r RemapRange) Contains(addr uint32) bool {
	return addr >= r.Begin && addr <= r.End
}

// RemapTable represents an ordered list of disjoint remap ranges.
type RemapTable []RemapRange

// Remap returns the address as seen by the DMA controller, addresses outside
// every range are returned unchanged.
func (t RemapTable) Remap(addr uint32) uint32 {
	for _, r := range t {
		if r.Contains(addr) {
			return addr + r.Offset
		}
	}

	return addr
}

// Validate reports inverted and overlapping ranges.
func (t RemapTable) Validate() (err error) {
	var res *multierror.Error

	for i, r := range t {
		if r.Begin > r.End {
			res = multierror.Append(res, fmt.Errorf("range %d is inverted (%#.8x > %#.8x)", i, r.Begin, r.End))
			continue
		}

		for j := i + 1; j < len(t); j++ {
			o := t[j]

			if o.Begin > o.End {
				continue
			}

			if r.Begin <= o.End && o.Begin <= r.End {
				res = multierror.Append(res, fmt.Errorf("range %d overlaps range %d", i, j))
			}
		}
	}

	return res.ErrorOrNil()
}

// Remap translates the CPU local view of the TCMs to their system bus alias.
var Remap = RemapTable{
	// Non-secure ITCM
	{Begin: ITCMStart, End: ITCMStart + ITCMSize - 1, Offset: ITCMSystemOffset},
	// Secure ITCM
	{Begin: Secure(ITCMStart), End: Secure(ITCMStart) + ITCMSize - 1, Offset: ITCMSystemOffset},
	// Non-secure DTCM
	{Begin: DTCMStart, End: DTCMStart + DTCMSize - 1, Offset: DTCMSystemOffset},
	// Secure DTCM
	{Begin: Secure(DTCMStart), End: Secure(DTCMStart) + DTCMSize - 1, Offset: DTCMSystemOffset},
}
