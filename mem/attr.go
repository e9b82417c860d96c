// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

// Default memory map attributes (ARMv8-M MAIR encoding), used whenever an
// address is not covered by an enabled MPU region.
const (
	// Normal memory, Write-Through, Read-Allocate (inner and outer)
	AttrWTRA = 0x22
	// Normal memory, Write-Back, Read/Write-Allocate (inner and outer)
	AttrWBRAWA = 0x77
	// Device-nGnRE
	AttrDeviceNGNRE = 0x04
	// Device-nGnRnE
	AttrDeviceNGNRNE = 0x00
)

// vendorStart is where the vendor system space begins, right after the
// Private Peripheral Bus.
const vendorStart = 0xe0100000

// DefaultAttr returns the memory attribute of the ARMv8-M default memory map
// for the given address.
func DefaultAttr(addr uint32) uint8 {
	switch addr >> 29 {
	case 0:
		// Code
		return AttrWTRA
	case 1:
		// SRAM
		return AttrWBRAWA
	case 2:
		// Peripheral
		return AttrDeviceNGNRE
	case 3:
		// RAM
		return AttrWBRAWA
	case 4:
		// RAM
		return AttrWTRA
	case 5, 6:
		// Device
		return AttrDeviceNGNRE
	default:
		// System
		if addr < vendorStart {
			// PPB
			return AttrDeviceNGNRNE
		}

		return AttrDeviceNGNRE
	}
}
