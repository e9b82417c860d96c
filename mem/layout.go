// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mem describes the Corstone-310 memory map as seen by the Secure
// firmware and by the DMA-350 controller.
package mem

// Regions are listed with their Non-secure alias, the Secure alias of each
// one is obtained by setting address bit 28 (see Secure).
const (
	// Instruction TCM (CPU local view)
	ITCMStart = 0x00000000
	ITCMSize  = 0x00008000 // 32KB

	// Code SRAM
	CodeSRAMStart = 0x01000000
	CodeSRAMSize  = 0x00200000 // 2MB

	// Data TCM (CPU local view)
	DTCMStart = 0x20000000
	DTCMSize  = 0x00008000 // 32KB

	// Internal SRAM
	SRAMStart = 0x21000000
	SRAMSize  = 0x00400000 // 4MB

	// Peripherals
	PeripheralStart = 0x40000000
	PeripheralSize  = 0x10000000

	// External DDR
	DDRStart = 0x60000000
	DDRSize  = 0x10000000 // 256MB

	// Private Peripheral Bus
	PPBStart = 0xe0000000
	PPBEnd   = 0xe00fffff
)

// TCM aliases on the system bus, used by bus masters other than the CPU.
const (
	ITCMSystemOffset = 0x0a000000
	DTCMSystemOffset = 0x04000000
)

// DMA-350 controller
const (
	DMA350Base          = 0x40002000
	DMA350ChannelOffset = 0x1000
	DMA350ChannelSize   = 0x100
	DMA350Channels      = 4
)

// MPU register blocks
const (
	MPUBase          = 0xe000ed90
	MPUNonSecureBase = 0xe002ed90
)

// secureAliasBit selects the Secure alias of a region, it is also the bit
// used by the IDAU to attribute addresses.
const secureAliasBit = 28

// Secure returns the Secure alias of a Non-secure address.
func Secure(addr uint32) uint32 {
	return addr | 1<<secureAliasBit
}

// NonSecure returns the Non-secure alias of a Secure address.
func NonSecure(addr uint32) uint32 {
	return addr &^ (1 << secureAliasBit)
}

// IDAUSecure returns whether the Implementation Defined Attribution Unit marks
// an address as Secure.
//
// On Corstone-310 every region below the system space has a Secure alias
// selected by address bit 28, the system space is exempt.
func IDAUSecure(addr uint32) bool {
	if addr >= PPBStart {
		return false
	}

	return addr&(1<<secureAliasBit) != 0
}

// DMA350Channel returns the register block base address of a DMA-350 channel.
func DMA350Channel(base uint32, n int) uint32 {
	return base + DMA350ChannelOffset + uint32(n)*DMA350ChannelSize
}
