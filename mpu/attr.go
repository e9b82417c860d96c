// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mpu

// Device memory types
const (
	DEVICE_nGnRnE = 0b00
	DEVICE_nGnRE  = 0b01
	DEVICE_nGRE   = 0b10
	DEVICE_GRE    = 0b11
)

// Memory returns the 4-bit encoding of a Normal memory attribute.
func Memory(nonTransient bool, writeBack bool, readAlloc bool, writeAlloc bool) uint8 {
	var a uint8

	if nonTransient {
		a |= 1 << 3
	}

	if writeBack {
		a |= 1 << 2
	}

	if readAlloc {
		a |= 1 << 1
	}

	if writeAlloc {
		a |= 1 << 0
	}

	return a
}

// NormalAttr returns the MAIR encoding of a Normal memory attribute from its
// outer and inner 4-bit encodings.
func NormalAttr(outer uint8, inner uint8) uint8 {
	return (outer&0xf)<<4 | inner&0xf
}

// DeviceAttr returns the MAIR encoding of a Device memory attribute.
func DeviceAttr(device uint8) uint8 {
	return (device & 0b11) << 2
}
