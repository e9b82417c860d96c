// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultAttr(t *testing.T) {
	for _, tc := range []struct {
		addr uint32
		attr uint8
	}{
		{CodeSRAMStart, AttrWTRA},
		{SRAMStart, AttrWBRAWA},
		{Secure(SRAMStart), AttrWBRAWA},
		{PeripheralStart, AttrDeviceNGNRE},
		{DDRStart, AttrWBRAWA},
		{0x80000000, AttrWTRA},
		{0xa0000000, AttrDeviceNGNRE},
		{0xc0000000, AttrDeviceNGNRE},
		{MPUBase, AttrDeviceNGNRNE},
		{0xe00fffff, AttrDeviceNGNRNE},
		{0xe0100000, AttrDeviceNGNRE},
		{0xffffffff, AttrDeviceNGNRE},
	} {
		assert.Equal(t, tc.attr, DefaultAttr(tc.addr), "%#.8x", tc.addr)
	}
}

func TestIDAU(t *testing.T) {
	assert.False(t, IDAUSecure(SRAMStart))
	assert.True(t, IDAUSecure(Secure(SRAMStart)))
	assert.False(t, IDAUSecure(MPUBase))
	assert.Equal(t, uint32(SRAMStart), NonSecure(Secure(SRAMStart)))
	assert.Equal(t, uint32(0x40003000), DMA350Channel(DMA350Base, 0))
	assert.Equal(t, uint32(0x40003100), DMA350Channel(DMA350Base, 1))
}
