// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"github.com/usbarmory/GoTEE-dma350/cmse"
	"github.com/usbarmory/GoTEE-dma350/mpu"
)

// Non-secure MPU attribute indices
const (
	AttrIndexCode = iota
	AttrIndexData
	AttrIndexDevice
)

// NonSecureAttrs lists the Non-secure MPU memory attributes.
var NonSecureAttrs = []uint8{
	AttrIndexCode: mpu.NormalAttr(
		mpu.Memory(true, false, true, false),
		mpu.Memory(true, false, true, false),
	),
	AttrIndexData: mpu.NormalAttr(
		mpu.Memory(true, true, true, true),
		mpu.Memory(true, true, true, true),
	),
	AttrIndexDevice: mpu.DeviceAttr(mpu.DEVICE_nGnRE),
}

// NonSecureRegions lists the Non-secure MPU regions, the ITCM is left to the
// privileged background map.
var NonSecureRegions = []mpu.Region{
	{
		Base:      CodeSRAMStart,
		Limit:     CodeSRAMStart + CodeSRAMSize - 1,
		AttrIndex: AttrIndexCode,
		AP:        mpu.AP_RO_ANY,
		Enable:    true,
	},
	{
		Base:      SRAMStart,
		Limit:     SRAMStart + SRAMSize - 1,
		AttrIndex: AttrIndexData,
		AP:        mpu.AP_RW_ANY,
		Enable:    true,
	},
	{
		Base:      DTCMStart,
		Limit:     DTCMStart + DTCMSize - 1,
		AttrIndex: AttrIndexData,
		AP:        mpu.AP_RW_PRIV,
		Enable:    true,
	},
	{
		Base:      PeripheralStart,
		Limit:     PeripheralStart + PeripheralSize - 1,
		AttrIndex: AttrIndexDevice,
		AP:        mpu.AP_RW_PRIV,
		XN:        true,
		Enable:    true,
	},
	{
		Base:         DDRStart,
		Limit:        DDRStart + DDRSize - 1,
		AttrIndex:    AttrIndexData,
		Shareability: mpu.SH_OUTER,
		AP:           mpu.AP_RW_ANY,
		Enable:       true,
	},
}

// SAURegions lists the Non-secure SAU regions, one for the Non-secure alias
// of each memory map slot.
var SAURegions = []cmse.SAURegion{
	{Base: 0x00000000, Limit: 0x0fffffff, Enable: true},
	{Base: 0x20000000, Limit: 0x2fffffff, Enable: true},
	{Base: 0x40000000, Limit: 0x4fffffff, Enable: true},
	{Base: 0x60000000, Limit: 0x6fffffff, Enable: true},
}
