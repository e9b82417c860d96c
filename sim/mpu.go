// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"sync"

	"github.com/usbarmory/GoTEE-dma350/mpu"
)

// alias registers RBAR_A1..RLAR_A3
const (
	mpuAliasStart = 0x14
	mpuAliasEnd   = 0x28
)

// MPU models the register file of an ARMv8-M MPU, where RBAR and RLAR are
// banked by the region number register.
type MPU struct {
	sync.Mutex

	ctrl uint32
	rnr  uint32
	mair [2]uint32
	rbar []uint32
	rlar []uint32

	// Selects counts writes to the region number register.
	Selects int
}

// NewMPU returns an MPU model with the given number of regions.
func NewMPU(regions int) *MPU {
	return &MPU{
		rbar: make([]uint32, regions),
		rlar: make([]uint32, regions),
	}
}

func (m *MPU) region(off uint32) (n int, rlar bool, ok bool) {
	switch {
	case off == mpu.MPU_RBAR:
		n = int(m.rnr)
	case off == mpu.MPU_RLAR:
		n = int(m.rnr)
		rlar = true
	case off >= mpuAliasStart && off <= mpuAliasEnd:
		alias := int(off-mpuAliasStart) / 8
		n = int(m.rnr&^3) + alias + 1
		rlar = (off-mpuAliasStart)%8 != 0
	default:
		return
	}

	return n, rlar, n < len(m.rbar)
}

func (m *MPU) Read(off uint32) uint32 {
	m.Lock()
	defer m.Unlock()

	switch off {
	case mpu.MPU_TYPE:
		return uint32(len(m.rbar)) << mpu.TYPE_DREGION
	case mpu.MPU_CTRL:
		return m.ctrl
	case mpu.MPU_RNR:
		return m.rnr
	case mpu.MPU_MAIR0:
		return m.mair[0]
	case mpu.MPU_MAIR1:
		return m.mair[1]
	}

	n, rlar, ok := m.region(off)

	switch {
	case !ok:
		return 0
	case rlar:
		return m.rlar[n]
	default:
		return m.rbar[n]
	}
}

func (m *MPU) Write(off uint32, val uint32) {
	m.Lock()
	defer m.Unlock()

	switch off {
	case mpu.MPU_TYPE:
		return
	case mpu.MPU_CTRL:
		m.ctrl = val & 0b111
		return
	case mpu.MPU_RNR:
		m.rnr = val & 0xff
		m.Selects += 1
		return
	case mpu.MPU_MAIR0:
		m.mair[0] = val
		return
	case mpu.MPU_MAIR1:
		m.mair[1] = val
		return
	}

	n, rlar, ok := m.region(off)

	switch {
	case !ok:
	case rlar:
		m.rlar[n] = val
	default:
		m.rbar[n] = val
	}
}

// Selected returns the current value of the region number register.
func (m *MPU) Selected() uint32 {
	m.Lock()
	defer m.Unlock()

	return m.rnr
}
