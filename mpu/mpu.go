// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package mpu implements a driver for the ARMv8-M Memory Protection Unit.
//
// The driver operates on a register file, which on hardware is the memory
// mapped MPU (or its Non-secure alias when running in Secure state).
package mpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/usbarmory/GoTEE-dma350/internal/reg"
)

// MPU registers
const (
	MPU_TYPE     = 0x00
	TYPE_DREGION = 8

	MPU_CTRL        = 0x04
	CTRL_PRIVDEFENA = 2
	CTRL_HFNMIENA   = 1
	CTRL_ENABLE     = 0

	MPU_RNR = 0x08

	MPU_RBAR  = 0x0c
	RBAR_BASE = 5
	RBAR_SH   = 3
	RBAR_AP   = 1
	RBAR_XN   = 0

	MPU_RLAR      = 0x10
	RLAR_LIMIT    = 5
	RLAR_ATTRINDX = 1
	RLAR_EN       = 0

	MPU_MAIR0 = 0x30
	MPU_MAIR1 = 0x34
)

// Access permissions (RBAR.AP)
const (
	AP_RW_PRIV = 0b00
	AP_RW_ANY  = 0b01
	AP_RO_PRIV = 0b10
	AP_RO_ANY  = 0b11
)

// Shareability (RBAR.SH)
const (
	SH_NON   = 0b00
	SH_OUTER = 0b10
	SH_INNER = 0b11
)

// Regions are aligned to 32 bytes.
const granule = 32

// Region represents an MPU region configuration.
type Region struct {
	Base         uint32
	Limit        uint32
	AttrIndex    uint8
	Shareability uint8
	AP           uint8
	XN           bool
	Enable       bool
}

// Contains returns whether an address falls within an enabled region.
func (r Region) Contains(addr uint32) bool {
	return r.Enable && addr >= r.Base && addr <= r.Limit
}

// ReadOnly returns whether the region forbids writes.
func (r Region) ReadOnly() bool {
	return r.AP&0b10 != 0
}

// Unprivileged returns whether the region grants unprivileged access.
func (r Region) Unprivileged() bool {
	return r.AP&0b01 != 0
}

// MPU represents a Memory Protection Unit instance.
type MPU struct {
	// Registers is the MPU register file.
	Registers reg.File

	// serializes use of the region number register
	sync.Mutex
}

// New returns an MPU instance on the given register file.
func New(regs reg.File) *MPU {
	return &MPU{
		Registers: regs,
	}
}

// Regions returns the number of implemented regions.
func (m *MPU) Regions() int {
	return int(reg.Get(m.Registers, MPU_TYPE, TYPE_DREGION, 0xff))
}

// Enabled returns whether the MPU is enabled.
func (m *MPU) Enabled() bool {
	return reg.IsSet(m.Registers, MPU_CTRL, CTRL_ENABLE)
}

// PrivilegedDefault returns whether the default memory map is used as
// background region for privileged accesses.
func (m *MPU) PrivilegedDefault() bool {
	return reg.IsSet(m.Registers, MPU_CTRL, CTRL_PRIVDEFENA)
}

// Enable enables the MPU, optionally enabling the default memory map as
// background region for privileged accesses.
func (m *MPU) Enable(privDefault bool) {
	var ctrl uint32 = 1 << CTRL_ENABLE

	if privDefault {
		ctrl |= 1 << CTRL_PRIVDEFENA
	}

	m.Registers.Write(MPU_CTRL, ctrl)
}

// Disable disables the MPU.
func (m *MPU) Disable() {
	m.Registers.Write(MPU_CTRL, 0)
}

// SetAttr sets one of the eight memory attributes held in MAIR0/MAIR1.
func (m *MPU) SetAttr(index int, attr uint8) (err error) {
	if index < 0 || index > 7 {
		return errors.New("invalid attribute index")
	}

	off := uint32(MPU_MAIR0)

	if index > 3 {
		off = MPU_MAIR1
	}

	reg.SetN(m.Registers, off, (index&3)*8, 0xff, uint32(attr))

	return
}

// Attr returns one of the eight memory attributes held in MAIR0/MAIR1.
func (m *MPU) Attr(index int) uint8 {
	off := uint32(MPU_MAIR0)

	if index > 3 {
		off = MPU_MAIR1
	}

	return uint8(reg.Get(m.Registers, off, (index&3)*8, 0xff))
}

// selectRegion selects a region for the duration of fn, restoring the
// previous selection on return.
//
// The region number register is shared with any other context using the
// MPU, callers running on hardware must mask interrupts around this call as
// the mutex only serializes Go callers.
func (m *MPU) selectRegion(n uint8, fn func()) {
	m.Lock()
	defer m.Unlock()

	rnr := m.Registers.Read(MPU_RNR)
	defer m.Registers.Write(MPU_RNR, rnr)

	m.Registers.Write(MPU_RNR, uint32(n))
	fn()
}

func (m *MPU) checkRegion(n int) (err error) {
	if n < 0 || n >= m.Regions() {
		return errors.New("invalid region")
	}

	return
}

// SetRegion configures a region.
func (m *MPU) SetRegion(n int, r Region) (err error) {
	if err = m.checkRegion(n); err != nil {
		return
	}

	if r.Base%granule != 0 || (r.Limit+1)%granule != 0 || r.Limit < r.Base {
		return errors.New("invalid region boundaries")
	}

	if r.AttrIndex > 7 {
		return errors.New("invalid attribute index")
	}

	rbar := r.Base &^ (granule - 1)
	rbar |= uint32(r.Shareability&0b11) << RBAR_SH
	rbar |= uint32(r.AP&0b11) << RBAR_AP

	if r.XN {
		rbar |= 1 << RBAR_XN
	}

	rlar := r.Limit &^ (granule - 1)
	rlar |= uint32(r.AttrIndex) << RLAR_ATTRINDX

	if r.Enable {
		rlar |= 1 << RLAR_EN
	}

	m.selectRegion(uint8(n), func() {
		m.Registers.Write(MPU_RBAR, rbar)
		m.Registers.Write(MPU_RLAR, rlar)
	})

	return
}

// Region returns a region configuration.
func (m *MPU) Region(n int) (r Region, err error) {
	var rbar, rlar uint32

	if err = m.checkRegion(n); err != nil {
		return
	}

	m.selectRegion(uint8(n), func() {
		rbar = m.Registers.Read(MPU_RBAR)
		rlar = m.Registers.Read(MPU_RLAR)
	})

	r = Region{
		Base:         rbar &^ (granule - 1),
		Limit:        rlar | (granule - 1),
		AttrIndex:    uint8((rlar >> RLAR_ATTRINDX) & 0b111),
		Shareability: uint8((rbar >> RBAR_SH) & 0b11),
		AP:           uint8((rbar >> RBAR_AP) & 0b11),
		XN:           rbar&(1<<RBAR_XN) != 0,
		Enable:       rlar&(1<<RLAR_EN) != 0,
	}

	return
}

// RegionAttributes returns the memory attribute (MAIR encoding) and
// shareability configured for a region.
//
// The lookup temporarily redirects the region number register, which is
// always restored before returning. Callers running on hardware must mask
// interrupts around this call.
func (m *MPU) RegionAttributes(n uint8) (attr uint8, sh uint8) {
	var index uint32
	var mair uint32

	m.selectRegion(n, func() {
		index = reg.Get(m.Registers, MPU_RLAR, RLAR_ATTRINDX, 0b111)
		sh = uint8(reg.Get(m.Registers, MPU_RBAR, RBAR_SH, 0b11))

		if index > 3 {
			mair = m.Registers.Read(MPU_MAIR1)
		} else {
			mair = m.Registers.Read(MPU_MAIR0)
		}
	})

	attr = uint8(mair >> ((index & 3) * 8))

	return
}

// Configure disables the MPU, programs the memory attributes and regions and
// enables it again. Regions not listed are disabled.
func (m *MPU) Configure(attrs []uint8, regions []Region, privDefault bool) (err error) {
	if len(regions) > m.Regions() {
		return errors.New("too many regions")
	}

	m.Disable()

	for i, attr := range attrs {
		if err = m.SetAttr(i, attr); err != nil {
			return
		}
	}

	for i := 0; i < m.Regions(); i++ {
		r := Region{Limit: granule - 1}

		if i < len(regions) {
			r = regions[i]
		}

		if err = m.SetRegion(i, r); err != nil {
			return fmt.Errorf("region %d, %v", i, err)
		}
	}

	m.Enable(privDefault)

	return
}
