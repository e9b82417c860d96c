// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package cmse implements the ARMv8-M Security Extension address
// permission checks (Test Target instructions and address range checks).
//
// The results are computed from the configured SAU, IDAU and MPU state,
// following the TT, TTT, TTA and TTAT instruction semantics.
package cmse

import (
	"math"

	"github.com/usbarmory/GoTEE-dma350/mpu"
)

// Flags represents the permission requirements of an address range check.
type Flags int

const (
	MPUReadWrite Flags = 0x01
	AUNonSecure  Flags = 0x02
	MPUUnpriv    Flags = 0x04
	MPURead      Flags = 0x08
	MPUNonSecure Flags = 0x10
	NonSecure          = AUNonSecure | MPUNonSecure
)

// AddressInfo represents the response of a Test Target instruction.
type AddressInfo struct {
	MPURegion            uint8
	SAURegion            uint8
	MPURegionValid       bool
	SAURegionValid       bool
	ReadOK               bool
	ReadWriteOK          bool
	NonSecureReadOK      bool
	NonSecureReadWriteOK bool
	Secure               bool
}

// SAURegion represents a Security Attribution Unit region.
type SAURegion struct {
	Base  uint32
	Limit uint32
	// NSC marks the region as Secure, Non-secure callable
	NSC    bool
	Enable bool
}

// SAU represents the Security Attribution Unit configuration.
type SAU struct {
	Enabled bool
	// AllNS marks all memory as Non-secure when the SAU is disabled
	AllNS   bool
	Regions []SAURegion
}

func (s *SAU) attribute(addr uint32) (region uint8, valid bool, secure bool) {
	if s == nil || !s.Enabled {
		return 0, false, s == nil || !s.AllNS
	}

	hits := 0
	secure = true

	for i, r := range s.Regions {
		if r.Enable && addr >= r.Base && addr <= r.Limit {
			hits += 1
			region = uint8(i)
			secure = r.NSC
		}
	}

	if hits != 1 {
		return 0, false, true
	}

	return region, true, secure
}

// Model computes Test Target responses for a given executing security state.
type Model struct {
	// Secure reports whether the executing state is Secure
	Secure bool
	// SAU is the Security Attribution Unit configuration
	SAU *SAU
	// IDAU, when set, reports addresses attributed as Secure by the
	// Implementation Defined Attribution Unit.
	IDAU func(addr uint32) bool
	// MPU is the MPU of the executing state
	MPU *mpu.MPU
	// MPUNonSecure is the Non-secure MPU as accessed from Secure state
	MPUNonSecure *mpu.MPU
}

func permission(m *mpu.MPU, addr uint32, unpriv bool) (region uint8, valid bool, r bool, rw bool) {
	if m == nil || !m.Enabled() {
		// default memory map
		return 0, false, true, true
	}

	var hit mpu.Region
	hits := 0

	for i := 0; i < m.Regions(); i++ {
		c, err := m.Region(i)

		if err != nil {
			break
		}

		if c.Contains(addr) {
			hits += 1
			region = uint8(i)
			hit = c
		}
	}

	switch hits {
	case 0:
		if !unpriv && m.PrivilegedDefault() {
			return 0, false, true, true
		}

		return 0, false, false, false
	case 1:
		if unpriv && !hit.Unprivileged() {
			return region, true, false, false
		}

		return region, true, true, !hit.ReadOnly()
	default:
		// overlapping regions fault
		return 0, false, false, false
	}
}

func (t *Model) test(addr uint32, alternate bool, unpriv bool) (info AddressInfo) {
	m := t.MPU

	if alternate {
		if !t.Secure {
			// TTA and TTAT are undefined in Non-secure state
			return
		}

		m = t.MPUNonSecure
	}

	info.MPURegion, info.MPURegionValid, info.ReadOK, info.ReadWriteOK = permission(m, addr, unpriv)

	if !t.Secure {
		// security attribution is not visible to Non-secure state
		return
	}

	region, valid, secure := t.SAU.attribute(addr)

	if t.IDAU != nil && t.IDAU(addr) {
		secure = true
	}

	info.SAURegion = region
	info.SAURegionValid = valid
	info.Secure = secure
	info.NonSecureReadOK = info.ReadOK && !secure
	info.NonSecureReadWriteOK = info.ReadWriteOK && !secure

	return
}

// TT returns the privileged permissions of an address for the executing
// security state.
func (t *Model) TT(addr uint32) AddressInfo {
	return t.test(addr, false, false)
}

// TTT returns the unprivileged permissions of an address for the executing
// security state.
func (t *Model) TTT(addr uint32) AddressInfo {
	return t.test(addr, false, true)
}

// TTA returns the privileged permissions of an address for the Non-secure
// state, it is only meaningful in Secure state.
func (t *Model) TTA(addr uint32) AddressInfo {
	return t.test(addr, true, false)
}

// TTAT returns the unprivileged permissions of an address for the Non-secure
// state, it is only meaningful in Secure state.
func (t *Model) TTAT(addr uint32) AddressInfo {
	return t.test(addr, true, true)
}

// CheckRange returns whether an address range satisfies the given
// permissions, the range must not cross any MPU, SAU or IDAU region boundary.
func (t *Model) CheckRange(addr uint32, size uint32, flags Flags) bool {
	if math.MaxUint32-addr < size {
		return false
	}

	known := MPUUnpriv | MPUReadWrite | MPURead
	levels := MPUUnpriv

	if t.Secure {
		known |= AUNonSecure | MPUNonSecure
		levels |= MPUNonSecure
	}

	if flags&^known != 0 {
		return false
	}

	end := addr + size - 1
	alternate := flags&MPUNonSecure != 0
	unpriv := flags&MPUUnpriv != 0

	b := t.test(addr, alternate, unpriv)
	e := t.test(end, alternate, unpriv)

	if b != e {
		return false
	}

	switch flags &^ levels {
	case MPURead | MPUReadWrite | AUNonSecure, MPUReadWrite | AUNonSecure:
		return b.NonSecureReadWriteOK
	case MPURead | AUNonSecure:
		return b.NonSecureReadOK
	case AUNonSecure:
		return !b.Secure
	case MPURead | MPUReadWrite, MPUReadWrite:
		return b.ReadWriteOK
	case MPURead:
		return b.ReadOK
	default:
		return false
	}
}
