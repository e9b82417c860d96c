// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"github.com/usbarmory/GoTEE-dma350/cmse"
	"github.com/usbarmory/GoTEE-dma350/mem"
	"github.com/usbarmory/GoTEE-dma350/mpu"
)

// MPU regions implemented in each security state
const MPURegions = 8

// DDRWindow is the modeled portion of the external DDR.
const DDRWindow = 0x100000 // 1MB

var memories = []struct {
	name string
	base uint32
	size int
}{
	{"ITCM", mem.ITCMStart + mem.ITCMSystemOffset, mem.ITCMSize},
	{"Code SRAM", mem.CodeSRAMStart, mem.CodeSRAMSize},
	{"DTCM", mem.DTCMStart + mem.DTCMSystemOffset, mem.DTCMSize},
	{"SRAM", mem.SRAMStart, mem.SRAMSize},
	{"DDR", mem.DDRStart, DDRWindow},
}

// Platform represents a Corstone-310 like system, memories are attached to
// the bus at their system address with separate Non-secure and Secure
// aliases.
type Platform struct {
	Bus      *Bus
	Channels []*Channel

	// SecureMPU and NonSecureMPU are the MPU register files
	SecureMPU    *MPU
	NonSecureMPU *MPU

	// MPU and MPUNonSecure drive the Secure and Non-secure MPU
	MPU          *mpu.MPU
	MPUNonSecure *mpu.MPU

	// SAU is the Security Attribution Unit configuration
	SAU *cmse.SAU
}

// NewPlatform returns a platform with all memories and DMA channels attached,
// MPUs and SAU are left disabled.
func NewPlatform() *Platform {
	p := &Platform{
		Bus:          &Bus{},
		SecureMPU:    NewMPU(MPURegions),
		NonSecureMPU: NewMPU(MPURegions),
		SAU:          &cmse.SAU{},
	}

	p.MPU = mpu.New(p.SecureMPU)
	p.MPUNonSecure = mpu.New(p.NonSecureMPU)

	for _, m := range memories {
		p.Bus.Add(m.name+" (NS)", m.base, m.size, false)
		p.Bus.Add(m.name+" (S)", mem.Secure(m.base), m.size, true)
	}

	for i := 0; i < mem.DMA350Channels; i++ {
		p.Channels = append(p.Channels, NewChannel(p.Bus))
	}

	return p
}

// Configure applies the isolation setup performed by the Secure firmware at
// boot: SAU regions and Non-secure MPU, the Secure MPU is left disabled.
func (p *Platform) Configure() (err error) {
	p.SAU.Enabled = true
	p.SAU.Regions = append([]cmse.SAURegion{}, mem.SAURegions...)

	return p.MPUNonSecure.Configure(mem.NonSecureAttrs, mem.NonSecureRegions, true)
}

// Model returns the Test Target model for code executing in the given
// security state.
func (p *Platform) Model(secure bool) *cmse.Model {
	m := &cmse.Model{
		Secure: secure,
		SAU:    p.SAU,
		IDAU:   mem.IDAUSecure,
	}

	if secure {
		m.MPU = p.MPU
		m.MPUNonSecure = p.MPUNonSecure
	} else {
		m.MPU = p.MPUNonSecure
	}

	return m
}
