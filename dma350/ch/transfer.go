// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ch

import (
	"github.com/usbarmory/GoTEE-dma350/internal/reg"
)

// SetSrc sets the source address.
func (hw *Channel) SetSrc(addr uint32) {
	hw.Registers.Write(CH_SRCADDR, addr)
	hw.Registers.Write(CH_SRCADDRHI, 0)
}

// SetDes sets the destination address.
func (hw *Channel) SetDes(addr uint32) {
	hw.Registers.Write(CH_DESADDR, addr)
	hw.Registers.Write(CH_DESADDRHI, 0)
}

func setTransfer(f reg.File, off uint32, nonSecure bool, unprivileged bool) {
	reg.SetTo(f, off, TRANSCFG_NONSECATTR, nonSecure)
	reg.SetTo(f, off, TRANSCFG_PRIVATTR, !unprivileged)
}

func setMemAttr(f reg.File, off uint32, attr uint8, sh uint8) {
	reg.SetN(f, off, TRANSCFG_MEMATTRLO, 0xf, uint32(attr&0xf))
	reg.SetN(f, off, TRANSCFG_MEMATTRHI, 0xf, uint32(attr>>4))
	reg.SetN(f, off, TRANSCFG_SHAREATTR, 0b11, uint32(sh))
}

// SetSrcTransfer sets the security and privilege attributes of source
// transactions.
func (hw *Channel) SetSrcTransfer(nonSecure bool, unprivileged bool) {
	setTransfer(hw.Registers, CH_SRCTRANSCFG, nonSecure, unprivileged)
}

// SetDesTransfer sets the security and privilege attributes of destination
// transactions.
func (hw *Channel) SetDesTransfer(nonSecure bool, unprivileged bool) {
	setTransfer(hw.Registers, CH_DESTRANSCFG, nonSecure, unprivileged)
}

// SetSrcMemAttr sets the memory attribute (MAIR encoding) and shareability
// of source transactions.
func (hw *Channel) SetSrcMemAttr(attr uint8, sh uint8) {
	setMemAttr(hw.Registers, CH_SRCTRANSCFG, attr, sh)
}

// SetDesMemAttr sets the memory attribute (MAIR encoding) and shareability
// of destination transactions.
func (hw *Channel) SetDesMemAttr(attr uint8, sh uint8) {
	setMemAttr(hw.Registers, CH_DESTRANSCFG, attr, sh)
}

func pack16(lo uint16, hi uint16) uint32 {
	return uint32(hi)<<16 | uint32(lo)
}

// SetXAddrInc sets the primary axis address increments, in transfer units.
func (hw *Channel) SetXAddrInc(src int16, des int16) {
	hw.Registers.Write(CH_XADDRINC, pack16(uint16(src), uint16(des)))
}

// SetYAddrStride sets the secondary axis address strides, in transfer units.
func (hw *Channel) SetYAddrStride(src int16, des int16) {
	hw.Registers.Write(CH_YADDRSTRIDE, pack16(uint16(src), uint16(des)))
}

// SetXSize16 sets the primary axis sizes, clearing their upper halves.
func (hw *Channel) SetXSize16(src uint16, des uint16) {
	hw.Registers.Write(CH_XSIZE, pack16(src, des))
	hw.Registers.Write(CH_XSIZEHI, 0)
}

// SetXSize32 sets the primary axis sizes.
func (hw *Channel) SetXSize32(src uint32, des uint32) {
	hw.Registers.Write(CH_XSIZE, pack16(uint16(src), uint16(des)))
	hw.Registers.Write(CH_XSIZEHI, pack16(uint16(src>>16), uint16(des>>16)))
}

// SetYSize16 sets the secondary axis sizes.
func (hw *Channel) SetYSize16(src uint16, des uint16) {
	hw.Registers.Write(CH_YSIZE, pack16(src, des))
}

// SetTranSize sets the transfer unit size.
func (hw *Channel) SetTranSize(size TranSize) {
	reg.SetN(hw.Registers, CH_CTRL, CTRL_TRANSIZE, 0b111, uint32(size))
}

// SetXType sets the primary axis operation type.
func (hw *Channel) SetXType(t XType) {
	reg.SetN(hw.Registers, CH_CTRL, CTRL_XTYPE, 0b111, uint32(t))
}

// SetYType sets the secondary axis operation type.
func (hw *Channel) SetYType(t YType) {
	reg.SetN(hw.Registers, CH_CTRL, CTRL_YTYPE, 0b111, uint32(t))
}

// SetDoneType sets the event which completes a command.
func (hw *Channel) SetDoneType(t DoneType) {
	reg.SetN(hw.Registers, CH_CTRL, CTRL_DONETYPE, 0b111, uint32(t))
}

// SetFillValue sets the pattern used by fill operations.
func (hw *Channel) SetFillValue(val uint32) {
	hw.Registers.Write(CH_FILLVAL, val)
}
