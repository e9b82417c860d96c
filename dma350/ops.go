// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma350

import (
	"github.com/usbarmory/GoTEE-dma350/dma350/ch"
)

func setSize(c Channel, size uint32) {
	if size > 0xffff {
		c.SetXSize32(size, size)
	} else {
		c.SetXSize16(uint16(size), uint16(size))
	}
}

func setLinear(c Channel, size uint32) {
	setSize(c, size)
	c.SetTranSize(ch.TRANSIZE_8BITS)
	c.SetXType(ch.XTYPE_CONTINUE)
	c.SetYType(ch.YTYPE_DISABLE)
}

// Copy copies size bytes from src to des, the ranges must not overlap.
func (l *Lib) Copy(c Channel, src uint32, des uint32, size uint32, exec ExecType) (err error) {
	if err = start(c, exec); err != nil {
		return
	}

	if err = l.SetSrcDes(c, src, des, size, size); err != nil {
		return
	}

	c.SetXAddrInc(1, 1)
	setLinear(c, size)

	return run(c, exec)
}

// Move copies size bytes from src to des, the ranges can overlap.
func (l *Lib) Move(c Channel, src uint32, des uint32, size uint32, exec ExecType) (err error) {
	if err = start(c, exec); err != nil {
		return
	}

	if err = l.checkRanges(src, des, size, size); err != nil {
		return
	}

	// destination overlapping the source tail, copy backwards
	if src < des && uint64(src)+uint64(size) > uint64(des) {
		if err = l.SetSrc(c, src+size-1); err != nil {
			return
		}

		if err = l.SetDes(c, des+size-1); err != nil {
			return
		}

		c.SetXAddrInc(-1, -1)
	} else {
		if err = l.SetSrc(c, src); err != nil {
			return
		}

		if err = l.SetDes(c, des); err != nil {
			return
		}

		c.SetXAddrInc(1, 1)
	}

	setLinear(c, size)

	return run(c, exec)
}
