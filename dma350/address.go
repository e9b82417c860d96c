// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma350

import (
	"github.com/usbarmory/GoTEE-dma350/cmse"
)

// SetSrc programs the channel source address and its transaction attributes.
func (l *Lib) SetSrc(c Channel, addr uint32) (err error) {
	if err = c.Ready(); err != nil {
		return
	}

	attr, err := l.MemAttr(addr, false)

	if err != nil {
		return
	}

	c.SetSrcTransfer(attr.NonSecure, attr.Unprivileged)
	c.SetSrcMemAttr(attr.Attr, attr.Shareability)
	c.SetSrc(l.Remap.Remap(addr))

	return
}

// SetDes programs the channel destination address and its transaction
// attributes.
func (l *Lib) SetDes(c Channel, addr uint32) (err error) {
	if err = c.Ready(); err != nil {
		return
	}

	attr, err := l.MemAttr(addr, true)

	if err != nil {
		return
	}

	c.SetDesTransfer(attr.NonSecure, attr.Unprivileged)
	c.SetDesMemAttr(attr.Attr, attr.Shareability)
	c.SetDes(l.Remap.Remap(addr))

	return
}

// checkRanges verifies that the source range is readable and the destination
// range is writable by the calling firmware.
func (l *Lib) checkRanges(src uint32, des uint32, srcSize uint32, desSize uint32) error {
	if !l.Security.CheckRange(src, srcSize, cmse.MPURead) {
		return ErrRangeNotAccessible
	}

	if !l.Security.CheckRange(des, desSize, cmse.MPUReadWrite) {
		return ErrRangeNotAccessible
	}

	return nil
}

// SetSrcDes verifies the accessibility of both ranges and programs the
// channel source and destination.
func (l *Lib) SetSrcDes(c Channel, src uint32, des uint32, srcSize uint32, desSize uint32) (err error) {
	if err = c.Ready(); err != nil {
		return
	}

	if err = l.checkRanges(src, des, srcSize, desSize); err != nil {
		return
	}

	if err = l.SetSrc(c, src); err != nil {
		return
	}

	return l.SetDes(c, des)
}
