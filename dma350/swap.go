// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma350

import (
	"math"

	"github.com/usbarmory/GoTEE-dma350/dma350/ch"
)

// maximum number of elements swapped by a single command (16-bit YSIZE)
const maxSwapCount = math.MaxUint16

// chunk represents a single endian swap command.
type chunk struct {
	// Offset is the source offset of the last byte of the first element
	Offset uint32
	// Count is the number of elements
	Count uint16
}

// swapChunks splits an endian swap of count elements into commands.
type swapChunks struct {
	size      uint32
	count     uint32
	processed uint32
}

func (s *swapChunks) next() (c chunk, ok bool) {
	remaining := s.count - s.processed

	if remaining == 0 {
		return
	}

	if remaining > maxSwapCount {
		remaining = maxSwapCount
	}

	c = chunk{
		Offset: (1+s.processed)*s.size - 1,
		Count:  uint16(remaining),
	}

	s.processed += remaining

	return c, true
}

// EndianSwap reverses the byte order of count elements of the given size,
// reading them from src and writing them contiguously to des.
//
// The operation is split in commands of at most 65535 elements which are
// always executed in blocking mode, exec is only validated.
func (l *Lib) EndianSwap(c Channel, src uint32, des uint32, size uint8, count uint32, exec ExecType) (err error) {
	if err = start(c, exec); err != nil {
		return
	}

	if size == 0 {
		return
	}

	total := uint64(size) * uint64(count)

	if total > math.MaxUint32 {
		return ErrRangeNotAccessible
	}

	if err = l.checkRanges(src, des, uint32(total), uint32(total)); err != nil {
		return
	}

	if err = l.SetDes(c, des); err != nil {
		return
	}

	// attributes are resolved once, the whole source range is expected to
	// share them
	if err = l.SetSrc(c, src+uint32(size)-1); err != nil {
		return
	}

	c.SetXType(ch.XTYPE_CONTINUE)
	c.SetYType(ch.YTYPE_CONTINUE)
	c.SetTranSize(ch.TRANSIZE_8BITS)
	c.SetXAddrInc(-1, 1)
	c.SetYAddrStride(int16(size), 0)
	c.SetDoneType(ch.DONETYPE_END_OF_CMD)

	chunks := &swapChunks{
		size:  uint32(size),
		count: count,
	}

	for {
		chunk, ok := chunks.next()

		if !ok {
			break
		}

		c.SetSrc(l.Remap.Remap(src + chunk.Offset))
		c.SetYSize16(chunk.Count, 1)
		c.SetXSize32(uint32(size), uint32(size)*uint32(chunk.Count))

		// the destination address carries over from the previous command
		if err = run(c, ExecBlocking); err != nil {
			return
		}
	}

	return
}
