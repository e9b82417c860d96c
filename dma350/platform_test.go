// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma350

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/GoTEE-dma350/dma350/ch"
	"github.com/usbarmory/GoTEE-dma350/mem"
	"github.com/usbarmory/GoTEE-dma350/mpu"
	"github.com/usbarmory/GoTEE-dma350/sim"
)

// newPlatform returns a configured platform, a library for the given
// security state and an initialized driver for the first channel.
func newPlatform(t *testing.T, secure bool) (*sim.Platform, *Lib, *ch.Channel) {
	p := sim.NewPlatform()
	require.NoError(t, p.Configure())

	l := &Lib{
		Security: p.Model(secure),
		Remap:    mem.Remap,
		Secure:   secure,
	}

	if secure {
		l.MPU = p.MPU
		l.MPUNonSecure = p.MPUNonSecure
	} else {
		l.MPU = p.MPUNonSecure
	}

	c := ch.New(0, p.Channels[0])
	require.NoError(t, c.Init())

	return p, l, c
}

func pattern(n int) []byte {
	buf := make([]byte, n)

	for i := range buf {
		buf[i] = byte(i*7 + 1)
	}

	return buf
}

func load(t *testing.T, p *sim.Platform, addr uint32, n int) []byte {
	buf := make([]byte, n)
	require.NoError(t, p.Bus.Load(addr, buf))
	return buf
}

func TestCopy(t *testing.T) {
	p, l, c := newPlatform(t, false)
	data := pattern(10)

	require.NoError(t, p.Bus.Store(0x21000100, data))
	require.NoError(t, l.Copy(c, 0x21000100, 0x21000200, uint32(len(data)), ExecBlocking))

	assert.Equal(t, data, load(t, p, 0x21000200, len(data)))
	// nothing past the destination range
	assert.Equal(t, []byte{0}, load(t, p, 0x21000200+10, 1))

	require.Len(t, p.Channels[0].Commands, 1)
	cmd := p.Channels[0].Commands[0]

	assert.True(t, cmd.Src.NonSecure)
	assert.False(t, cmd.Src.Privileged)
	assert.Equal(t, mem.NonSecureAttrs[mem.AttrIndexData], cmd.Src.MemAttr)
	assert.Equal(t, ch.TRANSIZE_8BITS, cmd.TranSize)
	assert.Equal(t, ch.XTYPE_CONTINUE, cmd.XType)
	assert.Equal(t, ch.YTYPE_DISABLE, cmd.YType)

	assert.True(t, c.Status().Done())
}

func TestCopyLarge(t *testing.T) {
	p, l, c := newPlatform(t, false)
	data := pattern(0x10000 + 16)

	require.NoError(t, p.Bus.Store(0x21010000, data))
	require.NoError(t, l.Copy(c, 0x21010000, 0x21030000, uint32(len(data)), ExecBlocking))

	assert.True(t, bytes.Equal(data, load(t, p, 0x21030000, len(data))))
	assert.Equal(t, uint32(len(data)), p.Channels[0].Commands[0].Src.XSize)
}

func TestCopyTCM(t *testing.T) {
	p, l, c := newPlatform(t, false)
	data := pattern(32)

	// DTCM as seen by the DMA
	require.NoError(t, p.Bus.Store(0x24000100, data))
	require.NoError(t, l.Copy(c, mem.DTCMStart+0x100, mem.ITCMStart+0x200, 32, ExecBlocking))

	assert.Equal(t, data, load(t, p, 0x0a000200, 32))

	cmd := p.Channels[0].Commands[0]

	// DTCM is privileged only
	assert.Equal(t, uint32(0x24000100), cmd.Src.Addr)
	assert.True(t, cmd.Src.Privileged)

	// ITCM is covered by the privileged background map
	assert.Equal(t, uint32(0x0a000200), cmd.Des.Addr)
	assert.True(t, cmd.Des.Privileged)
	assert.Equal(t, mem.DefaultAttr(mem.ITCMStart), cmd.Des.MemAttr)
}

func TestMove(t *testing.T) {
	var tests = []struct {
		name string
		src  uint32
		des  uint32
	}{
		{"disjoint", 0x21000000, 0x21000100},
		{"overlapping tail", 0x21000000, 0x21000004},
		{"overlapping head", 0x21000004, 0x21000000},
		{"same", 0x21000000, 0x21000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, l, c := newPlatform(t, false)
			data := pattern(0x200)

			require.NoError(t, p.Bus.Store(0x21000000, data))

			want := append([]byte{}, data...)
			copy(want[tt.des-0x21000000:tt.des-0x21000000+32], want[tt.src-0x21000000:tt.src-0x21000000+32])

			require.NoError(t, l.Move(c, tt.src, tt.des, 32, ExecBlocking))
			assert.Equal(t, want, load(t, p, 0x21000000, len(data)))
		})
	}
}

func TestReadOnlyDestination(t *testing.T) {
	p, l, c := newPlatform(t, false)

	// Code SRAM is read-only for the Non-secure world
	assert.ErrorIs(t, l.Copy(c, 0x21000000, mem.CodeSRAMStart, 16, ExecBlocking), ErrRangeNotAccessible)
	assert.ErrorIs(t, l.Move(c, 0x21000000, mem.CodeSRAMStart, 16, ExecBlocking), ErrRangeNotAccessible)

	// while it can be used as source
	require.NoError(t, l.Copy(c, mem.CodeSRAMStart, 0x21000000, 16, ExecBlocking))
	require.Len(t, p.Channels[0].Commands, 1)
}

func TestRangeCrossingRegions(t *testing.T) {
	p, l, c := newPlatform(t, false)

	end := uint32(mem.SRAMStart + mem.SRAMSize)

	// the range ends in the unmapped space following the SRAM region
	assert.ErrorIs(t, l.Copy(c, end-16, 0x21000000, 32, ExecBlocking), ErrRangeNotAccessible)
	assert.ErrorIs(t, l.Copy(c, 0x21000000, end-16, 32, ExecBlocking), ErrRangeNotAccessible)

	// the range ends in the read-only Code SRAM region
	assert.ErrorIs(t, l.Copy(c, 0x21000000, mem.CodeSRAMStart-16, 32, ExecBlocking), ErrRangeNotAccessible)

	// wrapping around the address space
	assert.ErrorIs(t, l.Copy(c, 0x21000000, 0xfffffff0, 32, ExecBlocking), ErrRangeNotAccessible)

	assert.Empty(t, p.Channels[0].Commands)
}

func TestSecureMemoryFromNonSecure(t *testing.T) {
	p, l, c := newPlatform(t, false)

	// the Non-secure world cannot attribute the address, the bus rejects
	// the Non-secure transfer
	assert.ErrorIs(t, l.Copy(c, mem.Secure(0x21000000), 0x21000000, 16, ExecBlocking), ErrCommand)
	assert.ErrorIs(t, p.Channels[0].Err, sim.ErrSecurity)
	assert.True(t, c.Status().Err())
}

func TestSecureCopy(t *testing.T) {
	p, l, c := newPlatform(t, true)
	data := pattern(64)
	src := mem.Secure(0x21000000)

	require.NoError(t, p.Bus.Store(src, data))
	require.NoError(t, l.Copy(c, src, 0x21000400, 64, ExecBlocking))

	assert.Equal(t, data, load(t, p, 0x21000400, 64))

	cmd := p.Channels[0].Commands[0]

	assert.False(t, cmd.Src.NonSecure)
	assert.Equal(t, mem.DefaultAttr(src), cmd.Src.MemAttr)
	assert.True(t, cmd.Des.NonSecure)
	assert.Equal(t, mem.NonSecureAttrs[mem.AttrIndexData], cmd.Des.MemAttr)
}

func TestSecureMemAttr(t *testing.T) {
	p, l, _ := newPlatform(t, true)

	attr := mpu.NormalAttr(mpu.Memory(false, true, false, false), mpu.Memory(false, true, false, false))

	regions := []mpu.Region{
		{
			Base:         mem.Secure(mem.SRAMStart),
			Limit:        mem.Secure(mem.SRAMStart) + mem.SRAMSize - 1,
			AttrIndex:    5,
			Shareability: mpu.SH_INNER,
			AP:           mpu.AP_RW_PRIV,
			Enable:       true,
		},
	}

	require.NoError(t, p.MPU.Configure([]uint8{0, 0, 0, 0, 0, attr}, regions, true))

	// the region selector is preserved across lookups
	p.SecureMPU.Write(mpu.MPU_RNR, 6)
	selects := p.SecureMPU.Selects

	res, err := l.MemAttr(mem.Secure(mem.SRAMStart+0x100), true)
	require.NoError(t, err)

	assert.Equal(t, MemAttr{Attr: attr, Shareability: mpu.SH_INNER}, res)
	assert.Equal(t, uint32(6), p.SecureMPU.Selected())
	assert.Greater(t, p.SecureMPU.Selects, selects)

	// Non-secure memory is resolved through the Non-secure MPU
	res, err = l.MemAttr(mem.SRAMStart, false)
	require.NoError(t, err)
	assert.Equal(t, MemAttr{NonSecure: true, Unprivileged: true, Attr: mem.NonSecureAttrs[mem.AttrIndexData]}, res)

	res, err = l.MemAttr(mem.DDRStart, true)
	require.NoError(t, err)
	assert.Equal(t, MemAttr{NonSecure: true, Unprivileged: true, Attr: mem.NonSecureAttrs[mem.AttrIndexData], Shareability: mpu.SH_OUTER}, res)
}

func TestSecureNotAccessible(t *testing.T) {
	p, l, c := newPlatform(t, true)

	// Secure MPU without regions nor background map
	require.NoError(t, p.MPU.Configure(nil, nil, false))

	_, err := l.MemAttr(mem.Secure(mem.SRAMStart), false)
	assert.ErrorIs(t, err, ErrRangeNotAccessible)

	assert.ErrorIs(t, l.SetSrc(c, mem.Secure(mem.SRAMStart)), ErrRangeNotAccessible)
	assert.Zero(t, p.Channels[0].Read(ch.CH_SRCADDR))
}

func TestNonSecureMemAttr(t *testing.T) {
	_, l, _ := newPlatform(t, false)

	var tests = []struct {
		addr     uint32
		writable bool
		want     MemAttr
		err      error
	}{
		{mem.SRAMStart, true, MemAttr{NonSecure: true, Unprivileged: true, Attr: mem.NonSecureAttrs[mem.AttrIndexData]}, nil},
		{mem.CodeSRAMStart, false, MemAttr{NonSecure: true, Unprivileged: true, Attr: mem.NonSecureAttrs[mem.AttrIndexCode]}, nil},
		{mem.CodeSRAMStart, true, MemAttr{}, ErrRangeNotAccessible},
		{mem.DTCMStart, true, MemAttr{NonSecure: true, Attr: mem.NonSecureAttrs[mem.AttrIndexData]}, nil},
		{mem.PeripheralStart, true, MemAttr{NonSecure: true, Attr: mem.NonSecureAttrs[mem.AttrIndexDevice]}, nil},
		{mem.ITCMStart, false, MemAttr{NonSecure: true, Attr: mem.AttrWTRA}, nil},
		{mem.PPBStart, false, MemAttr{NonSecure: true, Attr: mem.AttrDeviceNGNRNE}, nil},
	}

	for _, tt := range tests {
		res, err := l.MemAttr(tt.addr, tt.writable)

		if tt.err != nil {
			assert.ErrorIs(t, err, tt.err, "%#x", tt.addr)
			continue
		}

		require.NoError(t, err, "%#x", tt.addr)
		assert.Equal(t, tt.want, res, "%#x", tt.addr)
	}
}

func TestEndianSwap(t *testing.T) {
	p, l, c := newPlatform(t, false)

	require.NoError(t, p.Bus.Store(0x21000000, []byte{
		0x01, 0x02, 0x03, 0x04,
		0x11, 0x12, 0x13, 0x14,
		0x21, 0x22, 0x23, 0x24,
	}))

	require.NoError(t, l.EndianSwap(c, 0x21000000, 0x21000100, 4, 3, ExecIRQ))

	assert.Equal(t, []byte{
		0x04, 0x03, 0x02, 0x01,
		0x14, 0x13, 0x12, 0x11,
		0x24, 0x23, 0x22, 0x21,
		0x00,
	}, load(t, p, 0x21000100, 13))
}

func TestEndianSwapChunks(t *testing.T) {
	p, l, c := newPlatform(t, false)

	count := 65535 + 3
	data := pattern(count * 2)
	want := make([]byte, len(data))

	for i := 0; i < len(data); i += 2 {
		want[i], want[i+1] = data[i+1], data[i]
	}

	require.NoError(t, p.Bus.Store(0x21000000, data))
	require.NoError(t, l.EndianSwap(c, 0x21000000, 0x21100000, 2, uint32(count), ExecBlocking))

	assert.Len(t, p.Channels[0].Commands, 2)
	assert.True(t, bytes.Equal(want, load(t, p, 0x21100000, len(want))))
}

func TestInterrupt(t *testing.T) {
	p, l, c := newPlatform(t, false)

	var status []ch.Status

	p.Channels[0].Interrupt = func(s ch.Status) {
		status = append(status, s)
	}

	require.NoError(t, l.Copy(c, 0x21000000, 0x21000100, 8, ExecBlocking))
	assert.Empty(t, status)

	require.NoError(t, l.Copy(c, 0x21000000, 0x21000100, 8, ExecIRQ))
	require.Len(t, status, 1)
	assert.True(t, status[0].Done())
}

func TestAsync(t *testing.T) {
	p, l, c := newPlatform(t, false)
	p.Channels[0].Async = true

	data := pattern(256)
	require.NoError(t, p.Bus.Store(0x21000000, data))

	require.NoError(t, l.Copy(c, 0x21000000, 0x21001000, 256, ExecStartOnly))

	status := c.Wait()
	assert.True(t, status.Done())
	assert.False(t, status.Err())
	assert.Equal(t, data, load(t, p, 0x21001000, 256))

	// blocking commands wait for the asynchronous completion
	require.NoError(t, l.Move(c, 0x21001000, 0x21001010, 256, ExecBlocking))
	assert.Equal(t, data, load(t, p, 0x21001010, 256))
}

func TestInvalidExecTypeNoCommand(t *testing.T) {
	p, l, c := newPlatform(t, false)

	assert.ErrorIs(t, l.Copy(c, 0x21000000, 0x21001000, 4, ExecType(-1)), ErrInvalidExecType)
	assert.Empty(t, p.Channels[0].Commands)
	assert.Zero(t, p.Channels[0].Read(ch.CH_SRCADDR))
}
