// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma350

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/GoTEE-dma350/cmse"
	"github.com/usbarmory/GoTEE-dma350/dma350/ch"
	"github.com/usbarmory/GoTEE-dma350/mem"
)

const statusDone = ch.Status(1 << ch.STATUS_STAT_DONE)

// recorder is a channel which records every driver call.
type recorder struct {
	ready  error
	status ch.Status
	calls  []string
}

func (r *recorder) record(format string, args ...interface{}) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) count(prefix string) (n int) {
	for _, c := range r.calls {
		if strings.HasPrefix(c, prefix) {
			n += 1
		}
	}

	return
}

func (r *recorder) Ready() error { return r.ready }

func (r *recorder) SetSrc(addr uint32) { r.record("SetSrc(%#x)", addr) }
func (r *recorder) SetDes(addr uint32) { r.record("SetDes(%#x)", addr) }

func (r *recorder) SetSrcTransfer(ns bool, unpriv bool) {
	r.record("SetSrcTransfer(%v, %v)", ns, unpriv)
}
func (r *recorder) SetDesTransfer(ns bool, unpriv bool) {
	r.record("SetDesTransfer(%v, %v)", ns, unpriv)
}
func (r *recorder) SetSrcMemAttr(attr uint8, sh uint8) { r.record("SetSrcMemAttr(%#x, %d)", attr, sh) }
func (r *recorder) SetDesMemAttr(attr uint8, sh uint8) { r.record("SetDesMemAttr(%#x, %d)", attr, sh) }

func (r *recorder) SetXAddrInc(src int16, des int16)    { r.record("SetXAddrInc(%d, %d)", src, des) }
func (r *recorder) SetYAddrStride(src int16, des int16) { r.record("SetYAddrStride(%d, %d)", src, des) }
func (r *recorder) SetXSize16(src uint16, des uint16)   { r.record("SetXSize16(%d, %d)", src, des) }
func (r *recorder) SetXSize32(src uint32, des uint32)   { r.record("SetXSize32(%d, %d)", src, des) }
func (r *recorder) SetYSize16(src uint16, des uint16)   { r.record("SetYSize16(%d, %d)", src, des) }
func (r *recorder) SetTranSize(size ch.TranSize)        { r.record("SetTranSize(%d)", size) }
func (r *recorder) SetXType(t ch.XType)                 { r.record("SetXType(%d)", t) }
func (r *recorder) SetYType(t ch.YType)                 { r.record("SetYType(%d)", t) }
func (r *recorder) SetDoneType(t ch.DoneType)           { r.record("SetDoneType(%d)", t) }

func (r *recorder) SetDoneInterrupt(enable bool) { r.record("SetDoneInterrupt(%v)", enable) }
func (r *recorder) Enable()                      { r.record("Enable()") }
func (r *recorder) Status() ch.Status            { return r.status }

func (r *recorder) Wait() ch.Status {
	r.record("Wait()")
	return r.status
}

// newRecorder returns a library on the default memory map (no MPU, no SAU)
// and a recording channel.
func newRecorder() (*Lib, *recorder) {
	l := &Lib{
		Security: &cmse.Model{},
		Remap:    mem.Remap,
	}

	return l, &recorder{status: statusDone}
}

func TestCopyProgramming(t *testing.T) {
	l, c := newRecorder()

	require.NoError(t, l.Copy(c, 0x21000000, 0x21001000, 16, ExecBlocking))

	want := []string{
		"SetSrcTransfer(true, true)",
		"SetSrcMemAttr(0x77, 0)",
		"SetSrc(0x21000000)",
		"SetDesTransfer(true, true)",
		"SetDesMemAttr(0x77, 0)",
		"SetDes(0x21001000)",
		"SetXAddrInc(1, 1)",
		"SetXSize16(16, 16)",
		"SetTranSize(0)",
		"SetXType(1)",
		"SetYType(0)",
		"SetDoneInterrupt(false)",
		"Enable()",
		"Wait()",
	}

	if diff := cmp.Diff(want, c.calls); diff != "" {
		t.Errorf("unexpected programming (-want +got):\n%s", diff)
	}
}

func TestCopySizeEncoding(t *testing.T) {
	for size, want := range map[uint32]string{
		0:       "SetXSize16(0, 0)",
		0xffff:  "SetXSize16(65535, 65535)",
		0x10000: "SetXSize32(65536, 65536)",
	} {
		l, c := newRecorder()

		require.NoError(t, l.Copy(c, 0x21000000, 0x21100000, size, ExecBlocking))
		assert.Contains(t, c.calls, want)
		assert.Equal(t, 1, c.count("SetXSize"))
	}
}

func TestRemappedEndpoints(t *testing.T) {
	l, c := newRecorder()

	// ITCM source, DTCM destination
	require.NoError(t, l.Copy(c, 0x00000100, 0x20000200, 4, ExecBlocking))

	assert.Contains(t, c.calls, "SetSrc(0xa000100)")
	assert.Contains(t, c.calls, "SetSrcMemAttr(0x22, 0)")
	assert.Contains(t, c.calls, "SetDes(0x24000200)")
	assert.Contains(t, c.calls, "SetDesMemAttr(0x77, 0)")
}

func TestMoveDirection(t *testing.T) {
	var tests = []struct {
		name string
		src  uint32
		des  uint32
		want []string
	}{
		{
			"forward",
			0x21000000, 0x21000100,
			[]string{"SetSrc(0x21000000)", "SetDes(0x21000100)", "SetXAddrInc(1, 1)"},
		},
		{
			"backward disjoint",
			0x21000100, 0x21000000,
			[]string{"SetSrc(0x21000100)", "SetDes(0x21000000)", "SetXAddrInc(1, 1)"},
		},
		{
			"adjacent",
			0x21000000, 0x21000010,
			[]string{"SetSrc(0x21000000)", "SetDes(0x21000010)", "SetXAddrInc(1, 1)"},
		},
		{
			"overlapping tail",
			0x21000000, 0x21000004,
			[]string{"SetSrc(0x2100000f)", "SetDes(0x21000013)", "SetXAddrInc(-1, -1)"},
		},
		{
			"overlapping head",
			0x21000004, 0x21000000,
			[]string{"SetSrc(0x21000004)", "SetDes(0x21000000)", "SetXAddrInc(1, 1)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, c := newRecorder()

			require.NoError(t, l.Move(c, tt.src, tt.des, 16, ExecBlocking))

			var got []string

			for _, call := range c.calls {
				if strings.HasPrefix(call, "SetSrc(") || strings.HasPrefix(call, "SetDes(") || strings.HasPrefix(call, "SetXAddrInc") {
					got = append(got, call)
				}
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("unexpected endpoints (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNotReady(t *testing.T) {
	for _, err := range []error{ch.ErrNotReady, ch.ErrNotInitialized} {
		l, c := newRecorder()
		c.ready = err

		assert.ErrorIs(t, l.SetSrc(c, 0x21000000), err)
		assert.ErrorIs(t, l.SetDes(c, 0x21000000), err)
		assert.ErrorIs(t, l.SetSrcDes(c, 0x21000000, 0x21001000, 4, 4), err)
		assert.ErrorIs(t, l.Copy(c, 0x21000000, 0x21001000, 4, ExecBlocking), err)
		assert.ErrorIs(t, l.Move(c, 0x21000000, 0x21001000, 4, ExecBlocking), err)
		assert.ErrorIs(t, l.EndianSwap(c, 0x21000000, 0x21001000, 4, 1, ExecBlocking), err)
		assert.Empty(t, c.calls)
	}
}

func TestInvalidExecType(t *testing.T) {
	l, c := newRecorder()
	exec := ExecType(7)

	assert.ErrorIs(t, l.Copy(c, 0x21000000, 0x21001000, 4, exec), ErrInvalidExecType)
	assert.ErrorIs(t, l.Move(c, 0x21000000, 0x21001000, 4, exec), ErrInvalidExecType)
	assert.ErrorIs(t, l.EndianSwap(c, 0x21000000, 0x21001000, 4, 1, exec), ErrInvalidExecType)
	assert.Empty(t, c.calls)

	assert.ErrorIs(t, run(c, exec), ErrInvalidExecType)
	assert.Empty(t, c.calls)
}

func TestExecTypes(t *testing.T) {
	var tests = []struct {
		exec   ExecType
		status ch.Status
		err    error
		want   []string
	}{
		{ExecIRQ, 0, nil, []string{"SetDoneInterrupt(true)", "Enable()"}},
		{ExecIRQ, 1 << ch.STATUS_STAT_ERR, ErrCommand, []string{"SetDoneInterrupt(true)", "Enable()"}},
		{ExecStartOnly, 0, nil, []string{"SetDoneInterrupt(false)", "Enable()"}},
		{ExecStartOnly, 1 << ch.STATUS_STAT_ERR, ErrCommand, []string{"SetDoneInterrupt(false)", "Enable()"}},
		{ExecBlocking, statusDone, nil, []string{"SetDoneInterrupt(false)", "Enable()", "Wait()"}},
		{ExecBlocking, statusDone | 1<<ch.STATUS_STAT_ERR, ErrCommand, []string{"SetDoneInterrupt(false)", "Enable()", "Wait()"}},
		// neither done nor error
		{ExecBlocking, 0, ErrCommand, []string{"SetDoneInterrupt(false)", "Enable()", "Wait()"}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s/%#x", tt.exec, uint32(tt.status)), func(t *testing.T) {
			c := &recorder{status: tt.status}

			err := run(c, tt.exec)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			} else {
				assert.NoError(t, err)
			}

			if diff := cmp.Diff(tt.want, c.calls); diff != "" {
				t.Errorf("unexpected sequence (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSwapChunks(t *testing.T) {
	var tests = []struct {
		size  uint32
		count uint32
		want  []chunk
	}{
		{4, 0, nil},
		{4, 1, []chunk{{3, 1}}},
		{2, 65535, []chunk{{1, 65535}}},
		{4, 65536, []chunk{{3, 65535}, {65535*4 + 3, 1}}},
		{1, 2*65535 + 2, []chunk{{0, 65535}, {65535, 65535}, {2 * 65535, 2}}},
	}

	for _, tt := range tests {
		s := &swapChunks{size: tt.size, count: tt.count}

		var got []chunk

		for {
			c, ok := s.next()

			if !ok {
				break
			}

			got = append(got, c)
		}

		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("size %d count %d (-want +got):\n%s", tt.size, tt.count, diff)
		}
	}
}

func TestEndianSwapProgramming(t *testing.T) {
	l, c := newRecorder()

	require.NoError(t, l.EndianSwap(c, 0x21000000, 0x21001000, 4, 2, ExecIRQ))

	want := []string{
		"SetDesTransfer(true, true)",
		"SetDesMemAttr(0x77, 0)",
		"SetDes(0x21001000)",
		"SetSrcTransfer(true, true)",
		"SetSrcMemAttr(0x77, 0)",
		"SetSrc(0x21000003)",
		"SetXType(1)",
		"SetYType(1)",
		"SetTranSize(0)",
		"SetXAddrInc(-1, 1)",
		"SetYAddrStride(4, 0)",
		"SetDoneType(1)",
		"SetSrc(0x21000003)",
		"SetYSize16(2, 1)",
		"SetXSize32(4, 8)",
		// always blocking
		"SetDoneInterrupt(false)",
		"Enable()",
		"Wait()",
	}

	if diff := cmp.Diff(want, c.calls); diff != "" {
		t.Errorf("unexpected programming (-want +got):\n%s", diff)
	}
}

func TestEndianSwapCommandCount(t *testing.T) {
	for count, commands := range map[uint32]int{
		0:     0,
		65535: 1,
		65536: 2,
	} {
		l, c := newRecorder()

		require.NoError(t, l.EndianSwap(c, 0x21000000, 0x21200000, 2, count, ExecStartOnly))
		assert.Equal(t, commands, c.count("Enable()"), "count %d", count)
		assert.Equal(t, commands, c.count("Wait()"), "count %d", count)
	}
}

func TestEndianSwapZeroSize(t *testing.T) {
	l, c := newRecorder()

	require.NoError(t, l.EndianSwap(c, 0x21000000, 0x21001000, 0, 16, ExecBlocking))
	assert.Empty(t, c.calls)
}

func TestEndianSwapError(t *testing.T) {
	l, c := newRecorder()
	c.status = 1 << ch.STATUS_STAT_ERR

	assert.ErrorIs(t, l.EndianSwap(c, 0x21000000, 0x21200000, 1, 65536, ExecBlocking), ErrCommand)
	// stops at the first failed command
	assert.Equal(t, 1, c.count("Enable()"))
}

func TestEndianSwapOverflow(t *testing.T) {
	l, c := newRecorder()

	assert.ErrorIs(t, l.EndianSwap(c, 0x21000000, 0x21001000, 255, 0xffffffff, ExecBlocking), ErrRangeNotAccessible)
	assert.Empty(t, c.calls)
}

func TestCommandError(t *testing.T) {
	l, c := newRecorder()
	c.status = 1 << ch.STATUS_STAT_ERR

	assert.ErrorIs(t, l.Copy(c, 0x21000000, 0x21001000, 4, ExecBlocking), ErrCommand)
	assert.ErrorIs(t, l.Move(c, 0x21000000, 0x21001000, 4, ExecStartOnly), ErrCommand)
}
