// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package sim

import (
	"errors"
	"fmt"
	"sync"

	"github.com/usbarmory/GoTEE-dma350/dma350/ch"
)

// CTRL reset value, STAT_DONE is asserted at the end of each command
const ctrlReset = uint32(ch.DONETYPE_END_OF_CMD) << ch.CTRL_DONETYPE

var (
	ErrUnsupported = errors.New("unsupported command")
	ErrGeometry    = errors.New("source and destination sizes differ")
)

// Transfer represents the attributes of one side of a command.
type Transfer struct {
	Addr         uint32
	XSize        uint32
	YSize        uint16
	XAddrInc     int16
	YAddrStride  int16
	NonSecure    bool
	Privileged   bool
	MemAttr      uint8
	Shareability uint8
}

func (t Transfer) attributes() Attributes {
	return Attributes{
		NonSecure:  t.NonSecure,
		Privileged: t.Privileged,
	}
}

// Command represents a snapshot of the channel registers taken when a
// command is enabled.
type Command struct {
	Src      Transfer
	Des      Transfer
	TranSize ch.TranSize
	XType    ch.XType
	YType    ch.YType
	DoneType ch.DoneType
	// Interrupt holds the enabled interrupt sources
	Interrupt uint32
}

// Channel models a DMA-350 channel register file, commands are executed as
// transactions on the bus.
type Channel struct {
	sync.Mutex

	// Bus is the system bus accessed by the channel
	Bus *Bus
	// Async completes commands in a separate goroutine, otherwise commands
	// complete before the enable command write returns.
	Async bool
	// Interrupt, when set, is invoked on completion of commands raising an
	// enabled interrupt source.
	Interrupt func(status ch.Status)

	// Commands records all enabled commands.
	Commands []Command
	// Err holds the bus error of the last failed command.
	Err error

	regs [ch.RegistersSize / 4]uint32
}

// NewChannel returns a channel model attached to a bus.
func NewChannel(bus *Bus) *Channel {
	c := &Channel{
		Bus: bus,
	}

	c.reset()

	return c
}

func (c *Channel) reset() {
	c.regs = [ch.RegistersSize / 4]uint32{}
	c.regs[ch.CH_CTRL/4] = ctrlReset
}

func (c *Channel) get(off uint32, pos int, mask uint32) uint32 {
	return (c.regs[off/4] >> pos) & mask
}

func (c *Channel) busy() bool {
	return c.get(ch.CH_CMD, ch.CMD_ENABLECMD, 1) == 1
}

func (c *Channel) Read(off uint32) uint32 {
	c.Lock()
	defer c.Unlock()

	if off >= ch.RegistersSize {
		return 0
	}

	return c.regs[off/4]
}

func (c *Channel) Write(off uint32, val uint32) {
	c.Lock()

	switch {
	case off >= ch.RegistersSize:
	case off == ch.CH_CMD:
		cmd, start := c.command(val)
		c.Unlock()

		if !start {
			return
		}

		if c.Async {
			go c.execute(cmd)
		} else {
			c.execute(cmd)
		}

		return
	case off == ch.CH_STATUS:
		// write one to clear
		c.regs[off/4] &^= val
	default:
		if !c.busy() {
			c.regs[off/4] = val
		}
	}

	c.Unlock()
}

func (c *Channel) transfer(addr uint32, cfg uint32, xsize uint32, pos int) Transfer {
	return Transfer{
		Addr:         c.regs[addr/4],
		XSize:        xsize,
		YSize:        uint16(c.get(ch.CH_YSIZE, pos, 0xffff)),
		XAddrInc:     int16(c.get(ch.CH_XADDRINC, pos, 0xffff)),
		YAddrStride:  int16(c.get(ch.CH_YADDRSTRIDE, pos, 0xffff)),
		NonSecure:    c.get(cfg, ch.TRANSCFG_NONSECATTR, 1) == 1,
		Privileged:   c.get(cfg, ch.TRANSCFG_PRIVATTR, 1) == 1,
		MemAttr:      uint8(c.get(cfg, ch.TRANSCFG_MEMATTRLO, 0xff)),
		Shareability: uint8(c.get(cfg, ch.TRANSCFG_SHAREATTR, 0b11)),
	}
}

// command handles a write to the command register, it returns the command
// snapshot and whether it must be executed.
func (c *Channel) command(val uint32) (cmd Command, start bool) {
	switch {
	case val&(1<<ch.CMD_CLEARCMD) != 0:
		if !c.busy() {
			c.reset()
		}
	case val&(1<<ch.CMD_ENABLECMD) != 0:
		if c.busy() {
			return
		}

		c.regs[ch.CH_STATUS/4] = 0
		c.regs[ch.CH_CMD/4] = 1 << ch.CMD_ENABLECMD

		srcX := c.get(ch.CH_XSIZEHI, ch.XSIZE_SRC, 0xffff)<<16 | c.get(ch.CH_XSIZE, ch.XSIZE_SRC, 0xffff)
		desX := c.get(ch.CH_XSIZEHI, ch.XSIZE_DES, 0xffff)<<16 | c.get(ch.CH_XSIZE, ch.XSIZE_DES, 0xffff)

		cmd = Command{
			Src:       c.transfer(ch.CH_SRCADDR, ch.CH_SRCTRANSCFG, srcX, ch.XSIZE_SRC),
			Des:       c.transfer(ch.CH_DESADDR, ch.CH_DESTRANSCFG, desX, ch.XSIZE_DES),
			TranSize:  ch.TranSize(c.get(ch.CH_CTRL, ch.CTRL_TRANSIZE, 0b111)),
			XType:     ch.XType(c.get(ch.CH_CTRL, ch.CTRL_XTYPE, 0b111)),
			YType:     ch.YType(c.get(ch.CH_CTRL, ch.CTRL_YTYPE, 0b111)),
			DoneType:  ch.DoneType(c.get(ch.CH_CTRL, ch.CTRL_DONETYPE, 0b111)),
			Interrupt: c.regs[ch.CH_INTREN/4],
		}

		c.Commands = append(c.Commands, cmd)

		return cmd, true
	case val&(1<<ch.CMD_STOPCMD) != 0:
		if !c.busy() {
			c.regs[ch.CH_STATUS/4] |= 1 << ch.STATUS_STAT_STOPPED
		}
	case val&(1<<ch.CMD_DISABLECMD) != 0:
		if !c.busy() {
			c.regs[ch.CH_STATUS/4] |= 1 << ch.STATUS_STAT_DISABLED
		}
	}

	return
}

func (c *Channel) execute(cmd Command) {
	var status uint32
	var intr uint32

	src, des, err := c.run(cmd)

	c.Lock()

	switch {
	case err != nil:
		c.Err = err
		status = 1 << ch.STATUS_STAT_ERR
		intr = cmd.Interrupt & (1 << ch.INTREN_ERR)
	case cmd.DoneType != ch.DONETYPE_NONE:
		status = 1 << ch.STATUS_STAT_DONE
		intr = cmd.Interrupt & (1 << ch.INTREN_DONE)
	}

	if err == nil {
		// address registers track the transfer progress
		c.regs[ch.CH_SRCADDR/4] = src
		c.regs[ch.CH_DESADDR/4] = des
	}

	// INTREN sources match the STATUS interrupt flags
	status |= intr
	c.regs[ch.CH_STATUS/4] |= status
	c.regs[ch.CH_CMD/4] &^= 1 << ch.CMD_ENABLECMD

	c.Unlock()

	if intr != 0 && c.Interrupt != nil {
		c.Interrupt(ch.Status(status))
	}
}

// axis walks the addresses of one side of a command.
type axis struct {
	Transfer

	unit uint32
	rows uint32
	x    uint32
	row  uint32
	addr uint32
	last uint32
}

func newAxis(t Transfer, unit uint32, yType ch.YType) *axis {
	a := &axis{
		Transfer: t,
		unit:     unit,
		rows:     1,
		row:      t.Addr,
		addr:     t.Addr,
	}

	if yType == ch.YTYPE_CONTINUE {
		a.rows = uint32(t.YSize)
	}

	return a
}

func (a *axis) total() uint64 {
	return uint64(a.XSize) * uint64(a.rows)
}

// next returns the address of the current unit and advances to the
// following one.
func (a *axis) next() (addr uint32) {
	addr = a.addr
	a.last = addr
	a.x += 1

	if a.x < a.XSize {
		a.addr += uint32(int32(a.XAddrInc)) * a.unit
		return
	}

	a.x = 0
	a.row += uint32(int32(a.YAddrStride)) * a.unit
	a.addr = a.row

	return
}

// end returns the address following the last transferred unit.
func (a *axis) end() uint32 {
	if a.total() == 0 {
		return a.Addr
	}

	return a.last + uint32(int32(a.XAddrInc))*a.unit
}

// run performs the command bus transactions, it returns the source and
// destination addresses reached at its end.
func (c *Channel) run(cmd Command) (srcEnd uint32, desEnd uint32, err error) {
	srcEnd = cmd.Src.Addr
	desEnd = cmd.Des.Addr

	switch cmd.XType {
	case ch.XTYPE_DISABLE:
		return
	case ch.XTYPE_CONTINUE:
	default:
		err = fmt.Errorf("%w, xtype %d", ErrUnsupported, cmd.XType)
		return
	}

	if cmd.YType != ch.YTYPE_DISABLE && cmd.YType != ch.YTYPE_CONTINUE {
		err = fmt.Errorf("%w, ytype %d", ErrUnsupported, cmd.YType)
		return
	}

	unit := uint32(cmd.TranSize.Bytes())
	src := newAxis(cmd.Src, unit, cmd.YType)
	des := newAxis(cmd.Des, unit, cmd.YType)

	if src.total() != des.total() {
		err = fmt.Errorf("%w (%d != %d)", ErrGeometry, src.total(), des.total())
		return
	}

	buf := make([]byte, unit)

	for n := uint64(0); n < src.total(); n++ {
		s := src.next()
		d := des.next()

		for i := uint32(0); i < unit; i++ {
			if buf[i], err = c.Bus.Read(s+i, src.attributes()); err != nil {
				return
			}
		}

		for i := uint32(0); i < unit; i++ {
			if err = c.Bus.Write(d+i, buf[i], des.attributes()); err != nil {
				return
			}
		}
	}

	return src.end(), des.end(), nil
}
