// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/usbarmory/GoTEE-dma350/dma350"
	"github.com/usbarmory/GoTEE-dma350/dma350/ch"
	"github.com/usbarmory/GoTEE-dma350/sim"
	"github.com/usbarmory/GoTEE-dma350/util"
)

const execSyntax = "[irq|start|blocking]"

func init() {
	Add(Cmd{
		Name:    "memcpy",
		Args:    5,
		Pattern: regexp.MustCompile(`^memcpy (\d+) ([[:xdigit:]]+) ([[:xdigit:]]+) (\S+)( irq| start| blocking)?$`),
		Syntax:  "<ch> <hex src> <hex des> <size> " + execSyntax,
		Help:    "DMA memory copy",
		Fn:      memcpyCmd,
	})

	Add(Cmd{
		Name:    "memmove",
		Args:    5,
		Pattern: regexp.MustCompile(`^memmove (\d+) ([[:xdigit:]]+) ([[:xdigit:]]+) (\S+)( irq| start| blocking)?$`),
		Syntax:  "<ch> <hex src> <hex des> <size> " + execSyntax,
		Help:    "DMA memory move (overlap safe)",
		Fn:      memmoveCmd,
	})

	Add(Cmd{
		Name:    "bswap",
		Args:    6,
		Pattern: regexp.MustCompile(`^bswap (\d+) ([[:xdigit:]]+) ([[:xdigit:]]+) (\d+) (\d+)( irq| start| blocking)?$`),
		Syntax:  "<ch> <hex src> <hex des> <elem size> <count> " + execSyntax,
		Help:    "DMA endian swap",
		Fn:      bswapCmd,
	})

	Add(Cmd{
		Name:    "memattr",
		Args:    2,
		Pattern: regexp.MustCompile(`^memattr ([[:xdigit:]]+) (r|w)$`),
		Syntax:  "<hex addr> <r|w>",
		Help:    "DMA transfer attributes of an address",
		Fn:      memattrCmd,
	})

	Add(Cmd{
		Name:    "status",
		Args:    1,
		Pattern: regexp.MustCompile(`^status (\d+)$`),
		Syntax:  "<ch>",
		Help:    "DMA channel status",
		Fn:      statusCmd,
	})

	Add(Cmd{
		Name:    "trace",
		Args:    1,
		Pattern: regexp.MustCompile(`^trace (\d+)$`),
		Syntax:  "<ch>",
		Help:    "DMA channel command history",
		Fn:      traceCmd,
	})
}

func parseExec(s string) (dma350.ExecType, error) {
	switch strings.TrimSpace(s) {
	case "", "blocking":
		return dma350.ExecBlocking, nil
	case "irq":
		return dma350.ExecIRQ, nil
	case "start":
		return dma350.ExecStartOnly, nil
	default:
		return -1, fmt.Errorf("invalid execution type %q", s)
	}
}

func parseChannel(s string) (n int, hw *ch.Channel, err error) {
	n, err = strconv.Atoi(s)

	if err != nil {
		return 0, nil, fmt.Errorf("invalid channel, %v", err)
	}

	hw, err = System.Channel(n)

	return
}

// transferArgs parses the channel, source and destination arguments common to
// all transfer commands.
func transferArgs(arg []string) (n int, src uint32, des uint32, err error) {
	if n, _, err = parseChannel(arg[0]); err != nil {
		return
	}

	if src, err = parseAddr(arg[1]); err != nil {
		return
	}

	des, err = parseAddr(arg[2])

	return
}

func statusFlags(s ch.Status) string {
	var flags []string

	if s.Done() {
		flags = append(flags, "done")
	}

	if s.Err() {
		flags = append(flags, "error")
	}

	if s.Disabled() {
		flags = append(flags, "disabled")
	}

	if s.Stopped() {
		flags = append(flags, "stopped")
	}

	if s.Paused() {
		flags = append(flags, "paused")
	}

	if len(flags) == 0 {
		return "idle"
	}

	return strings.Join(flags, " ")
}

type transferFn func(c dma350.Channel, src uint32, des uint32, size uint32, exec dma350.ExecType) error

func transferCmd(arg []string, fn transferFn) (res string, err error) {
	n, src, des, err := transferArgs(arg)

	if err != nil {
		return
	}

	size, err := parseSize(arg[3])

	if err != nil {
		return
	}

	exec, err := parseExec(arg[4])

	if err != nil {
		return
	}

	hw, err := System.Acquire(n)

	if err != nil {
		return
	}

	defer System.Release(n)

	if err = fn(hw, src, des, size, exec); err != nil {
		return
	}

	return fmt.Sprintf("%s %#.8x -> %#.8x (%s), %s", humanize.IBytes(uint64(size)), src, des, exec, statusFlags(hw.Status())), nil
}

func memcpyCmd(_ *term.Terminal, arg []string) (res string, err error) {
	return transferCmd(arg, System.Lib.Copy)
}

func memmoveCmd(_ *term.Terminal, arg []string) (res string, err error) {
	return transferCmd(arg, System.Lib.Move)
}

func bswapCmd(_ *term.Terminal, arg []string) (res string, err error) {
	n, src, des, err := transferArgs(arg)

	if err != nil {
		return
	}

	size, err := strconv.ParseUint(arg[3], 10, 8)

	if err != nil {
		return "", fmt.Errorf("invalid element size, %v", err)
	}

	count, err := strconv.ParseUint(arg[4], 10, 32)

	if err != nil {
		return "", fmt.Errorf("invalid count, %v", err)
	}

	exec, err := parseExec(arg[5])

	if err != nil {
		return
	}

	hw, err := System.Acquire(n)

	if err != nil {
		return
	}

	defer System.Release(n)

	if err = System.Lib.EndianSwap(hw, src, des, uint8(size), uint32(count), exec); err != nil {
		return
	}

	return fmt.Sprintf("%d x %d bytes %#.8x -> %#.8x, %s", count, size, src, des, statusFlags(hw.Status())), nil
}

func memattrCmd(term *term.Terminal, arg []string) (res string, err error) {
	addr, err := parseAddr(arg[0])

	if err != nil {
		return
	}

	attr, err := System.Lib.MemAttr(addr, arg[1] == "w")

	if err != nil {
		return
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "address ........: %#.8x\n", addr)
	fmt.Fprintf(&buf, "dma address ....: %#.8x\n", System.Lib.Remap.Remap(addr))
	fmt.Fprintf(&buf, "security .......: %s\n", securityState(term, !attr.NonSecure))
	fmt.Fprintf(&buf, "unprivileged ...: %v\n", attr.Unprivileged)
	fmt.Fprintf(&buf, "attribute ......: %#.2x\n", attr.Attr)
	fmt.Fprintf(&buf, "shareability ...: %#x", attr.Shareability)

	return buf.String(), nil
}

func securityState(term *term.Terminal, secure bool) string {
	if secure {
		return util.Colorize(term, true, "Secure")
	}

	return util.Colorize(term, false, "Non-secure")
}

func statusCmd(_ *term.Terminal, arg []string) (res string, err error) {
	n, hw, err := parseChannel(arg[0])

	if err != nil {
		return
	}

	s := hw.Status()
	c := System.Platform.Channels[n]

	c.Lock()
	busErr := c.Err
	c.Unlock()

	res = fmt.Sprintf("ch%d status %#.8x (%s)", n, uint32(s), statusFlags(s))

	if s.Err() && busErr != nil {
		res += fmt.Sprintf("\nbus error: %v", busErr)
	}

	return
}

func transferCell(term *term.Terminal, t sim.Transfer) string {
	return util.Colorize(term, !t.NonSecure, fmt.Sprintf("%#.8x", t.Addr))
}

func traceCmd(term *term.Terminal, arg []string) (res string, err error) {
	n, _, err := parseChannel(arg[0])

	if err != nil {
		return
	}

	c := System.Platform.Channels[n]

	c.Lock()
	history := append([]sim.Command{}, c.Commands...)
	c.Unlock()

	if len(history) == 0 {
		return fmt.Sprintf("ch%d has no commands", n), nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Src", "Des", "XSize", "YSize", "Unit", "XInc", "YStride", "Priv", "Attr"})

	for i, cmd := range history {
		t.AppendRow(table.Row{
			i,
			transferCell(term, cmd.Src),
			transferCell(term, cmd.Des),
			fmt.Sprintf("%d/%d", cmd.Src.XSize, cmd.Des.XSize),
			fmt.Sprintf("%d/%d", cmd.Src.YSize, cmd.Des.YSize),
			cmd.TranSize.Bytes(),
			fmt.Sprintf("%d/%d", cmd.Src.XAddrInc, cmd.Des.XAddrInc),
			fmt.Sprintf("%d/%d", cmd.Src.YAddrStride, cmd.Des.YAddrStride),
			fmt.Sprintf("%v/%v", cmd.Src.Privileged, cmd.Des.Privileged),
			fmt.Sprintf("%#.2x/%#.2x", cmd.Src.MemAttr, cmd.Des.MemAttr),
		})
	}

	return t.Render(), nil
}
