// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/term"

	"github.com/usbarmory/GoTEE-dma350/cmse"
	"github.com/usbarmory/GoTEE-dma350/mpu"
	"github.com/usbarmory/GoTEE-dma350/util"
)

var apNames = map[uint8]string{
	mpu.AP_RW_PRIV: "RW priv",
	mpu.AP_RW_ANY:  "RW any",
	mpu.AP_RO_PRIV: "RO priv",
	mpu.AP_RO_ANY:  "RO any",
}

var shNames = map[uint8]string{
	mpu.SH_NON:   "non",
	mpu.SH_OUTER: "outer",
	mpu.SH_INNER: "inner",
}

func init() {
	Add(Cmd{
		Name: "mpu",
		Help: "show MPU regions",
		Fn:   mpuCmd,
	})

	Add(Cmd{
		Name: "sau",
		Help: "show SAU regions",
		Fn:   sauCmd,
	})

	Add(Cmd{
		Name:    "tt",
		Args:    1,
		Pattern: regexp.MustCompile(`^tt ([[:xdigit:]]+)$`),
		Syntax:  "<hex addr>",
		Help:    "Test Target an address",
		Fn:      ttCmd,
	})

	Add(Cmd{
		Name: "regions",
		Help: "show bus memories",
		Fn:   regionsCmd,
	})

	Add(Cmd{
		Name: "remap",
		Help: "show DMA address remap table",
		Fn:   remapCmd,
	})
}

func appendRegions(t table.Writer, term *term.Terminal, secure bool, m *mpu.MPU) {
	state := securityState(term, secure)

	if !m.Enabled() {
		t.AppendRow(table.Row{state, "-", "disabled", "", "", "", "", ""})
		return
	}

	for i := 0; i < m.Regions(); i++ {
		r, err := m.Region(i)

		if err != nil || !r.Enable {
			continue
		}

		t.AppendRow(table.Row{
			state,
			i,
			fmt.Sprintf("%#.8x", r.Base),
			fmt.Sprintf("%#.8x", r.Limit),
			fmt.Sprintf("%d (%#.2x)", r.AttrIndex, m.Attr(int(r.AttrIndex))),
			apNames[r.AP],
			shNames[r.Shareability],
			r.XN,
		})
	}
}

func mpuCmd(term *term.Terminal, _ []string) (res string, err error) {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"State", "#", "Base", "Limit", "Attr", "AP", "SH", "XN"})

	// Secure MPU registers are not visible from Non-secure state
	if System.Secure() {
		appendRegions(t, term, true, System.Platform.MPU)
	}

	appendRegions(t, term, false, System.Platform.MPUNonSecure)

	return t.Render(), nil
}

func sauCmd(_ *term.Terminal, _ []string) (res string, err error) {
	sau := System.Platform.SAU

	if !sau.Enabled {
		return fmt.Sprintf("SAU disabled (all non-secure:%v)", sau.AllNS), nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "Base", "Limit", "NSC", "Enabled"})

	for i, r := range sau.Regions {
		t.AppendRow(table.Row{i, fmt.Sprintf("%#.8x", r.Base), fmt.Sprintf("%#.8x", r.Limit), r.NSC, r.Enable})
	}

	return t.Render(), nil
}

func formatInfo(buf *bytes.Buffer, term *term.Terminal, name string, info cmse.AddressInfo) {
	fmt.Fprintf(buf, "%-4s mpu:", name)

	if info.MPURegionValid {
		fmt.Fprintf(buf, "%d", info.MPURegion)
	} else {
		fmt.Fprintf(buf, "-")
	}

	fmt.Fprintf(buf, " r:%v rw:%v", info.ReadOK, info.ReadWriteOK)

	if System.Secure() {
		fmt.Fprintf(buf, " sau:")

		if info.SAURegionValid {
			fmt.Fprintf(buf, "%d", info.SAURegion)
		} else {
			fmt.Fprintf(buf, "-")
		}

		fmt.Fprintf(buf, " nsr:%v nsrw:%v %s", info.NonSecureReadOK, info.NonSecureReadWriteOK, securityState(term, info.Secure))
	}

	fmt.Fprintf(buf, "\n")
}

func ttCmd(term *term.Terminal, arg []string) (res string, err error) {
	addr, err := parseAddr(arg[0])

	if err != nil {
		return
	}

	var buf bytes.Buffer
	sm := System.Lib.Security

	formatInfo(&buf, term, "TT", sm.TT(addr))
	formatInfo(&buf, term, "TTT", sm.TTT(addr))

	if System.Secure() {
		formatInfo(&buf, term, "TTA", sm.TTA(addr))
		formatInfo(&buf, term, "TTAT", sm.TTAT(addr))
	}

	return buf.String(), nil
}

func regionsCmd(term *term.Terminal, _ []string) (res string, err error) {
	bus := System.Platform.Bus

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Name", "Start", "End", "Size"})

	bus.RLock()
	defer bus.RUnlock()

	for _, m := range bus.Memories {
		t.AppendRow(table.Row{
			util.Colorize(term, m.Secure, m.Name),
			fmt.Sprintf("%#.8x", m.Base),
			fmt.Sprintf("%#.8x", m.Base+m.Size()-1),
			humanize.IBytes(uint64(m.Size())),
		})
	}

	return t.Render(), nil
}

func remapCmd(_ *term.Terminal, _ []string) (res string, err error) {
	remap := System.Lib.Remap

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Begin", "End", "Offset", "DMA begin"})

	for _, r := range remap {
		t.AppendRow(table.Row{
			fmt.Sprintf("%#.8x", r.Begin),
			fmt.Sprintf("%#.8x", r.End),
			fmt.Sprintf("%#.8x", r.Offset),
			fmt.Sprintf("%#.8x", r.Begin+r.Offset),
		})
	}

	return t.Render(), remap.Validate()
}
