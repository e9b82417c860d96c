// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"
)

const maxBufferSize = 102400

func init() {
	Add(Cmd{
		Name:    "peek",
		Args:    2,
		Pattern: regexp.MustCompile(`^peek ([[:xdigit:]]+) (\S+)$`),
		Syntax:  "<hex addr> <size>",
		Help:    "memory display (debug access)",
		Fn:      memReadCmd,
	})

	Add(Cmd{
		Name:    "poke",
		Args:    2,
		Pattern: regexp.MustCompile(`^poke ([[:xdigit:]]+) ([[:xdigit:]]+)$`),
		Syntax:  "<hex addr> <hex value>",
		Help:    "memory write   (debug access)",
		Fn:      memWriteCmd,
	})
}

func parseAddr(s string) (uint32, error) {
	addr, err := strconv.ParseUint(s, 16, 32)

	if err != nil {
		return 0, fmt.Errorf("invalid address, %v", err)
	}

	return uint32(addr), nil
}

func parseSize(s string) (uint32, error) {
	size, err := humanize.ParseBytes(s)

	if err != nil {
		return 0, fmt.Errorf("invalid size, %v", err)
	}

	if size > 0xffffffff {
		return 0, fmt.Errorf("size %s exceeds 32-bit range", s)
	}

	return uint32(size), nil
}

func memReadCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, err := parseAddr(arg[0])

	if err != nil {
		return
	}

	size, err := parseSize(arg[1])

	if err != nil {
		return
	}

	if (addr%4) != 0 || (size%4) != 0 {
		return "", fmt.Errorf("only 32-bit aligned accesses are supported")
	}

	if size > maxBufferSize {
		return "", fmt.Errorf("size argument must be <= %d", maxBufferSize)
	}

	buf := make([]byte, size)

	if err = System.Platform.Bus.Load(addr, buf); err != nil {
		return
	}

	return hex.Dump(buf), nil
}

func memWriteCmd(_ *term.Terminal, arg []string) (res string, err error) {
	addr, err := parseAddr(arg[0])

	if err != nil {
		return
	}

	val, err := strconv.ParseUint(arg[1], 16, 32)

	if err != nil {
		return "", fmt.Errorf("invalid data, %v", err)
	}

	if (addr % 4) != 0 {
		return "", fmt.Errorf("only 32-bit aligned accesses are supported")
	}

	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(val))

	err = System.Platform.Bus.Store(addr, buf)

	return
}
