// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package cmd

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"runtime/debug"
	"runtime/pprof"

	"golang.org/x/term"
)

func init() {
	Add(Cmd{
		Name: "info",
		Help: "simulated system information",
		Fn:   infoCmd,
	})

	Add(Cmd{
		Name: "help",
		Help: "this help",
		Fn:   helpCmd,
	})

	Add(Cmd{
		Name:    "exit, quit",
		Args:    1,
		Pattern: regexp.MustCompile(`^(exit|quit)$`),
		Help:    "close session",
		Fn:      exitCmd,
	})

	Add(Cmd{
		Name: "stack",
		Help: "stack trace of current goroutine",
		Fn:   stackCmd,
	})

	Add(Cmd{
		Name: "stackall",
		Help: "stack trace of all goroutines",
		Fn:   stackallCmd,
	})
}

func helpCmd(term *term.Terminal, _ []string) (string, error) {
	return Help(term), nil
}

func infoCmd(_ *term.Terminal, _ []string) (string, error) {
	var buf bytes.Buffer

	state := "Non-secure"

	if System.Secure() {
		state = "Secure"
	}

	fmt.Fprintf(&buf, "%s\n", Banner)
	fmt.Fprintf(&buf, "state ...........: %s\n", state)
	fmt.Fprintf(&buf, "channels ........: %d\n", len(System.Channels))
	fmt.Fprintf(&buf, "async ...........: %v\n", System.Async())
	fmt.Fprintf(&buf, "secure mpu ......: %v\n", System.Platform.MPU.Enabled())
	fmt.Fprintf(&buf, "non-secure mpu ..: %v\n", System.Platform.MPUNonSecure.Enabled())
	fmt.Fprintf(&buf, "sau .............: %v", System.Platform.SAU.Enabled)

	return buf.String(), nil
}

func exitCmd(_ *term.Terminal, _ []string) (string, error) {
	return "logout", io.EOF
}

func stackCmd(_ *term.Terminal, _ []string) (string, error) {
	return string(debug.Stack()), nil
}

func stackallCmd(_ *term.Terminal, _ []string) (res string, err error) {
	buf := new(bytes.Buffer)

	if err = pprof.Lookup("goroutine").WriteTo(buf, 1); err != nil {
		return
	}

	return buf.String(), nil
}
