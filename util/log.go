// Copyright (c) WithSecure Corporation
// https://foundry.withsecure.com
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

import (
	"golang.org/x/term"
)

// SecurityColor returns the terminal color of output related to a security
// state, green for Secure and red for Non-secure.
func SecurityColor(t *term.Terminal, secure bool) []byte {
	if secure {
		return t.Escape.Green
	}

	return t.Escape.Red
}

// Colorize wraps a message with the color of its security state, the message
// is returned unchanged without a terminal.
func Colorize(t *term.Terminal, secure bool, msg string) string {
	if t == nil {
		return msg
	}

	return string(SecurityColor(t, secure)) + msg + string(t.Escape.Reset)
}
