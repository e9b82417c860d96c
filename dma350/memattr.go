// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package dma350

import (
	"github.com/usbarmory/GoTEE-dma350/cmse"
	"github.com/usbarmory/GoTEE-dma350/mem"
)

// MemAttr represents the transaction attributes resolved for a transfer
// endpoint.
type MemAttr struct {
	NonSecure    bool
	Unprivileged bool
	// Attr is the memory attribute in MAIR encoding
	Attr         uint8
	Shareability uint8
}

func permitted(info cmse.AddressInfo, writable bool, nonSecure bool) bool {
	switch {
	case nonSecure && writable:
		return info.NonSecureReadWriteOK
	case nonSecure:
		return info.NonSecureReadOK
	case writable:
		return info.ReadWriteOK
	default:
		return info.ReadOK
	}
}

// MemAttr resolves the security, privilege and memory attributes the calling
// firmware is subject to when accessing an address.
func (l *Lib) MemAttr(addr uint32, writable bool) (attr MemAttr, err error) {
	var info cmse.AddressInfo
	var m MPU

	switch {
	case !l.Secure:
		if info = l.Security.TT(addr); !permitted(info, writable, false) {
			return attr, ErrRangeNotAccessible
		}

		attr.NonSecure = true
		m = l.MPU

		// the MPU region is reported even when unprivileged access is denied
		info = l.Security.TTT(addr)
		attr.Unprivileged = permitted(info, writable, false)
	case permitted(l.Security.TTA(addr), writable, true):
		attr.NonSecure = true
		m = l.MPUNonSecure

		info = l.Security.TTAT(addr)
		attr.Unprivileged = permitted(info, writable, true)
	case permitted(l.Security.TT(addr), writable, false):
		m = l.MPU

		info = l.Security.TTT(addr)
		attr.Unprivileged = permitted(info, writable, false)
	default:
		return attr, ErrRangeNotAccessible
	}

	if m != nil && m.Enabled() && info.MPURegionValid {
		attr.Attr, attr.Shareability = m.RegionAttributes(info.MPURegion)
	} else {
		attr.Attr = mem.DefaultAttr(addr)
	}

	return
}
