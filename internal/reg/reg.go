// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package reg provides primitives for 32-bit register access through a
// register file, which can either be memory mapped hardware or a model of it.
package reg

import (
	"runtime"
	"sync/atomic"
	"unsafe"

	"github.com/usbarmory/tamago/bits"
)

// File represents a block of 32-bit registers addressed by byte offset.
type File interface {
	Read(off uint32) uint32
	Write(off uint32, val uint32)
}

// MMIO represents a memory mapped register block at the given base address.
type MMIO uint32

func (base MMIO) Read(off uint32) uint32 {
	r := (*uint32)(unsafe.Pointer(uintptr(uint32(base) + off)))
	return atomic.LoadUint32(r)
}

func (base MMIO) Write(off uint32, val uint32) {
	r := (*uint32)(unsafe.Pointer(uintptr(uint32(base) + off)))
	atomic.StoreUint32(r, val)
}

// Get returns the register field at the given position.
func Get(f File, off uint32, pos int, mask int) uint32 {
	return (f.Read(off) >> pos) & uint32(mask)
}

// IsSet returns whether a register bit is set.
func IsSet(f File, off uint32, pos int) bool {
	val := f.Read(off)
	return bits.Get(&val, pos, 1) == 1
}

// Set sets a register bit.
func Set(f File, off uint32, pos int) {
	val := f.Read(off)
	bits.Set(&val, pos)
	f.Write(off, val)
}

// Clear clears a register bit.
func Clear(f File, off uint32, pos int) {
	val := f.Read(off)
	bits.Clear(&val, pos)
	f.Write(off, val)
}

// SetTo sets or clears a register bit.
func SetTo(f File, off uint32, pos int, set bool) {
	if set {
		Set(f, off, pos)
	} else {
		Clear(f, off, pos)
	}
}

// SetN updates a register field at the given position.
func SetN(f File, off uint32, pos int, mask int, val uint32) {
	r := f.Read(off)
	bits.SetN(&r, pos, mask, val)
	f.Write(off, r)
}

// Wait busy waits until a register field matches the given value.
func Wait(f File, off uint32, pos int, mask int, val uint32) {
	for Get(f, off, pos, mask) != val {
		// give other goroutines a chance
		runtime.Gosched()
	}
}

// Mem is a plain memory backed register file, registers are indexed by their
// byte offset divided by 4.
type Mem []uint32

func (m Mem) Read(off uint32) uint32 {
	return atomic.LoadUint32(&m[off/4])
}

func (m Mem) Write(off uint32, val uint32) {
	atomic.StoreUint32(&m[off/4], val)
}
