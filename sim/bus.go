// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package sim models the Corstone-310 hardware used by the DMA library: a
// system bus with Secure and Non-secure memories, DMA-350 channels executing
// commands on it and banked MPU register files.
package sim

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrDecode    = errors.New("bus decode error")
	ErrSecurity  = errors.New("bus security violation")
	ErrPrivilege = errors.New("bus privilege violation")
)

// Attributes represents the security and privilege of a bus transaction.
type Attributes struct {
	NonSecure  bool
	Privileged bool
}

// Memory represents a bus slave backed by memory.
type Memory struct {
	// Name is the memory description
	Name string
	// Base is the system bus address
	Base uint32
	// Secure restricts access to Secure transactions, Non-secure memories
	// are only accessible by Non-secure transactions.
	Secure bool
	// Privileged restricts access to privileged transactions.
	Privileged bool
	// Data is the memory content
	Data []byte
}

// Size returns the memory size.
func (m *Memory) Size() uint32 {
	return uint32(len(m.Data))
}

// Contains returns whether an address falls within the memory.
func (m *Memory) Contains(addr uint32) bool {
	return addr >= m.Base && addr-m.Base < m.Size()
}

func (m *Memory) check(attr Attributes) error {
	if m.Secure == attr.NonSecure {
		return fmt.Errorf("%w (%s)", ErrSecurity, m.Name)
	}

	if m.Privileged && !attr.Privileged {
		return fmt.Errorf("%w (%s)", ErrPrivilege, m.Name)
	}

	return nil
}

// Bus represents the system bus as seen by bus masters.
type Bus struct {
	sync.RWMutex

	// Memories lists the bus slaves
	Memories []*Memory
}

// Add attaches a memory of the given size to the bus.
func (b *Bus) Add(name string, base uint32, size int, secure bool) *Memory {
	m := &Memory{
		Name:   name,
		Base:   base,
		Secure: secure,
		Data:   make([]byte, size),
	}

	b.Lock()
	b.Memories = append(b.Memories, m)
	b.Unlock()

	return m
}

// lookup returns the memory decoding an address, the caller must hold the
// bus lock.
func (b *Bus) lookup(addr uint32) (*Memory, error) {
	for _, m := range b.Memories {
		if m.Contains(addr) {
			return m, nil
		}
	}

	return nil, fmt.Errorf("%w at %#.8x", ErrDecode, addr)
}

// Read performs a single byte read transaction.
func (b *Bus) Read(addr uint32, attr Attributes) (val byte, err error) {
	b.RLock()
	defer b.RUnlock()

	m, err := b.lookup(addr)

	if err != nil {
		return
	}

	if err = m.check(attr); err != nil {
		return
	}

	return m.Data[addr-m.Base], nil
}

// Write performs a single byte write transaction.
func (b *Bus) Write(addr uint32, val byte, attr Attributes) (err error) {
	b.Lock()
	defer b.Unlock()

	m, err := b.lookup(addr)

	if err != nil {
		return
	}

	if err = m.check(attr); err != nil {
		return
	}

	m.Data[addr-m.Base] = val

	return
}

// Load copies memory content into buf, without any access control, as a
// debugger would.
func (b *Bus) Load(addr uint32, buf []byte) (err error) {
	b.RLock()
	defer b.RUnlock()

	for i := range buf {
		m, err := b.lookup(addr + uint32(i))

		if err != nil {
			return err
		}

		buf[i] = m.Data[addr+uint32(i)-m.Base]
	}

	return
}

// Store copies buf into memory, without any access control, as a debugger
// would.
func (b *Bus) Store(addr uint32, buf []byte) (err error) {
	b.Lock()
	defer b.Unlock()

	for i, v := range buf {
		m, err := b.lookup(addr + uint32(i))

		if err != nil {
			return err
		}

		m.Data[addr+uint32(i)-m.Base] = v
	}

	return
}
