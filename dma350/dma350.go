// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package dma350 implements memory copy, move and endian swap operations on
// Arm CoreLink DMA-350 channels, honoring the ARMv8-M security and privilege
// isolation of the calling firmware.
//
// Each endpoint of a transfer is classified with Test Target queries against
// the Secure and Non-secure MPU configuration, the channel is then programmed
// to issue transactions with the same security, privilege and memory
// attributes the calling firmware would be subject to.
//
// The package performs no locking, each channel must have a single owner.
package dma350

import (
	"errors"

	"github.com/usbarmory/GoTEE-dma350/cmse"
	"github.com/usbarmory/GoTEE-dma350/dma350/ch"
	"github.com/usbarmory/GoTEE-dma350/mem"
)

var (
	ErrInvalidExecType    = errors.New("invalid execution type")
	ErrRangeNotAccessible = errors.New("range not accessible")
	ErrCommand            = errors.New("command error")
)

// Channel represents the DMA-350 channel driver surface used by the library,
// it is implemented by *ch.Channel.
type Channel interface {
	Ready() error

	SetSrc(addr uint32)
	SetDes(addr uint32)
	SetSrcTransfer(nonSecure bool, unprivileged bool)
	SetDesTransfer(nonSecure bool, unprivileged bool)
	SetSrcMemAttr(attr uint8, sh uint8)
	SetDesMemAttr(attr uint8, sh uint8)

	SetXAddrInc(src int16, des int16)
	SetYAddrStride(src int16, des int16)
	SetXSize16(src uint16, des uint16)
	SetXSize32(src uint32, des uint32)
	SetYSize16(src uint16, des uint16)
	SetTranSize(size ch.TranSize)
	SetXType(t ch.XType)
	SetYType(t ch.YType)
	SetDoneType(t ch.DoneType)

	SetDoneInterrupt(enable bool)
	Enable()
	Status() ch.Status
	Wait() ch.Status
}

// SecurityModel represents the ARMv8-M Test Target instructions and address
// range check, it is implemented by *cmse.Model.
type SecurityModel interface {
	TT(addr uint32) cmse.AddressInfo
	TTT(addr uint32) cmse.AddressInfo
	TTA(addr uint32) cmse.AddressInfo
	TTAT(addr uint32) cmse.AddressInfo
	CheckRange(addr uint32, size uint32, flags cmse.Flags) bool
}

// MPU represents the MPU attribute lookup, it is implemented by *mpu.MPU.
type MPU interface {
	Enabled() bool
	RegionAttributes(n uint8) (attr uint8, sh uint8)
}

// Lib represents the library configuration for the executing firmware.
type Lib struct {
	// Security answers Test Target queries
	Security SecurityModel
	// MPU is the MPU of the executing security state
	MPU MPU
	// MPUNonSecure is the Non-secure MPU, used only in Secure state
	MPUNonSecure MPU
	// Remap translates CPU addresses to DMA system addresses
	Remap mem.RemapTable
	// Secure reports whether the library runs in Secure state
	Secure bool
}

// ExecType represents the execution mode of a command.
type ExecType int

const (
	// ExecIRQ starts the command with the completion interrupt enabled.
	ExecIRQ ExecType = iota
	// ExecStartOnly starts the command without waiting for completion.
	ExecStartOnly
	// ExecBlocking starts the command and waits for its completion.
	ExecBlocking
)

func (e ExecType) valid() bool {
	switch e {
	case ExecIRQ, ExecStartOnly, ExecBlocking:
		return true
	default:
		return false
	}
}

func (e ExecType) String() string {
	switch e {
	case ExecIRQ:
		return "irq"
	case ExecStartOnly:
		return "start"
	case ExecBlocking:
		return "blocking"
	default:
		return "invalid"
	}
}
