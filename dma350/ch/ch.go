// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

// Package ch implements a driver for Arm CoreLink DMA-350 channels.
//
// Each channel is driven through its own register file, the driver performs
// no locking and a channel must have a single owner at any given time.
package ch

import (
	"errors"

	"github.com/usbarmory/GoTEE-dma350/internal/reg"
)

var (
	ErrNotReady       = errors.New("channel not ready")
	ErrNotInitialized = errors.New("channel not initialized")
)

// Channel represents a DMA-350 channel instance.
type Channel struct {
	// Index is the channel number within the controller
	Index int
	// Registers is the channel register file
	Registers reg.File

	init bool
}

// New returns a channel instance for the given register file.
func New(index int, regs reg.File) *Channel {
	return &Channel{
		Index:     index,
		Registers: regs,
	}
}

// Init brings the channel to a known state, clearing any pending status and
// disabling all interrupts.
func (hw *Channel) Init() (err error) {
	if hw.Registers == nil {
		return ErrNotReady
	}

	if hw.Busy() {
		return ErrNotReady
	}

	hw.Registers.Write(CH_INTREN, 0)
	hw.ClearStatus()
	hw.init = true

	return
}

// Ready returns an error if the channel cannot be programmed.
func (hw *Channel) Ready() error {
	if hw.Registers == nil {
		return ErrNotReady
	}

	if !hw.init {
		return ErrNotInitialized
	}

	return nil
}

// Busy returns whether a command is in progress.
func (hw *Channel) Busy() bool {
	return reg.IsSet(hw.Registers, CH_CMD, CMD_ENABLECMD)
}

// Command issues a channel command (CMD_ENABLECMD, CMD_STOPCMD, ...).
func (hw *Channel) Command(cmd int) {
	hw.Registers.Write(CH_CMD, 1<<cmd)
}

// Enable starts the currently programmed command.
func (hw *Channel) Enable() {
	hw.Command(CMD_ENABLECMD)
}

// Stop stops the current command.
func (hw *Channel) Stop() {
	hw.Command(CMD_STOPCMD)
}

// Clear resets the channel registers to their default state.
func (hw *Channel) Clear() {
	hw.Command(CMD_CLEARCMD)
}

// Status returns the channel status.
func (hw *Channel) Status() Status {
	return Status(hw.Registers.Read(CH_STATUS))
}

// ClearStatus clears all status and interrupt flags.
func (hw *Channel) ClearStatus() {
	// write one to clear
	hw.Registers.Write(CH_STATUS, 0xffffffff)
}

// Wait blocks until the current command is no longer in progress and returns
// the channel status.
func (hw *Channel) Wait() Status {
	reg.Wait(hw.Registers, CH_CMD, CMD_ENABLECMD, 1, 0)
	return hw.Status()
}

// EnableInterrupt enables a channel interrupt source (INTREN_DONE, ...).
func (hw *Channel) EnableInterrupt(intr int) {
	reg.Set(hw.Registers, CH_INTREN, intr)
}

// DisableInterrupt disables a channel interrupt source.
func (hw *Channel) DisableInterrupt(intr int) {
	reg.Clear(hw.Registers, CH_INTREN, intr)
}

// SetDoneInterrupt enables or disables the command completion interrupt.
func (hw *Channel) SetDoneInterrupt(enable bool) {
	reg.SetTo(hw.Registers, CH_INTREN, INTREN_DONE, enable)
}
