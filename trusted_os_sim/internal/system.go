// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package internal

import (
	"fmt"
	"log"
	"sync"

	"github.com/usbarmory/GoTEE-dma350/dma350"
	"github.com/usbarmory/GoTEE-dma350/dma350/ch"
	"github.com/usbarmory/GoTEE-dma350/mem"
	"github.com/usbarmory/GoTEE-dma350/sim"
)

// System represents the simulated firmware environment: the platform, the
// DMA library configured for the firmware security state and the channel
// drivers.
type System struct {
	Platform *sim.Platform
	Lib      *dma350.Lib
	Channels []*ch.Channel

	owners []sync.Mutex
}

// Secure reports whether the firmware runs in Secure state.
func (s *System) Secure() bool {
	return s.Lib.Secure
}

// Async reports whether channels complete commands asynchronously.
func (s *System) Async() bool {
	if len(s.Platform.Channels) == 0 {
		return false
	}

	return s.Platform.Channels[0].Async
}

// Acquire takes exclusive ownership of a channel, any command left in flight
// by the previous owner is completed first. The channel must be released
// with Release.
func (s *System) Acquire(n int) (hw *ch.Channel, err error) {
	if hw, err = s.Channel(n); err != nil {
		return
	}

	s.owners[n].Lock()
	hw.Wait()

	return
}

// Release ends the ownership of a channel taken with Acquire.
func (s *System) Release(n int) {
	s.owners[n].Unlock()
}

// NewSystem configures the platform isolation and initializes all DMA
// channels.
func NewSystem(secure bool, async bool) (s *System, err error) {
	p := sim.NewPlatform()

	if err = p.Configure(); err != nil {
		return nil, fmt.Errorf("platform configuration error, %v", err)
	}

	if err = mem.Remap.Validate(); err != nil {
		return nil, fmt.Errorf("invalid remap table, %v", err)
	}

	s = &System{
		Platform: p,
		Lib: &dma350.Lib{
			Security: p.Model(secure),
			Remap:    mem.Remap,
			Secure:   secure,
		},
	}

	if secure {
		s.Lib.MPU = p.MPU
		s.Lib.MPUNonSecure = p.MPUNonSecure
	} else {
		s.Lib.MPU = p.MPUNonSecure
	}

	s.owners = make([]sync.Mutex, len(p.Channels))

	for i, c := range p.Channels {
		n := i

		c.Async = async
		c.Interrupt = func(status ch.Status) {
			log.Printf("DMA ch%d interrupt, status %#.8x", n, uint32(status))
		}

		hw := ch.New(i, c)

		if err = hw.Init(); err != nil {
			return nil, fmt.Errorf("channel %d initialization error, %v", i, err)
		}

		s.Channels = append(s.Channels, hw)
	}

	state := "Non-secure"

	if secure {
		state = "Secure"
	}

	log.Printf("DMA %d channels ready (%s state, async:%v)", len(s.Channels), state, async)

	return
}

// Channel returns the driver of a channel.
func (s *System) Channel(n int) (*ch.Channel, error) {
	if n < 0 || n >= len(s.Channels) {
		return nil, fmt.Errorf("invalid channel %d", n)
	}

	return s.Channels[n], nil
}
