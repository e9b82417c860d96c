// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/usbarmory/GoTEE-dma350/dma350"
	"github.com/usbarmory/GoTEE-dma350/mem"
)

func TestNewSystem(t *testing.T) {
	for _, secure := range []bool{false, true} {
		s, err := NewSystem(secure, false)
		require.NoError(t, err)

		assert.Equal(t, secure, s.Secure())
		assert.False(t, s.Async())
		assert.Len(t, s.Channels, mem.DMA350Channels)

		for _, c := range s.Channels {
			assert.NoError(t, c.Ready())
		}

		_, err = s.Channel(mem.DMA350Channels)
		assert.Error(t, err)

		c, err := s.Channel(0)
		require.NoError(t, err)

		require.NoError(t, s.Platform.Bus.Store(mem.SRAMStart, []byte{1, 2, 3, 4}))
		require.NoError(t, s.Lib.Copy(c, mem.SRAMStart, mem.SRAMStart+0x100, 4, dma350.ExecIRQ))

		buf := make([]byte, 4)
		require.NoError(t, s.Platform.Bus.Load(mem.SRAMStart+0x100, buf))
		assert.Equal(t, []byte{1, 2, 3, 4}, buf)
	}
}

func TestNewSystemAsync(t *testing.T) {
	s, err := NewSystem(false, true)
	require.NoError(t, err)

	assert.True(t, s.Async())

	for _, c := range s.Platform.Channels {
		assert.True(t, c.Async)
		assert.NotNil(t, c.Interrupt)
	}
}

func TestAcquire(t *testing.T) {
	s, err := NewSystem(false, false)
	require.NoError(t, err)

	_, err = s.Acquire(mem.DMA350Channels)
	assert.Error(t, err)

	hw, err := s.Acquire(1)
	require.NoError(t, err)
	assert.Same(t, s.Channels[1], hw)

	// other channels remain available
	_, err = s.Acquire(2)
	require.NoError(t, err)
	s.Release(2)

	acquired := make(chan struct{})

	go func() {
		_, _ = s.Acquire(1)
		close(acquired)
		s.Release(1)
	}()

	select {
	case <-acquired:
		t.Fatal("channel acquired by two owners")
	case <-time.After(50 * time.Millisecond):
	}

	s.Release(1)

	select {
	case <-acquired:
	case <-time.After(5 * time.Second):
		t.Fatal("channel not released")
	}
}
