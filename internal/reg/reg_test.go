// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reg

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldAccess(t *testing.T) {
	m := make(Mem, 4)

	SetN(m, 0x8, 4, 0xf, 0xa)
	require.Equal(t, uint32(0xa0), m.Read(0x8))
	assert.Equal(t, uint32(0xa), Get(m, 0x8, 4, 0xf))

	Set(m, 0x8, 31)
	assert.True(t, IsSet(m, 0x8, 31))
	assert.Equal(t, uint32(0x800000a0), m.Read(0x8))

	Clear(m, 0x8, 31)
	assert.False(t, IsSet(m, 0x8, 31))

	SetTo(m, 0x4, 0, true)
	assert.Equal(t, uint32(1), m.Read(0x4))
	SetTo(m, 0x4, 0, false)
	assert.Equal(t, uint32(0), m.Read(0x4))

	// neighbouring fields are preserved
	SetN(m, 0x8, 0, 0xf, 0x5)
	assert.Equal(t, uint32(0xa5), m.Read(0x8))
}

func TestWait(t *testing.T) {
	m := make(Mem, 1)
	Set(m, 0, 0)

	go func() {
		time.Sleep(10 * time.Millisecond)
		Clear(m, 0, 0)
	}()

	Wait(m, 0, 0, 1, 0)
	assert.False(t, IsSet(m, 0, 0))
}

func TestIsSet(t *testing.T) {
	m := Mem{0x80000001, 0xfffffffe}

	assert.True(t, IsSet(m, 0, 0))
	assert.True(t, IsSet(m, 0, 31))
	assert.False(t, IsSet(m, 0, 1))
	assert.False(t, IsSet(m, 0, 30))

	// a clear bit surrounded by set ones
	assert.False(t, IsSet(m, 4, 0))
	assert.True(t, IsSet(m, 4, 1))
}
