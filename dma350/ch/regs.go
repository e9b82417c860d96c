// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package ch

// DMA-350 channel registers
const (
	CH_CMD             = 0x000
	CMD_ENABLECMD      = 0
	CMD_CLEARCMD       = 1
	CMD_DISABLECMD     = 2
	CMD_STOPCMD        = 3
	CMD_PAUSECMD       = 4
	CMD_RESUMECMD      = 5
	CMD_SRCSWTRIGINREQ = 16
	CMD_DESSWTRIGINREQ = 20
	CMD_SWTRIGOUTACK   = 24

	CH_STATUS              = 0x004
	STATUS_INTR_DONE       = 0
	STATUS_INTR_ERR        = 1
	STATUS_INTR_DISABLED   = 2
	STATUS_INTR_STOPPED    = 3
	STATUS_STAT_DONE       = 16
	STATUS_STAT_ERR        = 17
	STATUS_STAT_DISABLED   = 18
	STATUS_STAT_STOPPED    = 19
	STATUS_STAT_PAUSED     = 20
	STATUS_STAT_RESUMEWAIT = 21

	CH_INTREN       = 0x008
	INTREN_DONE     = 0
	INTREN_ERR      = 1
	INTREN_DISABLED = 2
	INTREN_STOPPED  = 3

	CH_CTRL            = 0x00c
	CTRL_TRANSIZE      = 0
	CTRL_CHPRIO        = 4
	CTRL_XTYPE         = 9
	CTRL_YTYPE         = 12
	CTRL_REGRELOADTYPE = 18
	CTRL_DONETYPE      = 21
	CTRL_DONEPAUSEEN   = 24

	CH_SRCADDR   = 0x010
	CH_SRCADDRHI = 0x014
	CH_DESADDR   = 0x018
	CH_DESADDRHI = 0x01c

	CH_XSIZE        = 0x020
	CH_XSIZEHI      = 0x024
	XSIZE_SRC       = 0
	XSIZE_DES       = 16
	XSIZE_HALF_MASK = 0xffff

	CH_SRCTRANSCFG       = 0x028
	CH_DESTRANSCFG       = 0x02c
	TRANSCFG_MEMATTRLO   = 0
	TRANSCFG_MEMATTRHI   = 4
	TRANSCFG_SHAREATTR   = 8
	TRANSCFG_NONSECATTR  = 16
	TRANSCFG_PRIVATTR    = 17
	TRANSCFG_MAXBURSTLEN = 20

	CH_XADDRINC    = 0x030
	CH_YADDRSTRIDE = 0x034
	CH_FILLVAL     = 0x038
	CH_YSIZE       = 0x03c

	CH_TMPLTCFG     = 0x040
	CH_SRCTMPLT     = 0x044
	CH_DESTMPLT     = 0x048
	CH_SRCTRIGINCFG = 0x04c
	CH_DESTRIGINCFG = 0x050
	CH_TRIGOUTCFG   = 0x054
	CH_GPOEN0       = 0x058
	CH_GPOVAL0      = 0x060
	CH_STREAMINTCFG = 0x068
	CH_LINKATTR     = 0x070
	CH_AUTOCFG      = 0x074
	CH_LINKADDR     = 0x078
	CH_LINKADDRHI   = 0x07c
	CH_GPOREAD0     = 0x080
	CH_WRKREGPTR    = 0x088
	CH_WRKREGVAL    = 0x08c
	CH_ERRINFO      = 0x090
	CH_IIDR         = 0x0c8
	CH_AIDR         = 0x0cc
	CH_ISSUECAP     = 0x0e8
	CH_BUILDCFG0    = 0x0f8
	CH_BUILDCFG1    = 0x0fc

	// RegistersSize is the size of a channel register block.
	RegistersSize = 0x100
)

// TranSize represents the size of each transfer unit.
type TranSize uint32

const (
	TRANSIZE_8BITS TranSize = iota
	TRANSIZE_16BITS
	TRANSIZE_32BITS
	TRANSIZE_64BITS
	TRANSIZE_128BITS
	TRANSIZE_256BITS
	TRANSIZE_512BITS
	TRANSIZE_1024BITS
)

// Bytes returns the transfer unit size in bytes.
func (t TranSize) Bytes() int {
	return 1 << t
}

// XType represents the operation type of the primary (X) axis.
type XType uint32

const (
	XTYPE_DISABLE XType = iota
	XTYPE_CONTINUE
	XTYPE_WRAP
	XTYPE_FILL
)

// YType represents the operation type of the secondary (Y) axis.
type YType uint32

const (
	YTYPE_DISABLE YType = iota
	YTYPE_CONTINUE
	YTYPE_WRAP
	YTYPE_FILL
)

// DoneType represents the event which asserts STAT_DONE.
type DoneType uint32

const (
	DONETYPE_NONE               DoneType = 0
	DONETYPE_END_OF_CMD         DoneType = 1
	DONETYPE_END_OF_AUTORESTART DoneType = 3
)

// Status represents the channel status register.
type Status uint32

func (s Status) isSet(pos int) bool {
	return s&(1<<pos) != 0
}

// Done returns whether the last command completed.
func (s Status) Done() bool {
	return s.isSet(STATUS_STAT_DONE)
}

// Err returns whether the last command reported an error.
func (s Status) Err() bool {
	return s.isSet(STATUS_STAT_ERR)
}

// Disabled returns whether the channel was disabled.
func (s Status) Disabled() bool {
	return s.isSet(STATUS_STAT_DISABLED)
}

// Stopped returns whether the channel was stopped.
func (s Status) Stopped() bool {
	return s.isSet(STATUS_STAT_STOPPED)
}

// Paused returns whether the channel is paused.
func (s Status) Paused() bool {
	return s.isSet(STATUS_STAT_PAUSED)
}
