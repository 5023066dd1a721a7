// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbsig

import (
	"fmt"

	"github.com/rouming/usb-parser/pkg/usbproto"
)

// SE1Error reports an SE1 line state (both lines high), a USB protocol
// violation. The in-progress packet is discarded and the decoder resumes at
// idle, so the fault is a per-packet warning, never fatal to the run.
type SE1Error struct {
	Timestamp float64
}

// Error implements the error interface
func (e *SE1Error) Error() string {
	return fmt.Sprintf("[%f] SE1 state detected", e.Timestamp)
}

// bitWindow accumulates oversampled logical levels for one bit period.
// Window boundaries run off the schedule seeded by the SYNC edge: each new
// window ends one nominal bit period after the previous one, regardless of
// how late the boundary-crossing sample arrives.
type bitWindow struct {
	sumDP int
	sumDM int
	end   float64
}

// byteAccumulator packs decoded bits LSB-first into one byte
type byteAccumulator struct {
	bits  int
	value uint8
}

// packetBuffer holds the assembly state of one packet attempt, from SYNC
// edge to EOP or fault
type packetBuffer struct {
	prevBit    uint8 // previous raw (pre-NRZI) bit
	hasPrevBit bool  // false until seeded at the SYNC/PID boundary
	bytes      []byte
	current    byteAccumulator
}

// Decoder turns a stream of voltage samples into decoded USB packets.
//
// Feed samples one at a time in timestamp order; the zero to one packets
// completed by each sample are returned from Feed. The decoder is strictly
// sequential and not safe for concurrent use.
type Decoder struct {
	state  int
	speed  Speed
	period float64 // 0 until the bit period is known

	window   *bitWindow
	buf      *packetBuffer
	se0Count int

	havePrev bool
	prevDP   Level
	prevDM   Level
}

// NewDecoder creates a decoder. With HintAuto the bus speed is inferred from
// the first sample where the lines differ; an explicit hint skips inference.
func NewDecoder(hint SpeedHint) *Decoder {
	d := &Decoder{state: stateUnknown}
	switch hint {
	case HintLowSpeed:
		d.speed = SpeedLow
	case HintFullSpeed:
		d.speed = SpeedFull
	}
	return d
}

// Speed returns the bus speed, SpeedUnknown until inferred or hinted.
// Once known the speed never changes for the rest of the run.
func (d *Decoder) Speed() Speed {
	return d.speed
}

// Feed processes one sample. It returns a packet when the sample completes
// one, and an *SE1Error when the sample resolves a bit window to the invalid
// SE1 state. Both are usually nil. After an SE1 fault the decoder has already
// recovered; the caller only needs to report the warning.
func (d *Decoder) Feed(s Sample) (*usbproto.Packet, error) {
	dp := ClassifyLevel(s.DP)
	dm := ClassifyLevel(s.DM)

	// Infer the bus speed from the first true differential state: full-speed
	// idles with D+ high
	if d.speed == SpeedUnknown && dp != dm {
		if dp == LevelHigh {
			d.speed = SpeedFull
		} else {
			d.speed = SpeedLow
		}
	}

	// The bit period needs a known speed and at least one prior sample, so
	// that idle edge detection always has a baseline
	if d.speed != SpeedUnknown && d.period == 0 && d.havePrev {
		d.period = BitPeriod(d.speed)
		d.state = stateIdle
	}

	// An edge out of idle starts SYNC acquisition: open the first bit window
	// one period after the edge and a fresh packet buffer
	if d.state == stateIdle && (d.prevDP != dp || d.prevDM != dm) {
		d.state = stateDetectSync
		d.window = &bitWindow{end: s.Time + d.period}
		d.buf = &packetBuffer{}
	}

	var se1 *SE1Error

	// Oversample into the active window; when the timestamp reaches the
	// boundary, resolve the window and run the line-state machine
	if d.window != nil {
		d.window.sumDP += int(dp)
		d.window.sumDM += int(dm)

		if s.Time >= d.window.end {
			se1 = d.resolveWindow(s.Time)
		}
	}

	// Check the SYNC pattern once exactly one byte has been assembled
	if d.state == stateDetectSync && len(d.buf.bytes) == 1 {
		if d.buf.bytes[0] == SyncPattern(d.speed) {
			d.buf.current = byteAccumulator{}
			d.state = stateReceive
		} else {
			// Spurious acquisition, expected on ordinary idle-line noise
			d.state = stateIdle
			d.window = nil
			d.buf = nil
		}
	}

	// A full packet: classify and emit, unless the EOP arrived right after
	// SYNC with nothing following it
	var pkt *usbproto.Packet
	if d.state == stateGotEOP {
		if len(d.buf.bytes) > 1 {
			pkt = usbproto.Classify(s.Time, d.buf.bytes)
		}
		d.state = stateIdle
		d.buf = nil
	}

	d.havePrev = true
	d.prevDP, d.prevDM = dp, dm

	if se1 != nil {
		return pkt, se1
	}
	return pkt, nil
}

// resolveWindow closes the active bit window by majority vote and advances
// the line-state machine. A zero accumulator resolves toward low.
func (d *Decoder) resolveWindow(tm float64) *SE1Error {
	var dp, dm int
	if d.window.sumDP > 0 {
		dp = 1
	}
	if d.window.sumDM > 0 {
		dm = 1
	}

	if dp != dm {
		if d.se0Count >= 2 {
			// EOP: a J of the speed's polarity following two SE0 windows.
			// The opposite polarity is not an EOP and falls through to
			// ordinary bit decoding.
			if d.speed == SpeedFull && dp > dm {
				d.state = stateGotEOP
			} else if d.speed == SpeedLow && dp < dm {
				d.state = stateGotEOP
			}
		}
		d.se0Count = 0
	} else if dp == 0 {
		d.se0Count++
	} else {
		d.state = stateGotSE1
	}

	if d.state == stateGotSE1 || d.state == stateGotEOP {
		// No further windows for this packet attempt
		d.window = nil
		if d.state == stateGotSE1 {
			// Discard everything and start over
			d.buf = nil
			d.state = stateIdle
			return &SE1Error{Timestamp: tm}
		}
		return nil
	}

	d.decodeBit(dp, dm)

	// Re-trigger off the running schedule, not the sample that crossed it
	d.window = &bitWindow{end: d.window.end + d.period}
	return nil
}

// decodeBit NRZI-decodes one resolved bit pair and packs it into the
// current byte
func (d *Decoder) decodeBit(dp, dm int) {
	var rawBit uint8
	if dp > dm {
		rawBit = 1
	}

	bit := rawBit
	if d.buf.hasPrevBit {
		// NRZI: a repeated level decodes as 1, a transition as 0
		if d.buf.prevBit == rawBit {
			bit = 1
		} else {
			bit = 0
		}
		d.buf.prevBit = rawBit
	}

	d.buf.current.value |= bit << d.buf.current.bits
	d.buf.current.bits++
	if d.buf.current.bits == 8 {
		if d.state == stateDetectSync {
			// The last raw bit of SYNC seeds NRZI decoding of the data
			// bytes that follow
			d.buf.prevBit = rawBit
			d.buf.hasPrevBit = true
		}
		d.buf.bytes = append(d.buf.bytes, d.buf.current.value)
		d.buf.current = byteAccumulator{}
	}
}
