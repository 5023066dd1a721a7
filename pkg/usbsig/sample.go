// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbsig

import "fmt"

// Sample is one oscilloscope measurement of the differential pair.
// Timestamps must be fed in non-decreasing order.
type Sample struct {
	Time float64 // seconds
	DP   float64 // D+ voltage
	DM   float64 // D- voltage
}

// Level is a two-level logical line state. The numeric values double as
// oversampling accumulator weights for the majority vote.
type Level int8

const (
	LevelLow  Level = -1
	LevelHigh Level = 1
)

// ClassifyLevel maps a raw voltage to a logical level
func ClassifyLevel(voltage float64) Level {
	if voltage < LogicThreshold {
		return LevelLow
	}
	return LevelHigh
}

// Speed is the signaling speed of the captured bus
type Speed int

const (
	SpeedUnknown Speed = iota
	SpeedLow
	SpeedFull
)

// String returns the human-readable speed name
func (s Speed) String() string {
	switch s {
	case SpeedLow:
		return "low"
	case SpeedFull:
		return "full"
	default:
		return "unknown"
	}
}

// BitPeriod returns the nominal bit period in seconds for a speed
func BitPeriod(speed Speed) float64 {
	if speed == SpeedFull {
		return 1 / FullSpeedBitRate
	}
	return 1 / LowSpeedBitRate
}

// SyncPattern returns the SYNC byte expected for a speed, as assembled
// LSB-first from raw line levels
func SyncPattern(speed Speed) uint8 {
	if speed == SpeedFull {
		return 0x2a
	}
	return 0xd5
}

// SpeedHint tells the decoder how to determine the bus speed
type SpeedHint int

const (
	// HintAuto infers the speed from the first differential sample
	HintAuto SpeedHint = iota
	HintLowSpeed
	HintFullSpeed
)

// ParseSpeedHint parses the "auto", "low" or "full" flag values
func ParseSpeedHint(s string) (SpeedHint, error) {
	switch s {
	case "auto":
		return HintAuto, nil
	case "low":
		return HintLowSpeed, nil
	case "full":
		return HintFullSpeed, nil
	default:
		return HintAuto, fmt.Errorf("invalid speed %q (accepts \"low\", \"full\" or \"auto\")", s)
	}
}
