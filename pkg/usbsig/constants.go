// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

// Package usbsig reconstructs USB 1.x link-layer byte sequences from a raw,
// non-uniformly-sampled two-channel voltage trace of the D+/D- lines.
//
// The pipeline is: logical-level classification, bus-speed inference,
// oversampled bit-clock integration, line-state tracking (SYNC/EOP/SE1),
// NRZI decoding and LSB-first byte assembly. Completed byte sequences are
// handed to pkg/usbproto for PID classification and CRC validation.
package usbsig

// LogicThreshold is the voltage above which a line reads as logical high.
// A fixed approximation of the USB single-ended receiver threshold; it is
// not derived from the data.
const LogicThreshold = 1.2

// Nominal bit rates in bits per second
const (
	FullSpeedBitRate = 12e6
	LowSpeedBitRate  = 1.5e6
)

// Decoder states (internal)
const (
	stateUnknown = iota
	stateIdle
	stateDetectSync
	stateReceive
	stateGotSE1
	stateGotEOP
)
