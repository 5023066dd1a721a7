// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

// Package usbproto classifies assembled USB 1.x link-layer byte sequences
// into protocol packets and validates their CRC5/CRC16 checksums.
//
// The byte sequences come from the signal front end (pkg/usbsig): raw[0] is
// the SYNC byte, raw[1] the PID, and all protocol fields are indexed relative
// to the PID. Bit destuffing is not performed anywhere in the pipeline; this
// is a known limitation inherited from the capture workflow, so payloads that
// contain six or more consecutive 1 bits decode with the stuffed bits left in.
package usbproto

// SYNC patterns as assembled LSB-first from raw line levels
const (
	SyncFullSpeed = 0x2a
	SyncLowSpeed  = 0xd5
)

// Packet identifiers (full 8-bit PID byte, check nibble included)
const (
	PIDOut   = 0xe1
	PIDIn    = 0x69
	PIDSOF   = 0xa5
	PIDSetup = 0x2d
	PIDData0 = 0xc3
	PIDData1 = 0x4b
	PIDAck   = 0xd2
	PIDNak   = 0x5a
	PIDStall = 0x1e
	PIDPre   = 0x3c
)

// Payload size limits per USB 2.0 table 5-3 (full-speed) and 5-1 (low-speed)
const (
	MaxPayloadFullSpeed = 1023
	MaxPayloadLowSpeed  = 8
)

// Kind classifies a decoded packet by its PID group
type Kind int

const (
	// KindRaw is an unclassified byte sequence: unknown PID or a packet too
	// short to carry the fields its PID requires
	KindRaw Kind = iota
	// KindSOF is a start-of-frame token with an 11-bit frame number
	KindSOF
	// KindToken is a SETUP, IN or OUT token with address and endpoint
	KindToken
	// KindData is a DATA0 or DATA1 packet with payload and CRC16
	KindData
	// KindHandshake is an ACK, NAK or STALL packet with no further fields
	KindHandshake
	// KindPre is a preamble marker preceding low-speed traffic
	KindPre
)
