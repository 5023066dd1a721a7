// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbproto

// Packet represents one decoded USB link-layer packet.
//
// Every packet retains the full assembled byte sequence (SYNC byte included)
// for diagnostic display; the classified fields are populated according to
// the packet's Kind.
type Packet struct {
	timestamp float64 // capture time of the EOP, seconds
	raw       []byte  // raw[0] is SYNC, raw[1] the PID
	kind      Kind
	pid       uint8

	// Token fields (KindToken)
	address  uint8
	endpoint uint8

	// SOF fields (KindSOF)
	frameNumber uint16

	// Data fields (KindData)
	payload []byte

	// Checksum fields (KindSOF, KindToken, KindData)
	crc     uint16 // received CRC5 or CRC16
	crcCalc uint16 // computed over the classified fields
	crcOK   bool
	hasCRC  bool
}

// Timestamp returns the capture timestamp of the packet's EOP in seconds
func (p *Packet) Timestamp() float64 {
	return p.timestamp
}

// Raw returns the full assembled byte sequence, SYNC byte at index 0
func (p *Packet) Raw() []byte {
	return p.raw
}

// Kind returns the packet's classification
func (p *Packet) Kind() Kind {
	return p.kind
}

// PID returns the packet identifier byte (0 for KindRaw packets shorter
// than two bytes)
func (p *Packet) PID() uint8 {
	return p.pid
}

// Address returns the 7-bit device address of a token packet
func (p *Packet) Address() uint8 {
	return p.address
}

// Endpoint returns the 4-bit endpoint number of a token packet
func (p *Packet) Endpoint() uint8 {
	return p.endpoint
}

// FrameNumber returns the 11-bit frame number of a SOF packet
func (p *Packet) FrameNumber() uint16 {
	return p.frameNumber
}

// Payload returns the data payload of a DATA0/DATA1 packet
func (p *Packet) Payload() []byte {
	return p.payload
}

// CRC returns the checksum received on the wire (CRC5 for tokens and SOF,
// CRC16 for data packets); HasCRC reports whether the field is meaningful
func (p *Packet) CRC() uint16 {
	return p.crc
}

// CRCCalc returns the checksum computed over the classified fields
func (p *Packet) CRCCalc() uint16 {
	return p.crcCalc
}

// CRCOK reports whether the received checksum matches the computed one.
// A mismatch is not an error: the packet is still emitted, flagged invalid.
func (p *Packet) CRCOK() bool {
	return p.crcOK
}

// HasCRC reports whether the packet's kind carries a checksum at all
func (p *Packet) HasCRC() bool {
	return p.hasCRC
}
