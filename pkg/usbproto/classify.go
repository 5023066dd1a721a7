// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbproto

// Classify interprets an assembled byte sequence as a USB packet.
//
// raw[0] is the SYNC byte and raw[1] the PID; all field offsets are relative
// to the PID at position 1. Sequences with an unknown PID, or too short to
// carry the fields their PID requires, come back as KindRaw rather than an
// error: classification never fails, it only degrades to a hex dump.
func Classify(timestamp float64, raw []byte) *Packet {
	p := &Packet{
		timestamp: timestamp,
		raw:       raw,
	}
	if len(raw) < 2 {
		return p
	}
	p.pid = raw[1]

	switch p.pid {
	case PIDSOF:
		if len(raw) < 4 {
			return p
		}
		p.kind = KindSOF
		p.frameNumber = uint16(raw[3]&0x7)<<8 | uint16(raw[2])
		p.crc = uint16(raw[3]>>3) & 0x1f
		p.crcCalc = uint16(CalculateCRC5(p.frameNumber))
		p.crcOK = p.crc == p.crcCalc
		p.hasCRC = true

	case PIDSetup, PIDIn, PIDOut:
		if len(raw) < 4 {
			return p
		}
		p.kind = KindToken
		p.address = raw[2] & 0x7f
		p.endpoint = (raw[3]&0x7)<<1 | (raw[2]&0x80)>>7
		// CRC5 covers address and endpoint as one 11-bit field
		addrEndp := uint16(raw[3]&0x7)<<8 | uint16(raw[2])
		p.crc = uint16(raw[3]>>3) & 0x1f
		p.crcCalc = uint16(CalculateCRC5(addrEndp))
		p.crcOK = p.crc == p.crcCalc
		p.hasCRC = true

	case PIDData0, PIDData1:
		if len(raw) < 4 {
			return p
		}
		p.kind = KindData
		p.payload = raw[2 : len(raw)-2]
		p.crc = uint16(raw[len(raw)-1])<<8 | uint16(raw[len(raw)-2])
		p.crcCalc = CalculateCRC16(p.payload)
		p.crcOK = p.crc == p.crcCalc
		p.hasCRC = true

	case PIDAck, PIDNak, PIDStall:
		p.kind = KindHandshake

	case PIDPre:
		p.kind = KindPre
	}

	return p
}
