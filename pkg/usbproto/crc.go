// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbproto

import "github.com/sigurn/crc16"

// crc5Table is the 32-entry lookup table for the reflected USB CRC5
// polynomial x^5+x^2+1 (0x14 in reversed form), five input bits per step.
var crc5Table = [32]uint8{
	0x00, 0x0b, 0x16, 0x1d, 0x05, 0x0e, 0x13, 0x18,
	0x0a, 0x01, 0x1c, 0x17, 0x0f, 0x04, 0x19, 0x12,
	0x14, 0x1f, 0x02, 0x09, 0x11, 0x1a, 0x07, 0x0c,
	0x1e, 0x15, 0x08, 0x03, 0x1b, 0x10, 0x0d, 0x06,
}

// CalculateCRC5 computes the USB CRC5 of an 11-bit value (a token's combined
// address+endpoint field, or a SOF frame number). The register is initialized
// to all-ones, the input is consumed LSB-first in transmission order, and the
// final register is complemented, so the result compares directly against the
// 5-bit field extracted from the assembled packet bytes.
func CalculateCRC5(v uint16) uint8 {
	// Fold the all-ones init into the first five input bits, then run the
	// remaining 1+5+5 bits through the reflected table.
	v ^= 0x1f

	var crc uint8
	if v&1 != 0 {
		crc = 0x14
	}
	crc = crc5Table[(uint8(v>>1)&0x1f)^crc]
	crc = crc5Table[(uint8(v>>6)&0x1f)^crc]

	return crc ^ 0x1f
}

// calculateCRC5Bitwise is the bit-serial reference form of CalculateCRC5.
// Kept alongside the table form so the two can be checked against each other
// over the whole 11-bit input space.
func calculateCRC5Bitwise(v uint16) uint8 {
	crc := uint8(0x1f)
	for i := 0; i < 11; i++ {
		if (uint8(v>>i)^crc)&1 != 0 {
			crc = (crc >> 1) ^ 0x14
		} else {
			crc >>= 1
		}
	}
	return crc ^ 0x1f
}

// crc16Table carries the CRC-16/USB parameter set: polynomial 0x8005
// reflected, register initialized to 0xFFFF, output XORed with 0xFFFF.
var crc16Table = crc16.MakeTable(crc16.CRC16_USB)

// CalculateCRC16 computes the USB data CRC16 over a packet payload (PID and
// trailing CRC bytes excluded). The complement is already applied, so the
// result compares directly against the little-endian trailing field.
func CalculateCRC16(payload []byte) uint16 {
	return crc16.Checksum(payload, crc16Table)
}
