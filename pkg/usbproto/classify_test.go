// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbproto

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// ============================================================
// Packet Construction Helpers
// ============================================================

// buildSOF builds an assembled SOF byte sequence with a correct CRC5
func buildSOF(frame uint16) []byte {
	crc := CalculateCRC5(frame & 0x7ff)
	return []byte{
		SyncFullSpeed,
		PIDSOF,
		byte(frame),
		byte(frame>>8)&0x7 | crc<<3,
	}
}

// buildToken builds an assembled token byte sequence with a correct CRC5
func buildToken(pid uint8, address, endpoint uint8) []byte {
	b2 := address&0x7f | (endpoint&0x1)<<7
	b3low := (endpoint >> 1) & 0x7
	addrEndp := uint16(b3low)<<8 | uint16(b2)
	crc := CalculateCRC5(addrEndp)
	return []byte{SyncFullSpeed, pid, b2, b3low | crc<<3}
}

// buildData builds an assembled DATA0/DATA1 byte sequence with a correct CRC16
func buildData(pid uint8, payload []byte) []byte {
	crc := CalculateCRC16(payload)
	raw := []byte{SyncFullSpeed, pid}
	raw = append(raw, payload...)
	return append(raw, byte(crc), byte(crc>>8))
}

// ============================================================
// Classification Tests
// ============================================================

func TestClassify_SOF(t *testing.T) {
	raw := buildSOF(0x123)
	p := Classify(0.5, raw)

	if p.Kind() != KindSOF {
		t.Fatalf("expected KindSOF, got %s", FormatKind(p.Kind()))
	}
	if p.FrameNumber() != 0x123 {
		t.Errorf("expected frame 0x123, got 0x%03x", p.FrameNumber())
	}
	if !p.CRCOK() {
		t.Errorf("expected CRC5 OK, received 0x%02x computed 0x%02x", p.CRC(), p.CRCCalc())
	}
	if p.Timestamp() != 0.5 {
		t.Errorf("expected timestamp 0.5, got %f", p.Timestamp())
	}
	if diff := cmp.Diff(raw, p.Raw()); diff != "" {
		t.Errorf("raw bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_Tokens(t *testing.T) {
	tests := []struct {
		name     string
		pid      uint8
		address  uint8
		endpoint uint8
	}{
		{name: "SETUP", pid: PIDSetup, address: 0x15, endpoint: 0xe},
		{name: "IN", pid: PIDIn, address: 0x01, endpoint: 0x0},
		{name: "OUT", pid: PIDOut, address: 0x7f, endpoint: 0xf},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Classify(0, buildToken(tt.pid, tt.address, tt.endpoint))

			if p.Kind() != KindToken {
				t.Fatalf("expected KindToken, got %s", FormatKind(p.Kind()))
			}
			if p.PID() != tt.pid {
				t.Errorf("expected PID 0x%02x, got 0x%02x", tt.pid, p.PID())
			}
			if p.Address() != tt.address {
				t.Errorf("expected address %d, got %d", tt.address, p.Address())
			}
			if p.Endpoint() != tt.endpoint {
				t.Errorf("expected endpoint %d, got %d", tt.endpoint, p.Endpoint())
			}
			if !p.CRCOK() {
				t.Errorf("expected CRC5 OK, received 0x%02x computed 0x%02x", p.CRC(), p.CRCCalc())
			}
		})
	}
}

func TestClassify_TokenBadCRC(t *testing.T) {
	raw := buildToken(PIDIn, 0x15, 0xe)
	raw[3] ^= 0x1 << 3 // flip one received CRC5 bit

	p := Classify(0, raw)
	if p.Kind() != KindToken {
		t.Fatalf("expected KindToken, got %s", FormatKind(p.Kind()))
	}
	if p.CRCOK() {
		t.Error("expected CRC5 mismatch after corrupting the received checksum")
	}
}

func TestClassify_Data(t *testing.T) {
	payload := []byte{0x80, 0x06, 0x00, 0x01, 0x00, 0x00, 0x40, 0x00}

	for _, pid := range []uint8{PIDData0, PIDData1} {
		p := Classify(0, buildData(pid, payload))

		if p.Kind() != KindData {
			t.Fatalf("expected KindData, got %s", FormatKind(p.Kind()))
		}
		if diff := cmp.Diff(payload, p.Payload()); diff != "" {
			t.Errorf("payload mismatch (-want +got):\n%s", diff)
		}
		if !p.CRCOK() {
			t.Errorf("expected CRC16 OK, received 0x%04x computed 0x%04x", p.CRC(), p.CRCCalc())
		}
	}
}

func TestClassify_DataEmptyPayload(t *testing.T) {
	p := Classify(0, buildData(PIDData1, nil))

	if p.Kind() != KindData {
		t.Fatalf("expected KindData, got %s", FormatKind(p.Kind()))
	}
	if len(p.Payload()) != 0 {
		t.Errorf("expected empty payload, got %d bytes", len(p.Payload()))
	}
	if !p.CRCOK() {
		// Empty payload carries CRC16 0x0000
		t.Errorf("expected CRC16 OK, received 0x%04x computed 0x%04x", p.CRC(), p.CRCCalc())
	}
}

func TestClassify_DataCRCBitFlips(t *testing.T) {
	payload := []byte{0xde, 0xad, 0xbe, 0xef}
	reference := buildData(PIDData0, payload)

	// Any single bit flip in the trailing CRC16 bytes must invalidate
	for _, i := range []int{len(reference) - 2, len(reference) - 1} {
		for bit := 0; bit < 8; bit++ {
			raw := make([]byte, len(reference))
			copy(raw, reference)
			raw[i] ^= 1 << bit

			if Classify(0, raw).CRCOK() {
				t.Errorf("expected CRC16 mismatch after flipping byte %d bit %d", i, bit)
			}
		}
	}
}

func TestClassify_Handshakes(t *testing.T) {
	tests := []struct {
		name string
		pid  uint8
	}{
		{name: "ACK", pid: PIDAck},
		{name: "NAK", pid: PIDNak},
		{name: "STALL", pid: PIDStall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Classify(0, []byte{SyncFullSpeed, tt.pid})

			if p.Kind() != KindHandshake {
				t.Fatalf("expected KindHandshake, got %s", FormatKind(p.Kind()))
			}
			if p.HasCRC() {
				t.Error("handshake packets carry no checksum")
			}
		})
	}
}

func TestClassify_Pre(t *testing.T) {
	p := Classify(0, []byte{SyncFullSpeed, PIDPre})
	if p.Kind() != KindPre {
		t.Fatalf("expected KindPre, got %s", FormatKind(p.Kind()))
	}
}

func TestClassify_UnknownPID(t *testing.T) {
	raw := []byte{SyncFullSpeed, 0x42, 0x01, 0x02}
	p := Classify(0, raw)

	if p.Kind() != KindRaw {
		t.Fatalf("expected KindRaw, got %s", FormatKind(p.Kind()))
	}
	if diff := cmp.Diff(raw, p.Raw()); diff != "" {
		t.Errorf("raw bytes mismatch (-want +got):\n%s", diff)
	}
}

func TestClassify_TooShort(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{name: "sync only", raw: []byte{SyncFullSpeed}},
		{name: "truncated SOF", raw: []byte{SyncFullSpeed, PIDSOF, 0x23}},
		{name: "truncated token", raw: []byte{SyncFullSpeed, PIDIn, 0x15}},
		{name: "truncated data", raw: []byte{SyncFullSpeed, PIDData0, 0x01}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Classify(0, tt.raw)
			if p.Kind() != KindRaw {
				t.Fatalf("expected KindRaw, got %s", FormatKind(p.Kind()))
			}
			if p.HasCRC() {
				t.Error("unclassified packets carry no checksum")
			}
		})
	}
}
