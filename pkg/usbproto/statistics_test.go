// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbproto

import (
	"strings"
	"testing"
)

// ============================================================
// Statistics Tests
// ============================================================

func TestStatistics_Counters(t *testing.T) {
	stats := NewStatistics()

	feed := func(raw []byte) {
		p := Classify(0, raw)
		stats.Update(p, ValidatePacket(p, false))
	}

	feed(buildSOF(0x001))
	feed(buildSOF(0x002))
	feed(buildToken(PIDIn, 0x05, 0x1))
	feed(buildData(PIDData0, []byte{0x01}))
	feed([]byte{SyncFullSpeed, PIDAck})
	feed([]byte{SyncFullSpeed, PIDPre})
	feed([]byte{SyncFullSpeed, 0x42}) // unknown PID

	if stats.TotalPackets != 7 {
		t.Errorf("expected 7 total packets, got %d", stats.TotalPackets)
	}
	if stats.SOFPackets != 2 {
		t.Errorf("expected 2 SOF packets, got %d", stats.SOFPackets)
	}
	if stats.TokenPackets != 1 {
		t.Errorf("expected 1 token packet, got %d", stats.TokenPackets)
	}
	if stats.DataPackets != 1 {
		t.Errorf("expected 1 data packet, got %d", stats.DataPackets)
	}
	if stats.HandshakePackets != 2 {
		t.Errorf("expected 2 handshake packets (ACK and PRE), got %d", stats.HandshakePackets)
	}
	if stats.RawPackets != 1 {
		t.Errorf("expected 1 unclassified packet, got %d", stats.RawPackets)
	}
	if stats.ValidPackets != 6 {
		t.Errorf("expected 6 valid packets, got %d", stats.ValidPackets)
	}
	if stats.AnomalousPackets != 1 {
		t.Errorf("expected 1 anomalous packet, got %d", stats.AnomalousPackets)
	}
}

func TestStatistics_CRCErrors(t *testing.T) {
	stats := NewStatistics()

	raw := buildSOF(0x123)
	raw[3] ^= 0x1 << 3
	p := Classify(0, raw)
	stats.Update(p, ValidatePacket(p, false))

	if stats.CRCErrors != 1 {
		t.Errorf("expected 1 CRC error, got %d", stats.CRCErrors)
	}
	if stats.AnomalousPackets != 1 {
		t.Errorf("expected 1 anomalous packet, got %d", stats.AnomalousPackets)
	}
	if stats.ValidPackets != 0 {
		t.Errorf("expected 0 valid packets, got %d", stats.ValidPackets)
	}
}

func TestStatistics_SE1Faults(t *testing.T) {
	stats := NewStatistics()

	stats.Update(nil, nil)
	stats.Update(nil, nil)

	if stats.SE1Faults != 2 {
		t.Errorf("expected 2 SE1 faults, got %d", stats.SE1Faults)
	}
	if stats.TotalPackets != 0 {
		t.Errorf("SE1 faults should not count as packets, got %d", stats.TotalPackets)
	}
}

func TestStatistics_Reset(t *testing.T) {
	stats := NewStatistics()

	p := Classify(0, buildSOF(0x001))
	stats.Update(p, nil)
	stats.Update(nil, nil)
	stats.Reset()

	if stats.TotalPackets != 0 || stats.SOFPackets != 0 || stats.SE1Faults != 0 {
		t.Errorf("expected all counters zeroed after reset, got %+v", stats)
	}
}

func TestStatistics_String(t *testing.T) {
	stats := NewStatistics()

	p := Classify(0, buildSOF(0x001))
	stats.Update(p, ValidatePacket(p, false))

	out := stats.String()
	for _, want := range []string{"Total Packets:", "Valid Packets:", "SOF:", "Packet Rate:"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in summary:\n%s", want, out)
		}
	}
	// Sections for counters that stayed zero are omitted
	for _, skip := range []string{"CRC Errors:", "SE1 Faults:", "Unclassified:"} {
		if strings.Contains(out, skip) {
			t.Errorf("did not expect %q in summary:\n%s", skip, out)
		}
	}
}
