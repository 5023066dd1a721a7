// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbproto

import (
	"fmt"
	"time"
)

// Statistics tracks packet statistics and error rates for a decode run
type Statistics struct {
	StartTime      time.Time
	LastUpdateTime time.Time

	// Counters
	TotalPackets     uint64
	ValidPackets     uint64
	SOFPackets       uint64
	TokenPackets     uint64
	DataPackets      uint64
	HandshakePackets uint64
	RawPackets       uint64
	CRCErrors        uint64
	SE1Faults        uint64
	AnomalousPackets uint64

	// Rates (calculated)
	PacketRate float64 // packets/sec of wall-clock decode time
	ErrorRate  float64 // errors/sec of wall-clock decode time
}

// NewStatistics creates a new statistics tracker
func NewStatistics() *Statistics {
	now := time.Now()
	return &Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}

// Update updates statistics based on a decoded packet and its validation
// errors. Pass a nil packet to account for a signal fault (SE1) that
// discarded an in-progress packet.
func (s *Statistics) Update(packet *Packet, validationErrors []ValidationError) {
	if packet == nil {
		s.SE1Faults++
		s.LastUpdateTime = time.Now()
		return
	}

	s.TotalPackets++

	switch packet.Kind() {
	case KindSOF:
		s.SOFPackets++
	case KindToken:
		s.TokenPackets++
	case KindData:
		s.DataPackets++
	case KindHandshake, KindPre:
		s.HandshakePackets++
	default:
		s.RawPackets++
	}

	if len(validationErrors) > 0 {
		s.AnomalousPackets++
		for _, err := range validationErrors {
			if err.Type == AnomalyCRCError {
				s.CRCErrors++
			}
		}
	} else {
		s.ValidPackets++
	}

	s.LastUpdateTime = time.Now()
}

// CalculateRates calculates packet and error rates
func (s *Statistics) CalculateRates() {
	elapsed := time.Since(s.StartTime).Seconds()
	if elapsed > 0 {
		s.PacketRate = float64(s.TotalPackets) / elapsed
		s.ErrorRate = float64(s.AnomalousPackets+s.SE1Faults) / elapsed
	}
}

// String returns a formatted statistics summary
func (s *Statistics) String() string {
	s.CalculateRates()

	var validPercent, crcPercent float64
	if s.TotalPackets > 0 {
		validPercent = float64(s.ValidPackets) * 100.0 / float64(s.TotalPackets)
		crcPercent = float64(s.CRCErrors) * 100.0 / float64(s.TotalPackets)
	}

	result := "=== Decode statistics ===\n"
	result += fmt.Sprintf("Total Packets:   %8d\n", s.TotalPackets)
	result += fmt.Sprintf("Valid Packets:   %8d (%.1f%%)\n", s.ValidPackets, validPercent)
	result += fmt.Sprintf("  SOF:           %8d\n", s.SOFPackets)
	result += fmt.Sprintf("  Tokens:        %8d\n", s.TokenPackets)
	result += fmt.Sprintf("  Data:          %8d\n", s.DataPackets)
	result += fmt.Sprintf("  Handshakes:    %8d\n", s.HandshakePackets)

	if s.RawPackets > 0 {
		result += fmt.Sprintf("  Unclassified:  %8d\n", s.RawPackets)
	}
	if s.CRCErrors > 0 {
		result += fmt.Sprintf("CRC Errors:      %8d (%.1f%%)\n", s.CRCErrors, crcPercent)
	}
	if s.SE1Faults > 0 {
		result += fmt.Sprintf("SE1 Faults:      %8d\n", s.SE1Faults)
	}

	result += fmt.Sprintf("Packet Rate:     %8.1f pkts/sec\n", s.PacketRate)
	result += "=========================\n"

	return result
}

// Reset resets all statistics counters
func (s *Statistics) Reset() {
	now := time.Now()
	*s = Statistics{
		StartTime:      now,
		LastUpdateTime: now,
	}
}
