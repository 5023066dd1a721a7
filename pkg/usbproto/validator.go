// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbproto

import "fmt"

// AnomalyType represents different types of packet anomalies
type AnomalyType int

const (
	AnomalyCRCError AnomalyType = iota
	AnomalyUnknownPID
	AnomalyTruncatedPacket
	AnomalyOversizePayload
)

// ValidationError represents a packet validation failure
type ValidationError struct {
	Type    AnomalyType
	Message string
	Details map[string]interface{}
}

// Error implements the error interface
func (v *ValidationError) Error() string {
	return v.Message
}

// ValidatePacket inspects a classified packet for protocol anomalies.
// Returns a slice of validation errors (empty if the packet is clean).
// CRC mismatches are anomalies, not decode failures: the packet still
// carries its fields and raw bytes.
func ValidatePacket(p *Packet, lowSpeed bool) []ValidationError {
	errors := []ValidationError{}

	if p.HasCRC() && !p.CRCOK() {
		width := "CRC5"
		if p.Kind() == KindData {
			width = "CRC16"
		}
		errors = append(errors, ValidationError{
			Type:    AnomalyCRCError,
			Message: fmt.Sprintf("%s mismatch: received 0x%x, computed 0x%x", width, p.CRC(), p.CRCCalc()),
			Details: map[string]interface{}{"received": p.CRC(), "computed": p.CRCCalc()},
		})
	}

	if p.Kind() == KindRaw {
		if len(p.Raw()) < 2 {
			errors = append(errors, ValidationError{
				Type:    AnomalyTruncatedPacket,
				Message: fmt.Sprintf("packet too short to classify (%d bytes)", len(p.Raw())),
				Details: map[string]interface{}{"length": len(p.Raw())},
			})
		} else if FormatPID(p.PID()) == "UNKNOWN" {
			errors = append(errors, ValidationError{
				Type:    AnomalyUnknownPID,
				Message: fmt.Sprintf("unknown PID 0x%02x", p.PID()),
				Details: map[string]interface{}{"pid": p.PID()},
			})
		} else {
			errors = append(errors, ValidationError{
				Type:    AnomalyTruncatedPacket,
				Message: fmt.Sprintf("%s packet truncated (%d bytes)", FormatPID(p.PID()), len(p.Raw())),
				Details: map[string]interface{}{"pid": p.PID(), "length": len(p.Raw())},
			})
		}
	}

	if p.Kind() == KindData {
		max := MaxPayloadFullSpeed
		if lowSpeed {
			max = MaxPayloadLowSpeed
		}
		if len(p.Payload()) > max {
			errors = append(errors, ValidationError{
				Type:    AnomalyOversizePayload,
				Message: fmt.Sprintf("payload of %d bytes exceeds the %d byte maximum for the bus speed", len(p.Payload()), max),
				Details: map[string]interface{}{"length": len(p.Payload()), "max": max},
			})
		}
	}

	return errors
}
