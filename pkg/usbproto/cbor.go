// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbproto

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// CBOR field keys for the machine-readable packet export
const (
	cborKeyTimestamp = 0
	cborKeyRaw       = 1
	cborKeyFrame     = 2
	cborKeyAddress   = 3
	cborKeyEndpoint  = 4
	cborKeyPayload   = 5
	cborKeyCRC       = 6
	cborKeyCRCOK     = 7
)

// EncodeCBORPacket encodes a decoded packet as a CBOR 2-element array
// [pid, field_map] with integer map keys, the same shape the Fusain tooling
// uses for its packet streams. Field presence follows the packet kind.
func EncodeCBORPacket(p *Packet) ([]byte, error) {
	fields := map[int]interface{}{
		cborKeyTimestamp: p.Timestamp(),
		cborKeyRaw:       p.Raw(),
	}

	switch p.Kind() {
	case KindSOF:
		fields[cborKeyFrame] = p.FrameNumber()
	case KindToken:
		fields[cborKeyAddress] = p.Address()
		fields[cborKeyEndpoint] = p.Endpoint()
	case KindData:
		fields[cborKeyPayload] = p.Payload()
	}

	if p.HasCRC() {
		fields[cborKeyCRC] = p.CRC()
		fields[cborKeyCRCOK] = p.CRCOK()
	}

	return cbor.Marshal([]interface{}{uint64(p.PID()), fields})
}

// ParseCBORPacket parses a CBOR packet record: [pid, field_map].
// Returns the PID and decoded field map.
func ParseCBORPacket(data []byte) (pid uint8, fields map[int]interface{}, err error) {
	if len(data) == 0 {
		return 0, nil, fmt.Errorf("empty CBOR record")
	}

	var msg []interface{}
	if err := cbor.Unmarshal(data, &msg); err != nil {
		return 0, nil, fmt.Errorf("failed to decode CBOR: %w", err)
	}

	if len(msg) != 2 {
		return 0, nil, fmt.Errorf("expected 2-element array, got %d elements", len(msg))
	}

	switch v := msg[0].(type) {
	case uint64:
		if v > 255 {
			return 0, nil, fmt.Errorf("PID out of range: %d", v)
		}
		pid = uint8(v)
	default:
		return 0, nil, fmt.Errorf("expected uint for PID, got %T", msg[0])
	}

	switch v := msg[1].(type) {
	case map[interface{}]interface{}:
		fields = make(map[int]interface{})
		for key, val := range v {
			switch k := key.(type) {
			case uint64:
				fields[int(k)] = val
			case int64:
				fields[int(k)] = val
			default:
				return 0, nil, fmt.Errorf("expected integer map key, got %T", key)
			}
		}
	default:
		return 0, nil, fmt.Errorf("expected map for fields, got %T", msg[1])
	}

	return pid, fields, nil
}

// Map value extraction helpers

// GetMapUint extracts a uint64 from a CBOR field map by key
func GetMapUint(m map[int]interface{}, key int) (uint64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case uint64:
		return val, true
	case int64:
		if val >= 0 {
			return uint64(val), true
		}
		return 0, false
	}
	return 0, false
}

// GetMapFloat extracts a float64 from a CBOR field map by key
func GetMapFloat(m map[int]interface{}, key int) (float64, bool) {
	if m == nil {
		return 0, false
	}
	v, ok := m[key]
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case float64:
		return val, true
	case int64:
		return float64(val), true
	case uint64:
		return float64(val), true
	}
	return 0, false
}

// GetMapBool extracts a bool from a CBOR field map by key
func GetMapBool(m map[int]interface{}, key int) (bool, bool) {
	if m == nil {
		return false, false
	}
	v, ok := m[key]
	if !ok {
		return false, false
	}
	if val, ok := v.(bool); ok {
		return val, true
	}
	return false, false
}

// GetMapBytes extracts a []byte from a CBOR field map by key
func GetMapBytes(m map[int]interface{}, key int) ([]byte, bool) {
	if m == nil {
		return nil, false
	}
	v, ok := m[key]
	if !ok {
		return nil, false
	}
	if val, ok := v.([]byte); ok {
		return val, true
	}
	return nil, false
}
