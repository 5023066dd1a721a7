// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2026 Roman Penyaev

package usbproto

import (
	"fmt"
	"strings"
)

// FormatPacket formats a decoded packet as a single human-readable line:
// capture timestamp, classified fields, then the raw byte sequence in the
// bracketed hex form of the original capture tool.
func FormatPacket(p *Packet) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%f] ", p.Timestamp())

	switch p.Kind() {
	case KindSOF:
		fmt.Fprintf(&b, "SOF | NRFRAME %d | CRC5 0x%x (%s) | ",
			p.FrameNumber(), p.CRC(), crcStatus(p.CRCOK()))

	case KindToken:
		fmt.Fprintf(&b, "%s | ADDR %d | ENDP %d | CRC5 0x%x (%s) | ",
			FormatPID(p.PID()), p.Address(), p.Endpoint(), p.CRC(), crcStatus(p.CRCOK()))

	case KindData:
		fmt.Fprintf(&b, "%s | LEN %d | CRC16 0x%04x (%s) | ",
			FormatPID(p.PID()), len(p.Payload()), p.CRC(), crcStatus(p.CRCOK()))

	case KindHandshake, KindPre:
		fmt.Fprintf(&b, "%s | ", FormatPID(p.PID()))
	}

	b.WriteString(formatRawBytes(p.Raw()))
	return b.String()
}

// FormatPID returns the human-readable name for a PID byte
func FormatPID(pid uint8) string {
	switch pid {
	case PIDOut:
		return "OUT"
	case PIDIn:
		return "IN"
	case PIDSOF:
		return "SOF"
	case PIDSetup:
		return "SETUP"
	case PIDData0:
		return "DATA0"
	case PIDData1:
		return "DATA1"
	case PIDAck:
		return "ACK"
	case PIDNak:
		return "NAK"
	case PIDStall:
		return "STALL"
	case PIDPre:
		return "PRE"
	default:
		return "UNKNOWN"
	}
}

// FormatKind returns the human-readable name for a packet kind
func FormatKind(kind Kind) string {
	switch kind {
	case KindSOF:
		return "SOF"
	case KindToken:
		return "TOKEN"
	case KindData:
		return "DATA"
	case KindHandshake:
		return "HANDSHAKE"
	case KindPre:
		return "PRE"
	default:
		return "RAW"
	}
}

func crcStatus(ok bool) string {
	if ok {
		return "OK"
	}
	return "ERR"
}

// formatRawBytes renders the assembled bytes as the original tool did:
// lower-case hex, space separated, in brackets.
func formatRawBytes(raw []byte) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range raw {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%x", v)
	}
	b.WriteByte(']')
	return b.String()
}
