// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Roman Penyaev

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/rouming/usb-parser/pkg/usbproto"
	"github.com/rouming/usb-parser/pkg/usbsig"
	"github.com/spf13/cobra"
)

var streamCmd = &cobra.Command{
	Use:   "stream",
	Short: "Decode USB packets from a live capture relay",
	Long: `Continuously decode and display USB packets as samples arrive.

The relay streams the same CSV rows a file capture contains, over a serial
port or a WebSocket. Output matches the decode command's text format.

Supports both serial and WebSocket connections.`,
	RunE: runStream,
}

func init() {
	rootCmd.AddCommand(streamCmd)
}

func runStream(cmd *cobra.Command, args []string) error {
	hint, err := usbsig.ParseSpeedHint(speedFlag)
	if err != nil {
		return err
	}

	// Open connection (serial or WebSocket)
	conn, connInfo, err := OpenConnection()
	if err != nil {
		return err
	}
	defer conn.Close()

	fmt.Printf("usb-parser - Live Packet Decode\n")
	fmt.Printf("Connection: %s\n", connInfo)
	fmt.Printf("Press Ctrl+C to exit\n\n")

	reader := NewCSVSampleReader(conn)
	decoder := usbsig.NewDecoder(hint)

	for {
		sample, err := reader.Next()
		if err != nil {
			// For WebSocket connections, a read error usually means
			// the connection is permanently closed - exit gracefully
			if err == ErrConnectionClosed || err == io.EOF {
				log.Printf("Connection closed")
				return nil
			}
			log.Printf("Read error: %v", err)
			continue
		}

		packet, err := decoder.Feed(sample)
		var se1 *usbsig.SE1Error
		if errors.As(err, &se1) {
			fmt.Printf("[%f] Warning: SE1 state detected\n", se1.Timestamp)
		}
		if packet != nil {
			fmt.Println(usbproto.FormatPacket(packet))
		}
	}
}
