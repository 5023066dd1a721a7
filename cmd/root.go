// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Roman Penyaev

package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Decode flags
	speedFlag string

	// Serial connection flags
	portName string
	baudRate int

	// WebSocket connection flags
	wsURL         string
	wsUsername    string
	wsNoSSLVerify bool
)

var rootCmd = &cobra.Command{
	Use:   "usb-parser",
	Short: "USB oscilloscope capture analyzer",
	Long: `usb-parser - Decodes USB 1.x (low/full-speed) packets from a raw two-channel
oscilloscope capture of the D+/D- lines.

Reads CSV sample traces extracted from a Rigol DS1054Z (or compatible) scope
by the ` + "`ds1054z`" + ` tool, reconstructs the link-layer bit stream and prints
decoded packets with validated CRC5/CRC16 checksums.

Input sources:
  File:      usb-parser decode capture.csv
  Serial:    --port /dev/ttyUSB0 [--baud 115200]  (live relay)
  WebSocket: --url ws://host/path [--username user]  (remote relay)

For WebSocket authentication, the password is read from the USBPARSE_PASSWORD
environment variable, or prompted interactively if not set. The --password
flag is intentionally not provided to avoid leaking credentials in shell history.`,
	Version: "1.0.0",
}

func init() {
	// Decode flags
	rootCmd.PersistentFlags().StringVarP(&speedFlag, "speed", "s", "auto", `Speed of the device. Accepts "low", "full" or "auto"`)

	// Serial connection flags
	rootCmd.PersistentFlags().StringVarP(&portName, "port", "p", "", "Serial port device")
	rootCmd.PersistentFlags().IntVarP(&baudRate, "baud", "b", 115200, "Baud rate (serial only)")

	// WebSocket connection flags
	rootCmd.PersistentFlags().StringVarP(&wsURL, "url", "u", "", "WebSocket URL (ws:// or wss://)")
	rootCmd.PersistentFlags().StringVar(&wsUsername, "username", "", "Username for HTTP Basic auth")
	rootCmd.PersistentFlags().BoolVar(&wsNoSSLVerify, "no-ssl-verify", false, "Skip TLS certificate verification (wss:// only)")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}
