// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Roman Penyaev

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rouming/usb-parser/pkg/usbproto"
	"github.com/rouming/usb-parser/pkg/usbsig"
	"github.com/spf13/cobra"
)

var (
	outputFormat string
	outputPath   string
	showStats    bool
)

var decodeCmd = &cobra.Command{
	Use:   "decode FILE",
	Short: "Decode USB packets from a CSV capture file",
	Long: `Decode a CSV sample trace into USB link-layer packets.

Each decoded packet is printed with its capture timestamp, classified fields
(PID, address, endpoint, frame number, payload length), CRC validation status
and the raw assembled bytes. SE1 line faults are reported as warnings and the
decoder resumes at the next packet.

With --format cbor, packets are written as a stream of CBOR records
([pid, field_map]) instead, suitable for machine consumption.`,
	Args: cobra.ExactArgs(1),
	RunE: runDecode,
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVar(&outputFormat, "format", "text", "Output format: text or cbor")
	decodeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default stdout; cbor only)")
	decodeCmd.Flags().BoolVar(&showStats, "stats", false, "Print a statistics summary at end of trace")
}

func runDecode(cmd *cobra.Command, args []string) error {
	hint, err := usbsig.ParseSpeedHint(speedFlag)
	if err != nil {
		return err
	}

	if outputFormat != "text" && outputFormat != "cbor" {
		return fmt.Errorf("invalid format %q (accepts \"text\" or \"cbor\")", outputFormat)
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open capture file: %v", err)
	}
	defer f.Close()

	out := os.Stdout
	if outputPath != "" {
		out, err = os.Create(outputPath)
		if err != nil {
			return fmt.Errorf("failed to create output file: %v", err)
		}
		defer out.Close()
	}

	reader := NewCSVSampleReader(f)
	decoder := usbsig.NewDecoder(hint)
	stats := usbproto.NewStatistics()

	emit := func(packet *usbproto.Packet) error {
		lowSpeed := decoder.Speed() == usbsig.SpeedLow
		stats.Update(packet, usbproto.ValidatePacket(packet, lowSpeed))

		if outputFormat == "cbor" {
			data, err := usbproto.EncodeCBORPacket(packet)
			if err != nil {
				return fmt.Errorf("CBOR encoding failed: %v", err)
			}
			_, err = out.Write(data)
			return err
		}

		_, err := fmt.Fprintln(out, usbproto.FormatPacket(packet))
		return err
	}

	for {
		sample, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		packet, err := decoder.Feed(sample)
		var se1 *usbsig.SE1Error
		if errors.As(err, &se1) {
			stats.Update(nil, nil)
			fmt.Fprintf(os.Stderr, "[%f] Warning: SE1 state detected\n", se1.Timestamp)
		}
		if packet != nil {
			if err := emit(packet); err != nil {
				return err
			}
		}
	}

	if showStats {
		fmt.Fprintf(os.Stderr, "\nSpeed: %s\n%s", decoder.Speed(), stats)
	}

	return nil
}
