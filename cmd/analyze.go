// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Roman Penyaev

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rouming/usb-parser/pkg/usbproto"
	"github.com/rouming/usb-parser/pkg/usbsig"
	"github.com/spf13/cobra"
)

var (
	showAll       bool
	statsInterval int
	useTUI        bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [FILE]",
	Short: "Detect and analyze malformed packets and signal faults",
	Long: `Track packet anomalies and signal faults with statistics.

This command validates each decoded packet and detects:
  - CRC5/CRC16 mismatches
  - Unknown PIDs and truncated packets
  - Payloads exceeding the maximum for the bus speed
  - SE1 signal faults (both lines high)

By default, only anomalies are displayed. Use --show-all to display valid
packets too.

Reads a CSV capture file when FILE is given, otherwise a live relay via
--port or --url.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().BoolVar(&showAll, "show-all", false, "Show all packets (not just anomalies)")
	analyzeCmd.Flags().IntVar(&statsInterval, "stats-interval", 10, "Statistics update interval (seconds)")
	analyzeCmd.Flags().BoolVar(&useTUI, "tui", false, "Use terminal UI (live sources)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	hint, err := usbsig.ParseSpeedHint(speedFlag)
	if err != nil {
		return err
	}

	var reader SampleReader
	var sourceInfo string

	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open capture file: %v", err)
		}
		defer f.Close()
		reader = NewCSVSampleReader(f)
		sourceInfo = fmt.Sprintf("File: %s", args[0])
	} else {
		conn, connInfo, err := OpenConnection()
		if err != nil {
			return err
		}
		defer conn.Close()
		reader = NewCSVSampleReader(conn)
		sourceInfo = connInfo
	}

	if useTUI {
		return runTUIMode(reader, hint, sourceInfo)
	}
	return runTextMode(reader, hint, sourceInfo)
}

// printValidationErrors prints validation errors for a packet
func printValidationErrors(packet *usbproto.Packet, errors []usbproto.ValidationError) {
	fmt.Printf("[%f] \033[1;33mVALIDATION ERROR:\033[0m %s (0x%02X)\n",
		packet.Timestamp(), usbproto.FormatPID(packet.PID()), packet.PID())

	for i, err := range errors {
		switch err.Type {
		case usbproto.AnomalyCRCError:
			fmt.Printf("  Issue %d: \033[1;31m%s\033[0m\n", i+1, err.Message)
		default:
			fmt.Printf("  Issue %d: \033[1;33m%s\033[0m\n", i+1, err.Message)
		}
	}

	fmt.Printf("  Raw: %s\n\n", usbproto.FormatPacket(packet))
}

// printSE1Fault prints a signal fault in highlighted format
func printSE1Fault(se1 *usbsig.SE1Error) {
	fmt.Printf("[%f] \033[1;31mSIGNAL FAULT:\033[0m SE1 state detected\n", se1.Timestamp)
	fmt.Printf("  >>> PACKET DISCARDED <<<\n\n")
}

// runTextMode runs analysis in text mode
func runTextMode(reader SampleReader, hint usbsig.SpeedHint, sourceInfo string) error {
	fmt.Printf("usb-parser - Analysis Mode\n")
	fmt.Printf("Source: %s\n", sourceInfo)
	fmt.Printf("Statistics interval: %d seconds\n", statsInterval)
	if showAll {
		fmt.Printf("Mode: All packets\n")
	} else {
		fmt.Printf("Mode: Anomalies only\n")
	}
	fmt.Printf("Press Ctrl+C to exit\n\n")

	decoder := usbsig.NewDecoder(hint)
	stats := usbproto.NewStatistics()

	lastStats := time.Now()
	interval := time.Duration(statsInterval) * time.Second

	for {
		sample, err := reader.Next()
		if err == io.EOF || err == ErrConnectionClosed {
			break
		}
		if err != nil {
			log.Printf("Read error: %v", err)
			continue
		}

		packet, err := decoder.Feed(sample)
		var se1 *usbsig.SE1Error
		if errors.As(err, &se1) {
			stats.Update(nil, nil)
			printSE1Fault(se1)
		}

		if packet != nil {
			lowSpeed := decoder.Speed() == usbsig.SpeedLow
			validationErrors := usbproto.ValidatePacket(packet, lowSpeed)
			stats.Update(packet, validationErrors)

			if len(validationErrors) > 0 {
				printValidationErrors(packet, validationErrors)
			} else if showAll {
				fmt.Println(usbproto.FormatPacket(packet))
			}
		}

		if time.Since(lastStats) >= interval {
			fmt.Print(stats)
			lastStats = time.Now()
		}
	}

	fmt.Printf("\nSpeed: %s\n%s", decoder.Speed(), stats)
	return nil
}

// runTUIMode runs analysis with the bubbletea dashboard
func runTUIMode(reader SampleReader, hint usbsig.SpeedHint, sourceInfo string) error {
	// Create TUI program
	m := initialModel(sourceInfo, showAll)
	p := tea.NewProgram(m)

	// Sample feeder goroutine
	go func() {
		decoder := usbsig.NewDecoder(hint)

		for {
			sample, err := reader.Next()
			if err == io.EOF || err == ErrConnectionClosed {
				p.Send(sourceDoneMsg{})
				return
			}
			if err != nil {
				log.Printf("Read error: %v", err)
				continue
			}

			packet, err := decoder.Feed(sample)
			var se1 *usbsig.SE1Error
			if errors.As(err, &se1) {
				p.Send(decodeMsg{se1: se1, speed: decoder.Speed()})
			}
			if packet != nil {
				lowSpeed := decoder.Speed() == usbsig.SpeedLow
				p.Send(decodeMsg{
					packet:           packet,
					validationErrors: usbproto.ValidatePacket(packet, lowSpeed),
					speed:            decoder.Speed(),
				})
			}
		}
	}()

	// Run TUI
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %v", err)
	}

	return nil
}
