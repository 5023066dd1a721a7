// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Roman Penyaev
//
// usb-parser - USB oscilloscope capture analyzer
//
// A CLI tool that reconstructs USB 1.x link-layer packets from raw D+/D-
// voltage traces captured with an oscilloscope.

package main

import (
	"os"

	"github.com/rouming/usb-parser/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
