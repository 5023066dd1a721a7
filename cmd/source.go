// SPDX-License-Identifier: GPL-2.0-or-later
// Copyright (c) 2026 Roman Penyaev

package cmd

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rouming/usb-parser/pkg/usbsig"
)

// SampleReader yields oscilloscope samples in timestamp order
type SampleReader interface {
	// Next returns the next sample, or io.EOF when the trace ends
	Next() (usbsig.Sample, error)
}

// CSVSampleReader adapts a `ds1054z`-style CSV export into samples. Each row
// is `timestamp,volts_dp,volts_dm`; the first row is a header and skipped.
type CSVSampleReader struct {
	csv           *csv.Reader
	headerSkipped bool
}

// NewCSVSampleReader creates a sample reader over a CSV stream
func NewCSVSampleReader(r io.Reader) *CSVSampleReader {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = 3
	return &CSVSampleReader{csv: cr}
}

// Next reads and parses one CSV row
func (r *CSVSampleReader) Next() (usbsig.Sample, error) {
	if !r.headerSkipped {
		r.headerSkipped = true
		if _, err := r.csv.Read(); err != nil {
			return usbsig.Sample{}, err
		}
	}

	record, err := r.csv.Read()
	if err != nil {
		return usbsig.Sample{}, err
	}

	tm, err := strconv.ParseFloat(record[0], 64)
	if err != nil {
		return usbsig.Sample{}, fmt.Errorf("invalid timestamp %q: %v", record[0], err)
	}
	dp, err := strconv.ParseFloat(record[1], 64)
	if err != nil {
		return usbsig.Sample{}, fmt.Errorf("invalid D+ voltage %q: %v", record[1], err)
	}
	dm, err := strconv.ParseFloat(record[2], 64)
	if err != nil {
		return usbsig.Sample{}, fmt.Errorf("invalid D- voltage %q: %v", record[2], err)
	}

	return usbsig.Sample{Time: tm, DP: dp, DM: dm}, nil
}
