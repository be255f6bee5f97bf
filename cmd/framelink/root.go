// go-framelink
// Copyright (c) 2026 The Framelink Project Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-framelink.
//
// go-framelink is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-framelink is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-framelink; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

package main

import (
	"fmt"
	"strings"
	"time"

	framelink "github.com/FramelinkProject/go-framelink"
	"github.com/FramelinkProject/go-framelink/transport/i2c"
	"github.com/FramelinkProject/go-framelink/transport/uart"
	"github.com/spf13/cobra"
)

var (
	flagPort     string
	flagBaud     int
	flagChecksum string
	flagRetries  int
	flagTimeout  time.Duration
	flagAutoAck  bool
	flagDebug    bool
)

var rootCmd = &cobra.Command{
	Use:   "framelink",
	Short: "Talk to a framelink peer over a serial link",
	Long: `framelink exchanges reliable, checksummed frames with a peer over a
byte-oriented serial link (UART port or I2C bridge).`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		framelink.SetDebugEnabled(flagDebug)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagPort, "port", "p", "",
		"device path: serial port (/dev/ttyUSB0, COM3) or I2C bus (/dev/i2c-1)")
	pf.IntVarP(&flagBaud, "baud", "b", 115200, "serial baud rate")
	pf.StringVar(&flagChecksum, "checksum", "xor8", "checksum algorithm: xor8, crc8 or crc16")
	pf.IntVar(&flagRetries, "retries", framelink.DefaultMaxRetries, "retransmissions after the initial send")
	pf.DurationVar(&flagTimeout, "timeout", framelink.DefaultTimeout, "acknowledgment timeout per transmission")
	pf.BoolVar(&flagAutoAck, "auto-ack", false, "acknowledge every inbound frame automatically")
	pf.BoolVar(&flagDebug, "debug", false, "enable protocol debug output")
}

// newTransport opens the transport selected by --port
func newTransport() (framelink.Transport, error) {
	if flagPort == "" {
		return nil, fmt.Errorf("--port is required (try 'framelink ports')")
	}
	if strings.Contains(strings.ToLower(flagPort), "i2c") {
		transport, err := i2c.New(flagPort)
		if err != nil {
			return nil, fmt.Errorf("failed to open I2C transport: %w", err)
		}
		return transport, nil
	}
	transport, err := uart.New(flagPort, uart.WithBaudRate(flagBaud))
	if err != nil {
		return nil, fmt.Errorf("failed to open serial transport: %w", err)
	}
	return transport, nil
}

// linkOptions builds the link options selected by the global flags
func linkOptions() ([]framelink.Option, error) {
	var algorithm framelink.ChecksumAlgorithm
	switch strings.ToLower(flagChecksum) {
	case "xor8":
		algorithm = framelink.ChecksumXOR8
	case "crc8":
		algorithm = framelink.ChecksumCRC8
	case "crc16":
		algorithm = framelink.ChecksumCRC16
	default:
		return nil, fmt.Errorf("unknown checksum algorithm %q", flagChecksum)
	}

	return []framelink.Option{
		framelink.WithChecksum(algorithm),
		framelink.WithMaxRetries(flagRetries),
		framelink.WithTimeout(flagTimeout),
		framelink.WithAutoAck(flagAutoAck),
	}, nil
}
