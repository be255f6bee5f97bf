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
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/FramelinkProject/go-framelink/session"
	"github.com/spf13/cobra"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Print every inbound frame until interrupted",
	Long: `Listen decodes the inbound byte stream and prints each validated
frame as it arrives. Combine with --auto-ack to acknowledge senders that
expect reliable delivery. On exit it prints receiver statistics.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, _ []string) error {
	transport, err := newTransport()
	if err != nil {
		return err
	}
	defer transport.Close()

	opts, err := linkOptions()
	if err != nil {
		return err
	}
	sess, err := session.New(transport, nil, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run(ctx) }()

	fmt.Printf("listening on %s (ctrl-c to stop)\n", flagPort)
	for {
		select {
		case frame := <-sess.Frames():
			fmt.Printf("% 8s  cmd=%02X len=%-3d % X\n",
				frame.Timestamp().Format("15:04:05"), frame.Command, len(frame.Payload), frame.Payload)
		case err := <-runErr:
			stats := sess.Link().ReceiverStats()
			fmt.Printf("frames=%d checksumFailures=%d lengthOverflows=%d bytesDiscarded=%d\n",
				stats.FramesEmitted, stats.ChecksumFailures, stats.LengthOverflows, stats.BytesDiscarded)
			if err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		}
	}
}
