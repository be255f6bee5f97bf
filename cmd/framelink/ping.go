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
	"time"

	framelink "github.com/FramelinkProject/go-framelink"
	"github.com/FramelinkProject/go-framelink/session"
	"github.com/spf13/cobra"
)

var (
	flagPingCount    int
	flagPingInterval time.Duration
	flagPingCommand  string
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Measure link round trips via acknowledgment",
	Long: `Ping repeatedly sends an empty frame and measures the time until the
peer's acknowledgment arrives. A ping that exhausts its retries counts
as lost.`,
	Args: cobra.NoArgs,
	RunE: runPing,
}

func init() {
	pingCmd.Flags().IntVarP(&flagPingCount, "count", "c", 4, "number of pings to send (0 = until interrupted)")
	pingCmd.Flags().DurationVarP(&flagPingInterval, "interval", "i", time.Second, "delay between pings")
	pingCmd.Flags().StringVar(&flagPingCommand, "command", "01", "command byte to ping with (hex)")
	rootCmd.AddCommand(pingCmd)
}

func runPing(cmd *cobra.Command, _ []string) error {
	command, err := parseCommandByte(flagPingCommand)
	if err != nil {
		return err
	}

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
	go func() { _ = sess.Run(ctx) }()

	var sent, acked, lost int
loop:
	for i := 0; flagPingCount == 0 || i < flagPingCount; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				break loop
			case <-time.After(flagPingInterval):
			}
		}

		start := time.Now()
		sent++
		err := sess.Send(ctx, command, nil)
		switch {
		case err == nil:
			acked++
			fmt.Printf("ack from peer: seq=%d time=%v\n", i, time.Since(start).Round(time.Microsecond))
		case errors.Is(err, framelink.ErrRetriesExhausted):
			lost++
			fmt.Printf("no ack: seq=%d (retries exhausted)\n", i)
		case errors.Is(err, context.Canceled):
			sent--
			break loop
		default:
			return fmt.Errorf("ping failed: %w", err)
		}
	}

	fmt.Printf("%d sent, %d acknowledged, %d lost\n", sent, acked, lost)
	if lost > 0 {
		return fmt.Errorf("%d of %d pings lost", lost, sent)
	}
	return nil
}
