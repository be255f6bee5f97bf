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
	"encoding/hex"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/FramelinkProject/go-framelink/session"
	"github.com/spf13/cobra"
)

var flagSendHex string

var sendCmd = &cobra.Command{
	Use:   "send <command> [payload]",
	Short: "Send one frame reliably and wait for acknowledgment",
	Long: `Send transmits a single frame and waits until the peer acknowledges
it or retries are exhausted. The command byte is given in hex (e.g. 01);
the payload is either a literal string argument or hex via --hex.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().StringVar(&flagSendHex, "hex", "", "payload as hex bytes (e.g. 102030)")
	rootCmd.AddCommand(sendCmd)
}

func parseCommandByte(arg string) (byte, error) {
	value, err := strconv.ParseUint(strings.TrimPrefix(arg, "0x"), 16, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid command byte %q: %w", arg, err)
	}
	return byte(value), nil
}

func runSend(cmd *cobra.Command, args []string) error {
	command, err := parseCommandByte(args[0])
	if err != nil {
		return err
	}

	var payload []byte
	switch {
	case flagSendHex != "":
		payload, err = hex.DecodeString(flagSendHex)
		if err != nil {
			return fmt.Errorf("invalid --hex payload: %w", err)
		}
	case len(args) == 2:
		payload = []byte(args[1])
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

	if err := sess.Send(ctx, command, payload); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}

	fmt.Printf("acknowledged: command %02X, %d payload bytes\n", command, len(payload))
	return nil
}
