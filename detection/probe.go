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

package detection

import (
	"fmt"
	"sync/atomic"
	"time"

	framelink "github.com/FramelinkProject/go-framelink"
	"github.com/FramelinkProject/go-framelink/internal/retry"
	transportuart "github.com/FramelinkProject/go-framelink/transport/uart"
)

// ProbeConfig configures what a probe sends and how long it waits
type ProbeConfig struct {
	// LinkOptions configure the probe link (checksum, marker, control
	// IDs must match the expected peer)
	LinkOptions []framelink.Option
	// Command is the frame sent to provoke an acknowledgment
	Command byte
	// BaudRate for the probe (default 115200)
	BaudRate int
	// Timeout bounds the whole probe (default 500ms)
	Timeout time.Duration
}

// DefaultProbeConfig returns default probe settings
func DefaultProbeConfig() *ProbeConfig {
	return &ProbeConfig{
		Command: 0x01,
		Timeout: 500 * time.Millisecond,
	}
}

// Probe opens the port and sends one frame, reporting whether a peer
// acknowledged it within the timeout. A false result with nil error
// means the port opened fine but nothing answered.
func Probe(path string, cfg *ProbeConfig) (bool, error) {
	if cfg == nil {
		cfg = DefaultProbeConfig()
	}

	var uartOpts []transportuart.Option
	if cfg.BaudRate > 0 {
		uartOpts = append(uartOpts, transportuart.WithBaudRate(cfg.BaudRate))
	}
	transport, err := transportuart.New(path, uartOpts...)
	if err != nil {
		return false, fmt.Errorf("probe could not open %s: %w", path, err)
	}
	defer func() { _ = transport.Close() }()

	var acked atomic.Bool
	opts := append([]framelink.Option{}, cfg.LinkOptions...)
	opts = append(opts, framelink.WithSendResolvedHandler(func(err error) {
		if err == nil {
			acked.Store(true)
		}
	}))

	link, err := framelink.New(transport, opts...)
	if err != nil {
		return false, err
	}

	if err := link.Send(cfg.Command, nil); err != nil {
		return false, fmt.Errorf("probe send on %s: %w", path, err)
	}

	// Pump the port until the peer answers or the timeout runs out.
	buf := make([]byte, 64)
	_, err = retry.TimeoutRetry(cfg.Timeout, func() (bool, bool, error) {
		n, readErr := transport.Read(buf)
		if readErr != nil {
			return false, false, readErr
		}
		if n > 0 {
			link.FeedBytes(buf[:n])
		}
		link.Tick(time.Now())
		if acked.Load() {
			return true, false, nil
		}
		return false, true, nil
	})
	if err != nil {
		// Timeout means no peer, not a failed probe.
		if framelink.GetErrorType(err) == framelink.ErrorTypeTimeout {
			return false, nil
		}
		return false, err
	}

	return acked.Load(), nil
}
