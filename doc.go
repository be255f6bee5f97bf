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

/*
Package framelink provides reliable, framed message transport over
byte-oriented, best-effort serial links such as UART wires.

A raw serial link has no framing, no addressing, no integrity checking
and no delivery guarantee. This library turns such a link into a lossless
sequence of discrete, checksum-verified frames and guarantees, subject to
bounded retries, that a frame handed to Send is either delivered and
acknowledged by the peer or reported as a definite failure.

The wire format is:

	start(2) | length(1) | command(1) | payload(0..MaxPayload) | checksum(1-2)

where length counts everything after itself (command, payload and
checksum) and the checksum covers command and payload. The start marker,
payload budget, checksum algorithm (XOR8, CRC8 or CRC16), retry count and
acknowledgment timeout are all link-level configuration.

Features:
  - Byte-at-a-time receiver state machine that resynchronizes through
    arbitrary line noise, truncated frames and corrupted checksums
  - ACK/NACK based reliability with timeout-driven retransmission and
    at most one frame in flight per link
  - Multiple transport backends: UART (serial port), I2C byte bridges,
    and an in-memory mock for tests
  - Non-blocking core driven entirely by FeedByte and Tick, suitable for
    cooperative polling loops; a session layer supplies goroutine pumps
    and blocking sends for ordinary applications
  - Serial port discovery with USB VID:PID blocklisting

Basic usage:

	import (
	    "github.com/FramelinkProject/go-framelink"
	    "github.com/FramelinkProject/go-framelink/transport/uart"
	)

	transport, err := uart.New("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}
	defer transport.Close()

	link, err := framelink.New(transport,
	    framelink.WithChecksum(framelink.ChecksumCRC16),
	    framelink.WithMaxRetries(3),
	    framelink.WithTimeout(150*time.Millisecond),
	    framelink.WithFrameHandler(func(f *framelink.Frame) {
	        fmt.Printf("got command %02X (%d bytes)\n", f.Command, len(f.Payload))
	    }),
	)
	if err != nil {
	    log.Fatal(err)
	}

	// Feed inbound bytes from whatever owns the read side:
	//   link.FeedBytes(buf[:n])
	// Drive timeouts from a polling loop:
	//   link.Tick(time.Now())
	// Send a frame; resolution arrives via WithSendResolvedHandler.
	if err := link.Send(0x01, []byte{0x10, 0x20, 0x30}); err != nil {
	    log.Fatal(err)
	}

Most applications want the session package instead, which owns the read
pump and tick loop and exposes a blocking, context-aware Send.

Known limitation: the protocol performs no byte stuffing, so a payload
that happens to contain the start marker can, after a corrupted frame,
cause the receiver to lock onto a false frame boundary. The checksum
rejects almost all such candidates and the retry layer recovers the
rest, but applications needing hard guarantees should pick CRC16 over
the weaker XOR8 fold.
*/
package framelink
