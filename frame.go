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

package framelink

import (
	"fmt"
	"time"
)

// Wire format defaults
const (
	// DefaultStartByte1 and DefaultStartByte2 form the default frame
	// start marker.
	DefaultStartByte1 = 0xAA
	DefaultStartByte2 = 0x55

	// DefaultMaxPayload is the default payload budget in bytes.
	DefaultMaxPayload = 32

	// DefaultAckCommand and DefaultNackCommand are the reserved control
	// command IDs (ASCII ACK and NAK).
	DefaultAckCommand  = 0x06
	DefaultNackCommand = 0x15
)

// headerSize covers start marker (2) plus the length byte. The length
// field itself counts command + payload + checksum.
const headerSize = 3

// Frame is a single decoded protocol message
type Frame struct {
	timestamp time.Time
	Payload   []byte
	Command   byte
}

// Timestamp returns when the frame was decoded
func (f *Frame) Timestamp() time.Time {
	return f.timestamp
}

// Codec encodes and decodes the wire byte layout:
//
//	start(2) | length(1) | command(1) | payload | checksum(1-2)
//
// A Codec is immutable after construction and safe for concurrent use.
type Codec struct {
	start      [2]byte
	maxPayload int
	checksum   ChecksumAlgorithm
}

// NewCodec creates a codec from the given configuration
func NewCodec(cfg *Config) (*Codec, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxPayload < 0 {
		return nil, fmt.Errorf("%w: negative max payload %d", ErrInvalidConfig, cfg.MaxPayload)
	}
	// length is a single byte counting command + payload + checksum
	if 1+cfg.MaxPayload+cfg.Checksum.Size() > 0xFF {
		return nil, fmt.Errorf("%w: max payload %d does not fit the length byte", ErrInvalidConfig, cfg.MaxPayload)
	}
	return &Codec{
		start:      cfg.StartMarker,
		maxPayload: cfg.MaxPayload,
		checksum:   cfg.Checksum,
	}, nil
}

// StartMarker returns the 2-byte frame start marker
func (c *Codec) StartMarker() [2]byte {
	return c.start
}

// MaxPayload returns the payload budget in bytes
func (c *Codec) MaxPayload() int {
	return c.maxPayload
}

// Checksum returns the configured checksum algorithm
func (c *Codec) Checksum() ChecksumAlgorithm {
	return c.checksum
}

// minLength and maxLength bound the wire length field: at least the
// command byte plus checksum, at most that plus a full payload.
func (c *Codec) minLength() int {
	return 1 + c.checksum.Size()
}

func (c *Codec) maxLength() int {
	return 1 + c.maxPayload + c.checksum.Size()
}

// Encode builds the wire bytes for a (command, payload) pair.
// Returns ErrPayloadTooLarge when payload exceeds the budget.
func (c *Codec) Encode(command byte, payload []byte) ([]byte, error) {
	if len(payload) > c.maxPayload {
		return nil, fmt.Errorf("%w: %d bytes (max %d)", ErrPayloadTooLarge, len(payload), c.maxPayload)
	}

	csize := c.checksum.Size()
	length := 1 + len(payload) + csize

	wire := make([]byte, 0, headerSize+length)
	wire = append(wire, c.start[0], c.start[1], byte(length), command)
	wire = append(wire, payload...)

	sum := c.checksum.Compute(wire[headerSize : headerSize+1+len(payload)])
	if csize == 2 {
		wire = append(wire, byte(sum>>8), byte(sum))
	} else {
		wire = append(wire, byte(sum))
	}
	return wire, nil
}

// Decode parses a span already delimited by the receiver: exactly
// length+3 bytes starting at the start marker. It recomputes the
// checksum over command||payload and returns ErrChecksumMismatch on
// disagreement. The length byte is not trusted beyond the bound the
// caller already enforced.
func (c *Codec) Decode(span []byte) (*Frame, error) {
	if len(span) < headerSize+c.minLength() {
		return nil, fmt.Errorf("%w: span too short (%d bytes)", ErrFrameCorrupted, len(span))
	}
	if span[0] != c.start[0] || span[1] != c.start[1] {
		return nil, fmt.Errorf("%w: missing start marker", ErrFrameCorrupted)
	}

	length := int(span[2])
	if length < c.minLength() || length > c.maxLength() {
		return nil, fmt.Errorf("%w: length %d", ErrLengthOverflow, length)
	}
	if len(span) != headerSize+length {
		return nil, fmt.Errorf("%w: span is %d bytes, length field says %d",
			ErrFrameCorrupted, len(span), headerSize+length)
	}

	csize := c.checksum.Size()
	body := span[headerSize : len(span)-csize]

	var claimed uint16
	if csize == 2 {
		claimed = uint16(span[len(span)-2])<<8 | uint16(span[len(span)-1])
	} else {
		claimed = uint16(span[len(span)-1])
	}

	if !c.checksum.Verify(body, claimed) {
		return nil, fmt.Errorf("%w: computed %04X, frame carries %04X",
			ErrChecksumMismatch, c.checksum.Compute(body), claimed)
	}

	payload := make([]byte, len(body)-1)
	copy(payload, body[1:])

	return &Frame{
		Command:   body[0],
		Payload:   payload,
		timestamp: time.Now(),
	}, nil
}
