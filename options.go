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

// Option is a functional option for configuring a Link
type Option func(*Link) error

// WithConfig replaces the whole link configuration
func WithConfig(config *Config) Option {
	return func(l *Link) error {
		if config == nil {
			return fmt.Errorf("%w: nil config", ErrInvalidConfig)
		}
		cfg := *config
		l.config = &cfg
		return nil
	}
}

// WithStartMarker sets the 2-byte frame start marker
func WithStartMarker(first, second byte) Option {
	return func(l *Link) error {
		l.config.StartMarker = [2]byte{first, second}
		return nil
	}
}

// WithMaxPayload sets the payload budget in bytes
func WithMaxPayload(maxPayload int) Option {
	return func(l *Link) error {
		if maxPayload < 0 {
			return fmt.Errorf("%w: negative max payload", ErrInvalidConfig)
		}
		l.config.MaxPayload = maxPayload
		return nil
	}
}

// WithChecksum selects the checksum algorithm
func WithChecksum(algorithm ChecksumAlgorithm) Option {
	return func(l *Link) error {
		switch algorithm {
		case ChecksumXOR8, ChecksumCRC8, ChecksumCRC16:
			l.config.Checksum = algorithm
			return nil
		default:
			return fmt.Errorf("%w: unknown checksum algorithm %d", ErrInvalidConfig, algorithm)
		}
	}
}

// WithMaxRetries sets how many times an unacknowledged frame is
// retransmitted after the initial send
func WithMaxRetries(maxRetries int) Option {
	return func(l *Link) error {
		if maxRetries < 0 {
			return fmt.Errorf("%w: negative max retries", ErrInvalidConfig)
		}
		l.config.MaxRetries = maxRetries
		return nil
	}
}

// WithTimeout sets the per-transmission acknowledgment deadline
func WithTimeout(timeout time.Duration) Option {
	return func(l *Link) error {
		if timeout <= 0 {
			return fmt.Errorf("%w: non-positive timeout", ErrInvalidConfig)
		}
		l.config.Timeout = timeout
		return nil
	}
}

// WithControlCommands sets the reserved ACK and NACK command IDs.
// They must be distinct and outside the application command space.
func WithControlCommands(ack, nack byte) Option {
	return func(l *Link) error {
		l.config.AckCommand = ack
		l.config.NackCommand = nack
		return nil
	}
}

// WithAutoAck makes the link itself acknowledge every delivered
// ordinary frame. Off by default; most applications acknowledge at
// their own protocol level via SendAck/SendNack.
func WithAutoAck(autoAck bool) Option {
	return func(l *Link) error {
		l.config.AutoAck = autoAck
		return nil
	}
}

// WithFrameHandler sets the handler for ordinary inbound frames
func WithFrameHandler(handler FrameHandler) Option {
	return func(l *Link) error {
		l.onFrame = handler
		return nil
	}
}

// WithSendResolvedHandler sets the handler that receives the outcome of
// each reliable send: nil on acknowledgment, ErrRetriesExhausted on
// definite failure.
func WithSendResolvedHandler(handler SendResolvedHandler) Option {
	return func(l *Link) error {
		l.onResolved = handler
		return nil
	}
}
