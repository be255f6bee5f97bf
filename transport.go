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

import "time"

// Transport is the write side of a raw byte link. The protocol core
// only needs "send these bytes"; delivery of inbound bytes happens by
// whoever owns the read side calling Link.FeedByte/FeedBytes (or by the
// session package pumping a ByteSource).
//
// This can be implemented by UART, I2C or in-memory backends.
type Transport interface {
	// WriteBytes hands raw bytes to the link. It must either queue or
	// transmit them in order; partial writes are errors.
	WriteBytes(p []byte) error

	// SetTimeout sets the I/O timeout for the transport
	SetTimeout(timeout time.Duration) error

	// IsConnected returns true if the transport is usable
	IsConnected() bool

	// Close closes the transport
	Close() error

	// Type returns the transport type
	Type() TransportType
}

// ByteSource is implemented by transports that can also deliver inbound
// bytes. Read follows io.Reader semantics: it blocks until at least one
// byte is available, the configured timeout elapses (returning 0, nil)
// or the transport fails.
type ByteSource interface {
	Read(p []byte) (int, error)
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportI2C represents I2C bus transport.
	TransportI2C TransportType = "i2c"
	// TransportMock represents an in-memory transport for testing
	TransportMock TransportType = "mock"
)

// TransportCapability represents specific behaviors of a transport
type TransportCapability string

const (
	// CapabilityPolledRead indicates the transport cannot block on
	// inbound data and must be polled; read pumps should idle briefly
	// after an empty read instead of spinning.
	CapabilityPolledRead TransportCapability = "polled_read"
)

// TransportCapabilityChecker is implemented by transports that can
// report capabilities
type TransportCapabilityChecker interface {
	// HasCapability returns true if the transport has the capability
	HasCapability(capability TransportCapability) bool
}

// HasCapability reports whether transport declares capability. A
// transport that does not implement TransportCapabilityChecker has no
// declared capabilities.
func HasCapability(transport Transport, capability TransportCapability) bool {
	if checker, ok := transport.(TransportCapabilityChecker); ok {
		return checker.HasCapability(capability)
	}
	return false
}
