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

// Package i2c provides a framelink transport over an I2C serial bridge.
//
// The expected peer is a bridge device (an I2C-attached UART FIFO such
// as the SC16IS7xx family, or a microcontroller emulating one) that
// prefixes every read with a single count byte stating how many payload
// bytes follow in the same transaction. Writes carry raw link bytes.
package i2c

import (
	"fmt"
	"time"

	framelink "github.com/FramelinkProject/go-framelink"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"
)

const (
	// Default bridge address.
	defaultAddr = 0x4D

	// Max clock frequency (400 kHz).
	maxClockFreq = 400 * physic.KiloHertz

	// Largest read transaction: count byte plus FIFO chunk.
	readChunk = 64
)

// Transport implements framelink.Transport and framelink.ByteSource
// over an I2C byte bridge
type Transport struct {
	dev     *i2c.Dev
	bus     i2c.BusCloser
	busName string
	timeout time.Duration
}

// Option configures a Transport before the bus is opened
type Option func(*config)

type config struct {
	addr uint16
}

// WithAddress sets the bridge's I2C address (default 0x4D)
func WithAddress(addr uint16) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// New opens an I2C transport on the given bus
func New(busName string, opts ...Option) (*Transport, error) {
	cfg := &config{addr: defaultAddr}
	for _, opt := range opts {
		opt(cfg)
	}

	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("failed to open I2C bus %s: %w", busName, err)
	}

	dev := &i2c.Dev{Addr: cfg.addr, Bus: bus}

	// Best effort; the bus falls back to its default speed.
	_ = bus.SetSpeed(maxClockFreq)

	return &Transport{
		dev:     dev,
		bus:     bus,
		busName: busName,
		timeout: 50 * time.Millisecond,
	}, nil
}

// WriteBytes transmits raw link bytes to the bridge
func (t *Transport) WriteBytes(p []byte) error {
	if t.dev == nil {
		return framelink.ErrTransportClosed
	}
	if err := t.dev.Tx(p, nil); err != nil {
		return framelink.NewTransportError("write", t.busName, err, framelink.ErrorTypeTransient)
	}
	return nil
}

// Read drains available bytes from the bridge FIFO. The bridge prefixes
// each transaction with a count byte; a count of zero means no data was
// waiting and Read returns 0, nil immediately (this transport is
// polled, see CapabilityPolledRead).
func (t *Transport) Read(p []byte) (int, error) {
	if t.dev == nil {
		return 0, framelink.ErrTransportClosed
	}

	chunk := len(p)
	if chunk > readChunk {
		chunk = readChunk
	}
	buf := make([]byte, 1+chunk)
	if err := t.dev.Tx(nil, buf); err != nil {
		return 0, framelink.NewTransportError("read", t.busName, err, framelink.ErrorTypeTransient)
	}

	available := int(buf[0])
	if available > chunk {
		available = chunk
	}
	return copy(p, buf[1:1+available]), nil
}

// SetTimeout sets the nominal I/O timeout. I2C transactions complete
// synchronously, so this only bounds how long callers should poll.
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	return nil
}

// IsConnected returns true if the transport is open
func (t *Transport) IsConnected() bool {
	return t.dev != nil
}

// Close closes the transport and releases the bus
func (t *Transport) Close() error {
	if t.dev == nil {
		return nil
	}
	t.dev = nil
	bus := t.bus
	t.bus = nil
	if err := bus.Close(); err != nil {
		return fmt.Errorf("failed to close I2C bus %s: %w", t.busName, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() framelink.TransportType {
	return framelink.TransportI2C
}

// HasCapability reports I2C-specific behaviors
func (*Transport) HasCapability(capability framelink.TransportCapability) bool {
	return capability == framelink.CapabilityPolledRead
}
