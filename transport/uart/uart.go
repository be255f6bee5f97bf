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

// Package uart provides the serial port transport for framelink
package uart

import (
	"errors"
	"fmt"
	"time"

	framelink "github.com/FramelinkProject/go-framelink"
	"github.com/FramelinkProject/go-framelink/internal/retry"
	"go.bug.st/serial"
)

const (
	defaultBaudRate = 115200
	defaultTimeout  = 50 * time.Millisecond

	// Serial ports can be transiently busy right after enumeration or a
	// previous close; opening is retried briefly before giving up.
	openRetries    = 2
	openRetryDelay = 100 * time.Millisecond
)

// Transport implements framelink.Transport and framelink.ByteSource
// over a serial port
type Transport struct {
	port     serial.Port
	portName string
	baudRate int
	timeout  time.Duration
}

// Option configures a Transport before the port is opened
type Option func(*Transport)

// WithBaudRate sets the serial baud rate (default 115200)
func WithBaudRate(baudRate int) Option {
	return func(t *Transport) {
		t.baudRate = baudRate
	}
}

// New opens a serial port transport on the given port (8N1 framing)
func New(portName string, opts ...Option) (*Transport, error) {
	transport := &Transport{
		portName: portName,
		baudRate: defaultBaudRate,
		timeout:  defaultTimeout,
	}
	for _, opt := range opts {
		opt(transport)
	}

	mode := &serial.Mode{
		BaudRate: transport.baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := retry.WithRetry(retry.Config{
		Description: portName,
		MaxRetries:  openRetries,
		RetryDelay:  openRetryDelay,
	}, func() (serial.Port, bool, error) {
		port, err := serial.Open(portName, mode)
		if err != nil {
			if isPermanentOpenError(err) {
				return nil, false, fmt.Errorf("failed to open serial port %s: %w", portName, err)
			}
			return nil, true, nil
		}
		return port, false, nil
	})
	if err != nil {
		return nil, err
	}

	if err := port.SetReadTimeout(transport.timeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to set read timeout on %s: %w", portName, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("failed to flush serial port %s: %w", portName, err)
	}

	transport.port = port
	return transport, nil
}

// isPermanentOpenError separates "no such port" style failures, which
// retrying cannot fix, from transient busy/permission races.
func isPermanentOpenError(err error) bool {
	var portErr *serial.PortError
	if errors.As(err, &portErr) {
		switch portErr.Code() {
		case serial.PortNotFound, serial.InvalidSerialPort, serial.PermissionDenied:
			return true
		}
	}
	return false
}

// WriteBytes writes the full buffer to the port
func (t *Transport) WriteBytes(p []byte) error {
	if t.port == nil {
		return framelink.ErrTransportClosed
	}
	for written := 0; written < len(p); {
		n, err := t.port.Write(p[written:])
		if err != nil {
			return framelink.NewTransportError("write", t.portName, err, framelink.ErrorTypeTransient)
		}
		written += n
	}
	return nil
}

// Read reads available bytes from the port. It blocks until at least
// one byte arrives or the read timeout elapses; on timeout it returns
// 0, nil.
func (t *Transport) Read(p []byte) (int, error) {
	if t.port == nil {
		return 0, framelink.ErrTransportClosed
	}
	n, err := t.port.Read(p)
	if err != nil {
		return 0, framelink.NewTransportError("read", t.portName, err, framelink.ErrorTypeTransient)
	}
	return n, nil
}

// SetTimeout sets the read timeout for the port
func (t *Transport) SetTimeout(timeout time.Duration) error {
	t.timeout = timeout
	if t.port == nil {
		return nil
	}
	if err := t.port.SetReadTimeout(timeout); err != nil {
		return fmt.Errorf("failed to set read timeout on %s: %w", t.portName, err)
	}
	return nil
}

// PortName returns the device path the transport was opened on
func (t *Transport) PortName() string {
	return t.portName
}

// IsConnected returns true if the port is open
func (t *Transport) IsConnected() bool {
	return t.port != nil
}

// Close closes the serial port
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	port := t.port
	t.port = nil
	if err := port.Close(); err != nil {
		return fmt.Errorf("failed to close serial port %s: %w", t.portName, err)
	}
	return nil
}

// Type returns the transport type
func (*Transport) Type() framelink.TransportType {
	return framelink.TransportUART
}
