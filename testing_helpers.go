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
	"sync"
	"time"
)

// MockTransport is an in-memory transport for tests. Writes are
// recorded; inbound bytes are scripted with QueueRead. All methods are
// safe for concurrent use.
type MockTransport struct {
	// WriteFunc, if set, runs after each write is recorded. It is
	// called without the transport lock held, so it may QueueRead to
	// script a peer's reply; its error becomes the write's result.
	WriteFunc func(p []byte) error

	mu      sync.Mutex
	writes  [][]byte
	inbound []byte
	closed  bool
}

// NewMockTransport creates a mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{}
}

// WriteBytes records the written bytes
func (m *MockTransport) WriteBytes(p []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrTransportClosed
	}
	buf := make([]byte, len(p))
	copy(buf, p)
	m.writes = append(m.writes, buf)
	writeFunc := m.WriteFunc
	m.mu.Unlock()

	if writeFunc != nil {
		return writeFunc(buf)
	}
	return nil
}

// Writes returns every recorded write in order
func (m *MockTransport) Writes() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	writes := make([][]byte, len(m.writes))
	copy(writes, m.writes)
	return writes
}

// WriteCount returns the number of recorded writes
func (m *MockTransport) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

// QueueRead scripts bytes to be delivered by subsequent Read calls
func (m *MockTransport) QueueRead(p []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inbound = append(m.inbound, p...)
}

// Read delivers previously queued bytes. It never blocks; with nothing
// queued it returns 0, nil like a polled transport whose timeout
// elapsed.
func (m *MockTransport) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return 0, ErrTransportClosed
	}
	n := copy(p, m.inbound)
	m.inbound = m.inbound[n:]
	return n, nil
}

// SetTimeout is a no-op for the mock
func (*MockTransport) SetTimeout(_ time.Duration) error {
	return nil
}

// IsConnected returns true until the mock is closed
func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

// Close marks the transport closed
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Type returns the mock transport type
func (*MockTransport) Type() TransportType {
	return TransportMock
}

// HasCapability reports the mock as a polled-read transport
func (*MockTransport) HasCapability(capability TransportCapability) bool {
	return capability == CapabilityPolledRead
}
