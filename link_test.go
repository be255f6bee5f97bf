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
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resolutionRecorder collects send outcomes delivered by the link
type resolutionRecorder struct {
	mu      sync.Mutex
	results []error
}

func (r *resolutionRecorder) handler(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, err)
}

func (r *resolutionRecorder) all() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error{}, r.results...)
}

func newTestLink(t *testing.T, opts ...Option) (*Link, *MockTransport, *resolutionRecorder) {
	t.Helper()
	transport := NewMockTransport()
	recorder := &resolutionRecorder{}
	opts = append(opts, WithSendResolvedHandler(recorder.handler))
	link, err := New(transport, opts...)
	require.NoError(t, err)
	return link, transport, recorder
}

// ackBytes encodes an ACK control frame as the peer would send it
func ackBytes(t *testing.T, link *Link) []byte {
	t.Helper()
	wire, err := link.Codec().Encode(link.Config().AckCommand, nil)
	require.NoError(t, err)
	return wire
}

func nackBytes(t *testing.T, link *Link) []byte {
	t.Helper()
	wire, err := link.Codec().Encode(link.Config().NackCommand, nil)
	require.NoError(t, err)
	return wire
}

func TestSendAndAcknowledge(t *testing.T) {
	t.Parallel()
	link, transport, recorder := newTestLink(t)

	require.NoError(t, link.Send(0x01, []byte{0x10, 0x20, 0x30}))
	assert.True(t, link.Busy())
	assert.Equal(t, 1, transport.WriteCount())

	link.FeedBytes(ackBytes(t, link))

	assert.False(t, link.Busy())
	require.Equal(t, []error{nil}, recorder.all())

	stats := link.Stats()
	assert.Equal(t, uint64(1), stats.FramesSent)
	assert.Equal(t, uint64(1), stats.AcksReceived)
	assert.Equal(t, uint64(0), stats.Retransmissions)
}

func TestSendWhileBusy(t *testing.T) {
	t.Parallel()
	link, _, _ := newTestLink(t)

	require.NoError(t, link.Send(0x01, nil))
	err := link.Send(0x02, nil)
	require.ErrorIs(t, err, ErrLinkBusy)

	// The link frees up once the first frame resolves.
	link.FeedBytes(ackBytes(t, link))
	require.NoError(t, link.Send(0x02, nil))
}

func TestSendRejectsReservedCommands(t *testing.T) {
	t.Parallel()
	link, _, _ := newTestLink(t)

	require.ErrorIs(t, link.Send(DefaultAckCommand, nil), ErrReservedCommand)
	require.ErrorIs(t, link.Send(DefaultNackCommand, nil), ErrReservedCommand)
}

func TestSendRejectsOversizedPayload(t *testing.T) {
	t.Parallel()
	link, transport, _ := newTestLink(t)

	err := link.Send(0x01, make([]byte, DefaultMaxPayload+1))
	require.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Zero(t, transport.WriteCount())
	assert.False(t, link.Busy())
}

// With maxRetries = 3 and no acknowledgment ever arriving, the link
// performs exactly 4 transmissions (1 initial + 3 retries) and reports
// failure no earlier than 3 timeouts after the initial send.
func TestRetryExhaustion(t *testing.T) {
	t.Parallel()
	timeout := 100 * time.Millisecond
	link, transport, recorder := newTestLink(t,
		WithMaxRetries(3), WithTimeout(timeout))

	base := time.Now()
	require.NoError(t, link.Send(0x01, []byte{0xAB}))
	assert.Equal(t, 1, transport.WriteCount())

	// Before the deadline nothing happens.
	link.Tick(base.Add(timeout / 2))
	assert.Equal(t, 1, transport.WriteCount())

	// Each elapsed deadline triggers one retransmission. The synthetic
	// tick times leave a wide margin over the deadline armed by Send.
	link.Tick(base.Add(timeout + timeout/2))
	assert.Equal(t, 2, transport.WriteCount())
	link.Tick(base.Add(3 * timeout))
	assert.Equal(t, 3, transport.WriteCount())
	link.Tick(base.Add(9 * timeout / 2))
	assert.Equal(t, 4, transport.WriteCount())
	assert.Empty(t, recorder.all(), "failure reported before retries ran out")

	// Fourth deadline: out of retries, definite failure.
	link.Tick(base.Add(6 * timeout))
	assert.Equal(t, 4, transport.WriteCount())
	results := recorder.all()
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0], ErrRetriesExhausted)
	assert.False(t, link.Busy())

	// All retransmissions carry identical bytes.
	writes := transport.Writes()
	for i := 1; i < len(writes); i++ {
		assert.Equal(t, writes[0], writes[i])
	}
}

func TestNackTriggersImmediateRetransmit(t *testing.T) {
	t.Parallel()
	link, transport, recorder := newTestLink(t, WithMaxRetries(3))

	require.NoError(t, link.Send(0x01, []byte{0x5A}))
	assert.Equal(t, 1, transport.WriteCount())

	// No tick, no deadline: the NACK alone forces the retransmission.
	link.FeedBytes(nackBytes(t, link))
	assert.Equal(t, 2, transport.WriteCount())
	assert.True(t, link.Busy())
	assert.Empty(t, recorder.all())

	link.FeedBytes(ackBytes(t, link))
	require.Equal(t, []error{nil}, recorder.all())
}

func TestNackAfterRetriesExhausted(t *testing.T) {
	t.Parallel()
	link, transport, recorder := newTestLink(t, WithMaxRetries(0))

	require.NoError(t, link.Send(0x01, nil))
	assert.Equal(t, 1, transport.WriteCount())

	link.FeedBytes(nackBytes(t, link))
	assert.Equal(t, 1, transport.WriteCount(), "retransmitted with zero retries")

	results := recorder.all()
	require.Len(t, results, 1)
	require.ErrorIs(t, results[0], ErrRetriesExhausted)
	require.ErrorIs(t, results[0], ErrNACKReceived)
	assert.False(t, link.Busy())
}

func TestStaleAcknowledgmentsIgnored(t *testing.T) {
	t.Parallel()
	link, _, recorder := newTestLink(t)

	// ACK and NACK with nothing outstanding are dropped.
	link.FeedBytes(ackBytes(t, link))
	link.FeedBytes(nackBytes(t, link))
	assert.Empty(t, recorder.all())
	assert.Equal(t, uint64(2), link.Stats().StaleAcksIgnored)

	// Duplicate ACK for an already-resolved send is likewise dropped.
	require.NoError(t, link.Send(0x01, nil))
	link.FeedBytes(ackBytes(t, link))
	link.FeedBytes(ackBytes(t, link))
	require.Equal(t, []error{nil}, recorder.all())
	assert.Equal(t, uint64(3), link.Stats().StaleAcksIgnored)
}

func TestInboundFrameDelivered(t *testing.T) {
	t.Parallel()
	var delivered []*Frame
	transport := NewMockTransport()
	link, err := New(transport, WithFrameHandler(func(f *Frame) {
		delivered = append(delivered, f)
	}))
	require.NoError(t, err)

	wire, err := link.Codec().Encode(0x21, []byte{0x01, 0x02})
	require.NoError(t, err)
	link.FeedBytes(wire)

	require.Len(t, delivered, 1)
	assert.Equal(t, byte(0x21), delivered[0].Command)
	assert.Equal(t, []byte{0x01, 0x02}, delivered[0].Payload)
	// No AutoAck: nothing was written back.
	assert.Zero(t, transport.WriteCount())
	assert.Equal(t, uint64(1), link.Stats().FramesDelivered)
}

func TestAutoAck(t *testing.T) {
	t.Parallel()
	transport := NewMockTransport()
	link, err := New(transport, WithAutoAck(true))
	require.NoError(t, err)

	wire, err := link.Codec().Encode(0x21, []byte{0x01})
	require.NoError(t, err)
	link.FeedBytes(wire)

	writes := transport.Writes()
	require.Len(t, writes, 1)

	expected, err := link.Codec().Encode(DefaultAckCommand, nil)
	require.NoError(t, err)
	assert.Equal(t, expected, writes[0])
}

func TestAbortClearsPendingSilently(t *testing.T) {
	t.Parallel()
	link, transport, recorder := newTestLink(t, WithTimeout(50*time.Millisecond))

	require.NoError(t, link.Send(0x01, nil))
	link.Abort()
	assert.False(t, link.Busy())

	// A late tick finds nothing to retransmit or fail.
	link.Tick(time.Now().Add(time.Second))
	assert.Equal(t, 1, transport.WriteCount())
	assert.Empty(t, recorder.all())

	// The link is immediately reusable.
	require.NoError(t, link.Send(0x02, nil))
}

func TestSendTransportWriteFailure(t *testing.T) {
	t.Parallel()
	transport := NewMockTransport()
	transport.WriteFunc = func([]byte) error { return errors.New("wire fell out") }
	link, err := New(transport)
	require.NoError(t, err)

	err = link.Send(0x01, nil)
	require.Error(t, err)
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.Equal(t, "write", transportErr.Op)
	assert.True(t, transportErr.Retryable)
	assert.False(t, link.Busy(), "failed send must not leave the link busy")
}

func TestHandlersMayCallBackIntoLink(t *testing.T) {
	t.Parallel()
	transport := NewMockTransport()
	var link *Link
	var err error
	link, err = New(transport,
		WithFrameHandler(func(*Frame) {
			// Reply from inside the handler; deadlocks if the link held
			// its mutex across callbacks.
			_ = link.Send(0x30, nil)
		}),
	)
	require.NoError(t, err)

	wire, err := link.Codec().Encode(0x21, nil)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		link.FeedBytes(wire)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("frame handler deadlocked against the link mutex")
	}
	assert.Equal(t, 1, transport.WriteCount())
}

func TestNewValidatesConfig(t *testing.T) {
	t.Parallel()
	transport := NewMockTransport()

	_, err := New(transport, WithControlCommands(0x06, 0x06))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(transport, WithMaxRetries(-1))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(transport, WithChecksum(ChecksumAlgorithm(42)))
	require.ErrorIs(t, err, ErrInvalidConfig)

	_, err = New(transport, WithTimeout(0))
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCustomControlCommands(t *testing.T) {
	t.Parallel()
	transport := NewMockTransport()
	recorder := &resolutionRecorder{}
	link, err := New(transport,
		WithControlCommands(0xF0, 0xF1),
		WithSendResolvedHandler(recorder.handler),
	)
	require.NoError(t, err)

	// The defaults are ordinary commands now.
	require.NoError(t, link.Send(DefaultAckCommand, nil))

	ack, err := link.Codec().Encode(0xF0, nil)
	require.NoError(t, err)
	link.FeedBytes(ack)
	require.Equal(t, []error{nil}, recorder.all())
}
