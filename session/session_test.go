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

package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	framelink "github.com/FramelinkProject/go-framelink"
)

// ackingPeer scripts a peer that acknowledges every ordinary frame it
// sees on the transport's write side.
func ackingPeer(t *testing.T, transport *framelink.MockTransport, sess **Session) func([]byte) error {
	t.Helper()
	return func(p []byte) error {
		frame, err := (*sess).Link().Codec().Decode(p)
		if err != nil {
			return err
		}
		cfg := (*sess).Link().Config()
		if frame.Command == cfg.AckCommand || frame.Command == cfg.NackCommand {
			return nil
		}
		ack, err := (*sess).Link().Codec().Encode(cfg.AckCommand, nil)
		if err != nil {
			return err
		}
		transport.QueueRead(ack)
		return nil
	}
}

func runSession(t *testing.T, sess *Session) (context.CancelFunc, chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	finished := make(chan struct{})
	go func() {
		done <- sess.Run(ctx)
		close(finished)
	}()
	t.Cleanup(func() {
		cancel()
		select {
		case <-finished:
		case <-time.After(2 * time.Second):
			t.Error("session did not stop")
		}
	})
	return cancel, done
}

func TestSendBlocksUntilAcknowledged(t *testing.T) {
	t.Parallel()
	transport := framelink.NewMockTransport()
	var sess *Session
	transport.WriteFunc = ackingPeer(t, transport, &sess)

	sess, err := New(transport, nil)
	require.NoError(t, err)
	runSession(t, sess)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, sess.Send(ctx, 0x01, []byte{0x10, 0x20, 0x30}))
	assert.False(t, sess.Link().Busy())
	assert.Equal(t, uint64(1), sess.Link().Stats().AcksReceived)
}

func TestSendFailsWhenPeerSilent(t *testing.T) {
	t.Parallel()
	transport := framelink.NewMockTransport()
	sess, err := New(transport, nil,
		framelink.WithTimeout(20*time.Millisecond),
		framelink.WithMaxRetries(1),
	)
	require.NoError(t, err)
	runSession(t, sess)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = sess.Send(ctx, 0x01, nil)
	require.ErrorIs(t, err, framelink.ErrRetriesExhausted)
	assert.Equal(t, 2, transport.WriteCount(), "initial send plus one retry")
}

func TestSendContextCancellation(t *testing.T) {
	t.Parallel()
	transport := framelink.NewMockTransport()
	sess, err := New(transport, nil,
		framelink.WithTimeout(time.Minute), // never times out on its own
	)
	require.NoError(t, err)
	runSession(t, sess)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err = sess.Send(ctx, 0x01, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, sess.Link().Busy(), "cancellation must abort the pending send")
}

func TestInboundFramesOnChannel(t *testing.T) {
	t.Parallel()
	transport := framelink.NewMockTransport()
	sess, err := New(transport, nil)
	require.NoError(t, err)
	runSession(t, sess)

	wire, err := sess.Link().Codec().Encode(0x21, []byte{0xCA, 0xFE})
	require.NoError(t, err)
	transport.QueueRead(wire)

	select {
	case frame := <-sess.Frames():
		assert.Equal(t, byte(0x21), frame.Command)
		assert.Equal(t, []byte{0xCA, 0xFE}, frame.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("inbound frame never delivered")
	}
	assert.Zero(t, sess.DroppedFrames())
}

func TestRunStopsWhenTransportCloses(t *testing.T) {
	t.Parallel()
	transport := framelink.NewMockTransport()
	sess, err := New(transport, nil)
	require.NoError(t, err)
	_, done := runSession(t, sess)

	require.NoError(t, sess.Close())
	select {
	case err := <-done:
		require.ErrorIs(t, err, framelink.ErrTransportClosed)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestNewRejectsTransportWithoutReads(t *testing.T) {
	t.Parallel()
	_, err := New(writeOnlyTransport{}, nil)
	require.Error(t, err)
}

type writeOnlyTransport struct{}

func (writeOnlyTransport) WriteBytes([]byte) error        { return nil }
func (writeOnlyTransport) SetTimeout(time.Duration) error { return nil }
func (writeOnlyTransport) IsConnected() bool              { return true }
func (writeOnlyTransport) Close() error                   { return nil }
func (writeOnlyTransport) Type() framelink.TransportType  { return framelink.TransportMock }
