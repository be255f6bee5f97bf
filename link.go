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
	"sync"
	"time"
)

// Reliability defaults
const (
	// DefaultMaxRetries is the number of retransmissions after the
	// initial send.
	DefaultMaxRetries = 3
	// DefaultTimeout is how long a transmission waits for ACK/NACK
	// before being retransmitted.
	DefaultTimeout = 150 * time.Millisecond
)

// Config contains the link-level protocol configuration. Both ends of
// a link must agree on StartMarker, MaxPayload, Checksum and the
// control command IDs.
type Config struct {
	// StartMarker is the 2-byte frame start sequence
	StartMarker [2]byte
	// MaxPayload is the payload budget in bytes
	MaxPayload int
	// Checksum selects the integrity algorithm
	Checksum ChecksumAlgorithm
	// MaxRetries is the number of retransmissions after the initial send
	MaxRetries int
	// Timeout is the per-transmission acknowledgment deadline
	Timeout time.Duration
	// AckCommand and NackCommand are the reserved control command IDs
	AckCommand  byte
	NackCommand byte
	// AutoAck makes the link acknowledge every delivered ordinary frame
	// itself. Off by default: acknowledgment is application policy.
	AutoAck bool
}

// DefaultConfig returns the default link configuration
func DefaultConfig() *Config {
	return &Config{
		StartMarker: [2]byte{DefaultStartByte1, DefaultStartByte2},
		MaxPayload:  DefaultMaxPayload,
		Checksum:    ChecksumXOR8,
		MaxRetries:  DefaultMaxRetries,
		Timeout:     DefaultTimeout,
		AckCommand:  DefaultAckCommand,
		NackCommand: DefaultNackCommand,
	}
}

// pendingTransmission is the single frame awaiting acknowledgment.
// At most one exists per link; Send is rejected with ErrLinkBusy while
// it does. Resolved on ACK/NACK, retried on deadline, destroyed when
// retries run out.
type pendingTransmission struct {
	deadline    time.Time
	wire        []byte
	command     byte
	retriesLeft int
}

// LinkStats counts reliability-layer activity since link creation
type LinkStats struct {
	FramesSent        uint64
	FramesDelivered   uint64
	Retransmissions   uint64
	AcksReceived      uint64
	NacksReceived     uint64
	Timeouts          uint64
	DeliveryFailures  uint64
	StaleAcksIgnored  uint64
}

// FrameHandler receives ordinary (non-control) inbound frames
type FrameHandler func(*Frame)

// SendResolvedHandler receives the outcome of a reliable send: nil on
// acknowledgment, ErrRetriesExhausted on definite failure.
type SendResolvedHandler func(error)

// Link is the reliability controller for one point-to-point framed
// link. It owns the receiver state machine, the at-most-one outstanding
// transmission and the retry/timeout policy.
//
// Send, FeedByte, FeedBytes, Tick and Abort are all non-blocking and
// safe for concurrent use: the receive path typically runs on a
// different goroutine than the send path. Handlers are invoked outside
// the link mutex, so they may call back into the link.
type Link struct {
	mu        sync.Mutex
	transport Transport
	codec     *Codec
	receiver  *Receiver
	config    *Config
	pending   *pendingTransmission
	ackWire   []byte
	nackWire  []byte

	onFrame    FrameHandler
	onResolved SendResolvedHandler

	stats LinkStats
}

// New creates a link over the given transport
func New(transport Transport, opts ...Option) (*Link, error) {
	link := &Link{
		transport: transport,
		config:    DefaultConfig(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(link); err != nil {
			return nil, err
		}
	}

	if link.config.AckCommand == link.config.NackCommand {
		return nil, fmt.Errorf("%w: ACK and NACK share command ID %02X",
			ErrInvalidConfig, link.config.AckCommand)
	}
	if link.config.MaxRetries < 0 {
		return nil, fmt.Errorf("%w: negative max retries", ErrInvalidConfig)
	}
	if link.config.Timeout <= 0 {
		return nil, fmt.Errorf("%w: non-positive timeout", ErrInvalidConfig)
	}

	codec, err := NewCodec(link.config)
	if err != nil {
		return nil, err
	}
	link.codec = codec
	link.receiver = NewReceiver(codec)

	// Control frames never change; encode them once.
	if link.ackWire, err = codec.Encode(link.config.AckCommand, nil); err != nil {
		return nil, err
	}
	if link.nackWire, err = codec.Encode(link.config.NackCommand, nil); err != nil {
		return nil, err
	}

	return link, nil
}

// Codec returns the link's frame codec
func (l *Link) Codec() *Codec {
	return l.codec
}

// Config returns a copy of the link configuration
func (l *Link) Config() Config {
	return *l.config
}

// Stats returns a snapshot of the reliability counters
func (l *Link) Stats() LinkStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.stats
}

// ReceiverStats returns a snapshot of the synchronizer counters
func (l *Link) ReceiverStats() ReceiverStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.receiver.Stats()
}

// Busy reports whether a frame is currently awaiting acknowledgment
func (l *Link) Busy() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending != nil
}

// Send encodes and transmits one frame and arms the retry machinery.
// It fails synchronously with ErrLinkBusy while a previous frame is
// still unacknowledged, ErrReservedCommand for the ACK/NACK IDs and
// ErrPayloadTooLarge for oversized payloads. The eventual outcome is
// reported through the send-resolved handler.
func (l *Link) Send(command byte, payload []byte) error {
	if command == l.config.AckCommand || command == l.config.NackCommand {
		return fmt.Errorf("%w: %02X", ErrReservedCommand, command)
	}

	wire, err := l.codec.Encode(command, payload)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pending != nil {
		return ErrLinkBusy
	}

	if err := l.transmit(wire); err != nil {
		return err
	}
	l.stats.FramesSent++

	l.pending = &pendingTransmission{
		wire:        wire,
		command:     command,
		retriesLeft: l.config.MaxRetries,
		deadline:    time.Now().Add(l.config.Timeout),
	}
	debugf("link: sent %02X (%d bytes), awaiting ack", command, len(payload))
	return nil
}

// FeedByte consumes one raw byte from the transport's read side.
// Call it for every byte as it arrives; it never blocks.
func (l *Link) FeedByte(b byte) {
	l.mu.Lock()
	frame := l.receiver.Feed(b)
	if frame == nil {
		l.mu.Unlock()
		return
	}
	deliver, resolved, hasResult, result := l.dispatchLocked(frame)
	l.mu.Unlock()

	l.fire(deliver, resolved, hasResult, result)
}

// FeedBytes consumes a chunk of raw bytes from the transport's read side
func (l *Link) FeedBytes(data []byte) {
	for _, b := range data {
		l.FeedByte(b)
	}
}

// Tick drives the timeout machinery and must be called periodically by
// the surrounding scheduling loop. A transmission past its deadline is
// retransmitted while retries remain; afterwards the send resolves as
// ErrRetriesExhausted.
func (l *Link) Tick(now time.Time) {
	l.mu.Lock()

	p := l.pending
	if p == nil || now.Before(p.deadline) {
		l.mu.Unlock()
		return
	}
	l.stats.Timeouts++

	if p.retriesLeft > 0 {
		p.retriesLeft--
		p.deadline = now.Add(l.config.Timeout)
		l.retransmitLocked(p)
		l.mu.Unlock()
		return
	}

	// Out of retries: definite failure.
	l.pending = nil
	l.stats.DeliveryFailures++
	resolved := l.onResolved
	l.mu.Unlock()

	debugf("link: command %02X failed, retries exhausted", p.command)
	if resolved != nil {
		resolved(ErrRetriesExhausted)
	}
}

// Abort clears any outstanding transmission without reporting failure.
// Used on link reset; bytes already handed to the transport are not
// recalled.
func (l *Link) Abort() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = nil
	l.receiver.Reset()
}

// dispatchLocked routes a validated frame. Called with the mutex held;
// returns work to perform after unlocking so handlers never run under
// the lock.
func (l *Link) dispatchLocked(frame *Frame) (deliver *Frame, resolved SendResolvedHandler, hasResult bool, result error) {
	switch frame.Command {
	case l.config.AckCommand:
		if l.pending == nil {
			l.stats.StaleAcksIgnored++
			debugln("link: ignoring ACK with no transmission outstanding")
			return nil, nil, false, nil
		}
		l.stats.AcksReceived++
		l.pending = nil
		return nil, l.onResolved, true, nil

	case l.config.NackCommand:
		if l.pending == nil {
			l.stats.StaleAcksIgnored++
			debugln("link: ignoring NACK with no transmission outstanding")
			return nil, nil, false, nil
		}
		l.stats.NacksReceived++
		p := l.pending
		if p.retriesLeft > 0 {
			// NACK fast path: retransmit now instead of waiting for
			// the deadline.
			p.retriesLeft--
			p.deadline = time.Now().Add(l.config.Timeout)
			l.retransmitLocked(p)
			return nil, nil, false, nil
		}
		l.pending = nil
		l.stats.DeliveryFailures++
		return nil, l.onResolved, true, fmt.Errorf("%w: %w", ErrRetriesExhausted, ErrNACKReceived)

	default:
		l.stats.FramesDelivered++
		if l.config.AutoAck {
			if err := l.transmit(l.ackWire); err != nil {
				debugf("link: auto-ack failed: %v", err)
			}
		}
		return frame, nil, false, nil
	}
}

// fire runs handler work collected by dispatchLocked
func (l *Link) fire(deliver *Frame, resolved SendResolvedHandler, hasResult bool, result error) {
	if deliver != nil && l.onFrame != nil {
		l.onFrame(deliver)
	}
	if hasResult && resolved != nil {
		resolved(result)
	}
}

// SendNack transmits a NACK control frame, asking the peer to
// retransmit its last frame. Exposed for applications that own
// acknowledgment policy (AutoAck disabled).
func (l *Link) SendNack() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transmit(l.nackWire)
}

// SendAck transmits an ACK control frame. Exposed for applications
// that own acknowledgment policy (AutoAck disabled).
func (l *Link) SendAck() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.transmit(l.ackWire)
}

func (l *Link) retransmitLocked(p *pendingTransmission) {
	l.stats.Retransmissions++
	debugf("link: retransmitting %02X (%d retries left)", p.command, p.retriesLeft)
	if err := l.transmit(p.wire); err != nil {
		// The deadline is already refreshed; a failed retransmission
		// is indistinguishable from a lost frame and handled by the
		// next tick.
		debugf("link: retransmission failed: %v", err)
	}
}

func (l *Link) transmit(wire []byte) error {
	if err := l.transport.WriteBytes(wire); err != nil {
		return NewTransportError("write", string(l.transport.Type()), err, ErrorTypeTransient)
	}
	return nil
}
