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

// Package session runs a framelink.Link against a transport that can
// deliver inbound bytes. It owns the read pump and the tick loop the
// core deliberately does not have, and turns the link's callback
// surface into a blocking, context-aware Send plus a channel of
// inbound frames.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	framelink "github.com/FramelinkProject/go-framelink"
)

// Config contains session tuning knobs
type Config struct {
	// TickInterval is how often the link's timeout machinery runs
	TickInterval time.Duration
	// PollIdle is how long the pump idles after an empty read on a
	// polled transport
	PollIdle time.Duration
	// ReadBuffer is the pump's read chunk size
	ReadBuffer int
	// FrameBuffer is the capacity of the inbound frame channel
	FrameBuffer int
}

// DefaultConfig returns default session configuration
func DefaultConfig() *Config {
	return &Config{
		TickInterval: 10 * time.Millisecond,
		PollIdle:     5 * time.Millisecond,
		ReadBuffer:   256,
		FrameBuffer:  16,
	}
}

// Session couples a Link with the goroutine that drives it
type Session struct {
	link      *framelink.Link
	transport framelink.Transport
	source    framelink.ByteSource
	config    *Config
	frames    chan *framelink.Frame

	sendMu sync.Mutex // serializes blocking sends

	mu      sync.Mutex
	pending chan error // armed while a blocking send waits
	dropped uint64
}

// New creates a session over the given transport. The transport must
// also implement framelink.ByteSource so the session can pump inbound
// bytes. Link options are passed through; frame delivery and send
// resolution are owned by the session.
func New(transport framelink.Transport, config *Config, opts ...framelink.Option) (*Session, error) {
	source, ok := transport.(framelink.ByteSource)
	if !ok {
		return nil, fmt.Errorf("transport %s cannot deliver inbound bytes", transport.Type())
	}
	if config == nil {
		config = DefaultConfig()
	}

	s := &Session{
		transport: transport,
		source:    source,
		config:    config,
		frames:    make(chan *framelink.Frame, config.FrameBuffer),
	}

	opts = append(opts,
		framelink.WithFrameHandler(s.deliver),
		framelink.WithSendResolvedHandler(s.resolve),
	)
	link, err := framelink.New(transport, opts...)
	if err != nil {
		return nil, err
	}
	s.link = link
	return s, nil
}

// Link returns the underlying link
func (s *Session) Link() *framelink.Link {
	return s.link
}

// Frames returns the channel of inbound ordinary frames. Frames are
// dropped (and counted) if the channel stays full.
func (s *Session) Frames() <-chan *framelink.Frame {
	return s.frames
}

// DroppedFrames returns how many inbound frames were dropped because
// the frame channel was full
func (s *Session) DroppedFrames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Run pumps inbound bytes into the link and drives its tick loop until
// the context is canceled or the transport fails. It blocks; run it on
// its own goroutine.
func (s *Session) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	polled := framelink.HasCapability(s.transport, framelink.CapabilityPolledRead)
	buf := make([]byte, s.config.ReadBuffer)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.link.Tick(time.Now())
		default:
		}

		n, err := s.source.Read(buf)
		if err != nil {
			if errors.Is(err, framelink.ErrTransportClosed) {
				return err
			}
			if !framelink.IsRetryable(err) {
				return fmt.Errorf("read pump failed: %w", err)
			}
			// Transient read failure; back off briefly and keep going.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.PollIdle):
			}
			continue
		}

		if n > 0 {
			s.link.FeedBytes(buf[:n])
			continue
		}

		if polled {
			// Nothing waiting on a transport that cannot block; idle
			// instead of spinning.
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.config.PollIdle):
			}
		}
	}
}

// Send transmits one frame and blocks until the peer acknowledges it,
// retries are exhausted, or the context ends. Concurrent callers are
// serialized; the at-most-one-outstanding rule of the link itself is
// never visible as ErrLinkBusy through this path.
func (s *Session) Send(ctx context.Context, command byte, payload []byte) error {
	s.sendMu.Lock()
	defer s.sendMu.Unlock()

	ch := make(chan error, 1)
	s.mu.Lock()
	s.pending = ch
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	}()

	if err := s.link.Send(command, payload); err != nil {
		return err
	}

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		s.link.Abort()
		return ctx.Err()
	}
}

// Close closes the underlying transport, which also stops Run
func (s *Session) Close() error {
	if err := s.transport.Close(); err != nil {
		return fmt.Errorf("failed to close transport: %w", err)
	}
	return nil
}

// deliver is the link's frame handler
func (s *Session) deliver(frame *framelink.Frame) {
	select {
	case s.frames <- frame:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

// resolve is the link's send-resolved handler
func (s *Session) resolve(err error) {
	s.mu.Lock()
	ch := s.pending
	s.mu.Unlock()
	if ch != nil {
		select {
		case ch <- err:
		default:
		}
	}
}
