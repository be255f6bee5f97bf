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

// Receiver states
const (
	stateSeekSync1 = iota // discarding noise, waiting for start[0]
	stateSeekSync2        // saw start[0], waiting for start[1]
	stateReadLength       // waiting for the length byte
	stateReadBody         // accumulating length bytes, then validating
)

// ReceiverStats counts what the synchronizer has seen since creation
// (or the last Reset). Dropped frames are routine on a noisy link, not
// errors; the counters exist for diagnostics.
type ReceiverStats struct {
	FramesEmitted    uint64
	ChecksumFailures uint64
	LengthOverflows  uint64
	BytesDiscarded   uint64
}

// Receiver is the byte-at-a-time synchronization state machine. It
// consumes an arbitrary incoming byte stream, finds frame boundaries,
// assembles candidate frames and validates them through the codec.
//
// Feed never blocks, performs no I/O and has no timeouts of its own;
// timeouts belong to the reliability layer above. A Receiver is owned
// by a single goroutine (the Link serializes access for callers going
// through FeedByte).
type Receiver struct {
	codec *Codec
	buf   []byte
	state int
	need  int // bytes still expected in stateReadBody
	stats ReceiverStats
}

// NewReceiver creates a receiver that validates frames with codec
func NewReceiver(codec *Codec) *Receiver {
	return &Receiver{
		codec: codec,
		buf:   make([]byte, 0, headerSize+codec.maxLength()),
	}
}

// Reset returns the machine to its idle state, discarding any
// partially assembled frame. Counters are preserved.
func (r *Receiver) Reset() {
	r.state = stateSeekSync1
	r.buf = r.buf[:0]
	r.need = 0
}

// Stats returns a snapshot of the receiver counters
func (r *Receiver) Stats() ReceiverStats {
	return r.stats
}

// Feed consumes one byte. It returns a validated frame when the byte
// completes one, nil otherwise. Corrupted or oversized candidates are
// dropped silently and the machine resynchronizes on the next start
// marker.
func (r *Receiver) Feed(b byte) *Frame {
	start := r.codec.StartMarker()

	switch r.state {
	case stateSeekSync1:
		if b == start[0] {
			r.buf = append(r.buf[:0], b)
			r.state = stateSeekSync2
		} else {
			r.stats.BytesDiscarded++
		}

	case stateSeekSync2:
		if b == start[1] {
			r.buf = append(r.buf, b)
			r.state = stateReadLength
			break
		}
		// The first marker byte was spurious. The current byte is
		// re-examined as a fresh sync candidate rather than discarded,
		// so a lone stray start[0] costs a single byte of stream.
		r.stats.BytesDiscarded++
		r.state = stateSeekSync1
		if b == start[0] {
			r.buf = append(r.buf[:0], b)
			r.state = stateSeekSync2
		} else {
			r.stats.BytesDiscarded++
		}

	case stateReadLength:
		length := int(b)
		if length < r.codec.minLength() || length > r.codec.maxLength() {
			r.stats.LengthOverflows++
			r.stats.BytesDiscarded += uint64(len(r.buf)) + 1
			r.Reset()
			break
		}
		r.buf = append(r.buf, b)
		r.need = length
		r.state = stateReadBody

	case stateReadBody:
		r.buf = append(r.buf, b)
		r.need--
		if r.need > 0 {
			break
		}

		frame, err := r.codec.Decode(r.buf)
		if err != nil {
			debugf("receiver: dropping frame: %v", err)
			r.stats.ChecksumFailures++
			r.stats.BytesDiscarded += uint64(len(r.buf))
			r.Reset()
			break
		}
		r.stats.FramesEmitted++
		r.Reset()
		return frame
	}

	return nil
}

// FeedBytes feeds a chunk of bytes and collects every frame completed
// within it.
func (r *Receiver) FeedBytes(data []byte) []*Frame {
	var frames []*Frame
	for _, b := range data {
		if f := r.Feed(b); f != nil {
			frames = append(frames, f)
		}
	}
	return frames
}
