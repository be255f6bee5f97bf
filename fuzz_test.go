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
	"bytes"
	"math/rand"
	"os"
	"strconv"
	"testing"
	"time"
)

// getFuzzRounds returns the number of fuzz rounds from FUZZ_ROUNDS env var, default 1000
func getFuzzRounds() int {
	if envRounds := os.Getenv("FUZZ_ROUNDS"); envRounds != "" {
		if rounds, err := strconv.Atoi(envRounds); err == nil && rounds > 0 {
			return rounds
		}
	}
	return 1000
}

// getFuzzSeed returns the seed from FUZZ_SEED env var, or generates one from current time
func getFuzzSeed() int64 {
	if envSeed := os.Getenv("FUZZ_SEED"); envSeed != "" {
		if seed, err := strconv.ParseInt(envSeed, 10, 64); err == nil {
			return seed
		}
	}
	return time.Now().UnixNano()
}

// newFuzzRng creates a new random number generator and logs the seed for reproducibility
func newFuzzRng(t *testing.T) *rand.Rand {
	t.Helper()
	seed := getFuzzSeed()
	t.Logf("Seed: %d (reproduce with FUZZ_SEED=%d)", seed, seed)
	return rand.New(rand.NewSource(seed))
}

func randomCommand(rng *rand.Rand, cfg *Config) byte {
	for {
		command := byte(rng.Intn(256))
		if command != cfg.AckCommand && command != cfg.NackCommand {
			return command
		}
	}
}

// Random frames survive an encode/decode round trip for every checksum
// algorithm.
func TestFuzzRoundTrip(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	for _, algorithm := range []ChecksumAlgorithm{ChecksumXOR8, ChecksumCRC8, ChecksumCRC16} {
		codec := newTestCodec(t, algorithm)
		cfg := DefaultConfig()

		for round := 0; round < rounds; round++ {
			command := randomCommand(rng, cfg)
			payload := make([]byte, rng.Intn(codec.MaxPayload()+1))
			rng.Read(payload)

			wire, err := codec.Encode(command, payload)
			if err != nil {
				t.Fatalf("round %d (%s): Encode failed: %v", round, algorithm, err)
			}

			frame, err := codec.Decode(wire)
			if err != nil {
				t.Fatalf("round %d (%s): Decode failed: %v", round, algorithm, err)
			}
			if frame.Command != command {
				t.Fatalf("round %d (%s): command %02X != %02X", round, algorithm, frame.Command, command)
			}
			if !bytes.Equal(frame.Payload, payload) {
				t.Fatalf("round %d (%s): payload mismatch", round, algorithm)
			}
		}
	}
}

// Random frames interleaved with random garbage all come out of the
// receiver intact and in order. Garbage runs avoid the first start
// marker byte so noise cannot legally extend into a frame prefix.
func TestFuzzReceiverRecovery(t *testing.T) {
	rng := newFuzzRng(t)
	rounds := getFuzzRounds()

	codec := newTestCodec(t, ChecksumCRC16)
	cfg := DefaultConfig()
	receiver := NewReceiver(codec)

	var expected []*Frame
	var stream []byte
	for round := 0; round < rounds; round++ {
		if noise := rng.Intn(8); noise > 0 {
			garbage := make([]byte, noise)
			for i := range garbage {
				for {
					b := byte(rng.Intn(256))
					if b != cfg.StartMarker[0] {
						garbage[i] = b
						break
					}
				}
			}
			stream = append(stream, garbage...)
		}

		command := randomCommand(rng, cfg)
		payload := make([]byte, rng.Intn(codec.MaxPayload()+1))
		rng.Read(payload)
		wire, err := codec.Encode(command, payload)
		if err != nil {
			t.Fatalf("round %d: Encode failed: %v", round, err)
		}
		stream = append(stream, wire...)
		expected = append(expected, &Frame{Command: command, Payload: payload})
	}

	// Deliver the stream in randomly sized chunks.
	var frames []*Frame
	for len(stream) > 0 {
		n := rng.Intn(len(stream)) + 1
		frames = append(frames, receiver.FeedBytes(stream[:n])...)
		stream = stream[n:]
	}

	if len(frames) != len(expected) {
		t.Fatalf("received %d frames, want %d", len(frames), len(expected))
	}
	for i, frame := range frames {
		if frame.Command != expected[i].Command {
			t.Fatalf("frame %d: command %02X != %02X", i, frame.Command, expected[i].Command)
		}
		if !bytes.Equal(frame.Payload, expected[i].Payload) {
			t.Fatalf("frame %d: payload mismatch", i)
		}
	}
}
