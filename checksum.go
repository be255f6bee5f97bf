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

// ChecksumAlgorithm selects the integrity function used over
// command||payload. The algorithm is a link-level constant agreed out of
// band with the peer; it is never negotiated at runtime.
type ChecksumAlgorithm int

const (
	// ChecksumXOR8 is a single-byte XOR fold. Cheap, but an even number
	// of bit flips at the same bit position across bytes cancels out.
	ChecksumXOR8 ChecksumAlgorithm = iota
	// ChecksumCRC8 is CRC-8 with polynomial 0x07, catching all
	// single-bit errors and most short bursts.
	ChecksumCRC8
	// ChecksumCRC16 is CRC-16/CCITT-FALSE (poly 0x1021, init 0xFFFF),
	// the strongest option offered.
	ChecksumCRC16
)

const (
	crc8Polynomial  = 0x07
	crc16Polynomial = 0x1021
	crc16Initial    = 0xFFFF
)

// String returns the configuration name of the algorithm
func (a ChecksumAlgorithm) String() string {
	switch a {
	case ChecksumXOR8:
		return "xor8"
	case ChecksumCRC8:
		return "crc8"
	case ChecksumCRC16:
		return "crc16"
	default:
		return "unknown"
	}
}

// Size returns the number of checksum bytes on the wire
func (a ChecksumAlgorithm) Size() int {
	if a == ChecksumCRC16 {
		return 2
	}
	return 1
}

// Compute returns the checksum over data. For single-byte algorithms the
// value fits the low byte.
func (a ChecksumAlgorithm) Compute(data []byte) uint16 {
	switch a {
	case ChecksumCRC8:
		return uint16(crc8(data))
	case ChecksumCRC16:
		return crc16(data)
	default:
		return uint16(xor8(data))
	}
}

// Verify reports whether claimed matches the checksum of data
func (a ChecksumAlgorithm) Verify(data []byte, claimed uint16) bool {
	return a.Compute(data) == claimed
}

func xor8(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum ^= b
	}
	return sum
}

func crc8(data []byte) byte {
	var crc byte
	for _, b := range data {
		crc ^= b
		for i := 0; i < 8; i++ {
			if crc&0x80 != 0 {
				crc = (crc << 1) ^ crc8Polynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

func crc16(data []byte) uint16 {
	crc := uint16(crc16Initial)
	for _, b := range data {
		crc ^= uint16(b) << 8
		for i := 0; i < 8; i++ {
			if crc&0x8000 != 0 {
				crc = (crc << 1) ^ crc16Polynomial
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}
