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

// Package detection discovers serial ports that may carry a framelink
// peer. Enumeration lists candidate ports with USB metadata; probing
// opens a candidate and checks whether something on the other end
// acknowledges a frame.
package detection

import (
	"fmt"

	"github.com/FramelinkProject/go-framelink/detection/uart"
	"go.bug.st/serial/enumerator"
)

// PortInfo describes a candidate serial port
type PortInfo struct {
	Path         string
	Name         string
	VIDPID       string
	Product      string
	SerialNumber string
}

// Options configures candidate enumeration
type Options struct {
	// Blocklist of VID:PID pairs never to return (nil = DefaultBlocklist)
	Blocklist []string
	// IncludeNonUSB also returns ports without USB metadata (on-board
	// UARTs and the like)
	IncludeNonUSB bool
}

// Candidates enumerates serial ports that could carry a framelink peer,
// with blocked devices filtered out. USB-serial adapters are preferred;
// set IncludeNonUSB to also get bare UARTs.
func Candidates(opts *Options) ([]PortInfo, error) {
	if opts == nil {
		opts = &Options{}
	}
	blocklist := opts.Blocklist
	if blocklist == nil {
		blocklist = DefaultBlocklist()
	}

	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		// The enumerator needs OS facilities that are sometimes
		// unavailable (containers, locked-down hosts); fall back to the
		// plain per-OS port listing.
		return fallbackCandidates(blocklist, opts.IncludeNonUSB)
	}

	var ports []PortInfo
	for _, d := range details {
		info := PortInfo{
			Path:         d.Name,
			Name:         d.Name,
			Product:      d.Product,
			SerialNumber: d.SerialNumber,
		}
		if d.IsUSB {
			info.VIDPID = NormalizeVIDPID(d.VID + ":" + d.PID)
			if IsBlocked(info.VIDPID, blocklist) {
				continue
			}
		} else if !opts.IncludeNonUSB {
			continue
		}
		ports = append(ports, info)
	}
	return ports, nil
}

// fallbackCandidates builds the candidate list from the per-OS port
// listing when the enumerator is unavailable
func fallbackCandidates(blocklist []string, includeNonUSB bool) ([]PortInfo, error) {
	listed, err := uart.List()
	if err != nil {
		return nil, fmt.Errorf("port enumeration failed: %w", err)
	}

	var ports []PortInfo
	for _, p := range listed {
		vidpid := NormalizeVIDPID(p.VIDPID)
		if vidpid == "" && !includeNonUSB {
			continue
		}
		if IsBlocked(vidpid, blocklist) {
			continue
		}
		ports = append(ports, PortInfo{
			Path:    p.Path,
			Name:    p.Name,
			VIDPID:  vidpid,
			Product: p.Product,
		})
	}
	return ports, nil
}
