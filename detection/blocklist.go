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

package detection

import "strings"

// DefaultBlocklist returns USB devices (VID:PID, hex, case-insensitive)
// that must not be probed. Probing writes protocol bytes to the port;
// devices known to misbehave when poked belong here.
func DefaultBlocklist() []string {
	return []string{
		// Add known problematic devices here as discovered, e.g.
		// "1234:5678", // vendor X adapter that hangs on unsolicited writes
	}
}

// IsBlocked checks if a USB device is in the blocklist
func IsBlocked(vidpid string, blocklist []string) bool {
	vidpid = strings.ToUpper(strings.TrimSpace(vidpid))
	for _, blocked := range blocklist {
		if vidpid == strings.ToUpper(strings.TrimSpace(blocked)) {
			return true
		}
	}
	return false
}

// NormalizeVIDPID extracts a canonical "VID:PID" from common USB
// descriptor formats ("1234:5678", "VID:1234 PID:5678",
// "vendor=1234 product=5678"). Returns "" when no pair is found.
func NormalizeVIDPID(descriptor string) string {
	descriptor = strings.ToUpper(descriptor)

	vid := extractHexField(descriptor, "VID_", "VID:", "VENDOR=")
	pid := extractHexField(descriptor, "PID_", "PID:", "PRODUCT=")

	if vid == "" || pid == "" {
		// Plain "1234:5678" form.
		parts := strings.Split(strings.TrimSpace(descriptor), ":")
		if len(parts) == 2 && isHex4(parts[0]) && isHex4(parts[1]) {
			return parts[0] + ":" + parts[1]
		}
		return ""
	}
	return vid + ":" + pid
}

// extractHexField finds the first 4 hex digits following any of the
// given markers
func extractHexField(s string, markers ...string) string {
	for _, marker := range markers {
		idx := strings.Index(s, marker)
		if idx < 0 {
			continue
		}
		start := idx + len(marker)
		if start+4 > len(s) {
			continue
		}
		candidate := s[start : start+4]
		if isHex4(candidate) {
			return candidate
		}
	}
	return ""
}

func isHex4(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if (r < '0' || r > '9') && (r < 'A' || r > 'F') {
			return false
		}
	}
	return true
}
