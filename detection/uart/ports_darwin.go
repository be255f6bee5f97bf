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

//go:build darwin

package uart

import (
	"path/filepath"
	"strings"
)

// listPorts returns available serial ports on macOS. Callout (cu.*)
// devices are preferred over tty.* for exclusive access; a tty.* entry
// is only added when it has no cu.* twin.
func listPorts() ([]Port, error) {
	var ports []Port

	cuMatches, _ := filepath.Glob("/dev/cu.*")
	for _, path := range cuMatches {
		name := filepath.Base(path)
		if !includeDarwinDevice(name) {
			continue
		}
		ports = append(ports, Port{Path: path, Name: name})
	}

	ttyMatches, _ := filepath.Glob("/dev/tty.*")
	for _, path := range ttyMatches {
		name := filepath.Base(path)
		if !includeDarwinDevice(name) {
			continue
		}
		cuTwin := strings.Replace(path, "/dev/tty.", "/dev/cu.", 1)
		if hasPort(ports, cuTwin) {
			continue
		}
		ports = append(ports, Port{Path: path, Name: name})
	}

	return ports, nil
}

func hasPort(ports []Port, path string) bool {
	for _, p := range ports {
		if p.Path == path {
			return true
		}
	}
	return false
}

// includeDarwinDevice filters out Bluetooth and system pseudo-devices
func includeDarwinDevice(name string) bool {
	lower := strings.ToLower(name)

	for _, skip := range []string{"bluetooth", "console", "debug", "system", "kernel"} {
		if strings.Contains(lower, skip) {
			return false
		}
	}
	return true
}
