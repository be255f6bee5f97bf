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

//go:build linux

package uart

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// listPorts returns available serial ports on Linux. USB serial devices
// get VID:PID metadata from sysfs.
func listPorts() ([]Port, error) {
	var ports []Port

	for _, pattern := range []string{"/dev/ttyUSB*", "/dev/ttyACM*"} {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, path := range matches {
			port := Port{
				Path: path,
				Name: filepath.Base(path),
			}
			port.VIDPID, port.Product = sysfsUSBInfo(filepath.Base(path))
			ports = append(ports, port)
		}
	}

	return ports, nil
}

// sysfsUSBInfo walks /sys/class/tty/<name>/device up to the USB device
// node and reads idVendor/idProduct/product
func sysfsUSBInfo(name string) (vidpid, product string) {
	devPath, err := filepath.EvalSymlinks(filepath.Join("/sys/class/tty", name, "device"))
	if err != nil {
		return "", ""
	}

	// The USB device directory (the one holding idVendor) is a few
	// levels above the tty interface node.
	dir := devPath
	for i := 0; i < 4; i++ {
		vid := readSysfsAttr(filepath.Join(dir, "idVendor"))
		pid := readSysfsAttr(filepath.Join(dir, "idProduct"))
		if vid != "" && pid != "" {
			return fmt.Sprintf("%s:%s", strings.ToUpper(vid), strings.ToUpper(pid)),
				readSysfsAttr(filepath.Join(dir, "product"))
		}
		dir = filepath.Dir(dir)
	}
	return "", ""
}

func readSysfsAttr(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
