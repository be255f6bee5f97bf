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

package main

import (
	"fmt"

	"github.com/FramelinkProject/go-framelink/detection"
	"github.com/spf13/cobra"
)

var (
	flagPortsAll   bool
	flagPortsProbe bool
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List candidate serial ports",
	Long: `Ports lists serial ports that could carry a framelink peer. With
--probe each candidate is opened and sent a frame; ports whose peer
acknowledges are marked.`,
	Args: cobra.NoArgs,
	RunE: runPorts,
}

func init() {
	portsCmd.Flags().BoolVarP(&flagPortsAll, "all", "a", false, "include ports without USB metadata")
	portsCmd.Flags().BoolVar(&flagPortsProbe, "probe", false, "probe each candidate for a responding peer")
	rootCmd.AddCommand(portsCmd)
}

func runPorts(_ *cobra.Command, _ []string) error {
	candidates, err := detection.Candidates(&detection.Options{IncludeNonUSB: flagPortsAll})
	if err != nil {
		return err
	}
	if len(candidates) == 0 {
		fmt.Println("no candidate ports found (try --all)")
		return nil
	}

	var probeCfg *detection.ProbeConfig
	if flagPortsProbe {
		opts, err := linkOptions()
		if err != nil {
			return err
		}
		probeCfg = detection.DefaultProbeConfig()
		probeCfg.BaudRate = flagBaud
		probeCfg.LinkOptions = opts
	}

	for _, candidate := range candidates {
		line := candidate.Path
		if candidate.VIDPID != "" {
			line += "  [" + candidate.VIDPID + "]"
		}
		if candidate.Product != "" {
			line += "  " + candidate.Product
		}
		if flagPortsProbe {
			answered, probeErr := detection.Probe(candidate.Path, probeCfg)
			switch {
			case probeErr != nil:
				line += "  (probe error: " + probeErr.Error() + ")"
			case answered:
				line += "  (peer responding)"
			default:
				line += "  (no answer)"
			}
		}
		fmt.Println(line)
	}
	return nil
}
