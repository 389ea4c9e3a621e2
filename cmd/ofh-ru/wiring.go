/*
	OFH Core - Open Fronthaul lower-layer stack
	Copyright (C) 2026  srsOSS Contributors

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"fmt"

	"github.com/srsoss/ofh-core/pkg/config"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/wire"
)

func parseMAC(s string) (wire.MacAddress, error) {
	var mac wire.MacAddress
	n, err := fmt.Sscanf(s, "%02x:%02x:%02x:%02x:%02x:%02x",
		&mac[0], &mac[1], &mac[2], &mac[3], &mac[4], &mac[5])
	if err != nil || n != 6 {
		return mac, fmt.Errorf("parsing MAC address %q", s)
	}
	return mac, nil
}

func toEaxcList(values []uint8) ofhtypes.EaxcList {
	list := make(ofhtypes.EaxcList, len(values))
	for i, v := range values {
		list[i] = ofhtypes.Eaxc(v)
	}
	return list
}

var compressionKindToType = map[string]ofhtypes.CompressionType{
	"":              ofhtypes.CompressionNone,
	"none":          ofhtypes.CompressionNone,
	"bfp":           ofhtypes.CompressionBlockFloatingPoint,
	"block_scaling": ofhtypes.CompressionBlockScaling,
	"mu_law":        ofhtypes.CompressionMuLaw,
	"modulation":    ofhtypes.CompressionModulation,
}

func toCompressionParams(c config.CompressionConfig) ofhtypes.CompressionParams {
	width := c.Width
	if width == 0 {
		width = 16
	}
	return ofhtypes.CompressionParams{Type: compressionKindToType[c.Kind], DataWidth: width}
}

// windowTimingFromUs converts a reception window bound given in
// microseconds relative to the OTA symbol into a symbol-offset bound,
// using the numerology's nominal symbol duration.
func windowTimingFromUs(ta4MinUs, ta4MaxUs int, numerology uint8, cp ofhtypes.CyclicPrefix) (symStart, symEnd int) {
	slotDurationUs := 1000.0 / float64(int(1)<<numerology)
	symbolDurationUs := slotDurationUs / float64(cp.NofSymbolsPerSlot())
	symStart = int(float64(ta4MinUs) / symbolDurationUs)
	symEnd = int(float64(ta4MaxUs)/symbolDurationUs) + 1
	return symStart, symEnd
}
