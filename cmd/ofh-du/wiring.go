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

	"github.com/srsoss/ofh-core/pkg/closer"
	"github.com/srsoss/ofh-core/pkg/config"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/wire"
)

func toCloserWarnPolicy(p config.WarnUnreceivedPolicy) closer.WarnUnreceivedFrames {
	switch p {
	case config.WarnAlways:
		return closer.WarnAlways
	case config.WarnAfterTrafficDetected:
		return closer.WarnAfterTrafficDetection
	default:
		return closer.WarnNever
	}
}

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
// using the numerology's nominal symbol duration (slot duration /
// symbols per slot, ignoring the first symbol's longer cyclic prefix —
// immaterial at the single-symbol rounding granularity windows need).
func windowTimingFromUs(ta4MinUs, ta4MaxUs int, numerology uint8, cp ofhtypes.CyclicPrefix) (symStart, symEnd int) {
	slotDurationUs := 1000.0 / float64(int(1)<<numerology)
	symbolDurationUs := slotDurationUs / float64(cp.NofSymbolsPerSlot())
	symStart = int(float64(ta4MinUs) / symbolDurationUs)
	symEnd = int(float64(ta4MaxUs)/symbolDurationUs) + 1
	return symStart, symEnd
}

// minimumRepositorySlots returns the smallest number of slot rows a
// scheduling-context or grid repository must hold concurrently to cover
// a reception window of ta4MaxUs, with one slot of margin.
func minimumRepositorySlots(ta4MaxUs int, numerology uint8) int {
	slotDurationUs := 1000.0 / float64(int(1)<<numerology)
	slots := int(float64(ta4MaxUs)/slotDurationUs) + 2
	if slots < 2 {
		slots = 2
	}
	return slots
}

// nofPrbTable15kHz is 3GPP TS 38.101-1 table 5.3.2-1's transmission
// bandwidth configuration for 15 kHz SCS, keyed by channel bandwidth in
// MHz.
var nofPrbTable15kHz = map[int]int{5: 25, 10: 52, 15: 79, 20: 106, 25: 133, 30: 160, 40: 216, 50: 270}

// nofPrbTable30kHz is the 30 kHz SCS counterpart of nofPrbTable15kHz.
var nofPrbTable30kHz = map[int]int{10: 24, 15: 38, 20: 51, 25: 65, 30: 78, 40: 106, 50: 133, 60: 162, 70: 189, 80: 217, 90: 245, 100: 273}

// nofPrbTable60kHz is the 60 kHz SCS counterpart.
var nofPrbTable60kHz = map[int]int{10: 11, 15: 18, 20: 24, 25: 31, 30: 38, 40: 51, 50: 65, 60: 79, 70: 93, 80: 107, 90: 121, 100: 135}

// nofPrbForBandwidth returns the resource-block count a channel
// bandwidth/SCS pair maps to. Bandwidth/SCS combinations 3GPP does not
// define (and 120 kHz SCS, used only for FR2 deployments this repository
// does not target) fall back to an approximation rounding down to whole
// PRBs at 12 subcarriers each with a 10% guard-band allowance, clamped to
// MaxNofPrb.
func nofPrbForBandwidth(bwMHz, scsKHz int) uint16 {
	var table map[int]int
	switch scsKHz {
	case 15:
		table = nofPrbTable15kHz
	case 30:
		table = nofPrbTable30kHz
	case 60:
		table = nofPrbTable60kHz
	}
	if table != nil {
		if nofPrb, ok := table[bwMHz]; ok {
			return uint16(nofPrb)
		}
	}
	nofPrb := int(float64(bwMHz) * 1000 * 0.9 / float64(scsKHz*12))
	if nofPrb > ofhtypes.MaxNofPrb {
		nofPrb = ofhtypes.MaxNofPrb
	}
	return uint16(nofPrb)
}
