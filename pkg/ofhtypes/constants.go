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

// Package ofhtypes holds the Open Fronthaul data model: slot/symbol
// arithmetic, eAxC identifiers, compression parameters and the C-Plane
// scheduling context that the rest of the core is built around.
package ofhtypes

// SfnWireMax is the modulus the System Frame Number wraps to on the wire;
// internally an SDK may track a wider SFN, but Open Fronthaul only ever
// sees it modulo this value.
const SfnWireMax = 256

// NofSubframes is the number of subframes per radio frame, fixed by 3GPP.
const NofSubframes = 10

// MaxNofSupportedEaxc is the maximum number of eAxC values a sector may
// declare per direction (ul, dl, prach).
const MaxNofSupportedEaxc = 4

// MaxSupportedEaxcIDValue is one past the largest valid eAxC value.
const MaxSupportedEaxcIDValue = 32

// MaxNofPrb is the largest number of PRBs a single cell can be configured
// with (100 MHz at 30 kHz SCS).
const MaxNofPrb = 273

// NofSubcarriersPerPrb is the number of resource elements per PRB per
// symbol.
const NofSubcarriersPerPrb = 12

// NofSymbolsPerSlotNormalCP is the number of OFDM symbols per slot with
// normal cyclic prefix.
const NofSymbolsPerSlotNormalCP = 14

// NofSymbolsPerSlotExtendedCP is the number of OFDM symbols per slot with
// extended cyclic prefix (only valid for 60 kHz SCS).
const NofSymbolsPerSlotExtendedCP = 12

// CyclicPrefix identifies normal vs extended cyclic prefix.
type CyclicPrefix uint8

const (
	CyclicPrefixNormal CyclicPrefix = iota
	CyclicPrefixExtended
)

// NofSymbolsPerSlot returns the number of OFDM symbols per slot for the
// given cyclic prefix.
func (cp CyclicPrefix) NofSymbolsPerSlot() uint8 {
	if cp == CyclicPrefixExtended {
		return NofSymbolsPerSlotExtendedCP
	}
	return NofSymbolsPerSlotNormalCP
}

func (cp CyclicPrefix) String() string {
	if cp == CyclicPrefixExtended {
		return "extended"
	}
	return "normal"
}

// SlotsPerSubframe returns the number of slots per subframe for the given
// numerology (subcarrier spacing index, 3GPP mu: 0=15kHz, 1=30kHz,
// 2=60kHz, 3=120kHz).
func SlotsPerSubframe(numerology uint8) int {
	return 1 << numerology
}
