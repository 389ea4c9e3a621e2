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

package ofhtypes

import "fmt"

// CompressionType identifies the IQ sample compression scheme in effect
// for a channel. The codecs themselves are pluggable (see IqDecompressor
// in the wire package); this type only selects among them.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionBlockFloatingPoint
	CompressionBlockScaling
	CompressionMuLaw
	CompressionModulation
	CompressionBfpSelective
	CompressionModSelective
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionBlockFloatingPoint:
		return "bfp"
	case CompressionBlockScaling:
		return "block-scaling"
	case CompressionMuLaw:
		return "mu-law"
	case CompressionModulation:
		return "modulation"
	case CompressionBfpSelective:
		return "bfp-selective"
	case CompressionModSelective:
		return "mod-selective"
	default:
		return fmt.Sprintf("compression(%d)", uint8(c))
	}
}

// CompressionParams fully describes how IQ samples are packed on the
// wire for one channel.
type CompressionParams struct {
	Type      CompressionType
	DataWidth uint8 // bits per IQ component, in [1, 16]
}

// Validate checks DataWidth is within the supported range.
func (c CompressionParams) Validate() error {
	if c.DataWidth < 1 || c.DataWidth > 16 {
		return fmt.Errorf("compression data width %d out of range [1, 16]", c.DataWidth)
	}
	return nil
}

// HeaderByte packs the compression params into the single byte the
// O-RAN static/dynamic compression header uses on the wire:
// ((data_width - 1) << 4) | compression_type. Storing width-1 rather
// than width itself is what lets the 4-bit field represent the full
// [1, 16] range without 16 overflowing into 0.
func (c CompressionParams) HeaderByte() byte {
	return byte((c.DataWidth-1)&0x0F)<<4 | byte(c.Type&0x0F)
}

// CompressionParamsFromHeaderByte unpacks a compression header byte.
func CompressionParamsFromHeaderByte(b byte) CompressionParams {
	return CompressionParams{
		DataWidth: (b >> 4) + 1,
		Type:      CompressionType(b & 0x0F),
	}
}

// BytesPerPrb returns the wire size in bytes of one compressed PRB's IQ
// samples (12 subcarriers, I and Q each DataWidth bits, rounded up to a
// byte boundary, no exponent byte). Callers needing an exponent/selective
// overhead account for it separately; this is the base IQ payload size.
func (c CompressionParams) BytesPerPrb() int {
	bits := int(NofSubcarriersPerPrb) * 2 * int(c.DataWidth)
	return (bits + 7) / 8
}
