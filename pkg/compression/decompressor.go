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

// Package compression implements pkg/wire.IqDecompressor for the two
// compression schemes the reception pipeline is required to accept:
// uncompressed IQ and block floating point (BFP). Every sample is a
// DataWidth-bit two's-complement integer, bit-packed MSB-first with no
// padding between samples; BFP additionally prefixes each PRB's 24
// samples with one unsigned 8-bit shared exponent.
package compression

import (
	"fmt"

	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

const bfpExponentWidth = 8

// Decompressor is the concrete, production pkg/wire.IqDecompressor
// wired into cmd/ofh-du and cmd/ofh-ru.
type Decompressor struct{}

// New returns a Decompressor. It carries no state: compression
// parameters arrive per call from the decoded section header.
func New() Decompressor { return Decompressor{} }

// Decompress implements pkg/wire.IqDecompressor.
func (Decompressor) Decompress(raw []byte, params ofhtypes.CompressionParams, nofPrb uint16) ([]complex64, error) {
	switch params.Type {
	case ofhtypes.CompressionNone:
		return decompressNone(raw, params.DataWidth, nofPrb)
	case ofhtypes.CompressionBlockFloatingPoint:
		return decompressBfp(raw, params.DataWidth, nofPrb)
	default:
		return nil, fmt.Errorf("compression: unsupported compression type %s", params.Type)
	}
}

type bitReader struct {
	data   []byte
	bitPos int
}

func (r *bitReader) readUnsigned(width uint8) (uint32, bool) {
	if width == 0 || int(width) > 32 || r.bitPos+int(width) > len(r.data)*8 {
		return 0, false
	}
	var v uint32
	for i := 0; i < int(width); i++ {
		byteIdx := r.bitPos / 8
		bitIdx := 7 - r.bitPos%8
		bit := (r.data[byteIdx] >> uint(bitIdx)) & 1
		v = v<<1 | uint32(bit)
		r.bitPos++
	}
	return v, true
}

func (r *bitReader) readSigned(width uint8) (int32, bool) {
	v, ok := r.readUnsigned(width)
	if !ok {
		return 0, false
	}
	if v&(1<<(width-1)) != 0 {
		v |= ^uint32(0) << width
	}
	return int32(v), true
}

func decompressNone(raw []byte, width uint8, nofPrb uint16) ([]complex64, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	r := &bitReader{data: raw}
	scale := float32(int32(1) << (width - 1))

	samples := make([]complex64, 0, int(nofPrb)*ofhtypes.NofSubcarriersPerPrb)
	for p := 0; p < int(nofPrb); p++ {
		for sc := 0; sc < ofhtypes.NofSubcarriersPerPrb; sc++ {
			re, ok := r.readSigned(width)
			if !ok {
				return nil, fmt.Errorf("compression: truncated uncompressed IQ payload")
			}
			im, ok := r.readSigned(width)
			if !ok {
				return nil, fmt.Errorf("compression: truncated uncompressed IQ payload")
			}
			samples = append(samples, complex(float32(re)/scale, float32(im)/scale))
		}
	}
	return samples, nil
}

func decompressBfp(raw []byte, width uint8, nofPrb uint16) ([]complex64, error) {
	if err := checkWidth(width); err != nil {
		return nil, err
	}
	r := &bitReader{data: raw}
	mantissaScale := float32(int32(1) << (width - 1))

	samples := make([]complex64, 0, int(nofPrb)*ofhtypes.NofSubcarriersPerPrb)
	for p := 0; p < int(nofPrb); p++ {
		exponent, ok := r.readUnsigned(bfpExponentWidth)
		if !ok {
			return nil, fmt.Errorf("compression: truncated BFP exponent")
		}
		prbScale := float32(uint32(1)<<exponent) / mantissaScale

		for sc := 0; sc < ofhtypes.NofSubcarriersPerPrb; sc++ {
			re, ok := r.readSigned(width)
			if !ok {
				return nil, fmt.Errorf("compression: truncated BFP mantissa")
			}
			im, ok := r.readSigned(width)
			if !ok {
				return nil, fmt.Errorf("compression: truncated BFP mantissa")
			}
			samples = append(samples, complex(float32(re)*prbScale, float32(im)*prbScale))
		}
	}
	return samples, nil
}

func checkWidth(width uint8) error {
	if width < 1 || width > 16 {
		return fmt.Errorf("compression: data width %d out of range [1, 16]", width)
	}
	return nil
}
