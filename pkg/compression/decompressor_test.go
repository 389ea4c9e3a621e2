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

package compression

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/srsoss/ofh-core/pkg/ofhtypes"
)

func TestDecompressNoneZeroBytesYieldZeroSamples(t *testing.T) {
	params := ofhtypes.CompressionParams{Type: ofhtypes.CompressionNone, DataWidth: 16}
	raw := make([]byte, int(ofhtypes.NofSubcarriersPerPrb)*2*2) // 1 PRB, 16-bit samples

	samples, err := New().Decompress(raw, params, 1)
	require.NoError(t, err)
	require.Len(t, samples, ofhtypes.NofSubcarriersPerPrb)
	for _, s := range samples {
		require.Equal(t, complex64(0), s)
	}
}

func TestDecompressNoneRecoversMaxPositiveAndNegativeSample(t *testing.T) {
	params := ofhtypes.CompressionParams{Type: ofhtypes.CompressionNone, DataWidth: 4}
	// Two 4-bit samples packed into one byte: 0111 (max positive, +7) and 1000 (min negative, -8).
	raw := []byte{0x78}
	raw = append(raw, make([]byte, int(ofhtypes.NofSubcarriersPerPrb)*2/2-1)...)

	samples, err := New().Decompress(raw, params, 1)
	require.NoError(t, err)
	require.InDelta(t, 7.0/8.0, real(samples[0]), 1e-6)
	require.InDelta(t, -8.0/8.0, imag(samples[0]), 1e-6)
}

func TestDecompressNoneTruncatedPayloadFails(t *testing.T) {
	params := ofhtypes.CompressionParams{Type: ofhtypes.CompressionNone, DataWidth: 16}
	_, err := New().Decompress([]byte{0x00, 0x00}, params, 1)
	require.Error(t, err)
}

func TestDecompressBfpAppliesSharedExponentToEveryMantissa(t *testing.T) {
	params := ofhtypes.CompressionParams{Type: ofhtypes.CompressionBlockFloatingPoint, DataWidth: 4}
	// Exponent byte = 2, followed by one 4-bit pair (+1, -1), rest zero.
	raw := []byte{0x02, 0x1F}
	raw = append(raw, make([]byte, int(ofhtypes.NofSubcarriersPerPrb)*2/2-1)...)

	samples, err := New().Decompress(raw, params, 1)
	require.NoError(t, err)
	require.InDelta(t, float64(1*4)/8.0, float64(real(samples[0])), 1e-6)
	require.InDelta(t, float64(-1*4)/8.0, float64(imag(samples[0])), 1e-6)
}

func TestDecompressRejectsUnsupportedType(t *testing.T) {
	params := ofhtypes.CompressionParams{Type: ofhtypes.CompressionModulation, DataWidth: 9}
	_, err := New().Decompress(make([]byte, 64), params, 1)
	require.Error(t, err)
}

func TestDecompressRejectsOutOfRangeDataWidth(t *testing.T) {
	params := ofhtypes.CompressionParams{Type: ofhtypes.CompressionNone, DataWidth: 0}
	_, err := New().Decompress(make([]byte, 64), params, 1)
	require.Error(t, err)
}
