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

package wire

import "errors"

// ErrMalformedFrame is returned by the VLAN/Ethernet framer when the input
// is too small to hold a full header.
var ErrMalformedFrame = errors.New("wire: malformed ethernet frame")

// eCPRI decode failures are split by distinct cause rather than a single
// generic error, so callers can log and count each one separately.
var (
	ErrEcpriTooSmall                 = errors.New("wire: packet smaller than eCPRI common header")
	ErrEcpriUnsupportedRevision      = errors.New("wire: unsupported eCPRI protocol revision")
	ErrEcpriConcatenationUnsupported = errors.New("wire: eCPRI concatenation is not supported")
	ErrEcpriUnsupportedMsgType       = errors.New("wire: unsupported eCPRI message type")
	ErrEcpriPayloadSizeMismatch      = errors.New("wire: eCPRI declared payload size exceeds packet")
)

// ErrUplaneDecodeFailure covers any structural failure decoding an O-RAN
// U-Plane message (short header, section fields overrunning the buffer).
var ErrUplaneDecodeFailure = errors.New("wire: u-plane decode failure")

// ErrCplaneDecodeFailure covers structural failures decoding an O-RAN
// C-Plane message.
var ErrCplaneDecodeFailure = errors.New("wire: c-plane decode failure")
