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

package dataflow

import (
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/wire"
)

// sectionPrbFieldsValid checks the RB/symbol-increment mode and PRB bounds
// a section carries, independent of any installed C-Plane schedule. The
// uplink data flow applies it to every section; the PRACH data flow
// applies it only when its C-Plane check is enabled. Both apply it before
// checking the section against their own schedule.
func sectionPrbFieldsValid(section wire.UplaneSection) (ok bool, reason string) {
	if section.StartPrb >= ofhtypes.MaxNofPrb {
		return false, "first PRB index is not valid"
	}
	if section.StartPrb+section.NofPrb > ofhtypes.MaxNofPrb {
		return false, "last PRB index is not valid"
	}
	if section.RbEveryOther {
		return false, "'every other resource block is used' mode is not supported"
	}
	if section.SymInc {
		return false, "'increment the current symbol number and use that' mode is not supported"
	}
	return true, ""
}
