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
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/srsoss/ofh-core/pkg/cplane"
	"github.com/srsoss/ofh-core/pkg/grid"
	"github.com/srsoss/ofh-core/pkg/netio"
	"github.com/srsoss/ofh-core/pkg/ofhtypes"
	"github.com/srsoss/ofh-core/pkg/ordering"
	"github.com/srsoss/ofh-core/pkg/wire"
)

// demoSchedulingAdvanceSlots is how many slots ahead of the granted slot
// the demo scheduler installs the Control-Plane context and transmits
// the matching message, giving the RU (or emulator) time to process it
// before the granted slot's uplink traffic is due.
const demoSchedulingAdvanceSlots = 2

// demoSchedulerConfig configures a demoScheduler.
type demoSchedulerConfig struct {
	Vlan          wire.VlanFrameParams
	UlEaxc        ofhtypes.EaxcList
	Cp            ofhtypes.CyclicPrefix
	CompressionUL ofhtypes.CompressionParams
	NofPrb        uint16
}

// demoScheduler installs a recurring full-bandwidth uplink grant at the
// start of every slot and transmits the matching Control-Plane message
// for each configured uplink eAxC. This repository carries no
// MAC/scheduler component of its own; this type exists purely as a CLI
// test-harness convenience so an RU or RU emulator downstream has a
// schedule to validate its uplink traffic against.
type demoScheduler struct {
	cfg demoSchedulerConfig

	cplaneRepo   *cplane.Repository
	gridRepo     *grid.UplinkRepository
	orderingRepo *ordering.Repository
	sender       netio.FrameSender
	log          *logrus.Entry

	seqMu   sync.Mutex
	seqByID map[ofhtypes.Eaxc]uint8
}

func newDemoScheduler(cfg demoSchedulerConfig, cplaneRepo *cplane.Repository, gridRepo *grid.UplinkRepository,
	orderingRepo *ordering.Repository, sender netio.FrameSender, log *logrus.Entry) *demoScheduler {
	return &demoScheduler{
		cfg:          cfg,
		cplaneRepo:   cplaneRepo,
		gridRepo:     gridRepo,
		orderingRepo: orderingRepo,
		sender:       sender,
		log:          log,
		seqByID:      make(map[ofhtypes.Eaxc]uint8),
	}
}

// onNewSymbol installs and transmits one slot's worth of grants at the
// first symbol of every slot.
func (s *demoScheduler) onNewSymbol(point ofhtypes.SlotSymbolPoint) {
	if point.Symbol != 0 || len(s.cfg.UlEaxc) == 0 {
		return
	}

	target := point.Slot.AddSlots(demoSchedulingAdvanceSlots)
	nofSymbols := s.cfg.Cp.NofSymbolsPerSlot()

	s.orderingRepo.Add(target, 0, s.cfg.Cp)
	s.gridRepo.Add(target, 0, nofSymbols, len(s.cfg.UlEaxc), int(s.cfg.NofPrb))

	ctx := ofhtypes.UlCplaneContext{
		FilterIndex: ofhtypes.FilterStandardChannel,
		StartSymbol: 0,
		NofSymbols:  nofSymbols,
		PrbStart:    0,
		NofPrb:      s.cfg.NofPrb,
	}

	frames := make([][]byte, 0, len(s.cfg.UlEaxc))
	for i, eaxc := range s.cfg.UlEaxc {
		s.cplaneRepo.Add(target, eaxc, ctx)

		msg := wire.CplaneMessage{
			Direction:   ofhtypes.DirectionUplink,
			FilterIndex: ctx.FilterIndex,
			Slot:        target,
			StartSymbol: 0,
			SectionID:   uint16(i),
			Context:     ctx,
			ReMask:      0x0FFF,
			Comp:        s.cfg.CompressionUL,
		}
		payload := wire.EncodeCplane(msg)
		ecpri := wire.EncodeEcpri(wire.MsgTypeRtControlData, uint16(eaxc), uint16(s.nextSeq(eaxc))<<8, payload)
		frames = append(frames, wire.EncodeVlanFrame(s.cfg.Vlan, ecpri))
	}

	if err := s.sender.Send(frames); err != nil {
		s.log.WithError(err).Warn("failed to send demo scheduling grant")
	}
}

func (s *demoScheduler) nextSeq(eaxc ofhtypes.Eaxc) uint8 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	v := s.seqByID[eaxc]
	s.seqByID[eaxc] = v + 1
	return v
}
