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

//go:build linux

package netio

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"golang.org/x/sys/unix"
)

// AfPacketTransport is the concrete EthernetReceiver/FrameSender the
// cmd/ binaries wire in: a Linux AF_PACKET SOCK_RAW socket bound to one
// interface, receiving every frame that reaches it (VLAN/eCPRI
// filtering happens downstream, in the receiver/emulator's decode
// pipeline) and sending bursts back out the same interface.
type AfPacketTransport struct {
	ifIndex int
	fd      int

	mu       sync.Mutex
	notifier FrameNotifier

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func htons(v uint16) uint16 { return v<<8 | v>>8 }

// NewAfPacketTransport opens and binds a raw socket on ifaceName. The
// caller must run as (or be granted CAP_NET_RAW for) a privileged user.
func NewAfPacketTransport(ifaceName string) (*AfPacketTransport, error) {
	iface, err := net.InterfaceByName(ifaceName)
	if err != nil {
		return nil, fmt.Errorf("netio: resolving interface %s: %w", ifaceName, err)
	}

	fd, err := unix.Socket(unix.AF_PACKET, unix.SOCK_RAW, int(htons(unix.ETH_P_ALL)))
	if err != nil {
		return nil, fmt.Errorf("netio: opening AF_PACKET socket: %w", err)
	}

	addr := unix.SockaddrLinklayer{Protocol: htons(unix.ETH_P_ALL), Ifindex: iface.Index}
	if err := unix.Bind(fd, &addr); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("netio: binding to %s: %w", ifaceName, err)
	}

	return &AfPacketTransport{ifIndex: iface.Index, fd: fd}, nil
}

// SetFrameNotifier implements EthernetReceiver.
func (t *AfPacketTransport) SetFrameNotifier(n FrameNotifier) {
	t.mu.Lock()
	t.notifier = n
	t.mu.Unlock()
}

// Start implements EthernetReceiver: spawns the receive loop.
func (t *AfPacketTransport) Start() error {
	t.stopCh = make(chan struct{})
	t.wg.Add(1)
	go t.recvLoop()
	return nil
}

// Stop implements EthernetReceiver: shuts the socket down for reads,
// which unblocks the pending Recvfrom, then waits for the loop to exit.
func (t *AfPacketTransport) Stop() {
	close(t.stopCh)
	unix.Shutdown(t.fd, unix.SHUT_RDWR)
	t.wg.Wait()
	unix.Close(t.fd)
}

func (t *AfPacketTransport) recvLoop() {
	defer t.wg.Done()

	buf := make([]byte, 9000)
	for {
		select {
		case <-t.stopCh:
			return
		default:
		}

		n, _, err := unix.Recvfrom(t.fd, buf, 0)
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return
		}

		t.mu.Lock()
		notifier := t.notifier
		t.mu.Unlock()
		if notifier == nil {
			continue
		}

		frame := make([]byte, n)
		copy(frame, buf[:n])
		notifier.OnNewFrame(SliceRxBuffer(frame))
	}
}

// Send implements FrameSender. frames beyond MaxBurstSize are rejected
// up front rather than silently truncated.
func (t *AfPacketTransport) Send(frames [][]byte) error {
	if len(frames) > MaxBurstSize {
		return fmt.Errorf("netio: burst of %d frames exceeds MaxBurstSize %d", len(frames), MaxBurstSize)
	}

	addr := unix.SockaddrLinklayer{Ifindex: t.ifIndex}
	for _, f := range frames {
		if err := unix.Sendto(t.fd, f, 0, &addr); err != nil {
			return fmt.Errorf("netio: sending frame: %w", err)
		}
	}
	return nil
}

var _ EthernetReceiver = (*AfPacketTransport)(nil)
var _ FrameSender = (*AfPacketTransport)(nil)
