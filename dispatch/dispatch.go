// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package dispatch implements the single-threaded, unix.Poll-driven run
// loop spec §4.2/§5 describes: one readiness wait per cycle, synchronous
// processing of every whole message already buffered on a ready
// endpoint, then one flush pass over every endpoint with pending
// outbound bytes. It has no knowledge of any specific interface — it
// resolves a message's target object through the owning endpoint's
// registry and hands off to that object's wlobject.Dispatcher.
package dispatch

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"code.hybscloud.com/iox"
	"code.hybscloud.com/wlproxy/endpoint"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

// Direction says which side a Peer's inbound messages dispatch as:
// requests (client->proxy) or events (server->proxy). The opcode space
// is per-direction, so the Loop must know which table a Peer's messages
// are drawn from.
type Direction uint8

const (
	FromClient Direction = iota
	FromServer
)

// Peer is one endpoint the Loop polls, together with the routing
// information needed to resolve the opposite side of a forwarded
// message.
type Peer struct {
	Endpoint  *endpoint.Endpoint
	Direction Direction

	// ClientID identifies a FromClient peer for OwnerClientID-based
	// routing of server events back to the right client; unused for the
	// single FromServer peer.
	ClientID uint32

	// OnFatal is called exactly once when this Peer's endpoint must be
	// torn down — a decoding error (spec §4.4: "any decoding error on an
	// incoming message terminates the owning endpoint"), EOF, or a
	// transport error. It is responsible for the endpoint's cancellation
	// side effects (spec §4.2/§5): draining its outbound buffer
	// best-effort, marking every object it owns destroyed, and removing
	// the Peer from the Loop.
	OnFatal func(p *Peer, err error)

	failed bool // set by Loop.fail so OnFatal runs at most once
}

// Loop owns the set of live peers and the routing table from owning
// client ID to its Peer, so a server-side event addressed to an object
// can find the client endpoint that owns it (spec §9: one shared server
// endpoint, N client endpoints).
type Loop struct {
	server  *Peer
	clients map[uint32]*Peer
}

// NewLoop returns an empty Loop. SetServer must be called once before
// Run/RunOnce processes any FromClient peer's forwarding, since every
// client request's opposite side is the single shared server endpoint.
func NewLoop() *Loop {
	return &Loop{clients: make(map[uint32]*Peer)}
}

// SetServer installs the single shared compositor-facing peer.
func (l *Loop) SetServer(p *Peer) {
	p.Direction = FromServer
	l.server = p
}

// AddClient registers a client-facing peer under its ClientID.
func (l *Loop) AddClient(p *Peer) {
	p.Direction = FromClient
	l.clients = mapSet(l.clients, p.ClientID, p)
}

func mapSet(m map[uint32]*Peer, id uint32, p *Peer) map[uint32]*Peer {
	if m == nil {
		m = make(map[uint32]*Peer)
	}
	m[id] = p
	return m
}

// RemoveClient drops a client peer from the routing table, e.g. once
// OnFatal has finished tearing it down.
func (l *Loop) RemoveClient(id uint32) { delete(l.clients, id) }

// peers returns every live peer (server first, then clients) for one
// poll cycle's fd set.
func (l *Loop) peers() []*Peer {
	peers := make([]*Peer, 0, len(l.clients)+1)
	if l.server != nil {
		peers = append(peers, l.server)
	}
	for _, p := range l.clients {
		peers = append(peers, p)
	}
	return peers
}

// RunOnce executes a single poll-wait-and-process cycle: builds a
// pollfd set (POLLIN always, POLLOUT when a peer has unflushed bytes),
// blocks up to timeoutMillis (-1 waits indefinitely, matching
// unix.Poll's own convention), then drains every ready endpoint's
// complete messages and flushes every endpoint with pending output.
func (l *Loop) RunOnce(timeoutMillis int) error {
	peers := l.peers()
	if len(peers) == 0 {
		return nil
	}
	pollfds := make([]unix.PollFd, len(peers))
	for i, p := range peers {
		events := int16(unix.POLLIN)
		if p.Endpoint.FlushQueued {
			events |= unix.POLLOUT
		}
		pollfds[i] = unix.PollFd{Fd: int32(p.Endpoint.Fd()), Events: events}
	}

	n, err := unix.Poll(pollfds, timeoutMillis)
	if err != nil {
		if errors.Is(err, unix.EINTR) {
			return nil
		}
		return fmt.Errorf("dispatch: poll: %w", err)
	}
	if n == 0 {
		return nil
	}

	for i, pfd := range pollfds {
		p := peers[i]
		if pfd.Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			l.drain(p)
		}
	}
	l.flushAll(peers)
	return nil
}

// drain reads one batch from p's socket and dispatches every whole
// message it completes, stopping at the first incomplete message (more
// bytes needed) or fatal condition.
func (l *Loop) drain(p *Peer) {
	if err := p.Endpoint.FillRead(); err != nil {
		if errors.Is(err, iox.ErrWouldBlock) {
			return
		}
		l.fail(p, err)
		return
	}
	for {
		target, opcode, payload, ok, err := p.Endpoint.NextMessage()
		if err != nil {
			l.fail(p, err)
			return
		}
		if !ok {
			return
		}
		if !l.route(p, target, opcode, payload) {
			return
		}
	}
}

// route resolves target in p's own registry, builds the Sides a
// DefaultHandler needs, and invokes the object's Dispatcher. It returns
// false if a fatal error occurred (p has already been failed and
// draining must stop).
func (l *Loop) route(p *Peer, target wire.ObjectID, opcode uint16, payload []byte) bool {
	obj, err := p.Endpoint.Reg.Lookup(target)
	if err != nil {
		l.fail(p, err)
		return false
	}
	disp, ok := obj.(wlobject.Dispatcher)
	if !ok {
		l.fail(p, fmt.Errorf("dispatch: object %d has no dispatcher", target))
		return false
	}

	sides := l.sidesFor(p, obj.ObjectCore())
	d := wire.NewDecoder(payload, p.Endpoint.FDs())

	if p.Direction == FromClient {
		err = disp.HandleRequest(opcode, d, sides)
	} else {
		err = disp.HandleEvent(opcode, d, sides)
	}
	if err != nil {
		l.fail(p, err)
		return false
	}
	return true
}

// sidesFor builds the Sides a message arriving on p dispatches with. For
// a client peer the opposite side is always the single shared server
// peer. For the server peer, the opposite side is whichever client owns
// core (tracked by Core.OwnerClientID); it may be absent (nil sink) if
// the object has not yet been bound into any client's registry.
func (l *Loop) sidesFor(p *Peer, core *wlobject.Core) wlobject.Sides {
	if p.Direction == FromClient {
		return wlobject.Sides{
			ClientOut:       p.Endpoint,
			ClientReg:       p.Endpoint.Reg,
			ClientNumericID: p.ClientID,
			ServerOut:       l.server.Endpoint,
			ServerReg:       l.server.Endpoint.Reg,
			ClientByOwner:   l.clientByOwner,
		}
	}
	var sides wlobject.Sides
	sides.ServerOut = l.server.Endpoint
	sides.ServerReg = l.server.Endpoint.Reg
	sides.ClientByOwner = l.clientByOwner
	if owner, ok := l.clients[core.OwnerClientID]; ok {
		sides.ClientOut = owner.Endpoint
		sides.ClientReg = owner.Endpoint.Reg
		sides.ClientNumericID = owner.ClientID
	}
	return sides
}

// clientByOwner looks up a client peer by its numeric ID directly,
// bypassing the target object's own OwnerClientID — the escape hatch
// DefaultHandlers reach for when a server event's effect lands on an
// object other than the one it was addressed to.
func (l *Loop) clientByOwner(ownerClientID uint32) (wlobject.OutboundSink, wlobject.Resolver, bool) {
	owner, ok := l.clients[ownerClientID]
	if !ok {
		return nil, nil, false
	}
	return owner.Endpoint, owner.Endpoint.Reg, true
}

// flushAll writes every peer's accumulated outbound bytes+fds. A write
// that still has unsent bytes afterward (iox.ErrWouldBlock) is left for
// the next cycle, matching spec §4.2's backpressure contract; any other
// error is fatal for that peer.
func (l *Loop) flushAll(peers []*Peer) {
	for _, p := range peers {
		if !p.Endpoint.FlushQueued {
			continue
		}
		if err := p.Endpoint.Flush(); err != nil && !errors.Is(err, iox.ErrWouldBlock) {
			l.fail(p, err)
		}
	}
}

func (l *Loop) fail(p *Peer, err error) {
	if p.failed {
		return
	}
	p.failed = true
	if p.OnFatal != nil {
		p.OnFatal(p, err)
	}
}
