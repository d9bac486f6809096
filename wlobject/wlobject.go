// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlobject implements the shared per-object state every proxied
// Wayland object carries (spec §3 "Object") and the single-borrow handler
// slot every interface module's generated proxy struct embeds (spec
// §4.3). It deliberately knows nothing about any specific interface's
// messages — that lives in the iface/* packages, one per interface,
// which embed Core and a HandlerSlot of their own handler trait type.
package wlobject

import (
	"code.hybscloud.com/wlproxy/protoerr"
	"code.hybscloud.com/wlproxy/wire"
)

// Interface is a tag drawn from the closed, generator-known set of
// interfaces this proxy understands.
type Interface string

// The closed interface catalog (SPEC_FULL.md §4 item 1).
const (
	InterfaceWlDisplay        Interface = "wl_display"
	InterfaceWlRegistry       Interface = "wl_registry"
	InterfaceWlCallback       Interface = "wl_callback"
	InterfaceWlCompositor     Interface = "wl_compositor"
	InterfaceWlSubcompositor  Interface = "wl_subcompositor"
	InterfaceWlRegion         Interface = "wl_region"
	InterfaceWlShm            Interface = "wl_shm"
	InterfaceWlShmPool        Interface = "wl_shm_pool"
	InterfaceWlBuffer         Interface = "wl_buffer"
	InterfaceWlSurface        Interface = "wl_surface"
	InterfaceWlOutput         Interface = "wl_output"
	InterfaceWlSeat           Interface = "wl_seat"
	InterfaceWlPointer        Interface = "wl_pointer"
	InterfaceWlKeyboard       Interface = "wl_keyboard"
	InterfaceXdgWmBase        Interface = "xdg_wm_base"
	InterfaceXdgSurface       Interface = "xdg_surface"
	InterfaceXdgToplevel      Interface = "xdg_toplevel"
)

// Core is the per-object state shared by both registries an object lives
// in (spec §3). It is mutated only from the single run-loop goroutine —
// spec §5 states the core needs no internal locking in that model.
type Core struct {
	Interface Interface
	Version   uint32

	// ServerID is this object's ID on the compositor's wire, zero until
	// allocated (possibly lazily, the first time the proxy must name the
	// object to the compositor).
	ServerID wire.ObjectID

	// ClientID is this object's ID on its owning client's wire, zero
	// until a client (or the proxy, for a server-originated new_id)
	// binds it into a client's ID space.
	ClientID wire.ObjectID

	// OwnerClientID is a weak back-reference: the numeric ID of the
	// client endpoint that owns this object's client-side binding, or 0
	// for server-only, display-initiated objects (spec §9's "cyclic
	// object graph" note — the proxy's client table is the only strong
	// owner of the Client value; this field never keeps a Client alive).
	OwnerClientID uint32

	// Destroyed is a one-way flag set when either side acknowledges
	// destruction.
	Destroyed bool

	// ForwardToServer/ForwardToClient govern whether the default handler
	// re-emits a message received from that direction. Either may be
	// cleared to absorb messages silently.
	ForwardToServer bool
	ForwardToClient bool
}

// NewCore returns a Core with both forwarding directions enabled, the
// default policy spec §4.3 describes.
func NewCore(iface Interface, version uint32) Core {
	return Core{
		Interface:       iface,
		Version:         version,
		ForwardToServer: true,
		ForwardToClient: true,
	}
}

// AddressableOnServer reports whether this object can currently be named
// on the server-side wire (spec §3 invariant).
func (c *Core) AddressableOnServer() bool {
	return c.ServerID != 0 && !c.Destroyed
}

// AddressableOnClient reports whether this object can currently be named
// on its owning client's wire.
func (c *Core) AddressableOnClient() bool {
	return c.ClientID != 0 && !c.Destroyed
}

// Proxy is implemented by every interface module's generated proxy
// struct. It is the common handle regid.Registry stores, letting the
// dispatch loop and ID registries inspect an object's shared state
// without knowing its concrete interface.
type Proxy interface {
	ObjectCore() *Core
}

// OutboundSink is the minimal capability a DefaultHandler needs to
// forward a message onto the opposite endpoint: queue an already-encoded
// frame, plus any fds that travel with it, for the next flush.
// endpoint.Endpoint satisfies this; wlobject does not import endpoint to
// avoid the import cycle endpoint->regid->wlobject would otherwise close.
type OutboundSink interface {
	QueueMessage(frame []byte, fds []int)
}

// Resolver is the minimal registry capability a DefaultHandler needs:
// look up an object by the ID the wire names it with on that side, mint
// a fresh ID when a new_id argument's opposite-side binding has not
// happened yet, and record the resulting pairing. regid.Registry
// satisfies this structurally; wlobject does not import regid to avoid
// the same cycle OutboundSink avoids.
type Resolver interface {
	Lookup(id wire.ObjectID) (Proxy, error)
	Allocate() (wire.ObjectID, error)
	Insert(id wire.ObjectID, obj Proxy)
	Remove(id wire.ObjectID)
}

// Sides bundles what a DefaultHandler needs to resolve and forward one
// message: the outbound sink and resolver for both the client that owns
// the object and the shared server connection. Whichever side the
// message did not arrive from is the forwarding target.
//
// ClientOut/ClientReg are nil when an event arrives for an object that
// has not yet been bound into any client's registry (a global the proxy
// has not forwarded to a client-side bind yet) — DefaultHandler must
// treat that as "no client endpoint" and drop the forward, not panic.
type Sides struct {
	ClientOut OutboundSink
	ClientReg Resolver
	// ClientNumericID is the owning client connection's tag (spec §6
	// "numeric client id"), zero when ClientOut/ClientReg are absent. A
	// DefaultHandler that mints a child object stamps it into the new
	// object's Core.OwnerClientID so later server-originated events for
	// that object can be routed back to the right client (dispatch's
	// Loop.sidesFor looks it up).
	ClientNumericID uint32
	ServerOut       OutboundSink
	ServerReg       Resolver

	// ClientByOwner resolves the outbound sink and resolver for an
	// arbitrary owning client, keyed by Core.OwnerClientID, for the rare
	// handler whose effect lands on an object other than the one the
	// message was addressed to (wl_display's delete_id: the server
	// display singleton has no owner of its own, but the object it names
	// does). Nil when the caller has no such lookup to offer.
	ClientByOwner func(ownerClientID uint32) (out OutboundSink, reg Resolver, ok bool)
}

// ResolveServerID translates a client-side object argument (e.g. the
// buffer named in wl_surface.attach) to the server-side ID of the same
// object, or 0 if clientID is null or the object is not yet known on the
// client side (the null-forwarding case DefaultHandlers must tolerate).
func (s Sides) ResolveServerID(clientID wire.ObjectID) wire.ObjectID {
	if clientID.IsNull() || s.ClientReg == nil {
		return 0
	}
	obj, err := s.ClientReg.Lookup(clientID)
	if err != nil {
		return 0
	}
	return obj.ObjectCore().ServerID
}

// ResolveClientID translates a server-side object argument (e.g. the
// output named in a server-originated wl_surface.enter event) to the
// client-side ID of the same object, or 0 if serverID is null or the
// object has no client-side binding yet.
func (s Sides) ResolveClientID(serverID wire.ObjectID) wire.ObjectID {
	if serverID.IsNull() || s.ServerReg == nil {
		return 0
	}
	obj, err := s.ServerReg.Lookup(serverID)
	if err != nil {
		return 0
	}
	return obj.ObjectCore().ClientID
}

// Dispatcher is the per-interface entry point spec §4.4 calls
// handle_request/handle_event: given an opcode and a Decoder already
// positioned at the start of the payload, decode the signature's
// arguments and invoke the active handler. HandleRequest decodes a
// client->proxy message; HandleEvent decodes a server->proxy message —
// each generated module implements both against its own opcode table.
type Dispatcher interface {
	Proxy
	HandleRequest(opcode uint16, d *wire.Decoder, sides Sides) error
	HandleEvent(opcode uint16, d *wire.Decoder, sides Sides) error
}

// HandlerSlot is the per-object handler holder (spec §4.3): at most one
// mutable access to the installed handler at a time. H is the
// interface-specific handler trait type (one method per message) that
// each iface/* package declares for itself.
type HandlerSlot[H any] struct {
	handler  H
	borrowed bool
}

// NewHandlerSlot returns a slot with h pre-installed. Every generated
// proxy constructor installs its package's DefaultHandler here so a slot
// is never "empty".
func NewHandlerSlot[H any](h H) HandlerSlot[H] {
	return HandlerSlot[H]{handler: h}
}

// Install replaces the active handler. Policy plug-ins (out of scope per
// spec §1) call this to intercept a single object's messages.
func (s *HandlerSlot[H]) Install(h H) { s.handler = h }

// Use invokes fn with the active handler, enforcing the single-borrow
// rule: a dispatch that re-enters through another code path while fn is
// still running fails with ErrHandlerBorrowed instead of corrupting the
// slot or deadlocking (there is no lock to deadlock on; spec §4.3).
func (s *HandlerSlot[H]) Use(fn func(h H) error) error {
	if s.borrowed {
		return protoerr.ErrHandlerBorrowed
	}
	s.borrowed = true
	defer func() { s.borrowed = false }()
	return fn(s.handler)
}
