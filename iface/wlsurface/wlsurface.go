// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlsurface implements wl_surface: the rectangular content area
// that backs every window, popup, and subsurface (spec §4.5). Its
// object-typed arguments (the attached buffer, the opaque/input
// regions, the output named by enter/leave) must be translated between
// the client's and server's ID spaces, unlike the interfaces that only
// ever forward scalar arguments verbatim.
package wlsurface

import (
	"code.hybscloud.com/wlproxy/iface/wlcallback"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlSurface
	Version   = 6
)

// Request opcodes.
const (
	OpDestroy            uint16 = 0
	OpAttach             uint16 = 1
	OpDamage             uint16 = 2
	OpFrame              uint16 = 3
	OpSetOpaqueRegion    uint16 = 4
	OpSetInputRegion     uint16 = 5
	OpCommit             uint16 = 6
	OpSetBufferTransform uint16 = 7
	OpSetBufferScale     uint16 = 8
	OpDamageBuffer       uint16 = 9
)

// Event opcodes.
const (
	OpEnter uint16 = 0
	OpLeave uint16 = 1
)

const (
	SetBufferTransformSince uint32 = 2
	SetBufferScaleSince     uint32 = 3
	DamageBufferSince       uint32 = 4
)

// Handler is wl_surface's trait.
type Handler interface {
	Destroy(sides wlobject.Sides) error
	Attach(buffer wire.ObjectID, x, y int32, sides wlobject.Sides) error
	Damage(x, y, width, height int32, sides wlobject.Sides) error
	Frame(callback wire.ObjectID, sides wlobject.Sides) error
	SetOpaqueRegion(region wire.ObjectID, sides wlobject.Sides) error
	SetInputRegion(region wire.ObjectID, sides wlobject.Sides) error
	Commit(sides wlobject.Sides) error
	SetBufferTransform(transform int32, sides wlobject.Sides) error
	SetBufferScale(scale int32, sides wlobject.Sides) error
	DamageBuffer(x, y, width, height int32, sides wlobject.Sides) error
	Enter(output wire.ObjectID, sides wlobject.Sides) error
	Leave(output wire.ObjectID, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_surface.
type Proxy struct {
	core    wlobject.Core
	handler wlobject.HandlerSlot[Handler]
}

// NewProxy returns a Proxy with DefaultHandler installed.
func NewProxy(version uint32) *Proxy {
	p := &Proxy{core: wlobject.NewCore(Interface, version)}
	p.handler = wlobject.NewHandlerSlot[Handler](DefaultHandler{proxy: p})
	return p
}

func (p *Proxy) ObjectCore() *wlobject.Core { return &p.core }
func (p *Proxy) Install(h Handler)          { p.handler.Install(h) }

func TrySendDestroy(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpDestroy)
}

func TrySendAttach(target wire.ObjectID, buffer wire.ObjectID, x, y int32) []byte {
	e := wire.NewEncoder()
	e.Object(buffer)
	e.Int32(x)
	e.Int32(y)
	return e.Finish(target, OpAttach)
}

func trySendRect(target wire.ObjectID, opcode uint16, x, y, width, height int32) []byte {
	e := wire.NewEncoder()
	e.Int32(x)
	e.Int32(y)
	e.Int32(width)
	e.Int32(height)
	return e.Finish(target, opcode)
}

func TrySendDamage(target wire.ObjectID, x, y, width, height int32) []byte {
	return trySendRect(target, OpDamage, x, y, width, height)
}

func TrySendDamageBuffer(target wire.ObjectID, x, y, width, height int32) []byte {
	return trySendRect(target, OpDamageBuffer, x, y, width, height)
}

func TrySendFrame(target wire.ObjectID, serverID wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	return e.Finish(target, OpFrame)
}

func TrySendSetOpaqueRegion(target wire.ObjectID, region wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Object(region)
	return e.Finish(target, OpSetOpaqueRegion)
}

func TrySendSetInputRegion(target wire.ObjectID, region wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Object(region)
	return e.Finish(target, OpSetInputRegion)
}

func TrySendCommit(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpCommit)
}

func TrySendSetBufferTransform(target wire.ObjectID, transform int32) []byte {
	e := wire.NewEncoder()
	e.Int32(transform)
	return e.Finish(target, OpSetBufferTransform)
}

func TrySendSetBufferScale(target wire.ObjectID, scale int32) []byte {
	e := wire.NewEncoder()
	e.Int32(scale)
	return e.Finish(target, OpSetBufferScale)
}

func TrySendEnter(target wire.ObjectID, output wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Object(output)
	return e.Finish(target, OpEnter)
}

func TrySendLeave(target wire.ObjectID, output wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Object(output)
	return e.Finish(target, OpLeave)
}

// HandleRequest decodes a client->proxy wl_surface request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpDestroy:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Destroy(sides) })
	case OpAttach:
		buffer, err := d.Object("buffer")
		if err != nil {
			return err
		}
		x, err := d.Int32("x")
		if err != nil {
			return err
		}
		y, err := d.Int32("y")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Attach(buffer, x, y, sides) })
	case OpDamage:
		x, y, w, ht, err := decodeRect(d)
		if err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Damage(x, y, w, ht, sides) })
	case OpFrame:
		callback, err := d.NewIDArg("callback", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Frame(callback, sides) })
	case OpSetOpaqueRegion:
		region, err := d.Object("region")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetOpaqueRegion(region, sides) })
	case OpSetInputRegion:
		region, err := d.Object("region")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetInputRegion(region, sides) })
	case OpCommit:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Commit(sides) })
	case OpSetBufferTransform:
		transform, err := d.Int32("transform")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetBufferTransform(transform, sides) })
	case OpSetBufferScale:
		scale, err := d.Int32("scale")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetBufferScale(scale, sides) })
	case OpDamageBuffer:
		x, y, w, ht, err := decodeRect(d)
		if err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.DamageBuffer(x, y, w, ht, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent decodes a server->proxy wl_surface event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpEnter:
		output, err := d.Object("output")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Enter(output, sides) })
	case OpLeave:
		output, err := d.Object("output")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Leave(output, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

func decodeRect(d *wire.Decoder) (x, y, w, h int32, err error) {
	if x, err = d.Int32("x"); err != nil {
		return
	}
	if y, err = d.Int32("y"); err != nil {
		return
	}
	if w, err = d.Int32("width"); err != nil {
		return
	}
	if h, err = d.Int32("height"); err != nil {
		return
	}
	err = d.Finish()
	return
}

// DefaultHandler forwards every request to the server with object
// arguments translated to their server-side IDs, forwards both events to
// the client with the output argument translated the other way, and
// retires the object on destroy.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) forwardToServer(sides wlobject.Sides, frame []byte) {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(frame, nil)
	}
}

func (h DefaultHandler) forwardToClient(sides wlobject.Sides, frame []byte) {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(frame, nil)
	}
}

func (h DefaultHandler) Destroy(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendDestroy(core.ServerID))
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) Attach(buffer wire.ObjectID, x, y int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendAttach(core.ServerID, sides.ResolveServerID(buffer), x, y))
	return nil
}

func (h DefaultHandler) Damage(x, y, width, height int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendDamage(core.ServerID, x, y, width, height))
	return nil
}

func (h DefaultHandler) DamageBuffer(x, y, width, height int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendDamageBuffer(core.ServerID, x, y, width, height))
	return nil
}

func (h DefaultHandler) Frame(callbackClientID wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := wlcallback.NewProxy(core.Version)
	childCore := child.ObjectCore()
	childCore.ClientID = callbackClientID
	childCore.OwnerClientID = sides.ClientNumericID
	if sides.ClientReg != nil {
		sides.ClientReg.Insert(callbackClientID, child)
	}
	if !core.ForwardToServer || sides.ServerOut == nil || sides.ServerReg == nil {
		return nil
	}
	serverID, err := sides.ServerReg.Allocate()
	if err != nil {
		return err
	}
	childCore.ServerID = serverID
	sides.ServerReg.Insert(serverID, child)
	sides.ServerOut.QueueMessage(TrySendFrame(core.ServerID, serverID), nil)
	return nil
}

func (h DefaultHandler) SetOpaqueRegion(region wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetOpaqueRegion(core.ServerID, sides.ResolveServerID(region)))
	return nil
}

func (h DefaultHandler) SetInputRegion(region wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetInputRegion(core.ServerID, sides.ResolveServerID(region)))
	return nil
}

func (h DefaultHandler) Commit(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendCommit(core.ServerID))
	return nil
}

func (h DefaultHandler) SetBufferTransform(transform int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetBufferTransform(core.ServerID, transform))
	return nil
}

func (h DefaultHandler) SetBufferScale(scale int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToServer(sides, TrySendSetBufferScale(core.ServerID, scale))
	return nil
}

func (h DefaultHandler) Enter(output wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendEnter(core.ClientID, sides.ResolveClientID(output)))
	return nil
}

func (h DefaultHandler) Leave(output wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendLeave(core.ClientID, sides.ResolveClientID(output)))
	return nil
}
