// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlseat implements wl_seat: the factory for the pointer,
// keyboard, and touch input device proxies, and the capability/name
// advertisement events (spec §4.5). wl_touch is outside this proxy's
// closed interface catalog, so get_touch reports an error the way
// wlsubcompositor's get_subsurface does.
package wlseat

import (
	"fmt"

	"code.hybscloud.com/wlproxy/iface/wlkeyboard"
	"code.hybscloud.com/wlproxy/iface/wlpointer"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlSeat
	Version   = 9
)

// Capability bits carried by the capabilities event.
const (
	CapabilityPointer  uint32 = 1
	CapabilityKeyboard uint32 = 2
	CapabilityTouch    uint32 = 4
)

// Request opcodes.
const (
	OpGetPointer  uint16 = 0
	OpGetKeyboard uint16 = 1
	OpGetTouch    uint16 = 2
	OpRelease     uint16 = 3
)

// Event opcodes.
const (
	OpCapabilities uint16 = 0
	OpName         uint16 = 1
)

const (
	ReleaseSince uint32 = 5
	NameSince    uint32 = 2
)

// Handler is wl_seat's trait.
type Handler interface {
	GetPointer(id wire.ObjectID, sides wlobject.Sides) error
	GetKeyboard(id wire.ObjectID, sides wlobject.Sides) error
	GetTouch(id wire.ObjectID, sides wlobject.Sides) error
	Release(sides wlobject.Sides) error
	Capabilities(capabilities uint32, sides wlobject.Sides) error
	Name(name string, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_seat.
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

func trySendNewID(target wire.ObjectID, opcode uint16, serverID wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	return e.Finish(target, opcode)
}

func TrySendGetPointer(target wire.ObjectID, serverID wire.ObjectID) []byte {
	return trySendNewID(target, OpGetPointer, serverID)
}

func TrySendGetKeyboard(target wire.ObjectID, serverID wire.ObjectID) []byte {
	return trySendNewID(target, OpGetKeyboard, serverID)
}

func TrySendRelease(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpRelease)
}

func TrySendCapabilities(target wire.ObjectID, capabilities uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(capabilities)
	return e.Finish(target, OpCapabilities)
}

func TrySendName(target wire.ObjectID, name string) []byte {
	e := wire.NewEncoder()
	e.String(name)
	return e.Finish(target, OpName)
}

// HandleRequest decodes a client->proxy wl_seat request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpGetPointer:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.GetPointer(id, sides) })
	case OpGetKeyboard:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.GetKeyboard(id, sides) })
	case OpGetTouch:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.GetTouch(id, sides) })
	case OpRelease:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Release(sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent decodes a server->proxy wl_seat event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpCapabilities:
		capabilities, err := d.Uint32("capabilities")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Capabilities(capabilities, sides) })
	case OpName:
		name, err := d.String("name")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Name(name, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// DefaultHandler mints wl_pointer/wl_keyboard child objects, refuses
// get_touch (wl_touch is unmodeled), forwards release, and forwards both
// events verbatim to the client.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) GetPointer(id wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := wlpointer.NewProxy(core.Version)
	return bindChild(core, id, child, sides, func(serverID wire.ObjectID) []byte {
		return TrySendGetPointer(core.ServerID, serverID)
	})
}

func (h DefaultHandler) GetKeyboard(id wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := wlkeyboard.NewProxy(core.Version)
	return bindChild(core, id, child, sides, func(serverID wire.ObjectID) []byte {
		return TrySendGetKeyboard(core.ServerID, serverID)
	})
}

func (h DefaultHandler) GetTouch(wire.ObjectID, wlobject.Sides) error {
	return fmt.Errorf("wlseat: get_touch: wl_touch is not in the proxied interface catalog")
}

func (h DefaultHandler) Release(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendRelease(core.ServerID), nil)
	}
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) Capabilities(capabilities uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendCapabilities(core.ClientID, capabilities), nil)
	}
	return nil
}

func (h DefaultHandler) Name(name string, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendName(core.ClientID, name), nil)
	}
	return nil
}

func bindChild(core *wlobject.Core, clientID wire.ObjectID, child wlobject.Dispatcher, sides wlobject.Sides, send func(serverID wire.ObjectID) []byte) error {
	childCore := child.ObjectCore()
	childCore.ClientID = clientID
	childCore.OwnerClientID = sides.ClientNumericID
	if sides.ClientReg != nil {
		sides.ClientReg.Insert(clientID, child)
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
	sides.ServerOut.QueueMessage(send(serverID), nil)
	return nil
}
