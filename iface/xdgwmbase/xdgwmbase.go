// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package xdgwmbase implements xdg_wm_base: the window-management
// global, its xdg_surface factory, and the ping/pong liveness handshake
// that must pass through unmodified in both directions (spec §4 item 5).
// xdg_positioner and xdg_popup are outside this proxy's closed interface
// catalog, so create_positioner/get_popup report an error the way
// wlsubcompositor's get_subsurface does.
package xdgwmbase

import (
	"fmt"

	"code.hybscloud.com/wlproxy/iface/xdgsurface"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceXdgWmBase
	Version   = 6
)

// Request opcodes.
const (
	OpDestroy           uint16 = 0
	OpCreatePositioner  uint16 = 1
	OpGetXdgSurface     uint16 = 2
	OpPong              uint16 = 3
)

// Event opcode.
const OpPing uint16 = 0

// Handler is xdg_wm_base's trait.
type Handler interface {
	Destroy(sides wlobject.Sides) error
	CreatePositioner(id wire.ObjectID, sides wlobject.Sides) error
	GetXdgSurface(id, surface wire.ObjectID, sides wlobject.Sides) error
	Pong(serial uint32, sides wlobject.Sides) error
	Ping(serial uint32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for xdg_wm_base.
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

func TrySendGetXdgSurface(target wire.ObjectID, serverID wire.ObjectID, surface wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	e.Object(surface)
	return e.Finish(target, OpGetXdgSurface)
}

func TrySendPong(target wire.ObjectID, serial uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	return e.Finish(target, OpPong)
}

func TrySendPing(target wire.ObjectID, serial uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	return e.Finish(target, OpPing)
}

// HandleRequest decodes a client->proxy xdg_wm_base request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpDestroy:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Destroy(sides) })
	case OpCreatePositioner:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.CreatePositioner(id, sides) })
	case OpGetXdgSurface:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		surface, err := d.Object("surface")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.GetXdgSurface(id, surface, sides) })
	case OpPong:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Pong(serial, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent decodes a server->proxy xdg_wm_base event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpPing:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Ping(serial, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// DefaultHandler mints xdg_surface children, refuses create_positioner
// (xdg_positioner is unmodeled), and passes ping/pong straight through.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) Destroy(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendDestroy(core.ServerID), nil)
	}
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) CreatePositioner(wire.ObjectID, wlobject.Sides) error {
	return fmt.Errorf("xdgwmbase: create_positioner: xdg_positioner is not in the proxied interface catalog")
}

func (h DefaultHandler) GetXdgSurface(id, surface wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := xdgsurface.NewProxy(core.Version)
	childCore := child.ObjectCore()
	childCore.ClientID = id
	childCore.OwnerClientID = sides.ClientNumericID
	if sides.ClientReg != nil {
		sides.ClientReg.Insert(id, child)
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
	sides.ServerOut.QueueMessage(TrySendGetXdgSurface(core.ServerID, serverID, sides.ResolveServerID(surface)), nil)
	return nil
}

func (h DefaultHandler) Pong(serial uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendPong(core.ServerID, serial), nil)
	}
	return nil
}

func (h DefaultHandler) Ping(serial uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendPing(core.ClientID, serial), nil)
	}
	return nil
}
