// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package xdgsurface implements xdg_surface: the role-neutral geometry
// and configure-serial bookkeeping shared by every xdg_shell window
// (spec §4.5). xdg_popup is outside this proxy's closed interface
// catalog, so get_popup reports an error the way wlsubcompositor's
// get_subsurface does; get_toplevel mints the one role this proxy models.
package xdgsurface

import (
	"fmt"

	"code.hybscloud.com/wlproxy/iface/xdgtoplevel"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceXdgSurface
	Version   = 6
)

// Request opcodes.
const (
	OpDestroy            uint16 = 0
	OpGetToplevel        uint16 = 1
	OpGetPopup           uint16 = 2
	OpSetWindowGeometry  uint16 = 3
	OpAckConfigure       uint16 = 4
)

// Event opcode.
const OpConfigure uint16 = 0

// Handler is xdg_surface's trait.
type Handler interface {
	Destroy(sides wlobject.Sides) error
	GetToplevel(id wire.ObjectID, sides wlobject.Sides) error
	GetPopup(id, parent, positioner wire.ObjectID, sides wlobject.Sides) error
	SetWindowGeometry(x, y, width, height int32, sides wlobject.Sides) error
	AckConfigure(serial uint32, sides wlobject.Sides) error
	Configure(serial uint32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for xdg_surface.
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

func TrySendGetToplevel(target wire.ObjectID, serverID wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	return e.Finish(target, OpGetToplevel)
}

func TrySendSetWindowGeometry(target wire.ObjectID, x, y, width, height int32) []byte {
	e := wire.NewEncoder()
	e.Int32(x)
	e.Int32(y)
	e.Int32(width)
	e.Int32(height)
	return e.Finish(target, OpSetWindowGeometry)
}

func TrySendAckConfigure(target wire.ObjectID, serial uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	return e.Finish(target, OpAckConfigure)
}

func TrySendConfigure(target wire.ObjectID, serial uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(serial)
	return e.Finish(target, OpConfigure)
}

// HandleRequest decodes a client->proxy xdg_surface request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpDestroy:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Destroy(sides) })
	case OpGetToplevel:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.GetToplevel(id, sides) })
	case OpGetPopup:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		parent, err := d.Object("parent")
		if err != nil {
			return err
		}
		positioner, err := d.Object("positioner")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.GetPopup(id, parent, positioner, sides) })
	case OpSetWindowGeometry:
		x, y, w, ht, err := decodeRect(d)
		if err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.SetWindowGeometry(x, y, w, ht, sides) })
	case OpAckConfigure:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.AckConfigure(serial, sides) })
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

// HandleEvent decodes a server->proxy xdg_surface event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpConfigure:
		serial, err := d.Uint32("serial")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Configure(serial, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// DefaultHandler mints an xdg_toplevel for get_toplevel, refuses
// get_popup (xdg_popup is unmodeled), forwards geometry/ack/configure
// verbatim, and retires the object on destroy.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) Destroy(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendDestroy(core.ServerID), nil)
	}
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) GetToplevel(id wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := xdgtoplevel.NewProxy(core.Version)
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
	sides.ServerOut.QueueMessage(TrySendGetToplevel(core.ServerID, serverID), nil)
	return nil
}

func (h DefaultHandler) GetPopup(wire.ObjectID, wire.ObjectID, wire.ObjectID, wlobject.Sides) error {
	return fmt.Errorf("xdgsurface: get_popup: xdg_popup is not in the proxied interface catalog")
}

func (h DefaultHandler) SetWindowGeometry(x, y, width, height int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendSetWindowGeometry(core.ServerID, x, y, width, height), nil)
	}
	return nil
}

func (h DefaultHandler) AckConfigure(serial uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendAckConfigure(core.ServerID, serial), nil)
	}
	return nil
}

func (h DefaultHandler) Configure(serial uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendConfigure(core.ClientID, serial), nil)
	}
	return nil
}
