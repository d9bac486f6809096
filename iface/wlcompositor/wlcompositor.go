// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlcompositor implements wl_compositor: the factory object for
// wl_surface and wl_region (spec §4.5). It defines no events.
package wlcompositor

import (
	"fmt"

	"code.hybscloud.com/wlproxy/iface/wlregion"
	"code.hybscloud.com/wlproxy/iface/wlsurface"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlCompositor
	Version   = 6
)

// Request opcodes.
const (
	OpCreateSurface uint16 = 0
	OpCreateRegion  uint16 = 1
)

// Handler is wl_compositor's trait.
type Handler interface {
	CreateSurface(id wire.ObjectID, sides wlobject.Sides) error
	CreateRegion(id wire.ObjectID, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_compositor.
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

// TrySendCreateSurface encodes the create_surface request translated to
// serverID.
func TrySendCreateSurface(target wire.ObjectID, serverID wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	return e.Finish(target, OpCreateSurface)
}

// TrySendCreateRegion encodes the create_region request translated to
// serverID.
func TrySendCreateRegion(target wire.ObjectID, serverID wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	return e.Finish(target, OpCreateRegion)
}

// HandleRequest decodes a client->proxy wl_compositor request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpCreateSurface:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.CreateSurface(id, sides) })
	case OpCreateRegion:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.CreateRegion(id, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent always fails: wl_compositor defines no events.
func (p *Proxy) HandleEvent(opcode uint16, _ *wire.Decoder, _ wlobject.Sides) error {
	return fmt.Errorf("wlcompositor: interface has no events, got opcode %d", opcode)
}

// DefaultHandler mints the matching child object on both sides and
// forwards the request translated to the server-side id the proxy minted.
type DefaultHandler struct{ proxy *Proxy }

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

func (h DefaultHandler) CreateSurface(id wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := wlsurface.NewProxy(core.Version)
	return bindChild(core, id, child, sides, func(serverID wire.ObjectID) []byte {
		return TrySendCreateSurface(core.ServerID, serverID)
	})
}

func (h DefaultHandler) CreateRegion(id wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := wlregion.NewProxy(core.Version)
	return bindChild(core, id, child, sides, func(serverID wire.ObjectID) []byte {
		return TrySendCreateRegion(core.ServerID, serverID)
	})
}
