// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wldisplay implements wl_display: the one object every client
// connection starts with, object ID 1 by convention (spec §4.5). Its
// sync/get_registry requests mint children the ordinary way; its
// delete_id event is special — it retires the named object out of both
// ID registries and re-stamps the event with the object's client-side
// ID rather than forwarding the server-side number verbatim (spec §4
// item 4's "delete_id re-keys the freed ID" note).
package wldisplay

import (
	"code.hybscloud.com/wlproxy/iface/wlcallback"
	"code.hybscloud.com/wlproxy/iface/wlregistry"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlDisplay
	Version   = 1
)

// Request opcodes.
const (
	OpSync        uint16 = 0
	OpGetRegistry uint16 = 1
)

// Event opcodes.
const (
	OpError    uint16 = 0
	OpDeleteID uint16 = 1
)

// Handler is wl_display's trait.
type Handler interface {
	Sync(callback wire.ObjectID, sides wlobject.Sides) error
	GetRegistry(registry wire.ObjectID, sides wlobject.Sides) error
	Error(objectID wire.ObjectID, code uint32, message string, sides wlobject.Sides) error
	DeleteID(id wire.ObjectID, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_display.
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

func TrySendSync(target wire.ObjectID, serverID wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	return e.Finish(target, OpSync)
}

func TrySendGetRegistry(target wire.ObjectID, serverID wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	return e.Finish(target, OpGetRegistry)
}

func TrySendError(target wire.ObjectID, objectID wire.ObjectID, code uint32, message string) []byte {
	e := wire.NewEncoder()
	e.Object(objectID)
	e.Uint32(code)
	e.String(message)
	return e.Finish(target, OpError)
}

func TrySendDeleteID(target wire.ObjectID, id wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Uint32(uint32(id))
	return e.Finish(target, OpDeleteID)
}

// HandleRequest decodes a client->proxy wl_display request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpSync:
		callback, err := d.NewIDArg("callback", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Sync(callback, sides) })
	case OpGetRegistry:
		registry, err := d.NewIDArg("registry", false)
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.GetRegistry(registry, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent decodes a server->proxy wl_display event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpError:
		objectID, err := d.Object("object_id")
		if err != nil {
			return err
		}
		code, err := d.Uint32("code")
		if err != nil {
			return err
		}
		message, err := d.String("message")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Error(objectID, code, message, sides) })
	case OpDeleteID:
		id, err := d.Uint32("id")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.DeleteID(wire.ObjectID(id), sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// DefaultHandler mints the wl_callback/wl_registry singletons every
// client connection relies on and retranslates delete_id across both
// ID registries before forwarding it.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) Sync(callback wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := wlcallback.NewProxy(core.Version)
	childCore := child.ObjectCore()
	childCore.ClientID = callback
	childCore.OwnerClientID = sides.ClientNumericID
	if sides.ClientReg != nil {
		sides.ClientReg.Insert(callback, child)
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
	sides.ServerOut.QueueMessage(TrySendSync(core.ServerID, serverID), nil)
	return nil
}

func (h DefaultHandler) GetRegistry(registry wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := wlregistry.NewProxy(core.Version)
	childCore := child.ObjectCore()
	childCore.ClientID = registry
	childCore.OwnerClientID = sides.ClientNumericID
	if sides.ClientReg != nil {
		sides.ClientReg.Insert(registry, child)
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
	sides.ServerOut.QueueMessage(TrySendGetRegistry(core.ServerID, serverID), nil)
	return nil
}

func (h DefaultHandler) Error(objectID wire.ObjectID, code uint32, message string, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendError(core.ClientID, sides.ResolveClientID(objectID), code, message), nil)
	}
	return nil
}

// DeleteID retires the server-named object out of both ID registries
// and, if it ever had a client-side binding, re-emits delete_id to the
// owning client naming that binding's own client ID — the server's
// freed number means nothing on the client's wire. The event is routed
// by the retired object's own OwnerClientID, not by this display
// object's: the shared server-side wl_display singleton belongs to no
// client in particular, so sides.ClientOut/ClientReg (resolved against
// this handler's own core) are nil here, and only ClientByOwner can
// find the connection that actually needs to hear about the deletion.
func (h DefaultHandler) DeleteID(id wire.ObjectID, sides wlobject.Sides) error {
	var clientID wire.ObjectID
	var ownerClientID uint32
	if sides.ServerReg != nil {
		if obj, err := sides.ServerReg.Lookup(id); err == nil {
			objCore := obj.ObjectCore()
			clientID = objCore.ClientID
			ownerClientID = objCore.OwnerClientID
			objCore.Destroyed = true
			objCore.ServerID = 0
		}
		sides.ServerReg.Remove(id)
	}
	if clientID == 0 {
		return nil
	}

	clientOut, clientReg := sides.ClientOut, sides.ClientReg
	if sides.ClientByOwner != nil {
		if out, reg, ok := sides.ClientByOwner(ownerClientID); ok {
			clientOut, clientReg = out, reg
		}
	}
	if clientOut != nil {
		clientOut.QueueMessage(TrySendDeleteID(wire.DisplayObjectID, clientID), nil)
	}
	if clientReg != nil {
		clientReg.Remove(clientID)
	}
	return nil
}
