// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlregistry implements wl_registry: the global directory every
// client queries via wl_display.get_registry, and the bind factory that
// turns a name/interface/version triple into a concrete child object
// (spec §4.5).
package wlregistry

import (
	"fmt"

	"code.hybscloud.com/wlproxy/iface/wlcompositor"
	"code.hybscloud.com/wlproxy/iface/wloutput"
	"code.hybscloud.com/wlproxy/iface/wlseat"
	"code.hybscloud.com/wlproxy/iface/wlshm"
	"code.hybscloud.com/wlproxy/iface/wlsubcompositor"
	"code.hybscloud.com/wlproxy/iface/xdgwmbase"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlRegistry
	Version   = 1
)

// Request opcode.
const OpBind uint16 = 0

// Event opcodes.
const (
	OpGlobal       uint16 = 0
	OpGlobalRemove uint16 = 1
)

const (
	BindSince         uint32 = 1
	GlobalSince       uint32 = 1
	GlobalRemoveSince uint32 = 1
)

// Handler is wl_registry's trait: one method per message.
type Handler interface {
	Bind(name uint32, ifaceName string, version uint32, id wire.ObjectID, sides wlobject.Sides) error
	Global(name uint32, ifaceName string, version uint32, sides wlobject.Sides) error
	GlobalRemove(name uint32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_registry.
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

// TrySendGlobal encodes the global event frame.
func TrySendGlobal(target wire.ObjectID, name uint32, ifaceName string, version uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(name)
	e.String(ifaceName)
	e.Uint32(version)
	return e.Finish(target, OpGlobal)
}

// TrySendGlobalRemove encodes the global_remove event frame.
func TrySendGlobalRemove(target wire.ObjectID, name uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(name)
	return e.Finish(target, OpGlobalRemove)
}

// TrySendBind encodes a bind request translated to serverID, the id the
// proxy minted for the child object on the server-facing wire.
func TrySendBind(target wire.ObjectID, name uint32, ifaceName string, version uint32, serverID wire.ObjectID) []byte {
	e := wire.NewEncoder()
	e.Uint32(name)
	e.NewIDFull(ifaceName, version, serverID)
	return e.Finish(target, OpBind)
}

// HandleRequest decodes a client->proxy wl_registry request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpBind:
		name, err := d.Uint32("name")
		if err != nil {
			return err
		}
		ifaceName, version, id, err := d.NewIDFull("id")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Bind(name, ifaceName, version, id, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent decodes a server->proxy wl_registry event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpGlobal:
		name, err := d.Uint32("name")
		if err != nil {
			return err
		}
		ifaceName, err := d.String("interface")
		if err != nil {
			return err
		}
		version, err := d.Uint32("version")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Global(name, ifaceName, version, sides) })
	case OpGlobalRemove:
		name, err := d.Uint32("name")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.GlobalRemove(name, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// newBoundProxy is the bind factory spec §4.5 requires: it verifies
// ifaceName against the closed generator-emitted interface set and
// constructs the matching concrete object. Interfaces outside this set
// — anything wl_registry advertises that this proxy does not implement
// — fail bind with an error, per SPEC_FULL.md §4 item 1's documented
// limitation.
func newBoundProxy(ifaceName string, version uint32) (wlobject.Dispatcher, error) {
	switch wlobject.Interface(ifaceName) {
	case wlobject.InterfaceWlCompositor:
		return wlcompositor.NewProxy(version), nil
	case wlobject.InterfaceWlSubcompositor:
		return wlsubcompositor.NewProxy(version), nil
	case wlobject.InterfaceWlShm:
		return wlshm.NewProxy(version), nil
	case wlobject.InterfaceWlOutput:
		return wloutput.NewProxy(version), nil
	case wlobject.InterfaceWlSeat:
		return wlseat.NewProxy(version), nil
	case wlobject.InterfaceXdgWmBase:
		return xdgwmbase.NewProxy(version), nil
	default:
		return nil, fmt.Errorf("wlregistry: bind: unrecognized interface %q", ifaceName)
	}
}

// DefaultHandler forwards global/global_remove verbatim to the owning
// client and, for bind, mints the matching concrete child object,
// registers it on both sides, and forwards a request translated to the
// server-side id the proxy minted.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) Global(name uint32, ifaceName string, version uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if !core.ForwardToClient || sides.ClientOut == nil || core.ClientID == 0 {
		return nil
	}
	sides.ClientOut.QueueMessage(TrySendGlobal(core.ClientID, name, ifaceName, version), nil)
	return nil
}

func (h DefaultHandler) GlobalRemove(name uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if !core.ForwardToClient || sides.ClientOut == nil || core.ClientID == 0 {
		return nil
	}
	sides.ClientOut.QueueMessage(TrySendGlobalRemove(core.ClientID, name), nil)
	return nil
}

func (h DefaultHandler) Bind(name uint32, ifaceName string, version uint32, clientID wire.ObjectID, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if clientID.IsNull() {
		return wire.ErrNullNewID
	}
	child, err := newBoundProxy(ifaceName, version)
	if err != nil {
		return err
	}
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
	sides.ServerOut.QueueMessage(TrySendBind(core.ServerID, name, ifaceName, version, serverID), nil)
	return nil
}
