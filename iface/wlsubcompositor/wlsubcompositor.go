// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlsubcompositor implements wl_subcompositor: the factory for
// wl_subsurface objects. wl_subsurface itself is outside this proxy's
// closed interface catalog (spec §4 item 1), so get_subsurface reports
// an error rather than minting an unmodeled child; destroy still
// forwards normally.
package wlsubcompositor

import (
	"fmt"

	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlSubcompositor
	Version   = 1
)

// Request opcodes.
const (
	OpDestroy       uint16 = 0
	OpGetSubsurface uint16 = 1
)

// Handler is wl_subcompositor's trait.
type Handler interface {
	Destroy(sides wlobject.Sides) error
	GetSubsurface(id, surface, parent wire.ObjectID, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_subcompositor.
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

// HandleRequest decodes a client->proxy wl_subcompositor request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpDestroy:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Destroy(sides) })
	case OpGetSubsurface:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		surface, err := d.Object("surface")
		if err != nil {
			return err
		}
		parent, err := d.Object("parent")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.GetSubsurface(id, surface, parent, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent always fails: wl_subcompositor defines no events.
func (p *Proxy) HandleEvent(opcode uint16, _ *wire.Decoder, _ wlobject.Sides) error {
	return fmt.Errorf("wlsubcompositor: interface has no events, got opcode %d", opcode)
}

// DefaultHandler forwards destroy verbatim; get_subsurface is refused
// since wl_subsurface has no modeled proxy to mint.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) Destroy(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendDestroy(core.ServerID), nil)
	}
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) GetSubsurface(wire.ObjectID, wire.ObjectID, wire.ObjectID, wlobject.Sides) error {
	return fmt.Errorf("wlsubcompositor: get_subsurface: wl_subsurface is not in the proxied interface catalog")
}
