// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlshmpool implements wl_shm_pool: a named region of the
// shared-memory file wl_shm.create_pool mapped, and the factory for the
// wl_buffer objects carved out of it (spec §4.5). It defines no events.
package wlshmpool

import (
	"fmt"

	"code.hybscloud.com/wlproxy/iface/wlbuffer"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlShmPool
	Version   = 1
)

// Request opcodes.
const (
	OpCreateBuffer uint16 = 0
	OpDestroy      uint16 = 1
	OpResize       uint16 = 2
)

// Handler is wl_shm_pool's trait.
type Handler interface {
	CreateBuffer(id wire.ObjectID, offset, width, height, stride int32, format uint32, sides wlobject.Sides) error
	Destroy(sides wlobject.Sides) error
	Resize(size int32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_shm_pool.
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

func TrySendCreateBuffer(target wire.ObjectID, serverID wire.ObjectID, offset, width, height, stride int32, format uint32) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	e.Int32(offset)
	e.Int32(width)
	e.Int32(height)
	e.Int32(stride)
	e.Uint32(format)
	return e.Finish(target, OpCreateBuffer)
}

func TrySendDestroy(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpDestroy)
}

func TrySendResize(target wire.ObjectID, size int32) []byte {
	e := wire.NewEncoder()
	e.Int32(size)
	return e.Finish(target, OpResize)
}

// HandleRequest decodes a client->proxy wl_shm_pool request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpCreateBuffer:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		offset, err := d.Int32("offset")
		if err != nil {
			return err
		}
		width, err := d.Int32("width")
		if err != nil {
			return err
		}
		height, err := d.Int32("height")
		if err != nil {
			return err
		}
		stride, err := d.Int32("stride")
		if err != nil {
			return err
		}
		format, err := d.Uint32("format")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error {
			return h.CreateBuffer(id, offset, width, height, stride, format, sides)
		})
	case OpDestroy:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Destroy(sides) })
	case OpResize:
		size, err := d.Int32("size")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Resize(size, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent always fails: wl_shm_pool defines no events.
func (p *Proxy) HandleEvent(opcode uint16, _ *wire.Decoder, _ wlobject.Sides) error {
	return fmt.Errorf("wlshmpool: interface has no events, got opcode %d", opcode)
}

// DefaultHandler mints a wl_buffer for create_buffer and forwards
// destroy/resize verbatim.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) CreateBuffer(id wire.ObjectID, offset, width, height, stride int32, format uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := wlbuffer.NewProxy(core.Version)
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
	sides.ServerOut.QueueMessage(TrySendCreateBuffer(core.ServerID, serverID, offset, width, height, stride, format), nil)
	return nil
}

func (h DefaultHandler) Destroy(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendDestroy(core.ServerID), nil)
	}
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) Resize(size int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendResize(core.ServerID, size), nil)
	}
	return nil
}
