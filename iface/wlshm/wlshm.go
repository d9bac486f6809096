// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlshm implements wl_shm: the shared-memory pool factory and
// the format advertisement event. create_pool carries an fd argument,
// which must travel with the forwarded frame as ancillary data rather
// than payload bytes (spec §4.1's fd-typed argument rule).
package wlshm

import (
	"code.hybscloud.com/wlproxy/iface/wlshmpool"
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlShm
	Version   = 1
)

// Request opcode.
const OpCreatePool uint16 = 0

// Event opcode.
const OpFormat uint16 = 0

// Handler is wl_shm's trait.
type Handler interface {
	CreatePool(id wire.ObjectID, fd int, size int32, sides wlobject.Sides) error
	Format(format uint32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_shm.
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

// TrySendCreatePool encodes the create_pool request translated to
// serverID; the caller is responsible for handing fd to the server
// endpoint's outbound fd queue alongside the returned frame.
func TrySendCreatePool(target wire.ObjectID, serverID wire.ObjectID, size int32) []byte {
	e := wire.NewEncoder()
	e.NewIDArg(serverID)
	e.FD(0) // fd consumes no payload bytes; recorded only for signature shape
	e.Int32(size)
	return e.Finish(target, OpCreatePool)
}

// TrySendFormat encodes the format event frame.
func TrySendFormat(target wire.ObjectID, format uint32) []byte {
	e := wire.NewEncoder()
	e.Uint32(format)
	return e.Finish(target, OpFormat)
}

// HandleRequest decodes a client->proxy wl_shm request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpCreatePool:
		id, err := d.NewIDArg("id", false)
		if err != nil {
			return err
		}
		fd, err := d.FD("fd")
		if err != nil {
			return err
		}
		size, err := d.Int32("size")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.CreatePool(id, fd, size, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent decodes a server->proxy wl_shm event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpFormat:
		format, err := d.Uint32("format")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Format(format, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// DefaultHandler mints a wl_shm_pool for create_pool, forwarding the
// client's shared-memory fd to the server alongside the translated
// request, and forwards format verbatim to the client.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) CreatePool(id wire.ObjectID, fd int, size int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	child := wlshmpool.NewProxy(core.Version)
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
	sides.ServerOut.QueueMessage(TrySendCreatePool(core.ServerID, serverID, size), []int{fd})
	return nil
}

func (h DefaultHandler) Format(format uint32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(TrySendFormat(core.ClientID, format), nil)
	}
	return nil
}
