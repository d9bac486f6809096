// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wloutput implements wl_output: the compositor's description
// of one physical display. Every event is informational and forwards
// verbatim; release (v3+) is its only request.
package wloutput

import (
	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlOutput
	Version   = 4
)

// Request opcode.
const OpRelease uint16 = 0

// Event opcodes.
const (
	OpGeometry uint16 = 0
	OpMode     uint16 = 1
	OpDone     uint16 = 2
	OpScale    uint16 = 3
)

const (
	ReleaseSince uint32 = 3
	DoneSince    uint32 = 2
	ScaleSince   uint32 = 2
)

// Handler is wl_output's trait.
type Handler interface {
	Release(sides wlobject.Sides) error
	Geometry(x, y, physWidth, physHeight, subpixel int32, make_, model string, transform int32, sides wlobject.Sides) error
	Mode(flags uint32, width, height, refresh int32, sides wlobject.Sides) error
	Done(sides wlobject.Sides) error
	Scale(factor int32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_output.
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

func TrySendRelease(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpRelease)
}

func TrySendGeometry(target wire.ObjectID, x, y, physWidth, physHeight, subpixel int32, make_, model string, transform int32) []byte {
	e := wire.NewEncoder()
	e.Int32(x)
	e.Int32(y)
	e.Int32(physWidth)
	e.Int32(physHeight)
	e.Int32(subpixel)
	e.String(make_)
	e.String(model)
	e.Int32(transform)
	return e.Finish(target, OpGeometry)
}

func TrySendMode(target wire.ObjectID, flags uint32, width, height, refresh int32) []byte {
	e := wire.NewEncoder()
	e.Uint32(flags)
	e.Int32(width)
	e.Int32(height)
	e.Int32(refresh)
	return e.Finish(target, OpMode)
}

func TrySendDone(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpDone)
}

func TrySendScale(target wire.ObjectID, factor int32) []byte {
	e := wire.NewEncoder()
	e.Int32(factor)
	return e.Finish(target, OpScale)
}

// HandleRequest decodes a client->proxy wl_output request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpRelease:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Release(sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// HandleEvent decodes a server->proxy wl_output event.
func (p *Proxy) HandleEvent(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpGeometry:
		x, err := d.Int32("x")
		if err != nil {
			return err
		}
		y, err := d.Int32("y")
		if err != nil {
			return err
		}
		physWidth, err := d.Int32("physical_width")
		if err != nil {
			return err
		}
		physHeight, err := d.Int32("physical_height")
		if err != nil {
			return err
		}
		subpixel, err := d.Int32("subpixel")
		if err != nil {
			return err
		}
		make_, err := d.String("make")
		if err != nil {
			return err
		}
		model, err := d.String("model")
		if err != nil {
			return err
		}
		transform, err := d.Int32("transform")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error {
			return h.Geometry(x, y, physWidth, physHeight, subpixel, make_, model, transform, sides)
		})
	case OpMode:
		flags, err := d.Uint32("flags")
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
		refresh, err := d.Int32("refresh")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Mode(flags, width, height, refresh, sides) })
	case OpDone:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Done(sides) })
	case OpScale:
		factor, err := d.Int32("factor")
		if err != nil {
			return err
		}
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Scale(factor, sides) })
	default:
		return &wire.UnknownMessageIDError{Opcode: opcode}
	}
}

// DefaultHandler forwards every message verbatim; release retires the
// object.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) Release(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendRelease(core.ServerID), nil)
	}
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) forwardToClient(sides wlobject.Sides, frame []byte) {
	core := h.proxy.ObjectCore()
	if core.ForwardToClient && sides.ClientOut != nil && core.ClientID != 0 {
		sides.ClientOut.QueueMessage(frame, nil)
	}
}

func (h DefaultHandler) Geometry(x, y, physWidth, physHeight, subpixel int32, make_, model string, transform int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendGeometry(core.ClientID, x, y, physWidth, physHeight, subpixel, make_, model, transform))
	return nil
}

func (h DefaultHandler) Mode(flags uint32, width, height, refresh int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendMode(core.ClientID, flags, width, height, refresh))
	return nil
}

func (h DefaultHandler) Done(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendDone(core.ClientID))
	return nil
}

func (h DefaultHandler) Scale(factor int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	h.forwardToClient(sides, TrySendScale(core.ClientID, factor))
	return nil
}
