// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package wlregion implements wl_region: an accumulating set of
// rectangles used for opaque/input region hints (spec §4.5). It defines
// no events.
package wlregion

import (
	"fmt"

	"code.hybscloud.com/wlproxy/wire"
	"code.hybscloud.com/wlproxy/wlobject"
)

const (
	Interface = wlobject.InterfaceWlRegion
	Version   = 1
)

// Request opcodes.
const (
	OpDestroy  uint16 = 0
	OpAdd      uint16 = 1
	OpSubtract uint16 = 2
)

// Handler is wl_region's trait.
type Handler interface {
	Destroy(sides wlobject.Sides) error
	Add(x, y, width, height int32, sides wlobject.Sides) error
	Subtract(x, y, width, height int32, sides wlobject.Sides) error
}

// Proxy is the generated per-object proxy for wl_region.
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

// TrySendDestroy encodes the destroy request.
func TrySendDestroy(target wire.ObjectID) []byte {
	return wire.NewEncoder().Finish(target, OpDestroy)
}

// TrySendAdd encodes the add request.
func TrySendAdd(target wire.ObjectID, x, y, width, height int32) []byte {
	e := wire.NewEncoder()
	e.Int32(x)
	e.Int32(y)
	e.Int32(width)
	e.Int32(height)
	return e.Finish(target, OpAdd)
}

// TrySendSubtract encodes the subtract request.
func TrySendSubtract(target wire.ObjectID, x, y, width, height int32) []byte {
	e := wire.NewEncoder()
	e.Int32(x)
	e.Int32(y)
	e.Int32(width)
	e.Int32(height)
	return e.Finish(target, OpSubtract)
}

// HandleRequest decodes a client->proxy wl_region request.
func (p *Proxy) HandleRequest(opcode uint16, d *wire.Decoder, sides wlobject.Sides) error {
	switch opcode {
	case OpDestroy:
		if err := d.Finish(); err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Destroy(sides) })
	case OpAdd:
		x, y, w, ht, err := decodeRect(d)
		if err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Add(x, y, w, ht, sides) })
	case OpSubtract:
		x, y, w, ht, err := decodeRect(d)
		if err != nil {
			return err
		}
		return p.handler.Use(func(h Handler) error { return h.Subtract(x, y, w, ht, sides) })
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

// HandleEvent always fails: wl_region defines no events.
func (p *Proxy) HandleEvent(opcode uint16, _ *wire.Decoder, _ wlobject.Sides) error {
	return fmt.Errorf("wlregion: interface has no events, got opcode %d", opcode)
}

// DefaultHandler forwards every request verbatim and retires the object
// on destroy.
type DefaultHandler struct{ proxy *Proxy }

func (h DefaultHandler) Destroy(sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendDestroy(core.ServerID), nil)
	}
	core.Destroyed = true
	return nil
}

func (h DefaultHandler) Add(x, y, width, height int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendAdd(core.ServerID, x, y, width, height), nil)
	}
	return nil
}

func (h DefaultHandler) Subtract(x, y, width, height int32, sides wlobject.Sides) error {
	core := h.proxy.ObjectCore()
	if core.ForwardToServer && sides.ServerOut != nil && core.ServerID != 0 {
		sides.ServerOut.QueueMessage(TrySendSubtract(core.ServerID, x, y, width, height), nil)
	}
	return nil
}
